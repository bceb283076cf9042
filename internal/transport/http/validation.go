package http

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const roomIDSchema = `{"type": "string", "pattern": "^[0-9]{4}$"}`

// eventSchemas describes the data object of every inbound event.
var eventSchemas = map[string]string{
	EventJoinRoom:             roomOnly(),
	EventChooseName:           withRoom(`"name": {"type": "string", "minLength": 1, "maxLength": 32}`, "name"),
	EventSuccessfulJoin:       withRoom(`"name": {"type": "string", "minLength": 1}`, "name"),
	EventCreateRoom:           `{"type": "object", "properties": {"quizId": {"type": "string", "minLength": 1}}, "required": ["quizId"]}`,
	EventOrganizerJoined:      roomOnly(),
	EventToggleLockRoom:       roomOnly(),
	EventGetPlayerNames:       roomOnly(),
	EventBanName:              withRoom(`"name": {"type": "string", "minLength": 1}`, "name"),
	EventToggleChatPermission: withRoom(`"name": {"type": "string", "minLength": 1}`, "name"),

	EventStartGame:               roomOnly(),
	EventPlayerLeaveGame:         withRoom(`"isInGame": {"type": "boolean"}`, "isInGame"),
	EventEndGame:                 withRoom(`"gameAborted": {"type": "boolean"}`, "gameAborted"),
	EventGoodAnswer:              withRoom(`"timeStamp": {"type": ["integer", "null"]}`),
	EventBadAnswer:               roomOnly(),
	EventToggleSelect:            withRoom(`"questionChoiceIndex": {"type": "integer", "minimum": 0}, "isSelect": {"type": "boolean"}`, "questionChoiceIndex", "isSelect"),
	EventQuestionChoicesUnselect: withRoom(`"questionChoiceIndexes": {"type": "array", "items": {"type": "integer", "minimum": 0}}`, "questionChoiceIndexes"),
	EventGiveBonus:               roomOnly(),
	EventAddPointsToPlayer:       withRoom(`"points": {"type": "integer"}, "name": {"type": "string"}`, "points"),
	EventNextQuestion:            roomOnly(),
	EventShowResults:             roomOnly(),
	EventSendResults:             withRoom(`"results": {}`, "results"),
	EventGetResults:              roomOnly(),
	EventSubmitAnswer:            withRoom(`"questionType": {"enum": ["QCM", "QRL"]}, "answer": {}`, "questionType"),
	EventSaveChartData:           withRoom(`"chartData": {}`, "chartData"),

	EventStartTimer:              withRoom(`"initialTime": {"type": "integer", "minimum": 0}, "tickRate": {"type": "integer", "minimum": 1}`, "initialTime"),
	EventStopTimer:               roomOnly(),
	EventTransitionClockFinished: roomOnly(),
	EventTimerInterrupted:        roomOnly(),
	EventPauseTimer:              withRoom(`"isPaused": {"type": "boolean"}, "currentTime": {"type": "integer", "minimum": 0}`, "isPaused", "currentTime"),
	EventPanicMode:               withRoom(`"currentTime": {"type": "integer", "minimum": 0}`, "currentTime"),

	EventRoomMessage: withRoom(`"message": {"type": "object", "properties": {"author": {"type": "string"}, "text": {"type": "string", "minLength": 1, "maxLength": 500}, "time": {"type": "string"}}, "required": ["text"]}`, "message"),
}

func roomOnly() string {
	return withRoom("")
}

func withRoom(props string, required ...string) string {
	if props != "" {
		props = ", " + props
	}
	req := append([]string{`"roomId"`}, quoteAll(required)...)
	return fmt.Sprintf(`{"type": "object", "properties": {"roomId": %s%s}, "required": [%s]}`,
		roomIDSchema, props, strings.Join(req, ", "))
}

func quoteAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = `"` + s + `"`
	}
	return out
}

// Validator checks inbound event data against the compiled schemas.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(eventSchemas))}
	for event, raw := range eventSchemas {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", event, err)
		}
		v.schemas[event] = schema
	}
	return v, nil
}

// Known reports whether the event has a schema, i.e. is a supported inbound event.
func (v *Validator) Known(event string) bool {
	_, ok := v.schemas[event]
	return ok
}

// Validate returns a readable description of the first violations, or nil.
func (v *Validator) Validate(event string, data []byte) error {
	schema, ok := v.schemas[event]
	if !ok {
		return fmt.Errorf("unsupported event %q", event)
	}
	if len(data) == 0 {
		data = []byte("{}")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validating %s: %w", event, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
