package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEverySupportedEventHasSchema(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	ws := &WSHandler{handlers: map[string]eventHandler{}}
	ws.registerJoinHandlers()
	ws.registerGameHandlers()
	ws.registerTimeHandlers()
	ws.registerChatHandlers()

	for event := range ws.handlers {
		assert.True(t, v.Known(event), "no schema for %s", event)
	}
	assert.Len(t, eventSchemas, len(ws.handlers))
}

func TestValidatorRejectsBadPayloads(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cases := []struct {
		name  string
		event string
		data  string
		ok    bool
	}{
		{"room only", EventJoinRoom, `{"roomId": "1234"}`, true},
		{"room id too short", EventJoinRoom, `{"roomId": "123"}`, false},
		{"room id letters", EventJoinRoom, `{"roomId": "12ab"}`, false},
		{"room id number", EventJoinRoom, `{"roomId": 1234}`, false},
		{"missing data", EventJoinRoom, ``, false},
		{"empty name", EventChooseName, `{"roomId": "1234", "name": ""}`, false},
		{"name", EventChooseName, `{"roomId": "1234", "name": "Alice"}`, true},
		{"create room", EventCreateRoom, `{"quizId": "quiz-1"}`, true},
		{"create without quiz", EventCreateRoom, `{}`, false},
		{"null timestamp", EventGoodAnswer, `{"roomId": "1234", "timeStamp": null}`, true},
		{"string timestamp", EventGoodAnswer, `{"roomId": "1234", "timeStamp": "soon"}`, false},
		{"unknown question type", EventSubmitAnswer, `{"roomId": "1234", "questionType": "ESSAY"}`, false},
		{"negative timer", EventStartTimer, `{"roomId": "1234", "initialTime": -1}`, false},
		{"timer", EventStartTimer, `{"roomId": "1234", "initialTime": 20, "tickRate": 1000}`, true},
		{"pause without flag", EventPauseTimer, `{"roomId": "1234", "currentTime": 3}`, false},
		{"empty chat", EventRoomMessage, `{"roomId": "1234", "message": {"text": ""}}`, false},
		{"chat", EventRoomMessage, `{"roomId": "1234", "message": {"text": "hi"}}`, true},
		{"unsupported", "dropTables", `{}`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.event, []byte(tc.data))
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
