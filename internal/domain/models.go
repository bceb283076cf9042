package domain

import (
	"encoding/json"
	"time"
)

const (
	// RoomIDLength is the number of digits in a room code.
	RoomIDLength = 4
	// OrganizerName is the fixed display name of the organizer; players may not use it.
	OrganizerName = "Organisateur"
	// MinPoints and MaxPoints bound a single AddPointsToPlayer delta.
	MinPoints = 0
	MaxPoints = 100
)

// QuestionType distinguishes multiple-choice from open-ended questions.
type QuestionType string

const (
	QuestionQCM QuestionType = "QCM"
	QuestionQRL QuestionType = "QRL"
)

// JoinState is the reason code returned to a client trying to enter a room.
type JoinState string

const (
	JoinOK       JoinState = "OK"
	JoinInvalid  JoinState = "INVALID"
	JoinIsLocked JoinState = "IS_LOCKED"
)

// Choice represents a possible answer for a multiple-choice question.
type Choice struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question is either a QCM (with choices) or a QRL (free text).
type Question struct {
	Type    QuestionType `json:"type" yaml:"type"`
	Text    string       `json:"text" yaml:"text"`
	Points  int          `json:"points" yaml:"points"`
	Choices []Choice     `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Quiz is a collection of questions played in a room.
type Quiz struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Duration    int        `json:"duration" yaml:"duration"`
	Questions   []Question `json:"questions" yaml:"questions"`
}

// Clone returns a deep copy so later edits to the source quiz never reach a running game.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question
		if question.Choices != nil {
			out.Questions[i].Choices = append([]Choice(nil), question.Choices...)
		}
	}
	return out
}

// User is a socket identity with a display name.
type User struct {
	SocketID string `json:"socketId"`
	Name     string `json:"name"`
}

// Player is a participant of a room.
type Player struct {
	SocketID     string `json:"socketId"`
	Name         string `json:"name"`
	Points       int    `json:"points"`
	BonusCount   int    `json:"bonusCount"`
	CanChat      bool   `json:"canChat"`
	HasSubmitted bool   `json:"hasSubmitted"`
}

// AnswerTime records when a player answered correctly; TimeStamp is nil when the client sent none.
type AnswerTime struct {
	SocketID  string `json:"socketId"`
	TimeStamp *int64 `json:"timeStamp"`
}

// ChatMessage is a single chat line in a room.
type ChatMessage struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	Time   string `json:"time"`
}

// Results are the accumulators handed back to players on the results view.
// Results and ChartData are opaque to the server.
type Results struct {
	Players      json.RawMessage `json:"results,omitempty"`
	ChatMessages []ChatMessage   `json:"chatMessages"`
	ChartData    json.RawMessage `json:"questionsChartData,omitempty"`
}

// HistoryEntry summarizes a finished game.
type HistoryEntry struct {
	ID              int64     `json:"id"`
	QuizTitle       string    `json:"quizTitle"`
	StartedAt       time.Time `json:"startedAt"`
	PlayerCount     int       `json:"playerCount"`
	BestScore       int       `json:"bestScore"`
	BestPlayerNames []string  `json:"bestPlayerNames"`
}
