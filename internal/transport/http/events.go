package http

import (
	"encoding/json"

	"quiz-room-service/internal/domain"
)

// Inbound events.
const (
	EventJoinRoom             = "joinRoom"
	EventChooseName           = "chooseName"
	EventSuccessfulJoin       = "successfulJoin"
	EventCreateRoom           = "createRoom"
	EventOrganizerJoined      = "organizerJoined"
	EventToggleLockRoom       = "toggleLockRoom"
	EventGetPlayerNames       = "getPlayerNames"
	EventBanName              = "banName"
	EventToggleChatPermission = "toggleChatPermission"

	EventStartGame               = "startGame"
	EventPlayerLeaveGame         = "playerLeaveGame"
	EventEndGame                 = "endGame"
	EventGoodAnswer              = "goodAnswer"
	EventBadAnswer               = "badAnswer"
	EventToggleSelect            = "toggleSelect"
	EventQuestionChoicesUnselect = "questionChoicesUnselect"
	EventGiveBonus               = "giveBonus"
	EventAddPointsToPlayer       = "addPointsToPlayer"
	EventNextQuestion            = "nextQuestion"
	EventShowResults             = "showResults"
	EventSendResults             = "sendResults"
	EventGetResults              = "getResults"
	EventSubmitAnswer            = "submitAnswer"
	EventSaveChartData           = "saveChartData"

	EventStartTimer              = "startTimer"
	EventStopTimer               = "stopTimer"
	EventTransitionClockFinished = "transitionClockFinished"
	EventTimerInterrupted        = "timerInterrupted"
	EventPauseTimer              = "pauseTimer"
	EventPanicMode               = "panicMode"

	EventRoomMessage = "roomMessage"
)

// Outbound-only events.
const (
	EventConnected             = "connected"
	EventError                 = "error"
	EventPlayerHasJoined       = "playerHasJoined"
	EventRoomCreated           = "roomCreated"
	EventLockStatus            = "lockStatus"
	EventPlayerNames           = "playerNames"
	EventBanNotification       = "banNotification"
	EventChatPermission        = "chatPermission"
	EventPlayerAbandon         = "playerAbandon"
	EventGameAborted           = "gameAborted"
	EventOrganizerLeft         = "organizerLeft"
	EventSubmitQCM             = "submitQCM"
	EventSubmitQRL             = "submitQRL"
	EventAllSubmissionReceived = "allSubmissionReceived"
	EventBonus                 = "bonus"
	EventBonusGiven            = "bonusGiven"
	EventPointsAdded           = "pointsAdded"
	EventResults               = "results"
	EventTimer                 = "timer"
	EventTimerFinished         = "timerFinished"
	EventNewRoomMessage        = "newRoomMessage"
	EventSentByYou             = "sentByYou"
)

type inboundMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type namePayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type createRoomPayload struct {
	QuizID string `json:"quizId"`
}

type leaveGamePayload struct {
	RoomID   string `json:"roomId"`
	IsInGame bool   `json:"isInGame"`
}

type endGamePayload struct {
	RoomID      string `json:"roomId"`
	GameAborted bool   `json:"gameAborted"`
}

type answerTimePayload struct {
	RoomID    string `json:"roomId"`
	TimeStamp *int64 `json:"timeStamp"`
}

type toggleSelectPayload struct {
	RoomID              string `json:"roomId"`
	QuestionChoiceIndex int    `json:"questionChoiceIndex"`
	IsSelect            bool   `json:"isSelect"`
}

type unselectPayload struct {
	RoomID                string `json:"roomId"`
	QuestionChoiceIndexes []int  `json:"questionChoiceIndexes"`
}

type addPointsPayload struct {
	RoomID string `json:"roomId"`
	Points int    `json:"points"`
	Name   string `json:"name,omitempty"`
}

type submitAnswerPayload struct {
	RoomID       string              `json:"roomId"`
	QuestionType domain.QuestionType `json:"questionType"`
	Answer       json.RawMessage     `json:"answer"`
}

type resultsPayload struct {
	RoomID  string          `json:"roomId"`
	Results json.RawMessage `json:"results"`
}

type chartDataPayload struct {
	RoomID    string          `json:"roomId"`
	ChartData json.RawMessage `json:"chartData"`
}

type startTimerPayload struct {
	RoomID      string `json:"roomId"`
	InitialTime int    `json:"initialTime"`
	TickRate    int    `json:"tickRate,omitempty"` // milliseconds
}

type pauseTimerPayload struct {
	RoomID      string `json:"roomId"`
	IsPaused    bool   `json:"isPaused"`
	CurrentTime int    `json:"currentTime"`
}

type panicModePayload struct {
	RoomID      string `json:"roomId"`
	CurrentTime int    `json:"currentTime"`
}

type roomMessagePayload struct {
	RoomID  string             `json:"roomId"`
	Message domain.ChatMessage `json:"message"`
}

// Outbound payloads.

type connectedPayload struct {
	SocketID string `json:"socketId"`
}

type errorPayload struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type chooseNameResult struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name"`
}

type roomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type lockStatusPayload struct {
	IsLocked bool `json:"isLocked"`
}

type playerNamesPayload struct {
	Names []string `json:"names"`
}

type playerNamePayload struct {
	Name string `json:"name"`
}

type chatPermissionPayload struct {
	Name    string `json:"name"`
	CanChat bool   `json:"canChat"`
}

type submissionPayload struct {
	Name   string          `json:"name"`
	Answer json.RawMessage `json:"answer,omitempty"`
}

type pointsAddedPayload struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Total  int    `json:"total"`
}

type timerPayload struct {
	Time int `json:"time"`
}

type pausedPayload struct {
	IsPaused bool `json:"isPaused"`
}
