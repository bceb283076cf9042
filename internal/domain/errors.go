package domain

import "errors"

var (
	// ErrRoomNotFound is returned when an event references a room code that is not registered.
	ErrRoomNotFound = errors.New("room not found")
	// ErrPlayerNotFound is returned when a player cannot be resolved by socket or name.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidPoints is returned for score deltas outside [MinPoints, MaxPoints].
	ErrInvalidPoints = errors.New("points out of range")
	// ErrInvalidRoomID is returned when a room code is not made of RoomIDLength digits.
	ErrInvalidRoomID = errors.New("invalid room code")
	// ErrNotOrganizer is returned when a socket other than the organizer claims the organizer seat.
	ErrNotOrganizer = errors.New("socket is not the room organizer")
	// ErrChatMuted is returned when a player without chat permission posts a message.
	ErrChatMuted = errors.New("chat disabled for player")
	// ErrInvalidPassword is returned on a failed admin login.
	ErrInvalidPassword = errors.New("invalid admin password")
	// ErrInvalidPayload marks malformed inbound events.
	ErrInvalidPayload = errors.New("invalid payload")
)

// ErrRoomCodesExhausted is returned when no free room code could be drawn.
var ErrRoomCodesExhausted = errors.New("no free room code")
