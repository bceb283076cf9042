package app

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"quiz-room-service/internal/domain"
)

// Room is the in-memory state of one game session. Fields are only touched
// through RoomManager, which holds mu for every read and write.
type Room struct {
	mu sync.Mutex

	id        string
	quiz      domain.Quiz
	createdAt time.Time

	organizer   domain.User
	players     []*domain.Player
	isLocked    bool
	started     bool
	bannedNames map[string]struct{}

	answerTimes      []domain.AnswerTime
	submissionCount  int
	allSubmittedSent bool

	timer *Countdown

	results      json.RawMessage
	chatMessages []domain.ChatMessage
	chartData    json.RawMessage
}

// NewRoom is exported for store implementations and tests. The quiz is copied.
func NewRoom(id string, quiz domain.Quiz, organizerSocketID string, createdAt time.Time) *Room {
	return &Room{
		id:          id,
		quiz:        quiz.Clone(),
		createdAt:   createdAt,
		organizer:   domain.User{SocketID: organizerSocketID, Name: domain.OrganizerName},
		players:     make([]*domain.Player, 0),
		bannedNames: make(map[string]struct{}),
		answerTimes: make([]domain.AnswerTime, 0),
	}
}

// ID is immutable and safe to read without the lock.
func (r *Room) ID() string {
	return r.id
}

func (r *Room) playerBySocketLocked(socketID string) (int, *domain.Player) {
	for i, p := range r.players {
		if p.SocketID == socketID {
			return i, p
		}
	}
	return -1, nil
}

func (r *Room) playerByNameLocked(name string) (int, *domain.Player) {
	for i, p := range r.players {
		if strings.EqualFold(p.Name, name) {
			return i, p
		}
	}
	return -1, nil
}

func (r *Room) isBannedLocked(name string) bool {
	_, ok := r.bannedNames[strings.ToLower(name)]
	return ok
}

func (r *Room) validUsernameLocked(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if strings.EqualFold(name, domain.OrganizerName) {
		return false
	}
	if _, p := r.playerByNameLocked(name); p != nil {
		return false
	}
	return !r.isBannedLocked(name)
}

func (r *Room) addPlayerLocked(socketID, name string) bool {
	if _, p := r.playerBySocketLocked(socketID); p != nil {
		return false
	}
	r.players = append(r.players, &domain.Player{
		SocketID: socketID,
		Name:     strings.TrimSpace(name),
		CanChat:  true,
	})
	return true
}

func (r *Room) removeAtLocked(i int) domain.Player {
	removed := *r.players[i]
	r.players = append(r.players[:i], r.players[i+1:]...)
	return removed
}

// pollAllSubmittedLocked reports true once per question when every remaining player has submitted.
func (r *Room) pollAllSubmittedLocked() bool {
	if r.allSubmittedSent || len(r.players) == 0 {
		return false
	}
	if r.submissionCount < len(r.players) {
		return false
	}
	r.allSubmittedSent = true
	return true
}

func (r *Room) isMemberLocked(socketID string) bool {
	if socketID != "" && r.organizer.SocketID == socketID {
		return true
	}
	_, p := r.playerBySocketLocked(socketID)
	return p != nil
}

func (r *Room) abandonedLocked() bool {
	return len(r.players) == 0 && r.organizer.SocketID == ""
}
