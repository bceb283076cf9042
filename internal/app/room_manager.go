package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/logging"
	"quiz-room-service/internal/metrics"
)

// RoomStore abstracts where active rooms are registered (in-memory, Redis-backed, etc).
type RoomStore interface {
	// Register stores the room unless its code is already taken.
	Register(ctx context.Context, room *Room) bool
	Get(roomID string) (*Room, bool)
	Delete(roomID string)
	Len() int
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// HistoryRepository keeps summaries of finished games.
type HistoryRepository interface {
	Save(ctx context.Context, entry domain.HistoryEntry) error
	List(ctx context.Context) ([]domain.HistoryEntry, error)
	Clear(ctx context.Context) error
}

// JoinResult answers a join attempt with a reason code and, on success, the quiz.
type JoinResult struct {
	State domain.JoinState `json:"roomState"`
	Quiz  *domain.Quiz     `json:"quiz,omitempty"`
}

// Submission is the outcome of RecordSubmission.
type Submission struct {
	Player       domain.Player
	Accepted     bool
	AllSubmitted bool
}

// EndResult tells the transport what EndGame did to the room.
type EndResult struct {
	Deleted       bool
	PlayerSockets []string
}

const maxRoomIDAttempts = 100000

// RoomManager is the only reader and writer of rooms and the room store.
type RoomManager struct {
	store   RoomStore
	quizzes QuizRepository
	history HistoryRepository
	metrics *metrics.Metrics
	now     func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
	newID func() string
}

// Option customizes a RoomManager.
type Option func(*RoomManager)

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *RoomManager) { m.now = now }
}

// WithIDGenerator replaces the random room code source.
func WithIDGenerator(gen func() string) Option {
	return func(m *RoomManager) { m.newID = gen }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *RoomManager) { m.metrics = mt }
}

func NewRoomManager(store RoomStore, quizzes QuizRepository, history HistoryRepository, opts ...Option) *RoomManager {
	m := &RoomManager{
		store:   store,
		quizzes: quizzes,
		history: history,
		now:     time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.newID = m.randomRoomID
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// randomRoomID draws a code in [1000, 9999].
func (m *RoomManager) randomRoomID() string {
	m.rndMu.Lock()
	defer m.rndMu.Unlock()
	return strconv.Itoa(1000 + m.rnd.Intn(9000))
}

// ValidRoomID reports whether id is made of exactly RoomIDLength digits.
func ValidRoomID(id string) bool {
	if len(id) != domain.RoomIDLength {
		return false
	}
	for _, c := range id {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CreateRoom loads the quiz and registers a new room owned by organizerSocketID.
func (m *RoomManager) CreateRoom(ctx context.Context, quizID, organizerSocketID string) (*Room, error) {
	quiz, err := m.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return m.CreateRoomForQuiz(ctx, quiz, organizerSocketID)
}

// CreateRoomForQuiz registers a room for an already loaded quiz, retrying until a free code is drawn.
func (m *RoomManager) CreateRoomForQuiz(ctx context.Context, quiz domain.Quiz, organizerSocketID string) (*Room, error) {
	for attempt := 0; attempt < maxRoomIDAttempts; attempt++ {
		id := m.newID()
		if !ValidRoomID(id) {
			continue
		}
		if _, taken := m.store.Get(id); taken {
			continue
		}
		room := NewRoom(id, quiz, organizerSocketID, m.now())
		if !m.store.Register(ctx, room) {
			continue
		}
		m.metrics.RoomOpened()
		logging.ForRoom(id).Created(quiz.ID, organizerSocketID)
		return room, nil
	}
	return nil, domain.ErrRoomCodesExhausted
}

// FindRoom returns the registered room for id.
func (m *RoomManager) FindRoom(roomID string) (*Room, error) {
	room, ok := m.store.Get(roomID)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

// DeleteRoom stops any countdown and unregisters the room. Safe to call twice.
func (m *RoomManager) DeleteRoom(room *Room) {
	m.StopTimer(room)
	if current, ok := m.store.Get(room.id); !ok || current != room {
		return
	}
	m.store.Delete(room.id)
	m.metrics.RoomClosed()
}

// DeleteIfAbandoned removes the room when no player and no organizer socket remain.
func (m *RoomManager) DeleteIfAbandoned(room *Room) bool {
	room.mu.Lock()
	abandoned := room.abandonedLocked()
	room.mu.Unlock()
	if abandoned {
		m.DeleteRoom(room)
	}
	return abandoned
}

// ProcessJoinRoom checks whether a room can currently be entered.
func (m *RoomManager) ProcessJoinRoom(roomID string) JoinResult {
	room, ok := m.store.Get(roomID)
	if !ok {
		return JoinResult{State: domain.JoinInvalid}
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.isLocked {
		return JoinResult{State: domain.JoinIsLocked}
	}
	quiz := room.quiz.Clone()
	return JoinResult{State: domain.JoinOK, Quiz: &quiz}
}

// ProcessUsername reports whether name could join the room right now.
func (m *RoomManager) ProcessUsername(name string, room *Room) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.validUsernameLocked(name)
}

// AddPlayer appends a player unless the socket already has one.
func (m *RoomManager) AddPlayer(room *Room, socketID, name string) {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.addPlayerLocked(socketID, name)
}

// ClaimUsername validates and adds the player in one step. A socket that already
// joined under the same name gets true again.
func (m *RoomManager) ClaimUsername(room *Room, socketID, name string) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	if _, p := room.playerBySocketLocked(socketID); p != nil {
		return strings.EqualFold(p.Name, strings.TrimSpace(name))
	}
	if !room.validUsernameLocked(name) {
		return false
	}
	return room.addPlayerLocked(socketID, name)
}

// BanPlayer bars name from the room for its lifetime and removes any matching player.
// A removed player's submission is withdrawn from the current count, and the last
// flag reports whether the remaining players now complete the question.
func (m *RoomManager) BanPlayer(room *Room, name string) (domain.Player, bool, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.bannedNames[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	i, p := room.playerByNameLocked(strings.TrimSpace(name))
	if p == nil {
		return domain.Player{}, false, false
	}
	if p.HasSubmitted && room.submissionCount > 0 {
		room.submissionCount--
	}
	removed := room.removeAtLocked(i)
	return removed, true, room.pollAllSubmittedLocked()
}

// RemovePlayer drops the player bound to socketID. Submission counts are left to the caller.
func (m *RoomManager) RemovePlayer(room *Room, socketID string) (domain.Player, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	i, p := room.playerBySocketLocked(socketID)
	if p == nil {
		return domain.Player{}, false
	}
	return room.removeAtLocked(i), true
}

// LeaveGame removes a player. When inGame, a pending submission is withdrawn and the
// returned flag reports whether the remaining players now complete the question.
func (m *RoomManager) LeaveGame(room *Room, socketID string, inGame bool) (domain.Player, bool, error) {
	room.mu.Lock()
	defer room.mu.Unlock()
	i, p := room.playerBySocketLocked(socketID)
	if p == nil {
		return domain.Player{}, false, domain.ErrPlayerNotFound
	}
	removed := room.removeAtLocked(i)
	if !inGame {
		return removed, false, nil
	}
	if removed.HasSubmitted && room.submissionCount > 0 {
		room.submissionCount--
	}
	return removed, room.pollAllSubmittedLocked(), nil
}

// PlayerNames lists current players in join order.
func (m *RoomManager) PlayerNames(room *Room) []string {
	room.mu.Lock()
	defer room.mu.Unlock()
	names := make([]string, 0, len(room.players))
	for _, p := range room.players {
		names = append(names, p.Name)
	}
	return names
}

// PlayerBySocket returns a copy of the player bound to socketID.
func (m *RoomManager) PlayerBySocket(room *Room, socketID string) (domain.Player, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	_, p := room.playerBySocketLocked(socketID)
	if p == nil {
		return domain.Player{}, false
	}
	return *p, true
}

// PlayerByName returns a copy of the player with that name (case-insensitive).
func (m *RoomManager) PlayerByName(room *Room, name string) (domain.Player, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	_, p := room.playerByNameLocked(name)
	if p == nil {
		return domain.Player{}, false
	}
	return *p, true
}

// ToggleLock flips the join gate and returns the new state.
func (m *RoomManager) ToggleLock(room *Room) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.isLocked = !room.isLocked
	return room.isLocked
}

// IsLocked reports the join gate.
func (m *RoomManager) IsLocked(room *Room) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.isLocked
}

// StartGame marks the room as playing; leaves are announced from now on.
func (m *RoomManager) StartGame(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.started = true
}

// InGame reports whether the game has started and not ended.
func (m *RoomManager) InGame(room *Room) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.started
}

// OrganizerSocket returns the organizer's socket id, empty once cleared.
func (m *RoomManager) OrganizerSocket(room *Room) string {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.organizer.SocketID
}

// IsOrganizer reports whether socketID is the room's organizer.
func (m *RoomManager) IsOrganizer(room *Room, socketID string) bool {
	room.mu.Lock()
	defer room.mu.Unlock()
	return socketID != "" && room.organizer.SocketID == socketID
}

// BindOrganizer claims a free organizer seat, or confirms an existing claim.
func (m *RoomManager) BindOrganizer(room *Room, socketID string) error {
	room.mu.Lock()
	defer room.mu.Unlock()
	switch room.organizer.SocketID {
	case "":
		room.organizer.SocketID = socketID
		return nil
	case socketID:
		return nil
	default:
		return domain.ErrNotOrganizer
	}
}

// ClearOrganizer forgets the organizer socket; the room stays for remaining players.
func (m *RoomManager) ClearOrganizer(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.organizer.SocketID = ""
}

// AddPointsToPlayer adds points to the player bound to socketID.
func (m *RoomManager) AddPointsToPlayer(room *Room, socketID string, points int) (domain.Player, error) {
	if points < domain.MinPoints || points > domain.MaxPoints {
		return domain.Player{}, domain.ErrInvalidPoints
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	_, p := room.playerBySocketLocked(socketID)
	if p == nil {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	p.Points += points
	return *p, nil
}

// RecordSubmission marks the player's answer for the current question. A second
// submission in the same question is not counted.
func (m *RoomManager) RecordSubmission(room *Room, socketID string) (Submission, error) {
	room.mu.Lock()
	defer room.mu.Unlock()
	_, p := room.playerBySocketLocked(socketID)
	if p == nil {
		return Submission{}, domain.ErrPlayerNotFound
	}
	if p.HasSubmitted {
		return Submission{Player: *p}, nil
	}
	p.HasSubmitted = true
	room.submissionCount++
	return Submission{
		Player:       *p,
		Accepted:     true,
		AllSubmitted: room.pollAllSubmittedLocked(),
	}, nil
}

// SubmissionCount returns the submissions received for the current question.
func (m *RoomManager) SubmissionCount(room *Room) int {
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.submissionCount
}

// NextQuestion resets per-question state in one critical section.
func (m *RoomManager) NextQuestion(room *Room) {
	room.mu.Lock()
	defer room.mu.Unlock()
	for _, p := range room.players {
		p.HasSubmitted = false
	}
	room.submissionCount = 0
	room.allSubmittedSent = false
	room.answerTimes = room.answerTimes[:0]
}

// RecordAnswerTime stores a correct answer time for the fastest-responder bonus.
func (m *RoomManager) RecordAnswerTime(room *Room, socketID string, timeStamp *int64) error {
	room.mu.Lock()
	defer room.mu.Unlock()
	if _, p := room.playerBySocketLocked(socketID); p == nil {
		return domain.ErrPlayerNotFound
	}
	room.answerTimes = append(room.answerTimes, domain.AnswerTime{SocketID: socketID, TimeStamp: timeStamp})
	return nil
}

// QuickestTime returns the unique fastest answer time, or nil on a tie or when nobody answered.
func (m *RoomManager) QuickestTime(room *Room) *domain.AnswerTime {
	room.mu.Lock()
	defer room.mu.Unlock()
	return quickestTime(room.answerTimes)
}

func quickestTime(times []domain.AnswerTime) *domain.AnswerTime {
	timed := make([]domain.AnswerTime, 0, len(times))
	for _, t := range times {
		if t.TimeStamp != nil {
			timed = append(timed, t)
		}
	}
	if len(timed) == 0 {
		if len(times) == 1 {
			only := times[0]
			return &only
		}
		return nil
	}

	best := timed[0]
	unique := true
	for _, t := range timed[1:] {
		switch {
		case *t.TimeStamp < *best.TimeStamp:
			best = t
			unique = true
		case *t.TimeStamp == *best.TimeStamp:
			unique = false
		}
	}
	if !unique {
		return nil
	}
	return &best
}

// GiveBonus credits the unique fastest responder of the current question.
func (m *RoomManager) GiveBonus(room *Room) (domain.Player, bool) {
	room.mu.Lock()
	defer room.mu.Unlock()
	quickest := quickestTime(room.answerTimes)
	if quickest == nil {
		return domain.Player{}, false
	}
	_, p := room.playerBySocketLocked(quickest.SocketID)
	if p == nil {
		return domain.Player{}, false
	}
	p.BonusCount++
	return *p, true
}

// ToggleChatPermission flips a player's chat flag.
func (m *RoomManager) ToggleChatPermission(room *Room, name string) (domain.Player, error) {
	room.mu.Lock()
	defer room.mu.Unlock()
	_, p := room.playerByNameLocked(name)
	if p == nil {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	p.CanChat = !p.CanChat
	return *p, nil
}

// AddChatMessage appends to the room's chat log. Only players and the organizer
// may post, and a muted player may not.
func (m *RoomManager) AddChatMessage(room *Room, socketID string, msg domain.ChatMessage) error {
	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.isMemberLocked(socketID) {
		return domain.ErrPlayerNotFound
	}
	if _, p := room.playerBySocketLocked(socketID); p != nil && !p.CanChat {
		return domain.ErrChatMuted
	}
	room.chatMessages = append(room.chatMessages, msg)
	return nil
}

// SaveChartData stores the per-question chart data for the results view.
func (m *RoomManager) SaveChartData(room *Room, data json.RawMessage) {
	room.mu.Lock()
	defer room.mu.Unlock()
	room.chartData = append(json.RawMessage(nil), data...)
}

// SaveResults stores the final results and appends a history entry.
func (m *RoomManager) SaveResults(ctx context.Context, room *Room, results json.RawMessage) error {
	room.mu.Lock()
	room.results = append(json.RawMessage(nil), results...)
	entry := historyEntryLocked(room)
	room.mu.Unlock()

	if m.history == nil {
		return nil
	}
	if err := m.history.Save(ctx, entry); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func historyEntryLocked(room *Room) domain.HistoryEntry {
	entry := domain.HistoryEntry{
		QuizTitle:       room.quiz.Title,
		StartedAt:       room.createdAt,
		PlayerCount:     len(room.players),
		BestPlayerNames: []string{},
	}
	for _, p := range room.players {
		switch {
		case len(entry.BestPlayerNames) == 0 || p.Points > entry.BestScore:
			entry.BestScore = p.Points
			entry.BestPlayerNames = []string{p.Name}
		case p.Points == entry.BestScore:
			entry.BestPlayerNames = append(entry.BestPlayerNames, p.Name)
		}
	}
	return entry
}

// Results returns the stored accumulators for the results view.
func (m *RoomManager) Results(room *Room) domain.Results {
	room.mu.Lock()
	defer room.mu.Unlock()
	return domain.Results{
		Players:      append(json.RawMessage(nil), room.results...),
		ChatMessages: append([]domain.ChatMessage{}, room.chatMessages...),
		ChartData:    append(json.RawMessage(nil), room.chartData...),
	}
}

// History exposes the history repository to the REST layer.
func (m *RoomManager) History() HistoryRepository {
	return m.history
}

// EndGame tears the room down. An abort deletes it at once; a normal end keeps it
// for remaining players and only clears the organizer.
func (m *RoomManager) EndGame(room *Room, aborted bool) EndResult {
	m.StopTimer(room)

	room.mu.Lock()
	sockets := make([]string, 0, len(room.players))
	for _, p := range room.players {
		sockets = append(sockets, p.SocketID)
	}
	remaining := len(room.players) > 0
	room.started = false
	if !aborted && remaining {
		room.organizer.SocketID = ""
	}
	room.mu.Unlock()

	if aborted || !remaining {
		m.DeleteRoom(room)
		logging.ForRoom(room.id).Removed(endReason(aborted))
		return EndResult{Deleted: true, PlayerSockets: sockets}
	}
	return EndResult{PlayerSockets: sockets}
}

func endReason(aborted bool) string {
	if aborted {
		return "aborted"
	}
	return "ended"
}
