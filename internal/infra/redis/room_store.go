package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"quiz-room-service/internal/app"
)

// RoomStore keeps rooms in a local map and reserves their codes in Redis.
// Notes:
//   - Room state never leaves the process; rooms are volatile.
//   - SETNX on quizroom:room:{id} keeps codes unique against other instances sharing the
//     Redis, and the key doubles as a liveness marker with a TTL.
//   - A Redis failure degrades to local uniqueness only.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	rooms map[string]*app.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) Register(ctx context.Context, room *app.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID()]; ok {
		return false
	}
	reserved, err := s.client.SetNX(ctx, s.key(room.ID()), "1", s.ttl).Result()
	if err != nil {
		log.Warn().Err(err).Str("room-code", room.ID()).Msg("room code reservation failed")
	} else if !reserved {
		return false
	}
	s.rooms[room.ID()] = room
	return true
}

func (s *RoomStore) Get(roomID string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[roomID]
	return room, ok
}

func (s *RoomStore) Delete(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; !ok {
		return
	}
	delete(s.rooms, roomID)
	// best-effort release
	_ = s.client.Del(context.Background(), s.key(roomID)).Err()
}

func (s *RoomStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Touch extends the liveness marker of every local room.
func (s *RoomStore) Touch(ctx context.Context) error {
	s.mu.RLock()
	ids := make([]string, 0, len(s.rooms))
	for id := range s.rooms {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Expire(ctx, s.key(id), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RoomStore) key(roomID string) string {
	return "quizroom:room:" + roomID
}
