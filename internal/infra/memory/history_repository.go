package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-room-service/internal/domain"
)

// HistoryRepository keeps game summaries in process memory.
type HistoryRepository struct {
	mu      sync.Mutex
	nextID  int64
	entries []domain.HistoryEntry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Save(_ context.Context, entry domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = r.nextID
	entry.BestPlayerNames = append([]string(nil), entry.BestPlayerNames...)
	r.entries = append(r.entries, entry)
	return nil
}

// List returns entries newest first.
func (r *HistoryRepository) List(_ context.Context) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]domain.HistoryEntry{}, r.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}

func (r *HistoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
	return nil
}
