package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quiz-room-service/internal/domain"
)

type historyRow struct {
	bun.BaseModel `bun:"table:histories,alias:h"`

	ID              int64     `bun:"id,pk,autoincrement"`
	QuizTitle       string    `bun:"quiz_title,notnull"`
	StartedAt       time.Time `bun:"started_at,notnull"`
	PlayerCount     int       `bun:"player_count,notnull"`
	BestScore       int       `bun:"best_score,notnull"`
	BestPlayerNames []string  `bun:"best_player_names,array"`
}

// HistoryRepository stores finished-game summaries through bun.
type HistoryRepository struct {
	db *bun.DB
}

func NewHistoryRepository(db *bun.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Save(ctx context.Context, entry domain.HistoryEntry) error {
	row := historyRow{
		QuizTitle:       entry.QuizTitle,
		StartedAt:       entry.StartedAt,
		PlayerCount:     entry.PlayerCount,
		BestScore:       entry.BestScore,
		BestPlayerNames: entry.BestPlayerNames,
	}
	if _, err := r.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (r *HistoryRepository) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	var rows []historyRow
	if err := r.db.NewSelect().Model(&rows).Order("started_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]domain.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.HistoryEntry{
			ID:              row.ID,
			QuizTitle:       row.QuizTitle,
			StartedAt:       row.StartedAt,
			PlayerCount:     row.PlayerCount,
			BestScore:       row.BestScore,
			BestPlayerNames: row.BestPlayerNames,
		})
	}
	return out, nil
}

func (r *HistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.NewDelete().Model((*historyRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
