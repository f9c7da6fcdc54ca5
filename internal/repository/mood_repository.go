package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

type MoodRepository struct {
	*base.Repository
}

func NewMoodRepository(b *base.Repository) *MoodRepository {
	return &MoodRepository{Repository: b}
}

// Upsert records the mood of a day, replacing the label if the day already has one.
func (r *MoodRepository) Upsert(ctx context.Context, e *model.MoodEntry) error {
	query := `
		INSERT INTO mood_entries (user_id, mood_label, entry_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, entry_date)
		DO UPDATE SET mood_label = EXCLUDED.mood_label, updated_at = now()
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query, e.UserID, e.MoodLabel, dateArg(e.EntryDate)).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert mood entry: %w", err)
	}
	return nil
}

// ListRange returns entries with from <= entry_date <= to, in date order.
func (r *MoodRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.MoodEntry, error) {
	rows, err := r.Query(ctx, `
		SELECT id, user_id, mood_label, entry_date, created_at, updated_at
		FROM mood_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date
	`, userID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.MoodEntry
	for rows.Next() {
		var e model.MoodEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.MoodLabel, &e.EntryDate, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
