package model

import (
	"time"

	"github.com/google/uuid"
)

// MoodEntry is a user's mood for a single day.
type MoodEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	MoodLabel string    `json:"mood_label"`
	EntryDate time.Time `json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
