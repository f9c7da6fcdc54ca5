package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
)

type MoodService struct {
	moods    MoodStore
	clock    clock.Clock
	location *time.Location
}

func NewMoodService(moods MoodStore, clk clock.Clock, settings Settings) *MoodService {
	settings = settings.withDefaults()
	return &MoodService{moods: moods, clock: clk, location: settings.Location}
}

// Record stores the mood of a day, today when date is nil. A second record for
// the same day replaces the label.
func (s *MoodService) Record(ctx context.Context, userID uuid.UUID, label string, date *time.Time) (*model.MoodEntry, error) {
	label = strings.TrimSpace(label)
	if label == "" || len(label) > 50 {
		return nil, apperr.Validation("mood must be 1 to 50 characters")
	}
	day := model.DateOnly(s.clock.Now().In(s.location))
	if date != nil {
		day = model.DateOnly(*date)
	}

	e := &model.MoodEntry{UserID: userID, MoodLabel: label, EntryDate: day}
	if err := s.moods.Upsert(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Week returns the entries of the current Monday to Sunday week.
func (s *MoodService) Week(ctx context.Context, userID uuid.UUID) ([]*model.MoodEntry, error) {
	today := model.DateOnly(s.clock.Now().In(s.location))
	offset := (int(today.Weekday()) + 6) % 7
	monday := today.AddDate(0, 0, -offset)
	return s.moods.ListRange(ctx, userID, monday, monday.AddDate(0, 0, 6))
}
