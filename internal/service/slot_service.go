package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
)

// SlotService owns the slot inventory. Consume and Release must run inside the
// caller's transaction.
type SlotService struct {
	slots    SlotStore
	clock    clock.Clock
	location *time.Location
}

func NewSlotService(slots SlotStore, clk clock.Clock, settings Settings) *SlotService {
	settings = settings.withDefaults()
	return &SlotService{slots: slots, clock: clk, location: settings.Location}
}

// ListAvailable returns free slots of the counselor on date ordered by time.
// Past dates are rejected.
func (s *SlotService) ListAvailable(ctx context.Context, counselorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	today := model.DateOnly(s.clock.Now().In(s.location))
	if model.DateOnly(date).Before(today) {
		return nil, apperr.Validation("date must be today or later")
	}
	return s.slots.ListAvailable(ctx, counselorID, date)
}

// Consume locks the slot, checks it can be booked with counselorID and marks it
// taken. The lock is held until the surrounding transaction ends, so concurrent
// callers for the same slot serialize and only the first one succeeds.
func (s *SlotService) Consume(ctx context.Context, slotID, counselorID uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.GetForUpdate(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, apperr.NotFound(apperr.ReasonSlotNotFound, "slot not found")
	}
	if slot.CounselorID != counselorID {
		return nil, apperr.New(apperr.KindValidation, apperr.ReasonSlotMismatch, "slot belongs to another counselor")
	}
	if !slot.IsAvailable {
		return nil, apperr.Conflict(apperr.ReasonSlotUnavailable, "slot is no longer available")
	}
	if !slot.StartsAt(s.location).After(s.clock.Now()) {
		return nil, apperr.Conflict(apperr.ReasonSlotUnavailable, "slot has already started")
	}
	if err := s.slots.SetAvailable(ctx, slot.ID, false); err != nil {
		return nil, err
	}
	slot.IsAvailable = false
	return slot, nil
}

// ConsumeAt consumes the generated slot of the counselor at date and time when
// one exists. It returns nil when the hour has no slot. held is the slot the
// caller already owns and is returned as is.
func (s *SlotService) ConsumeAt(ctx context.Context, counselorID uuid.UUID, date time.Time, at model.TimeOfDay, held *uuid.UUID) (*model.Slot, error) {
	slot, err := s.slots.GetByKey(ctx, counselorID, date, at)
	if err != nil || slot == nil {
		return nil, err
	}
	if held != nil && *held == slot.ID {
		return slot, nil
	}
	return s.Consume(ctx, slot.ID, counselorID)
}

// Release makes the slot bookable again. A nil id is a no-op.
func (s *SlotService) Release(ctx context.Context, slotID *uuid.UUID) error {
	if slotID == nil {
		return nil
	}
	return s.slots.SetAvailable(ctx, *slotID, true)
}
