package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one dated, hour-long bookable unit generated from an approved window.
type Slot struct {
	ID          uuid.UUID `json:"id"`
	CounselorID uuid.UUID `json:"counselor_id"`
	SlotDate    time.Time `json:"slot_date"`
	SlotTime    TimeOfDay `json:"time"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StartsAt returns the absolute start of the slot in loc.
func (s *Slot) StartsAt(loc *time.Location) time.Time {
	return s.SlotTime.On(s.SlotDate, loc)
}

// SlotKey is the natural uniqueness key of a slot.
type SlotKey struct {
	CounselorID uuid.UUID
	Date        string // YYYY-MM-DD
	Time        TimeOfDay
}

func (s *Slot) Key() SlotKey {
	return SlotKey{CounselorID: s.CounselorID, Date: s.SlotDate.Format(time.DateOnly), Time: s.SlotTime}
}
