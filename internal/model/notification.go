package model

import (
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventNewBooking        EventKind = "new_booking"
	EventBookingConfirmed  EventKind = "booking_confirmed"
	EventScheduleSubmitted EventKind = "schedule_submitted"
)

// Notification is an in-app inbox entry.
type Notification struct {
	ID          uuid.UUID      `json:"id"`
	RecipientID uuid.UUID      `json:"recipient_id"`
	Kind        EventKind      `json:"type"`
	Payload     map[string]any `json:"data"`
	ReadAt      *time.Time     `json:"read_at"`
	CreatedAt   time.Time      `json:"created_at"`
}
