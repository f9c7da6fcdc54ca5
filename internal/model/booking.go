package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending" // waiting for the counselor
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Terminal reports whether no further transitions are allowed.
func (s BookingStatus) Terminal() bool {
	switch s {
	case BookingStatusRejected, BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCancelled, BookingStatusCompleted:
		return true
	}
	return false
}

// In reports whether s is one of the given statuses.
func (s BookingStatus) In(set ...BookingStatus) bool {
	return slices.Contains(set, s)
}

type Booking struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"user_id"`
	CounselorID     uuid.UUID     `json:"counselor_id"`
	SlotID          *uuid.UUID    `json:"slot_id"` // nil for ad-hoc bookings
	BookingDate     time.Time     `json:"booking_date"`
	BookingTime     TimeOfDay     `json:"booking_time"`
	Status          BookingStatus `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// ScheduledAt combines date and time in loc.
func (b *Booking) ScheduledAt(loc *time.Location) time.Time {
	return b.BookingTime.On(b.BookingDate, loc)
}
