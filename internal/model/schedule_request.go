package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

// Request status constants
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// ScheduleRequest is a counselor's one-off availability request for a specific date.
// Unlike weekly windows, rejected requests are kept.
type ScheduleRequest struct {
	ID            uuid.UUID     `json:"id"`
	CounselorID   uuid.UUID     `json:"counselor_id"`
	ScheduledDate time.Time     `json:"scheduled_date"`
	StartTime     TimeOfDay     `json:"start_time"`
	EndTime       TimeOfDay     `json:"end_time"`
	Status        RequestStatus `json:"status"`
	AdminNotes    string        `json:"admin_notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// IsPending checks if request is pending
func (r *ScheduleRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
