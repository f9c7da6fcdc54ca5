package model

import (
	"time"

	"github.com/google/uuid"
)

type WindowStatus string

const (
	WindowStatusPending  WindowStatus = "pending"
	WindowStatusApproved WindowStatus = "approved"
	WindowStatusRejected WindowStatus = "rejected"
)

// WeeklyWindow is a recurring weekday time range a counselor offers sessions in.
type WeeklyWindow struct {
	ID          uuid.UUID    `json:"id"`
	CounselorID uuid.UUID    `json:"counselor_id"`
	DayOfWeek   int          `json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	StartTime   TimeOfDay    `json:"start_time"`
	EndTime     TimeOfDay    `json:"end_time"`
	Status      WindowStatus `json:"status"`
	AdminNotes  string       `json:"admin_notes,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (w *WeeklyWindow) DayName() string {
	if w.DayOfWeek < 0 || w.DayOfWeek >= len(dayNames) {
		return ""
	}
	return dayNames[w.DayOfWeek]
}

// Overlaps reports whether both windows fall on the same weekday and their
// half-open ranges intersect.
func (w *WeeklyWindow) Overlaps(o *WeeklyWindow) bool {
	if w.DayOfWeek != o.DayOfWeek {
		return false
	}
	return w.StartTime < o.EndTime && o.StartTime < w.EndTime
}

// Blocking reports whether the window still occupies its day for overlap checks.
func (w *WeeklyWindow) Blocking() bool {
	return w.Status == WindowStatusPending || w.Status == WindowStatusApproved
}

// PendingCounselorWindows groups pending windows of one counselor for admin review.
type PendingCounselorWindows struct {
	CounselorID   uuid.UUID       `json:"counselor_id"`
	CounselorName string          `json:"counselor_name"`
	Windows       []*WeeklyWindow `json:"schedules"`
	SubmittedAt   time.Time       `json:"created_at"`
}
