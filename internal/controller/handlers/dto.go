package handlers

import (
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/service"
)

type createBookingRequest struct {
	CounselorID string `json:"counselor_id" validate:"required,uuid"`
	SlotID      string `json:"slot_id" validate:"required,uuid"`
	Notes       string `json:"notes" validate:"max=1000"`
}

type rejectBookingRequest struct {
	Reason string `json:"rejection_reason" validate:"max=500"`
}

// rescheduleRequest takes either slot_id or booking_date with booking_time.
type rescheduleRequest struct {
	SlotID      string           `json:"slot_id" validate:"omitempty,uuid"`
	BookingDate string           `json:"booking_date" validate:"omitempty,datetime=2006-01-02"`
	BookingTime *model.TimeOfDay `json:"booking_time"`
}

type weeklyWindowRequest struct {
	DayOfWeek *int             `json:"day_of_week" validate:"required,min=0,max=6"`
	StartTime *model.TimeOfDay `json:"start_time" validate:"required"`
	EndTime   *model.TimeOfDay `json:"end_time" validate:"required"`
}

func (r weeklyWindowRequest) input() service.WindowInput {
	return service.WindowInput{
		DayOfWeek: *r.DayOfWeek,
		StartTime: *r.StartTime,
		EndTime:   *r.EndTime,
	}
}

type weeklyScheduleRequest struct {
	Schedules []weeklyWindowRequest `json:"schedules" validate:"required,min=1,max=21,dive"`
}

type scheduleRequestRequest struct {
	ScheduledDate string           `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	StartTime     *model.TimeOfDay `json:"start_time" validate:"required"`
	EndTime       *model.TimeOfDay `json:"end_time" validate:"required"`
}

type adminNotesRequest struct {
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}

type sendMessageRequest struct {
	Content     string `json:"content" validate:"required,max=5000"`
	MessageType string `json:"message_type" validate:"omitempty,oneof=text image file audio"`
}

type moodRequest struct {
	Mood      string `json:"mood" validate:"required,max=50"`
	EntryDate string `json:"entry_date" validate:"omitempty,datetime=2006-01-02"`
}
