package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/service"
	"go.uber.org/zap"
)

type BookingService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateBookingInput) (*model.Booking, error)
	Confirm(ctx context.Context, counselorID, bookingID uuid.UUID) (*model.Booking, error)
	Reject(ctx context.Context, counselorID, bookingID uuid.UUID, reason string) (*model.Booking, error)
	Cancel(ctx context.Context, userID, bookingID uuid.UUID) (*model.Booking, error)
	Complete(ctx context.Context, counselorID, bookingID uuid.UUID) (*model.Booking, error)
	Reschedule(ctx context.Context, actorID, bookingID uuid.UUID, in service.RescheduleInput) (*model.Booking, error)
	List(ctx context.Context, actorID uuid.UUID, status *model.BookingStatus) ([]*model.Booking, error)
	Today(ctx context.Context, actorID uuid.UUID) ([]*model.Booking, error)
	Get(ctx context.Context, actorID, bookingID uuid.UUID) (*model.Booking, error)
}

type AvailabilityService interface {
	SubmitWeeklyWindows(ctx context.Context, counselorID uuid.UUID, inputs []service.WindowInput) ([]*model.WeeklyWindow, error)
	SubmitWeeklyWindow(ctx context.Context, counselorID uuid.UUID, in service.WindowInput) (*model.WeeklyWindow, error)
	Approve(ctx context.Context, counselorID uuid.UUID, notes string) (*service.ApproveResult, error)
	Reject(ctx context.Context, counselorID uuid.UUID, reason string) (int64, error)
	HasWeeklySetup(ctx context.Context, counselorID uuid.UUID) (bool, error)
	ListWindows(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error)
	ListPending(ctx context.Context) ([]*model.PendingCounselorWindows, error)
	ListApprovedCounselors(ctx context.Context) ([]*model.CounselorProfile, error)
}

type SlotService interface {
	ListAvailable(ctx context.Context, counselorID uuid.UUID, date time.Time) ([]*model.Slot, error)
}

type ScheduleRequestService interface {
	Submit(ctx context.Context, counselorID uuid.UUID, in service.ScheduleRequestInput) (*model.ScheduleRequest, error)
	ListOwn(ctx context.Context, counselorID uuid.UUID) ([]*model.ScheduleRequest, error)
	ListPending(ctx context.Context) ([]*model.ScheduleRequest, error)
	Approve(ctx context.Context, id uuid.UUID, notes string) (*model.ScheduleRequest, error)
	Reject(ctx context.Context, id uuid.UUID, notes string) (*model.ScheduleRequest, error)
}

type ChatService interface {
	Conversations(ctx context.Context, actorID uuid.UUID) ([]*model.Conversation, error)
	Messages(ctx context.Context, actorID, bookingID uuid.UUID) ([]*model.Message, error)
	Send(ctx context.Context, actorID, bookingID uuid.UUID, content string, kind model.MessageType) (*model.Message, error)
}

type MoodService interface {
	Record(ctx context.Context, userID uuid.UUID, label string, date *time.Time) (*model.MoodEntry, error)
	Week(ctx context.Context, userID uuid.UUID) ([]*model.MoodEntry, error)
}

type AdminService interface {
	ListCounselors(ctx context.Context) ([]*model.CounselorProfile, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	ToggleCounselorActive(ctx context.Context, counselorID uuid.UUID) (bool, error)
	ToggleUserActive(ctx context.Context, userID uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*service.Stats, error)
}

type InboxService interface {
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, recipientID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

var (
	_ BookingService         = (*service.BookingService)(nil)
	_ AvailabilityService    = (*service.AvailabilityService)(nil)
	_ SlotService            = (*service.SlotService)(nil)
	_ ScheduleRequestService = (*service.ScheduleRequestService)(nil)
	_ ChatService            = (*service.ChatService)(nil)
	_ MoodService            = (*service.MoodService)(nil)
	_ AdminService           = (*service.AdminService)(nil)
	_ InboxService           = (*service.InboxService)(nil)
)

// Services bundles everything the HTTP handlers call into.
type Services struct {
	Bookings     BookingService
	Availability AvailabilityService
	Slots        SlotService
	Requests     ScheduleRequestService
	Chat         ChatService
	Mood         MoodService
	Admin        AdminService
	Inbox        InboxService
}

// Handlers holds the dependencies of the HTTP endpoints.
type Handlers struct {
	bookings     BookingService
	availability AvailabilityService
	slots        SlotService
	requests     ScheduleRequestService
	chat         ChatService
	mood         MoodService
	admin        AdminService
	inbox        InboxService
	validate     *validator.Validate
	clock        clock.Clock
	location     *time.Location
	logger       *zap.Logger
}

func NewHandlers(services Services, clk clock.Clock, location *time.Location, logger *zap.Logger) *Handlers {
	if location == nil {
		location = time.UTC
	}
	return &Handlers{
		bookings:     services.Bookings,
		availability: services.Availability,
		slots:        services.Slots,
		requests:     services.Requests,
		chat:         services.Chat,
		mood:         services.Mood,
		admin:        services.Admin,
		inbox:        services.Inbox,
		validate:     validator.New(),
		clock:        clk,
		location:     location,
		logger:       logger,
	}
}
