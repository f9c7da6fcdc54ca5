package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

// TxManager runs fn in a transaction carried by the context.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Directory resolves accounts and roles.
type Directory interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*model.Identity, error)
	ListAdmins(ctx context.Context) ([]uuid.UUID, error)
}

// Notifier delivers domain events to a recipient.
type Notifier interface {
	Send(ctx context.Context, recipientID uuid.UUID, kind model.EventKind, payload map[string]any) error
}

type WindowStore interface {
	// LockCounselor serializes window submissions of one counselor for the
	// rest of the transaction.
	LockCounselor(ctx context.Context, counselorID uuid.UUID) error
	Create(ctx context.Context, w *model.WeeklyWindow) error
	CountByCounselor(ctx context.Context, counselorID uuid.UUID) (int, error)
	ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error)
	ListBlocking(ctx context.Context, counselorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyWindow, error)
	ListApproved(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error)
	ListApprovedCounselorIDs(ctx context.Context) ([]uuid.UUID, error)
	ListPending(ctx context.Context) ([]*model.PendingCounselorWindows, error)
	CountPendingCounselors(ctx context.Context) (int, error)
	ApprovePending(ctx context.Context, counselorID uuid.UUID, notes string) (int64, error)
	RejectPending(ctx context.Context, counselorID uuid.UUID, reason string) (int64, error)
	DeleteRejected(ctx context.Context, counselorID uuid.UUID) (int64, error)
}

type SlotStore interface {
	Upsert(ctx context.Context, slot *model.Slot) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error)
	GetByKey(ctx context.Context, counselorID uuid.UUID, date time.Time, at model.TimeOfDay) (*model.Slot, error)
	SetAvailable(ctx context.Context, id uuid.UUID, available bool) error
	ListAvailable(ctx context.Context, counselorID uuid.UUID, date time.Time) ([]*model.Slot, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, f repository.BookingFilter) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, rejectionReason string) (bool, error)
	Reschedule(ctx context.Context, id uuid.UUID, from []model.BookingStatus, slotID *uuid.UUID, date time.Time, at model.TimeOfDay) (bool, error)
	CountByStatus(ctx context.Context) (map[model.BookingStatus]int, error)
}

type ScheduleRequestStore interface {
	Create(ctx context.Context, req *model.ScheduleRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleRequest, error)
	ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]*model.ScheduleRequest, error)
	ListPending(ctx context.Context) ([]*model.ScheduleRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status model.RequestStatus, notes string) (bool, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *model.Message) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Message, error)
	MarkRead(ctx context.Context, bookingID, recipientID uuid.UUID) (int64, error)
	Last(ctx context.Context, bookingID uuid.UUID) (*model.Message, error)
	CountUnread(ctx context.Context, bookingID, recipientID uuid.UUID) (int, error)
}

type MoodStore interface {
	Upsert(ctx context.Context, e *model.MoodEntry) error
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*model.MoodEntry, error)
}

// AccountStore is the admin side of the user directory.
type AccountStore interface {
	ListCounselors(ctx context.Context) ([]*model.CounselorProfile, error)
	ListCounselorsByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.CounselorProfile, error)
	ListUsers(ctx context.Context, role model.Role) ([]*model.User, error)
	ToggleUserActive(ctx context.Context, userID uuid.UUID) (active, found bool, err error)
	ToggleCounselorActive(ctx context.Context, userID uuid.UUID) (active, found bool, err error)
	CountByRole(ctx context.Context) (map[model.Role]int, error)
}

type InboxStore interface {
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

var (
	_ TxManager            = (*base.TxManager)(nil)
	_ WindowStore          = (*repository.AvailabilityRepository)(nil)
	_ SlotStore            = (*repository.SlotRepository)(nil)
	_ BookingStore         = (*repository.BookingRepository)(nil)
	_ ScheduleRequestStore = (*repository.ScheduleRequestRepository)(nil)
	_ MessageStore         = (*repository.MessageRepository)(nil)
	_ MoodStore            = (*repository.MoodRepository)(nil)
	_ Directory            = (*repository.UserRepository)(nil)
	_ AccountStore         = (*repository.UserRepository)(nil)
	_ InboxStore           = (*repository.NotificationRepository)(nil)
)
