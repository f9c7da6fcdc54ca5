package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type CreateBookingInput struct {
	CounselorID uuid.UUID
	SlotID      uuid.UUID
	Notes       string
}

// RescheduleInput moves a booking either onto another generated slot (SlotID)
// or to a free-form date and time (Date and Time).
type RescheduleInput struct {
	SlotID *uuid.UUID
	Date   *time.Time
	Time   *model.TimeOfDay
}

type BookingService struct {
	tx        TxManager
	bookings  BookingStore
	slots     *SlotService
	directory Directory
	events    *events
	clock     clock.Clock
	location  *time.Location
	logger    *zap.Logger
}

func NewBookingService(
	tx TxManager,
	bookings BookingStore,
	slots *SlotService,
	directory Directory,
	notifier Notifier,
	clk clock.Clock,
	settings Settings,
	logger *zap.Logger,
) *BookingService {
	settings = settings.withDefaults()
	return &BookingService{
		tx:        tx,
		bookings:  bookings,
		slots:     slots,
		directory: directory,
		events:    &events{notifier: notifier, timeout: settings.NotifyTimeout, logger: logger},
		clock:     clk,
		location:  settings.Location,
		logger:    logger,
	}
}

// Create books a slot for userID. The slot is locked and consumed in the same
// transaction as the booking insert.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, in CreateBookingInput) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("user_id", userID.String()),
		attribute.String("slot_id", in.SlotID.String()),
	)

	counselor, err := requireCounselor(ctx, s.directory, in.CounselorID)
	if err != nil {
		return nil, err
	}
	if !counselor.HasProfile || !counselor.AcceptingClients {
		return nil, apperr.Conflict(apperr.ReasonCounselorNotAccepting, "counselor is not accepting new clients")
	}

	booking := &model.Booking{
		UserID:      userID,
		CounselorID: in.CounselorID,
		Status:      model.BookingStatusPending,
		Notes:       in.Notes,
	}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.Consume(ctx, in.SlotID, in.CounselorID)
		if err != nil {
			return err
		}
		booking.SlotID = &slot.ID
		booking.BookingDate = slot.SlotDate
		booking.BookingTime = slot.SlotTime
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("counselor_id", in.CounselorID.String()),
		zap.String("slot_id", in.SlotID.String()))

	s.events.publish(ctx, model.EventNewBooking, s.payload(booking), booking.CounselorID)
	return booking, nil
}

func (s *BookingService) payload(b *model.Booking) map[string]any {
	return map[string]any{
		"booking_id":   b.ID.String(),
		"user_id":      b.UserID.String(),
		"counselor_id": b.CounselorID.String(),
		"scheduled_at": b.ScheduledAt(s.location).Format(time.RFC3339),
		"status":       string(b.Status),
	}
}

type transition struct {
	name        string
	from        []model.BookingStatus
	to          model.BookingStatus
	allowed     func(actorID uuid.UUID, b *model.Booking) bool
	denyReason  string
	releaseSlot bool
}

var (
	confirmTransition = transition{
		name:       "confirm",
		from:       []model.BookingStatus{model.BookingStatusPending},
		to:         model.BookingStatusConfirmed,
		allowed:    isCounselorFor,
		denyReason: apperr.ReasonNotAssignedCounselor,
	}
	rejectTransition = transition{
		name:        "reject",
		from:        []model.BookingStatus{model.BookingStatusPending},
		to:          model.BookingStatusRejected,
		allowed:     isCounselorFor,
		denyReason:  apperr.ReasonNotAssignedCounselor,
		releaseSlot: true,
	}
	cancelTransition = transition{
		name:        "cancel",
		from:        []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed},
		to:          model.BookingStatusCancelled,
		allowed:     isOwnerOf,
		denyReason:  apperr.ReasonNotOwner,
		releaseSlot: true,
	}
	completeTransition = transition{
		name:       "complete",
		from:       []model.BookingStatus{model.BookingStatusConfirmed},
		to:         model.BookingStatusCompleted,
		allowed:    isCounselorFor,
		denyReason: apperr.ReasonNotAssignedCounselor,
	}
)

// apply re-reads the booking, checks actor and source status, and writes the new
// status guarded on the source set. A concurrent transition that got there first
// makes the guarded write miss, which is reported as an invalid state.
func (s *BookingService) apply(ctx context.Context, actorID, bookingID uuid.UUID, t transition, reason string) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingService."+t.name)
	defer span.End()

	var booking *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound(apperr.ReasonBookingNotFound, "booking not found")
		}
		if !t.allowed(actorID, b) {
			return apperr.Forbidden(t.denyReason, fmt.Sprintf("not allowed to %s this booking", t.name))
		}
		if !b.Status.In(t.from...) {
			return apperr.InvalidState(fmt.Sprintf("cannot %s a %s booking", t.name, b.Status))
		}

		ok, err := s.bookings.UpdateStatus(ctx, b.ID, t.from, t.to, reason)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState(fmt.Sprintf("booking changed while trying to %s it", t.name))
		}
		if t.releaseSlot {
			if err := s.slots.Release(ctx, b.SlotID); err != nil {
				return err
			}
		}

		b.Status = t.to
		if t.to == model.BookingStatusRejected {
			b.RejectionReason = reason
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("actor_id", actorID.String()),
		zap.String("status", string(t.to)))

	return booking, nil
}

// Confirm accepts a pending booking on behalf of its counselor and notifies the client.
func (s *BookingService) Confirm(ctx context.Context, counselorID, bookingID uuid.UUID) (*model.Booking, error) {
	b, err := s.apply(ctx, counselorID, bookingID, confirmTransition, "")
	if err != nil {
		return nil, err
	}
	s.events.publish(ctx, model.EventBookingConfirmed, s.payload(b), b.UserID)
	return b, nil
}

// Reject declines a pending booking and frees its slot.
func (s *BookingService) Reject(ctx context.Context, counselorID, bookingID uuid.UUID, reason string) (*model.Booking, error) {
	return s.apply(ctx, counselorID, bookingID, rejectTransition, reason)
}

// Cancel is the client withdrawing a pending or confirmed booking. The slot is freed.
func (s *BookingService) Cancel(ctx context.Context, userID, bookingID uuid.UUID) (*model.Booking, error) {
	return s.apply(ctx, userID, bookingID, cancelTransition, "")
}

func (s *BookingService) Complete(ctx context.Context, counselorID, bookingID uuid.UUID) (*model.Booking, error) {
	return s.apply(ctx, counselorID, bookingID, completeTransition, "")
}

var reschedulable = []model.BookingStatus{model.BookingStatusPending, model.BookingStatusConfirmed}

// Reschedule moves a pending or confirmed booking and puts it back to pending.
// Either participant may reschedule.
func (s *BookingService) Reschedule(ctx context.Context, actorID, bookingID uuid.UUID, in RescheduleInput) (*model.Booking, error) {
	ctx, span := tracer.Start(ctx, "BookingService.Reschedule")
	defer span.End()

	bySlot := in.SlotID != nil
	byTime := in.Date != nil && in.Time != nil
	if bySlot == byTime {
		return nil, apperr.Validation("provide either slot_id or both date and time")
	}
	if byTime {
		if !in.Time.Valid() {
			return nil, apperr.Validation("time of day out of range")
		}
		if !in.Time.On(*in.Date, s.location).After(s.clock.Now()) {
			return nil, apperr.New(apperr.KindValidation, apperr.ReasonPastSchedule, "new schedule must be in the future")
		}
	}

	var booking *model.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound(apperr.ReasonBookingNotFound, "booking not found")
		}
		if !isParticipant(actorID, b) {
			return apperr.Forbidden(apperr.ReasonNotParticipant, "not a participant of this booking")
		}
		if !b.Status.In(reschedulable...) {
			return apperr.InvalidState(fmt.Sprintf("cannot reschedule a %s booking", b.Status))
		}

		var (
			slotID *uuid.UUID
			date   time.Time
			at     model.TimeOfDay
		)
		if bySlot {
			slot, err := s.slots.Consume(ctx, *in.SlotID, b.CounselorID)
			if err != nil {
				return err
			}
			slotID, date, at = &slot.ID, slot.SlotDate, slot.SlotTime
		} else {
			date, at = model.DateOnly(*in.Date), *in.Time
			slot, err := s.slots.ConsumeAt(ctx, b.CounselorID, date, at, b.SlotID)
			if err != nil {
				return err
			}
			if slot != nil {
				slotID = &slot.ID
			}
		}

		ok, err := s.bookings.Reschedule(ctx, b.ID, reschedulable, slotID, date, at)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.InvalidState("booking changed while rescheduling")
		}
		if b.SlotID != nil && (slotID == nil || *slotID != *b.SlotID) {
			if err := s.slots.Release(ctx, b.SlotID); err != nil {
				return err
			}
		}

		b.SlotID, b.BookingDate, b.BookingTime = slotID, date, at
		b.Status = model.BookingStatusPending
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Booking rescheduled",
		zap.String("booking_id", bookingID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Time("scheduled_at", booking.ScheduledAt(s.location)))

	return booking, nil
}

// scope returns the filter restricting bookings to the actor's side.
func (s *BookingService) scope(ctx context.Context, actorID uuid.UUID) (repository.BookingFilter, error) {
	actor, err := s.directory.Lookup(ctx, actorID)
	if err != nil {
		return repository.BookingFilter{}, fmt.Errorf("lookup actor: %w", err)
	}
	if actor == nil {
		return repository.BookingFilter{}, apperr.NotFound(apperr.ReasonUserNotFound, "user not found")
	}
	if actor.IsCounselor() {
		return repository.BookingFilter{CounselorID: &actorID}, nil
	}
	return repository.BookingFilter{UserID: &actorID}, nil
}

// List returns the caseload of a counselor or the own bookings of a client,
// latest first, optionally filtered by status.
func (s *BookingService) List(ctx context.Context, actorID uuid.UUID, status *model.BookingStatus) ([]*model.Booking, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", *status))
	}
	f, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	f.Status = status
	return s.bookings.List(ctx, f)
}

// Today returns the actor's bookings scheduled for the current date.
func (s *BookingService) Today(ctx context.Context, actorID uuid.UUID) ([]*model.Booking, error) {
	f, err := s.scope(ctx, actorID)
	if err != nil {
		return nil, err
	}
	today := model.DateOnly(s.clock.Now().In(s.location))
	f.Date = &today
	f.Ascending = true
	return s.bookings.List(ctx, f)
}

// Get returns a booking the actor participates in.
func (s *BookingService) Get(ctx context.Context, actorID, bookingID uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound(apperr.ReasonBookingNotFound, "booking not found")
	}
	if !isParticipant(actorID, b) {
		return nil, apperr.Forbidden(apperr.ReasonNotParticipant, "not a participant of this booking")
	}
	return b, nil
}
