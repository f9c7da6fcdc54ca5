package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WindowInput is one recurring weekly window as submitted by a counselor.
type WindowInput struct {
	DayOfWeek int
	StartTime model.TimeOfDay
	EndTime   model.TimeOfDay
}

func (in WindowInput) window(counselorID uuid.UUID) *model.WeeklyWindow {
	return &model.WeeklyWindow{
		CounselorID: counselorID,
		DayOfWeek:   in.DayOfWeek,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      model.WindowStatusPending,
	}
}

func (in WindowInput) validate() error {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return apperr.Validation("day_of_week must be between 0 and 6")
	}
	if !in.StartTime.Valid() || !in.EndTime.Valid() {
		return apperr.Validation("time of day out of range")
	}
	if in.StartTime >= in.EndTime {
		return apperr.Validation("start_time must be before end_time")
	}
	return nil
}

// ApproveResult reports what an approval changed.
type ApproveResult struct {
	Approved     int64 `json:"approved"`
	SlotsCreated int   `json:"slots_created"`
}

// AvailabilityService runs the weekly window workflow and slot generation.
type AvailabilityService struct {
	tx        TxManager
	windows   WindowStore
	slots     SlotStore
	directory Directory
	accounts  AccountStore
	events    *events
	clock     clock.Clock
	settings  Settings
	logger    *zap.Logger
}

func NewAvailabilityService(
	tx TxManager,
	windows WindowStore,
	slots SlotStore,
	directory Directory,
	accounts AccountStore,
	notifier Notifier,
	clk clock.Clock,
	settings Settings,
	logger *zap.Logger,
) *AvailabilityService {
	settings = settings.withDefaults()
	return &AvailabilityService{
		tx:        tx,
		windows:   windows,
		slots:     slots,
		directory: directory,
		accounts:  accounts,
		events:    &events{notifier: notifier, timeout: settings.NotifyTimeout, logger: logger},
		clock:     clk,
		settings:  settings,
		logger:    logger,
	}
}

// SubmitWeeklyWindows stores the counselor's one-time weekly setup as pending windows.
func (s *AvailabilityService) SubmitWeeklyWindows(ctx context.Context, counselorID uuid.UUID, inputs []WindowInput) ([]*model.WeeklyWindow, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.SubmitWeeklyWindows")
	defer span.End()
	span.SetAttributes(attribute.String("counselor_id", counselorID.String()))

	if len(inputs) == 0 {
		return nil, apperr.Validation("at least one window is required")
	}
	windows := make([]*model.WeeklyWindow, 0, len(inputs))
	for _, in := range inputs {
		if err := in.validate(); err != nil {
			return nil, err
		}
		w := in.window(counselorID)
		for _, prev := range windows {
			if prev.Overlaps(w) {
				return nil, apperr.Validation(fmt.Sprintf("windows overlap on %s", w.DayName()))
			}
		}
		windows = append(windows, w)
	}

	counselor, err := requireCounselor(ctx, s.directory, counselorID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.windows.LockCounselor(ctx, counselorID); err != nil {
			return err
		}
		n, err := s.windows.CountByCounselor(ctx, counselorID)
		if err != nil {
			return err
		}
		if n > 0 {
			return apperr.Conflict(apperr.ReasonAlreadySubmitted, "weekly schedule already submitted")
		}
		for _, w := range windows {
			if err := s.windows.Create(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Weekly windows submitted",
		zap.String("counselor_id", counselorID.String()),
		zap.Int("count", len(windows)))

	s.notifyAdmins(ctx, counselor, len(windows))
	return windows, nil
}

// SubmitWeeklyWindow adds a single pending window unless it overlaps a pending or
// approved window of the same counselor on the same weekday.
func (s *AvailabilityService) SubmitWeeklyWindow(ctx context.Context, counselorID uuid.UUID, in WindowInput) (*model.WeeklyWindow, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.SubmitWeeklyWindow")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}
	counselor, err := requireCounselor(ctx, s.directory, counselorID)
	if err != nil {
		return nil, err
	}

	w := in.window(counselorID)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.windows.LockCounselor(ctx, counselorID); err != nil {
			return err
		}
		existing, err := s.windows.ListBlocking(ctx, counselorID, w.DayOfWeek)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.Overlaps(w) {
				return apperr.Conflict(apperr.ReasonScheduleConflict,
					fmt.Sprintf("window overlaps %s %s-%s", e.DayName(), e.StartTime, e.EndTime))
			}
		}
		return s.windows.Create(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Weekly window submitted",
		zap.String("counselor_id", counselorID.String()),
		zap.String("window_id", w.ID.String()),
		zap.Int("day_of_week", w.DayOfWeek))

	s.notifyAdmins(ctx, counselor, 1)
	return w, nil
}

func (s *AvailabilityService) notifyAdmins(ctx context.Context, counselor *model.Identity, count int) {
	admins, err := s.directory.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn("Failed to list admins for notification", zap.Error(err))
		return
	}
	s.events.publish(ctx, model.EventScheduleSubmitted, map[string]any{
		"counselor_id":   counselor.UserID.String(),
		"counselor_name": counselor.Name,
		"windows":        count,
	}, admins...)
}

// Approve approves every pending window of the counselor and generates slots for
// the configured horizon. Calling it again only tops up missing slots.
func (s *AvailabilityService) Approve(ctx context.Context, counselorID uuid.UUID, notes string) (*ApproveResult, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.Approve")
	defer span.End()

	res := &ApproveResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.windows.ApprovePending(ctx, counselorID, notes)
		if err != nil {
			return err
		}
		res.Approved = n

		created, err := s.generateFor(ctx, counselorID)
		if err != nil {
			return err
		}
		res.SlotsCreated = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Weekly windows approved",
		zap.String("counselor_id", counselorID.String()),
		zap.Int64("approved", res.Approved),
		zap.Int("slots_created", res.SlotsCreated))

	return res, nil
}

// Reject rejects the counselor's pending windows and deletes them so a new
// setup can be submitted.
func (s *AvailabilityService) Reject(ctx context.Context, counselorID uuid.UUID, reason string) (int64, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.Reject")
	defer span.End()

	var rejected int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		n, err := s.windows.RejectPending(ctx, counselorID, reason)
		if err != nil {
			return err
		}
		rejected = n
		_, err = s.windows.DeleteRejected(ctx, counselorID)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Weekly windows rejected",
		zap.String("counselor_id", counselorID.String()),
		zap.Int64("rejected", rejected),
		zap.String("reason", reason))

	return rejected, nil
}

// generateFor upserts slots for the approved windows of one counselor.
func (s *AvailabilityService) generateFor(ctx context.Context, counselorID uuid.UUID) (int, error) {
	windows, err := s.windows.ListApproved(ctx, counselorID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	from, to := Horizon(now, s.settings.HorizonWeeks, s.settings.Location)

	created := 0
	for _, slot := range GenerateSlots(windows, from, to, now, s.settings.Location) {
		ok, err := s.slots.Upsert(ctx, slot)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// GenerateForAll tops up the slot horizon of every counselor with approved windows.
// A failure for one counselor is logged and does not stop the others.
func (s *AvailabilityService) GenerateForAll(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "AvailabilityService.GenerateForAll")
	defer span.End()

	ids, err := s.windows.ListApprovedCounselorIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list approved counselors: %w", err)
	}

	total := 0
	for _, id := range ids {
		n, err := s.generateFor(ctx, id)
		if err != nil {
			s.logger.Error("Failed to generate slots",
				zap.String("counselor_id", id.String()),
				zap.Error(err))
			continue
		}
		total += n
	}

	s.logger.Info("Generated slots for all counselors",
		zap.Int("counselors", len(ids)),
		zap.Int("slots_created", total))

	return total, nil
}

// HasWeeklySetup reports whether the counselor has submitted any window.
func (s *AvailabilityService) HasWeeklySetup(ctx context.Context, counselorID uuid.UUID) (bool, error) {
	n, err := s.windows.CountByCounselor(ctx, counselorID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *AvailabilityService) ListWindows(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error) {
	return s.windows.ListByCounselor(ctx, counselorID)
}

func (s *AvailabilityService) ListPending(ctx context.Context) ([]*model.PendingCounselorWindows, error) {
	return s.windows.ListPending(ctx)
}

// ListApprovedCounselors returns profiles of counselors offering approved windows.
func (s *AvailabilityService) ListApprovedCounselors(ctx context.Context) ([]*model.CounselorProfile, error) {
	ids, err := s.windows.ListApprovedCounselorIDs(ctx)
	if err != nil {
		return nil, err
	}
	return s.accounts.ListCounselorsByIDs(ctx, ids)
}
