package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

type ScheduleRequestInput struct {
	Date      time.Time
	StartTime model.TimeOfDay
	EndTime   model.TimeOfDay
}

// ScheduleRequestService handles one-off dated availability requests.
// Unlike weekly windows, rejected requests stay on file.
type ScheduleRequestService struct {
	requests  ScheduleRequestStore
	directory Directory
	events    *events
	clock     clock.Clock
	location  *time.Location
	logger    *zap.Logger
}

func NewScheduleRequestService(
	requests ScheduleRequestStore,
	directory Directory,
	notifier Notifier,
	clk clock.Clock,
	settings Settings,
	logger *zap.Logger,
) *ScheduleRequestService {
	settings = settings.withDefaults()
	return &ScheduleRequestService{
		requests:  requests,
		directory: directory,
		events:    &events{notifier: notifier, timeout: settings.NotifyTimeout, logger: logger},
		clock:     clk,
		location:  settings.Location,
		logger:    logger,
	}
}

func (s *ScheduleRequestService) Submit(ctx context.Context, counselorID uuid.UUID, in ScheduleRequestInput) (*model.ScheduleRequest, error) {
	today := model.DateOnly(s.clock.Now().In(s.location))
	if model.DateOnly(in.Date).Before(today) {
		return nil, apperr.New(apperr.KindValidation, apperr.ReasonPastSchedule, "date must be today or later")
	}
	if !in.StartTime.Valid() || !in.EndTime.Valid() || in.StartTime >= in.EndTime {
		return nil, apperr.Validation("start_time must be before end_time")
	}

	counselor, err := requireCounselor(ctx, s.directory, counselorID)
	if err != nil {
		return nil, err
	}

	req := &model.ScheduleRequest{
		CounselorID:   counselorID,
		ScheduledDate: model.DateOnly(in.Date),
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		Status:        model.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Schedule request submitted",
		zap.String("request_id", req.ID.String()),
		zap.String("counselor_id", counselorID.String()))

	admins, err := s.directory.ListAdmins(ctx)
	if err != nil {
		s.logger.Warn("Failed to list admins for notification", zap.Error(err))
		return req, nil
	}
	s.events.publish(ctx, model.EventScheduleSubmitted, map[string]any{
		"counselor_id":   counselorID.String(),
		"counselor_name": counselor.Name,
		"request_id":     req.ID.String(),
		"date":           req.ScheduledDate.Format(time.DateOnly),
	}, admins...)
	return req, nil
}

func (s *ScheduleRequestService) ListOwn(ctx context.Context, counselorID uuid.UUID) ([]*model.ScheduleRequest, error) {
	return s.requests.ListByCounselor(ctx, counselorID)
}

func (s *ScheduleRequestService) ListPending(ctx context.Context) ([]*model.ScheduleRequest, error) {
	return s.requests.ListPending(ctx)
}

func (s *ScheduleRequestService) Approve(ctx context.Context, id uuid.UUID, notes string) (*model.ScheduleRequest, error) {
	return s.resolve(ctx, id, model.RequestStatusApproved, notes)
}

func (s *ScheduleRequestService) Reject(ctx context.Context, id uuid.UUID, notes string) (*model.ScheduleRequest, error) {
	return s.resolve(ctx, id, model.RequestStatusRejected, notes)
}

func (s *ScheduleRequestService) resolve(ctx context.Context, id uuid.UUID, status model.RequestStatus, notes string) (*model.ScheduleRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound(apperr.ReasonRequestNotFound, "schedule request not found")
	}
	if !req.IsPending() {
		return nil, apperr.InvalidState("schedule request is already " + string(req.Status))
	}

	ok, err := s.requests.Resolve(ctx, id, status, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.InvalidState("schedule request was resolved concurrently")
	}

	req.Status = status
	req.AdminNotes = notes

	s.logger.Info("Schedule request resolved",
		zap.String("request_id", id.String()),
		zap.String("status", string(status)))

	return req, nil
}
