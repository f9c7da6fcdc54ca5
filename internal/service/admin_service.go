package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

// Stats is the admin dashboard summary.
type Stats struct {
	Users             int                         `json:"total_users"`
	Counselors        int                         `json:"total_counselors"`
	Bookings          map[model.BookingStatus]int `json:"bookings"`
	PendingCounselors int                         `json:"pending_weekly_schedules"`
}

type AdminService struct {
	accounts AccountStore
	bookings BookingStore
	windows  WindowStore
	logger   *zap.Logger
}

func NewAdminService(accounts AccountStore, bookings BookingStore, windows WindowStore, logger *zap.Logger) *AdminService {
	return &AdminService{accounts: accounts, bookings: bookings, windows: windows, logger: logger}
}

func (s *AdminService) ListCounselors(ctx context.Context) ([]*model.CounselorProfile, error) {
	return s.accounts.ListCounselors(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.accounts.ListUsers(ctx, model.RoleUser)
}

// ToggleCounselorActive flips the counselor profile's active flag and returns the new value.
func (s *AdminService) ToggleCounselorActive(ctx context.Context, counselorID uuid.UUID) (bool, error) {
	active, found, err := s.accounts.ToggleCounselorActive(ctx, counselorID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, apperr.NotFound(apperr.ReasonCounselorNotFound, "counselor not found")
	}
	s.logger.Info("Counselor active flag toggled",
		zap.String("counselor_id", counselorID.String()),
		zap.Bool("active", active))
	return active, nil
}

func (s *AdminService) ToggleUserActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	active, found, err := s.accounts.ToggleUserActive(ctx, userID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, apperr.NotFound(apperr.ReasonUserNotFound, "user not found")
	}
	s.logger.Info("User active flag toggled",
		zap.String("user_id", userID.String()),
		zap.Bool("active", active))
	return active, nil
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	roles, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.windows.CountPendingCounselors(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Users:             roles[model.RoleUser],
		Counselors:        roles[model.RoleCounselor],
		Bookings:          bookings,
		PendingCounselors: pending,
	}, nil
}
