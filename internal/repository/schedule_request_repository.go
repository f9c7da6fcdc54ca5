package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

type ScheduleRequestRepository struct {
	*base.Repository
}

func NewScheduleRequestRepository(b *base.Repository) *ScheduleRequestRepository {
	return &ScheduleRequestRepository{Repository: b}
}

const scheduleRequestColumns = `id, counselor_id, scheduled_date, start_time, end_time, status, admin_notes, created_at, updated_at`

func scanScheduleRequest(row pgx.Row) (*model.ScheduleRequest, error) {
	var (
		req        model.ScheduleRequest
		start, end pgtype.Time
	)
	err := row.Scan(
		&req.ID,
		&req.CounselorID,
		&req.ScheduledDate,
		&start,
		&end,
		&req.Status,
		&req.AdminNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.StartTime = timeOfDay(start)
	req.EndTime = timeOfDay(end)
	return &req, nil
}

func (r *ScheduleRequestRepository) Create(ctx context.Context, req *model.ScheduleRequest) error {
	query := `
		INSERT INTO counselor_schedules (counselor_id, scheduled_date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		req.CounselorID,
		dateArg(req.ScheduledDate),
		timeArg(req.StartTime),
		timeArg(req.EndTime),
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create schedule request: %w", err)
	}
	return nil
}

// GetByID returns nil when the request does not exist.
func (r *ScheduleRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ScheduleRequest, error) {
	req, err := scanScheduleRequest(r.QueryRow(ctx, `
		SELECT `+scheduleRequestColumns+`
		FROM counselor_schedules
		WHERE id = $1
	`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule request: %w", err)
	}
	return req, nil
}

func (r *ScheduleRequestRepository) list(ctx context.Context, query string, args ...any) ([]*model.ScheduleRequest, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*model.ScheduleRequest
	for rows.Next() {
		req, err := scanScheduleRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

// ListByCounselor returns a counselor's requests, latest date first.
func (r *ScheduleRequestRepository) ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]*model.ScheduleRequest, error) {
	reqs, err := r.list(ctx, `
		SELECT `+scheduleRequestColumns+`
		FROM counselor_schedules
		WHERE counselor_id = $1
		ORDER BY scheduled_date DESC, start_time
	`, counselorID)
	if err != nil {
		return nil, fmt.Errorf("list schedule requests: %w", err)
	}
	return reqs, nil
}

// ListPending returns every pending request, oldest first.
func (r *ScheduleRequestRepository) ListPending(ctx context.Context) ([]*model.ScheduleRequest, error) {
	reqs, err := r.list(ctx, `
		SELECT `+scheduleRequestColumns+`
		FROM counselor_schedules
		WHERE status = 'pending'
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending schedule requests: %w", err)
	}
	return reqs, nil
}

// Resolve moves a pending request to status. ok is false when the request
// was not pending anymore.
func (r *ScheduleRequestRepository) Resolve(ctx context.Context, id uuid.UUID, status model.RequestStatus, notes string) (bool, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE counselor_schedules
		SET status = $2, admin_notes = $3, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, id, status, notes)
	if err != nil {
		return false, fmt.Errorf("resolve schedule request: %w", err)
	}
	return n == 1, nil
}
