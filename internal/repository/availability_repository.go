package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
	"go.uber.org/zap"
)

// AvailabilityRepository stores counselor weekly windows.
type AvailabilityRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewAvailabilityRepository(b *base.Repository, logger *zap.Logger) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: b, logger: logger}
}

const windowColumns = `id, counselor_id, day_of_week, start_time, end_time, status, admin_notes, created_at, updated_at`

func scanWindow(row pgx.Row) (*model.WeeklyWindow, error) {
	var (
		w          model.WeeklyWindow
		start, end pgtype.Time
	)
	err := row.Scan(
		&w.ID,
		&w.CounselorID,
		&w.DayOfWeek,
		&start,
		&end,
		&w.Status,
		&w.AdminNotes,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	w.StartTime = timeOfDay(start)
	w.EndTime = timeOfDay(end)
	return &w, nil
}

func (r *AvailabilityRepository) queryWindows(ctx context.Context, query string, args ...any) ([]*model.WeeklyWindow, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []*model.WeeklyWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// Create inserts a window and fills its generated fields.
func (r *AvailabilityRepository) Create(ctx context.Context, w *model.WeeklyWindow) error {
	query := `
		INSERT INTO counselor_weekly_availability (counselor_id, day_of_week, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		w.CounselorID,
		w.DayOfWeek,
		timeArg(w.StartTime),
		timeArg(w.EndTime),
		w.Status,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create weekly window: %w", err)
	}
	return nil
}

// LockCounselor takes a transaction-scoped advisory lock on the counselor so
// submissions for the same counselor run one at a time. Must be called inside
// a transaction.
func (r *AvailabilityRepository) LockCounselor(ctx context.Context, counselorID uuid.UUID) error {
	if _, err := r.ExecAffected(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		counselorID.String(),
	); err != nil {
		return fmt.Errorf("lock counselor windows: %w", err)
	}
	return nil
}

// CountByCounselor counts windows in any status.
func (r *AvailabilityRepository) CountByCounselor(ctx context.Context, counselorID uuid.UUID) (int, error) {
	var n int
	err := r.QueryRow(ctx,
		`SELECT count(*) FROM counselor_weekly_availability WHERE counselor_id = $1`,
		counselorID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count weekly windows: %w", err)
	}
	return n, nil
}

// ListByCounselor returns all windows ordered by weekday and start.
func (r *AvailabilityRepository) ListByCounselor(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error) {
	windows, err := r.queryWindows(ctx, `
		SELECT `+windowColumns+`
		FROM counselor_weekly_availability
		WHERE counselor_id = $1
		ORDER BY day_of_week, start_time
	`, counselorID)
	if err != nil {
		return nil, fmt.Errorf("list weekly windows: %w", err)
	}
	return windows, nil
}

// ListBlocking returns pending or approved windows of the counselor on a weekday
// and locks the returned rows.
func (r *AvailabilityRepository) ListBlocking(ctx context.Context, counselorID uuid.UUID, dayOfWeek int) ([]*model.WeeklyWindow, error) {
	windows, err := r.queryWindows(ctx, `
		SELECT `+windowColumns+`
		FROM counselor_weekly_availability
		WHERE counselor_id = $1
		  AND day_of_week = $2
		  AND status IN ('pending', 'approved')
		ORDER BY start_time
		FOR UPDATE
	`, counselorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("list blocking windows: %w", err)
	}
	return windows, nil
}

// ListApproved returns approved windows of a counselor.
func (r *AvailabilityRepository) ListApproved(ctx context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error) {
	windows, err := r.queryWindows(ctx, `
		SELECT `+windowColumns+`
		FROM counselor_weekly_availability
		WHERE counselor_id = $1 AND status = 'approved'
		ORDER BY day_of_week, start_time
	`, counselorID)
	if err != nil {
		return nil, fmt.Errorf("list approved windows: %w", err)
	}
	return windows, nil
}

// ListApprovedCounselorIDs returns every counselor with at least one approved window.
func (r *AvailabilityRepository) ListApprovedCounselorIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.Query(ctx, `
		SELECT DISTINCT counselor_id
		FROM counselor_weekly_availability
		WHERE status = 'approved'
	`)
	if err != nil {
		return nil, fmt.Errorf("list approved counselors: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan counselor id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListPending groups pending windows by counselor, oldest submission first.
func (r *AvailabilityRepository) ListPending(ctx context.Context) ([]*model.PendingCounselorWindows, error) {
	rows, err := r.Query(ctx, `
		SELECT w.id, w.counselor_id, w.day_of_week, w.start_time, w.end_time, w.status,
		       w.admin_notes, w.created_at, w.updated_at, u.name
		FROM counselor_weekly_availability w
		JOIN users u ON u.id = w.counselor_id
		WHERE w.status = 'pending'
		ORDER BY w.created_at, w.day_of_week, w.start_time
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending windows: %w", err)
	}
	defer rows.Close()

	var (
		groups []*model.PendingCounselorWindows
		byID   = make(map[uuid.UUID]*model.PendingCounselorWindows)
	)
	for rows.Next() {
		var (
			w          model.WeeklyWindow
			start, end pgtype.Time
			name       string
		)
		err := rows.Scan(&w.ID, &w.CounselorID, &w.DayOfWeek, &start, &end, &w.Status,
			&w.AdminNotes, &w.CreatedAt, &w.UpdatedAt, &name)
		if err != nil {
			return nil, fmt.Errorf("scan pending window: %w", err)
		}
		w.StartTime = timeOfDay(start)
		w.EndTime = timeOfDay(end)

		g, ok := byID[w.CounselorID]
		if !ok {
			g = &model.PendingCounselorWindows{
				CounselorID:   w.CounselorID,
				CounselorName: name,
				SubmittedAt:   w.CreatedAt,
			}
			byID[w.CounselorID] = g
			groups = append(groups, g)
		}
		g.Windows = append(g.Windows, &w)
	}
	return groups, rows.Err()
}

// CountPendingCounselors counts counselors waiting for window review.
func (r *AvailabilityRepository) CountPendingCounselors(ctx context.Context) (int, error) {
	var n int
	err := r.QueryRow(ctx, `
		SELECT count(DISTINCT counselor_id)
		FROM counselor_weekly_availability
		WHERE status = 'pending'
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending counselors: %w", err)
	}
	return n, nil
}

// ApprovePending moves every pending window of the counselor to approved.
func (r *AvailabilityRepository) ApprovePending(ctx context.Context, counselorID uuid.UUID, notes string) (int64, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE counselor_weekly_availability
		SET status = 'approved', admin_notes = $2, updated_at = now()
		WHERE counselor_id = $1 AND status = 'pending'
	`, counselorID, notes)
	if err != nil {
		return 0, fmt.Errorf("approve pending windows: %w", err)
	}
	return n, nil
}

// RejectPending marks pending windows rejected. Callers delete them right after.
func (r *AvailabilityRepository) RejectPending(ctx context.Context, counselorID uuid.UUID, reason string) (int64, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE counselor_weekly_availability
		SET status = 'rejected', admin_notes = $2, updated_at = now()
		WHERE counselor_id = $1 AND status = 'pending'
	`, counselorID, reason)
	if err != nil {
		return 0, fmt.Errorf("reject pending windows: %w", err)
	}
	return n, nil
}

// DeleteRejected removes rejected windows so the counselor can submit again.
func (r *AvailabilityRepository) DeleteRejected(ctx context.Context, counselorID uuid.UUID) (int64, error) {
	n, err := r.ExecAffected(ctx, `
		DELETE FROM counselor_weekly_availability
		WHERE counselor_id = $1 AND status = 'rejected'
	`, counselorID)
	if err != nil {
		return 0, fmt.Errorf("delete rejected windows: %w", err)
	}

	r.logger.Debug("Rejected weekly windows deleted",
		zap.String("counselor_id", counselorID.String()),
		zap.Int64("count", n))

	return n, nil
}
