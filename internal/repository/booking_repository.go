package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(b *base.Repository) *BookingRepository {
	return &BookingRepository{Repository: b}
}

const bookingColumns = `id, user_id, counselor_id, slot_id, booking_date, booking_time, status,
	notes, rejection_reason, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		b  model.Booking
		at pgtype.Time
	)
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.CounselorID,
		&b.SlotID,
		&b.BookingDate,
		&at,
		&b.Status,
		&b.Notes,
		&b.RejectionReason,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.BookingTime = timeOfDay(at)
	return &b, nil
}

// BookingFilter narrows List. Zero fields are ignored.
type BookingFilter struct {
	UserID      *uuid.UUID
	CounselorID *uuid.UUID
	Participant *uuid.UUID // user or counselor side
	Status      *model.BookingStatus
	Date        *time.Time
	Ascending   bool
}

// Create inserts a booking and fills its generated fields.
func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	query := `
		INSERT INTO consultation_bookings (user_id, counselor_id, slot_id, booking_date, booking_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		b.UserID,
		b.CounselorID,
		b.SlotID,
		dateArg(b.BookingDate),
		timeArg(b.BookingTime),
		b.Status,
		b.Notes,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// GetByID returns nil when the booking does not exist.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, err := scanBooking(r.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM consultation_bookings
		WHERE id = $1
	`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return b, nil
}

// List returns bookings matching the filter, newest schedule first unless Ascending.
func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]*model.Booking, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.CounselorID != nil {
		add("counselor_id = $%d", *f.CounselorID)
	}
	if f.Participant != nil {
		args = append(args, *f.Participant)
		conds = append(conds, fmt.Sprintf("(user_id = $%[1]d OR counselor_id = $%[1]d)", len(args)))
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Date != nil {
		add("booking_date = $%d", dateArg(*f.Date))
	}

	query := `SELECT ` + bookingColumns + ` FROM consultation_bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	if f.Ascending {
		query += ` ORDER BY booking_date, booking_time`
	} else {
		query += ` ORDER BY booking_date DESC, booking_time DESC`
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatus moves the booking to status only while its current status is one of
// from. It reports false when the guard did not match.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, rejectionReason string) (bool, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE consultation_bookings
		SET status = $2,
		    rejection_reason = CASE WHEN $2 = 'rejected' THEN $4 ELSE rejection_reason END,
		    updated_at = now()
		WHERE id = $1 AND status = ANY($3)
	`, id, to, statusArgs(from), rejectionReason)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}
	return n == 1, nil
}

// Reschedule moves the booking to a new date, time and slot and resets it to pending,
// guarded on the current status like UpdateStatus.
func (r *BookingRepository) Reschedule(ctx context.Context, id uuid.UUID, from []model.BookingStatus, slotID *uuid.UUID, date time.Time, at model.TimeOfDay) (bool, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE consultation_bookings
		SET slot_id = $3,
		    booking_date = $4,
		    booking_time = $5,
		    status = 'pending',
		    updated_at = now()
		WHERE id = $1 AND status = ANY($2)
	`, id, statusArgs(from), slotID, dateArg(date), timeArg(at))
	if err != nil {
		return false, fmt.Errorf("reschedule booking: %w", err)
	}
	return n == 1, nil
}

// CountByStatus returns the number of bookings per status.
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[model.BookingStatus]int, error) {
	rows, err := r.Query(ctx, `SELECT status, count(*) FROM consultation_bookings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.BookingStatus]int)
	for rows.Next() {
		var (
			status model.BookingStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan booking count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func statusArgs(statuses []model.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
