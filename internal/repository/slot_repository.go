package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(b *base.Repository) *SlotRepository {
	return &SlotRepository{Repository: b}
}

const slotColumns = `id, counselor_id, slot_date, slot_time, is_available, created_at, updated_at`

func scanSlot(row pgx.Row) (*model.Slot, error) {
	var (
		slot model.Slot
		at   pgtype.Time
	)
	err := row.Scan(
		&slot.ID,
		&slot.CounselorID,
		&slot.SlotDate,
		&at,
		&slot.IsAvailable,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.SlotTime = timeOfDay(at)
	return &slot, nil
}

// Upsert inserts the slot unless one already exists for the same counselor, date and
// time. An existing slot is left untouched. Returns whether a row was created.
func (r *SlotRepository) Upsert(ctx context.Context, slot *model.Slot) (bool, error) {
	query := `
		INSERT INTO available_time_slots (counselor_id, slot_date, slot_time, is_available)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (counselor_id, slot_date, slot_time) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		slot.CounselorID,
		dateArg(slot.SlotDate),
		timeArg(slot.SlotTime),
		slot.IsAvailable,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("upsert slot: %w", err)
	}
	return true, nil
}

// GetByID returns nil when the slot does not exist.
func (r *SlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM available_time_slots
		WHERE id = $1
	`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}
	return slot, nil
}

// GetForUpdate reads the slot and holds its row lock until the surrounding
// transaction ends. Must be called inside a transaction.
func (r *SlotRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM available_time_slots
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock slot: %w", err)
	}
	return slot, nil
}

// GetByKey returns the slot of a counselor at date and time, or nil.
func (r *SlotRepository) GetByKey(ctx context.Context, counselorID uuid.UUID, date time.Time, at model.TimeOfDay) (*model.Slot, error) {
	slot, err := scanSlot(r.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM available_time_slots
		WHERE counselor_id = $1
		  AND slot_date = $2
		  AND slot_time = $3
	`, counselorID, dateArg(date), timeArg(at)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by key: %w", err)
	}
	return slot, nil
}

// SetAvailable flips the availability flag.
func (r *SlotRepository) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	n, err := r.ExecAffected(ctx, `
		UPDATE available_time_slots
		SET is_available = $2, updated_at = now()
		WHERE id = $1
	`, id, available)
	if err != nil {
		return fmt.Errorf("update slot availability: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update slot availability: slot %s not found", id)
	}
	return nil
}

func (r *SlotRepository) querySlots(ctx context.Context, query string, args ...any) ([]*model.Slot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// ListAvailable returns free slots of a counselor on a date ordered by time.
func (r *SlotRepository) ListAvailable(ctx context.Context, counselorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	slots, err := r.querySlots(ctx, `
		SELECT `+slotColumns+`
		FROM available_time_slots
		WHERE counselor_id = $1
		  AND slot_date = $2
		  AND is_available = TRUE
		ORDER BY slot_time
	`, counselorID, dateArg(date))
	if err != nil {
		return nil, fmt.Errorf("list available slots: %w", err)
	}
	return slots, nil
}

// ListByCounselor returns all slots of a counselor between two dates inclusive.
func (r *SlotRepository) ListByCounselor(ctx context.Context, counselorID uuid.UUID, from, to time.Time) ([]*model.Slot, error) {
	slots, err := r.querySlots(ctx, `
		SELECT `+slotColumns+`
		FROM available_time_slots
		WHERE counselor_id = $1
		  AND slot_date BETWEEN $2 AND $3
		ORDER BY slot_date, slot_time
	`, counselorID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("list slots by counselor: %w", err)
	}
	return slots, nil
}
