package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

type MessageRepository struct {
	*base.Repository
}

func NewMessageRepository(b *base.Repository) *MessageRepository {
	return &MessageRepository{Repository: b}
}

const messageColumns = `id, booking_id, sender_id, recipient_id, content, message_type, is_read, read_at, created_at`

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID,
		&m.BookingID,
		&m.SenderID,
		&m.RecipientID,
		&m.Content,
		&m.MessageType,
		&m.IsRead,
		&m.ReadAt,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	query := `
		INSERT INTO messages (booking_id, sender_id, recipient_id, content, message_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_read, created_at
	`

	err := r.QueryRow(ctx, query,
		m.BookingID,
		m.SenderID,
		m.RecipientID,
		m.Content,
		m.MessageType,
	).Scan(&m.ID, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListByBooking returns the conversation of a booking in chronological order.
func (r *MessageRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*model.Message, error) {
	rows, err := r.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead marks every unread message of the booking addressed to recipientID.
func (r *MessageRepository) MarkRead(ctx context.Context, bookingID, recipientID uuid.UUID) (int64, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE messages SET is_read = TRUE, read_at = now()
		WHERE booking_id = $1 AND recipient_id = $2 AND NOT is_read
	`, bookingID, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark messages read: %w", err)
	}
	return n, nil
}

// Last returns the most recent message of a booking, or nil.
func (r *MessageRepository) Last(ctx context.Context, bookingID uuid.UUID) (*model.Message, error) {
	m, err := scanMessage(r.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, bookingID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last message: %w", err)
	}
	return m, nil
}

// CountUnread counts unread messages of a booking addressed to recipientID.
func (r *MessageRepository) CountUnread(ctx context.Context, bookingID, recipientID uuid.UUID) (int, error) {
	var n int
	err := r.QueryRow(ctx, `
		SELECT count(*) FROM messages
		WHERE booking_id = $1 AND recipient_id = $2 AND NOT is_read
	`, bookingID, recipientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread messages: %w", err)
	}
	return n, nil
}
