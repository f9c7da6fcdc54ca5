package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository/base"
)

// NotificationRepository stores the in-app inbox.
type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(b *base.Repository) *NotificationRepository {
	return &NotificationRepository{Repository: b}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	payload := n.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	err := r.QueryRow(ctx, `
		INSERT INTO notifications (recipient_id, kind, payload)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, n.RecipientID, n.Kind, payload).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByRecipient returns the newest notifications first. unreadOnly skips read ones.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit int) ([]*model.Notification, error) {
	rows, err := r.Query(ctx, `
		SELECT id, recipient_id, kind, payload, read_at, created_at
		FROM notifications
		WHERE recipient_id = $1 AND (NOT $2 OR read_at IS NULL)
		ORDER BY created_at DESC
		LIMIT $3
	`, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.Kind, &n.Payload, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, &n)
	}
	return list, rows.Err()
}

// MarkRead marks one notification of the recipient as read. It returns false
// when the notification does not belong to the recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID) (bool, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE notifications SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND recipient_id = $2
	`, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	return n == 1, nil
}

// MarkAllRead marks every unread notification of the recipient.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	n, err := r.ExecAffected(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE recipient_id = $1 AND read_at IS NULL
	`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}
