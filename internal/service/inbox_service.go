package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
)

const inboxLimit = 50

// InboxService reads the in-app notifications written by the database sink.
type InboxService struct {
	inbox InboxStore
}

func NewInboxService(inbox InboxStore) *InboxService {
	return &InboxService{inbox: inbox}
}

// List returns the recipient's newest notifications.
func (s *InboxService) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.inbox.ListByRecipient(ctx, recipientID, unreadOnly, inboxLimit)
}

func (s *InboxService) MarkRead(ctx context.Context, recipientID, id uuid.UUID) error {
	ok, err := s.inbox.MarkRead(ctx, id, recipientID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound(apperr.ReasonNotificationNotFound, "notification not found")
	}
	return nil
}

func (s *InboxService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.inbox.MarkAllRead(ctx, recipientID)
}
