package notify

import (
	"context"

	"github.com/mentalist/counseling_backend/internal/model"
)

type inserter interface {
	Insert(ctx context.Context, n *model.Notification) error
}

// InboxSink stores events in the notifications table read by the in-app inbox.
type InboxSink struct {
	store inserter
}

func NewInboxSink(store inserter) *InboxSink {
	return &InboxSink{store: store}
}

func (s *InboxSink) Name() string { return "inbox" }

func (s *InboxSink) Deliver(ctx context.Context, e Event) error {
	return s.store.Insert(ctx, &model.Notification{
		RecipientID: e.RecipientID,
		Kind:        e.Kind,
		Payload:     e.Payload,
	})
}
