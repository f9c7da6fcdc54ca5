// Package notify fans domain events out to the configured delivery channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

// Event is one notification addressed to a single recipient.
type Event struct {
	RecipientID uuid.UUID       `json:"recipient_id"`
	Kind        model.EventKind `json:"type"`
	Payload     map[string]any  `json:"data"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Sink delivers events over one channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e Event) error
}

// Fanout sends every event to all sinks. A failing sink does not stop the others.
type Fanout struct {
	sinks  []Sink
	clock  clock.Clock
	logger *zap.Logger
}

func NewFanout(clk clock.Clock, logger *zap.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, clock: clk, logger: logger}
}

// Send implements the service notifier. The returned error joins the failures
// of individual sinks.
func (f *Fanout) Send(ctx context.Context, recipientID uuid.UUID, kind model.EventKind, payload map[string]any) error {
	e := Event{
		RecipientID: recipientID,
		Kind:        kind,
		Payload:     payload,
		OccurredAt:  f.clock.Now(),
	}

	var errs []error
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, e); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		f.logger.Debug("Notification delivered",
			zap.String("sink", s.Name()),
			zap.String("recipient_id", recipientID.String()),
			zap.String("kind", string(kind)))
	}
	return errors.Join(errs...)
}

// Sinks returns the names of the configured sinks.
func (f *Fanout) Sinks() []string {
	names := make([]string, len(f.sinks))
	for i, s := range f.sinks {
		names[i] = s.Name()
	}
	return names
}
