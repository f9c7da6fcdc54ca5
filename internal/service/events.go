package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

// events delivers notifications after the originating transaction committed.
// Delivery failures are logged and never change the outcome of the operation.
type events struct {
	notifier Notifier
	timeout  time.Duration
	logger   *zap.Logger
}

func (e *events) publish(ctx context.Context, kind model.EventKind, payload map[string]any, recipients ...uuid.UUID) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	for _, id := range recipients {
		if err := e.notifier.Send(ctx, id, kind, payload); err != nil {
			e.logger.Warn("Notification not delivered",
				zap.String("recipient_id", id.String()),
				zap.String("kind", string(kind)),
				zap.Error(apperr.Upstream("send notification", err)))
		}
	}
}
