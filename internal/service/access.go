package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
)

func isCounselorFor(actorID uuid.UUID, b *model.Booking) bool {
	return b.CounselorID == actorID
}

func isOwnerOf(actorID uuid.UUID, b *model.Booking) bool {
	return b.UserID == actorID
}

func isParticipant(actorID uuid.UUID, b *model.Booking) bool {
	return isOwnerOf(actorID, b) || isCounselorFor(actorID, b)
}

// requireCounselor resolves id and checks it belongs to a counselor account.
func requireCounselor(ctx context.Context, dir Directory, id uuid.UUID) (*model.Identity, error) {
	ident, err := dir.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup counselor: %w", err)
	}
	if ident == nil {
		return nil, apperr.NotFound(apperr.ReasonCounselorNotFound, "counselor not found")
	}
	if !ident.IsCounselor() {
		return nil, apperr.Forbidden(apperr.ReasonNotCounselor, "account is not a counselor")
	}
	return ident, nil
}
