package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_Stats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.book(t, h.slot("09:00"))
	h.book(t, h.slot("10:00"))
	_, err := h.bookings.Confirm(ctx, h.counselor, b.ID)
	require.NoError(t, err)
	_, err = h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Monday, "09:00", "10:00")})
	require.NoError(t, err)

	stats, err := h.admin.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Users)
	assert.Equal(t, 1, stats.Counselors)
	assert.Equal(t, 1, stats.Bookings[model.BookingStatusConfirmed])
	assert.Equal(t, 1, stats.Bookings[model.BookingStatusPending])
	assert.Equal(t, 1, stats.PendingCounselors)
}

func TestAdmin_Toggles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	active, err := h.admin.ToggleUserActive(ctx, h.client)
	require.NoError(t, err)
	assert.False(t, active)

	_, err = h.admin.ToggleUserActive(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = h.admin.ToggleCounselorActive(ctx, h.client)
	assert.ErrorIs(t, err, apperr.ErrNotFound, "clients have no counselor profile")

	counselors, err := h.admin.ListCounselors(ctx)
	require.NoError(t, err)
	assert.Len(t, counselors, 1)

	users, err := h.admin.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
