package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(day time.Weekday, start, end string) WindowInput {
	return WindowInput{DayOfWeek: int(day), StartTime: model.MustTimeOfDay(start), EndTime: model.MustTimeOfDay(end)}
}

func TestSubmitWeeklyWindows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	created, err := h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{
		window(time.Monday, "09:00", "11:00"),
		window(time.Monday, "13:00", "15:00"),
		window(time.Thursday, "10:00", "12:00"),
	})
	require.NoError(t, err)
	require.Len(t, created, 3)
	for _, w := range created {
		assert.Equal(t, model.WindowStatusPending, w.Status)
		assert.NotEqual(t, uuid.Nil, w.ID)
	}

	events := h.notifier.events()
	require.Len(t, events, 1)
	assert.Equal(t, h.admin1, events[0].Recipient)
	assert.Equal(t, model.EventScheduleSubmitted, events[0].Kind)
	assert.Equal(t, 3, events[0].Payload["windows"])

	ok, err := h.availability.HasWeeklySetup(ctx, h.counselor)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Friday, "09:00", "10:00")})
	assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)
}

func TestSubmitWeeklyWindows_Invalid(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   uuid.UUID
		windows []WindowInput
		want    error
	}{
		{"empty", h.counselor, nil, apperr.ErrValidation},
		{"end before start", h.counselor, []WindowInput{window(time.Monday, "11:00", "09:00")}, apperr.ErrValidation},
		{"bad weekday", h.counselor, []WindowInput{{DayOfWeek: 7, StartTime: 60, EndTime: 120}}, apperr.ErrValidation},
		{"overlap in batch", h.counselor, []WindowInput{
			window(time.Monday, "09:00", "11:00"),
			window(time.Monday, "10:00", "12:00"),
		}, apperr.ErrValidation},
		{"not a counselor", h.client, []WindowInput{window(time.Monday, "09:00", "10:00")}, apperr.ErrForbidden},
		{"unknown counselor", uuid.New(), []WindowInput{window(time.Monday, "09:00", "10:00")}, apperr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.availability.SubmitWeeklyWindows(ctx, tt.actor, tt.windows)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	n, err := memWindows{db: h.db}.CountByCounselor(ctx, h.counselor)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitWeeklyWindow_Overlap(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.availability.SubmitWeeklyWindow(ctx, h.counselor, window(time.Monday, "09:00", "11:00"))
	require.NoError(t, err)

	_, err = h.availability.SubmitWeeklyWindow(ctx, h.counselor, window(time.Monday, "10:30", "12:00"))
	assert.ErrorIs(t, err, apperr.ErrScheduleConflict)

	// Half-open ranges: touching windows do not overlap.
	_, err = h.availability.SubmitWeeklyWindow(ctx, h.counselor, window(time.Monday, "11:00", "12:00"))
	assert.NoError(t, err)

	_, err = h.availability.SubmitWeeklyWindow(ctx, h.counselor, window(time.Tuesday, "09:00", "11:00"))
	assert.NoError(t, err)
}

func TestSubmitWeekly_LocksCounselor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.availability.SubmitWeeklyWindow(ctx, h.counselor, window(time.Monday, "09:00", "11:00"))
	require.NoError(t, err)
	_, err = h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Friday, "09:00", "10:00")})
	assert.ErrorIs(t, err, apperr.ErrAlreadySubmitted)

	h.db.mu.Lock()
	defer h.db.mu.Unlock()
	assert.Equal(t, 2, h.db.counselorLock[h.counselor])
}

func TestSubmitWeeklyWindows_ConcurrentSingleSetup(t *testing.T) {
	h := newHarness(t)

	const submitters = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		won       int
		conflicts int
	)
	for i := range submitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			day := time.Weekday(i % 7)
			_, err := h.availability.SubmitWeeklyWindows(context.Background(), h.counselor,
				[]WindowInput{window(day, "09:00", "10:00")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, apperr.ErrAlreadySubmitted):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, won)
	assert.Equal(t, submitters-1, conflicts)
	n, err := memWindows{db: h.db}.CountByCounselor(context.Background(), h.counselor)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestApprove_GeneratesSlotsIdempotently(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Monday, "09:00", "11:00")})
	require.NoError(t, err)

	res, err := h.availability.Approve(ctx, h.counselor, "ok")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Approved)
	assert.Equal(t, 10, res.SlotsCreated, "five Mondays in the horizon, two slots each")

	windows, err := h.availability.ListWindows(ctx, h.counselor)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, model.WindowStatusApproved, windows[0].Status)
	assert.Equal(t, "ok", windows[0].AdminNotes)

	// A consumed slot keeps its flag across regeneration.
	first := memSlots{db: h.db}.all()[0]
	require.NoError(t, memSlots{db: h.db}.SetAvailable(ctx, first.ID, false))

	res, err = h.availability.Approve(ctx, h.counselor, "again")
	require.NoError(t, err)
	assert.Zero(t, res.Approved)
	assert.Zero(t, res.SlotsCreated)

	all := memSlots{db: h.db}.all()
	assert.Len(t, all, 10)
	assert.False(t, all[0].IsAvailable)
}

func TestReject_DeletesPendingWindows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{
		window(time.Monday, "09:00", "11:00"),
		window(time.Friday, "09:00", "11:00"),
	})
	require.NoError(t, err)

	n, err := h.availability.Reject(ctx, h.counselor, "too short")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	has, err := h.availability.HasWeeklySetup(ctx, h.counselor)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Monday, "09:00", "11:00")})
	assert.NoError(t, err, "a rejected counselor can submit again")
	assert.Empty(t, memSlots{db: h.db}.all())
}

func TestListPendingAndApprovedCounselors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other := h.db.addUser(model.RoleCounselor, true)

	_, err := h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Monday, "09:00", "10:00")})
	require.NoError(t, err)
	_, err = h.availability.SubmitWeeklyWindows(ctx, other, []WindowInput{
		window(time.Tuesday, "09:00", "10:00"),
		window(time.Wednesday, "09:00", "10:00"),
	})
	require.NoError(t, err)

	pending, err := h.availability.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	_, err = h.availability.Approve(ctx, other, "")
	require.NoError(t, err)

	approved, err := h.availability.ListApprovedCounselors(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, other, approved[0].UserID)
}

func TestGenerateForAll_TopsUpHorizon(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.availability.SubmitWeeklyWindows(ctx, h.counselor, []WindowInput{window(time.Monday, "09:00", "10:00")})
	require.NoError(t, err)
	_, err = h.availability.Approve(ctx, h.counselor, "")
	require.NoError(t, err)
	require.Len(t, memSlots{db: h.db}.all(), 5)

	h.clock.Advance(7 * 24 * time.Hour)
	created, err := h.availability.GenerateForAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the new Monday at the end of the horizon")
	assert.Len(t, memSlots{db: h.db}.all(), 6)
}
