package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/clock"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

// monday is 2026-03-02 08:00 UTC.
var monday = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type harness struct {
	db       *memDB
	clock    *clock.Fixed
	notifier *recordingNotifier

	availability *AvailabilityService
	slots        *SlotService
	bookings     *BookingService
	requests     *ScheduleRequestService
	chat         *ChatService
	mood         *MoodService
	admin        *AdminService

	admin1    uuid.UUID
	counselor uuid.UUID
	client    uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := newMemDB()
	clk := clock.NewFixed(monday)
	notifier := &recordingNotifier{}
	logger := zap.NewNop()
	settings := Settings{Location: time.UTC, HorizonWeeks: 4, NotifyTimeout: time.Second}

	tx := memTx{db: db}
	dir := memDirectory{db: db}
	slotSvc := NewSlotService(memSlots{db: db}, clk, settings)

	h := &harness{
		db:       db,
		clock:    clk,
		notifier: notifier,
		slots:    slotSvc,
		availability: NewAvailabilityService(tx, memWindows{db: db}, memSlots{db: db}, dir,
			memAccounts{db: db}, notifier, clk, settings, logger),
		bookings: NewBookingService(tx, memBookings{db: db}, slotSvc, dir, notifier, clk, settings, logger),
		requests: NewScheduleRequestService(memRequests{db: db}, dir, notifier, clk, settings, logger),
		chat:     NewChatService(memBookings{db: db}, memMessages{db: db}, settings, logger),
		mood:     NewMoodService(memMoods{db: db}, clk, settings),
		admin:    NewAdminService(memAccounts{db: db}, memBookings{db: db}, memWindows{db: db}, logger),
	}
	h.admin1 = db.addUser(model.RoleAdmin, false)
	h.counselor = db.addUser(model.RoleCounselor, true)
	h.client = db.addUser(model.RoleUser, false)
	return h
}
