package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository"
)

// memDB is an in-memory stand-in for the database. Transactions are serialized
// by one global mutex and roll back on error. Concurrency tests built on it only
// check the service-level ordering of lock, check and write; row locks in SQL
// are covered by the integration tests in the repository package.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	windows  map[uuid.UUID]model.WeeklyWindow
	slots    map[uuid.UUID]model.Slot
	bookings map[uuid.UUID]model.Booking
	requests map[uuid.UUID]model.ScheduleRequest
	messages []model.Message
	moods    map[uuid.UUID]model.MoodEntry
	users    map[uuid.UUID]*model.Identity

	tick          time.Time
	markReadErr   error
	statusUpdates int
	counselorLock map[uuid.UUID]int
}

func newMemDB() *memDB {
	return &memDB{
		windows:       make(map[uuid.UUID]model.WeeklyWindow),
		slots:         make(map[uuid.UUID]model.Slot),
		bookings:      make(map[uuid.UUID]model.Booking),
		requests:      make(map[uuid.UUID]model.ScheduleRequest),
		moods:         make(map[uuid.UUID]model.MoodEntry),
		users:         make(map[uuid.UUID]*model.Identity),
		counselorLock: make(map[uuid.UUID]int),
		tick:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// stamp returns strictly increasing timestamps for created_at ordering.
func (db *memDB) stamp() time.Time {
	db.tick = db.tick.Add(time.Second)
	return db.tick
}

type memTxKey struct{}

type memTx struct{ db *memDB }

func (m memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.db.txMu.Lock()
	defer m.db.txMu.Unlock()

	m.db.mu.Lock()
	windows, slots, bookings := maps.Clone(m.db.windows), maps.Clone(m.db.slots), maps.Clone(m.db.bookings)
	m.db.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.db.mu.Lock()
		m.db.windows, m.db.slots, m.db.bookings = windows, slots, bookings
		m.db.mu.Unlock()
		return err
	}
	return nil
}

// directory

type memDirectory struct{ db *memDB }

func (d memDirectory) Lookup(_ context.Context, id uuid.UUID) (*model.Identity, error) {
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	u, ok := d.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (d memDirectory) ListAdmins(_ context.Context) ([]uuid.UUID, error) {
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	var ids []uuid.UUID
	for id, u := range d.db.users {
		if u.IsAdmin() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (db *memDB) addUser(role model.Role, accepting bool) uuid.UUID {
	id := uuid.New()
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[id] = &model.Identity{
		UserID:           id,
		Name:             string(role) + "-" + id.String()[:4],
		Role:             role,
		IsActive:         true,
		HasProfile:       role == model.RoleCounselor,
		AcceptingClients: accepting,
	}
	return id
}

// windows

type memWindows struct{ db *memDB }

func (w memWindows) LockCounselor(ctx context.Context, counselorID uuid.UUID) error {
	if ctx.Value(memTxKey{}) == nil {
		return errors.New("LockCounselor outside transaction")
	}
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	w.db.counselorLock[counselorID]++
	return nil
}

func (w memWindows) Create(_ context.Context, win *model.WeeklyWindow) error {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	win.ID = uuid.New()
	win.CreatedAt = w.db.stamp()
	win.UpdatedAt = win.CreatedAt
	w.db.windows[win.ID] = *win
	return nil
}

func (w memWindows) filter(keep func(model.WeeklyWindow) bool) []*model.WeeklyWindow {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	var out []*model.WeeklyWindow
	for _, win := range w.db.windows {
		if keep(win) {
			cp := win
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func (w memWindows) CountByCounselor(_ context.Context, counselorID uuid.UUID) (int, error) {
	return len(w.filter(func(win model.WeeklyWindow) bool { return win.CounselorID == counselorID })), nil
}

func (w memWindows) ListByCounselor(_ context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error) {
	return w.filter(func(win model.WeeklyWindow) bool { return win.CounselorID == counselorID }), nil
}

func (w memWindows) ListBlocking(_ context.Context, counselorID uuid.UUID, day int) ([]*model.WeeklyWindow, error) {
	return w.filter(func(win model.WeeklyWindow) bool {
		return win.CounselorID == counselorID && win.DayOfWeek == day && win.Blocking()
	}), nil
}

func (w memWindows) ListApproved(_ context.Context, counselorID uuid.UUID) ([]*model.WeeklyWindow, error) {
	return w.filter(func(win model.WeeklyWindow) bool {
		return win.CounselorID == counselorID && win.Status == model.WindowStatusApproved
	}), nil
}

func (w memWindows) ListApprovedCounselorIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, win := range w.filter(func(win model.WeeklyWindow) bool { return win.Status == model.WindowStatusApproved }) {
		if !slices.Contains(ids, win.CounselorID) {
			ids = append(ids, win.CounselorID)
		}
	}
	return ids, nil
}

func (w memWindows) ListPending(_ context.Context) ([]*model.PendingCounselorWindows, error) {
	var groups []*model.PendingCounselorWindows
	byID := make(map[uuid.UUID]*model.PendingCounselorWindows)
	for _, win := range w.filter(func(win model.WeeklyWindow) bool { return win.Status == model.WindowStatusPending }) {
		g, ok := byID[win.CounselorID]
		if !ok {
			g = &model.PendingCounselorWindows{CounselorID: win.CounselorID, SubmittedAt: win.CreatedAt}
			byID[win.CounselorID] = g
			groups = append(groups, g)
		}
		g.Windows = append(g.Windows, win)
	}
	return groups, nil
}

func (w memWindows) CountPendingCounselors(ctx context.Context) (int, error) {
	groups, _ := w.ListPending(ctx)
	return len(groups), nil
}

func (w memWindows) setStatus(counselorID uuid.UUID, from, to model.WindowStatus, notes string) int64 {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	var n int64
	for id, win := range w.db.windows {
		if win.CounselorID == counselorID && win.Status == from {
			win.Status, win.AdminNotes = to, notes
			w.db.windows[id] = win
			n++
		}
	}
	return n
}

func (w memWindows) ApprovePending(_ context.Context, counselorID uuid.UUID, notes string) (int64, error) {
	return w.setStatus(counselorID, model.WindowStatusPending, model.WindowStatusApproved, notes), nil
}

func (w memWindows) RejectPending(_ context.Context, counselorID uuid.UUID, reason string) (int64, error) {
	return w.setStatus(counselorID, model.WindowStatusPending, model.WindowStatusRejected, reason), nil
}

func (w memWindows) DeleteRejected(_ context.Context, counselorID uuid.UUID) (int64, error) {
	w.db.mu.Lock()
	defer w.db.mu.Unlock()
	var n int64
	for id, win := range w.db.windows {
		if win.CounselorID == counselorID && win.Status == model.WindowStatusRejected {
			delete(w.db.windows, id)
			n++
		}
	}
	return n, nil
}

// slots

type memSlots struct{ db *memDB }

func (s memSlots) Upsert(_ context.Context, slot *model.Slot) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, existing := range s.db.slots {
		if existing.Key() == slot.Key() {
			return false, nil
		}
	}
	slot.ID = uuid.New()
	slot.CreatedAt = s.db.stamp()
	s.db.slots[slot.ID] = *slot
	return true, nil
}

func (s memSlots) GetByID(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, ok := s.db.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (s memSlots) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Slot, error) {
	if ctx.Value(memTxKey{}) == nil {
		return nil, errors.New("GetForUpdate outside transaction")
	}
	return s.GetByID(ctx, id)
}

func (s memSlots) GetByKey(_ context.Context, counselorID uuid.UUID, date time.Time, at model.TimeOfDay) (*model.Slot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, slot := range s.db.slots {
		if slot.CounselorID == counselorID && slot.SlotDate.Equal(model.DateOnly(date)) && slot.SlotTime == at {
			cp := slot
			return &cp, nil
		}
	}
	return nil, nil
}

func (s memSlots) SetAvailable(_ context.Context, id uuid.UUID, available bool) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	slot, ok := s.db.slots[id]
	if !ok {
		return errors.New("slot not found")
	}
	slot.IsAvailable = available
	s.db.slots[id] = slot
	return nil
}

func (s memSlots) ListAvailable(_ context.Context, counselorID uuid.UUID, date time.Time) ([]*model.Slot, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*model.Slot
	for _, slot := range s.db.slots {
		if slot.CounselorID == counselorID && slot.IsAvailable && slot.SlotDate.Equal(model.DateOnly(date)) {
			cp := slot
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotTime < out[j].SlotTime })
	return out, nil
}

func (s memSlots) all() []model.Slot {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := slices.Collect(maps.Values(s.db.slots))
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SlotDate.Equal(out[j].SlotDate) {
			return out[i].SlotDate.Before(out[j].SlotDate)
		}
		return out[i].SlotTime < out[j].SlotTime
	})
	return out
}

func (s memSlots) add(counselorID uuid.UUID, date time.Time, at string) uuid.UUID {
	slot := &model.Slot{
		CounselorID: counselorID,
		SlotDate:    model.DateOnly(date),
		SlotTime:    model.MustTimeOfDay(at),
		IsAvailable: true,
	}
	_, _ = s.Upsert(context.Background(), slot)
	return slot.ID
}

// bookings

type memBookings struct{ db *memDB }

func (b memBookings) Create(_ context.Context, booking *model.Booking) error {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	booking.ID = uuid.New()
	booking.CreatedAt = b.db.stamp()
	booking.UpdatedAt = booking.CreatedAt
	b.db.bookings[booking.ID] = *booking
	return nil
}

func (b memBookings) GetByID(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	booking, ok := b.db.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (b memBookings) List(_ context.Context, f repository.BookingFilter) ([]*model.Booking, error) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	var out []*model.Booking
	for _, bk := range b.db.bookings {
		switch {
		case f.UserID != nil && bk.UserID != *f.UserID,
			f.CounselorID != nil && bk.CounselorID != *f.CounselorID,
			f.Participant != nil && bk.UserID != *f.Participant && bk.CounselorID != *f.Participant,
			f.Status != nil && bk.Status != *f.Status,
			f.Date != nil && !bk.BookingDate.Equal(model.DateOnly(*f.Date)):
			continue
		}
		cp := bk
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].ScheduledAt(time.UTC), out[j].ScheduledAt(time.UTC)
		if f.Ascending {
			return ai.Before(aj)
		}
		return ai.After(aj)
	})
	return out, nil
}

func (b memBookings) UpdateStatus(_ context.Context, id uuid.UUID, from []model.BookingStatus, to model.BookingStatus, reason string) (bool, error) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	bk, ok := b.db.bookings[id]
	if !ok || !bk.Status.In(from...) {
		return false, nil
	}
	bk.Status = to
	if to == model.BookingStatusRejected {
		bk.RejectionReason = reason
	}
	b.db.bookings[id] = bk
	b.db.statusUpdates++
	return true, nil
}

func (b memBookings) Reschedule(_ context.Context, id uuid.UUID, from []model.BookingStatus, slotID *uuid.UUID, date time.Time, at model.TimeOfDay) (bool, error) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	bk, ok := b.db.bookings[id]
	if !ok || !bk.Status.In(from...) {
		return false, nil
	}
	bk.SlotID, bk.BookingDate, bk.BookingTime = slotID, model.DateOnly(date), at
	bk.Status = model.BookingStatusPending
	b.db.bookings[id] = bk
	return true, nil
}

func (b memBookings) CountByStatus(_ context.Context) (map[model.BookingStatus]int, error) {
	b.db.mu.Lock()
	defer b.db.mu.Unlock()
	counts := make(map[model.BookingStatus]int)
	for _, bk := range b.db.bookings {
		counts[bk.Status]++
	}
	return counts, nil
}

// schedule requests

type memRequests struct{ db *memDB }

func (r memRequests) Create(_ context.Context, req *model.ScheduleRequest) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req.ID = uuid.New()
	req.CreatedAt = r.db.stamp()
	r.db.requests[req.ID] = *req
	return nil
}

func (r memRequests) GetByID(_ context.Context, id uuid.UUID) (*model.ScheduleRequest, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r memRequests) list(keep func(model.ScheduleRequest) bool) []*model.ScheduleRequest {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*model.ScheduleRequest
	for _, req := range r.db.requests {
		if keep(req) {
			cp := req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memRequests) ListByCounselor(_ context.Context, counselorID uuid.UUID) ([]*model.ScheduleRequest, error) {
	out := r.list(func(req model.ScheduleRequest) bool { return req.CounselorID == counselorID })
	slices.Reverse(out)
	return out, nil
}

func (r memRequests) ListPending(_ context.Context) ([]*model.ScheduleRequest, error) {
	return r.list(func(req model.ScheduleRequest) bool { return req.IsPending() }), nil
}

func (r memRequests) Resolve(_ context.Context, id uuid.UUID, status model.RequestStatus, notes string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok || !req.IsPending() {
		return false, nil
	}
	req.Status, req.AdminNotes = status, notes
	r.db.requests[id] = req
	return true, nil
}

// messages

type memMessages struct{ db *memDB }

func (m memMessages) Create(_ context.Context, msg *model.Message) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	msg.ID = uuid.New()
	msg.CreatedAt = m.db.stamp()
	m.db.messages = append(m.db.messages, *msg)
	return nil
}

func (m memMessages) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*model.Message, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.Message
	for _, msg := range m.db.messages {
		if msg.BookingID == bookingID {
			cp := msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memMessages) MarkRead(_ context.Context, bookingID, recipientID uuid.UUID) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.markReadErr != nil {
		return 0, m.db.markReadErr
	}
	var n int64
	for i, msg := range m.db.messages {
		if msg.BookingID == bookingID && msg.RecipientID == recipientID && !msg.IsRead {
			m.db.messages[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (m memMessages) Last(ctx context.Context, bookingID uuid.UUID) (*model.Message, error) {
	msgs, _ := m.ListByBooking(ctx, bookingID)
	if len(msgs) == 0 {
		return nil, nil
	}
	return msgs[len(msgs)-1], nil
}

func (m memMessages) CountUnread(ctx context.Context, bookingID, recipientID uuid.UUID) (int, error) {
	msgs, _ := m.ListByBooking(ctx, bookingID)
	n := 0
	for _, msg := range msgs {
		if msg.RecipientID == recipientID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// moods

type memMoods struct{ db *memDB }

func (m memMoods) Upsert(_ context.Context, e *model.MoodEntry) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, existing := range m.db.moods {
		if existing.UserID == e.UserID && existing.EntryDate.Equal(e.EntryDate) {
			existing.MoodLabel = e.MoodLabel
			m.db.moods[id] = existing
			*e = existing
			return nil
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = m.db.stamp()
	m.db.moods[e.ID] = *e
	return nil
}

func (m memMoods) ListRange(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*model.MoodEntry, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*model.MoodEntry
	for _, e := range m.db.moods {
		if e.UserID == userID && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			cp := e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.Before(out[j].EntryDate) })
	return out, nil
}

// notifier

type sentEvent struct {
	Recipient uuid.UUID
	Kind      model.EventKind
	Payload   map[string]any
}

type recordingNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentEvent
}

func (n *recordingNotifier) Send(_ context.Context, recipient uuid.UUID, kind model.EventKind, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentEvent{Recipient: recipient, Kind: kind, Payload: payload})
	return n.err
}

func (n *recordingNotifier) events() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return slices.Clone(n.sent)
}

// accounts

type memAccounts struct{ db *memDB }

func (a memAccounts) counselors(keep func(*model.Identity) bool) []*model.CounselorProfile {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	var out []*model.CounselorProfile
	for _, u := range a.db.users {
		if u.IsCounselor() && keep(u) {
			out = append(out, &model.CounselorProfile{
				UserID:           u.UserID,
				Name:             u.Name,
				IsActive:         u.IsActive,
				AcceptingClients: u.AcceptingClients,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (a memAccounts) ListCounselors(_ context.Context) ([]*model.CounselorProfile, error) {
	return a.counselors(func(*model.Identity) bool { return true }), nil
}

func (a memAccounts) ListCounselorsByIDs(_ context.Context, ids []uuid.UUID) ([]*model.CounselorProfile, error) {
	return a.counselors(func(u *model.Identity) bool { return slices.Contains(ids, u.UserID) }), nil
}

func (a memAccounts) ListUsers(_ context.Context, role model.Role) ([]*model.User, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	var out []*model.User
	for _, u := range a.db.users {
		if u.Role == role {
			out = append(out, &model.User{ID: u.UserID, Name: u.Name, Role: u.Role, IsActive: u.IsActive})
		}
	}
	return out, nil
}

func (a memAccounts) ToggleUserActive(_ context.Context, id uuid.UUID) (bool, bool, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	u, ok := a.db.users[id]
	if !ok {
		return false, false, nil
	}
	u.IsActive = !u.IsActive
	return u.IsActive, true, nil
}

func (a memAccounts) ToggleCounselorActive(_ context.Context, id uuid.UUID) (bool, bool, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	u, ok := a.db.users[id]
	if !ok || !u.HasProfile {
		return false, false, nil
	}
	u.AcceptingClients = !u.AcceptingClients
	return u.AcceptingClients, true, nil
}

func (a memAccounts) CountByRole(_ context.Context) (map[model.Role]int, error) {
	a.db.mu.Lock()
	defer a.db.mu.Unlock()
	counts := make(map[model.Role]int)
	for _, u := range a.db.users {
		counts[u.Role]++
	}
	return counts, nil
}
