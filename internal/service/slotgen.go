package service

import (
	"time"

	"github.com/mentalist/counseling_backend/internal/model"
)

const slotLength = 60 // minutes

// GenerateSlots expands approved windows into hourly slots for every calendar day
// in [from, to] (dates taken in loc). A slot starts at the window start and every
// whole hour after it while the hour still fits before the window end. Slots that
// do not start strictly after now are skipped. The result is ordered by date,
// then by window order, then by time.
func GenerateSlots(windows []*model.WeeklyWindow, from, to, now time.Time, loc *time.Location) []*model.Slot {
	if loc == nil {
		loc = time.UTC
	}
	first := time.Date(from.In(loc).Year(), from.In(loc).Month(), from.In(loc).Day(), 0, 0, 0, 0, loc)
	last := time.Date(to.In(loc).Year(), to.In(loc).Month(), to.In(loc).Day(), 0, 0, 0, 0, loc)

	var slots []*model.Slot
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, w := range windows {
			if w.Status != model.WindowStatusApproved || w.DayOfWeek != int(day.Weekday()) {
				continue
			}
			for t := w.StartTime; t+slotLength <= w.EndTime; t += slotLength {
				if !t.On(day, loc).After(now) {
					continue
				}
				slots = append(slots, &model.Slot{
					CounselorID: w.CounselorID,
					SlotDate:    model.DateOnly(day),
					SlotTime:    t,
					IsAvailable: true,
				})
			}
		}
	}
	return slots
}

// Horizon returns the generation range starting today in loc and spanning weeks.
func Horizon(now time.Time, weeks int, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	from = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 0, weeks*7)
}
