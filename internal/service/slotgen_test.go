package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedWindow(counselor uuid.UUID, day time.Weekday, start, end string) *model.WeeklyWindow {
	return &model.WeeklyWindow{
		CounselorID: counselor,
		DayOfWeek:   int(day),
		StartTime:   model.MustTimeOfDay(start),
		EndTime:     model.MustTimeOfDay(end),
		Status:      model.WindowStatusApproved,
	}
}

func slotTimes(slots []*model.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.SlotDate.Format(time.DateOnly) + " " + s.SlotTime.String()
	}
	return out
}

func TestGenerateSlots_MondayMorning(t *testing.T) {
	c := uuid.New()
	windows := []*model.WeeklyWindow{approvedWindow(c, time.Monday, "09:00", "11:00")}

	slots := GenerateSlots(windows, monday, monday, monday, time.UTC)

	assert.Equal(t, []string{"2026-03-02 09:00", "2026-03-02 10:00"}, slotTimes(slots))
	for _, s := range slots {
		assert.Equal(t, c, s.CounselorID)
		assert.True(t, s.IsAvailable)
	}
}

func TestGenerateSlots_DropsPartialTrailingHour(t *testing.T) {
	c := uuid.New()
	tests := []struct {
		name       string
		start, end string
		want       []string
	}{
		{"ninety minutes", "09:00", "10:30", []string{"2026-03-02 09:00"}},
		{"half hour", "09:00", "09:30", nil},
		{"offset start", "09:30", "11:30", []string{"2026-03-02 09:30", "2026-03-02 10:30"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := []*model.WeeklyWindow{approvedWindow(c, time.Monday, tt.start, tt.end)}
			got := slotTimes(GenerateSlots(windows, monday, monday, monday, time.UTC))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSlots_OnlyStrictlyAfterNow(t *testing.T) {
	c := uuid.New()
	windows := []*model.WeeklyWindow{approvedWindow(c, time.Monday, "09:00", "12:00")}

	now := monday.Add(2 * time.Hour) // 10:00 exactly
	got := slotTimes(GenerateSlots(windows, monday, monday, now, time.UTC))

	assert.Equal(t, []string{"2026-03-02 11:00"}, got)
}

func TestGenerateSlots_IgnoresUnapprovedWindows(t *testing.T) {
	c := uuid.New()
	pending := approvedWindow(c, time.Monday, "09:00", "11:00")
	pending.Status = model.WindowStatusPending

	assert.Empty(t, GenerateSlots([]*model.WeeklyWindow{pending}, monday, monday, monday, time.UTC))
}

func TestGenerateSlots_HorizonIsInclusive(t *testing.T) {
	c := uuid.New()
	windows := []*model.WeeklyWindow{
		approvedWindow(c, time.Monday, "09:00", "11:00"),
		approvedWindow(c, time.Wednesday, "14:00", "15:00"),
	}
	from, to := Horizon(monday, 4, time.UTC)
	require.Equal(t, time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC), to)

	slots := GenerateSlots(windows, from, to, monday, time.UTC)

	// Mondays 2, 9, 16, 23, 30 with two slots each, Wednesdays 4, 11, 18, 25 with one.
	assert.Len(t, slots, 5*2+4)
	last := slots[len(slots)-1]
	assert.Equal(t, "2026-03-30 10:00", last.SlotDate.Format(time.DateOnly)+" "+last.SlotTime.String())
}

func TestGenerateSlots_UsesLocationForWeekday(t *testing.T) {
	c := uuid.New()
	jakarta := time.FixedZone("WIB", 7*3600)
	windows := []*model.WeeklyWindow{approvedWindow(c, time.Tuesday, "09:00", "10:00")}

	// 2026-03-02 20:00 UTC is already Tuesday 03:00 in UTC+7.
	now := time.Date(2026, 3, 2, 20, 0, 0, 0, time.UTC)
	got := slotTimes(GenerateSlots(windows, now, now, now, jakarta))

	assert.Equal(t, []string{"2026-03-03 09:00"}, got)
}
