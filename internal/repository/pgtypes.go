package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/mentalist/counseling_backend/internal/model"
)

// timeArg converts a time of day into a TIME parameter.
func timeArg(t model.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t.Duration() / time.Microsecond), Valid: true}
}

// timeOfDay converts a scanned TIME column.
func timeOfDay(t pgtype.Time) model.TimeOfDay {
	return model.TimeOfDayFromDuration(time.Duration(t.Microseconds) * time.Microsecond)
}

// dateArg converts a calendar date into a DATE parameter.
func dateArg(d time.Time) pgtype.Date {
	return pgtype.Date{Time: model.DateOnly(d), Valid: true}
}
