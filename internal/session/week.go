// AngelaMos | 2026
// week.go

package session

import (
	"time"
)

// WeekStart is Monday 00:00 in loc of the week containing t, moved by
// offset weeks.
func WeekStart(t time.Time, loc *time.Location, offset int) time.Time {
	local := t.In(loc)
	daysFromMonday := (int(local.Weekday()) + 6) % 7
	y, m, d := local.Date()
	monday := time.Date(y, m, d-daysFromMonday, 0, 0, 0, 0, loc)
	return monday.AddDate(0, 0, 7*offset)
}

// WeekWindow is the half-open range [start, end) of that week. Both ends
// are local midnights, so a week with a DST change is not 168 hours.
func WeekWindow(t time.Time, loc *time.Location, offset int) (time.Time, time.Time) {
	start := WeekStart(t, loc, offset)
	return start, start.AddDate(0, 0, 7)
}

// ShiftWeeks moves t by weeks calendar weeks keeping its local wall clock.
func ShiftWeeks(t time.Time, loc *time.Location, weeks int) time.Time {
	return t.In(loc).AddDate(0, 0, 7*weeks)
}
