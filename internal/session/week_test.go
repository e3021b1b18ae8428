// AngelaMos | 2026
// week_test.go

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestWeekStart(t *testing.T) {
	loc := paris(t)
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, loc)

	tests := []struct {
		name   string
		at     time.Time
		offset int
		want   time.Time
	}{
		{"wednesday", time.Date(2026, 10, 14, 15, 0, 0, 0, loc), 0, monday},
		{"monday midnight", monday, 0, monday},
		{"sunday late", time.Date(2026, 10, 18, 23, 30, 0, 0, loc), 0, monday},
		{"previous week", time.Date(2026, 10, 14, 9, 0, 0, 0, loc), -1, time.Date(2026, 10, 5, 0, 0, 0, 0, loc)},
		{"next week", time.Date(2026, 10, 14, 9, 0, 0, 0, loc), 1, time.Date(2026, 10, 19, 0, 0, 0, 0, loc)},
		// 22:30 UTC on Sunday is already Monday in Paris.
		{"utc input", time.Date(2026, 10, 11, 22, 30, 0, 0, time.UTC), 0, monday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(WeekStart(tt.at, loc, tt.offset)),
				"got %s", WeekStart(tt.at, loc, tt.offset))
		})
	}
}

func TestWeekWindowAcrossDST(t *testing.T) {
	loc := paris(t)

	from, to := WeekWindow(time.Date(2026, 10, 21, 12, 0, 0, 0, loc), loc, 0)
	assert.True(t, from.Equal(time.Date(2026, 10, 19, 0, 0, 0, 0, loc)))
	assert.True(t, to.Equal(time.Date(2026, 10, 26, 0, 0, 0, 0, loc)))
	assert.Equal(t, 169*time.Hour, to.Sub(from))
}

func TestShiftWeeksKeepsWallClock(t *testing.T) {
	loc := paris(t)

	start := time.Date(2026, 10, 20, 10, 0, 0, 0, loc)
	shifted := ShiftWeeks(start, loc, 1)

	assert.Equal(t, 10, shifted.Hour())
	assert.Equal(t, 27, shifted.Day())
	assert.Equal(t, 7*24*time.Hour+time.Hour, shifted.Sub(start))
}
