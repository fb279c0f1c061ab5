package query

import (
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
)

// Resolve turns a date-range selection into concrete bounds relative to now.
// Relative presets span [today - N days, today]. lastMonth covers the full
// previous calendar month. Any unrecognized preset falls back to the last 30
// days rather than failing the query.
func Resolve(r DateRange, now time.Time) (time.Time, time.Time) {
	today := startOfDay(now)

	switch r.Preset {
	case enums.PresetLast7Days:
		return today.AddDate(0, 0, -7), endOfDay(now)
	case enums.PresetLast90Days:
		return today.AddDate(0, 0, -90), endOfDay(now)
	case enums.PresetLastMonth:
		firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		start := firstOfThisMonth.AddDate(0, -1, 0)
		end := firstOfThisMonth.Add(-time.Nanosecond)
		return start, end
	case enums.PresetCustom:
		if r.Start != nil && r.End != nil {
			return startOfDay(*r.Start), endOfDay(*r.End)
		}
	}
	return today.AddDate(0, 0, -30), endOfDay(now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
