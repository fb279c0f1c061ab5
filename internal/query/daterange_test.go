package query

import (
	"testing"
	"time"

	"github.com/profitlens/profitlens-backend/pkg/enums"
)

func TestResolvePresets(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		preset    enums.DatePreset
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "last 7 days",
			preset:    enums.PresetLast7Days,
			wantStart: time.Date(2025, time.March, 8, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "last 90 days",
			preset:    enums.PresetLast90Days,
			wantStart: time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "last month is the full previous calendar month",
			preset:    enums.PresetLastMonth,
			wantStart: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "default preset",
			preset:    enums.PresetLast30Days,
			wantStart: time.Date(2025, time.February, 13, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			name:      "unknown preset falls back to last 30 days",
			preset:    enums.DatePreset("lastDecade"),
			wantStart: time.Date(2025, time.February, 13, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.March, 16, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start, end := Resolve(DateRange{Preset: tc.preset}, now)
			if !start.Equal(tc.wantStart) {
				t.Fatalf("start: got %s, want %s", start, tc.wantStart)
			}
			if !end.Equal(tc.wantEnd) {
				t.Fatalf("end: got %s, want %s", end, tc.wantEnd)
			}
		})
	}
}

func TestResolveCustomRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
	from := time.Date(2025, time.January, 5, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

	start, end := Resolve(DateRange{Preset: enums.PresetCustom, Start: &from, End: &to}, now)
	if !start.Equal(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("custom start not snapped to day start: %s", start)
	}
	if !end.Equal(time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)) {
		t.Fatalf("custom end not snapped to day end: %s", end)
	}

	// A custom preset without bounds falls back like an unknown preset.
	start, _ = Resolve(DateRange{Preset: enums.PresetCustom}, now)
	if !start.Equal(time.Date(2025, time.February, 13, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("boundless custom range must fall back to last 30 days: %s", start)
	}
}
