package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		label string
		want  domain.Category
	}{
		{"Outdoor Run", domain.CategoryRun},
		{"TREADMILL", domain.CategoryRun},
		{"Indoor Cycle", domain.CategoryCycle},
		{"Mountain Bike", domain.CategoryCycle},
		{"Pool Swim", domain.CategorySwim},
		{"Open Water", domain.CategorySwim},
		{"Bench Press", domain.CategoryStrength},
		{"Traditional Strength Training", domain.CategoryStrength},
		{"Yoga", domain.CategoryOther},
		{"", domain.CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.label))
		})
	}
}

func TestParseWorkoutDate(t *testing.T) {
	jan6 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		raw    domain.RawText
		want   time.Time
		wantOK bool
	}{
		{name: "Explicit offset keeps written date", raw: "2025-01-06 23:15:00 -0800", want: jan6, wantOK: true},
		{name: "Slash date", raw: "1/6/2025", want: jan6, wantOK: true},
		{name: "Slash date with time", raw: "1/6/2025 7:15", want: jan6, wantOK: true},
		{name: "Spreadsheet serial", raw: "45663", want: jan6, wantOK: true},
		{name: "Spreadsheet serial with fraction", raw: "45663.75", want: jan6, wantOK: true},
		{name: "ISO prefix", raw: "2025-01-06T07:15:00Z", want: jan6, wantOK: true},
		{name: "Plain ISO", raw: "2025-01-06", want: jan6, wantOK: true},
		{name: "Garbage", raw: "yesterday", wantOK: false},
		{name: "Blank", raw: "  ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseWorkoutDate(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		raw    domain.RawText
		want   float64
		wantOK bool
	}{
		{raw: "1h:05m:30s", want: 65.5, wantOK: true},
		{raw: "0h:45m", want: 45, wantOK: true},
		{raw: "1:30", want: 90, wantOK: true},
		{raw: "1:02:03", want: 62.05, wantOK: true},
		{raw: "45", want: 45, wantOK: true},
		{raw: "20", want: 20, wantOK: true},
		{raw: "1.5", want: 1.5, wantOK: true},
		{raw: "90", want: 90, wantOK: true},
		{raw: "fast", wantOK: false},
		{raw: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.raw), func(t *testing.T) {
			got, ok := ParseDurationMinutes(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestNormalizer(t *testing.T) {
	n, err := NewNormalizer("km")
	require.NoError(t, err)

	t.Run("Success: Nested miles are converted", func(t *testing.T) {
		w, ok := n.Normalize(domain.RawWorkout{
			Date:     "2025-01-06 07:00:00 +0000",
			Label:    "Outdoor Run",
			Duration: "0h:40m:00s",
			Distance: domain.RawQuantity{Value: "5", Units: "mi"},
		})
		require.True(t, ok)
		assert.Equal(t, domain.CategoryRun, w.Category)
		assert.InDelta(t, 40, w.DurationMinutes, 1e-9)
		assert.InDelta(t, 8.04672, w.DistanceKm, 1e-9)
	})

	t.Run("Success: Flat distance uses default unit", func(t *testing.T) {
		w, ok := n.Normalize(domain.RawWorkout{Date: "2025-01-06", Label: "Pool Swim", Duration: "30", Distance: domain.RawQuantity{Value: "1.5"}})
		require.True(t, ok)
		assert.InDelta(t, 1.5, w.DistanceKm, 1e-9)

		miles, err := NewNormalizer("mi")
		require.NoError(t, err)
		w, ok = miles.Normalize(domain.RawWorkout{Date: "2025-01-06", Label: "Ride", Distance: domain.RawQuantity{Value: "10"}})
		require.True(t, ok)
		assert.InDelta(t, 16.09344, w.DistanceKm, 1e-9)
	})

	t.Run("Success: Short numeric duration stays in minutes", func(t *testing.T) {
		w, ok := n.Normalize(domain.RawWorkout{Date: "2025-01-06", Label: "Outdoor Run", Duration: "20", Distance: domain.RawQuantity{Value: "4"}})
		require.True(t, ok)
		assert.InDelta(t, 20, w.DurationMinutes, 1e-9)
		assert.Equal(t, 5, TrainingLoadScore(w.DurationMinutes, 7))
	})

	t.Run("Success: Strength sets carry tonnage", func(t *testing.T) {
		w, ok := n.Normalize(domain.RawWorkout{Date: "1/6/2025", Label: "Bench Press", Weight: "100", Reps: "5", Sets: "3"})
		require.True(t, ok)
		assert.Equal(t, domain.CategoryStrength, w.Category)
		assert.Equal(t, 1500.0, w.Tonnage)
		assert.Equal(t, 0.0, w.DurationMinutes)

		w, ok = n.Normalize(domain.RawWorkout{Date: "1/6/2025", Label: "Squat", Weight: "80", Reps: "10"})
		require.True(t, ok)
		assert.Equal(t, 800.0, w.Tonnage)
	})

	t.Run("Edge Case: Unknown unit yields no distance", func(t *testing.T) {
		w, ok := n.Normalize(domain.RawWorkout{Date: "2025-01-06", Label: "Run", Distance: domain.RawQuantity{Value: "3", Units: "furlong"}})
		require.True(t, ok)
		assert.Equal(t, 0.0, w.DistanceKm)
	})

	t.Run("Skip: Unparsable date or duration", func(t *testing.T) {
		_, ok := n.Normalize(domain.RawWorkout{Date: "someday", Label: "Run", Duration: "30"})
		assert.False(t, ok)

		_, ok = n.Normalize(domain.RawWorkout{Date: "2025-01-06", Label: "Run", Duration: "quick"})
		assert.False(t, ok)
	})

	t.Run("NormalizeAll counts skipped rows", func(t *testing.T) {
		out, skipped := n.NormalizeAll([]domain.RawWorkout{
			{Date: "2025-01-06", Label: "Run", Duration: "30"},
			{Date: "", Label: "Run", Duration: "30"},
			{Date: "45664", Label: "Cycle", Duration: "1:00"},
		})
		assert.Len(t, out, 2)
		assert.Equal(t, 1, skipped)
		assert.Equal(t, domain.CategoryCycle, out[1].Category)
	})

	t.Run("Fail: Unknown default unit", func(t *testing.T) {
		_, err := NewNormalizer("furlongs")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}
