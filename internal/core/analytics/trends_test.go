package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeekKey(t *testing.T) {
	assert.Equal(t, "2025-W01", ISOWeekKey(date(2024, 12, 30)))
	assert.Equal(t, "2020-W53", ISOWeekKey(date(2021, 1, 3)))
	assert.Equal(t, "2025-W02", ISOWeekKey(date(2025, 1, 6)))
	assert.Equal(t, "2025-W02", ISOWeekKey(date(2025, 1, 12)))
}

func TestAggregateTrends(t *testing.T) {
	t.Run("Fail: Non-positive window", func(t *testing.T) {
		for _, weeks := range []int{0, -3} {
			_, err := AggregateTrends(nil, weeks, domain.ViewRun)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		}
	})

	t.Run("Fail: Unknown view", func(t *testing.T) {
		_, err := AggregateTrends(nil, 4, domain.TrendView("rowing"))
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Success: Longer run week is progressing", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 6), Category: domain.CategoryRun, DistanceKm: 10, DurationMinutes: 60},
			{Date: date(2025, 1, 13), Category: domain.CategoryRun, DistanceKm: 12, DurationMinutes: 50},
			{Date: date(2025, 1, 14), Category: domain.CategoryCycle, DistanceKm: 40, DurationMinutes: 90},
		}

		report, err := AggregateTrends(workouts, 2, domain.ViewRun)
		require.NoError(t, err)

		require.Len(t, report.Weeks, 2)
		assert.Equal(t, "2025-W02", report.Weeks[0].Week)
		assert.Equal(t, "2025-W03", report.Weeks[1].Week)
		assert.Equal(t, domain.ProgressionUnknown, report.Weeks[0].Progression)
		assert.Equal(t, domain.ProgressionProgressing, report.Weeks[1].Progression)

		require.NotNil(t, report.Weeks[0].AvgPaceMinPerKm)
		assert.Equal(t, 6.0, *report.Weeks[0].AvgPaceMinPerKm)
		assert.Equal(t, 4.17, *report.Weeks[1].AvgPaceMinPerKm)
		assert.Nil(t, report.Weeks[1].AvgSpeedKmh)

		assert.Equal(t, domain.ProgressionProgressing, report.Progression)
		assert.Equal(t, []domain.Category{domain.CategoryRun}, report.Progressing)
		assert.Empty(t, report.Stalling)
	})

	t.Run("Success: Shorter week is stalling", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 6), Category: domain.CategorySwim, DistanceKm: 2, DurationMinutes: 45},
			{Date: date(2025, 1, 8), Category: domain.CategorySwim, DistanceKm: 1.5, DurationMinutes: 30},
			{Date: date(2025, 1, 15), Category: domain.CategorySwim, DistanceKm: 3, DurationMinutes: 60},
		}

		report, err := AggregateTrends(workouts, 2, domain.ViewSwim)
		require.NoError(t, err)

		require.Len(t, report.Weeks, 2)
		assert.Equal(t, 2, report.Weeks[0].SessionCount)
		assert.Equal(t, 3.5, report.Weeks[0].TotalDistanceKm)
		assert.Equal(t, domain.ProgressionStalling, report.Progression)
		assert.Equal(t, []domain.Category{domain.CategorySwim}, report.Stalling)
	})

	t.Run("Success: Cycle speed", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 6), Category: domain.CategoryCycle, DistanceKm: 30, DurationMinutes: 60},
		}

		report, err := AggregateTrends(workouts, 1, domain.ViewCycle)
		require.NoError(t, err)

		require.Len(t, report.Weeks, 1)
		require.NotNil(t, report.Weeks[0].AvgSpeedKmh)
		assert.Equal(t, 30.0, *report.Weeks[0].AvgSpeedKmh)
		assert.Nil(t, report.Weeks[0].AvgPaceMinPerKm)
		assert.Equal(t, domain.ProgressionUnknown, report.Progression)
	})

	t.Run("Success: Combined view classifies every category in the last week", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 6), Category: domain.CategoryStrength, Tonnage: 5000, DurationMinutes: 60},
			{Date: date(2025, 1, 7), Category: domain.CategoryCycle, DistanceKm: 40, DurationMinutes: 90},
			{Date: date(2025, 1, 13), Category: domain.CategoryStrength, Tonnage: 4000, DurationMinutes: 75},
			{Date: date(2025, 1, 14), Category: domain.CategoryRun, DistanceKm: 5, DurationMinutes: 30},
		}

		report, err := AggregateTrends(workouts, 2, domain.ViewCombined)
		require.NoError(t, err)

		assert.Len(t, report.Weeks, 4)
		assert.Equal(t, domain.Progression(""), report.Progression)
		assert.Equal(t, []domain.Category{domain.CategoryRun}, report.Progressing)
		assert.Equal(t, []domain.Category{domain.CategoryStrength}, report.Stalling)

		last := report.Weeks[len(report.Weeks)-1]
		assert.Equal(t, "2025-W03", last.Week)
		assert.Equal(t, domain.CategoryStrength, last.Category)
		assert.Equal(t, 4000.0, last.TotalTonnage)
	})

	t.Run("Edge Case: Empty view aggregates every category", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 6), Category: domain.CategoryStrength, Tonnage: 1920, DurationMinutes: 40},
			{Date: date(2025, 1, 7), Category: domain.CategoryRun, DistanceKm: 8, DurationMinutes: 45},
		}

		report, err := AggregateTrends(workouts, 1, domain.TrendView(""))
		require.NoError(t, err)

		assert.Equal(t, domain.ViewCombined, report.View)
		require.Len(t, report.Weeks, 2)
		assert.Equal(t, domain.CategoryRun, report.Weeks[0].Category)
		assert.Equal(t, domain.CategoryStrength, report.Weeks[1].Category)
		assert.Equal(t, domain.Progression(""), report.Progression)
	})

	t.Run("Edge Case: View is matched case-insensitively", func(t *testing.T) {
		workouts := []domain.NormalizedWorkout{
			{Date: date(2025, 1, 7), Category: domain.CategoryRun, DistanceKm: 8, DurationMinutes: 45},
			{Date: date(2025, 1, 8), Category: domain.CategorySwim, DistanceKm: 2, DurationMinutes: 50},
		}

		report, err := AggregateTrends(workouts, 1, domain.TrendView(" Run "))
		require.NoError(t, err)

		assert.Equal(t, domain.ViewRun, report.View)
		require.Len(t, report.Weeks, 1)
		assert.Equal(t, domain.CategoryRun, report.Weeks[0].Category)
	})

	t.Run("Edge Case: No workouts returns an empty report", func(t *testing.T) {
		report, err := AggregateTrends(nil, 4, domain.ViewStrength)
		require.NoError(t, err)

		assert.NotNil(t, report.Weeks)
		assert.Empty(t, report.Weeks)
		assert.Equal(t, domain.ProgressionUnknown, report.Progression)
		assert.Empty(t, report.Progressing)
		assert.Empty(t, report.Stalling)
	})
}
