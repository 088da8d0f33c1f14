package domain

import (
	"context"
	"time"
)

// MetricRepository is the read/write surface the scoring engine consumes.
// Dates are calendar days; implementations ignore the clock part.
type MetricRepository interface {
	// GetDailyMetric returns the sample recorded for date, or ErrNotFound.
	GetDailyMetric(ctx context.Context, date time.Time) (*DailyMetricSample, error)

	// GetHistoricalDailyMetrics returns samples with date in [endExclusive-windowDays, endExclusive), oldest first.
	GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]DailyMetricSample, error)

	// GetSleepSample returns the sleep sample recorded for date, or ErrNotFound.
	GetSleepSample(ctx context.Context, date time.Time) (*SleepSample, error)

	// GetHistoricalSleepSamples returns the full sleep history, oldest first.
	GetHistoricalSleepSamples(ctx context.Context) ([]SleepSample, error)

	// GetWorkouts returns raw workout rows recorded within [start, end], both inclusive.
	GetWorkouts(ctx context.Context, start, end time.Time) ([]RawWorkout, error)

	// StoreReadiness persists a computed record. Storing the same ID twice replaces the previous record.
	StoreReadiness(ctx context.Context, record *ReadinessRecord) error
}

// ReadinessHistory lists stored readiness records within [from, to], oldest first.
type ReadinessHistory interface {
	ListReadiness(ctx context.Context, from, to time.Time) ([]ReadinessRecord, error)
}

// IngestRepository accepts samples relayed by the export automation.
// Saves are upserts keyed by date; workouts are appended under their recorded day and
// SaveWorkout returns ErrAlreadyStored for a row it already holds.
type IngestRepository interface {
	SaveDailyMetric(ctx context.Context, sample *DailyMetricSample) error
	SaveSleepSample(ctx context.Context, sample *SleepSample) error
	SaveWorkout(ctx context.Context, day time.Time, workout *RawWorkout) error
}
