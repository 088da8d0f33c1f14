package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

var _ Store = (*BreakerMetricRepository)(nil)

type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// BreakerMetricRepository stops calling a failing store once ConsecutiveFailures is reached.
// While open, every call fails fast with domain.ErrUpstreamUnavailable.
type BreakerMetricRepository struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerMetricRepository(next Store, settings BreakerSettings, logger zerolog.Logger) *BreakerMetricRepository {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "metric-store",
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			// missing or duplicate rows and rejected samples say nothing about store health
			return err == nil ||
				errors.Is(err, domain.ErrNotFound) ||
				errors.Is(err, domain.ErrAlreadyStored) ||
				errors.Is(err, domain.ErrInvalidSample) ||
				errors.Is(err, domain.ErrInvalidArgument)
		},
	})

	return &BreakerMetricRepository{next: next, cb: cb}
}

// State exposes the breaker state for health reporting.
func (r *BreakerMetricRepository) State() gobreaker.State {
	return r.cb.State()
}

func guarded[T any](r *BreakerMetricRepository, fn func() (T, error)) (T, error) {
	out, err := r.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		var zero T
		return zero, fmt.Errorf("%w: metric store: %v", domain.ErrUpstreamUnavailable, err)
	}

	typed, _ := out.(T)
	return typed, err
}

func (r *BreakerMetricRepository) exec(fn func() error) error {
	_, err := guarded(r, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (r *BreakerMetricRepository) GetDailyMetric(ctx context.Context, date time.Time) (*domain.DailyMetricSample, error) {
	return guarded(r, func() (*domain.DailyMetricSample, error) {
		return r.next.GetDailyMetric(ctx, date)
	})
}

func (r *BreakerMetricRepository) GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]domain.DailyMetricSample, error) {
	return guarded(r, func() ([]domain.DailyMetricSample, error) {
		return r.next.GetHistoricalDailyMetrics(ctx, endExclusive, windowDays)
	})
}

func (r *BreakerMetricRepository) GetSleepSample(ctx context.Context, date time.Time) (*domain.SleepSample, error) {
	return guarded(r, func() (*domain.SleepSample, error) {
		return r.next.GetSleepSample(ctx, date)
	})
}

func (r *BreakerMetricRepository) GetHistoricalSleepSamples(ctx context.Context) ([]domain.SleepSample, error) {
	return guarded(r, func() ([]domain.SleepSample, error) {
		return r.next.GetHistoricalSleepSamples(ctx)
	})
}

func (r *BreakerMetricRepository) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	return guarded(r, func() ([]domain.RawWorkout, error) {
		return r.next.GetWorkouts(ctx, start, end)
	})
}

func (r *BreakerMetricRepository) StoreReadiness(ctx context.Context, record *domain.ReadinessRecord) error {
	return r.exec(func() error { return r.next.StoreReadiness(ctx, record) })
}

func (r *BreakerMetricRepository) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	return guarded(r, func() ([]domain.ReadinessRecord, error) {
		return r.next.ListReadiness(ctx, from, to)
	})
}

func (r *BreakerMetricRepository) SaveDailyMetric(ctx context.Context, sample *domain.DailyMetricSample) error {
	return r.exec(func() error { return r.next.SaveDailyMetric(ctx, sample) })
}

func (r *BreakerMetricRepository) SaveSleepSample(ctx context.Context, sample *domain.SleepSample) error {
	return r.exec(func() error { return r.next.SaveSleepSample(ctx, sample) })
}

func (r *BreakerMetricRepository) SaveWorkout(ctx context.Context, day time.Time, workout *domain.RawWorkout) error {
	return r.exec(func() error { return r.next.SaveWorkout(ctx, day, workout) })
}

func (r *BreakerMetricRepository) SavePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	return r.exec(func() error { return r.next.SavePlan(ctx, plan) })
}

func (r *BreakerMetricRepository) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	return guarded(r, func() (*domain.TrainingPlan, error) {
		return r.next.GetPlan(ctx, weekStart)
	})
}

func (r *BreakerMetricRepository) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	return guarded(r, func() (*domain.TrainingPlan, error) {
		return r.next.LatestPlan(ctx)
	})
}
