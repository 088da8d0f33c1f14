package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

type flakyStore struct {
	Store
	err   error
	calls int
}

func (f *flakyStore) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.RawWorkout{{Label: "Run"}}, nil
}

func TestBreakerMetricRepository(t *testing.T) {
	ctx := context.Background()
	settings := BreakerSettings{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, ConsecutiveFailures: 2}

	t.Run("Trips after consecutive failures", func(t *testing.T) {
		store := &flakyStore{err: errors.New("connection reset")}
		repo := NewBreakerMetricRepository(store, settings, zerolog.Nop())

		for i := 0; i < 2; i++ {
			_, err := repo.GetWorkouts(ctx, day("2025-03-01"), day("2025-03-10"))
			assert.EqualError(t, err, "connection reset")
		}
		assert.Equal(t, gobreaker.StateOpen, repo.State())

		_, err := repo.GetWorkouts(ctx, day("2025-03-01"), day("2025-03-10"))
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Equal(t, 2, store.calls)
	})

	t.Run("Not found does not count as failure", func(t *testing.T) {
		store := &flakyStore{err: domain.ErrNotFound}
		repo := NewBreakerMetricRepository(store, settings, zerolog.Nop())

		for i := 0; i < 5; i++ {
			_, err := repo.GetWorkouts(ctx, day("2025-03-01"), day("2025-03-10"))
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}
		assert.Equal(t, gobreaker.StateClosed, repo.State())
		assert.Equal(t, 5, store.calls)
	})

	t.Run("Passes results through", func(t *testing.T) {
		inner := NewInMemoryMetricRepository()
		repo := NewBreakerMetricRepository(inner, settings, zerolog.Nop())

		require.NoError(t, repo.SaveDailyMetric(ctx, &domain.DailyMetricSample{Date: "2025-03-10", HRV: ptr(50.0)}))
		got, err := repo.GetDailyMetric(ctx, day("2025-03-10"))
		require.NoError(t, err)
		assert.Equal(t, 50.0, *got.HRV)

		_, err = repo.GetSleepSample(ctx, day("2025-03-10"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
