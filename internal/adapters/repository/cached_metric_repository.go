package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

var _ Store = (*CachedMetricRepository)(nil)

const (
	sleepHistoryKey   = "sleep:history"
	metricsVersionKey = "metrics:version"
)

// CachedMetricRepository serves the historical reads from redis.
// Sleep history is dropped on every sleep save. Daily metric windows are keyed by a
// version counter that every daily metric save bumps, so stale windows simply age out.
type CachedMetricRepository struct {
	next   Store
	cache  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedMetricRepository(next Store, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedMetricRepository {
	return &CachedMetricRepository{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

func (r *CachedMetricRepository) metricsKey(ctx context.Context, endExclusive time.Time, windowDays int) string {
	version, err := r.cache.Get(ctx, metricsVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn().Err(err).Msg("[CACHE] failed to read metrics version")
	}
	return fmt.Sprintf("metrics:history:v%d:%s:%d", version, domain.FormatDay(endExclusive), windowDays)
}

// readThrough returns the cached value for key, or loads it and fills the cache.
func readThrough[T any](ctx context.Context, r *CachedMetricRepository, key string, load func() (T, error)) (T, error) {
	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var out T
		if err := json.Unmarshal([]byte(val), &out); err == nil {
			return out, nil
		}
		r.logger.Warn().Str("key", key).Msg("[CACHE] corrupted entry, cleaning up key")
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn().Err(err).Str("key", key).Msg("[CACHE] redis read error")
	}

	out, err := load()
	if err != nil {
		return out, err
	}

	if data, err := json.Marshal(out); err == nil {
		if setErr := r.cache.Set(ctx, key, data, r.ttl).Err(); setErr != nil {
			r.logger.Warn().Err(setErr).Str("key", key).Msg("[CACHE] redis set error")
		}
	}
	return out, nil
}

func (r *CachedMetricRepository) GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]domain.DailyMetricSample, error) {
	key := r.metricsKey(ctx, endExclusive, windowDays)
	return readThrough(ctx, r, key, func() ([]domain.DailyMetricSample, error) {
		return r.next.GetHistoricalDailyMetrics(ctx, endExclusive, windowDays)
	})
}

func (r *CachedMetricRepository) GetHistoricalSleepSamples(ctx context.Context) ([]domain.SleepSample, error) {
	return readThrough(ctx, r, sleepHistoryKey, func() ([]domain.SleepSample, error) {
		return r.next.GetHistoricalSleepSamples(ctx)
	})
}

func (r *CachedMetricRepository) GetDailyMetric(ctx context.Context, date time.Time) (*domain.DailyMetricSample, error) {
	return r.next.GetDailyMetric(ctx, date)
}

func (r *CachedMetricRepository) GetSleepSample(ctx context.Context, date time.Time) (*domain.SleepSample, error) {
	return r.next.GetSleepSample(ctx, date)
}

func (r *CachedMetricRepository) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	return r.next.GetWorkouts(ctx, start, end)
}

func (r *CachedMetricRepository) StoreReadiness(ctx context.Context, record *domain.ReadinessRecord) error {
	return r.next.StoreReadiness(ctx, record)
}

func (r *CachedMetricRepository) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	return r.next.ListReadiness(ctx, from, to)
}

func (r *CachedMetricRepository) SaveDailyMetric(ctx context.Context, sample *domain.DailyMetricSample) error {
	if err := r.next.SaveDailyMetric(ctx, sample); err != nil {
		return err
	}
	if err := r.cache.Incr(ctx, metricsVersionKey).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("[CACHE] failed to invalidate daily metrics")
	}
	return nil
}

func (r *CachedMetricRepository) SaveSleepSample(ctx context.Context, sample *domain.SleepSample) error {
	if err := r.next.SaveSleepSample(ctx, sample); err != nil {
		return err
	}
	if err := r.cache.Del(ctx, sleepHistoryKey).Err(); err != nil {
		r.logger.Warn().Err(err).Msg("[CACHE] failed to invalidate sleep history")
	}
	return nil
}

func (r *CachedMetricRepository) SaveWorkout(ctx context.Context, day time.Time, workout *domain.RawWorkout) error {
	return r.next.SaveWorkout(ctx, day, workout)
}

func (r *CachedMetricRepository) SavePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	return r.next.SavePlan(ctx, plan)
}

func (r *CachedMetricRepository) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	return r.next.GetPlan(ctx, weekStart)
}

func (r *CachedMetricRepository) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	return r.next.LatestPlan(ctx)
}
