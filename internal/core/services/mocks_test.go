package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

type MockMetricRepo struct {
	mock.Mock
}

func (m *MockMetricRepo) GetDailyMetric(ctx context.Context, date time.Time) (*domain.DailyMetricSample, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyMetricSample), args.Error(1)
}

func (m *MockMetricRepo) GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]domain.DailyMetricSample, error) {
	args := m.Called(ctx, endExclusive, windowDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DailyMetricSample), args.Error(1)
}

func (m *MockMetricRepo) GetSleepSample(ctx context.Context, date time.Time) (*domain.SleepSample, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SleepSample), args.Error(1)
}

func (m *MockMetricRepo) GetHistoricalSleepSamples(ctx context.Context) ([]domain.SleepSample, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SleepSample), args.Error(1)
}

func (m *MockMetricRepo) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawWorkout), args.Error(1)
}

func (m *MockMetricRepo) StoreReadiness(ctx context.Context, record *domain.ReadinessRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockMetricRepo) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReadinessRecord), args.Error(1)
}

func (m *MockMetricRepo) SaveDailyMetric(ctx context.Context, sample *domain.DailyMetricSample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

func (m *MockMetricRepo) SaveSleepSample(ctx context.Context, sample *domain.SleepSample) error {
	args := m.Called(ctx, sample)
	return args.Error(0)
}

func (m *MockMetricRepo) SaveWorkout(ctx context.Context, day time.Time, workout *domain.RawWorkout) error {
	args := m.Called(ctx, day, workout)
	return args.Error(0)
}

func (m *MockMetricRepo) SavePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockMetricRepo) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	args := m.Called(ctx, weekStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingPlan), args.Error(1)
}

func (m *MockMetricRepo) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrainingPlan), args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Enqueue(date time.Time) {
	m.Called(date)
}

type recordingObserver struct {
	mu       sync.Mutex
	computed []*domain.ReadinessRecord
	failed   []error
	skipped  int
	views    []domain.TrendView
}

func (o *recordingObserver) ReadinessComputed(rec *domain.ReadinessRecord, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.computed = append(o.computed, rec)
}

func (o *recordingObserver) ReadinessFailed(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed = append(o.failed, err)
}

func (o *recordingObserver) TrendsComputed(view domain.TrendView, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.views = append(o.views, view)
}

func (o *recordingObserver) WorkoutRowsSkipped(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped += n
}

func ptr[T any](v T) *T {
	return &v
}
