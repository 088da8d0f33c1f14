package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

var _ Store = (*InMemoryMetricRepository)(nil)

type storedWorkout struct {
	id      string
	day     string
	workout domain.RawWorkout
}

// InMemoryMetricRepository keeps everything in process memory. Used by tests and the local CLI.
type InMemoryMetricRepository struct {
	metrics   map[string]domain.DailyMetricSample
	sleep     map[string]domain.SleepSample
	workouts  map[string]storedWorkout
	readiness map[string]domain.ReadinessRecord
	plans     map[string]domain.TrainingPlan

	mu sync.RWMutex
}

func NewInMemoryMetricRepository() *InMemoryMetricRepository {
	return &InMemoryMetricRepository{
		metrics:   make(map[string]domain.DailyMetricSample),
		sleep:     make(map[string]domain.SleepSample),
		workouts:  make(map[string]storedWorkout),
		readiness: make(map[string]domain.ReadinessRecord),
		plans:     make(map[string]domain.TrainingPlan),
	}
}

func (r *InMemoryMetricRepository) GetDailyMetric(ctx context.Context, date time.Time) (*domain.DailyMetricSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sample, ok := r.metrics[domain.FormatDay(date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sample, nil
}

func (r *InMemoryMetricRepository) GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]domain.DailyMetricSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	end := domain.Day(endExclusive)
	from := domain.FormatDay(end.AddDate(0, 0, -windowDays))
	to := domain.FormatDay(end)

	samples := []domain.DailyMetricSample{}
	for day, s := range r.metrics {
		if day >= from && day < to {
			samples = append(samples, s)
		}
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date < samples[j].Date
	})
	return samples, nil
}

func (r *InMemoryMetricRepository) GetSleepSample(ctx context.Context, date time.Time) (*domain.SleepSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sample, ok := r.sleep[domain.FormatDay(date)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sample, nil
}

func (r *InMemoryMetricRepository) GetHistoricalSleepSamples(ctx context.Context) ([]domain.SleepSample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := make([]domain.SleepSample, 0, len(r.sleep))
	for _, s := range r.sleep {
		samples = append(samples, s)
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date < samples[j].Date
	})
	return samples, nil
}

func (r *InMemoryMetricRepository) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to := domain.FormatDay(start), domain.FormatDay(end)

	var matched []storedWorkout
	for _, w := range r.workouts {
		if w.day >= from && w.day <= to {
			matched = append(matched, w)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].day != matched[j].day {
			return matched[i].day < matched[j].day
		}
		if matched[i].workout.Date != matched[j].workout.Date {
			return matched[i].workout.Date < matched[j].workout.Date
		}
		return matched[i].id < matched[j].id
	})

	workouts := make([]domain.RawWorkout, 0, len(matched))
	for _, w := range matched {
		workouts = append(workouts, w.workout)
	}
	return workouts, nil
}

func (r *InMemoryMetricRepository) StoreReadiness(ctx context.Context, record *domain.ReadinessRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readiness[record.ID] = *record
	return nil
}

func (r *InMemoryMetricRepository) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := domain.FormatDay(from), domain.FormatDay(to)

	records := []domain.ReadinessRecord{}
	for _, rec := range r.readiness {
		if rec.Date >= lo && rec.Date <= hi {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})
	return records, nil
}

func (r *InMemoryMetricRepository) SaveDailyMetric(ctx context.Context, sample *domain.DailyMetricSample) error {
	day, err := domain.ParseDay(sample.Date)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *sample
	stored.Date = domain.FormatDay(day)
	r.metrics[stored.Date] = stored
	return nil
}

func (r *InMemoryMetricRepository) SaveSleepSample(ctx context.Context, sample *domain.SleepSample) error {
	day, err := domain.ParseDay(sample.Date)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *sample
	stored.Date = domain.FormatDay(day)
	r.sleep[stored.Date] = stored
	return nil
}

func (r *InMemoryMetricRepository) SaveWorkout(ctx context.Context, day time.Time, workout *domain.RawWorkout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := workoutID(day, workout)
	if _, exists := r.workouts[id]; exists {
		return domain.ErrAlreadyStored
	}
	r.workouts[id] = storedWorkout{id: id, day: domain.FormatDay(day), workout: *workout}
	return nil
}

func (r *InMemoryMetricRepository) SavePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.plans[plan.WeekStart] = *plan
	return nil
}

func (r *InMemoryMetricRepository) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plan, ok := r.plans[domain.FormatDay(weekStart)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &plan, nil
}

func (r *InMemoryMetricRepository) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.TrainingPlan
	for key := range r.plans {
		if latest == nil || key > latest.WeekStart {
			plan := r.plans[key]
			latest = &plan
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}
