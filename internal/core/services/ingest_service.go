package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

// RecomputeScheduler queues a readiness recomputation for a date.
type RecomputeScheduler interface {
	Enqueue(date time.Time)
}

// IngestStore is what the ingest relay writes to. ListReadiness finds stored
// records that a late sample has made stale.
type IngestStore interface {
	domain.IngestRepository
	domain.ReadinessHistory
}

// RecomputeWindows bounds how far after a touched day stored records are refreshed.
// Zero disables the follow-up for that kind of sample.
type RecomputeWindows struct {
	// TrainingLoadDays follows a workout: day D feeds the load of D..D+TrainingLoadDays.
	TrainingLoadDays int
	// HRVWindowDays follows a daily metric: day D feeds the HRV baseline of D+1..D+HRVWindowDays.
	HRVWindowDays int
}

type IngestService struct {
	repo      IngestStore
	scheduler RecomputeScheduler
	windows   RecomputeWindows
	logger    zerolog.Logger
}

func NewIngestService(repo IngestStore, scheduler RecomputeScheduler, windows RecomputeWindows, logger zerolog.Logger) *IngestService {
	return &IngestService{
		repo:      repo,
		scheduler: scheduler,
		windows:   windows,
		logger:    logger.With().Str("component", "ingest").Logger(),
	}
}

// dayRange is an inclusive span of days whose stored readiness may depend on new data.
type dayRange struct {
	from, to time.Time
}

// Ingest stores a relayed export batch. Samples are validated up front so a bad batch writes nothing;
// workout rows with unreadable dates are skipped and counted.
func (s *IngestService) Ingest(ctx context.Context, batch *domain.IngestBatch) (*domain.IngestResult, error) {
	if batch == nil || batch.IsEmpty() {
		return nil, fmt.Errorf("%w: batch is empty", domain.ErrInvalidArgument)
	}

	for i := range batch.Metrics {
		if err := batch.Metrics[i].Validate(); err != nil {
			return nil, err
		}
	}
	for i := range batch.Sleep {
		if err := batch.Sleep[i].Validate(); err != nil {
			return nil, err
		}
	}

	result := &domain.IngestResult{ScheduledDates: []string{}}
	dates := make(map[string]time.Time)
	var followUps []dayRange

	for i := range batch.Metrics {
		m := &batch.Metrics[i]
		if err := s.repo.SaveDailyMetric(ctx, m); err != nil {
			return nil, upstream("saving daily metric", err)
		}
		d, _ := domain.ParseDay(m.Date)
		dates[domain.FormatDay(d)] = d
		if s.windows.HRVWindowDays > 0 {
			followUps = append(followUps, dayRange{from: d.AddDate(0, 0, 1), to: d.AddDate(0, 0, s.windows.HRVWindowDays)})
		}
		result.Metrics++
	}

	for i := range batch.Sleep {
		sl := &batch.Sleep[i]
		if err := s.repo.SaveSleepSample(ctx, sl); err != nil {
			return nil, upstream("saving sleep sample", err)
		}
		d, _ := domain.ParseDay(sl.Date)
		dates[domain.FormatDay(d)] = d
		result.Sleep++
	}

	occurrences := make(map[string]int)
	for i := range batch.Workouts {
		w := batch.Workouts[i]
		day, ok := analytics.ParseWorkoutDate(w.Date)
		if !ok {
			result.SkippedWorkouts++
			continue
		}

		key := domain.FormatDay(day) + "|" + w.ContentKey()
		w.Occurrence = occurrences[key]
		occurrences[key]++

		err := s.repo.SaveWorkout(ctx, day, &w)
		if errors.Is(err, domain.ErrAlreadyStored) {
			result.DuplicateWorkouts++
			continue
		}
		if err != nil {
			return nil, upstream("saving workout", err)
		}
		dates[domain.FormatDay(day)] = day
		if s.windows.TrainingLoadDays > 0 {
			followUps = append(followUps, dayRange{from: day.AddDate(0, 0, 1), to: day.AddDate(0, 0, s.windows.TrainingLoadDays)})
		}
		result.Workouts++
	}

	if result.SkippedWorkouts > 0 {
		s.logger.Warn().Int("skipped", result.SkippedWorkouts).Msg("workout rows without a readable date were not stored")
	}
	if result.DuplicateWorkouts > 0 {
		s.logger.Info().Int("duplicates", result.DuplicateWorkouts).Msg("workout rows already stored")
	}

	stale, err := s.staleDates(ctx, followUps)
	if err != nil {
		return nil, err
	}
	for k, d := range stale {
		dates[k] = d
	}

	keys := make([]string, 0, len(dates))
	for k := range dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if s.scheduler != nil {
			s.scheduler.Enqueue(dates[k])
		}
		result.ScheduledDates = append(result.ScheduledDates, k)
	}

	s.logger.Info().
		Int("metrics", result.Metrics).
		Int("sleep", result.Sleep).
		Int("workouts", result.Workouts).
		Int("stale", len(stale)).
		Msg("export batch ingested")

	return result, nil
}

// staleDates returns the already stored readiness days covered by any follow-up range.
// Days without a stored record are left alone; they are scored when their own data arrives.
func (s *IngestService) staleDates(ctx context.Context, ranges []dayRange) (map[string]time.Time, error) {
	stale := make(map[string]time.Time)
	if len(ranges) == 0 {
		return stale, nil
	}

	from, to := ranges[0].from, ranges[0].to
	for _, r := range ranges[1:] {
		if r.from.Before(from) {
			from = r.from
		}
		if r.to.After(to) {
			to = r.to
		}
	}

	records, err := s.repo.ListReadiness(ctx, from, to)
	if err != nil {
		return nil, upstream("listing readiness", err)
	}

	for _, rec := range records {
		d, err := domain.ParseDay(rec.Date)
		if err != nil {
			continue
		}
		for _, r := range ranges {
			if !d.Before(r.from) && !d.After(r.to) {
				stale[domain.FormatDay(d)] = d
				break
			}
		}
	}
	return stale, nil
}
