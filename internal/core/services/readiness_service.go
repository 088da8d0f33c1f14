package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

type ReadinessRepository interface {
	domain.MetricRepository
	domain.ReadinessHistory
}

type ReadinessService struct {
	repo       ReadinessRepository
	normalizer *analytics.Normalizer
	params     analytics.ScoringParams
	logger     zerolog.Logger
	observer   Observer
}

func NewReadinessService(
	repo ReadinessRepository,
	normalizer *analytics.Normalizer,
	params analytics.ScoringParams,
	logger zerolog.Logger,
	observer Observer,
) *ReadinessService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &ReadinessService{
		repo:       repo,
		normalizer: normalizer,
		params:     params,
		logger:     logger.With().Str("component", "readiness").Logger(),
		observer:   observer,
	}
}

// ComputeReadiness scores date from the repository's data and stores the record.
func (s *ReadinessService) ComputeReadiness(ctx context.Context, date time.Time) (*domain.ReadinessRecord, error) {
	started := time.Now()
	day := domain.Day(date)

	rec, err := s.compute(ctx, day)
	if err != nil {
		s.observer.ReadinessFailed(err)
		return nil, err
	}

	if err := s.repo.StoreReadiness(ctx, rec); err != nil {
		err = upstream("storing readiness", err)
		s.observer.ReadinessFailed(err)
		return nil, err
	}

	s.observer.ReadinessComputed(rec, time.Since(started))
	s.logger.Info().
		Str("date", rec.Date).
		Int("composite", rec.CompositeScore).
		Int("hrv", rec.HRVScore).
		Int("sleep", rec.SleepScore).
		Int("training_load", rec.TrainingLoadScore).
		Msg("readiness computed")

	return rec, nil
}

func (s *ReadinessService) compute(ctx context.Context, day time.Time) (*domain.ReadinessRecord, error) {
	in := analytics.ReadinessInputs{Date: day}
	var raws []domain.RawWorkout

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sample, err := s.repo.GetDailyMetric(gctx, day)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: no daily metric for %s", domain.ErrDataNotFound, domain.FormatDay(day))
		}
		if err != nil {
			return upstream("reading daily metric", err)
		}
		in.Today = sample
		return nil
	})

	g.Go(func() error {
		history, err := s.repo.GetHistoricalDailyMetrics(gctx, day, s.params.HRVWindowDays)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return upstream("reading hrv history", err)
		}
		in.HRVHistory = history
		return nil
	})

	g.Go(func() error {
		sample, err := s.repo.GetSleepSample(gctx, day)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Str("date", domain.FormatDay(day)).Msg("no sleep sample, scoring sleep from empty night")
			return nil
		}
		if err != nil {
			return upstream("reading sleep sample", err)
		}
		in.Sleep = sample
		return nil
	})

	g.Go(func() error {
		history, err := s.repo.GetHistoricalSleepSamples(gctx)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return upstream("reading sleep history", err)
		}
		in.SleepHistory = history
		return nil
	})

	g.Go(func() error {
		rows, err := s.repo.GetWorkouts(gctx, day.AddDate(0, 0, -s.params.TrainingLoadDays), day)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return upstream("reading workouts", err)
		}
		raws = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(raws) == 0 {
		s.logger.Warn().
			Str("date", domain.FormatDay(day)).
			Int("window_days", s.params.TrainingLoadDays).
			Msg("no workouts in training load window, load scored as 0")
	}

	in.Workouts, in.SkippedWorkoutRows = s.normalizer.NormalizeAll(raws)
	if in.SkippedWorkoutRows > 0 {
		s.observer.WorkoutRowsSkipped(in.SkippedWorkoutRows)
		s.logger.Warn().Int("skipped", in.SkippedWorkoutRows).Msg("unparseable workout rows ignored")
	}

	return analytics.ScoreReadiness(in, s.params)
}

func (s *ReadinessService) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	from, to = domain.Day(from), domain.Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from cannot be after to", domain.ErrInvalidArgument)
	}

	records, err := s.repo.ListReadiness(ctx, from, to)
	if err != nil {
		return nil, upstream("listing readiness", err)
	}
	if records == nil {
		records = []domain.ReadinessRecord{}
	}
	return records, nil
}
