package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/analytics"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

type WorkoutSource interface {
	GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error)
}

type TrendLimits struct {
	DefaultWeeks int
	MaxWeeks     int
}

type TrendService struct {
	repo       WorkoutSource
	normalizer *analytics.Normalizer
	limits     TrendLimits
	logger     zerolog.Logger
	observer   Observer
	now        func() time.Time
}

func NewTrendService(repo WorkoutSource, normalizer *analytics.Normalizer, limits TrendLimits, logger zerolog.Logger, observer Observer) *TrendService {
	if observer == nil {
		observer = NopObserver{}
	}
	return &TrendService{
		repo:       repo,
		normalizer: normalizer,
		limits:     limits,
		logger:     logger.With().Str("component", "trends").Logger(),
		observer:   observer,
		now:        time.Now,
	}
}

func (s *TrendService) DefaultWeeks() int {
	return s.limits.DefaultWeeks
}

// ComputeTrends aggregates the workouts recorded in [end - weeks*7 days, end].
// A zero EndDate means today.
func (s *TrendService) ComputeTrends(ctx context.Context, q domain.TrendQuery) (*domain.TrendReport, error) {
	started := time.Now()

	if q.Weeks <= 0 {
		return nil, fmt.Errorf("%w: weeks must be positive, got %d", domain.ErrInvalidArgument, q.Weeks)
	}
	if s.limits.MaxWeeks > 0 && q.Weeks > s.limits.MaxWeeks {
		return nil, fmt.Errorf("%w: weeks cannot exceed %d", domain.ErrInvalidArgument, s.limits.MaxWeeks)
	}
	view, err := domain.ParseTrendView(string(q.View))
	if err != nil {
		return nil, err
	}

	end := q.EndDate
	if end.IsZero() {
		end = s.now().UTC()
	}
	end = domain.Day(end)
	start := end.AddDate(0, 0, -q.Weeks*7)

	raws, err := s.repo.GetWorkouts(ctx, start, end)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, upstream("reading workouts", err)
	}

	normalized, skipped := s.normalizer.NormalizeAll(raws)
	if skipped > 0 {
		s.observer.WorkoutRowsSkipped(skipped)
		s.logger.Warn().Int("skipped", skipped).Msg("unparseable workout rows ignored")
	}

	inRange := normalized[:0]
	for _, w := range normalized {
		if w.Date.Before(start) || w.Date.After(end) {
			continue
		}
		inRange = append(inRange, w)
	}

	report, err := analytics.AggregateTrends(inRange, q.Weeks, view)
	if err != nil {
		return nil, err
	}
	report.StartDate = domain.FormatDay(start)
	report.EndDate = domain.FormatDay(end)
	report.SkippedRows = skipped

	s.observer.TrendsComputed(view, time.Since(started))
	s.logger.Debug().
		Str("view", string(view)).
		Int("weeks", q.Weeks).
		Int("groups", len(report.Weeks)).
		Msg("trends computed")

	return report, nil
}
