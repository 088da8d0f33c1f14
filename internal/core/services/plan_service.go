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

type PlanStore interface {
	domain.PlanRepository
	WorkoutSource
}

type PlanService struct {
	repo       PlanStore
	normalizer *analytics.Normalizer
	logger     zerolog.Logger
	now        func() time.Time
}

func NewPlanService(repo PlanStore, normalizer *analytics.Normalizer, logger zerolog.Logger) *PlanService {
	return &PlanService{
		repo:       repo,
		normalizer: normalizer,
		logger:     logger.With().Str("component", "plans").Logger(),
		now:        time.Now,
	}
}

// SavePlan stores a plan, replacing any plan that starts on the same day.
func (s *PlanService) SavePlan(ctx context.Context, plan *domain.TrainingPlan) (*domain.TrainingPlan, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan is required", domain.ErrInvalidArgument)
	}
	stored := *plan
	if err := stored.Canonicalize(); err != nil {
		return nil, err
	}

	if err := s.repo.SavePlan(ctx, &stored); err != nil {
		return nil, upstream("saving plan", err)
	}

	s.logger.Info().
		Str("week_start", stored.WeekStart).
		Str("plan_type", string(stored.Type)).
		Int("sessions", stored.Total()).
		Msg("training plan stored")
	return &stored, nil
}

func (s *PlanService) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	plan, err := s.repo.GetPlan(ctx, weekStart)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: no plan starts on %s", domain.ErrDataNotFound, domain.FormatDay(weekStart))
	}
	if err != nil {
		return nil, upstream("reading plan", err)
	}
	return plan, nil
}

func (s *PlanService) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	plan, err := s.repo.LatestPlan(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: no training plan stored", domain.ErrDataNotFound)
	}
	if err != nil {
		return nil, upstream("reading latest plan", err)
	}
	return plan, nil
}

// Compliance compares the plan starting on weekStart with the workouts logged through asOf.
// A zero asOf means today.
func (s *PlanService) Compliance(ctx context.Context, weekStart, asOf time.Time) (*domain.PlanCompliance, error) {
	plan, err := s.GetPlan(ctx, weekStart)
	if err != nil {
		return nil, err
	}
	return s.compare(ctx, plan, asOf)
}

// LatestCompliance is Compliance for the most recent plan.
func (s *PlanService) LatestCompliance(ctx context.Context, asOf time.Time) (*domain.PlanCompliance, error) {
	plan, err := s.LatestPlan(ctx)
	if err != nil {
		return nil, err
	}
	return s.compare(ctx, plan, asOf)
}

func (s *PlanService) compare(ctx context.Context, plan *domain.TrainingPlan, asOf time.Time) (*domain.PlanCompliance, error) {
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}
	asOf = domain.Day(asOf)

	start, end := plan.Span()
	if asOf.Before(start) {
		return nil, fmt.Errorf("%w: plan starting %s has not begun on %s", domain.ErrInvalidArgument, plan.WeekStart, domain.FormatDay(asOf))
	}
	if asOf.After(end) {
		asOf = end
	}

	raws, err := s.repo.GetWorkouts(ctx, start, asOf)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, upstream("reading workouts", err)
	}

	normalized, skipped := s.normalizer.NormalizeAll(raws)
	if skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Msg("unparseable workout rows ignored")
	}

	report := analytics.ComparePlan(plan, normalized, asOf)
	report.SkippedRows = skipped

	s.logger.Debug().
		Str("week_start", plan.WeekStart).
		Str("as_of", report.AsOf).
		Float64("completion_pct", report.CompletionPct).
		Msg("plan compliance computed")
	return report, nil
}
