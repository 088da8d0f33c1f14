package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

// Observer receives computation outcomes, typically to export metrics.
type Observer interface {
	ReadinessComputed(rec *domain.ReadinessRecord, elapsed time.Duration)
	ReadinessFailed(err error)
	TrendsComputed(view domain.TrendView, elapsed time.Duration)
	WorkoutRowsSkipped(n int)
}

type NopObserver struct{}

func (NopObserver) ReadinessComputed(*domain.ReadinessRecord, time.Duration) {}
func (NopObserver) ReadinessFailed(error)                                  {}
func (NopObserver) TrendsComputed(domain.TrendView, time.Duration)         {}
func (NopObserver) WorkoutRowsSkipped(int)                                 {}

// upstream marks a collaborator failure. Errors that already carry a kind are returned as is.
func upstream(op string, err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) ||
		errors.Is(err, domain.ErrInvalidSample) ||
		errors.Is(err, domain.ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrUpstreamUnavailable, op, err)
}
