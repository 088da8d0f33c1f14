package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type PlanType string

const (
	PlanBuild    PlanType = "build"
	PlanMaintain PlanType = "maintain"
	PlanRecovery PlanType = "recovery"
	PlanRacePrep PlanType = "race-prep"
)

type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

// maxPlanDays bounds how long one plan may run.
const maxPlanDays = 31

// PlanSessions holds the number of sessions planned per workout category.
type PlanSessions struct {
	Run      int `json:"run" db:"run_sessions"`
	Cycle    int `json:"cycle" db:"cycle_sessions"`
	Swim     int `json:"swim" db:"swim_sessions"`
	Strength int `json:"strength" db:"strength_sessions"`
	Other    int `json:"other" db:"other_sessions"`
}

func (s PlanSessions) For(c Category) int {
	switch c {
	case CategoryRun:
		return s.Run
	case CategoryCycle:
		return s.Cycle
	case CategorySwim:
		return s.Swim
	case CategoryStrength:
		return s.Strength
	default:
		return s.Other
	}
}

func (s PlanSessions) Total() int {
	return s.Run + s.Cycle + s.Swim + s.Strength + s.Other
}

// TrainingPlan is a block of planned sessions covering [WeekStart, WeekEnd].
// Plans are keyed by WeekStart; saving a plan for the same start replaces it.
type TrainingPlan struct {
	WeekStart string    `json:"week_start" db:"week_start"`
	WeekEnd   string    `json:"week_end" db:"week_end"`
	Type      PlanType  `json:"plan_type" db:"plan_type"`
	Intensity Intensity `json:"intensity" db:"intensity"`
	Notes     string    `json:"notes,omitempty" db:"notes"`

	PlanSessions `json:"sessions"`
}

// Canonicalize fills defaults and rewrites the dates as YYYY-MM-DD.
// A missing WeekEnd means a seven-day plan and a missing intensity means moderate.
func (p *TrainingPlan) Canonicalize() error {
	start, err := ParseDay(p.WeekStart)
	if err != nil {
		return fmt.Errorf("plan week_start: %w", err)
	}
	end := start.AddDate(0, 0, 6)
	if strings.TrimSpace(p.WeekEnd) != "" {
		if end, err = ParseDay(p.WeekEnd); err != nil {
			return fmt.Errorf("plan week_end: %w", err)
		}
	}

	switch {
	case end.Before(start):
		return fmt.Errorf("%w: plan week_end is before week_start", ErrInvalidArgument)
	case end.Sub(start) >= maxPlanDays*24*time.Hour:
		return fmt.Errorf("%w: a plan cannot span more than %d days", ErrInvalidArgument, maxPlanDays)
	}

	p.Type = PlanType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	switch p.Type {
	case PlanBuild, PlanMaintain, PlanRecovery, PlanRacePrep:
	case "":
		return fmt.Errorf("%w: plan_type is required", ErrInvalidArgument)
	default:
		return fmt.Errorf("%w: unknown plan_type %q", ErrInvalidArgument, p.Type)
	}

	p.Intensity = Intensity(strings.ToLower(strings.TrimSpace(string(p.Intensity))))
	switch p.Intensity {
	case IntensityLow, IntensityModerate, IntensityHigh:
	case "":
		p.Intensity = IntensityModerate
	default:
		return fmt.Errorf("%w: unknown intensity %q", ErrInvalidArgument, p.Intensity)
	}

	s := p.PlanSessions
	if s.Run < 0 || s.Cycle < 0 || s.Swim < 0 || s.Strength < 0 || s.Other < 0 {
		return fmt.Errorf("%w: planned sessions cannot be negative", ErrInvalidArgument)
	}

	p.WeekStart = FormatDay(start)
	p.WeekEnd = FormatDay(end)
	return nil
}

// Span returns the first and last day of the plan. The plan must be canonical.
func (p *TrainingPlan) Span() (time.Time, time.Time) {
	start, _ := ParseDay(p.WeekStart)
	end, _ := ParseDay(p.WeekEnd)
	return start, end
}

type ComplianceStatus string

const (
	ComplianceBehind  ComplianceStatus = "behind"
	ComplianceOnTrack ComplianceStatus = "on_track"
	ComplianceAhead   ComplianceStatus = "ahead"
)

type CategoryCompliance struct {
	Category        Category         `json:"category"`
	Planned         int              `json:"planned"`
	Completed       int              `json:"completed"`
	Remaining       int              `json:"remaining"`
	DurationMinutes float64          `json:"duration_minutes"`
	DistanceKm      float64          `json:"distance_km"`
	Status          ComplianceStatus `json:"status"`
}

// PlanCompliance compares a plan with the workouts logged from its first day through AsOf.
type PlanCompliance struct {
	Plan              TrainingPlan         `json:"plan"`
	AsOf              string               `json:"as_of"`
	Categories        []CategoryCompliance `json:"categories"`
	PlannedSessions   int                  `json:"planned_sessions"`
	CompletedSessions int                  `json:"completed_sessions"`
	CompletionPct     float64              `json:"completion_pct"`
	SkippedRows       int                  `json:"skipped_rows"`
	Recommendations   []string             `json:"recommendations"`
}

// PlanRepository stores training plans keyed by their first day.
type PlanRepository interface {
	// SavePlan upserts the plan by WeekStart.
	SavePlan(ctx context.Context, plan *TrainingPlan) error

	// GetPlan returns the plan starting on weekStart, or ErrNotFound.
	GetPlan(ctx context.Context, weekStart time.Time) (*TrainingPlan, error)

	// LatestPlan returns the plan with the latest WeekStart, or ErrNotFound.
	LatestPlan(ctx context.Context) (*TrainingPlan, error)
}
