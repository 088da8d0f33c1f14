package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

const (
	longSessionMinutes  = 90
	shortSessionMinutes = 30
)

var planCategories = []domain.Category{
	domain.CategoryRun,
	domain.CategoryCycle,
	domain.CategorySwim,
	domain.CategoryStrength,
	domain.CategoryOther,
}

// ComparePlan counts the workouts logged between the plan's first day and asOf against the
// planned sessions. Workouts outside that range are ignored. asOf past the plan's last day is clamped.
func ComparePlan(plan *domain.TrainingPlan, workouts []domain.NormalizedWorkout, asOf time.Time) *domain.PlanCompliance {
	start, end := plan.Span()
	asOf = domain.Day(asOf)
	if asOf.After(end) {
		asOf = end
	}

	type tally struct {
		count    int
		minutes  float64
		distance float64
	}
	tallies := make(map[domain.Category]*tally)
	var inRange []domain.NormalizedWorkout

	for _, w := range workouts {
		if w.Date.Before(start) || w.Date.After(asOf) {
			continue
		}
		t, ok := tallies[w.Category]
		if !ok {
			t = &tally{}
			tallies[w.Category] = t
		}
		t.count++
		t.minutes += w.DurationMinutes
		t.distance += w.DistanceKm
		inRange = append(inRange, w)
	}

	report := &domain.PlanCompliance{
		Plan:            *plan,
		AsOf:            domain.FormatDay(asOf),
		Categories:      []domain.CategoryCompliance{},
		PlannedSessions: plan.Total(),
		Recommendations: []string{},
	}

	credited := 0
	for _, c := range planCategories {
		planned := plan.For(c)
		t := tallies[c]
		if t == nil {
			t = &tally{}
		}
		if planned == 0 && t.count == 0 {
			continue
		}

		cc := domain.CategoryCompliance{
			Category:        c,
			Planned:         planned,
			Completed:       t.count,
			Remaining:       max(0, planned-t.count),
			DurationMinutes: round2(t.minutes),
			DistanceKm:      round2(t.distance),
			Status:          complianceStatus(planned, t.count),
		}
		report.Categories = append(report.Categories, cc)
		report.CompletedSessions += t.count
		credited += min(planned, t.count)
	}

	report.CompletionPct = 100
	if report.PlannedSessions > 0 {
		report.CompletionPct = round2(float64(credited) / float64(report.PlannedSessions) * 100)
	}

	report.Recommendations = recommend(report, inRange)
	return report
}

func complianceStatus(planned, completed int) domain.ComplianceStatus {
	switch {
	case completed > planned:
		return domain.ComplianceAhead
	case completed == planned:
		return domain.ComplianceOnTrack
	default:
		return domain.ComplianceBehind
	}
}

func recommend(report *domain.PlanCompliance, workouts []domain.NormalizedWorkout) []string {
	out := []string{}

	remaining := 0
	for _, c := range report.Categories {
		switch {
		case c.Status == domain.ComplianceAhead:
			out = append(out, fmt.Sprintf("Ahead on %s sessions. Consider a recovery day or cross-training.", c.Category))
		case c.Remaining > 0:
			remaining += c.Remaining
			out = append(out, fmt.Sprintf("%d more %s sessions planned by %s.", c.Remaining, c.Category, report.Plan.WeekEnd))
		}
	}
	if remaining == 0 && report.PlannedSessions > 0 {
		out = append(out, "All planned sessions completed.")
	}

	if len(workouts) == 0 {
		return out
	}

	// the latest timed session decides the volume advice
	sort.SliceStable(workouts, func(i, j int) bool { return workouts[i].Date.Before(workouts[j].Date) })
	for i := len(workouts) - 1; i >= 0; i-- {
		minutes := workouts[i].DurationMinutes
		if minutes <= 0 {
			continue
		}
		switch {
		case minutes > longSessionMinutes:
			out = append(out, fmt.Sprintf("Last session ran %.0f minutes. Allow recovery before the next hard workout.", math.Round(minutes)))
		case minutes < shortSessionMinutes:
			out = append(out, "Last session was short. Add volume if you feel fresh.")
		}
		break
	}
	return out
}
