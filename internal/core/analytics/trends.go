package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

// ISOWeekKey formats the ISO-8601 week of t as "YYYY-Www", using the week-numbering year.
func ISOWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

type groupKey struct {
	week     string
	category domain.Category
}

// AggregateTrends buckets workouts by ISO week and category and classifies week-over-week progression.
// Workouts outside the view's category are ignored. An empty view means combined.
func AggregateTrends(workouts []domain.NormalizedWorkout, weeks int, view domain.TrendView) (*domain.TrendReport, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("%w: weeks must be positive, got %d", domain.ErrInvalidArgument, weeks)
	}
	view, err := domain.ParseTrendView(string(view))
	if err != nil {
		return nil, err
	}
	only, single := view.Category()

	groups := make(map[groupKey]*domain.WeeklyAggregate)
	weekSet := make(map[string]struct{})

	for _, w := range workouts {
		if single && w.Category != only {
			continue
		}

		key := groupKey{week: ISOWeekKey(w.Date), category: w.Category}
		agg, ok := groups[key]
		if !ok {
			agg = &domain.WeeklyAggregate{
				Week:        key.week,
				Category:    key.category,
				Progression: domain.ProgressionUnknown,
			}
			groups[key] = agg
		}

		agg.SessionCount++
		agg.TotalDistanceKm += w.DistanceKm
		agg.TotalDurationMinutes += w.DurationMinutes
		agg.TotalTonnage += w.Tonnage
		weekSet[key.week] = struct{}{}
	}

	weekKeys := make([]string, 0, len(weekSet))
	for k := range weekSet {
		weekKeys = append(weekKeys, k)
	}
	sort.Strings(weekKeys)

	for i := 1; i < len(weekKeys); i++ {
		for key, agg := range groups {
			if key.week != weekKeys[i] {
				continue
			}
			prev := groups[groupKey{week: weekKeys[i-1], category: key.category}]
			agg.Progression = classifyProgression(agg, prev)
		}
	}

	report := &domain.TrendReport{
		View:        view,
		WindowWeeks: weeks,
		Weeks:       make([]domain.WeeklyAggregate, 0, len(groups)),
		Progressing: []domain.Category{},
		Stalling:    []domain.Category{},
	}

	for _, agg := range groups {
		finishRates(agg)
		report.Weeks = append(report.Weeks, *agg)
	}
	sort.Slice(report.Weeks, func(i, j int) bool {
		if report.Weeks[i].Week != report.Weeks[j].Week {
			return report.Weeks[i].Week < report.Weeks[j].Week
		}
		return report.Weeks[i].Category < report.Weeks[j].Category
	})

	if single {
		report.Progression = domain.ProgressionUnknown
	}
	if len(weekKeys) < 2 {
		return report, nil
	}

	last := weekKeys[len(weekKeys)-1]
	for _, agg := range report.Weeks {
		if agg.Week != last {
			continue
		}
		switch agg.Progression {
		case domain.ProgressionProgressing:
			report.Progressing = append(report.Progressing, agg.Category)
		case domain.ProgressionStalling:
			report.Stalling = append(report.Stalling, agg.Category)
		}
		if single {
			report.Progression = agg.Progression
		}
	}

	return report, nil
}

// classifyProgression compares the highest-priority volume metric either week recorded:
// tonnage, then distance, then duration. A category absent in the previous week counts as zero.
func classifyProgression(cur, prev *domain.WeeklyAggregate) domain.Progression {
	var p domain.WeeklyAggregate
	if prev != nil {
		p = *prev
	}

	var curV, prevV float64
	switch {
	case cur.TotalTonnage > 0 || p.TotalTonnage > 0:
		curV, prevV = cur.TotalTonnage, p.TotalTonnage
	case cur.TotalDistanceKm > 0 || p.TotalDistanceKm > 0:
		curV, prevV = cur.TotalDistanceKm, p.TotalDistanceKm
	default:
		curV, prevV = cur.TotalDurationMinutes, p.TotalDurationMinutes
	}

	if curV > prevV {
		return domain.ProgressionProgressing
	}
	return domain.ProgressionStalling
}

func finishRates(agg *domain.WeeklyAggregate) {
	agg.TotalDistanceKm = round2(agg.TotalDistanceKm)
	agg.TotalDurationMinutes = round2(agg.TotalDurationMinutes)
	agg.TotalTonnage = round2(agg.TotalTonnage)

	switch agg.Category {
	case domain.CategoryRun, domain.CategorySwim:
		if agg.TotalDistanceKm > 0 {
			pace := round2(agg.TotalDurationMinutes / agg.TotalDistanceKm)
			agg.AvgPaceMinPerKm = &pace
		}
	case domain.CategoryCycle:
		if agg.TotalDurationMinutes > 0 {
			speed := round2(agg.TotalDistanceKm / (agg.TotalDurationMinutes / 60))
			agg.AvgSpeedKmh = &speed
		}
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
