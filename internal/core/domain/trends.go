package domain

import (
	"fmt"
	"strings"
	"time"
)

type Progression string

const (
	ProgressionProgressing Progression = "progressing"
	ProgressionStalling    Progression = "stalling"
	ProgressionUnknown     Progression = "unknown"
)

type TrendView string

const (
	ViewRun      TrendView = "run"
	ViewCycle    TrendView = "cycle"
	ViewSwim     TrendView = "swim"
	ViewStrength TrendView = "strength"
	ViewCombined TrendView = "combined"
)

func ParseTrendView(s string) (TrendView, error) {
	switch v := TrendView(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewCombined, nil
	case ViewRun, ViewCycle, ViewSwim, ViewStrength, ViewCombined:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown trend view %q", ErrInvalidArgument, s)
	}
}

// Category returns the single workout category the view is restricted to.
// The combined view returns false.
func (v TrendView) Category() (Category, bool) {
	if v == ViewCombined {
		return "", false
	}
	return Category(v), true
}

type WeeklyAggregate struct {
	Week                 string      `json:"week"`
	Category             Category    `json:"category"`
	SessionCount         int         `json:"session_count"`
	TotalDistanceKm      float64     `json:"total_distance_km"`
	TotalDurationMinutes float64     `json:"total_duration_minutes"`
	TotalTonnage         float64     `json:"total_tonnage"`
	AvgPaceMinPerKm      *float64    `json:"avg_pace_min_per_km,omitempty"`
	AvgSpeedKmh          *float64    `json:"avg_speed_kmh,omitempty"`
	Progression          Progression `json:"progression"`
}

type TrendQuery struct {
	Weeks   int
	View    TrendView
	EndDate time.Time
}

type TrendReport struct {
	View        TrendView         `json:"view"`
	WindowWeeks int               `json:"window_weeks"`
	StartDate   string            `json:"start_date,omitempty"`
	EndDate     string            `json:"end_date,omitempty"`
	Weeks       []WeeklyAggregate `json:"weeks"`
	Progression Progression       `json:"progression,omitempty"`
	Progressing []Category        `json:"progressing"`
	Stalling    []Category        `json:"stalling"`
	SkippedRows int               `json:"skipped_rows"`
}
