package analytics

import (
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

const DefaultLogisticK = 0.87

// Point is one dated observation of a numeric series.
type Point struct {
	Date  time.Time
	Value float64
}

// Baseline holds the mean and population standard deviation of a sample.
type Baseline struct {
	Mean float64
	SD   float64
	N    int
}

func Summarize(values []float64) Baseline {
	if len(values) == 0 {
		return Baseline{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}

	return Baseline{
		Mean: mean,
		SD:   math.Sqrt(sq / float64(len(values))),
		N:    len(values),
	}
}

// TrailingBaseline summarizes the points dated within [target-windowDays, target).
// The target date itself never contributes.
func TrailingBaseline(series []Point, target time.Time, windowDays int) Baseline {
	end := domain.Day(target)
	start := end.AddDate(0, 0, -windowDays)

	values := make([]float64, 0, len(series))
	for _, p := range series {
		d := domain.Day(p.Date)
		if d.Before(start) || !d.Before(end) {
			continue
		}
		values = append(values, p.Value)
	}

	return Summarize(values)
}

// ZScore is 0 when the baseline has no spread.
func (b Baseline) ZScore(v float64) float64 {
	if b.SD <= 0 {
		return 0
	}
	return (v - b.Mean) / b.SD
}

// Logistic maps a z-score onto (0, 100), centered at 50.
func Logistic(z, k float64) float64 {
	return 100 / (1 + math.Exp(-k*z))
}
