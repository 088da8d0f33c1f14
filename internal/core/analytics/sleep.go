package analytics

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

const (
	minimumSleepHours = 4.0

	// hoursMagnitudeLimit separates plain numbers given in hours from ones given in minutes.
	hoursMagnitudeLimit = 25.0

	minRegularitySamples = 3
)

var (
	hoursMinutesPattern = regexp.MustCompile(`^(\d+)h:(\d+)m$`)
	clockPattern        = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)
)

// hoursFromMagnitude reads small numbers as hours and larger ones as minutes.
func hoursFromMagnitude(v float64) float64 {
	if v > hoursMagnitudeLimit {
		return v / 60
	}
	return v
}

// ParseHours converts a sleep duration cell to hours.
// Accepted: "7h:30m", "07:30", decimal hours and raw minutes.
func ParseHours(raw domain.RawText) (float64, bool) {
	s := raw.String()
	if s == "" {
		return 0, false
	}

	if m := hoursMinutesPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return float64(h) + float64(mins)/60, true
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		return float64(h) + float64(mins)/60, true
	}

	if v, ok := raw.Float(); ok && v >= 0 {
		return hoursFromMagnitude(v), true
	}

	return 0, false
}

// BedtimeHours returns the bedtime as an hour offset from midnight; evening times are negative (23:30 is -0.5).
func BedtimeHours(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var h, m int
	if match := clockPattern.FindStringSubmatch(s); match != nil {
		h, _ = strconv.Atoi(match[1])
		m, _ = strconv.Atoi(match[2])
	} else if t, err := time.Parse(offsetTimestampLayout, s); err == nil {
		h, m = t.Hour(), t.Minute()
	} else if t, err := time.Parse(time.RFC3339, s); err == nil {
		h, m = t.Hour(), t.Minute()
	} else {
		return 0, false
	}

	if h > 23 || m > 59 {
		return 0, false
	}

	hours := float64(h) + float64(m)/60
	if hours > 12 {
		hours -= 24
	}
	return hours, true
}

func AwakePenalty(awakeMinutes int) float64 {
	return math.Max(0, math.Floor(float64(awakeMinutes-10)/10)*2)
}

func WakePenalty(wakeCount int) float64 {
	return math.Max(0, float64(wakeCount-2)*3)
}

// QuantityScore is the logistic score of tonight's duration against the whole history.
// Anything under four hours scores 0.
func QuantityScore(sleepHours float64, population Baseline, k float64) float64 {
	if sleepHours < minimumSleepHours {
		return 0
	}
	return Logistic(population.ZScore(sleepHours), k)
}

// QualityScore starts from the exported efficiency, falling back to asleep/in-bed, and deducts fragmentation penalties.
func QualityScore(asleepHours, inBedHours, efficiencyPct float64, awakeMinutes, wakeCount int) float64 {
	base := efficiencyPct
	if base <= 0 {
		base = 0
		if inBedHours > 0 {
			base = asleepHours / inBedHours * 100
		}
	}

	return clampScore(base - AwakePenalty(awakeMinutes) - WakePenalty(wakeCount))
}

// RegularityScore deducts 10 points per hour of bedtime standard deviation.
func RegularityScore(bedtimes []float64) float64 {
	if len(bedtimes) <= minRegularitySamples {
		return domain.NeutralScore
	}
	return math.Max(0, 100-Summarize(bedtimes).SD*10)
}

type SleepComponents struct {
	Quantity     float64
	Quality      float64
	Architecture float64
	Physiology   float64
	Regularity   float64
	Subjective   float64
}

func SleepScore(c SleepComponents) int {
	return int(math.Round(
		0.25*c.Quantity +
			0.20*c.Quality +
			0.15*c.Architecture +
			0.25*c.Physiology +
			0.10*c.Regularity +
			0.05*c.Subjective,
	))
}

func TrainingLoadScore(totalMinutes float64, windowDays int) int {
	if windowDays <= 0 || totalMinutes <= 0 {
		return 0
	}
	ratio := math.Min(1, totalMinutes/float64(windowDays*60))
	return int(math.Round(ratio * 100))
}

func CompositeScore(hrvScore, sleepScore, trainingLoadScore int) int {
	return int(math.Round(
		0.45*float64(hrvScore) +
			0.45*float64(sleepScore) +
			0.10*float64(trainingLoadScore),
	))
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
