package analytics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

const (
	offsetTimestampLayout = "2006-01-02 15:04:05 -0700"
	slashDateLayout       = "1/2/2006"

	// Day 25569 of the spreadsheet epoch is 1970-01-01.
	spreadsheetUnixEpoch = 25569
	maxSpreadsheetSerial = 2958465
	millisPerDay         = 86400000
)

type categoryRule struct {
	category domain.Category
	keywords []string
}

// categoryRules is evaluated top to bottom; the first rule with a matching keyword wins.
var categoryRules = []categoryRule{
	{domain.CategoryRun, []string{"run", "jog", "treadmill"}},
	{domain.CategoryCycle, []string{"cycl", "bike", "biking", "spin"}},
	{domain.CategorySwim, []string{"swim", "pool", "open water"}},
	{domain.CategoryStrength, []string{
		"strength", "weight", "lift", "bench", "squat", "deadlift", "press", "curl", "lunge", "pull-up", "push-up",
	}},
}

// Classify maps a free-text workout label to a category, case-insensitively.
func Classify(label string) domain.Category {
	l := strings.ToLower(label)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(l, kw) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}

type dateParser func(s string) (time.Time, bool)

var dateParsers = []dateParser{
	parseOffsetTimestamp,
	parseSlashDate,
	parseSpreadsheetSerial,
	parseISOPrefix,
}

// ParseWorkoutDate tries every known date encoding in order and returns the calendar day.
func ParseWorkoutDate(raw domain.RawText) (time.Time, bool) {
	s := raw.String()
	if s == "" {
		return time.Time{}, false
	}
	for _, parse := range dateParsers {
		if t, ok := parse(s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseOffsetTimestamp keeps the calendar date as written, not the UTC date.
func parseOffsetTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(offsetTimestampLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

func parseSlashDate(s string) (time.Time, bool) {
	head := strings.Fields(s)[0]
	if !strings.Contains(head, "/") {
		return time.Time{}, false
	}
	t, err := time.Parse(slashDateLayout, head)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseSpreadsheetSerial(s string) (time.Time, bool) {
	serial, err := strconv.ParseFloat(s, 64)
	if err != nil || serial <= 0 || serial > maxSpreadsheetSerial {
		return time.Time{}, false
	}
	ms := (serial - spreadsheetUnixEpoch) * millisPerDay
	return domain.Day(time.UnixMilli(int64(math.Round(ms))).UTC()), true
}

func parseISOPrefix(s string) (time.Time, bool) {
	if len(s) < len(domain.DateLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(domain.DateLayout, s[:len(domain.DateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var (
	hmsDurationPattern   = regexp.MustCompile(`^(\d+)h:(\d+)m(?::(\d+)s)?$`)
	clockDurationPattern = regexp.MustCompile(`^(\d+):(\d{1,2})(?::(\d{1,2}))?$`)
)

type durationParser func(s string) (float64, bool)

var durationParsers = []durationParser{
	parseHMSDuration,
	parseClockDuration,
	parseNumericDuration,
}

// ParseDurationMinutes converts a duration cell to minutes.
func ParseDurationMinutes(raw domain.RawText) (float64, bool) {
	s := raw.String()
	if s == "" {
		return 0, false
	}
	for _, parse := range durationParsers {
		if v, ok := parse(s); ok {
			return v, true
		}
	}
	return 0, false
}

func parseHMSDuration(s string) (float64, bool) {
	m := hmsDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return clockMinutes(m[1], m[2], m[3]), true
}

// parseClockDuration reads "H:MM" as hours and minutes, with optional seconds.
func parseClockDuration(s string) (float64, bool) {
	m := clockDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return clockMinutes(m[1], m[2], m[3]), true
}

// parseNumericDuration reads a bare number as minutes. The hours heuristic applies to sleep cells only.
func parseNumericDuration(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func clockMinutes(h, m, s string) float64 {
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	secs := 0
	if s != "" {
		secs, _ = strconv.Atoi(s)
	}
	return float64(hours*60+mins) + float64(secs)/60
}

var kmPerUnit = map[string]float64{
	"km":         1,
	"kilometer":  1,
	"kilometers": 1,
	"mi":         1.609344,
	"mile":       1.609344,
	"miles":      1.609344,
	"m":          0.001,
	"meter":      0.001,
	"meters":     0.001,
	"yd":         0.0009144,
	"yard":       0.0009144,
	"yards":      0.0009144,
}

func KnownDistanceUnit(unit string) bool {
	_, ok := kmPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	return ok
}

// Normalizer turns exported workout rows into canonical records.
// Distances without an explicit unit are read in the configured default unit.
type Normalizer struct {
	defaultUnit string
}

func NewNormalizer(defaultDistanceUnit string) (*Normalizer, error) {
	unit := strings.ToLower(strings.TrimSpace(defaultDistanceUnit))
	if !KnownDistanceUnit(unit) {
		return nil, fmt.Errorf("%w: unknown distance unit %q", domain.ErrInvalidArgument, defaultDistanceUnit)
	}
	return &Normalizer{defaultUnit: unit}, nil
}

// Normalize reports false when the row has no usable date or an unreadable duration.
func (n *Normalizer) Normalize(raw domain.RawWorkout) (domain.NormalizedWorkout, bool) {
	date, ok := ParseWorkoutDate(raw.Date)
	if !ok {
		return domain.NormalizedWorkout{}, false
	}

	var duration float64
	if raw.Duration.String() != "" {
		duration, ok = ParseDurationMinutes(raw.Duration)
		if !ok {
			return domain.NormalizedWorkout{}, false
		}
	}

	return domain.NormalizedWorkout{
		Date:            date,
		Category:        Classify(raw.Label),
		DurationMinutes: duration,
		DistanceKm:      n.distanceKm(raw.Distance),
		Tonnage:         tonnage(raw),
	}, true
}

// NormalizeAll returns the parseable rows in input order and how many were dropped.
func (n *Normalizer) NormalizeAll(raws []domain.RawWorkout) ([]domain.NormalizedWorkout, int) {
	out := make([]domain.NormalizedWorkout, 0, len(raws))
	skipped := 0
	for _, raw := range raws {
		w, ok := n.Normalize(raw)
		if !ok {
			skipped++
			continue
		}
		out = append(out, w)
	}
	return out, skipped
}

func (n *Normalizer) distanceKm(q domain.RawQuantity) float64 {
	v, ok := q.Value.Float()
	if !ok || v <= 0 {
		return 0
	}

	unit := q.Units
	if unit == "" {
		unit = n.defaultUnit
	}
	factor, ok := kmPerUnit[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0
	}
	return v * factor
}

func tonnage(raw domain.RawWorkout) float64 {
	weight, wok := raw.Weight.Float()
	reps, rok := raw.Reps.Float()
	if !wok || !rok || weight <= 0 || reps <= 0 {
		return 0
	}

	sets, ok := raw.Sets.Float()
	if !ok || sets <= 0 {
		sets = 1
	}
	return weight * reps * sets
}
