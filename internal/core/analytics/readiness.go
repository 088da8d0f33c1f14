package analytics

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

var readinessNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kanso-readiness-engine/readiness"))

// ReadinessID is stable per date and record type, so recomputing a day overwrites it.
func ReadinessID(date time.Time) string {
	return uuid.NewSHA1(readinessNamespace, []byte(domain.ReadinessTypeDaily+":"+domain.FormatDay(date))).String()
}

type ScoringParams struct {
	HRVWindowDays    int
	TrainingLoadDays int
	LogisticK        float64
	Source           string
}

func DefaultScoringParams() ScoringParams {
	return ScoringParams{
		HRVWindowDays:    30,
		TrainingLoadDays: 7,
		LogisticK:        DefaultLogisticK,
		Source:           "engine",
	}
}

func (p ScoringParams) Validate() error {
	if p.HRVWindowDays <= 0 {
		return fmt.Errorf("%w: hrv window must be positive", domain.ErrInvalidArgument)
	}
	if p.TrainingLoadDays <= 0 {
		return fmt.Errorf("%w: training load window must be positive", domain.ErrInvalidArgument)
	}
	if p.LogisticK <= 0 || math.IsNaN(p.LogisticK) || math.IsInf(p.LogisticK, 0) {
		return fmt.Errorf("%w: logistic k must be a positive number", domain.ErrInvalidArgument)
	}
	return nil
}

// ReadinessInputs is everything one readiness computation reads.
// Sleep is nil when no sample exists for the date.
type ReadinessInputs struct {
	Date               time.Time
	Today              *domain.DailyMetricSample
	HRVHistory         []domain.DailyMetricSample
	Sleep              *domain.SleepSample
	SleepHistory       []domain.SleepSample
	Workouts           []domain.NormalizedWorkout
	SkippedWorkoutRows int
}

// ScoreReadiness is a pure function of its inputs: equal inputs give equal records.
func ScoreReadiness(in ReadinessInputs, p ScoringParams) (*domain.ReadinessRecord, error) {
	date := domain.Day(in.Date)
	if in.Today == nil || in.Today.HRV == nil {
		return nil, fmt.Errorf("%w: no hrv sample for %s", domain.ErrDataNotFound, domain.FormatDay(date))
	}

	rec := &domain.ReadinessRecord{
		ID:                     ReadinessID(date),
		Date:                   domain.FormatDay(date),
		Type:                   domain.ReadinessTypeDaily,
		Source:                 p.Source,
		TrainingLoadWindowDays: p.TrainingLoadDays,
		SkippedWorkoutRows:     in.SkippedWorkoutRows,
	}

	scoreHRV(rec, *in.Today.HRV, in.HRVHistory, date, p)
	scoreSleep(rec, in.Sleep, in.SleepHistory, p)
	scoreTrainingLoad(rec, in.Workouts, date, p.TrainingLoadDays)

	rec.CompositeScore = CompositeScore(rec.HRVScore, rec.SleepScore, rec.TrainingLoadScore)
	return rec, nil
}

func scoreHRV(rec *domain.ReadinessRecord, today float64, history []domain.DailyMetricSample, date time.Time, p ScoringParams) {
	series := make([]Point, 0, len(history))
	for _, s := range history {
		if s.HRV == nil {
			continue
		}
		d, err := domain.ParseDay(s.Date)
		if err != nil {
			continue
		}
		series = append(series, Point{Date: d, Value: *s.HRV})
	}

	base := TrailingBaseline(series, date, p.HRVWindowDays)
	z := base.ZScore(today)

	rec.HRV = today
	rec.HRVMean = base.Mean
	rec.HRVSD = base.SD
	rec.HRVZ = z
	rec.HRVSampleCount = base.N
	rec.HRVScore = int(math.Round(Logistic(z, p.LogisticK)))
}

func scoreSleep(rec *domain.ReadinessRecord, today *domain.SleepSample, history []domain.SleepSample, p ScoringParams) {
	var night domain.SleepSample
	if today != nil {
		night = *today
	}

	asleep, _ := ParseHours(night.Asleep)
	inBed, _ := ParseHours(night.InBed)
	awake, _ := ParseHours(night.Awake)

	rec.SleepHours = asleep
	rec.InBedHours = inBed
	rec.AwakeMinutes = int(math.Round(awake * 60))
	rec.WakeCount = night.WakeCount

	durations := make([]float64, 0, len(history))
	bedtimes := make([]float64, 0, len(history))
	for _, s := range history {
		if h, ok := ParseHours(s.Asleep); ok {
			durations = append(durations, h)
		}
		if b, ok := BedtimeHours(s.Bedtime); ok {
			bedtimes = append(bedtimes, b)
		}
	}

	population := Summarize(durations)
	rec.SleepMean = population.Mean
	rec.SleepSD = population.SD
	rec.BedtimeSampleCount = len(bedtimes)

	components := SleepComponents{
		Quantity:     QuantityScore(asleep, population, p.LogisticK),
		Quality:      QualityScore(asleep, inBed, night.EfficiencyPct, rec.AwakeMinutes, night.WakeCount),
		Architecture: domain.NeutralScore,
		Physiology:   float64(rec.HRVScore),
		Regularity:   RegularityScore(bedtimes),
		Subjective:   domain.NeutralScore,
	}

	rec.QuantityScore = components.Quantity
	rec.QualityScore = components.Quality
	rec.ArchitectureScore = components.Architecture
	rec.PhysiologyScore = components.Physiology
	rec.RegularityScore = components.Regularity
	rec.SubjectiveScore = components.Subjective
	rec.SleepScore = SleepScore(components)
}

// scoreTrainingLoad counts workouts dated within [date-days, date].
func scoreTrainingLoad(rec *domain.ReadinessRecord, workouts []domain.NormalizedWorkout, date time.Time, days int) {
	start := date.AddDate(0, 0, -days)

	var total float64
	for _, w := range workouts {
		d := domain.Day(w.Date)
		if d.Before(start) || d.After(date) {
			continue
		}
		total += w.DurationMinutes
	}

	rec.TrainingLoadMinutes = total
	rec.TrainingLoadScore = TrainingLoadScore(total, days)
}
