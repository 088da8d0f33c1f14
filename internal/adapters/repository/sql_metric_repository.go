package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func init() {
	// modernc.org/sqlite registers as "sqlite", which sqlx does not know by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

var _ Store = (*SQLMetricRepository)(nil)

var (
	dailyMetricColumns = []string{"day", "hrv", "resting_heart_rate", "respiratory_rate", "steps", "active_energy_kcal"}
	sleepColumns       = []string{"day", "asleep", "in_bed", "awake", "wake_count", "efficiency_pct", "bedtime"}
	workoutColumns     = []string{"id", "day", "date_raw", "label", "duration_raw", "distance_raw", "distance_units", "weight", "reps", "set_count", "set_number", "notes"}
	planColumns        = []string{"week_start", "week_end", "plan_type", "intensity", "run_sessions", "cycle_sessions", "swim_sessions", "strength_sessions", "other_sessions", "notes"}
	readinessColumns   = []string{
		"id", "day", "type", "source",
		"hrv", "hrv_mean", "hrv_sd", "hrv_z", "hrv_sample_count", "hrv_score",
		"sleep_hours", "in_bed_hours", "awake_minutes", "wake_count", "sleep_mean", "sleep_sd", "bedtime_sample_count",
		"quantity_score", "quality_score", "architecture_score", "physiology_score", "regularity_score", "subjective_score", "sleep_score",
		"training_load_minutes", "training_load_window_days", "training_load_score", "skipped_workout_rows",
		"composite_score",
	}
)

// workoutRow is the flattened storage shape of a domain.RawWorkout.
type workoutRow struct {
	ID            string `db:"id"`
	Day           string `db:"day"`
	DateRaw       string `db:"date_raw"`
	Label         string `db:"label"`
	DurationRaw   string `db:"duration_raw"`
	DistanceRaw   string `db:"distance_raw"`
	DistanceUnits string `db:"distance_units"`
	Weight        string `db:"weight"`
	Reps          string `db:"reps"`
	Sets          string `db:"set_count"`
	SetNumber     string `db:"set_number"`
	Notes         string `db:"notes"`
}

func newWorkoutRow(day time.Time, w *domain.RawWorkout) workoutRow {
	return workoutRow{
		ID:            workoutID(day, w),
		Day:           domain.FormatDay(day),
		DateRaw:       string(w.Date),
		Label:         w.Label,
		DurationRaw:   string(w.Duration),
		DistanceRaw:   string(w.Distance.Value),
		DistanceUnits: w.Distance.Units,
		Weight:        string(w.Weight),
		Reps:          string(w.Reps),
		Sets:          string(w.Sets),
		SetNumber:     string(w.SetNumber),
		Notes:         w.Notes,
	}
}

func (r workoutRow) toDomain() domain.RawWorkout {
	return domain.RawWorkout{
		Date:      domain.RawText(r.DateRaw),
		Label:     r.Label,
		Duration:  domain.RawText(r.DurationRaw),
		Distance:  domain.RawQuantity{Value: domain.RawText(r.DistanceRaw), Units: r.DistanceUnits},
		Weight:    domain.RawText(r.Weight),
		Reps:      domain.RawText(r.Reps),
		Sets:      domain.RawText(r.Sets),
		SetNumber: domain.RawText(r.SetNumber),
		Notes:     r.Notes,
	}
}

// SQLMetricRepository stores samples and readiness records through sqlx.
// It runs against Postgres (pgx or lib/pq) and SQLite; queries are written with
// '?' placeholders and rebound for the connected driver.
type SQLMetricRepository struct {
	db *sqlx.DB

	upsertDailyMetric string
	upsertSleep       string
	insertWorkout     string
	upsertReadiness   string
	upsertPlan        string
}

func NewSQLMetricRepository(db *sqlx.DB) *SQLMetricRepository {
	return &SQLMetricRepository{
		db:                db,
		upsertDailyMetric: upsertQuery("daily_metrics", dailyMetricColumns, "day"),
		upsertSleep:       upsertQuery("sleep_samples", sleepColumns, "day"),
		insertWorkout: fmt.Sprintf("INSERT INTO workouts (%s) VALUES (%s) ON CONFLICT (id) DO NOTHING",
			strings.Join(workoutColumns, ", "), namedParams(workoutColumns)),
		upsertReadiness: upsertQuery("readiness", readinessColumns, "id"),
		upsertPlan:      upsertQuery("training_plans", planColumns, "week_start"),
	}
}

func namedParams(cols []string) string {
	return ":" + strings.Join(cols, ", :")
}

func upsertQuery(table string, cols []string, key string) string {
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		if c == key {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(cols, ", "), namedParams(cols), key, strings.Join(sets, ", "))
}

func selectQuery(table string, cols []string, where string) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), table, where)
}

func (r *SQLMetricRepository) GetDailyMetric(ctx context.Context, date time.Time) (*domain.DailyMetricSample, error) {
	var sample domain.DailyMetricSample
	query := r.db.Rebind(selectQuery("daily_metrics", dailyMetricColumns, "day = ?"))

	if err := r.db.GetContext(ctx, &sample, query, domain.FormatDay(date)); err != nil {
		return nil, mapError(err)
	}
	return &sample, nil
}

func (r *SQLMetricRepository) GetHistoricalDailyMetrics(ctx context.Context, endExclusive time.Time, windowDays int) ([]domain.DailyMetricSample, error) {
	samples := []domain.DailyMetricSample{}
	end := domain.Day(endExclusive)
	start := end.AddDate(0, 0, -windowDays)
	query := r.db.Rebind(selectQuery("daily_metrics", dailyMetricColumns, "day >= ? AND day < ? ORDER BY day"))

	if err := r.db.SelectContext(ctx, &samples, query, domain.FormatDay(start), domain.FormatDay(end)); err != nil {
		return nil, mapError(err)
	}
	return samples, nil
}

func (r *SQLMetricRepository) GetSleepSample(ctx context.Context, date time.Time) (*domain.SleepSample, error) {
	var sample domain.SleepSample
	query := r.db.Rebind(selectQuery("sleep_samples", sleepColumns, "day = ?"))

	if err := r.db.GetContext(ctx, &sample, query, domain.FormatDay(date)); err != nil {
		return nil, mapError(err)
	}
	return &sample, nil
}

func (r *SQLMetricRepository) GetHistoricalSleepSamples(ctx context.Context) ([]domain.SleepSample, error) {
	samples := []domain.SleepSample{}
	query := fmt.Sprintf("SELECT %s FROM sleep_samples ORDER BY day", strings.Join(sleepColumns, ", "))

	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, mapError(err)
	}
	return samples, nil
}

func (r *SQLMetricRepository) GetWorkouts(ctx context.Context, start, end time.Time) ([]domain.RawWorkout, error) {
	rows := []workoutRow{}
	query := r.db.Rebind(selectQuery("workouts", workoutColumns, "day >= ? AND day <= ? ORDER BY day, date_raw, id"))

	if err := r.db.SelectContext(ctx, &rows, query, domain.FormatDay(start), domain.FormatDay(end)); err != nil {
		return nil, mapError(err)
	}

	workouts := make([]domain.RawWorkout, 0, len(rows))
	for _, row := range rows {
		workouts = append(workouts, row.toDomain())
	}
	return workouts, nil
}

func (r *SQLMetricRepository) StoreReadiness(ctx context.Context, record *domain.ReadinessRecord) error {
	if _, err := r.db.NamedExecContext(ctx, r.upsertReadiness, record); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *SQLMetricRepository) ListReadiness(ctx context.Context, from, to time.Time) ([]domain.ReadinessRecord, error) {
	records := []domain.ReadinessRecord{}
	query := r.db.Rebind(selectQuery("readiness", readinessColumns, "day >= ? AND day <= ? ORDER BY day"))

	if err := r.db.SelectContext(ctx, &records, query, domain.FormatDay(from), domain.FormatDay(to)); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

func (r *SQLMetricRepository) SaveDailyMetric(ctx context.Context, sample *domain.DailyMetricSample) error {
	day, err := domain.ParseDay(sample.Date)
	if err != nil {
		return err
	}
	row := *sample
	row.Date = domain.FormatDay(day)

	if _, err := r.db.NamedExecContext(ctx, r.upsertDailyMetric, &row); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *SQLMetricRepository) SaveSleepSample(ctx context.Context, sample *domain.SleepSample) error {
	day, err := domain.ParseDay(sample.Date)
	if err != nil {
		return err
	}
	row := *sample
	row.Date = domain.FormatDay(day)

	if _, err := r.db.NamedExecContext(ctx, r.upsertSleep, &row); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *SQLMetricRepository) SaveWorkout(ctx context.Context, day time.Time, workout *domain.RawWorkout) error {
	res, err := r.db.NamedExecContext(ctx, r.insertWorkout, newWorkoutRow(day, workout))
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAlreadyStored
	}
	return nil
}

func (r *SQLMetricRepository) SavePlan(ctx context.Context, plan *domain.TrainingPlan) error {
	if _, err := r.db.NamedExecContext(ctx, r.upsertPlan, plan); err != nil {
		return mapError(err)
	}
	return nil
}

func (r *SQLMetricRepository) GetPlan(ctx context.Context, weekStart time.Time) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	query := r.db.Rebind(selectQuery("training_plans", planColumns, "week_start = ?"))

	if err := r.db.GetContext(ctx, &plan, query, domain.FormatDay(weekStart)); err != nil {
		return nil, mapError(err)
	}
	return &plan, nil
}

func (r *SQLMetricRepository) LatestPlan(ctx context.Context) (*domain.TrainingPlan, error) {
	var plan domain.TrainingPlan
	query := fmt.Sprintf("SELECT %s FROM training_plans ORDER BY week_start DESC LIMIT 1", strings.Join(planColumns, ", "))

	if err := r.db.GetContext(ctx, &plan, query); err != nil {
		return nil, mapError(err)
	}
	return &plan, nil
}

// Ping reports whether the database is reachable.
func (r *SQLMetricRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// mapError translates driver errors into domain sentinels.
func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	code := ""
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code = pgErr.Code
	case errors.As(err, &pqErr):
		code = string(pqErr.Code)
	}

	switch {
	case code == "":
		return err
	case strings.HasPrefix(code, "22"), strings.HasPrefix(code, "23"):
		// data exception or integrity constraint violation
		return fmt.Errorf("%w: %v", domain.ErrInvalidSample, err)
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57P"):
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	return err
}
