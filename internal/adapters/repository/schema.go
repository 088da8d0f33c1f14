package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Plain DDL shared by Postgres and SQLite. Days are stored as YYYY-MM-DD text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS daily_metrics (
		day                TEXT PRIMARY KEY,
		hrv                DOUBLE PRECISION,
		resting_heart_rate DOUBLE PRECISION,
		respiratory_rate   DOUBLE PRECISION,
		steps              BIGINT,
		active_energy_kcal DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS sleep_samples (
		day            TEXT PRIMARY KEY,
		asleep         TEXT NOT NULL DEFAULT '',
		in_bed         TEXT NOT NULL DEFAULT '',
		awake          TEXT NOT NULL DEFAULT '',
		wake_count     INTEGER NOT NULL DEFAULT 0,
		efficiency_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
		bedtime        TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS workouts (
		id             TEXT PRIMARY KEY,
		day            TEXT NOT NULL,
		date_raw       TEXT NOT NULL DEFAULT '',
		label          TEXT NOT NULL DEFAULT '',
		duration_raw   TEXT NOT NULL DEFAULT '',
		distance_raw   TEXT NOT NULL DEFAULT '',
		distance_units TEXT NOT NULL DEFAULT '',
		weight         TEXT NOT NULL DEFAULT '',
		reps           TEXT NOT NULL DEFAULT '',
		set_count      TEXT NOT NULL DEFAULT '',
		set_number     TEXT NOT NULL DEFAULT '',
		notes          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS workouts_day_idx ON workouts (day)`,
	`CREATE TABLE IF NOT EXISTS readiness (
		id                        TEXT PRIMARY KEY,
		day                       TEXT NOT NULL,
		type                      TEXT NOT NULL,
		source                    TEXT NOT NULL,
		hrv                       DOUBLE PRECISION NOT NULL,
		hrv_mean                  DOUBLE PRECISION NOT NULL,
		hrv_sd                    DOUBLE PRECISION NOT NULL,
		hrv_z                     DOUBLE PRECISION NOT NULL,
		hrv_sample_count          INTEGER NOT NULL,
		hrv_score                 INTEGER NOT NULL,
		sleep_hours               DOUBLE PRECISION NOT NULL,
		in_bed_hours              DOUBLE PRECISION NOT NULL,
		awake_minutes             INTEGER NOT NULL,
		wake_count                INTEGER NOT NULL,
		sleep_mean                DOUBLE PRECISION NOT NULL,
		sleep_sd                  DOUBLE PRECISION NOT NULL,
		bedtime_sample_count      INTEGER NOT NULL,
		quantity_score            DOUBLE PRECISION NOT NULL,
		quality_score             DOUBLE PRECISION NOT NULL,
		architecture_score        DOUBLE PRECISION NOT NULL,
		physiology_score          DOUBLE PRECISION NOT NULL,
		regularity_score          DOUBLE PRECISION NOT NULL,
		subjective_score          DOUBLE PRECISION NOT NULL,
		sleep_score               INTEGER NOT NULL,
		training_load_minutes     DOUBLE PRECISION NOT NULL,
		training_load_window_days INTEGER NOT NULL,
		training_load_score       INTEGER NOT NULL,
		skipped_workout_rows      INTEGER NOT NULL,
		composite_score           INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS readiness_day_idx ON readiness (day)`,
	`CREATE TABLE IF NOT EXISTS training_plans (
		week_start        TEXT PRIMARY KEY,
		week_end          TEXT NOT NULL,
		plan_type         TEXT NOT NULL,
		intensity         TEXT NOT NULL,
		run_sessions      INTEGER NOT NULL DEFAULT 0,
		cycle_sessions    INTEGER NOT NULL DEFAULT 0,
		swim_sessions     INTEGER NOT NULL DEFAULT 0,
		strength_sessions INTEGER NOT NULL DEFAULT 0,
		other_sessions    INTEGER NOT NULL DEFAULT 0,
		notes             TEXT NOT NULL DEFAULT ''
	)`,
}

// EnsureSchema creates missing tables. It does not migrate existing ones.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
