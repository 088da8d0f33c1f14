package repository

import (
	"context"
	"fmt"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func setupPostgres(t *testing.T) (*SQLMetricRepository, func()) {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "kanso_user"),
		getEnv("DB_PASSWORD", "secret"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "kanso_db"),
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Database connection failed (skipping integration tests): %v", err)
	}

	require.NoError(t, EnsureSchema(context.Background(), db))
	db.MustExec("TRUNCATE TABLE daily_metrics, sleep_samples, workouts, readiness")

	return NewSQLMetricRepository(db), func() {
		db.Close()
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestSQLMetricRepository_PostgresIntegration(t *testing.T) {
	repo, teardown := setupPostgres(t)
	defer teardown()

	ctx := context.Background()

	require.NoError(t, repo.SaveDailyMetric(ctx, &domain.DailyMetricSample{Date: "2025-03-10", HRV: ptr(42.0)}))
	require.NoError(t, repo.SaveSleepSample(ctx, &domain.SleepSample{Date: "2025-03-10", Asleep: "7h:10m", WakeCount: 2}))
	require.NoError(t, repo.SaveWorkout(ctx, day("2025-03-09"), &domain.RawWorkout{Date: "2025-03-09", Label: "Run", Duration: "30"}))

	metric, err := repo.GetDailyMetric(ctx, day("2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 42.0, *metric.HRV)

	sleep, err := repo.GetSleepSample(ctx, day("2025-03-10"))
	require.NoError(t, err)
	assert.Equal(t, domain.RawText("7h:10m"), sleep.Asleep)

	workouts, err := repo.GetWorkouts(ctx, day("2025-03-03"), day("2025-03-10"))
	require.NoError(t, err)
	assert.Len(t, workouts, 1)

	rec := &domain.ReadinessRecord{ID: "pg-1", Date: "2025-03-10", Type: "daily", Source: "engine", CompositeScore: 55}
	require.NoError(t, repo.StoreReadiness(ctx, rec))
	records, err := repo.ListReadiness(ctx, day("2025-03-10"), day("2025-03-10"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *rec, records[0])
}
