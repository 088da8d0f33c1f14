package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ReadinessComputed(&domain.ReadinessRecord{CompositeScore: 64}, 20*time.Millisecond)
	r.ReadinessComputed(&domain.ReadinessRecord{CompositeScore: 71}, 30*time.Millisecond)
	r.ReadinessFailed(fmt.Errorf("%w: no hrv", domain.ErrDataNotFound))
	r.ReadinessFailed(errors.New("boom"))
	r.TrendsComputed(domain.ViewRun, time.Millisecond)
	r.WorkoutRowsSkipped(0)
	r.WorkoutRowsSkipped(3)
	r.ObserveRequest("GET", "/api/v1/trends", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.readinessComputed))
	assert.Equal(t, 71.0, testutil.ToFloat64(r.compositeScore))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.readinessFailures.WithLabelValues("data_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.readinessFailures.WithLabelValues("internal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.trendsComputed.WithLabelValues("run")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.skippedWorkoutRows))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.httpRequests.WithLabelValues("GET", "/api/v1/trends", "200")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "kanso_readiness_duration_seconds")
	assert.Contains(t, names, "kanso_http_request_duration_seconds")
}

func TestNewRecorder_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}
