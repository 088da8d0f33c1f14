// Package metrics exposes engine and HTTP metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/services"
)

const namespace = "kanso"

var _ services.Observer = (*Recorder)(nil)

// Recorder implements services.Observer and the HTTP request hook.
type Recorder struct {
	readinessComputed prometheus.Counter
	readinessFailures *prometheus.CounterVec
	readinessDuration prometheus.Histogram
	compositeScore    prometheus.Gauge

	trendsComputed *prometheus.CounterVec
	trendsDuration prometheus.Histogram

	skippedWorkoutRows prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewRecorder registers every collector on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		readinessComputed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "computed_total",
			Help:      "Readiness records computed and stored.",
		}),
		readinessFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "failures_total",
			Help:      "Failed readiness computations by error kind.",
		}, []string{"kind"}),
		readinessDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "duration_seconds",
			Help:      "Time spent fetching, scoring and storing one readiness record.",
			Buckets:   prometheus.DefBuckets,
		}),
		compositeScore: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "readiness",
			Name:      "last_composite_score",
			Help:      "Composite score of the most recently computed record.",
		}),
		trendsComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trends",
			Name:      "computed_total",
			Help:      "Trend reports computed by view.",
		}, []string{"view"}),
		trendsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trends",
			Name:      "duration_seconds",
			Help:      "Time spent building one trend report.",
			Buckets:   prometheus.DefBuckets,
		}),
		skippedWorkoutRows: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "workouts",
			Name:      "skipped_rows_total",
			Help:      "Workout rows dropped because their date or duration could not be parsed.",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (r *Recorder) ReadinessComputed(rec *domain.ReadinessRecord, elapsed time.Duration) {
	r.readinessComputed.Inc()
	r.readinessDuration.Observe(elapsed.Seconds())
	r.compositeScore.Set(float64(rec.CompositeScore))
}

func (r *Recorder) ReadinessFailed(err error) {
	r.readinessFailures.WithLabelValues(domain.ErrorKind(err)).Inc()
}

func (r *Recorder) TrendsComputed(view domain.TrendView, elapsed time.Duration) {
	r.trendsComputed.WithLabelValues(string(view)).Inc()
	r.trendsDuration.Observe(elapsed.Seconds())
}

func (r *Recorder) WorkoutRowsSkipped(n int) {
	if n > 0 {
		r.skippedWorkoutRows.Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
