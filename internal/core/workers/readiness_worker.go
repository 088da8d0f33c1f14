package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/comitanigiacomo/kanso-readiness-engine/internal/core/domain"
)

type ReadinessComputer interface {
	ComputeReadiness(ctx context.Context, date time.Time) (*domain.ReadinessRecord, error)
}

type ReadinessJob struct {
	Date time.Time
}

type ReadinessWorker struct {
	svc          ReadinessComputer
	jobs         chan ReadinessJob
	drainTimeout time.Duration
	logger       zerolog.Logger

	mu      sync.Mutex
	pending map[string]bool
}

// NewReadinessWorker builds a worker with a buffered queue. Jobs still queued at shutdown
// get drainTimeout to finish.
func NewReadinessWorker(svc ReadinessComputer, queueSize int, drainTimeout time.Duration, logger zerolog.Logger) *ReadinessWorker {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &ReadinessWorker{
		svc:          svc,
		jobs:         make(chan ReadinessJob, queueSize),
		drainTimeout: drainTimeout,
		logger:       logger.With().Str("component", "readiness_worker").Logger(),
		pending:      make(map[string]bool),
	}
}

// Start consumes jobs until ctx is cancelled, then drains the queue.
// The returned channel closes once the loop has exited.
func (w *ReadinessWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.logger.Info().Msg("readiness worker started")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				w.logger.Info().Int("queued", len(w.jobs)).Msg("readiness worker shutting down")
				w.drain()
				return
			}
		}
	}()
	return done
}

// Enqueue never blocks. A date already waiting in the queue is not queued twice.
func (w *ReadinessWorker) Enqueue(date time.Time) {
	day := domain.Day(date)
	key := domain.FormatDay(day)

	w.mu.Lock()
	if w.pending[key] {
		w.mu.Unlock()
		return
	}
	w.pending[key] = true
	w.mu.Unlock()

	select {
	case w.jobs <- ReadinessJob{Date: day}:
	default:
		w.release(key)
		w.logger.Warn().Str("date", key).Msg("readiness queue full, dropping job")
	}
}

// drain processes the jobs queued before shutdown. Once drainTimeout passes the rest are dropped.
func (w *ReadinessWorker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), w.drainTimeout)
	defer cancel()

	processed, dropped := 0, 0
	for {
		select {
		case job := <-w.jobs:
			if ctx.Err() != nil {
				w.release(domain.FormatDay(job.Date))
				dropped++
				continue
			}
			w.processJob(ctx, job)
			processed++
		default:
			if dropped > 0 {
				w.logger.Warn().Int("processed", processed).Int("dropped", dropped).Msg("readiness queue drain timed out")
			} else if processed > 0 {
				w.logger.Info().Int("processed", processed).Msg("readiness queue drained")
			}
			return
		}
	}
}

func (w *ReadinessWorker) release(key string) {
	w.mu.Lock()
	delete(w.pending, key)
	w.mu.Unlock()
}

func (w *ReadinessWorker) processJob(ctx context.Context, job ReadinessJob) {
	key := domain.FormatDay(job.Date)
	w.release(key)

	rec, err := w.svc.ComputeReadiness(ctx, job.Date)
	switch {
	case errors.Is(err, domain.ErrDataNotFound):
		w.logger.Info().Str("date", key).Msg("readiness skipped, no hrv sample yet")
	case err != nil:
		w.logger.Error().Err(err).Str("date", key).Msg("readiness recompute failed")
	default:
		w.logger.Debug().Str("date", key).Int("composite", rec.CompositeScore).Msg("readiness recomputed")
	}
}
