package reps

import (
	"context"
	"time"

	"github.com/2beens/weeklyreps/internal/challenge"
	"github.com/2beens/weeklyreps/internal/telemetry/metrics"
)

// InstrumentedRepo bounds every storage call with a timeout and records
// duration, failures and logged reps.
type InstrumentedRepo struct {
	repo           Repo
	timeout        time.Duration
	metricsManager *metrics.Manager
}

func NewInstrumentedRepo(repo Repo, timeout time.Duration, metricsManager *metrics.Manager) *InstrumentedRepo {
	return &InstrumentedRepo{
		repo:           repo,
		timeout:        timeout,
		metricsManager: metricsManager,
	}
}

func (r *InstrumentedRepo) FetchAll(ctx context.Context) ([]challenge.LogRecord, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	records, err := r.repo.FetchAll(ctx)
	r.observe("fetch", start, err)
	return records, err
}

func (r *InstrumentedRepo) Append(ctx context.Context, record challenge.LogRecord) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	err := r.repo.Append(ctx, record)
	r.observe("append", start, err)
	if err == nil {
		r.metricsManager.CounterRepsLogged.
			WithLabelValues(challenge.NormalizeExercise(record.Exercise)).
			Add(float64(record.Reps))
	}
	return err
}

func (r *InstrumentedRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *InstrumentedRepo) observe(operation string, start time.Time, err error) {
	r.metricsManager.HistogramStorageDuration.
		WithLabelValues(operation).
		Observe(time.Since(start).Seconds())
	if err != nil {
		r.metricsManager.CounterStorageFailures.WithLabelValues(operation).Inc()
	}
}
