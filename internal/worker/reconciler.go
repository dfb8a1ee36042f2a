package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/printshop/internal/domain/errors"
	"github.com/polkiloo/printshop/internal/domain/model"
	"github.com/polkiloo/printshop/internal/domain/repository"
	"github.com/polkiloo/printshop/internal/metrics"
)

// Uploader pushes a local file to remote storage.
type Uploader interface {
	Upload(ctx context.Context, localPath, logicalName string) (string, error)
}

const (
	outcomeSucceeded  = "succeeded"
	outcomeRecordGone = "record_gone"
	outcomeFailed     = "failed"
)

// Reconciler uploads freshly generated previews and links them from their
// owning records. Jobs are best effort: a failed or dropped job only means
// the next request regenerates the preview.
type Reconciler struct {
	uploader Uploader
	sessions repository.Sessions
	metrics  *metrics.Registry
	timeout  time.Duration
	workers  int
	logger   *slog.Logger

	jobs    chan model.ReconcileJob
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	mu      sync.RWMutex
	running bool
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(uploader Uploader, sessions repository.Sessions, reg *metrics.Registry, workers, queueSize int, timeout time.Duration, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Reconciler{
		uploader: uploader,
		sessions: sessions,
		metrics:  reg,
		timeout:  timeout,
		workers:  workers,
		logger:   logger,
		jobs:     make(chan model.ReconcileJob, queueSize),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	r.running = true

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}
}

// Stop stops accepting jobs and waits for in-flight ones to finish. Queued
// jobs that have not started are dropped.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	r.running = false
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()

	for {
		select {
		case job := <-r.jobs:
			r.drop(job, "stopped")
		default:
			return
		}
	}
}

// Schedule enqueues job without blocking. It reports false when the job was
// dropped because the pool is stopped or the queue is full.
func (r *Reconciler) Schedule(job model.ReconcileJob) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.running {
		r.drop(job, "stopped")
		return false
	}

	select {
	case r.jobs <- job:
		return true
	default:
		r.drop(job, "queue full")
		return false
	}
}

func (r *Reconciler) drop(job model.ReconcileJob, reason string) {
	r.metrics.ReconcileDropped.Inc()
	r.logger.Warn("reconcile job dropped",
		slog.String("reason", reason),
		slog.String("kind", string(job.Kind)),
		slog.Int64("record_id", job.RecordID),
	)
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.jobs:
			r.handle(job)
		}
	}
}

// handle runs one job under its own deadline. In-flight jobs are not
// cancelled by Stop.
func (r *Reconciler) handle(job model.ReconcileJob) {
	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	err := r.Reconcile(ctx, job)

	attrs := []any{
		slog.String("kind", string(job.Kind)),
		slog.Int64("record_id", job.RecordID),
		slog.String("logical_name", job.LogicalName),
		slog.Duration("elapsed", time.Since(start)),
	}
	switch {
	case err == nil:
		r.metrics.Reconciles.WithLabelValues(outcomeSucceeded).Inc()
		r.logger.Info("preview reconciled", attrs...)
	case errors.Is(err, domainErrors.ErrNotFound):
		r.metrics.Reconciles.WithLabelValues(outcomeRecordGone).Inc()
		r.logger.Info("preview record gone, reconcile skipped", attrs...)
	default:
		r.metrics.Reconciles.WithLabelValues(outcomeFailed).Inc()
		r.logger.Error("reconcile failed", append(attrs, slog.String("error", err.Error()))...)
	}
}

// Reconcile uploads the cached preview and stores its remote path on the
// owning record inside a fresh session. A record deleted in the meantime
// yields ErrNotFound. Panics are converted to errors.
func (r *Reconciler) Reconcile(ctx context.Context, job model.ReconcileJob) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("reconcile panic: %v", rec)
		}
	}()

	if !job.Kind.Valid() {
		return domainErrors.ErrInvalidKind
	}

	remotePath, err := r.uploader.Upload(ctx, job.CacheFile, job.LogicalName)
	if err != nil {
		return fmt.Errorf("upload preview: %w", err)
	}

	return r.sessions.WithinSession(ctx, func(s repository.Session) error {
		switch job.Kind {
		case model.PreviewKindDesign:
			if _, err := s.Designs().GetByID(ctx, job.RecordID); err != nil {
				return err
			}
			return s.Designs().SetPreviewPath(ctx, job.RecordID, remotePath)
		default:
			if _, err := s.Orders().GetByID(ctx, job.RecordID); err != nil {
				return err
			}
			return s.Orders().SetOriginalPreviewPath(ctx, job.RecordID, remotePath)
		}
	})
}
