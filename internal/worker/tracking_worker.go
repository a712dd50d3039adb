package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dropship-tracking/internal/manifest"
	"dropship-tracking/internal/metrics"
	"dropship-tracking/internal/model"
	"dropship-tracking/internal/notify"
	"dropship-tracking/internal/reconcile"
	"dropship-tracking/internal/service"
	"dropship-tracking/internal/transfer"
)

const RunName = "dropship_tracking"

var (
	ErrRunInProgress = errors.New("tracking run already in progress")
	ErrStopped       = errors.New("tracking worker stopped")
)

// OrderStore is the system of record for purchase orders.
type OrderStore interface {
	GetUntracked(ctx context.Context) ([]model.PendingOrder, error)
	reconcile.TrackingWriter
	reconcile.DispositionWriter
}

type RunLog interface {
	Start(ctx context.Context, runID, name string) error
	Finish(ctx context.Context, runID, status, message string) error
}

type Options struct {
	Store    OrderStore
	Fetcher  reconcile.OrderFetcher
	Dial     transfer.DialFunc
	Methods  manifest.ShipMethods
	Layout   manifest.Layout
	Notifier notify.Notifier
	RunLog   RunLog
	Metrics  *metrics.Registry

	Workers    int
	Interval   time.Duration
	RunTimeout time.Duration
	DryRun     bool
}

// RunSummary describes the last finished run.
type RunSummary struct {
	ID         string        `json:"id"`
	Status     string        `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Error      string        `json:"error,omitempty"`
	Result     *model.Result `json:"result,omitempty"`
}

type TrackingWorker struct {
	store       OrderStore
	partitioner *reconcile.Partitioner
	rows        *reconcile.RowBuilder
	layout      manifest.Layout
	dial        transfer.DialFunc
	notifier    notify.Notifier
	runLog      RunLog
	metrics     *metrics.Registry
	interval    time.Duration
	runTimeout  time.Duration
	dryRun      bool
	now         func() time.Time

	// running guards a single run at a time and stopped.
	running sync.Mutex
	stopped bool

	mu   sync.RWMutex
	last *RunSummary
}

func NewTrackingWorker(opts Options) *TrackingWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	return &TrackingWorker{
		store:       opts.Store,
		partitioner: reconcile.NewPartitioner(opts.Fetcher, opts.Workers),
		rows:        reconcile.NewRowBuilder(opts.Methods),
		layout:      opts.Layout,
		dial:        opts.Dial,
		notifier:    opts.Notifier,
		runLog:      opts.RunLog,
		metrics:     opts.Metrics,
		interval:    interval,
		runTimeout:  opts.RunTimeout,
		dryRun:      opts.DryRun,
		now:         time.Now,
	}
}

// Start runs the pipeline on every tick until ctx is cancelled.
func (w *TrackingWorker) Start(ctx context.Context) {
	slog.Info("starting tracking worker", "interval", w.interval, "dry_run", w.dryRun)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("tracking worker stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				if errors.Is(err, ErrRunInProgress) {
					slog.Warn("previous tracking run still active, skipping tick")
					continue
				}
				if errors.Is(err, ErrStopped) {
					slog.Info("tracking worker stopped")
					return
				}
				slog.Error("tracking run failed", "error", err)
			}
		}
	}
}

// Wait blocks until the active run, if any, has finished and refuses every
// later run. Call it before releasing the resources the worker uses.
func (w *TrackingWorker) Wait() {
	w.running.Lock()
	w.stopped = true
	w.running.Unlock()
}

// LastRun returns the summary of the most recent finished run, or nil.
func (w *TrackingWorker) LastRun() *RunSummary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

// RunOnce executes one reconciliation pass. Only one pass runs at a time;
// a concurrent call gets ErrRunInProgress.
func (w *TrackingWorker) RunOnce(ctx context.Context) (*model.Result, error) {
	if !w.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer w.running.Unlock()
	if w.stopped {
		return nil, ErrStopped
	}
	return w.runLocked(ctx)
}

// Trigger starts a run in the background and returns once it holds the run
// slot. ctx bounds the background run, not the call.
func (w *TrackingWorker) Trigger(ctx context.Context) error {
	if !w.running.TryLock() {
		return ErrRunInProgress
	}
	if w.stopped {
		w.running.Unlock()
		return ErrStopped
	}
	go func() {
		defer w.running.Unlock()
		_, _ = w.runLocked(ctx)
	}()
	return nil
}

func (w *TrackingWorker) runLocked(ctx context.Context) (*model.Result, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID)
	started := w.now()
	log.Info("tracking run started", "dry_run", w.dryRun)

	if w.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.runTimeout)
		defer cancel()
	}

	if w.runLog != nil && !w.dryRun {
		if err := w.runLog.Start(ctx, runID, RunName); err != nil {
			log.Warn("failed to record run start", "error", err)
		}
	}

	res, err := w.run(ctx, log)
	w.finish(context.WithoutCancel(ctx), runID, started, res, err, log)
	return res, err
}

func (w *TrackingWorker) run(ctx context.Context, log *slog.Logger) (*model.Result, error) {
	res := model.NewResult()

	orders, err := w.store.GetUntracked(ctx)
	if err != nil {
		return res, fmt.Errorf("get untracked orders: %w", err)
	}
	w.count(func(m *metrics.Registry) { m.OrdersPending.Add(float64(len(orders))) })
	if len(orders) == 0 {
		log.Info("no untracked orders")
		return res, nil
	}
	log.Info("untracked orders loaded", "count", len(orders))

	part, err := w.partitioner.Partition(ctx, orders)
	if err != nil {
		return res, err
	}
	log.Info("orders partitioned",
		"partners", len(part.ByPartner),
		"cancelled", len(part.Cancelled),
		"on_hold", len(part.OnHold),
		"problem", len(part.Problem),
		"untracked", len(part.Untracked),
		"skipped", len(part.Skipped),
	)
	w.count(func(m *metrics.Registry) {
		m.OrdersSkipped.Add(float64(len(part.Skipped)))
		m.Dispositions.WithLabelValues(string(model.DispositionCancelled)).Add(float64(len(part.Cancelled)))
		m.Dispositions.WithLabelValues(string(model.DispositionOnHold)).Add(float64(len(part.OnHold)))
		m.Dispositions.WithLabelValues(string(model.DispositionProblem)).Add(float64(len(part.Problem)))
		processable := len(part.Untracked)
		for _, orders := range part.ByPartner {
			processable += len(orders)
		}
		m.Dispositions.WithLabelValues(string(model.DispositionProcessable)).Add(float64(processable))
	})

	var writer reconcile.TrackingWriter = w.store
	if w.dryRun {
		reconcile.FlagProblems(part, res)
		writer = discardWriter{}
	} else {
		reconcile.ApplyDispositions(ctx, w.store, part, res)
	}

	sink := transfer.NewLazy(w.dial)
	defer sink.Close()

	res, err = reconcile.NewProcessor(writer, sink, w.rows, w.layout).Run(ctx, part.ByPartner, res)
	w.count(func(m *metrics.Registry) {
		m.FilesUploaded.Add(float64(len(res.FilesUploaded)))
		m.UploadFailures.Add(float64(len(res.Errors[model.ErrFailedToProcess])))
		m.MissingTracking.Add(float64(len(res.MissingTracking)))
	})
	return res, err
}

func (w *TrackingWorker) finish(ctx context.Context, runID string, started time.Time, res *model.Result, runErr error, log *slog.Logger) {
	finished := w.now()
	summary := &RunSummary{ID: runID, StartedAt: started, FinishedAt: finished, Result: res}

	status := service.RunStatusSuccess
	message := fmt.Sprintf("files uploaded: %d, orders processed: %d", len(res.FilesUploaded), len(res.OrdersProcessed))
	if runErr != nil {
		status = service.RunStatusFailure
		message = runErr.Error()
		summary.Error = message
		log.Error("tracking run failed", "error", runErr)
	} else {
		log.Info("tracking run finished",
			"files_uploaded", len(res.FilesUploaded),
			"orders_processed", len(res.OrdersProcessed),
			"missing_tracking", len(res.MissingTracking),
			"has_errors", res.HasErrors(),
		)
	}
	summary.Status = status

	if w.notifier != nil && !w.dryRun {
		var err error
		if runErr != nil {
			err = w.notifier.NotifyFailure(ctx, runID, runErr)
		} else {
			err = w.notifier.Notify(ctx, runID, res)
		}
		if err != nil {
			log.Error("failed to send run notifications", "error", err)
		}
	}

	if w.runLog != nil && !w.dryRun {
		if err := w.runLog.Finish(ctx, runID, status, message); err != nil {
			log.Warn("failed to record run finish", "error", err)
		}
	}

	w.count(func(m *metrics.Registry) {
		m.Runs.WithLabelValues(status).Inc()
		m.RunDurationSec.Observe(finished.Sub(started).Seconds())
		if runErr == nil {
			m.LastSuccessTime.Set(float64(finished.Unix()))
		}
	})

	w.mu.Lock()
	w.last = summary
	w.mu.Unlock()
}

func (w *TrackingWorker) count(fn func(m *metrics.Registry)) {
	if w.metrics != nil {
		fn(w.metrics)
	}
}

// discardWriter stands in for the store on dry runs.
type discardWriter struct{}

func (discardWriter) SaveTracking(context.Context, map[string][]model.EnrichedOrder) (int, error) {
	return 0, nil
}
