package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// ─────────────────────────────────────────────────────────────
// Pipeline Service: runs, schedules and watches the pipeline
// ─────────────────────────────────────────────────────────────

var (
	// ErrAlreadyRunning is returned when a run for the same table is in flight.
	ErrAlreadyRunning = errors.New("pipeline is already running")

	// ErrHistoryDisabled is returned by ListRunLogs without a history store.
	ErrHistoryDisabled = errors.New("run history is disabled")
)

// DefaultDebounce is how long Watch waits for file activity to settle.
const DefaultDebounce = 500 * time.Millisecond

// Runner executes one pipeline run. *etl.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context) (*etl.SyncResult, error)
	Table() string
}

// RunHistory persists run logs. *storage.RunLogStore implements it.
type RunHistory interface {
	CreateRunLog(ctx context.Context, log *etl.SyncRunLog) error
	ListRunLogs(ctx context.Context, limit int) ([]etl.SyncRunLog, error)
}

// PipelineService wraps a Runner with a concurrency guard, run history,
// event notification and optional cron/file-watch triggers.
type PipelineService struct {
	runner   Runner
	history  RunHistory
	emitter  EventEmitter
	logger   *slog.Logger
	running  runningGuard
	debounce time.Duration
	timeout  time.Duration

	// watcher / cron lifecycle
	mu          sync.Mutex
	watchCancel context.CancelFunc
	watcher     *fsnotify.Watcher
	cronSched   *cron.Cron
}

// ServiceOption configures a PipelineService.
type ServiceOption func(*PipelineService)

// WithHistory records every run in h.
func WithHistory(h RunHistory) ServiceOption {
	return func(s *PipelineService) { s.history = h }
}

// WithEmitter sets the event sink.
func WithEmitter(e EventEmitter) ServiceOption {
	return func(s *PipelineService) { s.emitter = e }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *PipelineService) { s.logger = l }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) ServiceOption {
	return func(s *PipelineService) { s.debounce = d }
}

// WithRunTimeout bounds each run. Zero means no bound.
func WithRunTimeout(d time.Duration) ServiceOption {
	return func(s *PipelineService) { s.timeout = d }
}

// NewPipelineService creates a PipelineService ready for use.
func NewPipelineService(runner Runner, opts ...ServiceOption) *PipelineService {
	s := &PipelineService{
		runner:   runner,
		logger:   slog.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.emitter == nil {
		s.emitter = LogEmitter{Logger: s.logger}
	}
	return s
}

// ── Run ────────────────────────────────────────────────────

// RunOnce executes the pipeline synchronously, records the run and emits
// EventPipelineCompleted or EventPipelineFailed. A history write failure
// is logged and does not fail the run.
func (s *PipelineService) RunOnce(ctx context.Context) (*etl.SyncResult, error) {
	key := s.runner.Table()
	if !s.running.TryLock(key) {
		return nil, fmt.Errorf("%w: table %s", ErrAlreadyRunning, key)
	}
	defer s.running.Unlock(key)

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, runErr := s.runner.Run(runCtx)

	if s.history != nil && result != nil {
		if err := s.history.CreateRunLog(ctx, result.RunLog()); err != nil {
			s.logger.Warn("record run failed", "run", result.RunID, "error", err)
		}
	}

	if runErr != nil {
		s.emitter.Emit(ctx, EventPipelineFailed, result)
	} else {
		s.emitter.Emit(ctx, EventPipelineCompleted, result)
	}
	return result, runErr
}

// ListRunLogs returns the most recent runs, newest first.
func (s *PipelineService) ListRunLogs(ctx context.Context, limit int) ([]etl.SyncRunLog, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.ListRunLogs(ctx, limit)
}

// ── Triggers (cron + file watch) ──────────────────────────

// Schedule runs the pipeline on a standard five-field cron expression (or
// a descriptor such as @hourly) until Stop is called or ctx ends. Ticks
// that find a run in flight are skipped.
func (s *PipelineService) Schedule(ctx context.Context, expr string) error {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		s.logger.Info("cron: running pipeline", "schedule", expr)
		s.runTriggered(ctx, "cron")
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}

	s.mu.Lock()
	if s.cronSched != nil {
		s.cronSched.Stop()
	}
	s.cronSched = c
	s.mu.Unlock()

	c.Start()
	s.logger.Info("cron: scheduled", "schedule", expr)
	return nil
}

// Watch reruns the pipeline whenever one of the dataset files in dir is
// written or created. Bursts of events within the debounce window
// collapse into a single run.
func (s *PipelineService) Watch(ctx context.Context, dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("bad path %q: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir %q: %w", absDir, err)
	}

	watched := make(map[string]bool, len(domain.AllDatasets))
	for _, id := range domain.AllDatasets {
		watched[id.FileName()] = true
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.watchCancel != nil {
		s.watchCancel()
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.watchCancel = cancel
	s.watcher = watcher
	s.mu.Unlock()

	go func() {
		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Base(event.Name)
				if !watched[name] {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(s.debounce, func() {
					s.logger.Info("watcher: file changed, running pipeline", "file", name)
					s.runTriggered(watchCtx, "watch")
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("watcher: error", "error", err)
			}
		}
	}()

	s.logger.Info("watcher: watching", "dir", absDir, "files", len(watched))
	return nil
}

func (s *PipelineService) runTriggered(ctx context.Context, trigger string) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil {
		if errors.Is(err, ErrAlreadyRunning) {
			s.logger.Info(trigger + ": run skipped, previous run still in flight")
			return
		}
		s.logger.Error(trigger+": run failed", "error", err)
	}
}

// WaitRunning blocks until all running pipelines finish or ctx is cancelled.
// Used for graceful shutdown.
func (s *PipelineService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// Stop tears down all watchers and schedulers. Safe to call repeatedly.
func (s *PipelineService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
	if s.cronSched != nil {
		<-s.cronSched.Stop().Done()
		s.cronSched = nil
	}
}
