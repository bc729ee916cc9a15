package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
)

// ── Pipeline ───────────────────────────────────────────────
// Orchestrates: Extract → Transform → Load, once per Run.
// A failing stage ends the run; nothing is retried or compensated.

// Stage is a state of a pipeline run.
type Stage string

const (
	StagePending      Stage = "pending"
	StageExtracting   Stage = "extracting"
	StageTransforming Stage = "transforming"
	StageLoading      Stage = "loading"
	StageSucceeded    Stage = "succeeded"
	StageFailed       Stage = "failed"
)

// Run statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SyncResult is the outcome of one pipeline run.
type SyncResult struct {
	RunID       string         `json:"runId"`
	Status      string         `json:"status"`
	Stage       Stage          `json:"stage"`
	FailedStage Stage          `json:"failedStage,omitempty"`
	RowsRead    map[string]int `json:"rowsRead"`
	RowsWritten int            `json:"rowsWritten"`
	Table       string         `json:"table"`
	StartedAt   time.Time      `json:"startedAt"`
	Duration    time.Duration  `json:"duration"`
	Error       string         `json:"error,omitempty"`
}

// SyncRunLog is a historical record of a pipeline run.
type SyncRunLog struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	Status      string    `json:"status"`
	Stage       Stage     `json:"stage"`
	Table       string    `json:"table"`
	RowsRead    int       `json:"rowsRead"`
	RowsWritten int       `json:"rowsWritten"`
	Error       string    `json:"error,omitempty"`
}

// RunLog converts a result into its history record. For failed runs the
// recorded stage is the one that failed.
func (r *SyncResult) RunLog() *SyncRunLog {
	stage := r.Stage
	if r.FailedStage != "" {
		stage = r.FailedStage
	}
	read := 0
	for _, n := range r.RowsRead {
		read += n
	}
	return &SyncRunLog{
		ID:          r.RunID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.StartedAt.Add(r.Duration),
		Status:      r.Status,
		Stage:       stage,
		Table:       r.Table,
		RowsRead:    read,
		RowsWritten: r.RowsWritten,
		Error:       r.Error,
	}
}

// Pipeline runs the extract, transform and load stages in sequence.
type Pipeline struct {
	source   Source
	dest     Destination
	logger   *slog.Logger
	table    string
	datasets []domain.DatasetID
	mode     SyncMode
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for progress notices.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTable overrides the destination table name.
func WithTable(name string) Option {
	return func(p *Pipeline) { p.table = name }
}

// WithDatasets overrides the extraction set.
func WithDatasets(ids ...domain.DatasetID) Option {
	return func(p *Pipeline) { p.datasets = ids }
}

// WithSyncMode overrides the write mode.
func WithSyncMode(m SyncMode) Option {
	return func(p *Pipeline) { p.mode = m }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline builds a pipeline. It performs no I/O.
func NewPipeline(src Source, dest Destination, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:   src,
		dest:     dest,
		logger:   slog.Default(),
		table:    DefaultTable,
		datasets: domain.AllDatasets,
		mode:     SyncReplace,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Table returns the destination table name.
func (p *Pipeline) Table() string { return p.table }

// Extract loads every configured dataset. The first missing or malformed
// file aborts the stage.
func (p *Pipeline) Extract(ctx context.Context) (Datasets, error) {
	p.logger.Info("extract started", "stage", StageExtracting, "location", p.source.Location())

	out := make(Datasets, len(p.datasets))
	for _, id := range p.datasets {
		t, err := p.extractOne(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", id.FileName(), err)
		}
		out[id] = t
		p.logger.Debug("dataset loaded", "dataset", id.Key(), "rows", t.Len(), "columns", len(t.Schema.Fields))
	}

	p.logger.Info("extract finished", "stage", StageExtracting, "datasets", len(out))
	return out, nil
}

func (p *Pipeline) extractOne(ctx context.Context, id domain.DatasetID) (*Table, error) {
	rc, err := p.source.Open(ctx, id.FileName())
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return DecodeCSV(rc)
}

// Transform joins customers with orders and derives the purchase calendar
// features.
func (p *Pipeline) Transform(ds Datasets) (*Table, error) {
	p.logger.Info("transform started", "stage", StageTransforming)
	t, err := EnrichOrders(ds)
	if err != nil {
		return nil, err
	}
	p.logger.Info("transform finished", "stage", StageTransforming, "rows", t.Len())
	return t, nil
}

// Load writes the enriched table to the destination.
func (p *Pipeline) Load(ctx context.Context, t *Table) (int, error) {
	p.logger.Info("load started", "stage", StageLoading, "table", p.table, "mode", p.mode)
	n, err := p.dest.Write(ctx, p.table, t, p.mode)
	if err != nil {
		return n, fmt.Errorf("load %s: %w", p.table, err)
	}
	p.logger.Info("load finished", "stage", StageLoading, "table", p.table, "rows", n)
	return n, nil
}

// Run executes the pipeline end-to-end. The result is always non-nil.
func (p *Pipeline) Run(ctx context.Context) (*SyncResult, error) {
	start := p.now()
	result := &SyncResult{
		RunID:     uuid.New().String(),
		Stage:     StagePending,
		RowsRead:  make(map[string]int),
		Table:     p.table,
		StartedAt: start,
	}
	fail := func(err error) (*SyncResult, error) {
		result.Status = StatusError
		result.Error = err.Error()
		result.Duration = p.now().Sub(start)
		result.FailedStage = result.Stage
		result.Stage = StageFailed
		p.logger.Error("pipeline failed", "run", result.RunID, "stage", result.FailedStage, "error", err)
		return result, err
	}

	p.logger.Info("pipeline started", "run", result.RunID)

	result.Stage = StageExtracting
	ds, err := p.Extract(ctx)
	if err != nil {
		return fail(err)
	}
	for id, t := range ds {
		result.RowsRead[id.Key()] = t.Len()
	}

	result.Stage = StageTransforming
	enriched, err := p.Transform(ds)
	if err != nil {
		return fail(err)
	}

	result.Stage = StageLoading
	written, err := p.Load(ctx, enriched)
	if err != nil {
		return fail(err)
	}

	result.Stage = StageSucceeded
	result.Status = StatusSuccess
	result.RowsWritten = written
	result.Duration = p.now().Sub(start)
	p.logger.Info("pipeline finished", "run", result.RunID, "rows", written, "duration", result.Duration)
	return result, nil
}
