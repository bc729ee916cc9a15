package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nandonunes77/pipeline-etl-olist/internal/config"
	"github.com/nandonunes77/pipeline-etl-olist/internal/dbclient"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	"github.com/nandonunes77/pipeline-etl-olist/internal/logging"
	"github.com/nandonunes77/pipeline-etl-olist/internal/service"
	"github.com/nandonunes77/pipeline-etl-olist/internal/storage"
)

// app wires configuration, source, store and history into a service.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	source  etl.Source
	store   dbclient.Store
	history *storage.DB
	svc     *service.PipelineService
}

func newApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	typ, sourceCfg := cfg.SourceConfig()
	src, err := etl.NewSource(cmd.Context(), typ, sourceCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: source %s: %v", config.ErrInvalidConfig, typ, err)
	}

	store, err := dbclient.Open(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", etl.ErrStore, dbclient.Describe(&cfg.Store), err)
	}

	a := &app{cfg: cfg, logger: logger, source: src, store: store}

	svcOpts := []service.ServiceOption{
		service.WithServiceLogger(logger),
		service.WithEmitter(service.LogEmitter{Logger: logger}),
		service.WithRunTimeout(cfg.RunTimeout),
	}
	if cfg.HistoryDB != "" {
		db, err := storage.New(cfg.HistoryDB)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.history = db
		svcOpts = append(svcOpts, service.WithHistory(storage.NewRunLogStore(db)))
	}

	pipeline := etl.NewPipeline(src, store,
		etl.WithLogger(logger),
		etl.WithTable(cfg.Table),
		etl.WithSyncMode(cfg.SyncMode()),
	)
	a.svc = service.NewPipelineService(pipeline, svcOpts...)
	return a, nil
}

// Close stops triggers and releases the store and history handles.
func (a *app) Close() {
	a.svc.Stop()
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("close history", "error", err)
		}
	}
}
