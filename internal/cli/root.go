package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandonunes77/pipeline-etl-olist/internal/config"
	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
)

const longDescription = `olist-etl extracts the Olist e-commerce CSV exports, joins customers with
their orders, derives the purchase month, weekday and hour, and replaces a
table in the configured store with the result.

Without a subcommand the pipeline runs exactly once.

Configuration layers (later wins): defaults, olist-etl.yaml (or --config),
.env, OLIST_* environment variables, flags.

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  20 - Input dataset file missing
  21 - Malformed CSV or timestamp
  22 - Required dataset or column missing
  23 - Store unreachable or write failed`

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dataDir    string
	source     string
	table      string
	mode       string
	driver     string
	storePath  string
	dsn        string
	historyDB  string
	logLevel   string
	logFormat  string
}

// newRootCmd builds the command tree. A fresh tree per call keeps flag
// state from leaking between executions.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "olist-etl",
		Short:         "Enrich Olist orders with purchase calendar features",
		Long:          longDescription,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default ./"+config.ConfigFileName+" when present)")
	f.StringVar(&opts.dataDir, "data-dir", "", "Directory holding the Olist CSV files")
	f.StringVar(&opts.source, "source", "", "Input source: file, s3 or http")
	f.StringVar(&opts.table, "table", "", "Destination table name")
	f.StringVar(&opts.mode, "mode", "", "Write mode: replace or append")
	f.StringVar(&opts.driver, "driver", "", "Store driver: sqlite, postgres, mysql, duckdb or mongodb")
	f.StringVar(&opts.storePath, "store-path", "", "Store file for sqlite and duckdb")
	f.StringVar(&opts.dsn, "dsn", "", "Store connection string, overriding the other store settings")
	f.StringVar(&opts.historyDB, "history-db", "", "SQLite file recording run history (disabled when empty)")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(
		newScheduleCmd(opts),
		newWatchCmd(opts),
		newHistoryCmd(opts),
		newCheckCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command until it finishes or the process receives
// SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

// loadConfig resolves the configuration and applies the flags that were
// explicitly set.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set("data-dir", &cfg.DataDir, opts.dataDir)
	set("source", &cfg.Source, opts.source)
	set("table", &cfg.Table, opts.table)
	set("mode", &cfg.Mode, opts.mode)
	set("store-path", &cfg.Store.Path, opts.storePath)
	set("dsn", &cfg.Store.DSN, opts.dsn)
	set("history-db", &cfg.HistoryDB, opts.historyDB)
	set("log-level", &cfg.LogLevel, opts.logLevel)
	set("log-format", &cfg.LogFormat, opts.logFormat)
	if changed("driver") {
		cfg.Store.Driver = domain.StoreDriver(opts.driver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runPipeline(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.svc.RunOnce(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s in %s (run %s)\n",
		result.RowsWritten, result.Table, result.Duration.Round(time.Millisecond), result.RunID)
	return nil
}
