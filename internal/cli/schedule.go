package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nandonunes77/pipeline-etl-olist/internal/config"
	"github.com/nandonunes77/pipeline-etl-olist/internal/etl/sources"
)

// shutdownGrace bounds how long a stopping trigger command waits for an
// in-flight run.
const shutdownGrace = 30 * time.Second

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule [cron expression]",
		Short: "Run the pipeline on a cron schedule until interrupted",
		Long: `Runs the pipeline whenever the cron expression fires. The expression is
taken from the argument or from the "schedule" setting, and accepts the
standard five fields or descriptors such as @hourly and "@every 15m".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			expr := a.cfg.Schedule
			if len(args) == 1 {
				expr = args[0]
			}
			if expr == "" {
				return fmt.Errorf("%w: no schedule given", config.ErrInvalidConfig)
			}
			if err := a.svc.Schedule(cmd.Context(), expr); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			return serveTriggers(cmd.Context(), a, runNow)
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run once immediately before waiting for the schedule")
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rerun the pipeline whenever a dataset file in the data directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Source != sources.TypeFile {
				return fmt.Errorf("%w: watch needs the file source, got %q", config.ErrInvalidConfig, a.cfg.Source)
			}
			if err := a.svc.Watch(cmd.Context(), a.cfg.DataDir); err != nil {
				return err
			}
			return serveTriggers(cmd.Context(), a, runNow)
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run once immediately before waiting for changes")
	return cmd
}

// serveTriggers blocks until ctx ends, then stops the triggers and waits
// for an in-flight run to finish.
func serveTriggers(ctx context.Context, a *app, runNow bool) error {
	if runNow {
		if _, err := a.svc.RunOnce(ctx); err != nil {
			a.logger.Error("initial run failed", "error", err)
		}
	}

	<-ctx.Done()
	a.logger.Info("shutting down")
	a.svc.Stop()

	waitCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	a.svc.WaitRunning(waitCtx)
	return nil
}
