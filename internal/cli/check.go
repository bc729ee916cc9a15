package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nandonunes77/pipeline-etl-olist/internal/dbclient"
	"github.com/nandonunes77/pipeline-etl-olist/internal/domain"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration, input files and store connectivity",
		Long: `Resolves the configuration, confirms that every dataset file can be opened
from the configured source and pings the store. No table is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok: source %s at %s\n", a.cfg.Source, a.source.Location())

			for _, id := range domain.AllDatasets {
				rc, err := a.source.Open(cmd.Context(), id.FileName())
				if err != nil {
					return err
				}
				rc.Close()
				fmt.Fprintf(out, "input ok: %s\n", id.FileName())
			}

			if err := a.store.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "store ok: %s\n", dbclient.Describe(&a.cfg.Store))
			return nil
		},
	}
}
