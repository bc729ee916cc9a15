package cli

import (
	"github.com/spf13/cobra"

	"github.com/nandonunes77/pipeline-etl-olist/internal/dbclient"
	mcpserver "github.com/nandonunes77/pipeline-etl-olist/internal/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the pipeline as MCP tools over stdio",
		Long: `Starts a Model Context Protocol server on stdin/stdout exposing the
pipeline_info, list_sources, run_pipeline and list_runs tools. Logs go to
stderr so they never mix with the protocol stream.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			v, _, _ := resolveVersionInfo()
			srv := mcpserver.New(mcpserver.Deps{
				Pipeline: a.svc,
				Info:     a.mcpInfo(),
				Version:  v,
				Logger:   a.logger,
			})
			return srv.ServeStdio()
		},
	}
}

func (a *app) mcpInfo() mcpserver.Info {
	return mcpserver.Info{
		Source:   a.cfg.Source,
		Location: a.source.Location(),
		Store:    dbclient.Describe(&a.cfg.Store),
		Table:    a.cfg.Table,
		Mode:     a.cfg.Mode,
	}
}
