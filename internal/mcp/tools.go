package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	"github.com/nandonunes77/pipeline-etl-olist/internal/storage"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("pipeline_info",
		mcp.WithDescription("Describe the configured pipeline: input source, store, destination table and write mode"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handlePipelineInfo)

	s.mcp.AddTool(mcp.NewTool("list_sources",
		mcp.WithDescription("List the input source types the pipeline can read from, with their configuration fields"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListSources)

	s.mcp.AddTool(mcp.NewTool("run_pipeline",
		mcp.WithDescription("🛑 DESTRUCTIVE: Run the pipeline once. In replace mode the destination table is dropped and rebuilt."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRunPipeline)

	s.mcp.AddTool(mcp.NewTool("list_runs",
		mcp.WithDescription("List recent pipeline runs, newest first. Requires the run history database."),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Maximum runs to return (default %d)", storage.DefaultRunLogLimit))),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleListRuns)
}

func (s *Server) handlePipelineInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.info)
}

func (s *Server) handleListSources(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(etl.ListSources())
}

func (s *Server) handleRunPipeline(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pipeline.RunOnce(ctx)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	return jsonResult(result)
}

func (s *Server) handleListRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", storage.DefaultRunLogLimit)
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	logs, err := s.pipeline.ListRunLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return jsonResult(logs)
}
