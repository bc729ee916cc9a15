// Package mcpserver exposes the pipeline to MCP clients over stdio so an
// agent can trigger runs and inspect history.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
)

// Pipeline is the part of service.PipelineService the tools call.
type Pipeline interface {
	RunOnce(ctx context.Context) (*etl.SyncResult, error)
	ListRunLogs(ctx context.Context, limit int) ([]etl.SyncRunLog, error)
}

// Info describes the configured pipeline for the pipeline_info tool.
type Info struct {
	Source   string `json:"source"`
	Location string `json:"location"`
	Store    string `json:"store"`
	Table    string `json:"table"`
	Mode     string `json:"mode"`
}

// Deps holds what the CLI layer passes to the server.
type Deps struct {
	Pipeline Pipeline
	Info     Info
	Version  string
	Logger   *slog.Logger
}

// Server is the MCP server for the pipeline.
type Server struct {
	mcp      *server.MCPServer
	pipeline Pipeline
	info     Info
	logger   *slog.Logger
}

// New creates the server and registers every tool.
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{pipeline: deps.Pipeline, info: deps.Info, logger: logger}
	s.mcp = server.NewMCPServer(
		"olist-etl",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp: starting stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
