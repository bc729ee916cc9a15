package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nandonunes77/pipeline-etl-olist/internal/etl"
	_ "github.com/nandonunes77/pipeline-etl-olist/internal/etl/sources"
	"github.com/nandonunes77/pipeline-etl-olist/internal/logging"
)

type fakePipeline struct {
	result    *etl.SyncResult
	runErr    error
	logs      []etl.SyncRunLog
	listErr   error
	runs      int
	lastLimit int
}

func (f *fakePipeline) RunOnce(context.Context) (*etl.SyncResult, error) {
	f.runs++
	return f.result, f.runErr
}

func (f *fakePipeline) ListRunLogs(_ context.Context, limit int) ([]etl.SyncRunLog, error) {
	f.lastLimit = limit
	return f.logs, f.listErr
}

func newTestServer(p *fakePipeline) *Server {
	return New(Deps{
		Pipeline: p,
		Info:     Info{Source: "file", Location: "data", Store: "sqlite:olist_etl.db", Table: "pedidos_enriquecidos", Mode: "replace"},
		Logger:   logging.Discard(),
	})
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestPipelineInfo(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	res, err := s.handlePipelineInfo(context.Background(), callRequest("pipeline_info", nil))
	require.NoError(t, err)

	var info Info
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &info))
	assert.Equal(t, "pedidos_enriquecidos", info.Table)
	assert.Equal(t, "sqlite:olist_etl.db", info.Store)
}

func TestListSources(t *testing.T) {
	s := newTestServer(&fakePipeline{})
	res, err := s.handleListSources(context.Background(), callRequest("list_sources", nil))
	require.NoError(t, err)

	var specs []etl.SourceSpec
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &specs))
	var types []string
	for _, spec := range specs {
		types = append(types, spec.Type)
	}
	assert.Subset(t, types, []string{"file", "http", "s3"})
}

func TestRunPipeline(t *testing.T) {
	p := &fakePipeline{result: &etl.SyncResult{RunID: "r1", Status: "success", RowsWritten: 3, Table: "pedidos_enriquecidos"}}
	s := newTestServer(p)

	res, err := s.handleRunPipeline(context.Background(), callRequest("run_pipeline", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, p.runs)

	var got etl.SyncResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "r1", got.RunID)
	assert.Equal(t, 3, got.RowsWritten)
}

func TestRunPipeline_Failure(t *testing.T) {
	p := &fakePipeline{result: &etl.SyncResult{RunID: "r2", Status: "error"}, runErr: etl.ErrInputMissing}
	s := newTestServer(p)

	_, err := s.handleRunPipeline(context.Background(), callRequest("run_pipeline", nil))
	assert.ErrorIs(t, err, etl.ErrInputMissing)
}

func TestListRuns(t *testing.T) {
	p := &fakePipeline{logs: []etl.SyncRunLog{{ID: "r2", Status: "success"}, {ID: "r1", Status: "error"}}}
	s := newTestServer(p)

	res, err := s.handleListRuns(context.Background(), callRequest("list_runs", map[string]any{"limit": float64(2)}))
	require.NoError(t, err)
	assert.Equal(t, 2, p.lastLimit)

	var logs []etl.SyncRunLog
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &logs))
	require.Len(t, logs, 2)
	assert.Equal(t, "r2", logs[0].ID)
}

func TestListRuns_DefaultsAndErrors(t *testing.T) {
	p := &fakePipeline{listErr: errors.New("run history is disabled")}
	s := newTestServer(p)

	_, err := s.handleListRuns(context.Background(), callRequest("list_runs", nil))
	require.Error(t, err)
	assert.Equal(t, 20, p.lastLimit)

	_, err = s.handleListRuns(context.Background(), callRequest("list_runs", map[string]any{"limit": float64(0)}))
	assert.Error(t, err)
}
