package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestExecuteIsolatesFailures(t *testing.T) {
	registry := map[string]ToolFunc{
		"ok": func(ctx context.Context, st *PipelineState) ToolResult {
			return ToolResult{Success: true, Search: &SearchReport{}}
		},
		"boom": func(ctx context.Context, st *PipelineState) ToolResult {
			return failure(errors.New("backend unavailable"))
		},
		"panics": func(ctx context.Context, st *PipelineState) ToolResult {
			panic("nil dereference")
		},
	}
	e := NewExecutor(newTestLogger(t), registry)

	st := &PipelineState{ToolsToCall: []string{"ok", "boom", "panics", "missing"}}
	e.Execute(context.Background(), st)

	if len(st.ToolResults) != 4 {
		t.Fatalf("expected 4 results, got %d", len(st.ToolResults))
	}
	if !st.ToolResults["ok"].Success {
		t.Fatalf("ok tool should succeed: %+v", st.ToolResults["ok"])
	}
	if r := st.ToolResults["boom"]; r.Success || r.Error != "backend unavailable" {
		t.Fatalf("boom result = %+v", r)
	}
	if r := st.ToolResults["panics"]; r.Success || !strings.Contains(r.Error, "panicked") {
		t.Fatalf("panic should become a failure entry, got %+v", r)
	}
	if r := st.ToolResults["missing"]; r.Success || !strings.Contains(r.Error, "tool not found: missing") {
		t.Fatalf("missing tool result = %+v", r)
	}
}

func TestExecuteOnlyRequestedTools(t *testing.T) {
	called := map[string]int{}
	registry := map[string]ToolFunc{
		"a": func(ctx context.Context, st *PipelineState) ToolResult {
			called["a"]++
			return ToolResult{Success: true}
		},
		"b": func(ctx context.Context, st *PipelineState) ToolResult {
			called["b"]++
			return ToolResult{Success: true}
		},
	}
	e := NewExecutor(newTestLogger(t), registry)

	st := &PipelineState{ToolsToCall: []string{"a"}}
	e.Execute(context.Background(), st)

	if called["a"] != 1 || called["b"] != 0 {
		t.Fatalf("unexpected calls: %v", called)
	}
	if _, ok := st.ToolResults["b"]; ok {
		t.Fatalf("result recorded for tool that was never requested")
	}
}
