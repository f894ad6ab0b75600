package orchestrator

import (
	"context"
	"fmt"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
)

// Executor runs the selected tools in order, one at a time. A failing
// tool is recorded and the run continues; one result is tagged per
// requested tool, always.
type Executor struct {
	registry map[string]ToolFunc
	log      *logger.Logger
}

func NewExecutor(log *logger.Logger, registry map[string]ToolFunc) *Executor {
	return &Executor{registry: registry, log: log}
}

func (e *Executor) Execute(ctx context.Context, st *PipelineState) {
	st.ToolResults = make(map[string]ToolResult, len(st.ToolsToCall))
	for _, name := range st.ToolsToCall {
		tool, ok := e.registry[name]
		if !ok {
			st.ToolResults[name] = failure(fmt.Errorf("tool not found: %s", name))
			e.log.Warn("unknown tool requested", "tool", name, "intent", st.Intent)
			continue
		}
		result := e.runTool(ctx, name, tool, st)
		st.ToolResults[name] = result
		if !result.Success {
			e.log.Warn("tool failed", "tool", name, "error", result.Error, "user_id", st.UserID)
		}
	}
}

// runTool isolates a panicking tool to a failure entry so the rest of
// the plan still runs.
func (e *Executor) runTool(ctx context.Context, name string, tool ToolFunc, st *PipelineState) (out ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			out = failure(fmt.Errorf("tool %s panicked: %v", name, r))
			e.log.Error("tool panic recovered", "tool", name, "panic", fmt.Sprint(r))
		}
	}()
	return tool(ctx, st)
}
