package orchestrator

import (
	"context"
	"fmt"
	"sort"

	"github.com/carebridge/carebridge-backend/internal/platform/logger"
	"github.com/carebridge/carebridge-backend/internal/services"
	"github.com/carebridge/carebridge-backend/internal/types"
)

const fatalResponse = "I'm sorry, I ran into a problem while processing your request. Please try again."

// Agent is the query pipeline: classify the question, pick the tools,
// run them, fold the results into a response. Route always returns a
// response; a fatal stage error produces the fixed apology instead of
// partial output.
type Agent struct {
	classifier *Classifier
	selector   *Selector
	executor   *Executor
	synth      *Synthesizer
	audit      services.AuditLogger
	log        *logger.Logger
}

func NewAgent(log *logger.Logger, registry map[string]ToolFunc, translator services.TranslationService, audit services.AuditLogger) *Agent {
	return &Agent{
		classifier: NewClassifier(log),
		selector:   NewSelector(),
		executor:   NewExecutor(log, registry),
		synth:      NewSynthesizer(log, translator),
		audit:      audit,
		log:        log,
	}
}

func (a *Agent) Route(ctx context.Context, query types.AgentQuery) types.AgentResponse {
	st := &PipelineState{
		Query:          query.Query,
		UserID:         query.UserID,
		UserRole:       query.UserRole,
		HealthRecordID: query.HealthRecordID,
		TargetLanguage: query.TargetLanguage,
	}

	if err := a.runStages(ctx, st); err != nil {
		a.log.Error("pipeline failed", "error", err.Error(), "user_id", st.UserID)
		return types.AgentResponse{
			Response:         fatalResponse,
			Confidence:       0.0,
			Sources:          []string{},
			SuggestedActions: []string{},
		}
	}

	a.audit.Log(ctx, services.AuditEvent{
		UserID:       st.UserID,
		Action:       "agent_query",
		ResourceType: "orchestrator",
		Details: map[string]any{
			"intent": st.Intent,
			"tools":  st.ToolsToCall,
		},
	})

	return types.AgentResponse{
		Response:         st.FinalResponse,
		Confidence:       st.Confidence,
		Sources:          st.Sources,
		SuggestedActions: st.SuggestedActions,
	}
}

// runStages drives the four stages. Classification and selection are
// fatal on panic; tool failures are absorbed by the executor and
// surfaced in the synthesized response.
func (a *Agent) runStages(ctx context.Context, st *PipelineState) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	st.Intent = a.classifier.Classify(st.Query)
	a.log.Debug("query classified", "intent", st.Intent, "user_id", st.UserID)

	st.ToolsToCall = a.selector.Select(st.Intent)

	a.executor.Execute(ctx, st)

	a.synth.Synthesize(ctx, st)
	return nil
}

// Tools lists the registered tool names for introspection endpoints.
func Tools(registry map[string]ToolFunc) []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
