// Package graph is the LangGraph-style orchestration framework: the
// conversation flows through a compiled graph of nodes. The builtin
// graph has two nodes, prompt extraction and generation, compiled onto
// the shared pipeline engine.
package graph

import (
	"context"
	"fmt"

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/pipeline"
)

// FrameworkID identifies this framework in the registry.
const FrameworkID = "langgraph"

// Framework runs messages through a compiled node graph.
type Framework struct {
	provider domain.Provider
	engine   *pipeline.Engine
	reason   string
}

// New builds the framework and compiles its graph. Compilation failure
// does not fail the build: the framework stays usable and degrades to a
// direct provider call, carrying the compile error as its reason.
func New(p domain.Provider) *Framework {
	f := &Framework{provider: p}

	engine, err := pipeline.NewEngine(
		pipeline.StageConfig{Order: 1, Stage: pipeline.StageFunc{
			StageName: "extract_prompt",
			Fn: func(_ context.Context, st *pipeline.State) error {
				st.Prompt = domain.LastUserText(st.Messages)
				return nil
			},
		}},
		pipeline.StageConfig{Order: 2, Stage: pipeline.StageFunc{
			StageName: "generate",
			Fn: func(ctx context.Context, st *pipeline.State) error {
				st.Text = dispatch.CallProvider(ctx, p, st.Prompt, st.Messages)
				return nil
			},
		}},
	)
	if err != nil {
		f.reason = fmt.Sprintf("graph compilation failed: %v", err)
		return f
	}
	f.engine = engine
	return f
}

// Info implements domain.Framework.
func (f *Framework) Info() domain.Info {
	return domain.Info{
		ID:     FrameworkID,
		Name:   "LangGraph",
		Ready:  true,
		Reason: f.reason,
	}
}

// Execute implements domain.Framework.
func (f *Framework) Execute(ctx context.Context, messages []domain.Message) domain.Result {
	if f.engine == nil {
		prompt := domain.LastUserText(messages)
		return domain.DegradedResult(dispatch.CallProvider(ctx, f.provider, prompt, messages), f.reason)
	}

	st := &pipeline.State{Messages: messages}
	if err := f.engine.Run(ctx, st); err != nil {
		return domain.DegradedResult(fmt.Sprintf("[%s error] %v", FrameworkID, err), err.Error())
	}
	return domain.Ok(st.Text)
}

// RegisterFrameworkFactory registers the LangGraph-style framework.
func RegisterFrameworkFactory() {
	if framework.IsRegistered(FrameworkID) {
		return
	}
	framework.RegisterFactory(FrameworkID, func(p domain.Provider) (domain.Framework, error) {
		return New(p), nil
	})
}
