// Package bee is the BeeAI-style orchestration framework: a workflow of
// named steps run in sequence on the shared pipeline engine.
package bee

import (
	"context"
	"fmt"
	"strings"

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/pipeline"
)

// FrameworkID identifies this framework in the registry.
const FrameworkID = "beeai"

// Framework runs messages through a fixed workflow.
type Framework struct {
	provider domain.Provider
	engine   *pipeline.Engine
	reason   string
}

// New builds the framework and its workflow. Workflow construction
// failure does not fail the build: the framework stays usable and
// degrades to a direct provider call.
func New(p domain.Provider) *Framework {
	f := &Framework{provider: p}

	engine, err := pipeline.NewEngine(
		pipeline.StageConfig{Order: 1, Stage: pipeline.StageFunc{
			StageName: "read_input",
			Fn: func(_ context.Context, st *pipeline.State) error {
				st.Prompt = domain.LastUserText(st.Messages)
				return nil
			},
		}},
		pipeline.StageConfig{Order: 2, Stage: pipeline.StageFunc{
			StageName: "run_agent",
			Fn: func(ctx context.Context, st *pipeline.State) error {
				st.Text = dispatch.CallProvider(ctx, p, st.Prompt, st.Messages)
				return nil
			},
		}},
		pipeline.StageConfig{Order: 3, Stage: pipeline.StageFunc{
			StageName: "finalize",
			Fn: func(_ context.Context, st *pipeline.State) error {
				st.Text = strings.TrimRight(st.Text, "\n")
				return nil
			},
		}},
	)
	if err != nil {
		f.reason = fmt.Sprintf("workflow construction failed: %v", err)
		return f
	}
	f.engine = engine
	return f
}

// Info implements domain.Framework.
func (f *Framework) Info() domain.Info {
	return domain.Info{
		ID:     FrameworkID,
		Name:   "BeeAI",
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

// RegisterFrameworkFactory registers the BeeAI-style framework.
func RegisterFrameworkFactory() {
	if framework.IsRegistered(FrameworkID) {
		return
	}
	framework.RegisterFactory(FrameworkID, func(p domain.Provider) (domain.Framework, error) {
		return New(p), nil
	})
}
