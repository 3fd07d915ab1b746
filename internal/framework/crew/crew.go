// Package crew is the CrewAI-style orchestration framework: a single
// assistant agent with one task, expressed as a one-stage pipeline.
package crew

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
const FrameworkID = "crewai"

const agentRole = "Helpful Assistant"

// Framework runs a one-agent crew over the provider.
type Framework struct {
	provider domain.Provider
	engine   *pipeline.Engine
	reason   string
}

// New builds the crew. Assembly failure does not fail the build: the
// framework stays usable and degrades to a direct provider call.
func New(p domain.Provider) *Framework {
	f := &Framework{provider: p}

	engine, err := pipeline.NewEngine(
		pipeline.StageConfig{Order: 1, Stage: pipeline.StageFunc{
			StageName: "assistant_task",
			Fn: func(ctx context.Context, st *pipeline.State) error {
				st.Prompt = domain.LastUserText(st.Messages)
				// The agent role travels as a system turn so providers
				// that honor history pick it up.
				msgs := st.Messages
				if !hasSystemTurn(msgs) {
					msgs = append([]domain.Message{domain.Text("system", "You are a "+agentRole+".")}, msgs...)
				}
				st.Text = dispatch.CallProvider(ctx, p, st.Prompt, msgs)
				return nil
			},
		}},
	)
	if err != nil {
		f.reason = fmt.Sprintf("crew assembly failed: %v", err)
		return f
	}
	f.engine = engine
	return f
}

func hasSystemTurn(messages []domain.Message) bool {
	for _, m := range messages {
		if m.Role == "system" && strings.TrimSpace(m.Content.String()) != "" {
			return true
		}
	}
	return false
}

// Info implements domain.Framework.
func (f *Framework) Info() domain.Info {
	return domain.Info{
		ID:     FrameworkID,
		Name:   "CrewAI",
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

// RegisterFrameworkFactory registers the CrewAI-style framework.
func RegisterFrameworkFactory() {
	if framework.IsRegistered(FrameworkID) {
		return
	}
	framework.RegisterFactory(FrameworkID, func(p domain.Provider) (domain.Framework, error) {
		return New(p), nil
	})
}
