// Package native is the pass-through orchestration framework: no
// pipeline, just the last user turn handed straight to the provider.
package native

import (
	"context"

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
)

// FrameworkID identifies this framework in the registry.
const FrameworkID = "native"

// Framework calls the provider directly.
type Framework struct {
	provider domain.Provider
}

// New builds the native framework around a provider.
func New(p domain.Provider) *Framework {
	return &Framework{provider: p}
}

// Info implements domain.Framework.
func (f *Framework) Info() domain.Info {
	return domain.Info{
		ID:    FrameworkID,
		Name:  "Native",
		Ready: true,
	}
}

// Execute implements domain.Framework.
func (f *Framework) Execute(ctx context.Context, messages []domain.Message) domain.Result {
	prompt := domain.LastUserText(messages)
	return domain.Ok(dispatch.CallProvider(ctx, f.provider, prompt, messages))
}

// RegisterFrameworkFactory registers the native framework.
func RegisterFrameworkFactory() {
	if framework.IsRegistered(FrameworkID) {
		return
	}
	framework.RegisterFactory(FrameworkID, func(p domain.Provider) (domain.Framework, error) {
		return New(p), nil
	})
}
