package framework

import (
	"context"
	"strings"

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
)

// NotReadyFramework stands in for a framework that could not be built.
// It keeps the gateway answering by falling back to a direct provider
// call, tagging the result as degraded with the construction failure.
type NotReadyFramework struct {
	id       string
	reason   string
	provider domain.Provider
}

// NewNotReadyFramework creates a placeholder for a failed framework build.
func NewNotReadyFramework(id, reason string, p domain.Provider) *NotReadyFramework {
	if id == "" {
		id = "unknown"
	}
	if reason == "" {
		reason = "framework unavailable"
	}
	return &NotReadyFramework{id: id, reason: reason, provider: p}
}

// Info implements domain.Framework.
func (f *NotReadyFramework) Info() domain.Info {
	return domain.Info{
		ID:     f.id,
		Name:   capitalize(f.id),
		Ready:  false,
		Reason: f.reason,
	}
}

// Execute implements domain.Framework. The placeholder orchestrates
// nothing: it extracts the last user turn and hands it straight to the
// provider through the dispatch shim.
func (f *NotReadyFramework) Execute(ctx context.Context, messages []domain.Message) domain.Result {
	prompt := domain.LastUserText(messages)
	text := dispatch.CallProvider(ctx, f.provider, prompt, messages)
	return domain.DegradedResult(text, f.reason)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
