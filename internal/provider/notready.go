package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/universal-a2a/gateway/internal/domain"
)

// NotReadyProvider substitutes for a provider that failed to load or
// construct. It keeps the gateway answering: Generate returns a diagnostic
// greeting instead of failing.
type NotReadyProvider struct {
	id     string
	reason string
}

// NewNotReadyProvider creates a placeholder for the given id carrying the
// failure diagnostic.
func NewNotReadyProvider(id, reason string) *NotReadyProvider {
	return &NotReadyProvider{id: id, reason: reason}
}

func (p *NotReadyProvider) Info() domain.Info {
	return domain.Info{
		ID:               p.id,
		Name:             capitalize(p.id),
		Ready:            false,
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

func (p *NotReadyProvider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	base := strings.TrimSpace(prompt)
	prefix := fmt.Sprintf("[%s not ready: %s] ", p.id, p.reason)
	if base != "" {
		return prefix + "You said: " + base, nil
	}
	return prefix + "Hello, World!", nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
