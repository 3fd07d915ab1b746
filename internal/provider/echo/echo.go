// Package echo is the builtin loopback provider. It needs no credentials,
// is always ready, and anchors the registry fallback chain.
package echo

import (
	"context"
	"strings"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
)

const ProviderID = "echo"

type Provider struct{}

func New() *Provider { return &Provider{} }

func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Echo",
		Ready:            true,
		Reason:           "Echo provider is always ready.",
		SupportsMessages: true,
	}
}

func (p *Provider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	if t := strings.TrimSpace(prompt); t != "" {
		return "Hello, you said: " + t, nil
	}
	return "Hello, World!", nil
}

// RegisterProviderFactory registers the echo provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
