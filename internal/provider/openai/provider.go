package openai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
)

// ProviderID identifies this provider in the registry.
const ProviderID = "openai"

const defaultModel = "gpt-4o-mini"

// Provider talks to the OpenAI chat completions API.
type Provider struct {
	client *Client
	model  string
	reason string
}

// New builds the provider from environment configuration. A missing API
// key marks the provider not ready rather than failing construction.
func New() *Provider {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = defaultModel
	}

	p := &Provider{model: model}
	if apiKey == "" {
		p.reason = "OPENAI_API_KEY is not set"
		return p
	}

	opts := []ClientOption{}
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		opts = append(opts, WithBaseURL(baseURL))
	}
	p.client = NewClient(apiKey, opts...)
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "OpenAI",
		Ready:            p.client != nil,
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

// Generate implements domain.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	if p.client == nil {
		return fmt.Sprintf("[%s not ready] %s", ProviderID, p.reason), nil
	}

	text, err := p.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:    p.model,
		Messages: chatMessages(prompt, messages),
	})
	if err != nil {
		return fmt.Sprintf("[%s error] %v", ProviderID, err), nil
	}
	return text, nil
}

// chatMessages converts gateway messages into chat-completions form,
// falling back to the prompt (or a greeting) when the history is empty.
func chatMessages(prompt string, messages []domain.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		role := m.Role
		if role == "" {
			role = "user"
		}
		out = append(out, ChatMessage{Role: role, Content: text})
	}
	if len(out) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		out = append(out, ChatMessage{Role: "user", Content: prompt})
	}
	return out
}

// RegisterProviderFactory registers the OpenAI provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
