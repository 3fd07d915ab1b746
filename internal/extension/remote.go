package extension

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
	"github.com/universal-a2a/gateway/internal/provider/openai"
)

// remoteProviderFactory registers an OpenAI-compatible HTTP endpoint as
// a provider. Credentials come from the env var the manifest names; a
// missing key makes the provider not ready, not a load failure.
func remoteProviderFactory(id string, entry ManifestEntry) provider.Factory {
	return func() (domain.Provider, error) {
		p := &remoteProvider{
			id:    id,
			name:  entry.Name,
			model: entry.Model,
		}
		if p.name == "" {
			p.name = id
		}
		if p.model == "" {
			p.model = "default"
		}

		apiKey := ""
		if entry.APIKeyEnv != "" {
			apiKey = strings.TrimSpace(os.Getenv(entry.APIKeyEnv))
			if apiKey == "" {
				p.reason = entry.APIKeyEnv + " is not set"
				return p, nil
			}
		}
		p.client = openai.NewClient(apiKey, openai.WithBaseURL(entry.BaseURL))
		return p, nil
	}
}

// remoteProvider speaks the chat-completions dialect against an
// extension-configured endpoint.
type remoteProvider struct {
	id     string
	name   string
	model  string
	reason string
	client *openai.Client
}

func (p *remoteProvider) Info() domain.Info {
	return domain.Info{
		ID:               p.id,
		Name:             p.name,
		Ready:            p.client != nil,
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

func (p *remoteProvider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	if p.client == nil {
		return fmt.Sprintf("[%s not ready] %s", p.id, p.reason), nil
	}

	req := &openai.ChatCompletionRequest{Model: p.model}
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		role := m.Role
		if role == "" {
			role = "user"
		}
		req.Messages = append(req.Messages, openai.ChatMessage{Role: role, Content: text})
	}
	if len(req.Messages) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		req.Messages = append(req.Messages, openai.ChatMessage{Role: "user", Content: prompt})
	}

	text, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return fmt.Sprintf("[%s error] %v", p.id, err), nil
	}
	return text, nil
}
