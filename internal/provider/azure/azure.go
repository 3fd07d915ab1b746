package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
	"github.com/universal-a2a/gateway/internal/provider/openai"
)

// ProviderID identifies this provider in the registry.
const ProviderID = "azure_openai"

const defaultAPIVersion = "2024-06-01"

// Provider talks to an Azure OpenAI deployment. Azure routes by
// deployment name and authenticates with an api-key header, so it
// carries its own request path instead of the shared OpenAI client.
type Provider struct {
	endpoint   string
	deployment string
	apiVersion string
	apiKey     string
	reason     string
	httpClient *http.Client
}

// New builds the provider from environment configuration.
func New() *Provider {
	p := &Provider{
		endpoint:   strings.TrimSuffix(strings.TrimSpace(os.Getenv("AZURE_OPENAI_ENDPOINT")), "/"),
		deployment: strings.TrimSpace(os.Getenv("AZURE_OPENAI_DEPLOYMENT")),
		apiVersion: strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_VERSION")),
		apiKey:     strings.TrimSpace(os.Getenv("AZURE_OPENAI_API_KEY")),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if p.apiVersion == "" {
		p.apiVersion = defaultAPIVersion
	}
	switch {
	case p.apiKey == "":
		p.reason = "AZURE_OPENAI_API_KEY is not set"
	case p.endpoint == "":
		p.reason = "AZURE_OPENAI_ENDPOINT is not set"
	case p.deployment == "":
		p.reason = "AZURE_OPENAI_DEPLOYMENT is not set"
	}
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Azure OpenAI",
		Ready:            p.reason == "",
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

// Generate implements domain.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	if p.reason != "" {
		return fmt.Sprintf("[%s not ready] %s", ProviderID, p.reason), nil
	}

	text, err := p.complete(ctx, prompt, messages)
	if err != nil {
		return fmt.Sprintf("[%s error] %v", ProviderID, err), nil
	}
	return text, nil
}

func (p *Provider) complete(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	reqBody := struct {
		Messages []openai.ChatMessage `json:"messages"`
	}{Messages: azureMessages(prompt, messages)}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s", p.endpoint, p.deployment, p.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("deployment %s returned %d: %s", p.deployment, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out openai.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("deployment %s returned no choices", p.deployment)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func azureMessages(prompt string, messages []domain.Message) []openai.ChatMessage {
	out := make([]openai.ChatMessage, 0, len(messages)+1)
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		role := m.Role
		if role == "" {
			role = "user"
		}
		out = append(out, openai.ChatMessage{Role: role, Content: text})
	}
	if len(out) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		out = append(out, openai.ChatMessage{Role: "user", Content: prompt})
	}
	return out
}

// RegisterProviderFactory registers the Azure OpenAI provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
