package anthropic

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
)

// ProviderID identifies this provider in the registry.
const ProviderID = "anthropic"

const (
	defaultBaseURL = "https://api.anthropic.com"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
	maxTokens      = 1024
)

// Provider talks to the Anthropic messages API.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	reason     string
	httpClient *http.Client
}

// New builds the provider from environment configuration.
func New() *Provider {
	p := &Provider{
		baseURL:    defaultBaseURL,
		apiKey:     strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		model:      strings.TrimSpace(os.Getenv("ANTHROPIC_MODEL")),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if base := strings.TrimSpace(os.Getenv("ANTHROPIC_BASE_URL")); base != "" {
		p.baseURL = strings.TrimSuffix(base, "/")
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.apiKey == "" {
		p.reason = "ANTHROPIC_API_KEY is not set"
	}
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Anthropic",
		Ready:            p.reason == "",
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []turnMessage `json:"messages"`
}

type turnMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
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
	req := messagesRequest{Model: p.model, MaxTokens: maxTokens}
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		// The messages API takes system turns out of band.
		if m.Role == "system" {
			req.System = text
			continue
		}
		role := m.Role
		if role != "assistant" {
			role = "user"
		}
		req.Messages = append(req.Messages, turnMessage{Role: role, Content: text})
	}
	if len(req.Messages) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		req.Messages = append(req.Messages, turnMessage{Role: "user", Content: prompt})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("messages API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	var b strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("messages API returned no text content")
	}
	return text, nil
}

// RegisterProviderFactory registers the Anthropic provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
