package ollama

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

	"github.com/universal-a2a/gateway/internal/dispatch"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
)

// ProviderID identifies this provider in the registry.
const ProviderID = "ollama"

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
)

// Provider talks to a local Ollama daemon. Local generation can hold a
// CPU for a long time, so requests run on the shared dispatch pool to
// keep a burst of slow completions from starving the gateway.
type Provider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New builds the provider from environment configuration. Ollama needs
// no credentials, so the provider is always ready; an unreachable
// daemon surfaces as an error payload at generation time.
func New() *Provider {
	p := &Provider{
		baseURL:    defaultBaseURL,
		model:      strings.TrimSpace(os.Getenv("OLLAMA_MODEL")),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	if base := strings.TrimSpace(os.Getenv("OLLAMA_BASE_URL")); base != "" {
		p.baseURL = strings.TrimSuffix(base, "/")
	}
	if p.model == "" {
		p.model = defaultModel
	}
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Ollama",
		Ready:            true,
		SupportsMessages: true,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate implements domain.Provider.
func (p *Provider) Generate(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	text, err := dispatch.Offload(ctx, func() (string, error) {
		return p.complete(ctx, prompt, messages)
	})
	if err != nil {
		return fmt.Sprintf("[%s error] %v", ProviderID, err), nil
	}
	return text, nil
}

func (p *Provider) complete(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	req := chatRequest{Model: p.model, Stream: false}
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		role := m.Role
		if role == "" {
			role = "user"
		}
		req.Messages = append(req.Messages, chatMessage{Role: role, Content: text})
	}
	if len(req.Messages) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		req.Messages = append(req.Messages, chatMessage{Role: "user", Content: prompt})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	text := strings.TrimSpace(out.Message.Content)
	if text == "" {
		return "", fmt.Errorf("ollama returned no text")
	}
	return text, nil
}

// RegisterProviderFactory registers the Ollama provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
