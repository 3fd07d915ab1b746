package gemini

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
const ProviderID = "gemini"

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

// Provider talks to the Gemini generateContent API.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	reason     string
	httpClient *http.Client
}

// New builds the provider from environment configuration. GEMINI_API_KEY
// takes precedence, GOOGLE_API_KEY is accepted as a fallback.
func New() *Provider {
	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}

	p := &Provider{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      strings.TrimSpace(os.Getenv("GEMINI_MODEL")),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if base := strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")); base != "" {
		p.baseURL = strings.TrimSuffix(base, "/")
	}
	if p.model == "" {
		p.model = defaultModel
	}
	if p.apiKey == "" {
		p.reason = "GEMINI_API_KEY is not set"
	}
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Gemini",
		Ready:            p.reason == "",
		Reason:           p.reason,
		SupportsMessages: true,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
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
	var req generateRequest
	for _, m := range messages {
		text := strings.TrimSpace(m.Content.String())
		if text == "" {
			continue
		}
		// Gemini names the assistant role "model".
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: text}}})
	}
	if len(req.Contents) == 0 {
		if prompt = strings.TrimSpace(prompt); prompt == "" {
			prompt = "Say hello."
		}
		req.Contents = append(req.Contents, content{Role: "user", Parts: []part{{Text: prompt}}})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("generateContent returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("generateContent returned no candidates")
	}
	var b strings.Builder
	for _, pt := range out.Candidates[0].Content.Parts {
		b.WriteString(pt.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("generateContent returned no text")
	}
	return text, nil
}

// RegisterProviderFactory registers the Gemini provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
