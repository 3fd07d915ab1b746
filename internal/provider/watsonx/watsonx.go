package watsonx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/provider"
)

// ProviderID identifies this provider in the registry.
const ProviderID = "watsonx"

const (
	defaultIAMURL  = "https://iam.cloud.ibm.com/identity/token"
	defaultModel   = "ibm/granite-3-8b-instruct"
	apiVersion     = "2024-05-01"
	tokenSafetyGap = 60 * time.Second
)

// Provider talks to the IBM watsonx.ai text generation API. API keys
// are exchanged for short-lived IAM bearer tokens, cached until close
// to expiry.
type Provider struct {
	endpoint   string
	projectID  string
	apiKey     string
	model      string
	iamURL     string
	reason     string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New builds the provider from environment configuration.
func New() *Provider {
	p := &Provider{
		endpoint:   strings.TrimSuffix(strings.TrimSpace(os.Getenv("WATSONX_URL")), "/"),
		projectID:  strings.TrimSpace(os.Getenv("WATSONX_PROJECT_ID")),
		apiKey:     strings.TrimSpace(os.Getenv("WATSONX_API_KEY")),
		model:      strings.TrimSpace(os.Getenv("WATSONX_MODEL")),
		iamURL:     defaultIAMURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if iam := strings.TrimSpace(os.Getenv("WATSONX_IAM_URL")); iam != "" {
		p.iamURL = iam
	}
	if p.model == "" {
		p.model = defaultModel
	}
	switch {
	case p.apiKey == "":
		p.reason = "WATSONX_API_KEY is not set"
	case p.endpoint == "":
		p.reason = "WATSONX_URL is not set"
	case p.projectID == "":
		p.reason = "WATSONX_PROJECT_ID is not set"
	}
	return p
}

// Info implements domain.Provider.
func (p *Provider) Info() domain.Info {
	return domain.Info{
		ID:               ProviderID,
		Name:             "Watsonx",
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

// bearerToken returns a cached IAM token, refreshing it when expired.
func (p *Provider) bearerToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{
		"grant_type": {"urn:ibm:params:oauth:grant-type:apikey"},
		"apikey":     {p.apiKey},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange api key: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("IAM token exchange returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("IAM token exchange returned no token")
	}

	p.token = out.AccessToken
	p.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - tokenSafetyGap)
	return p.token, nil
}

func (p *Provider) complete(ctx context.Context, prompt string, messages []domain.Message) (string, error) {
	token, err := p.bearerToken(ctx)
	if err != nil {
		return "", err
	}

	input := strings.TrimSpace(prompt)
	if input == "" {
		input = domain.LastUserText(messages)
	}
	if input == "" {
		input = "Say hello."
	}

	reqBody := map[string]any{
		"model_id":   p.model,
		"project_id": p.projectID,
		"input":      input,
		"parameters": map[string]any{"max_new_tokens": 512},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/ml/v1/text/generation?version=%s", p.endpoint, apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("text generation returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out struct {
		Results []struct {
			GeneratedText string `json:"generated_text"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Results) == 0 {
		return "", fmt.Errorf("text generation returned no results")
	}
	text := strings.TrimSpace(out.Results[0].GeneratedText)
	if text == "" {
		return "", fmt.Errorf("text generation returned no text")
	}
	return text, nil
}

// RegisterProviderFactory registers the watsonx provider.
func RegisterProviderFactory() {
	if provider.IsRegistered(ProviderID) {
		return
	}
	provider.RegisterFactory(ProviderID, func() (domain.Provider, error) {
		return New(), nil
	})
}
