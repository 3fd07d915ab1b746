// Package client is a small Go client for the A2A gateway: it sends a
// text message over the raw A2A or JSON-RPC surface and extracts the
// reply text.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// Client talks to one gateway instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type textPart struct {
	Type string `json:"type,omitempty"`
	Kind string `json:"kind,omitempty"`
	Text string `json:"text"`
}

type wireMessage struct {
	Role      string     `json:"role"`
	MessageID string     `json:"messageId,omitempty"`
	Parts     []textPart `json:"parts"`
}

type params struct {
	Message wireMessage `json:"message"`
}

func userMessage(text string) wireMessage {
	return wireMessage{
		Role:      "user",
		MessageID: uuid.New().String(),
		Parts:     []textPart{{Type: "text", Text: text}},
	}
}

func replyText(m wireMessage) string {
	for _, p := range m.Parts {
		if p.Type == "text" || p.Kind == "text" {
			return p.Text
		}
	}
	return ""
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Send posts text over the raw A2A surface and returns the reply text.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	body := map[string]any{
		"method": "message/send",
		"params": params{Message: userMessage(text)},
	}
	var out struct {
		Message wireMessage `json:"message"`
	}
	if err := c.post(ctx, "/a2a", body, &out); err != nil {
		return "", err
	}
	return replyText(out.Message), nil
}

// SendRPC posts text over JSON-RPC and returns the reply text.
func (c *Client) SendRPC(ctx context.Context, text string) (string, error) {
	body := map[string]any{
		"jsonrpc": "2.0",
		"id":      uuid.New().String(),
		"method":  "message/send",
		"params":  params{Message: userMessage(text)},
	}
	var out struct {
		Result *struct {
			Message wireMessage `json:"message"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := c.post(ctx, "/rpc", body, &out); err != nil {
		return "", err
	}
	if out.Error != nil {
		return "", fmt.Errorf("rpc error %d: %s", out.Error.Code, out.Error.Message)
	}
	if out.Result == nil {
		return "", fmt.Errorf("rpc reply has neither result nor error")
	}
	return replyText(out.Result.Message), nil
}

// Card fetches the agent card as raw JSON.
func (c *Client) Card(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/.well-known/agent-card.json")
}

// Registry fetches the registry introspection document as raw JSON.
func (c *Client) Registry(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/v1/registry")
}

func (c *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}
