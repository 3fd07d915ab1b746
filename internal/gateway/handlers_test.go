package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/universal-a2a/gateway/internal/card"
	"github.com/universal-a2a/gateway/internal/config"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/framework/native"
	"github.com/universal-a2a/gateway/internal/provider"
	"github.com/universal-a2a/gateway/internal/provider/echo"
	"github.com/universal-a2a/gateway/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.MemoryStore) {
	t.Helper()
	echo.RegisterProviderFactory()
	native.RegisterFrameworkFactory()

	providers := provider.NewRegistry("echo")
	frameworks := framework.NewRegistry("native")
	p := providers.Default()
	fw := frameworks.Default(p)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(p, fw, providers, frameworks, card.New(cfg), store, logger)

	r := chi.NewRouter()
	h.Mount(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, store
}

func postJSON(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, raw
}

func TestA2ARoundTrip(t *testing.T) {
	srv, store := newTestServer(t)

	resp, raw := postJSON(t, srv.URL+"/a2a", `{
		"method": "message/send",
		"params": {"message": {"role": "user", "messageId": "m1",
			"parts": [{"type": "text", "text": "ping"}]}}
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var out A2AResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Message.Role != "agent" {
		t.Errorf("role = %q", out.Message.Role)
	}
	if got := out.Message.Text(); got != "Hello, you said: ping" {
		t.Errorf("reply = %q", got)
	}

	recent, _ := store.Recent(t.Context(), 1)
	if len(recent) != 1 || recent[0].Prompt != "ping" {
		t.Errorf("interaction log = %+v", recent)
	}
}

func TestA2AAcceptsKindSpelledParts(t *testing.T) {
	srv, _ := newTestServer(t)

	_, raw := postJSON(t, srv.URL+"/a2a", `{
		"method": "message/send",
		"params": {"message": {"role": "user",
			"parts": [{"kind": "text", "text": "hi"}]}}
	}`)
	var out A2AResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := out.Message.Text(); got != "Hello, you said: hi" {
		t.Errorf("reply = %q", got)
	}
}

func TestA2ARejectsWrongContentTypeAndMethod(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Post(srv.URL+"/a2a", "text/plain", strings.NewReader("ping"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("text/plain status = %d, want 415", resp.StatusCode)
	}

	resp, _ = postJSON(t, srv.URL+"/a2a", `{"method": "message/stream", "params": {}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unsupported method status = %d, want 400", resp.StatusCode)
	}
}

func TestRPCRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, raw := postJSON(t, srv.URL+"/rpc", `{
		"jsonrpc": "2.0", "id": 7, "method": "message/send",
		"params": {"message": {"role": "user",
			"parts": [{"type": "text", "text": "ping"}]}}
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out RPCSuccess
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.JSONRPC != "2.0" || string(out.ID) != "7" {
		t.Errorf("envelope = %+v", out)
	}
	if got := out.Result.Message.Text(); got != "Hello, you said: ping" {
		t.Errorf("reply = %q", got)
	}
}

func TestRPCErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"parse error", `{not json`, CodeParseError},
		{"invalid request", `{"jsonrpc": "1.0", "id": 1, "method": "message/send", "params": {}}`, CodeInvalidRequest},
		{"missing id", `{"jsonrpc": "2.0", "method": "message/send", "params": {}}`, CodeInvalidRequest},
		{"method not found", `{"jsonrpc": "2.0", "id": 1, "method": "tasks/get", "params": {}}`, CodeMethodNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := postJSON(t, srv.URL+"/rpc", tc.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, JSON-RPC errors ride HTTP 200", resp.StatusCode)
			}
			var out RPCError
			if err := json.Unmarshal(raw, &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if out.Error.Code != tc.wantCode {
				t.Errorf("code = %d, want %d", out.Error.Code, tc.wantCode)
			}
		})
	}
}

func TestChatCompletionsRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, raw := postJSON(t, srv.URL+"/openai/v1/chat/completions", `{
		"model": "anything",
		"messages": [{"role": "user", "content": "ping"}]
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, raw)
	}

	var out ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Object != "chat.completion" {
		t.Errorf("object = %q", out.Object)
	}
	if len(out.Choices) != 1 || out.Choices[0].Message.Content != "Hello, you said: ping" {
		t.Errorf("choices = %+v", out.Choices)
	}
	if out.Choices[0].FinishReason != "stop" {
		t.Errorf("finish_reason = %q", out.Choices[0].FinishReason)
	}
	if out.Usage.TotalTokens != out.Usage.PromptTokens+out.Usage.CompletionTokens {
		t.Errorf("usage does not add up: %+v", out.Usage)
	}
}

func TestChatCompletionsPartsContent(t *testing.T) {
	srv, _ := newTestServer(t)

	_, raw := postJSON(t, srv.URL+"/openai/v1/chat/completions", `{
		"messages": [{"role": "user", "content": [{"type": "text", "text": "ping"}]}]
	}`)
	var out ChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Model != "universal-a2a-hello" {
		t.Errorf("model = %q, want default", out.Model)
	}
	if out.Choices[0].Message.Content != "Hello, you said: ping" {
		t.Errorf("reply = %q", out.Choices[0].Message.Content)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/readyz")
	if err != nil {
		t.Fatal(err)
	}
	var ready struct {
		Status string `json:"status"`
	}
	json.NewDecoder(resp.Body).Decode(&ready)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || ready.Status != "ready" {
		t.Errorf("readyz = %d %q", resp.StatusCode, ready.Status)
	}
}

func TestAgentCardAndRegistry(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/.well-known/agent-card.json")
	if err != nil {
		t.Fatal(err)
	}
	var c card.Card
	json.NewDecoder(resp.Body).Decode(&c)
	resp.Body.Close()
	if c.PreferredTransport != "JSONRPC" {
		t.Errorf("preferredTransport = %q", c.PreferredTransport)
	}
	if !strings.HasSuffix(c.URL, "/rpc") {
		t.Errorf("card url = %q", c.URL)
	}
	if len(c.Skills) == 0 || c.Skills[0].ID != "say-hello" {
		t.Errorf("skills = %+v", c.Skills)
	}

	resp, err = http.Get(srv.URL + "/v1/registry")
	if err != nil {
		t.Fatal(err)
	}
	var reg struct {
		Providers []registryEntry `json:"providers"`
		Active    struct {
			Provider componentMeta `json:"provider"`
		} `json:"active"`
	}
	json.NewDecoder(resp.Body).Decode(&reg)
	resp.Body.Close()
	found := false
	for _, e := range reg.Providers {
		if e.ID == "echo" && e.Source == "builtin" {
			found = true
		}
	}
	if !found {
		t.Errorf("registry providers = %+v, want echo/builtin", reg.Providers)
	}
	if reg.Active.Provider.ID != "echo" {
		t.Errorf("active provider = %+v", reg.Active.Provider)
	}
}
