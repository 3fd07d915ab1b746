package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/universal-a2a/gateway/internal/domain"
)

func TestGenerateRoundTrip(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "local hello"},
		})
	}))
	defer srv.Close()

	p := &Provider{baseURL: srv.URL, model: "llama-test", httpClient: srv.Client()}
	got, err := p.Generate(context.Background(), "", []domain.Message{domain.Text("user", "hi")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "local hello" {
		t.Errorf("Generate = %q", got)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if gotReq.Model != "llama-test" {
		t.Errorf("request model = %q", gotReq.Model)
	}
}

func TestGenerateDaemonDownBecomesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	p := &Provider{baseURL: srv.URL, model: "m", httpClient: &http.Client{Timeout: 2 * time.Second}}
	got, err := p.Generate(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(got, "[ollama error]") {
		t.Errorf("Generate = %q, want [ollama error] prefix", got)
	}
}

func TestAlwaysReady(t *testing.T) {
	info := New().Info()
	if !info.Ready {
		t.Error("ollama should report ready without credentials")
	}
	if info.ID != ProviderID {
		t.Errorf("ID = %q", info.ID)
	}
}
