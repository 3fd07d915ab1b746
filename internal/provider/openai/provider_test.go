package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

func TestGenerateRoundTrip(t *testing.T) {
	var gotReq ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer srv.Close()

	p := &Provider{client: NewClient("test-key", WithBaseURL(srv.URL)), model: "gpt-test"}
	got, err := p.Generate(context.Background(), "", []domain.Message{domain.Text("user", "hello")})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "hi there" {
		t.Errorf("Generate = %q, want %q", got, "hi there")
	}
	if gotReq.Model != "gpt-test" {
		t.Errorf("request model = %q, want gpt-test", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("request messages = %+v", gotReq.Messages)
	}
}

func TestGenerateBackendErrorBecomesPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := &Provider{client: NewClient("k", WithBaseURL(srv.URL)), model: "m"}
	got, err := p.Generate(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(got, "[openai error]") {
		t.Errorf("Generate = %q, want [openai error] prefix", got)
	}
}

func TestNotReadyWithoutKey(t *testing.T) {
	p := &Provider{reason: "OPENAI_API_KEY is not set", model: "m"}
	if info := p.Info(); info.Ready {
		t.Fatal("provider without key reports ready")
	}
	got, err := p.Generate(context.Background(), "ping", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "[openai not ready] OPENAI_API_KEY is not set" {
		t.Errorf("Generate = %q", got)
	}
}

func TestChatMessagesFallsBackToPrompt(t *testing.T) {
	msgs := chatMessages("", nil)
	if len(msgs) != 1 || msgs[0].Content != "Say hello." {
		t.Errorf("chatMessages = %+v", msgs)
	}
}
