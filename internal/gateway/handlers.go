package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/universal-a2a/gateway/internal/card"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/provider"
	"github.com/universal-a2a/gateway/internal/storage"
	"github.com/universal-a2a/gateway/internal/tokens"
)

// Handler serves the gateway routes against a resolved provider and
// framework pair.
type Handler struct {
	provider   domain.Provider
	framework  domain.Framework
	providers  *provider.Registry
	frameworks *framework.Registry
	card       card.Card
	store      storage.Store
	logger     *slog.Logger
}

// NewHandler builds the route handler.
func NewHandler(p domain.Provider, fw domain.Framework, providers *provider.Registry, frameworks *framework.Registry, agentCard card.Card, store storage.Store, logger *slog.Logger) *Handler {
	if store == nil {
		store, _ = storage.Open("none", "")
	}
	return &Handler{
		provider:   p,
		framework:  fw,
		providers:  providers,
		frameworks: frameworks,
		card:       agentCard,
		store:      store,
		logger:     logger,
	}
}

// Mount attaches all routes to the router.
func (h *Handler) Mount(r chi.Router) {
	r.Post("/a2a", h.handleA2A)
	r.Post("/rpc", h.handleRPC)
	r.Post("/openai/v1/chat/completions", h.handleChatCompletions)
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyz)
	r.Get("/.well-known/agent-card.json", h.handleCard)
	r.Get("/v1/registry", h.handleRegistry)
	r.Handle("/metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeProblem(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// requireJSON enforces an application/json content type on mutating
// calls, matching the surface's 415 contract.
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return true
	}
	writeProblem(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	return false
}

func (h *Handler) execute(r *http.Request, messages []domain.Message) domain.Result {
	res := h.framework.Execute(r.Context(), messages)
	h.record(r, messages, res)
	return res
}

// record appends the exchange to the interaction log. Failures are
// logged and dropped; auditing never breaks a reply.
func (h *Handler) record(r *http.Request, messages []domain.Message, res domain.Result) {
	err := h.store.Record(r.Context(), storage.Interaction{
		ID:        uuid.New().String(),
		Provider:  h.provider.Info().ID,
		Framework: h.framework.Info().ID,
		Prompt:    domain.LastUserText(messages),
		Reply:     res.Text,
		Degraded:  res.Degraded,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("interaction log write failed", "error", err)
	}
}

func (h *Handler) handleA2A(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var req A2ARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Method != "message/send" {
		writeProblem(w, http.StatusBadRequest, "Unsupported A2A payload")
		return
	}

	userText := req.Params.Message.Text()
	res := h.execute(r, []domain.Message{domain.Text("user", userText)})

	h.logger.Info("a2a request",
		slog.String("method", req.Method),
		slog.Int("user_text_len", len(userText)),
		slog.Bool("degraded", res.Degraded),
	)
	writeJSON(w, http.StatusOK, A2AResponse{Message: AgentMessage(res.Text)})
}

func (h *Handler) handleRPC(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusOK, rpcError(nil, CodeParseError, "Parse error"))
		return
	}

	var req RPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		// Salvage the id for the error reply if the envelope was an object.
		var probe struct {
			ID json.RawMessage `json:"id"`
		}
		json.Unmarshal(raw, &probe)
		writeJSON(w, http.StatusOK, rpcError(probe.ID, CodeInvalidRequest, fmt.Sprintf("Invalid Request: %v", err)))
		return
	}
	if req.JSONRPC != "2.0" || len(req.ID) == 0 {
		writeJSON(w, http.StatusOK, rpcError(req.ID, CodeInvalidRequest, "Invalid Request: jsonrpc and id are required"))
		return
	}
	if req.Method != "message/send" {
		writeJSON(w, http.StatusOK, rpcError(req.ID, CodeMethodNotFound, "Method not found"))
		return
	}

	userText := req.Params.Message.Text()
	res := h.execute(r, []domain.Message{domain.Text("user", userText)})

	h.logger.Info("rpc request",
		slog.String("method", req.Method),
		slog.Int("user_text_len", len(userText)),
		slog.Bool("degraded", res.Degraded),
	)
	writeJSON(w, http.StatusOK, rpcSuccess(req.ID, res.Text))
}

func (h *Handler) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if !requireJSON(w, r) {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}
	if len(req.Messages) == 0 {
		writeProblem(w, http.StatusBadRequest, "messages is required")
		return
	}

	res := h.execute(r, req.Messages)
	model := req.ModelOrDefault()

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += tokens.Count(m.Content.String())
	}
	completionTokens := tokens.Count(res.Text)

	h.logger.Info("chat completions request",
		slog.String("model", model),
		slog.Int("turns", len(req.Messages)),
		slog.Bool("degraded", res.Degraded),
	)
	writeJSON(w, http.StatusOK, ChatResponse{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatChoice{{
			Index:        0,
			Message:      ChatReplyNested{Role: "assistant", Content: res.Text},
			FinishReason: "stop",
		}},
		Usage: ChatUsage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	})
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type componentMeta struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

func meta(info domain.Info) componentMeta {
	return componentMeta{ID: info.ID, Name: info.Name, Ready: info.Ready, Reason: info.Reason}
}

func (h *Handler) handleReadyz(w http.ResponseWriter, r *http.Request) {
	pInfo := h.provider.Info()
	fInfo := h.framework.Info()

	status := "ready"
	code := http.StatusOK
	if !pInfo.Ready || !fInfo.Ready {
		status = "not-ready"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":    status,
		"provider":  meta(pInfo),
		"framework": meta(fInfo),
	})
}

func (h *Handler) handleCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.card)
}

type registryEntry struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

func sortedEntries[S ~string](m map[string]S) []registryEntry {
	out := make([]registryEntry, 0, len(m))
	for id, src := range m {
		out = append(out, registryEntry{ID: id, Source: string(src)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Handler) handleRegistry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"providers":  sortedEntries(h.providers.List()),
		"frameworks": sortedEntries(h.frameworks.List()),
		"active": map[string]any{
			"provider":  meta(h.provider.Info()),
			"framework": meta(h.framework.Info()),
		},
	})
}
