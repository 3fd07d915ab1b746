// Package gateway implements the HTTP surface: the raw A2A envelope,
// JSON-RPC 2.0, an OpenAI-compatible chat-completions shim, health and
// readiness probes, the agent card, and registry introspection.
package gateway

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/universal-a2a/gateway/internal/domain"
)

// TextPart is one piece of an A2A message.
type TextPart struct {
	Type string `json:"type,omitempty"`
	Kind string `json:"kind,omitempty"`
	Text string `json:"text"`
}

// IsText accepts both the "type" and "kind" spellings seen in the wild.
func (p TextPart) IsText() bool {
	return p.Type == "text" || p.Kind == "text"
}

// A2AMessage is an inbound or outbound A2A message.
type A2AMessage struct {
	Role      string     `json:"role"`
	MessageID string     `json:"messageId,omitempty"`
	Parts     []TextPart `json:"parts"`
}

// Text extracts the first text part.
func (m A2AMessage) Text() string {
	for _, p := range m.Parts {
		if p.IsText() {
			return p.Text
		}
	}
	return ""
}

// A2AParams carries the message of a message/send call.
type A2AParams struct {
	Message A2AMessage `json:"message"`
}

// A2ARequest is the raw A2A envelope.
type A2ARequest struct {
	Method string    `json:"method"`
	Params A2AParams `json:"params"`
}

// A2AResponse wraps the agent's reply message.
type A2AResponse struct {
	Message A2AMessage `json:"message"`
}

// AgentMessage builds the reply message for a text.
func AgentMessage(text string) A2AMessage {
	return A2AMessage{
		Role:      "agent",
		MessageID: uuid.New().String(),
		Parts:     []TextPart{{Type: "text", Text: text}},
	}
}

// JSON-RPC 2.0 envelope types. Standard error codes: -32700
// parse error, -32600 invalid request, -32601 method not found.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
)

type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  A2AParams       `json:"params"`
}

type RPCSuccess struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  A2AResponse     `json:"result"`
}

type RPCErrorObj struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type RPCError struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Error   RPCErrorObj     `json:"error"`
}

func rpcSuccess(id json.RawMessage, text string) RPCSuccess {
	return RPCSuccess{
		JSONRPC: "2.0",
		ID:      id,
		Result:  A2AResponse{Message: AgentMessage(text)},
	}
}

func rpcError(id json.RawMessage, code int, message string) RPCError {
	if id == nil {
		id = json.RawMessage("null")
	}
	return RPCError{
		JSONRPC: "2.0",
		ID:      id,
		Error:   RPCErrorObj{Code: code, Message: message},
	}
}

// ChatRequest is the tolerant OpenAI chat-completions request: content
// may be a plain string or a list of parts, absorbed by MessageContent.
type ChatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
}

const defaultChatModel = "universal-a2a-hello"

// ModelOrDefault returns the requested model or the gateway's stand-in.
func (r ChatRequest) ModelOrDefault() string {
	if strings.TrimSpace(r.Model) == "" {
		return defaultChatModel
	}
	return r.Model
}

// ChatResponse is a chat.completion object.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   ChatUsage    `json:"usage"`
}

type ChatChoice struct {
	Index        int             `json:"index"`
	Message      ChatReplyNested `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type ChatReplyNested struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
