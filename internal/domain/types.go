package domain

import (
	"encoding/json"
	"strings"
)

// Info describes a plugin instance (provider or framework).
// Ready=false means the plugin could not be fully constructed; Reason then
// carries the diagnostic. A not-ready plugin is still callable.
type Info struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`

	// SupportsMessages reports whether the provider can consume full
	// conversation history, as opposed to a single prompt string.
	SupportsMessages bool `json:"supports_messages,omitempty"`
}

// ContentPart is a single part of structured message content.
// Only text parts are meaningful to the gateway; unknown types pass through.
type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageContent is either a plain string or an array of content parts.
// All three wire shapes (chat-completions, JSON-RPC envelope, raw A2A) decode
// into this one representation.
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

// IsSimpleText returns true if the content is just plain text.
func (mc MessageContent) IsSimpleText() bool {
	return len(mc.Parts) == 0
}

// String renders the content as plain text, concatenating text parts.
func (mc MessageContent) String() string {
	if mc.IsSimpleText() {
		return mc.Text
	}
	var b strings.Builder
	for _, p := range mc.Parts {
		if p.Type == "text" && p.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// UnmarshalJSON accepts both `"content": "hi"` and `"content": [{...}]`.
func (mc *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		mc.Text = s
		mc.Parts = nil
		return nil
	}
	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err == nil {
		mc.Text = ""
		mc.Parts = parts
		return nil
	}
	// Tolerate null and unknown shapes; extraction treats them as empty.
	mc.Text = ""
	mc.Parts = nil
	return nil
}

// MarshalJSON emits the simplest faithful shape.
func (mc MessageContent) MarshalJSON() ([]byte, error) {
	if mc.IsSimpleText() {
		return json.Marshal(mc.Text)
	}
	return json.Marshal(mc.Parts)
}

// Message is a single conversation turn.
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// Text builds a plain-text message.
func Text(role, text string) Message {
	return Message{Role: role, Content: MessageContent{Text: text}}
}
