// Package card builds the agent card document served at
// /.well-known/agent-card.json.
package card

import (
	"strings"

	"github.com/universal-a2a/gateway/internal/config"
)

// Card is the agent's public capability document.
type Card struct {
	ProtocolVersion    string   `json:"protocolVersion"`
	Name               string   `json:"name"`
	Description        string   `json:"description"`
	Version            string   `json:"version"`
	URL                string   `json:"url"`
	PreferredTransport string   `json:"preferredTransport"`
	Capabilities       Caps     `json:"capabilities"`
	DefaultInputModes  []string `json:"defaultInputModes"`
	DefaultOutputModes []string `json:"defaultOutputModes"`
	Skills             []Skill  `json:"skills"`
}

type Caps struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples"`
}

// New builds the card from configuration.
func New(cfg *config.Config) Card {
	return Card{
		ProtocolVersion:    cfg.Agent.ProtocolVersion,
		Name:               cfg.Agent.Name,
		Description:        cfg.Agent.Description,
		Version:            cfg.Agent.Version,
		URL:                strings.TrimSuffix(cfg.Server.PublicURL, "/") + "/rpc",
		PreferredTransport: "JSONRPC",
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Skills: []Skill{
			{
				ID:          "say-hello",
				Name:        "Say Hello",
				Description: "Replies to a text message",
				Tags:        []string{"chat", "text"},
				Examples:    []string{"Hello!"},
			},
		},
	}
}
