// Package config loads gateway configuration from the environment and
// an optional yaml file. The environment uses the gateway's historical
// flat names (LLM_PROVIDER, A2A_PORT, ...); the yaml file uses the
// nested koanf keys and is overridden by the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Agent   AgentConfig   `koanf:"agent"`
	Server  ServerConfig  `koanf:"server"`
	Plugins PluginsConfig `koanf:"plugins"`
	Storage StorageConfig `koanf:"storage"`
}

type AgentConfig struct {
	Provider        string `koanf:"provider"`
	Framework       string `koanf:"framework"`
	Name            string `koanf:"name"`
	Description     string `koanf:"description"`
	Version         string `koanf:"version"`
	ProtocolVersion string `koanf:"protocol_version"`
}

type ServerConfig struct {
	Host      string     `koanf:"host"`
	Port      int        `koanf:"port"`
	PublicURL string     `koanf:"public_url"`
	CORS      CORSConfig `koanf:"cors"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
	AllowHeaders []string `koanf:"allow_headers"`
	AllowMethods []string `koanf:"allow_methods"`
}

type PluginsConfig struct {
	Manifest string `koanf:"manifest"`
}

type StorageConfig struct {
	// Backend is one of "none", "memory", "sqlite".
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
}

// envKeys maps the historical flat environment names onto koanf keys.
var envKeys = map[string]string{
	"LLM_PROVIDER":       "agent.provider",
	"AGENT_FRAMEWORK":    "agent.framework",
	"AGENT_NAME":         "agent.name",
	"AGENT_DESCRIPTION":  "agent.description",
	"AGENT_VERSION":      "agent.version",
	"PROTOCOL_VERSION":   "agent.protocol_version",
	"A2A_HOST":           "server.host",
	"A2A_PORT":           "server.port",
	"PUBLIC_URL":         "server.public_url",
	"CORS_ALLOW_ORIGINS": "server.cors.allow_origins",
	"CORS_ALLOW_HEADERS": "server.cors.allow_headers",
	"CORS_ALLOW_METHODS": "server.cors.allow_methods",
	"PLUGIN_MANIFEST":    "plugins.manifest",
	"STORAGE_BACKEND":    "storage.backend",
	"STORAGE_PATH":       "storage.path",
}

// commaListKeys are env values split on commas into string slices.
var commaListKeys = map[string]bool{
	"server.cors.allow_origins": true,
	"server.cors.allow_headers": true,
	"server.cors.allow_methods": true,
}

// Load reads configuration: defaults, then the yaml file (when path is
// non-empty and exists), then the environment on top.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", mapEnvKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	for key := range commaListKeys {
		if v := k.String(key); v != "" {
			k.Set(key, splitList(v))
		}
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// mapEnvKey admits only the known flat names; everything else in the
// environment is ignored.
func mapEnvKey(s string) string {
	if key, ok := envKeys[s]; ok {
		return key
	}
	return ""
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"agent.provider":            "echo",
		"agent.framework":           "native",
		"agent.name":                "Universal A2A Agent",
		"agent.description":         "Protocol-agnostic AI agent gateway",
		"agent.version":             "1.0.0",
		"agent.protocol_version":    "0.3.0",
		"server.host":               "0.0.0.0",
		"server.port":               8000,
		"server.cors.allow_origins": []string{"*"},
		"server.cors.allow_headers": []string{"*"},
		"server.cors.allow_methods": []string{"GET", "POST", "OPTIONS"},
		"storage.backend":           "none",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}
	if !k.Exists("server.public_url") {
		k.Set("server.public_url", fmt.Sprintf("http://localhost:%d", k.Int("server.port")))
	}
}
