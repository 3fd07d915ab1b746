package extension

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/provider"
)

// Manifest declares externally contributed plugins. Loaded from a yaml
// file named by configuration; entries merge into the registries with
// override priority over builtins.
type Manifest struct {
	Providers  []ManifestEntry `koanf:"providers"`
	Frameworks []ManifestEntry `koanf:"frameworks"`
}

// ManifestEntry describes one plugin.
//
// Kinds:
//   - "subprocess": Path names a plugin binary spoken to over net/rpc.
//   - "openai" (providers only): BaseURL names an OpenAI-compatible
//     endpoint; APIKeyEnv optionally names the env var holding its key.
type ManifestEntry struct {
	ID        string `koanf:"id"`
	Kind      string `koanf:"kind"`
	Name      string `koanf:"name"`
	Path      string `koanf:"path"`
	BaseURL   string `koanf:"base_url"`
	APIKeyEnv string `koanf:"api_key_env"`
	Model     string `koanf:"model"`
}

// LoadManifest reads a manifest file. A missing file means no
// extensions; a malformed file is reported but still yields an empty
// manifest so the gateway comes up on builtins alone.
func LoadManifest(path string, logger *slog.Logger) *Manifest {
	m := &Manifest{}
	if strings.TrimSpace(path) == "" {
		return m
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("plugin manifest unreadable", "path", path, "error", err)
		}
		return m
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		logger.Warn("plugin manifest failed to parse", "path", path, "error", err)
		return m
	}
	if err := k.Unmarshal("", m); err != nil {
		logger.Warn("plugin manifest has invalid structure", "path", path, "error", err)
		return &Manifest{}
	}
	return m
}

// Apply registers every manifest entry into the registries. Broken
// entries become not-ready factories under their declared id; one bad
// entry never blocks the rest.
func (m *Manifest) Apply(providers *provider.Registry, frameworks *framework.Registry, logger *slog.Logger) {
	for _, entry := range m.Providers {
		id := strings.ToLower(strings.TrimSpace(entry.ID))
		if id == "" {
			logger.Warn("plugin manifest provider entry missing id", "kind", entry.Kind)
			continue
		}
		if f, err := providerFactory(id, entry); err != nil {
			logger.Warn("plugin manifest provider entry invalid", "id", id, "error", err)
			providers.RegisterExtension(id, notReadyProviderFactory(id, err))
		} else {
			logger.Info("extension provider registered", "id", id, "kind", entry.Kind)
			providers.RegisterExtension(id, f)
		}
	}

	for _, entry := range m.Frameworks {
		id := strings.ToLower(strings.TrimSpace(entry.ID))
		if id == "" {
			logger.Warn("plugin manifest framework entry missing id", "kind", entry.Kind)
			continue
		}
		if f, err := frameworkFactory(id, entry); err != nil {
			logger.Warn("plugin manifest framework entry invalid", "id", id, "error", err)
			frameworks.RegisterExtension(id, notReadyFrameworkFactory(id, err))
		} else {
			logger.Info("extension framework registered", "id", id, "kind", entry.Kind)
			frameworks.RegisterExtension(id, f)
		}
	}
}

func providerFactory(id string, entry ManifestEntry) (provider.Factory, error) {
	switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
	case "subprocess":
		if entry.Path == "" {
			return nil, fmt.Errorf("subprocess entry needs a path")
		}
		return subprocessProviderFactory(id, entry.Path), nil
	case "openai":
		if entry.BaseURL == "" {
			return nil, fmt.Errorf("openai entry needs a base_url")
		}
		return remoteProviderFactory(id, entry), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", entry.Kind)
	}
}

func frameworkFactory(id string, entry ManifestEntry) (framework.Factory, error) {
	switch strings.ToLower(strings.TrimSpace(entry.Kind)) {
	case "subprocess":
		if entry.Path == "" {
			return nil, fmt.Errorf("subprocess entry needs a path")
		}
		return subprocessFrameworkFactory(id, entry.Path), nil
	default:
		return nil, fmt.Errorf("unknown framework kind %q", entry.Kind)
	}
}

func notReadyProviderFactory(id string, cause error) provider.Factory {
	return func() (domain.Provider, error) {
		return nil, cause
	}
}

func notReadyFrameworkFactory(id string, cause error) framework.Factory {
	return func(domain.Provider) (domain.Framework, error) {
		return nil, cause
	}
}
