// Package runtime provides the Gateway struct and lifecycle management:
// it wires configuration, registries, extensions, storage, and the HTTP
// server into one startable unit.
package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/universal-a2a/gateway/internal/card"
	"github.com/universal-a2a/gateway/internal/config"
	"github.com/universal-a2a/gateway/internal/domain"
	"github.com/universal-a2a/gateway/internal/extension"
	"github.com/universal-a2a/gateway/internal/framework"
	"github.com/universal-a2a/gateway/internal/gateway"
	"github.com/universal-a2a/gateway/internal/provider"
	"github.com/universal-a2a/gateway/internal/server"
	"github.com/universal-a2a/gateway/internal/storage"
)

// Gateway runs the A2A agent gateway. Plugin problems never abort
// startup; only configuration and listener failures do.
type Gateway struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store

	providers  *provider.Registry
	frameworks *framework.Registry
	provider   domain.Provider
	framework  domain.Framework
	srv        *server.Server
}

// Option configures a Gateway.
type Option func(*Gateway) error

// WithConfig supplies a pre-loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(g *Gateway) error {
		g.cfg = cfg
		return nil
	}
}

// WithLogger supplies the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) error {
		g.logger = logger
		return nil
	}
}

// WithStore supplies a pre-opened interaction log, overriding the
// config-selected backend.
func WithStore(store storage.Store) Option {
	return func(g *Gateway) error {
		g.store = store
		return nil
	}
}

// New creates a Gateway: loads config if none was supplied, applies the
// plugin manifest, resolves the configured provider and framework once,
// and assembles the HTTP server.
func New(opts ...Option) (*Gateway, error) {
	g := &Gateway{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	if g.cfg == nil {
		cfg, err := config.Load("")
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		g.cfg = cfg
	}

	g.providers = provider.NewRegistry(g.cfg.Agent.Provider)
	g.frameworks = framework.NewRegistry(g.cfg.Agent.Framework)
	extension.LoadManifest(g.cfg.Plugins.Manifest, g.logger).Apply(g.providers, g.frameworks, g.logger)

	// Resolve the configured pair once. Builds cannot fail; a missing or
	// broken plugin answers as a not-ready placeholder.
	g.provider = g.providers.Default()
	g.framework = g.frameworks.Default(g.provider)

	pInfo := g.provider.Info()
	fInfo := g.framework.Info()
	g.logger.Info("agent resolved",
		slog.String("provider", pInfo.ID),
		slog.Bool("provider_ready", pInfo.Ready),
		slog.String("framework", fInfo.ID),
		slog.Bool("framework_ready", fInfo.Ready),
	)

	if g.store == nil {
		store, err := storage.Open(g.cfg.Storage.Backend, g.cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		g.store = store
	}

	g.srv = server.New(g.cfg.Server, g.logger)
	handler := gateway.NewHandler(g.provider, g.framework, g.providers, g.frameworks, card.New(g.cfg), g.store, g.logger)
	handler.Mount(g.srv.Router)

	return g, nil
}

// Provider returns the resolved provider.
func (g *Gateway) Provider() domain.Provider { return g.provider }

// Framework returns the resolved framework.
func (g *Gateway) Framework() domain.Framework { return g.framework }

// Start serves HTTP until the listener fails or Shutdown is called.
func (g *Gateway) Start() error {
	return g.srv.Start()
}

// Shutdown drains the server and closes the interaction log.
func (g *Gateway) Shutdown(ctx context.Context) error {
	err := g.srv.Shutdown(ctx)
	if cerr := g.store.Close(); err == nil {
		err = cerr
	}
	return err
}
