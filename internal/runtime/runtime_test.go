package runtime

import (
	"io"
	"log/slog"
	"testing"

	"github.com/universal-a2a/gateway/internal/config"
	"github.com/universal-a2a/gateway/internal/registration"
)

func TestNewResolvesConfiguredPair(t *testing.T) {
	registration.RegisterBuiltins()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Agent.Provider = "claude"
	cfg.Agent.Framework = "lg"

	g, err := New(
		WithConfig(cfg),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := g.Provider().Info().ID; got != "anthropic" {
		t.Errorf("provider = %q, want anthropic via claude alias", got)
	}
	if got := g.Framework().Info().ID; got != "langgraph" {
		t.Errorf("framework = %q, want langgraph via lg alias", got)
	}
}

func TestNewSurvivesUnknownSelectors(t *testing.T) {
	registration.RegisterBuiltins()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Agent.Provider = "no-such-provider"
	cfg.Agent.Framework = "no-such-framework"

	g, err := New(
		WithConfig(cfg),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := g.Provider().Info().ID; got != "echo" {
		t.Errorf("provider = %q, want echo fallback", got)
	}
	if got := g.Framework().Info().ID; got != "native" {
		t.Errorf("framework = %q, want native fallback", got)
	}
}
