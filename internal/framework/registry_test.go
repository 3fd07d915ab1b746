package framework

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

type staticProvider struct {
	id   string
	text string
}

func (p *staticProvider) Info() domain.Info {
	return domain.Info{ID: p.id, Name: p.id, Ready: true, SupportsMessages: true}
}

func (p *staticProvider) Generate(_ context.Context, prompt string, _ []domain.Message) (string, error) {
	if p.text != "" {
		return p.text, nil
	}
	return "echo:" + prompt, nil
}

type staticFramework struct {
	id string
}

func (f *staticFramework) Info() domain.Info {
	return domain.Info{ID: f.id, Name: f.id, Ready: true}
}

func (f *staticFramework) Execute(context.Context, []domain.Message) domain.Result {
	return domain.Ok("from " + f.id)
}

func register(t *testing.T, id string, fw domain.Framework) {
	t.Helper()
	RegisterFactory(id, func(domain.Provider) (domain.Framework, error) {
		return fw, nil
	})
}

func TestResolveAliases(t *testing.T) {
	cases := map[string]string{
		"direct":          "native",
		"  Native  ":      "native",
		"LG":              "langgraph",
		"crew":            "crewai",
		"bee.ai":          "beeai",
		"BeeAI_Framework": "beeai",
		"mystery":         "mystery",
	}
	for in, want := range cases {
		if got := Resolve(in); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", in, got, want)
		}
	}
	for alias, canonical := range Aliases() {
		if got := Resolve(canonical); got != canonical {
			t.Errorf("Resolve(%q) = %q, alias table not idempotent for %q", canonical, got, alias)
		}
	}
}

func TestBuildResolvesAliasesAndFallsBackToNative(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)
	register(t, "native", &staticFramework{id: "native"})
	register(t, "langgraph", &staticFramework{id: "langgraph"})

	r := NewRegistry("")
	p := &staticProvider{id: "p"}

	if got := r.Build("lg", p).Info().ID; got != "langgraph" {
		t.Errorf(`Build("lg") = %q, want langgraph`, got)
	}
	if got := r.Build("no-such-framework", p).Info().ID; got != "native" {
		t.Errorf("unknown selector built %q, want native fallback", got)
	}
	if got := r.Build("", p).Info().ID; got != "native" {
		t.Errorf("empty selector built %q, want native", got)
	}
}

func TestBuildFallsBackToAnyRegistered(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)
	register(t, "beeai", &staticFramework{id: "beeai"})

	r := NewRegistry("native")
	if got := r.Build("native", &staticProvider{id: "p"}).Info().ID; got != "beeai" {
		t.Errorf("Build without native = %q, want beeai", got)
	}
}

func TestBuildEmptyRegistryReturnsPlaceholderThatStillAnswers(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)

	r := NewRegistry("")
	fw := r.Build("anything", &staticProvider{id: "p"})

	info := fw.Info()
	if info.ID != "unknown" || info.Ready {
		t.Fatalf("Info = %+v, want not-ready unknown", info)
	}
	if info.Reason != "No frameworks discovered" {
		t.Errorf("Reason = %q", info.Reason)
	}

	res := fw.Execute(context.Background(), []domain.Message{domain.Text("user", "hi")})
	if !res.Degraded {
		t.Error("placeholder result not marked degraded")
	}
	if res.Text != "echo:hi" {
		t.Errorf("placeholder answered %q, want provider fallback echo:hi", res.Text)
	}
}

func TestFailingAndPanickingFactoriesBecomePlaceholders(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)
	RegisterFactory("broken", func(domain.Provider) (domain.Framework, error) {
		return nil, errors.New("no orchestrator binary")
	})
	RegisterFactory("explosive", func(domain.Provider) (domain.Framework, error) {
		panic("construction blew up")
	})
	register(t, "native", &staticFramework{id: "native"})

	r := NewRegistry("")
	p := &staticProvider{id: "p"}

	broken := r.Build("broken", p).Info()
	if broken.Ready || broken.Reason != "no orchestrator binary" {
		t.Errorf("broken Info = %+v", broken)
	}
	explosive := r.Build("explosive", p).Info()
	if explosive.Ready || !strings.Contains(explosive.Reason, "construction blew up") {
		t.Errorf("explosive Info = %+v", explosive)
	}
	if got := r.Build("native", p).Info().ID; got != "native" {
		t.Errorf("healthy sibling = %q after broken builds", got)
	}
}

func TestExtensionsOverrideBuiltins(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)
	register(t, "native", &staticFramework{id: "native"})

	r := NewRegistry("")
	r.RegisterExtension("native", func(domain.Provider) (domain.Framework, error) {
		return &staticFramework{id: "native-ext"}, nil
	})

	if got := r.Build("native", &staticProvider{id: "p"}).Info().ID; got != "native-ext" {
		t.Errorf("Build = %q, want extension override", got)
	}
	if src := r.List()["native"]; src != SourceExtension {
		t.Errorf("List source = %q, want extension", src)
	}
}

func TestDefaultMemoizesAndFreshRebuilds(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)

	built := 0
	RegisterFactory("native", func(domain.Provider) (domain.Framework, error) {
		built++
		return &staticFramework{id: fmt.Sprintf("native-%d", built)}, nil
	})

	r := NewRegistry("native")
	p := &staticProvider{id: "p"}

	first := r.Default(p)
	second := r.Default(p)
	if first != second {
		t.Error("Default returned distinct instances")
	}
	if built != 1 {
		t.Errorf("built = %d after two Default calls", built)
	}
	if fresh := r.Fresh(p); fresh == first {
		t.Error("Fresh returned the memoized instance")
	}
	if built != 2 {
		t.Errorf("built = %d after Fresh", built)
	}
}
