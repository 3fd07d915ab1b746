package graph

import (
	"context"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

type recordingProvider struct {
	gotPrompt string
}

func (p *recordingProvider) Info() domain.Info {
	return domain.Info{ID: "rec", Ready: true, SupportsMessages: true}
}

func (p *recordingProvider) Generate(_ context.Context, prompt string, _ []domain.Message) (string, error) {
	p.gotPrompt = prompt
	return "graph says: " + prompt, nil
}

func TestExecuteRunsGraphNodes(t *testing.T) {
	p := &recordingProvider{}
	f := New(p)

	if info := f.Info(); !info.Ready || info.Reason != "" {
		t.Fatalf("Info = %+v", info)
	}

	res := f.Execute(context.Background(), []domain.Message{
		domain.Text("user", "route me"),
	})
	if res.Degraded {
		t.Error("result marked degraded")
	}
	if res.Text != "graph says: route me" {
		t.Errorf("Text = %q", res.Text)
	}
	if p.gotPrompt != "route me" {
		t.Errorf("extract node passed %q to generate node", p.gotPrompt)
	}
}

func TestExecutePanickingProviderDegradesToPayload(t *testing.T) {
	f := New(panicProvider{})
	res := f.Execute(context.Background(), []domain.Message{domain.Text("user", "hi")})
	// The dispatch shim absorbs the panic, so the graph completes with
	// the bracketed payload rather than surfacing a pipeline error.
	if res.Text != "[framework/provider error] kaboom" {
		t.Errorf("Text = %q", res.Text)
	}
}

type panicProvider struct{}

func (panicProvider) Info() domain.Info { return domain.Info{ID: "panic", Ready: true} }

func (panicProvider) Generate(context.Context, string, []domain.Message) (string, error) {
	panic("kaboom")
}
