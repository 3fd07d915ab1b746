package crew

import (
	"context"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

type recordingProvider struct {
	gotMessages []domain.Message
}

func (p *recordingProvider) Info() domain.Info {
	return domain.Info{ID: "rec", Ready: true, SupportsMessages: true}
}

func (p *recordingProvider) Generate(_ context.Context, prompt string, messages []domain.Message) (string, error) {
	p.gotMessages = messages
	return "crew says: " + prompt, nil
}

func TestExecuteInjectsAgentRole(t *testing.T) {
	p := &recordingProvider{}
	f := New(p)

	res := f.Execute(context.Background(), []domain.Message{domain.Text("user", "plan a trip")})
	if res.Text != "crew says: plan a trip" {
		t.Errorf("Text = %q", res.Text)
	}
	if len(p.gotMessages) != 2 || p.gotMessages[0].Role != "system" {
		t.Fatalf("messages = %+v, want injected system turn first", p.gotMessages)
	}
}

func TestExecuteKeepsExistingSystemTurn(t *testing.T) {
	p := &recordingProvider{}
	f := New(p)

	f.Execute(context.Background(), []domain.Message{
		domain.Text("system", "You are a pirate."),
		domain.Text("user", "ahoy"),
	})
	if len(p.gotMessages) != 2 {
		t.Fatalf("messages = %+v, want original two turns", p.gotMessages)
	}
	if got := p.gotMessages[0].Content.String(); got != "You are a pirate." {
		t.Errorf("system turn = %q", got)
	}
}
