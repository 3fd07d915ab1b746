package native

import (
	"context"
	"errors"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

type fakeProvider struct {
	err error
}

func (p *fakeProvider) Info() domain.Info {
	return domain.Info{ID: "fake", Ready: true, SupportsMessages: true}
}

func (p *fakeProvider) Generate(_ context.Context, prompt string, _ []domain.Message) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return "reply to " + prompt, nil
}

func TestExecutePassesLastUserTurn(t *testing.T) {
	f := New(&fakeProvider{})
	res := f.Execute(context.Background(), []domain.Message{
		domain.Text("user", "first"),
		domain.Text("assistant", "ignored"),
		domain.Text("user", "second"),
	})
	if res.Degraded {
		t.Error("result marked degraded")
	}
	if res.Text != "reply to second" {
		t.Errorf("Text = %q", res.Text)
	}
}

func TestExecuteConvertsProviderError(t *testing.T) {
	f := New(&fakeProvider{err: errors.New("backend down")})
	res := f.Execute(context.Background(), []domain.Message{domain.Text("user", "hi")})
	if res.Text != "[framework/provider error] backend down" {
		t.Errorf("Text = %q", res.Text)
	}
}
