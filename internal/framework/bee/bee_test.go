package bee

import (
	"context"
	"testing"

	"github.com/universal-a2a/gateway/internal/domain"
)

type trailingProvider struct{}

func (trailingProvider) Info() domain.Info {
	return domain.Info{ID: "trail", Ready: true, SupportsMessages: true}
}

func (trailingProvider) Generate(_ context.Context, prompt string, _ []domain.Message) (string, error) {
	return "bee says: " + prompt + "\n\n", nil
}

func TestExecuteRunsWorkflowAndTrimsTrailingNewlines(t *testing.T) {
	f := New(trailingProvider{})

	if info := f.Info(); !info.Ready || info.ID != FrameworkID {
		t.Fatalf("Info = %+v", info)
	}

	res := f.Execute(context.Background(), []domain.Message{domain.Text("user", "buzz")})
	if res.Degraded {
		t.Error("result marked degraded")
	}
	if res.Text != "bee says: buzz" {
		t.Errorf("Text = %q", res.Text)
	}
}
