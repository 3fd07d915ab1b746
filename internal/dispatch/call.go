package dispatch

import (
	"context"
	"fmt"

	"github.com/universal-a2a/gateway/internal/domain"
)

// CallProvider invokes provider.Generate exactly once and always produces a
// usable string. Backend errors and panics are converted into the bracketed
// diagnostic payload instead of propagating, so frameworks and the HTTP
// surface never have to handle a provider exception.
func CallProvider(ctx context.Context, p domain.Provider, prompt string, messages []domain.Message) (text string) {
	if p == nil {
		return "[framework/provider error] no provider"
	}

	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("[framework/provider error] %v", r)
		}
	}()

	out, err := p.Generate(ctx, prompt, messages)
	if err != nil {
		return fmt.Sprintf("[framework/provider error] %v", err)
	}
	return out
}
