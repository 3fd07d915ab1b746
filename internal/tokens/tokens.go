// Package tokens counts prompt and completion tokens for the
// chat-completions surface.
package tokens

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// Count returns the token count of text under the cl100k encoding, the
// common denominator across the served model names. Count failures
// yield zero; usage numbers are advisory, never load-bearing.
func Count(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec == nil || text == "" {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
