package domain

import "strings"

// LastUserText returns the text of the most recent user message.
//
// The scan is lenient on purpose: the same core serves three wire shapes
// whose message structures differ slightly. Plain-string content wins; for
// part lists the first text part is used; messages with neither are skipped
// and the scan continues with older turns. Returns "" when nothing matches.
func LastUserText(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if m.Role != "user" {
			continue
		}
		if m.Content.IsSimpleText() {
			if t := strings.TrimSpace(m.Content.Text); t != "" {
				return t
			}
			continue
		}
		for _, p := range m.Content.Parts {
			if p.Type == "text" && strings.TrimSpace(p.Text) != "" {
				return strings.TrimSpace(p.Text)
			}
		}
	}
	return ""
}
