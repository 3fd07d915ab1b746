package domain

import "context"

// Provider is a pluggable text-generation backend.
//
// Generate is the single entry point: prompt carries the extracted user text,
// messages the full conversation (providers that do not support history may
// ignore it). Implementations that wrap inherently blocking clients must
// offload themselves (see dispatch.Offload) so Generate never stalls the
// caller's scheduler; the dispatcher does not branch on calling convention.
//
// A not-ready provider must not return an error for the not-ready case; it
// degrades to a diagnostic string instead. Deep backend failures may return
// an error, which the dispatch shim converts to a bracketed payload.
type Provider interface {
	Info() Info
	Generate(ctx context.Context, prompt string, messages []Message) (string, error)
}

// Result is the outcome of a framework execution. The wire contract is
// always a plain string (Text); Degraded plus Reason is the structured
// side-channel for callers that want to distinguish fallback answers.
type Result struct {
	Text     string
	Degraded bool
	Reason   string
}

// Ok wraps a normal answer.
func Ok(text string) Result { return Result{Text: text} }

// DegradedResult wraps a fallback answer with the reason it degraded.
func DegradedResult(text, reason string) Result {
	return Result{Text: text, Degraded: true, Reason: reason}
}

// Framework is a pluggable orchestration strategy wrapping exactly one
// Provider, supplied at construction and never swapped.
//
// Execute never fails: orchestration errors are encoded in the returned
// Result (bracket-tagged text plus the Degraded flag), not raised.
type Framework interface {
	Info() Info
	Execute(ctx context.Context, messages []Message) Result
}
