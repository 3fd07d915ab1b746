// Package registration wires the builtin plugin set into the registries.
// Registration is explicit: cmd binaries (and tests that want the full
// set) call RegisterBuiltins once at startup instead of relying on
// import-order init() side effects.
package registration

import (
	"github.com/universal-a2a/gateway/internal/framework/bee"
	"github.com/universal-a2a/gateway/internal/framework/crew"
	"github.com/universal-a2a/gateway/internal/framework/graph"
	"github.com/universal-a2a/gateway/internal/framework/native"
	"github.com/universal-a2a/gateway/internal/provider/anthropic"
	"github.com/universal-a2a/gateway/internal/provider/azure"
	"github.com/universal-a2a/gateway/internal/provider/echo"
	"github.com/universal-a2a/gateway/internal/provider/gemini"
	"github.com/universal-a2a/gateway/internal/provider/ollama"
	"github.com/universal-a2a/gateway/internal/provider/openai"
	"github.com/universal-a2a/gateway/internal/provider/watsonx"
)

// RegisterBuiltins registers every builtin provider and framework.
// Safe to call more than once; each package guards its own entry.
func RegisterBuiltins() {
	echo.RegisterProviderFactory()
	openai.RegisterProviderFactory()
	azure.RegisterProviderFactory()
	anthropic.RegisterProviderFactory()
	gemini.RegisterProviderFactory()
	ollama.RegisterProviderFactory()
	watsonx.RegisterProviderFactory()

	native.RegisterFrameworkFactory()
	graph.RegisterFrameworkFactory()
	crew.RegisterFrameworkFactory()
	bee.RegisterFrameworkFactory()
}
