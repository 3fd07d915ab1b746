// Package provider contains the provider registry: a compile-time factory
// table with alias resolution, extension merging, and a fallback chain that
// guarantees a usable Provider for any selector.
//
// # Adding a new provider
//
// Implement domain.Provider and expose an explicit registration function
// that calls provider.RegisterFactory. Wire that function from
// registration.RegisterBuiltins (or tests) so registration is explicit
// instead of relying on init() side effects.
package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/universal-a2a/gateway/internal/domain"
)

// Factory builds a provider instance. A factory may fail; the registry
// wraps every invocation so failures degrade to not-ready placeholders.
type Factory func() (domain.Provider, error)

// Source tags where a registry entry came from.
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceExtension Source = "extension"
)

// Builtin factory table, shared by all Registry values.
var (
	factoryMu  sync.RWMutex
	factoryMap = make(map[string]Factory)
)

// RegisterFactory registers a builtin provider factory.
// Panics if the id is empty, the factory nil, or the id already taken;
// builtin registration is a startup-time programming contract.
func RegisterFactory(id string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if id == "" {
		panic("provider factory id cannot be empty")
	}
	if f == nil {
		panic(fmt.Sprintf("provider factory %q cannot be nil", id))
	}
	if _, exists := factoryMap[id]; exists {
		panic(fmt.Sprintf("provider factory %q already registered", id))
	}
	factoryMap[id] = f
}

// IsRegistered returns true if a builtin provider id is registered.
func IsRegistered(id string) bool {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	_, ok := factoryMap[id]
	return ok
}

// ListBuiltinIDs returns all registered builtin ids sorted.
func ListBuiltinIDs() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	ids := make([]string, 0, len(factoryMap))
	for id := range factoryMap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ClearFactories removes all builtin factories (for testing only).
func ClearFactories() {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factoryMap = make(map[string]Factory)
}

// aliases maps accepted synonyms to canonical provider ids. Canonical ids
// map to themselves so Resolve is idempotent.
var aliases = map[string]string{
	"echo":         "echo",
	"openai":       "openai",
	"azure":        "azure_openai",
	"azure-openai": "azure_openai",
	"azure_openai": "azure_openai",
	"watsonx":      "watsonx",
	"ollama":       "ollama",
	"anthropic":    "anthropic",
	"claude":       "anthropic",
	"gemini":       "gemini",
	"google":       "gemini",
	"bedrock":      "bedrock",
}

// Resolve normalizes a selector (trim, lower-case) and applies the alias
// table. Unknown selectors pass through normalized.
func Resolve(selector string) string {
	want := strings.ToLower(strings.TrimSpace(selector))
	if canonical, ok := aliases[want]; ok {
		return canonical
	}
	return want
}

// Aliases returns a copy of the alias table.
func Aliases() map[string]string {
	out := make(map[string]string, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// Registry resolves selectors to provider instances. It snapshots nothing:
// listings re-derive from the builtin table plus the registered extensions,
// without invoking any factory. The only mutable state after startup is the
// memoized default instance, guarded by a mutex.
type Registry struct {
	defaultSelector string
	extensions      map[string]Factory

	mu     sync.Mutex
	cached domain.Provider
}

// NewRegistry creates a registry whose no-selector builds resolve
// defaultSelector (falling back to "echo" when empty).
func NewRegistry(defaultSelector string) *Registry {
	if strings.TrimSpace(defaultSelector) == "" {
		defaultSelector = "echo"
	}
	return &Registry{
		defaultSelector: defaultSelector,
		extensions:      make(map[string]Factory),
	}
}

// RegisterExtension adds an externally contributed factory. Extensions take
// priority over builtins on id collision; a later extension with the same
// id wins (last-registered wins).
func (r *Registry) RegisterExtension(id string, f Factory) {
	id = Resolve(id)
	if id == "" || f == nil {
		return
	}
	r.extensions[id] = f
}

// List reports discovered provider ids and their source. Extension entries
// shadow builtins with the same id. No factory is invoked.
func (r *Registry) List() map[string]Source {
	out := make(map[string]Source)
	for _, id := range ListBuiltinIDs() {
		out[id] = SourceBuiltin
	}
	for id := range r.extensions {
		out[id] = SourceExtension
	}
	return out
}

// lookup finds the factory for a canonical id, extensions first.
func (r *Registry) lookup(id string) (Factory, bool) {
	if f, ok := r.extensions[id]; ok {
		return f, true
	}
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factoryMap[id]
	return f, ok
}

// anyFactory returns an arbitrary registered factory, preferring builtins
// in sorted order for determinism.
func (r *Registry) anyFactory() (string, Factory, bool) {
	if ids := ListBuiltinIDs(); len(ids) > 0 {
		f, _ := r.lookup(ids[0])
		return ids[0], f, true
	}
	ids := make([]string, 0, len(r.extensions))
	for id := range r.extensions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > 0 {
		return ids[0], r.extensions[ids[0]], true
	}
	return "", nil, false
}

// Build resolves a selector to a provider instance. An empty selector uses
// the registry's configured default. Build never returns nil and never
// fails: unknown ids fall back to "echo", then to any registered provider,
// then to a not-ready placeholder.
func (r *Registry) Build(selector string) domain.Provider {
	if strings.TrimSpace(selector) == "" {
		selector = r.defaultSelector
	}
	want := Resolve(selector)

	if f, ok := r.lookup(want); ok {
		return safeBuild(want, f)
	}
	if f, ok := r.lookup("echo"); ok {
		return safeBuild("echo", f)
	}
	if id, f, ok := r.anyFactory(); ok {
		return safeBuild(id, f)
	}
	return NewNotReadyProvider("unknown", "No providers discovered")
}

// Default returns the memoized provider for the configured default
// selector, building it at most once under the registry lock so concurrent
// first requests cannot construct duplicates.
func (r *Registry) Default() domain.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		r.cached = r.Build("")
	}
	return r.cached
}

// Fresh builds a new default-selector instance, bypassing and replacing
// the memoized one.
func (r *Registry) Fresh() domain.Provider {
	p := r.Build("")
	r.mu.Lock()
	r.cached = p
	r.mu.Unlock()
	return p
}

// safeBuild invokes a factory, converting errors, nil results, and panics
// into not-ready placeholders. One misbehaving plugin can never take down
// the registry or the request that touched it.
func safeBuild(id string, f Factory) (p domain.Provider) {
	defer func() {
		if r := recover(); r != nil {
			p = NewNotReadyProvider(id, fmt.Sprintf("factory panicked: %v", r))
		}
	}()

	built, err := f()
	if err != nil {
		return NewNotReadyProvider(id, err.Error())
	}
	if built == nil {
		return NewNotReadyProvider(id, "factory returned no provider")
	}
	return built
}
