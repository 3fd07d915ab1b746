// Package framework contains the orchestration framework registry. It
// mirrors the provider registry: a compile-time factory table with alias
// resolution, extension merging, and a fallback chain that guarantees a
// usable Framework for any selector. Framework factories additionally
// receive the provider they should orchestrate.
package framework

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/universal-a2a/gateway/internal/domain"
)

// Factory builds a framework instance around a provider.
type Factory func(p domain.Provider) (domain.Framework, error)

// Source tags where a registry entry came from.
type Source string

const (
	SourceBuiltin   Source = "builtin"
	SourceExtension Source = "extension"
)

var (
	factoryMu  sync.RWMutex
	factoryMap = make(map[string]Factory)
)

// RegisterFactory registers a builtin framework factory.
// Panics if the id is empty, the factory nil, or the id already taken.
func RegisterFactory(id string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if id == "" {
		panic("framework factory id cannot be empty")
	}
	if f == nil {
		panic(fmt.Sprintf("framework factory %q cannot be nil", id))
	}
	if _, exists := factoryMap[id]; exists {
		panic(fmt.Sprintf("framework factory %q already registered", id))
	}
	factoryMap[id] = f
}

// IsRegistered returns true if a builtin framework id is registered.
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

// aliases maps accepted synonyms to canonical framework ids. Canonical
// ids map to themselves so Resolve is idempotent.
var aliases = map[string]string{
	"native":          "native",
	"direct":          "native",
	"langgraph":       "langgraph",
	"lg":              "langgraph",
	"crewai":          "crewai",
	"crew":            "crewai",
	"beeai":           "beeai",
	"bee.ai":          "beeai",
	"beeai_framework": "beeai",
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

// Registry resolves selectors to framework instances bound to a provider.
type Registry struct {
	defaultSelector string
	extensions      map[string]Factory

	mu     sync.Mutex
	cached domain.Framework
}

// NewRegistry creates a registry whose no-selector builds resolve
// defaultSelector (falling back to "native" when empty).
func NewRegistry(defaultSelector string) *Registry {
	if strings.TrimSpace(defaultSelector) == "" {
		defaultSelector = "native"
	}
	return &Registry{
		defaultSelector: defaultSelector,
		extensions:      make(map[string]Factory),
	}
}

// RegisterExtension adds an externally contributed factory. Extensions
// take priority over builtins on id collision; last-registered wins.
func (r *Registry) RegisterExtension(id string, f Factory) {
	id = Resolve(id)
	if id == "" || f == nil {
		return
	}
	r.extensions[id] = f
}

// List reports discovered framework ids and their source. Extension
// entries shadow builtins with the same id. No factory is invoked.
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

func (r *Registry) lookup(id string) (Factory, bool) {
	if f, ok := r.extensions[id]; ok {
		return f, true
	}
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factoryMap[id]
	return f, ok
}

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

// Build resolves a selector to a framework around the given provider. An
// empty selector uses the registry's configured default. Build never
// returns nil and never fails: unknown ids fall back to "native", then
// to any registered framework, then to a not-ready placeholder.
func (r *Registry) Build(selector string, p domain.Provider) domain.Framework {
	if strings.TrimSpace(selector) == "" {
		selector = r.defaultSelector
	}
	want := Resolve(selector)

	if f, ok := r.lookup(want); ok {
		return safeBuild(want, f, p)
	}
	if f, ok := r.lookup("native"); ok {
		return safeBuild("native", f, p)
	}
	if id, f, ok := r.anyFactory(); ok {
		return safeBuild(id, f, p)
	}
	return NewNotReadyFramework("unknown", "No frameworks discovered", p)
}

// Default returns the memoized framework for the configured default
// selector, built around the given provider at most once.
func (r *Registry) Default(p domain.Provider) domain.Framework {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cached == nil {
		r.cached = r.Build("", p)
	}
	return r.cached
}

// Fresh builds a new default-selector instance, bypassing and replacing
// the memoized one.
func (r *Registry) Fresh(p domain.Provider) domain.Framework {
	fw := r.Build("", p)
	r.mu.Lock()
	r.cached = fw
	r.mu.Unlock()
	return fw
}

// safeBuild invokes a factory, converting errors, nil results, and panics
// into not-ready placeholders that still answer through the provider.
func safeBuild(id string, f Factory, p domain.Provider) (fw domain.Framework) {
	defer func() {
		if r := recover(); r != nil {
			fw = NewNotReadyFramework(id, fmt.Sprintf("factory panicked: %v", r), p)
		}
	}()

	built, err := f(p)
	if err != nil {
		return NewNotReadyFramework(id, err.Error(), p)
	}
	if built == nil {
		return NewNotReadyFramework(id, "factory returned no framework", p)
	}
	return built
}
