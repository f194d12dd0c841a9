package suit

import (
	"fmt"
	"sort"
	"sync"
)

// Variant names.
const (
	ShapeFirst   = "shape-first"
	GeometryOnly = "geometry-only"
	TemplateOnly = "template-only"
)

// Factory builds a recognizer from its dependencies.
type Factory func(Deps) Recognizer

// Registry of known suit recognizer variants
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register adds a variant to the registry.
func Register(name string, f Factory) {
	registryMu.Lock()
	registry[name] = f
	registryMu.Unlock()
}

// Unregister removes a variant from the registry.
func Unregister(name string) {
	registryMu.Lock()
	delete(registry, name)
	registryMu.Unlock()
}

// New builds the named variant. An empty name selects shape-first.
func New(variant string, deps Deps) (Recognizer, error) {
	if variant == "" {
		variant = ShapeFirst
	}
	registryMu.RLock()
	f, ok := registry[variant]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown suit variant %q", variant)
	}
	return f(deps.withDefaults()), nil
}

// Variants returns all registered variant names.
func Variants() []string {
	registryMu.RLock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	registryMu.RUnlock()
	sort.Strings(names)
	return names
}

func init() {
	Register(ShapeFirst, func(d Deps) Recognizer { return &recognizer{deps: d, mode: shapeFirst} })
	Register(GeometryOnly, func(d Deps) Recognizer { return &recognizer{deps: d, mode: geometryOnly} })
	Register(TemplateOnly, func(d Deps) Recognizer { return &recognizer{deps: d, mode: templateOnly} })
}
