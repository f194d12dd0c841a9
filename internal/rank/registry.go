package rank

import (
	"fmt"
	"sort"
	"sync"
)

// Variant names.
const (
	TemplateFirst = "template-first"
	OCRFirst      = "ocr-first"
	TemplateOnly  = "template-only"
)

// Factory builds a recognizer from its dependencies.
type Factory func(Deps) Recognizer

// Registry of known rank recognizer variants
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

// New builds the named variant. An empty name selects template-first.
func New(variant string, deps Deps) (Recognizer, error) {
	if variant == "" {
		variant = TemplateFirst
	}
	registryMu.RLock()
	f, ok := registry[variant]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rank variant %q", variant)
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
	Register(TemplateFirst, func(d Deps) Recognizer { return &recognizer{deps: d, order: templateFirst} })
	Register(OCRFirst, func(d Deps) Recognizer { return &recognizer{deps: d, order: ocrFirst} })
	Register(TemplateOnly, func(d Deps) Recognizer { return &recognizer{deps: d, order: templateOnly} })
}
