package codec

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/c360studio/semactivity/schema"
)

// Module contributes models and codec extensions for a family of document
// types. Modules are applied in order; later contributions replace earlier
// ones for the same tag, kind or Go type.
type Module interface {
	// Name identifies the module in configuration.
	Name() string

	// Register adds the module's contributions.
	Register(r *Registrar) error
}

// Registrar collects module contributions while a Codec is being built.
type Registrar struct {
	schema   *schema.Builder
	adapters map[schema.Kind]Adapter
	writers  map[reflect.Type]Writer
}

// Model adds models to the schema under construction.
func (r *Registrar) Model(models ...*schema.Model) {
	r.schema.Add(models...)
}

// Bind maps a tag to an existing factory id.
func (r *Registrar) Bind(tag, factoryID string) {
	r.schema.Bind(tag, factoryID)
}

// Adapter registers the decoder for a kind.
func (r *Registrar) Adapter(kind schema.Kind, a Adapter) {
	r.adapters[kind] = a
}

// Writer registers the encoder for a Go type.
func (r *Registrar) Writer(t reflect.Type, w Writer) {
	r.writers[t] = w
}

// Global module registry for name-based composition from configuration.
var (
	modulesMu sync.RWMutex
	modules   = make(map[string]Module)
)

// RegisterModule makes a module available by name. It is typically called
// from init.
func RegisterModule(m Module) error {
	modulesMu.Lock()
	defer modulesMu.Unlock()
	name := m.Name()
	if name == "" {
		return fmt.Errorf("register module: empty name")
	}
	if _, exists := modules[name]; exists {
		return fmt.Errorf("register module: %q already registered", name)
	}
	modules[name] = m
	return nil
}

// LookupModule returns the module registered under name.
func LookupModule(name string) (Module, bool) {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	m, ok := modules[name]
	return m, ok
}

// ModuleNames returns the registered module names, sorted.
func ModuleNames() []string {
	modulesMu.RLock()
	defer modulesMu.RUnlock()
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveModules looks up modules by name, failing on the first unknown name.
func ResolveModules(names ...string) ([]Module, error) {
	out := make([]Module, 0, len(names))
	for _, name := range names {
		m, ok := LookupModule(name)
		if !ok {
			return nil, fmt.Errorf("unknown module %q (registered: %v)", name, ModuleNames())
		}
		out = append(out, m)
	}
	return out, nil
}
