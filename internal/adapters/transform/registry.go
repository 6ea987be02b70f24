// Package transform holds the registry of named transforms and the bundled compiler adapters.
package transform

import (
	"context"
	"slices"
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Factory constructs a transform. It is called at most once per registry entry.
type Factory func() (ports.Transform, error)

// Definition describes a transform that can be enabled by name.
type Definition struct {
	// Binding maps request paths to source files for this transform.
	Binding domain.Binding
	// New constructs the transform on first use.
	New Factory
}

var _ ports.TransformRegistry = (*Registry)(nil)

type entry struct {
	binding domain.Binding
	get     func() (ports.Transform, error)
}

// Registry maps transform names to their bindings and lazily constructed transforms.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register adds a definition. Names are unique within a registry.
// A binding whose suffix equals its source extension is rejected, since the
// artifact would overwrite its own source when dest and src coincide.
func (r *Registry) Register(def Definition) error {
	b := def.Binding
	if b.Name == "" || b.Suffix == "" || b.SourceExt == "" || b.Suffix == b.SourceExt || def.New == nil {
		return zerr.With(domain.ErrInvalidBinding, "name", b.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[b.Name]; ok {
		return zerr.With(domain.ErrTransformExists, "name", b.Name)
	}

	r.entries[b.Name] = &entry{
		binding: b,
		get:     sync.OnceValues(def.New),
	}
	r.order = append(r.order, b.Name)
	return nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Binding returns the binding registered under name.
func (r *Registry) Binding(name string) (domain.Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return domain.Binding{}, false
	}
	return e.binding, true
}

// Transform returns the transform registered under name, constructing it on first use.
// Concurrent first calls share one construction, and a construction error is
// returned to every later caller.
func (r *Registry) Transform(name string) (ports.Transform, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, zerr.With(domain.ErrUnknownTransform, "name", name)
	}
	return e.get()
}

// Enabled returns the bindings of the named transforms in the given order.
func (r *Registry) Enabled(names []string) ([]domain.Binding, error) {
	if len(names) == 0 {
		return nil, domain.ErrNothingEnabled
	}

	bindings := make([]domain.Binding, 0, len(names))
	for _, name := range names {
		b, ok := r.Binding(name)
		if !ok {
			return nil, zerr.With(domain.ErrUnknownTransform, "name", name)
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

// Func adapts a plain function to ports.Transform.
type Func func(ctx context.Context, source []byte) ([]byte, error)

// Compile calls f.
func (f Func) Compile(ctx context.Context, source []byte) ([]byte, error) {
	return f(ctx, source)
}
