package transform

import (
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
)

// Names of the bundled transforms.
const (
	Stylus       = "stylus"
	Sass         = "sass"
	Less         = "less"
	CoffeeScript = "coffeescript"
)

type builtin struct {
	binding domain.Binding
	argv    []string
}

var builtins = []builtin{
	{
		binding: domain.Binding{Name: Stylus, Suffix: ".css", SourceExt: ".styl"},
		argv:    []string{"stylus", "--print"},
	},
	{
		binding: domain.Binding{Name: Sass, Suffix: ".css", SourceExt: ".sass"},
		argv:    []string{"sass", "--stdin", "--indented", "--no-source-map"},
	},
	{
		binding: domain.Binding{Name: Less, Suffix: ".css", SourceExt: ".less"},
		argv:    []string{"lessc", "-"},
	},
	{
		binding: domain.Binding{Name: CoffeeScript, Suffix: ".js", SourceExt: ".coffee"},
		argv:    []string{"coffee", "--stdio", "--print", "--compile"},
	},
}

// Builtins returns the definitions of the bundled compiler transforms.
// overrides replaces the default command line of a transform by name.
func Builtins(executor ports.Executor, overrides map[string][]string) []Definition {
	defs := make([]Definition, 0, len(builtins))
	for _, b := range builtins {
		argv := b.argv
		if o, ok := overrides[b.binding.Name]; ok && len(o) > 0 {
			argv = o
		}
		defs = append(defs, Definition{
			Binding: b.binding,
			New:     NewCommand(b.binding.Name, argv, executor),
		})
	}
	return defs
}

// NewDefaultRegistry creates a registry holding the bundled transforms.
func NewDefaultRegistry(executor ports.Executor, overrides map[string][]string) (*Registry, error) {
	r := NewRegistry()
	for _, def := range Builtins(executor, overrides) {
		if err := r.Register(def); err != nil {
			return nil, err
		}
	}
	return r, nil
}
