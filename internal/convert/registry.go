package convert

import "fmt"

// Registry maps type tags to converters. The process-wide registry is
// populated at boot (builtins in this package, platform converters by the
// adapter) and read-only afterwards.
type Registry struct {
	byTag map[string]Converter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTag: make(map[string]Converter)}
}

// Register binds tag to a converter. Registering a tag twice is a
// configuration error and panics: it must surface at startup.
func (r *Registry) Register(tag string, fn Converter) {
	if tag == "" {
		panic("convert: empty converter tag")
	}
	if _, dup := r.byTag[tag]; dup {
		panic(fmt.Sprintf("convert: duplicate converter tag %q", tag))
	}
	r.byTag[tag] = fn
}

// RegisterSimple binds tag to a one-argument parse function.
func (r *Registry) RegisterSimple(tag string, fn SimpleFunc) {
	r.Register(tag, Simple(fn))
}

func (r *Registry) lookup(tag string) (Converter, error) {
	fn, ok := r.byTag[tag]
	if !ok {
		return nil, fmt.Errorf("no converter registered for type %q", tag)
	}
	return fn, nil
}

var global = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return global
}
