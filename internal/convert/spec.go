package convert

import (
	"fmt"

	"github.com/keshon/herald/internal/cmderr"
)

type specKind int

const (
	kindTag specKind = iota
	kindNone
	kindFunc
	kindOptional
	kindUnion
	kindGreedy
	kindRequired
)

// Spec is a declared parameter type: a registry tag or a composition of
// other specs. Specs are compiled into Converters once, at command
// registration; an invalid spec is a configuration error and never survives
// to invocation time.
type Spec struct {
	kind    specKind
	tag     string
	fn      Converter
	members []Spec
	min     int
}

// T names a registered converter by tag. T("") is the "no annotation"
// sentinel and compiles to the plain string converter.
func T(tag string) Spec {
	return Spec{kind: kindTag, tag: tag}
}

// None is the nil-type member of a union: it consumes nothing and yields the
// caller's default (or nil without one).
func None() Spec {
	return Spec{kind: kindNone}
}

// Func uses fn directly, bypassing the registry.
func Func(fn Converter) Spec {
	return Spec{kind: kindFunc, fn: fn}
}

// Optional unwraps to inner; a missing value uses the parameter default
// rather than raising an error.
func Optional(inner Spec) Spec {
	return Spec{kind: kindOptional, members: []Spec{inner}}
}

// Union tries each member in declared order; the first member that neither
// raises missing-argument nor a conversion error wins.
func Union(members ...Spec) Spec {
	return Spec{kind: kindUnion, members: members}
}

// Greedy repeats inner for as long as it succeeds and yields the collected
// values as one []any. At least one success is required, otherwise the
// parameter default applies.
func Greedy(inner Spec) Spec {
	return Spec{kind: kindGreedy, members: []Spec{inner}}
}

// Required declares the minimum successful-conversion count of a variadic
// parameter. Valid only in a star slot.
func Required(min int, inner Spec) Spec {
	return Spec{kind: kindRequired, members: []Spec{inner}, min: min}
}

// Compile resolves spec into a Converter. Errors here are configuration
// errors: surface them at startup, never at invocation time.
func (r *Registry) Compile(spec Spec) (Converter, error) {
	switch spec.kind {
	case kindTag:
		if spec.tag == "" {
			return r.lookup("str")
		}
		return r.lookup(spec.tag)
	case kindNone:
		return noneConverter, nil
	case kindFunc:
		if spec.fn == nil {
			return nil, fmt.Errorf("nil converter func")
		}
		return spec.fn, nil
	case kindOptional:
		return r.Compile(spec.members[0])
	case kindUnion:
		return r.compileUnion(spec.members)
	case kindGreedy:
		inner, err := r.Compile(spec.members[0])
		if err != nil {
			return nil, err
		}
		return greedyConverter(inner), nil
	case kindRequired:
		return nil, fmt.Errorf("Required spec is only valid for a variadic parameter")
	default:
		return nil, fmt.Errorf("unknown spec kind %d", spec.kind)
	}
}

// CompileStar resolves the spec of a variadic parameter, returning the
// element converter and the minimum number of required elements. A bare spec
// has no minimum; Required(n, inner) sets one.
func (r *Registry) CompileStar(spec Spec) (Converter, int, error) {
	if spec.kind == kindRequired {
		if spec.min < 1 {
			return nil, 0, fmt.Errorf("Required minimum must be at least 1, got %d", spec.min)
		}
		conv, err := r.Compile(spec.members[0])
		return conv, spec.min, err
	}
	conv, err := r.Compile(spec)
	return conv, 0, err
}

// noneConverter consumes nothing and resolves to the default, or nil
// without one.
func noneConverter(_ Ctx, def Default) (any, error) {
	if v, ok := def.Get(); ok {
		return v, nil
	}
	return nil, nil
}

func (r *Registry) compileUnion(members []Spec) (Converter, error) {
	funcs := make([]Converter, len(members))
	for i, m := range members {
		if m.kind == kindNone {
			funcs[i] = nil
			continue
		}
		fn, err := r.Compile(m)
		if err != nil {
			return nil, err
		}
		funcs[i] = fn
	}

	return func(ctx Ctx, def Default) (any, error) {
		for _, fn := range funcs {
			if fn == nil {
				// None member: stop trying and use the default.
				if v, ok := def.Get(); ok {
					return v, nil
				}
				return nil, nil
			}
			v, err := fn(ctx, NoDefault)
			if err == nil {
				return v, nil
			}
			if missing(err) {
				// Too few arguments short-circuits the whole union to
				// the caller's default.
				if dv, ok := def.Get(); ok {
					return dv, nil
				}
				return nil, err
			}
			if _, keyed := cmderr.Keyed(err); keyed {
				continue // conversion failed, try the next branch
			}
			return nil, err
		}
		return nil, cmderr.New("UNION_RESOLVE_error")
	}, nil
}

// greedyConverter repeats inner until it signals missing or a conversion
// error. The successes so far win over a trailing failure; with no success
// at all the caller's default applies, or the failure propagates.
func greedyConverter(inner Converter) Converter {
	return func(ctx Ctx, def Default) (any, error) {
		var out []any
		for {
			v, err := inner(ctx, NoDefault)
			if err == nil {
				out = append(out, v)
				continue
			}
			if _, keyed := cmderr.Keyed(err); !keyed && !missing(err) {
				return nil, err
			}
			if len(out) > 0 {
				return out, nil
			}
			if dv, ok := def.Get(); ok {
				return dv, nil
			}
			return nil, err
		}
	}
}
