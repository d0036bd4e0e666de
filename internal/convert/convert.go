// Package convert turns declared parameter types into argument-parsing
// functions. A command's signature is compiled once at registration time;
// nothing here runs reflection or lookups during an invocation.
package convert

import (
	"errors"

	"github.com/keshon/herald/internal/cmderr"
)

// Ctx is the slice of the invocation context visible to converters: the
// argument cursor plus the identity fields a converter may need to resolve
// platform objects. The engine's context implements it.
type Ctx interface {
	// NextArg peeks at the next argument without consuming it.
	NextArg() (string, bool)
	// PopArg consumes the argument last returned by NextArg. Consumption
	// is monotonic; there is no way to rewind.
	PopArg()
	// PeekArgs returns up to limit upcoming arguments without consuming.
	PeekArgs(limit int) []string
	Locale() string
	GuildID() string
	AuthorID() string
}

// Default is the declared fallback for a parameter. The zero value is the
// "no default" sentinel: a missing argument then raises cmderr.ErrMissingArg
// instead of falling back.
type Default struct {
	value any
	ok    bool
}

// NoDefault marks a parameter without a declared default.
var NoDefault = Default{}

// With declares value as a parameter default.
func With(value any) Default {
	return Default{value: value, ok: true}
}

// Get returns the declared default, ok false for NoDefault.
func (d Default) Get() (any, bool) {
	return d.value, d.ok
}

// Converter parses zero or more arguments from ctx into one value. On a
// "missing" outcome the cursor must be left untouched and def consulted:
// return the default when one is set, cmderr.ErrMissingArg otherwise.
// A value that is present but unparsable is reported as a *cmderr.Error.
type Converter func(ctx Ctx, def Default) (any, error)

// SimpleFunc parses exactly one argument.
type SimpleFunc func(arg string, ctx Ctx) (any, error)

// Simple lifts a one-argument parse function into a Converter that pops the
// argument only after a successful parse, so a failed branch (in a union,
// say) leaves the cursor where it was.
func Simple(fn SimpleFunc) Converter {
	return func(ctx Ctx, def Default) (any, error) {
		arg, ok := ctx.NextArg()
		if !ok {
			if v, ok := def.Get(); ok {
				return v, nil
			}
			return nil, cmderr.ErrMissingArg
		}
		v, err := fn(arg, ctx)
		if err != nil {
			return nil, err
		}
		ctx.PopArg()
		return v, nil
	}
}

// missing reports whether err is the missing-argument signal.
func missing(err error) bool {
	return errors.Is(err, cmderr.ErrMissingArg)
}
