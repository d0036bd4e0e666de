package convert

import (
	"strconv"
	"time"

	"github.com/keshon/herald/internal/cmderr"
)

// Builtin converters for base types. Registered on the global registry at
// package load; adapters add their platform types (member, channel) at boot.
func init() {
	global.RegisterSimple("str", func(arg string, _ Ctx) (any, error) {
		return arg, nil
	})

	global.RegisterSimple("int", func(arg string, _ Ctx) (any, error) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, cmderr.New("INT_RESOLVE_error")
		}
		return n, nil
	})

	global.RegisterSimple("float", func(arg string, _ Ctx) (any, error) {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, cmderr.New("FLOAT_RESOLVE_error")
		}
		return f, nil
	})

	global.RegisterSimple("duration", func(arg string, _ Ctx) (any, error) {
		d, err := time.ParseDuration(arg)
		if err != nil {
			return nil, cmderr.New("DURATION_RESOLVE_error")
		}
		return d, nil
	})

	global.Register("none", noneConverter)
}
