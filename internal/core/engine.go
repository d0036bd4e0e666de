package core

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/pkg/util"
)

// LineSource serves localized strings and command name tables. The lang
// store implements it; tests use in-memory maps.
type LineSource interface {
	// Line returns the string under key in the table of the command with
	// the given qualified id (empty id addresses the root table), for the
	// given locale. It returns an error when the key is absent so the
	// engine can try alternate keys and walk the ancestor chain.
	Line(qualifiedID, key, locale string) (string, error)
	// Names returns every localized name and alias of the command with the
	// given qualified id, across all loaded locales.
	Names(qualifiedID string) []LocalizedName
}

// LocalizedName is one (locale, name) pair a command answers to.
type LocalizedName struct {
	Locale string
	Name   string
}

// Observer runs after every invocation, successful or not. blocked is the
// auth entry that denied the command, nil when none did.
type Observer func(ctx *Context, blocked *Auth)

// Engine ties tokenization, routing, auth evaluation and argument binding
// into one per-message state machine. Registration happens at boot; after
// that the tree and registry are read-only and invocations from any number
// of goroutines share them safely.
type Engine struct {
	root      *Node
	registry  *convert.Registry
	lines     LineSource
	toggle    Predicate
	owners    map[string]struct{}
	observers []Observer
}

// Options configures a new engine.
type Options struct {
	Registry *convert.Registry
	Lines    LineSource
	// Toggle is the predicate attached first to every registered node. It
	// is constructed once at boot and passed in here; there is no ambient
	// global beyond this reference.
	Toggle Predicate
	// Owners hold the override that bypasses failed auth checks.
	Owners []string
}

// New builds an engine with an empty command tree.
func New(opts Options) *Engine {
	if opts.Registry == nil {
		opts.Registry = convert.Global()
	}
	if opts.Toggle == nil {
		opts.Toggle = func(*Context) bool { return true }
	}
	owners := make(map[string]struct{}, len(opts.Owners))
	for _, id := range opts.Owners {
		owners[id] = struct{}{}
	}

	e := &Engine{
		registry: opts.Registry,
		lines:    opts.Lines,
		toggle:   opts.Toggle,
		owners:   owners,
	}
	e.root = &Node{
		children: make(map[string]*Node),
		engine:   e,
		handler:  func(*Context, []any) error { return nil },
	}
	e.root.Authorise(NewAuth("toggle", e.toggle))
	return e
}

// Root returns the root node.
func (e *Engine) Root() *Node { return e.root }

// Command registers a new top-level command.
func (e *Engine) Command(id string, sig Signature, handler Handler, auths ...*Auth) *Node {
	return e.root.Subcommand(id, sig, handler, auths...)
}

// Resolve walks the routing tree by canonical ids or localized names and
// returns the node the path leads to. An empty path yields the root.
func (e *Engine) Resolve(locale string, path ...string) (*Node, bool) {
	n := e.root
	for _, token := range path {
		next, ok := n.child(locale, token)
		if !ok {
			return nil, false
		}
		n = next
	}
	return n, true
}

// GlobalAuth attaches an auth entry to the root, gating every command.
func (e *Engine) GlobalAuth(a *Auth) {
	e.root.Authorise(a)
}

// AfterInvoke registers an observer called after every invocation.
func (e *Engine) AfterInvoke(obs Observer) {
	e.observers = append(e.observers, obs)
}

// runObservers dispatches all observers concurrently and joins them. A
// failure inside one observer never propagates to the caller or blocks the
// others.
func (e *Engine) runObservers(ctx *Context, blocked *Auth) {
	recovered := util.GatherIsolated(e.observers, func(_ int, obs Observer) {
		obs(ctx, blocked)
	})
	for i, r := range recovered {
		if r != nil {
			log.Error().Interface("panic", r).Int("observer", i).
				Str("command", ctx.node.qualifiedID).
				Msg("after-invoke observer panicked")
		}
	}
}

// coalesce tries each key in order, walking each one up the ancestor chain
// from node to root, and returns the first line that exists.
func (e *Engine) coalesce(node *Node, locale string, keys ...string) (string, bool) {
	if e.lines == nil {
		return "", false
	}
	for _, key := range keys {
		for n := node; n != nil; n = n.parent {
			if line, err := e.lines.Line(n.qualifiedID, key, locale); err == nil {
				return line, true
			}
		}
	}
	return "", false
}

// formatLine applies Sprintf-style arguments, but only when the line carries
// format verbs: locale lines are free to ignore trailing arguments.
func formatLine(line string, formatArgs ...any) string {
	if len(formatArgs) == 0 || !strings.Contains(line, "%") {
		return line
	}
	return fmt.Sprintf(line, formatArgs...)
}
