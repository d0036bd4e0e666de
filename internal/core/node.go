package core

import (
	"fmt"
	"time"

	"github.com/keshon/herald/internal/cache"
	"github.com/keshon/herald/internal/convert"
)

const (
	authCooldownSize = 1000
	authCooldownTime = time.Minute
)

// Predicate gates command execution. It must convert its own failures
// (timeouts, store errors) into a plain false; the pipeline has no error
// channel and imposes no deadline of its own.
type Predicate func(ctx *Context) bool

// Auth is one entry in a node's authorization chain: a predicate, the name
// used to look up denial messages, and an isolated per-user cooldown that
// rate-limits those messages.
type Auth struct {
	Name     string
	Check    Predicate
	cooldown *cache.TTL
}

// NewAuth builds a named auth entry.
func NewAuth(name string, check Predicate) *Auth {
	return &Auth{
		Name:     name,
		Check:    check,
		cooldown: cache.NewTTL(authCooldownSize, authCooldownTime),
	}
}

// onCooldown reports whether the denial message for userID is suppressed,
// and starts the suppression window when it is not. The window is claimed
// atomically, so concurrent denials for one user emit a single message.
func (a *Auth) onCooldown(userID string) bool {
	return !a.cooldown.Add(userID, struct{}{})
}

// ParamSpec declares one positional parameter.
type ParamSpec struct {
	Name    string
	Type    convert.Spec
	Default convert.Default
}

// StarSpec declares a variadic trailing parameter. Wrap Type in
// convert.Required to demand a minimum element count.
type StarSpec struct {
	Name string
	Type convert.Spec
}

// RemainderSpec declares a trailing parameter that takes all unconsumed
// text verbatim, trimmed.
type RemainderSpec struct {
	Name    string
	Default convert.Default
}

// Signature is a handler's declared parameter list. At most one of Star and
// Remainder may be set.
type Signature struct {
	Pos       []ParamSpec
	Star      *StarSpec
	Remainder *RemainderSpec
}

// Handler executes a command with its bound arguments: one entry per
// positional parameter, then one per converted star element, then the
// remainder value if declared.
type Handler func(ctx *Context, bound []any) error

// param is a compiled positional parameter.
type param struct {
	name string
	conv convert.Converter
	def  convert.Default
}

// Node is one command or subcommand in the routing tree. Nodes are created
// during startup registration and immutable afterwards.
type Node struct {
	id          string
	qualifiedID string
	parent      *Node // non-owning back-reference; children is the owning edge
	children    map[string]*Node
	auths       []*Auth
	params      []param
	star        *starParam
	remainder   *RemainderSpec
	handler     Handler
	engine      *Engine
}

type starParam struct {
	name string
	min  int
	conv convert.Converter
}

// ID returns the canonical id of this node.
func (n *Node) ID() string { return n.id }

// QualifiedID returns the dot-joined path of ids from the root.
func (n *Node) QualifiedID() string { return n.qualifiedID }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Authorise appends an auth entry to this node's chain. The chain always
// evaluates in registration order, which is what denial blame reports.
func (n *Node) Authorise(a *Auth) *Node {
	n.auths = append(n.auths, a)
	return n
}

// Subcommand registers a child command. The signature is compiled here,
// once; any invalid declaration panics, so configuration errors surface at
// startup and never during an invocation.
//
// Every new node receives the toggle predicate first, then the supplied
// auths in order. The child is indexed under its canonical id and under
// every localized name or alias known at registration time, each namespaced
// by locale.
func (n *Node) Subcommand(id string, sig Signature, handler Handler, auths ...*Auth) *Node {
	if id == "" {
		panic("core: subcommand with empty id")
	}
	if _, dup := n.children[id]; dup {
		panic(fmt.Sprintf("core: duplicate subcommand %q under %q", id, n.qualifiedID))
	}

	qid := id
	if n.qualifiedID != "" {
		qid = n.qualifiedID + "." + id
	}

	child := &Node{
		id:          id,
		qualifiedID: qid,
		parent:      n,
		children:    make(map[string]*Node),
		handler:     handler,
		engine:      n.engine,
	}
	child.compileSignature(sig)

	child.Authorise(NewAuth("toggle", n.engine.toggle))
	for _, a := range auths {
		child.Authorise(a)
	}

	n.children[id] = child
	if n.engine.lines != nil {
		for _, name := range n.engine.lines.Names(qid) {
			// Locale-qualified keys cannot collide with bare ids across
			// locales; lookups try the qualified form first.
			key := name.Locale + " " + name.Name
			if existing, dup := n.children[key]; dup && existing != child {
				panic(fmt.Sprintf("core: alias %q (%s) under %q bound to both %q and %q",
					name.Name, name.Locale, n.qualifiedID, existing.qualifiedID, qid))
			}
			n.children[key] = child
		}
	}
	return child
}

func (n *Node) compileSignature(sig Signature) {
	if sig.Star != nil && sig.Remainder != nil {
		panic(fmt.Sprintf("core: %q declares both star and remainder parameters", n.qualifiedID))
	}

	reg := n.engine.registry
	for _, p := range sig.Pos {
		conv, err := reg.Compile(p.Type)
		if err != nil {
			panic(fmt.Sprintf("core: %q parameter %q: %v", n.qualifiedID, p.Name, err))
		}
		n.params = append(n.params, param{name: p.Name, conv: conv, def: p.Default})
	}
	if sig.Star != nil {
		conv, min, err := reg.CompileStar(sig.Star.Type)
		if err != nil {
			panic(fmt.Sprintf("core: %q star parameter %q: %v", n.qualifiedID, sig.Star.Name, err))
		}
		n.star = &starParam{name: sig.Star.Name, min: min, conv: conv}
	}
	if sig.Remainder != nil {
		r := *sig.Remainder
		n.remainder = &r
	}
}

// child resolves a routing token to a child node. A locale-qualified name
// always takes precedence over a bare name for the same token.
func (n *Node) child(locale, token string) (*Node, bool) {
	if c, ok := n.children[locale+" "+token]; ok {
		return c, true
	}
	c, ok := n.children[token]
	return c, ok
}
