package core

import (
	"context"
	"time"

	"github.com/keshon/herald/internal/args"
)

// Context is the per-message transient state: the unconsumed text cursor,
// the node resolved so far, and the identity of the invocation. It is built
// by the adapter for one incoming message and discarded when the handler
// returns or an error is reported.
type Context struct {
	std    context.Context
	engine *Engine

	node    *Node
	content string

	locale   string
	authorID string
	guildID  string
	owner    bool

	reply func(text string) error

	// Data is the adapter payload (session, message, ...). The core never
	// inspects it; converters and predicates supplied by the adapter do.
	Data any

	start time.Time

	pendingRest string
	hasPending  bool
}

// ContextParams carries everything the adapter knows about one message.
type ContextParams struct {
	AuthorID string
	GuildID  string // empty for DMs; toggles and scoped auths treat it as "global"
	Locale   string
	Content  string // message text with the invoker prefix already stripped
	Reply    func(text string) error
	Data     any
}

// NewContext builds the invocation context for one message.
func (e *Engine) NewContext(std context.Context, p ContextParams) *Context {
	if std == nil {
		std = context.Background()
	}
	_, owner := e.owners[p.AuthorID]
	return &Context{
		std:      std,
		engine:   e,
		node:     e.root,
		content:  p.Content,
		locale:   p.Locale,
		authorID: p.AuthorID,
		guildID:  p.GuildID,
		owner:    owner,
		reply:    p.Reply,
		Data:     p.Data,
		start:    time.Now(),
	}
}

// Std returns the context.Context of this invocation, for predicates and
// converters that perform I/O.
func (c *Context) Std() context.Context { return c.std }

// Node returns the currently-resolved command node. It advances as the tree
// is walked and ends at the command that was executed (or denied).
func (c *Context) Node() *Node { return c.node }

// Locale returns the language selected for this invocation.
func (c *Context) Locale() string { return c.locale }

// AuthorID returns the id of the invoking user.
func (c *Context) AuthorID() string { return c.authorID }

// GuildID returns the scope of the invocation, empty for DMs.
func (c *Context) GuildID() string { return c.guildID }

// IsOwner reports whether the invoker holds the owner override.
func (c *Context) IsOwner() bool { return c.owner }

// Started returns when this invocation began.
func (c *Context) Started() time.Time { return c.start }

// NextArg peeks at the next argument without consuming it.
func (c *Context) NextArg() (string, bool) {
	token, rest, ok := args.Next(c.content)
	if !ok {
		c.hasPending = false
		return "", false
	}
	c.pendingRest, c.hasPending = rest, true
	return token, true
}

// PopArg consumes the argument last peeked at by NextArg. Consumption is
// monotonic within one invocation; there is no rewind.
func (c *Context) PopArg() {
	if !c.hasPending {
		if _, ok := c.NextArg(); !ok {
			return
		}
	}
	c.content = c.pendingRest
	c.hasPending = false
}

// PeekArgs returns up to limit upcoming arguments without consuming them.
func (c *Context) PeekArgs(limit int) []string {
	return args.Peek(c.content, limit)
}

// Remainder returns the unconsumed text verbatim.
func (c *Context) Remainder() string { return c.content }

// consumeAll drains the cursor, used when a remainder slot takes the rest of
// the message.
func (c *Context) consumeAll() {
	c.content = ""
	c.hasPending = false
}

// Reply sends text back to where the command came from.
func (c *Context) Reply(text string) error {
	if c.reply == nil {
		return nil
	}
	return c.reply(text)
}

// ReplyLine resolves key against the current node's locale tables, walking
// the ancestor chain, formats it and replies with it.
func (c *Context) ReplyLine(key string, formatArgs ...any) error {
	line, ok := c.engine.coalesce(c.node, c.locale, key)
	if !ok {
		return c.Reply(key)
	}
	return c.Reply(formatLine(line, formatArgs...))
}

// Line resolves key against the current node without sending anything.
func (c *Context) Line(key string, formatArgs ...any) (string, bool) {
	line, ok := c.engine.coalesce(c.node, c.locale, key)
	if !ok {
		return "", false
	}
	return formatLine(line, formatArgs...), true
}
