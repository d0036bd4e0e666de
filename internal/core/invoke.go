package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/cmderr"
	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/pkg/util"
)

// Dispatch runs one invocation end to end: route down the tree, evaluate
// each visited node's auth chain, bind arguments, call the handler, report
// recoverable errors, then run the after-invoke observers.
//
// The returned auth entry is the one that blocked the command, nil when
// none did. The returned error is a handler failure outside the recoverable
// taxonomy; per-invocation errors (missing argument, conversion failure,
// keyed command errors) are reported to the user here and never returned.
func (e *Engine) Dispatch(ctx *Context) (*Auth, error) {
	blocked, err := e.invoke(ctx)
	e.runObservers(ctx, blocked)
	return blocked, err
}

// invoke is the ROUTE state: walk the tree one token at a time, gating each
// visited node, until no child matches; then bind and execute.
func (e *Engine) invoke(ctx *Context) (*Auth, error) {
	for {
		node := ctx.node
		if blocked := e.checkAuth(ctx, node); blocked != nil {
			e.reportDenial(ctx, blocked)
			return blocked, nil
		}

		token, ok := ctx.NextArg()
		if ok {
			if child, found := node.child(ctx.locale, token); found {
				ctx.PopArg()
				ctx.node = child
				continue
			}
		}
		return nil, e.bindAndRun(ctx, node)
	}
}

// checkAuth evaluates every auth entry of node concurrently, then scans the
// results in declared order and returns the first entry whose predicate
// came back false. All predicates always run, even once a blocking one is
// decided: predicates may carry side effects expected on every invocation.
// An owner passes regardless, but the predicates still execute.
func (e *Engine) checkAuth(ctx *Context, node *Node) *Auth {
	if len(node.auths) == 0 {
		return nil
	}
	results := util.Gather(node.auths, func(_ int, a *Auth) bool {
		return a.Check(ctx)
	})
	for i, passed := range results {
		if !passed && !ctx.owner {
			return node.auths[i]
		}
	}
	return nil
}

// reportDenial sends the localized denial message for a failed auth, unless
// the per-user cooldown for that auth suppresses it. The cooldown starts
// only on an actual denial, never for owner-overridden failures.
func (e *Engine) reportDenial(ctx *Context, a *Auth) {
	if a.onCooldown(ctx.authorID) {
		return
	}

	if line, ok := e.coalesce(ctx.node, ctx.locale, "error_"+a.Name); ok {
		replyLogged(ctx, line)
		return
	}
	line, ok := e.coalesce(ctx.node, ctx.locale, "error_authority")
	if !ok {
		replyLogged(ctx, fmt.Sprintf("You are not authorised to use this command (%s).", a.Name))
		return
	}
	line = formatLine(line, a.Name)
	if perm, ok := e.coalesce(ctx.node, ctx.locale, "permission_"+a.Name); ok {
		line += "\n" + perm
	}
	replyLogged(ctx, line)
}

// bindAndRun is the BIND and INVOKE states: convert each declared parameter
// in order, then the star or remainder slot, and call the handler. Binding
// failures abort before the handler runs; a keyed error from the handler is
// recovered and rendered, anything else is returned to the adapter.
func (e *Engine) bindAndRun(ctx *Context, node *Node) error {
	var bound []any

	for _, p := range node.params {
		v, err := p.conv(ctx, p.def)
		if err != nil {
			e.reportBindError(ctx, p.name, err)
			return nil
		}
		bound = append(bound, v)
	}

	if node.star != nil {
		count := 0
		for {
			if _, ok := ctx.NextArg(); !ok && count < node.star.min {
				e.reportMissing(ctx, node.star.name)
				return nil
			}
			v, err := node.star.conv(ctx, convert.NoDefault)
			if err != nil {
				if missingArg(err) {
					break
				}
				e.reportBindError(ctx, node.star.name, err)
				return nil
			}
			bound = append(bound, v)
			count++
		}
	} else if node.remainder != nil {
		rest := strings.TrimSpace(ctx.Remainder())
		ctx.consumeAll()
		if rest == "" {
			v, ok := node.remainder.Default.Get()
			if !ok {
				e.reportMissing(ctx, node.remainder.Name)
				return nil
			}
			bound = append(bound, v)
		} else {
			bound = append(bound, rest)
		}
	}

	err := node.handler(ctx, bound)
	if err == nil {
		return nil
	}
	if ce, ok := cmderr.Keyed(err); ok {
		if line, found := e.coalesce(ctx.node, ctx.locale, ce.Key); found {
			replyLogged(ctx, formatLine(line, ce.Args...))
		} else {
			replyLogged(ctx, ce.Error())
		}
		return nil
	}
	return err
}

// reportBindError renders a failed parameter conversion: the most specific
// key available wins, searched up the ancestor chain.
func (e *Engine) reportBindError(ctx *Context, paramName string, err error) {
	if missingArg(err) {
		e.reportMissing(ctx, paramName)
		return
	}
	ce, ok := cmderr.Keyed(err)
	if !ok {
		// Converter failure outside the taxonomy: generic message.
		ce = cmderr.New("ARG_ERROR")
	}
	line, found := e.coalesce(ctx.node, ctx.locale,
		paramName+"_"+ce.Key, ce.Key, "ARG_ERROR")
	if !found {
		replyLogged(ctx, fmt.Sprintf("Could not parse argument %q.", paramName))
		return
	}
	replyLogged(ctx, formatLine(line, ce.Args...))
}

func (e *Engine) reportMissing(ctx *Context, paramName string) {
	line, found := e.coalesce(ctx.node, ctx.locale,
		paramName+"_ARG_MISSING", "ARG_MISSING")
	if !found {
		replyLogged(ctx, fmt.Sprintf("Missing argument: %s", paramName))
		return
	}
	replyLogged(ctx, formatLine(line, paramName))
}

func missingArg(err error) bool {
	return errors.Is(err, cmderr.ErrMissingArg)
}

func replyLogged(ctx *Context, text string) {
	if err := ctx.Reply(text); err != nil {
		log.Warn().Err(err).Str("command", ctx.node.qualifiedID).
			Str("user", ctx.authorID).Msg("failed to deliver reply")
	}
}
