package commands

import (
	"strings"

	"github.com/keshon/herald/internal/cmderr"
	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
)

// commandPath is the shared signature of every toggle subcommand: one or
// more tokens naming a registered command, localized names accepted.
var commandPath = core.Signature{
	Star: &core.StarSpec{
		Name: "command",
		Type: convert.Required(1, convert.T("str")),
	},
}

func registerToggle(deps Deps) {
	node := deps.Engine.Command("toggle",
		commandPath,
		toggleHandler(deps, flip),
		discord.GuildAdminAuth(),
	)
	node.Subcommand("enable", commandPath, toggleHandler(deps, enable))
	node.Subcommand("disable", commandPath, toggleHandler(deps, disable))
}

type toggleAction int

const (
	flip toggleAction = iota
	enable
	disable
)

func toggleHandler(deps Deps, action toggleAction) core.Handler {
	return func(ctx *core.Context, bound []any) error {
		path := make([]string, len(bound))
		for i, v := range bound {
			path[i] = v.(string)
		}

		target, ok := deps.Engine.Resolve(ctx.Locale(), path...)
		if !ok || target == deps.Engine.Root() {
			return cmderr.New("TOGGLE_unknown_command", strings.Join(path, " "))
		}

		scope := ctx.GuildID()
		var err error
		switch action {
		case enable:
			err = deps.Toggles.Enable(scope, target.QualifiedID())
		case disable:
			err = deps.Toggles.Disable(scope, target.QualifiedID())
		default:
			err = deps.Toggles.Toggle(scope, target.QualifiedID())
		}
		if err != nil {
			return err
		}

		key := "TOGGLE_enabled"
		if deps.Toggles.Disabled(scope, target.QualifiedID()) {
			key = "TOGGLE_disabled"
		}
		return ctx.ReplyLine(key, strings.Join(path, " "))
	}
}
