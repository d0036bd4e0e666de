package commands

import (
	"strings"

	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
)

func registerAlias(deps Deps) {
	node := deps.Engine.Command("alias", core.Signature{},
		func(ctx *core.Context, _ []any) error {
			prefixes := deps.Invokers.For(ctx.GuildID())
			return ctx.ReplyLine("ALIAS_list", strings.Join(prefixes, " "))
		},
		discord.GuildAdminAuth(),
	)

	prefixParam := core.Signature{
		Pos: []core.ParamSpec{{Name: "prefix", Type: convert.T("str")}},
	}

	node.Subcommand("add", prefixParam,
		func(ctx *core.Context, bound []any) error {
			prefix := bound[0].(string)
			if err := deps.Invokers.Add(ctx.GuildID(), prefix); err != nil {
				return err
			}
			return ctx.ReplyLine("ALIAS_added", prefix)
		})

	node.Subcommand("remove", prefixParam,
		func(ctx *core.Context, bound []any) error {
			prefix := bound[0].(string)
			if err := deps.Invokers.Remove(ctx.GuildID(), prefix); err != nil {
				return err
			}
			return ctx.ReplyLine("ALIAS_removed", prefix)
		})
}
