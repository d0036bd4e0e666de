package commands

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
)

func registerBotban(deps Deps) {
	node := deps.Engine.Command("botban", core.Signature{},
		func(ctx *core.Context, _ []any) error {
			bans, err := deps.Bans.Botbans(ctx.GuildID())
			if err != nil {
				return err
			}
			if len(bans) == 0 {
				return ctx.ReplyLine("BOTBAN_empty")
			}
			mentions := make([]string, len(bans))
			for i, id := range bans {
				mentions[i] = "<@" + id + ">"
			}
			return ctx.ReplyLine("BOTBAN_list", strings.Join(mentions, " "))
		},
		discord.GuildAdminAuth(),
	)

	memberParam := core.Signature{
		Pos: []core.ParamSpec{{Name: "member", Type: convert.T("member")}},
	}

	node.Subcommand("add", memberParam,
		func(ctx *core.Context, bound []any) error {
			member := bound[0].(*discordgo.Member)
			if err := deps.Bans.AddBotban(ctx.GuildID(), member.User.ID); err != nil {
				return err
			}
			deps.Botbans.Invalidate(ctx.GuildID())
			return ctx.ReplyLine("BOTBAN_added", member.User.Username)
		})

	node.Subcommand("remove", memberParam,
		func(ctx *core.Context, bound []any) error {
			member := bound[0].(*discordgo.Member)
			if err := deps.Bans.RemoveBotban(ctx.GuildID(), member.User.ID); err != nil {
				return err
			}
			deps.Botbans.Invalidate(ctx.GuildID())
			return ctx.ReplyLine("BOTBAN_removed", member.User.Username)
		})
}
