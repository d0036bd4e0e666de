package commands

import (
	"strings"

	"github.com/keshon/herald/internal/auth"
	"github.com/keshon/herald/internal/cmderr"
	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
)

func registerLanguage(deps Deps) {
	node := deps.Engine.Command("language", core.Signature{},
		func(ctx *core.Context, _ []any) error {
			return ctx.ReplyLine("LANGUAGE_current", ctx.Locale(),
				strings.Join(deps.Locales.Locales(), ", "))
		},
		auth.GuildOnly(),
	)

	localeParam := core.Signature{
		Pos: []core.ParamSpec{{Name: "locale", Type: convert.T("str")}},
	}

	node.Subcommand("set", localeParam,
		func(ctx *core.Context, bound []any) error {
			locale := bound[0].(string)
			if !deps.Locales.Has(locale) {
				return cmderr.New("LANGUAGE_unknown", locale)
			}
			if err := deps.Selector.SetGuild(ctx.GuildID(), locale); err != nil {
				return err
			}
			return ctx.ReplyLine("LANGUAGE_updated", locale)
		},
		discord.GuildAdminAuth(),
	)

	// An omitted locale clears the channel override.
	node.Subcommand("channel", core.Signature{
		Pos: []core.ParamSpec{{
			Name:    "locale",
			Type:    convert.Optional(convert.T("str")),
			Default: convert.With(""),
		}},
	},
		func(ctx *core.Context, bound []any) error {
			locale := bound[0].(string)
			if locale != "" && !deps.Locales.Has(locale) {
				return cmderr.New("LANGUAGE_unknown", locale)
			}
			msg := discord.MessageOf(ctx)
			if msg == nil {
				return nil
			}
			channelID := msg.Event.ChannelID
			if err := deps.Selector.SetChannel(ctx.GuildID(), channelID, locale); err != nil {
				return err
			}
			if locale == "" {
				return ctx.ReplyLine("LANGUAGE_channel_cleared")
			}
			return ctx.ReplyLine("LANGUAGE_channel_updated", locale)
		},
		discord.GuildAdminAuth(),
	)
}
