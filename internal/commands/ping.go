package commands

import (
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
)

func registerPing(deps Deps) {
	deps.Engine.Command("ping", core.Signature{}, func(ctx *core.Context, _ []any) error {
		if msg := discord.MessageOf(ctx); msg != nil {
			latency := msg.Session.HeartbeatLatency().Milliseconds()
			return ctx.ReplyLine("pong", latency)
		}
		return ctx.ReplyLine("pong", 0)
	})
}
