package discord

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/core"
)

// LogObserver records every finished dispatch: which node ran, who invoked
// it, and which auth blocked it, if any.
func LogObserver(ctx *core.Context, blocked *core.Auth) {
	evt := log.Info()
	if blocked != nil {
		evt = log.Warn().Str("blocked_by", blocked.Name)
	}
	evt.
		Str("command", ctx.Node().QualifiedID()).
		Str("author", ctx.AuthorID()).
		Str("guild", ctx.GuildID()).
		Str("locale", ctx.Locale()).
		Dur("took", time.Since(ctx.Started())).
		Msg("command dispatched")
}
