// Package auth provides the reusable authority checks commands attach to
// their nodes. Each constructor returns a named core.Auth whose denial is
// reported through the engine's line tables under error_<name> and
// permission_<name> keys.
package auth

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/keshon/herald/internal/cache"
	"github.com/keshon/herald/internal/core"
)

const banCacheSize = 100

// Owner passes only for the configured bot owners.
func Owner() *core.Auth {
	return core.NewAuth("owner", func(ctx *core.Context) bool {
		return ctx.IsOwner()
	})
}

// GuildOnly passes when the message was sent inside a guild.
func GuildOnly() *core.Auth {
	return core.NewAuth("guild_only", func(ctx *core.Context) bool {
		return ctx.GuildID() != ""
	})
}

// DMOnly passes when the message was sent in a direct message.
func DMOnly() *core.Auth {
	return core.NewAuth("dm_only", func(ctx *core.Context) bool {
		return ctx.GuildID() == ""
	})
}

// RateLimit allows each user a burst of calls refilled at r per second.
// Limiter state is kept per user in a bounded cache, so a long-idle user
// may be evicted and start with a fresh burst.
func RateLimit(r rate.Limit, burst int) *core.Auth {
	limiters := cache.NewLFU(1000)
	return core.NewAuth("rate_limit", func(ctx *core.Context) bool {
		var lim *rate.Limiter
		if v, ok := limiters.Get(ctx.AuthorID()); ok {
			lim = v.(*rate.Limiter)
		} else {
			lim = rate.NewLimiter(r, burst)
			limiters.Set(ctx.AuthorID(), lim)
		}
		return lim.Allow()
	})
}

// BanStore lists the users a guild has banned from the bot.
type BanStore interface {
	Botbans(guildID string) ([]string, error)
}

// Botbans wraps a BanStore behind a per-guild cache. Mutations must go
// through this type so the cache stays coherent.
type Botbans struct {
	store BanStore
	cache *cache.LFU
}

func NewBotbans(store BanStore) *Botbans {
	return &Botbans{store: store, cache: cache.NewLFU(banCacheSize)}
}

// Banned reports whether the user is banned in the guild. Store failures
// fail open.
func (b *Botbans) Banned(guildID, userID string) bool {
	if guildID == "" {
		return false
	}
	var bans []string
	if v, ok := b.cache.Get(guildID); ok {
		bans = v.([]string)
	} else {
		loaded, err := b.store.Botbans(guildID)
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("botban lookup failed")
			return false
		}
		bans = loaded
		b.cache.Set(guildID, bans)
	}
	for _, banned := range bans {
		if banned == userID {
			return true
		}
	}
	return false
}

// Invalidate drops the guild's cached ban list. Call after any mutation of
// the underlying store.
func (b *Botbans) Invalidate(guildID string) {
	b.cache.Delete(guildID)
}

// Auth returns the not_botbanned check backed by this cache.
func (b *Botbans) Auth() *core.Auth {
	return core.NewAuth("not_botbanned", func(ctx *core.Context) bool {
		return !b.Banned(ctx.GuildID(), ctx.AuthorID())
	})
}
