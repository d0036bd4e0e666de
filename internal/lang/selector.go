package lang

import (
	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/cache"
)

const selectorCacheSize = 100

// LocaleStore is the persistence surface the selector reads and writes.
type LocaleStore interface {
	GuildLocale(guildID string) (string, error)
	SetGuildLocale(guildID, locale string) error
	ChannelLocales(guildID string) (map[string]string, error)
	SetChannelLocale(guildID, channelID, locale string) error
}

// Selector resolves the effective locale for a message: the channel
// override wins over the guild setting, which wins over the default.
// Resolved values are cached per guild; a write drops the whole cache
// entry so the next read reloads from the store.
type Selector struct {
	store LocaleStore
	cache *cache.LFU
}

func NewSelector(store LocaleStore) *Selector {
	return &Selector{store: store, cache: cache.NewLFU(selectorCacheSize)}
}

type guildLocales struct {
	guild    string
	channels map[string]string
}

// Resolve returns the locale to use for a message in the given channel.
// Store failures fall back to the default locale.
func (s *Selector) Resolve(guildID, channelID string) string {
	if guildID == "" {
		return DefaultLocale
	}
	locs, err := s.load(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("locale lookup failed")
		return DefaultLocale
	}
	if loc, ok := locs.channels[channelID]; ok && loc != "" {
		return loc
	}
	if locs.guild != "" {
		return locs.guild
	}
	return DefaultLocale
}

// SetGuild persists the guild-wide locale and invalidates the guild's
// cached state.
func (s *Selector) SetGuild(guildID, locale string) error {
	if err := s.store.SetGuildLocale(guildID, locale); err != nil {
		return err
	}
	s.cache.Delete(guildID)
	return nil
}

// SetChannel persists a per-channel locale override. An empty locale
// clears the override.
func (s *Selector) SetChannel(guildID, channelID, locale string) error {
	if err := s.store.SetChannelLocale(guildID, channelID, locale); err != nil {
		return err
	}
	s.cache.Delete(guildID)
	return nil
}

func (s *Selector) load(guildID string) (guildLocales, error) {
	if v, ok := s.cache.Get(guildID); ok {
		return v.(guildLocales), nil
	}
	guild, err := s.store.GuildLocale(guildID)
	if err != nil {
		return guildLocales{}, err
	}
	channels, err := s.store.ChannelLocales(guildID)
	if err != nil {
		return guildLocales{}, err
	}
	locs := guildLocales{guild: guild, channels: channels}
	s.cache.Set(guildID, locs)
	return locs, nil
}
