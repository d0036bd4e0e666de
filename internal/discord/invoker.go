package discord

import (
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/cache"
	"github.com/keshon/herald/internal/storage"
)

const invokerCacheSize = 100

// Invokers resolves which prefixes summon the bot in a guild: the built-in
// default (unless the guild removed it), the guild's custom prefixes, and a
// direct mention of the bot user. Resolved lists are cached per guild;
// mutations drop the cache entry wholesale.
type Invokers struct {
	store          *storage.Storage
	defaultInvoker string
	cache          *cache.LFU
}

func NewInvokers(store *storage.Storage, defaultInvoker string) *Invokers {
	return &Invokers{
		store:          store,
		defaultInvoker: defaultInvoker,
		cache:          cache.NewLFU(invokerCacheSize),
	}
}

// Strip returns the message content with the matched prefix removed, and
// whether any prefix matched. In DMs every message is addressed to the bot,
// so the content passes through with or without a prefix.
func (inv *Invokers) Strip(s *discordgo.Session, m *discordgo.MessageCreate) (string, bool) {
	content := m.Content

	if s.State.User != nil {
		for _, mention := range []string{
			"<@" + s.State.User.ID + ">",
			"<@!" + s.State.User.ID + ">",
		} {
			if strings.HasPrefix(content, mention) {
				return content[len(mention):], true
			}
		}
	}

	for _, prefix := range inv.For(m.GuildID) {
		if strings.HasPrefix(content, prefix) {
			return content[len(prefix):], true
		}
	}

	if m.GuildID == "" {
		return content, true
	}
	return "", false
}

// For returns the active prefixes for a guild, longest first so that a
// prefix which extends another one wins the match.
func (inv *Invokers) For(guildID string) []string {
	if guildID == "" {
		return []string{inv.defaultInvoker}
	}
	if v, ok := inv.cache.Get(guildID); ok {
		return v.([]string)
	}

	custom, defaultRemoved, err := inv.store.Invokers(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("invoker lookup failed")
		return []string{inv.defaultInvoker}
	}

	prefixes := make([]string, 0, len(custom)+1)
	prefixes = append(prefixes, custom...)
	if !defaultRemoved {
		prefixes = append(prefixes, inv.defaultInvoker)
	}
	sort.SliceStable(prefixes, func(i, j int) bool {
		return len(prefixes[i]) > len(prefixes[j])
	})
	inv.cache.Set(guildID, prefixes)
	return prefixes
}

// Add registers a custom prefix for the guild. Adding the default prefix
// back clears its removed marker instead.
func (inv *Invokers) Add(guildID, prefix string) error {
	var err error
	if prefix == inv.defaultInvoker {
		err = inv.store.RestoreDefaultInvoker(guildID)
	} else {
		err = inv.store.AddInvoker(guildID, prefix)
	}
	if err != nil {
		return err
	}
	inv.cache.Delete(guildID)
	return nil
}

// Remove drops a prefix for the guild.
func (inv *Invokers) Remove(guildID, prefix string) error {
	if err := inv.store.RemoveInvoker(guildID, prefix, inv.defaultInvoker); err != nil {
		return err
	}
	inv.cache.Delete(guildID)
	return nil
}

// Default returns the built-in prefix.
func (inv *Invokers) Default() string { return inv.defaultInvoker }
