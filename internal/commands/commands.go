// Package commands registers the built-in management commands: ping,
// toggle, language, alias, and botban. Everything else is expected to be
// registered by the embedding application.
package commands

import (
	"github.com/keshon/herald/internal/auth"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
	"github.com/keshon/herald/internal/lang"
	"github.com/keshon/herald/internal/toggle"
)

// Deps carries the services the built-in commands operate on.
type Deps struct {
	Engine   *core.Engine
	Toggles  *toggle.Service
	Locales  *lang.Store
	Selector *lang.Selector
	Invokers *discord.Invokers
	Botbans  *auth.Botbans
	Bans     BanStore
}

// BanStore is the mutation surface of the botban command.
type BanStore interface {
	AddBotban(guildID, userID string) error
	RemoveBotban(guildID, userID string) error
	Botbans(guildID string) ([]string, error)
}

// Register attaches every built-in command to the engine.
func Register(deps Deps) {
	registerPing(deps)
	registerToggle(deps)
	registerLanguage(deps)
	registerAlias(deps)
	registerBotban(deps)
}
