package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/config"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/lang"
	"github.com/keshon/herald/internal/storage"
)

// Bot connects the command engine to a Discord gateway session: it resolves
// prefixes and locales for incoming messages, builds the invocation context,
// and dispatches.
type Bot struct {
	dg       *discordgo.Session
	engine   *core.Engine
	storage  *storage.Storage
	selector *lang.Selector
	invokers *Invokers
	cfg      *config.Config
}

// Deps carries the already-built services the bot wires together. The
// Invokers must be the same instance the alias command mutates, so prefix
// changes take effect without a restart. Botbans are not consulted here:
// banned users run through the engine's global auth and get the localized,
// cooldown-limited denial.
type Deps struct {
	Engine   *core.Engine
	Storage  *storage.Storage
	Selector *lang.Selector
	Invokers *Invokers
}

// StartBot opens the gateway session and blocks until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, deps Deps) error {
	if deps.Invokers == nil {
		deps.Invokers = NewInvokers(deps.Storage, cfg.Invoker)
	}
	b := &Bot{
		engine:   deps.Engine,
		storage:  deps.Storage,
		selector: deps.Selector,
		invokers: deps.Invokers,
		cfg:      cfg,
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, cleaning up")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("discord bot is running")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	content, ok := b.invokers.Strip(s, m)
	if !ok {
		return
	}
	content = strings.TrimLeft(content, " ")
	if content == "" {
		return
	}

	guildID := m.GuildID
	locale := b.selector.Resolve(guildID, m.ChannelID)

	ctx := b.engine.NewContext(context.Background(), core.ContextParams{
		AuthorID: m.Author.ID,
		GuildID:  guildID,
		Locale:   locale,
		Content:  content,
		Reply: func(text string) error {
			_, err := s.ChannelMessageSend(m.ChannelID, Clean(text))
			return err
		},
		Data: &Message{Session: s, Event: m},
	})

	if _, err := b.engine.Dispatch(ctx); err != nil {
		log.Error().Err(err).
			Str("guild", guildID).
			Str("author", m.Author.ID).
			Str("content", content).
			Msg("command failed")
		if line, ok := ctx.Line("INTERNAL_error"); ok {
			_ = ctx.Reply(line)
		}
	}
}

// Message is the adapter payload placed in Context.Data. Converters and
// guild-permission checks reach the session and the raw event through it.
type Message struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
}

// MessageOf extracts the adapter payload from an invocation context. It is
// nil when the context was not built from a Discord message.
func MessageOf(ctx *core.Context) *Message {
	m, _ := ctx.Data.(*Message)
	return m
}
