// cmd/herald/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/herald/internal/auth"
	"github.com/keshon/herald/internal/commands"
	"github.com/keshon/herald/internal/config"
	"github.com/keshon/herald/internal/convert"
	"github.com/keshon/herald/internal/core"
	"github.com/keshon/herald/internal/discord"
	"github.com/keshon/herald/internal/lang"
	"github.com/keshon/herald/internal/logging"
	"github.com/keshon/herald/internal/storage"
	"github.com/keshon/herald/internal/toggle"
	v "github.com/keshon/herald/internal/version"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	logging.Init(v.AppName, cfg.LogLevel, cfg.LogFile)
	log.Info().Str("version", v.AppVersion).Msgf("starting %v bot", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage error")
	}
	defer store.Close()

	locales, err := lang.Load(cfg.LocaleDir)
	if err != nil {
		log.Fatal().Err(err).Msg("locale error")
	}

	toggles := toggle.New(store)
	selector := lang.NewSelector(store)
	botbans := auth.NewBotbans(store)

	discord.RegisterConverters(convert.Global())

	engine := core.New(core.Options{
		Lines:  locales,
		Toggle: toggles.Predicate(),
		Owners: cfg.OwnerIDs,
	})
	engine.GlobalAuth(botbans.Auth())
	engine.AfterInvoke(discord.LogObserver)

	invokers := discord.NewInvokers(store, cfg.Invoker)
	commands.Register(commands.Deps{
		Engine:   engine,
		Toggles:  toggles,
		Locales:  locales,
		Selector: selector,
		Invokers: invokers,
		Botbans:  botbans,
		Bans:     store,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- discord.StartBot(ctx, cfg, discord.Deps{
			Engine:   engine,
			Storage:  store,
			Selector: selector,
			Invokers: invokers,
		})
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Msgf("received signal %s, shutting down", s)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
	}

	log.Info().Msg("shutdown complete")
}
