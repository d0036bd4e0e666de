// /internal/config/config.go
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken string   `env:"DISCORD_TOKEN,required"`
	OwnerIDs     []string `env:"OWNER_IDS" envSeparator:","`
	Invoker      string   `env:"INVOKER" envDefault:"+"`
	StoragePath  string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	LocaleDir    string   `env:"LOCALE_DIR" envDefault:"locales"`
	LogLevel     string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFile      string   `env:"LOG_FILE"`
}

func New() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// IsOwner reports whether the user is one of the configured bot owners.
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
