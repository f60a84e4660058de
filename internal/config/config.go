package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	DiscordBotToken  string
	DiscordChannelId string
	DatabasePath     string
	HealthAddr       string
	LogLevel         zerolog.Level
	Currency         string
}

// Load reads the configuration from the environment, after merging any
// .env files found in envFiles (missing files are skipped).
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATABASE_PATH", "transactions.db")
	v.SetDefault("HEALTH_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CURRENCY", "KES")

	botToken := v.GetString("DISCORD_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("Bot token is not set")
	}
	channelID := v.GetString("DISCORD_CHANNEL_ID")
	if channelID == "" {
		return nil, fmt.Errorf("Channel ID is not set")
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	currency := strings.ToUpper(v.GetString("CURRENCY"))
	if money.GetCurrency(currency) == nil {
		return nil, fmt.Errorf("invalid CURRENCY: unknown code %q", currency)
	}

	return &Config{
		DiscordBotToken:  botToken,
		DiscordChannelId: channelID,
		DatabasePath:     v.GetString("DATABASE_PATH"),
		HealthAddr:       v.GetString("HEALTH_ADDR"),
		LogLevel:         level,
		Currency:         currency,
	}, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
