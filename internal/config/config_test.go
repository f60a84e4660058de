package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "chan")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		DiscordBotToken:  "token",
		DiscordChannelId: "chan",
		DatabasePath:     "transactions.db",
		HealthAddr:       ":8080",
		LogLevel:         zerolog.InfoLevel,
		Currency:         "KES",
	}, cfg)
}

func TestLoadFromEnvFile(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "")
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	// godotenv only sets variables that are absent.
	for _, k := range []string{"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "DATABASE_PATH", "LOG_LEVEL"} {
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "DISCORD_BOT_TOKEN=abc\nDISCORD_CHANNEL_ID=123\nDATABASE_PATH=/tmp/finance.db\nLOG_LEVEL=DEBUG\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID", "DATABASE_PATH", "LOG_LEVEL"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.DiscordBotToken)
	assert.Equal(t, "123", cfg.DiscordChannelId)
	assert.Equal(t, "/tmp/finance.db", cfg.DatabasePath)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadMissingValues(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("DISCORD_CHANNEL_ID", "chan")
	_, err := Load()
	assert.EqualError(t, err, "Bot token is not set")

	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "")
	_, err = Load()
	assert.EqualError(t, err, "Channel ID is not set")
}

func TestLoadInvalidLevel(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "chan")
	t.Setenv("LOG_LEVEL", "loud")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadCurrency(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("DISCORD_CHANNEL_ID", "chan")

	t.Setenv("CURRENCY", "usd")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)

	t.Setenv("CURRENCY", "shillings")
	_, err = Load()
	assert.ErrorContains(t, err, "invalid CURRENCY")
}
