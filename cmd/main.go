package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NgigiN/finance-tracker/internal/config"
	"github.com/NgigiN/finance-tracker/internal/discord"
	"github.com/NgigiN/finance-tracker/internal/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.DurationFieldUnit = time.Millisecond
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx := context.Background()
	store, err := storage.NewDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize the database")
	}
	defer store.Close()

	bot, err := discord.NewBot(cfg, store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize the discord bot")
	}
	if err := bot.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start bot")
	}

	log.Info().Str("database", cfg.DatabasePath).Msg("Bot is running...")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
	log.Info().Msg("Bot stopped.")
}
