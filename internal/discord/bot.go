package discord

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NgigiN/finance-tracker/internal/config"
	"github.com/NgigiN/finance-tracker/internal/storage"
	"github.com/NgigiN/finance-tracker/internal/transaction"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Store is the part of storage.Store the bot uses.
type Store interface {
	GetAll(ctx context.Context) ([]transaction.Transaction, error)
	Get(ctx context.Context, id int64) (transaction.Transaction, error)
	Find(ctx context.Context, f storage.Filter) ([]transaction.Transaction, error)
	CategoryTotals(ctx context.Context, typ transaction.Type) (map[string]int64, error)
	Save(ctx context.Context, c transaction.Candidate) (int64, error)
	Update(ctx context.Context, id int64, p transaction.Patch) error
	Delete(ctx context.Context, id int64) error
	SchemaVersion(ctx context.Context) (int, error)
}

type Bot struct {
	session   *discordgo.Session
	store     Store
	channelID string
	currency  string
	startTime time.Time
	health    *http.Server
	log       zerolog.Logger
}

func NewBot(cfg *config.Config, store Store) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := newBot(store, cfg.Currency)
	bot.session = session
	bot.channelID = cfg.DiscordChannelId
	bot.health = &http.Server{Addr: cfg.HealthAddr, Handler: bot.healthRouter()}

	session.AddHandler(bot.handleMessage)
	session.Identify.Intents = discordgo.IntentGuildMessages | discordgo.IntentMessageContent

	return bot, nil
}

func newBot(store Store, currency string) *Bot {
	return &Bot{
		store:     store,
		currency:  currency,
		startTime: time.Now(),
		log:       log.Logger.With().Str("component", "discord").Logger(),
	}
}

func (b *Bot) Start() error {
	go func() {
		if err := b.health.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.log.Error().Err(err).Msg("health server stopped")
		}
	}()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	return nil
}

func (b *Bot) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.health.Shutdown(ctx); err != nil {
		b.log.Warn().Err(err).Msg("health server shutdown")
	}
	b.session.Close()
}

func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return //bot's messages
	}

	if m.ChannelID != b.channelID {
		return //specific to the channel
	}

	reply := b.Handle(context.Background(), m.Content)
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		b.log.Error().Err(err).Str("channel", m.ChannelID).Msg("failed to send reply")
	}
}
