package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/bot"
	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
	"github.com/chatbotchef/chatbotchef/internal/llm"
	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/repo"
	"github.com/chatbotchef/chatbotchef/internal/services"
	"github.com/chatbotchef/chatbotchef/internal/session"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

var errNoBotToken = errors.New("TELEGRAM_BOT_TOKEN is empty")

// app holds the wired runtime shared by the subcommands.
type app struct {
	cfg      config.Config
	db       *gorm.DB
	tg       *telegram.Client
	sessions session.Store

	pipeline     *bot.Pipeline
	reminders    *services.ReminderService
	housekeeping *services.Housekeeping

	shutdownOTel observability.ShutdownFunc
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return nil, errNoBotToken
	}

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, shutdownOTel: shutdownOTel}

	if a.db, err = repo.Open(cfg.Database); err != nil {
		a.close(ctx)
		return nil, err
	}
	if err := repo.AutoMigrate(a.db); err != nil {
		a.close(ctx)
		return nil, err
	}
	if a.sessions, err = session.NewStore(cfg.Session); err != nil {
		a.close(ctx)
		return nil, err
	}

	completion := llm.New(cfg.OpenAI)
	opts := i18n.Options{DefaultLocale: cfg.DefaultLocale}
	if cfg.OpenAI.AutoLocalization && completion.Configured() {
		opts.Auto = &llm.AutoTranslator{Client: completion}
	}
	text, err := i18n.New(opts)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	a.tg = telegram.New(cfg.Telegram, nil)

	accounts := services.NewAccountService(a.db)
	premium := services.NewPremiumService(a.db, cfg.Billing.PremiumDurationDays)
	dedup := services.NewDeduplicator(a.db)

	dispatcher := bot.New(bot.Deps{
		Bot:       a.tg,
		LLM:       completion,
		Text:      text,
		Sessions:  a.sessions,
		Accounts:  accounts,
		Premium:   premium,
		Usage:     services.NewUsageService(a.db),
		History:   services.NewHistoryService(a.db, cfg.HistoryLimit),
		Admin:     services.NewAdminService(a.db),
		Broadcast: services.NewBroadcastService(a.tg, accounts),
		Telegram:  cfg.Telegram,
		Billing:   cfg.Billing,
		Help:      cfg.Help,
	})
	a.pipeline = &bot.Pipeline{Dedup: dedup, Next: dispatcher}

	a.reminders = &services.ReminderService{
		Premium:  premium,
		Accounts: accounts,
		Sender:   a.tg,
		Text:     text,
		Days:     cfg.Billing.ReminderDays,
	}
	a.housekeeping = &services.Housekeeping{
		Reminders: a.reminders,
		Dedup:     dedup,
		Retention: cfg.Housekeeping.DedupRetention,
		Schedule:  cfg.Housekeeping.Schedule,
	}

	log.Info().
		Str("transport", string(cfg.Telegram.Transport)).
		Str("db_driver", cfg.Database.Driver).
		Bool("redis_sessions", cfg.Session.RedisURL != "").
		Bool("completion_configured", completion.Configured()).
		Int("admins", len(cfg.Telegram.AdminIDs)).
		Str("version", version).
		Msg("bot wired")
	return a, nil
}

// close releases what newApp acquired; it is safe on a partial app.
func (a *app) close(ctx context.Context) {
	if c, ok := a.sessions.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("session store close failed")
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}
}
