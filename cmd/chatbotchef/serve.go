package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/chatbotchef/chatbotchef/internal/config"
	httpapi "github.com/chatbotchef/chatbotchef/internal/http"
	"github.com/chatbotchef/chatbotchef/internal/queue"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot with the configured transport",
	Long: `Run the bot. With TELEGRAM_TRANSPORT=WEBHOOK (the default) an HTTP server
receives updates on /telegram/webhook, queues them for a pool of workers and
runs the housekeeping schedule. With LONG_POLLING no HTTP server is started;
updates are fetched with getUpdates instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context(), "")
	},
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run the bot with long polling regardless of configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBot(cmd.Context(), config.TransportLongPolling)
	},
}

func runBot(ctx context.Context, force config.Transport) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if force != "" {
		cfg.Telegram.Transport = force
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(sctx)
	}()

	if cfg.Telegram.Transport == config.TransportLongPolling {
		return runPolling(ctx, a)
	}
	return runWebhook(ctx, a)
}

func runPolling(ctx context.Context, a *app) error {
	log.Info().Msg("running in LONG_POLLING mode; no HTTP server is started")
	p := &telegram.Poller{
		Source:   a.tg,
		Handler:  a.pipeline,
		Offsets:  telegram.OffsetStore{Path: a.cfg.Telegram.OffsetFile},
		Interval: a.cfg.Telegram.PollInterval,
		Timeout:  a.cfg.Telegram.PollTimeoutSec,
	}
	err := p.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWebhook(ctx context.Context, a *app) error {
	cfg := a.cfg

	q := queue.New(cfg.Queue.Size)
	var workers sync.WaitGroup
	workers.Add(1)
	go func() {
		defer workers.Done()
		// Workers drain what is already queued after the server stops, so
		// they get their own context.
		q.Run(context.WithoutCancel(ctx), cfg.Queue.Workers, a.pipeline)
	}()

	if cfg.Housekeeping.Enabled {
		c, err := a.housekeeping.Start(ctx)
		if err != nil {
			q.Close()
			workers.Wait()
			return err
		}
		defer func() { <-c.Stop().Done() }()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{Base: ctx, Queue: q, Reminders: a.reminders}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("webhook_url", cfg.Telegram.WebhookURL).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown requested")
	case serveErr = <-errCh:
		if serveErr != nil {
			log.Error().Err(serveErr).Msg("http server failed")
		}
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown incomplete")
	}

	q.Close()
	drained := make(chan struct{})
	go func() {
		workers.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-sctx.Done():
		log.Warn().Int("pending", q.Len()).Msg("work queue not drained before deadline")
	}
	log.Info().Msg("stopped")
	return serveErr
}
