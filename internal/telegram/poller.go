package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// UpdateSource is the subset of Client the poller needs.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]tgbotapi.Update, error)
	DeleteWebhook(ctx context.Context, dropPending bool) error
}

// UpdateHandler processes one update. It must not panic outward.
type UpdateHandler interface {
	Handle(ctx context.Context, u tgbotapi.Update)
}

// Poller runs the long-polling transport: fetch, dispatch sequentially,
// persist the cursor, sleep.
type Poller struct {
	Source   UpdateSource
	Handler  UpdateHandler
	Offsets  OffsetStore
	Interval time.Duration
	Timeout  int // server-side long-poll seconds
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	logger := log.With().Str("component", "poller").Logger()
	if err := p.Source.DeleteWebhook(ctx, false); err != nil {
		logger.Warn().Err(err).Msg("delete webhook before polling failed")
	}

	last := p.Offsets.Load()
	logger.Info().
		Int("timeout_sec", p.Timeout).
		Dur("interval", p.Interval).
		Str("offset_file", p.Offsets.Path).
		Int64("offset", last).
		Msg("long polling started")

	for {
		if ctx.Err() != nil {
			logger.Info().Msg("long polling stopped")
			return nil
		}
		next := int64(0)
		if last > 0 {
			next = last + 1
		}
		updates, err := p.Source.GetUpdates(ctx, next, p.Timeout)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn().Err(err).Msg("poll cycle failed")
			}
		} else if len(updates) > 0 {
			last = p.process(ctx, updates, last)
		}

		if !sleep(ctx, p.Interval) {
			logger.Info().Msg("long polling stopped")
			return nil
		}
	}
}

func (p *Poller) process(ctx context.Context, updates []tgbotapi.Update, last int64) int64 {
	for _, u := range updates {
		p.Handler.Handle(ctx, u)
		if id := int64(u.UpdateID); id > last {
			last = id
		}
	}
	if err := p.Offsets.Save(last); err != nil {
		log.Warn().Err(err).Str("component", "poller").Int64("offset", last).Msg("persist offset failed")
	}
	return last
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
