package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Housekeeping runs the periodic maintenance jobs: the renewal reminder
// sweep and the purge of old processed-update markers.
type Housekeeping struct {
	Reminders *ReminderService
	Dedup     *Deduplicator
	Retention time.Duration
	Schedule  string // standard 5-field cron spec, UTC
	Timeout   time.Duration
}

// RunOnce executes both jobs once and logs their outcome.
func (h *Housekeeping) RunOnce(ctx context.Context) {
	logger := log.With().Str("component", "housekeeping").Logger()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	if h.Reminders != nil {
		if n, err := h.Reminders.DispatchRenewalReminders(ctx); err != nil {
			logger.Error().Err(err).Int("sent", n).Msg("reminder sweep failed")
		}
	}
	if h.Dedup != nil && h.Retention > 0 {
		n, err := h.Dedup.Purge(ctx, h.Retention)
		if err != nil {
			logger.Error().Err(err).Msg("processed marker purge failed")
		} else {
			logger.Info().Int64("removed", n).Dur("retention", h.Retention).Msg("processed markers purged")
		}
	}
}

// Start schedules RunOnce and returns the running cron; callers Stop it on
// shutdown. Overlapping runs are skipped.
func (h *Housekeeping) Start(ctx context.Context) (*cron.Cron, error) {
	cl := cronLogger{log.With().Str("component", "cron").Logger()}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(h.Schedule, func() { h.RunOnce(ctx) }); err != nil {
		return nil, err
	}
	c.Start()
	log.Info().Str("component", "housekeeping").Str("schedule", h.Schedule).Msg("housekeeping scheduled")
	return c, nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct{ l zerolog.Logger }

func (c cronLogger) Info(msg string, kv ...any) {
	c.l.Debug().Fields(kv).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, kv ...any) {
	c.l.Error().Err(err).Fields(kv).Msg(msg)
}
