package handlers

import (
	"context"
	"time"

	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/queue"
)

// Enqueuer accepts webhook updates for asynchronous processing;
// queue.Queue implements it.
type Enqueuer interface {
	Enqueue(job queue.Job) bool
}

// ReminderDispatcher runs one renewal reminder sweep;
// services.ReminderService implements it.
type ReminderDispatcher interface {
	DispatchRenewalReminders(ctx context.Context) (int, error)
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	queue     Enqueuer
	reminders ReminderDispatcher
	cfg       config.Config

	// base outlives single requests; background work started by a handler
	// derives from it so shutdown can cancel it.
	base            context.Context
	reminderTimeout time.Duration
}

// New constructs Handlers. base may be nil, in which case background work
// is bound to context.Background.
func New(base context.Context, q Enqueuer, reminders ReminderDispatcher, cfg config.Config) *Handlers {
	if base == nil {
		base = context.Background()
	}
	return &Handlers{
		queue:           q,
		reminders:       reminders,
		cfg:             cfg,
		base:            base,
		reminderTimeout: 5 * time.Minute,
	}
}
