// Package queue buffers webhook updates between the HTTP handler and the
// dispatcher so Telegram gets its 200 before any processing happens.
package queue

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// DefaultSize is used when New is called with a non-positive size.
const DefaultSize = 256

// Job is one accepted webhook update.
type Job struct {
	UpdateID int64
	Update   tgbotapi.Update
}

// Queue is a bounded FIFO of jobs.
type Queue struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan Job
}

// New returns a queue holding at most size pending jobs.
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultSize
	}
	return &Queue{jobs: make(chan Job, size)}
}

// Enqueue adds j without blocking. It reports false when the queue is full
// or closed.
func (q *Queue) Enqueue(j Job) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.jobs <- j:
		observability.QueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		return false
	}
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int { return len(q.jobs) }

// Close stops accepting jobs. Consumers drain what is already queued and
// then return.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.jobs)
}

// Run starts workers consumers feeding h and blocks until they exit, either
// because ctx ended or because the queue was closed and drained.
func (q *Queue) Run(ctx context.Context, workers int, h telegram.UpdateHandler) {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			q.consume(ctx, worker, h)
		}(i)
	}
	wg.Wait()
}

func (q *Queue) consume(ctx context.Context, worker int, h telegram.UpdateHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			observability.QueueDepth.Set(float64(len(q.jobs)))
			q.handle(ctx, worker, h, j)
		}
	}
}

func (q *Queue) handle(ctx context.Context, worker int, h telegram.UpdateHandler, j Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", "queue").Int("worker", worker).Int64("update_id", j.UpdateID).Interface("panic", r).Msg("job panicked")
		}
	}()
	h.Handle(ctx, j.Update)
}
