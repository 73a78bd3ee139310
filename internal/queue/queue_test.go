package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type recorder struct {
	mu   sync.Mutex
	seen []int
	done chan struct{}
	want int
}

func (r *recorder) Handle(_ context.Context, u tgbotapi.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.UpdateID < 0 {
		panic("bad update")
	}
	r.seen = append(r.seen, u.UpdateID)
	if len(r.seen) == r.want {
		close(r.done)
	}
}

func job(id int) Job { return Job{UpdateID: int64(id), Update: tgbotapi.Update{UpdateID: id}} }

func TestEnqueue_FullQueueRejects(t *testing.T) {
	q := New(2)
	if !q.Enqueue(job(1)) || !q.Enqueue(job(2)) {
		t.Fatalf("expected room for two jobs")
	}
	if q.Enqueue(job(3)) {
		t.Fatalf("third job should be rejected")
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d", q.Len())
	}
}

func TestEnqueue_AfterCloseRejects(t *testing.T) {
	q := New(1)
	q.Close()
	q.Close()
	if q.Enqueue(job(1)) {
		t.Fatalf("closed queue accepted a job")
	}
}

func TestRun_DeliversAndDrainsOnClose(t *testing.T) {
	q := New(10)
	rec := &recorder{done: make(chan struct{}), want: 3}
	for _, id := range []int{1, -1, 2, 3} {
		if !q.Enqueue(job(id)) {
			t.Fatalf("enqueue %d failed", id)
		}
	}
	q.Close()

	finished := make(chan struct{})
	go func() {
		q.Run(context.Background(), 2, rec)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after the queue drained")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.seen) != 3 {
		t.Fatalf("seen = %v", rec.seen)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		q.Run(ctx, 3, &recorder{done: make(chan struct{}), want: -1})
		close(finished)
	}()
	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run ignored cancellation")
	}
}
