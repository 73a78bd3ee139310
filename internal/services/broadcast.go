package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/retry"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// Messenger is the outbound subset of telegram.Client used by services.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error)
	SendPhoto(ctx context.Context, chatID int64, media telegram.Media, caption string, markup *tgbotapi.InlineKeyboardMarkup) (int, error)
	SendVideo(ctx context.Context, chatID int64, media telegram.Media, caption string, markup *tgbotapi.InlineKeyboardMarkup) (int, error)
}

// BlockMarker flags accounts that blocked the bot.
type BlockMarker interface {
	MarkBlocked(ctx context.Context, userID int64) error
}

// BroadcastResult summarizes one fan-out. Delivered+Failed == Total.
type BroadcastResult struct {
	Total     int
	Delivered int
	Failed    int
}

// BroadcastService fans a payload out to many chats under Telegram's rate
// limits.
type BroadcastService struct {
	Sender  Messenger
	Blocked BlockMarker // optional

	BatchSize    int
	MessageDelay time.Duration
	BatchDelay   time.Duration
	Policy       retry.Policy
}

// NewBroadcastService uses batches of 30, 40ms between messages, 1s between
// batches and up to two retries 250ms apart. Blocked chats are not retried.
func NewBroadcastService(sender Messenger, blocked BlockMarker) *BroadcastService {
	return &BroadcastService{
		Sender:       sender,
		Blocked:      blocked,
		BatchSize:    30,
		MessageDelay: 40 * time.Millisecond,
		BatchDelay:   time.Second,
		Policy: retry.Policy{
			MaxAttempts: 3,
			Backoff:     retry.Constant(250 * time.Millisecond),
			Retryable: func(err error) bool {
				return !telegram.IsBlocked(err) && !errors.Is(err, ErrInvalidArgs)
			},
		},
	}
}

// Dispatch sends payload to every distinct target. A failed target never
// aborts the run; cancellation counts the remaining targets as failed.
func (s *BroadcastService) Dispatch(ctx context.Context, adminID int64, targets []int64, payload domain.BroadcastPayload) BroadcastResult {
	ids := distinct(targets)
	ctx, span := otel.Tracer("services/BroadcastService").Start(ctx, "Dispatch",
		trace.WithAttributes(
			attribute.Int64("admin.id", adminID),
			attribute.String("broadcast.kind", string(payload.Kind)),
			attribute.Int("broadcast.targets", len(ids)),
		))
	defer span.End()

	logger := log.With().Str("component", "broadcast").Int64("admin_id", adminID).Str("kind", string(payload.Kind)).Logger()
	logger.Info().Int("targets", len(ids)).Msg("broadcast started")

	res := BroadcastResult{Total: len(ids)}
	batch := s.BatchSize
	if batch <= 0 {
		batch = 30
	}
	for start := 0; start < len(ids); start += batch {
		if start > 0 && !wait(ctx, s.BatchDelay) {
			break
		}
		end := min(start+batch, len(ids))
		for _, id := range ids[start:end] {
			if ctx.Err() != nil {
				break
			}
			if err := s.sendOne(ctx, id, payload); err != nil {
				res.Failed++
				observability.BroadcastMessagesTotal.WithLabelValues("failed").Inc()
				logger.Warn().Err(err).Int64("chat_id", id).Msg("broadcast delivery failed")
				if telegram.IsBlocked(err) && s.Blocked != nil {
					if mErr := s.Blocked.MarkBlocked(ctx, id); mErr != nil {
						logger.Warn().Err(mErr).Int64("chat_id", id).Msg("mark blocked failed")
					}
				}
			} else {
				res.Delivered++
				observability.BroadcastMessagesTotal.WithLabelValues("delivered").Inc()
			}
			if !wait(ctx, s.MessageDelay) {
				break
			}
		}
	}
	// whatever cancellation skipped
	res.Failed = res.Total - res.Delivered

	span.SetAttributes(attribute.Int("broadcast.delivered", res.Delivered), attribute.Int("broadcast.failed", res.Failed))
	logger.Info().Int("delivered", res.Delivered).Int("failed", res.Failed).Int("total", res.Total).Msg("broadcast finished")
	return res
}

func (s *BroadcastService) sendOne(ctx context.Context, chatID int64, p domain.BroadcastPayload) error {
	return retry.Do(ctx, s.Policy, func(ctx context.Context, _ int) error {
		var err error
		switch p.Kind {
		case domain.BroadcastText:
			_, err = s.Sender.SendText(ctx, chatID, p.Text, nil)
		case domain.BroadcastPhoto:
			_, err = s.Sender.SendPhoto(ctx, chatID, telegram.Media{FileID: p.FileID}, p.Caption, nil)
		case domain.BroadcastVideo:
			_, err = s.Sender.SendVideo(ctx, chatID, telegram.Media{FileID: p.FileID}, p.Caption, nil)
		default:
			return fmt.Errorf("%w: unknown broadcast kind %q", ErrInvalidArgs, p.Kind)
		}
		return err
	})
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// wait sleeps for d unless ctx ends first.
func wait(ctx context.Context, d time.Duration) bool {
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
