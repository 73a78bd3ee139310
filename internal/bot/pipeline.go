package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// Deduper reports whether an update id is new.
type Deduper interface {
	MarkProcessed(ctx context.Context, updateID int64) (bool, error)
}

// Pipeline drops redelivered updates before handing them to Next. Both
// transports feed updates through it.
type Pipeline struct {
	Dedup Deduper
	Next  telegram.UpdateHandler
}

// Handle implements telegram.UpdateHandler. When the marker store fails the
// update is still processed.
func (p *Pipeline) Handle(ctx context.Context, u tgbotapi.Update) {
	first, err := p.Dedup.MarkProcessed(ctx, int64(u.UpdateID))
	if err != nil {
		log.Warn().Err(err).Str("component", "pipeline").Int("update_id", u.UpdateID).Msg("dedup check failed; processing anyway")
	} else if !first {
		log.Debug().Str("component", "pipeline").Int("update_id", u.UpdateID).Msg("duplicate update skipped")
		return
	}
	p.Next.Handle(ctx, u)
}
