package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// Localizer renders UI strings; i18n.Translator satisfies it.
type Localizer interface {
	ResolvePtr(tag *string) string
	Translate(locale, key string, vars map[string]string) string
}

// ReminderService notifies premium users shortly before their access ends.
type ReminderService struct {
	Premium  *PremiumService
	Accounts *AccountService
	Sender   Messenger
	Text     Localizer
	// Days lists the lead times in days; each gets its own sweep.
	Days []int
}

// DispatchRenewalReminders sends premium_reminder to every account whose
// grant expires on one of the configured lead days. Delivery failures are
// logged and skipped; only lookup errors abort the sweep.
func (s *ReminderService) DispatchRenewalReminders(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("services/ReminderService").Start(ctx, "DispatchRenewalReminders")
	defer span.End()

	logger := log.With().Str("component", "reminders").Logger()
	sent := 0
	notified := map[int64]struct{}{}
	for _, d := range s.Days {
		if d < 0 {
			continue
		}
		grants, err := s.Premium.ExpiringWithin(ctx, d)
		if err != nil {
			span.RecordError(err)
			return sent, err
		}
		for _, g := range grants {
			if _, done := notified[g.TelegramID]; done {
				continue
			}
			notified[g.TelegramID] = struct{}{}

			var locale *string
			if u, err := s.Accounts.Find(ctx, g.TelegramID); err == nil {
				if u.IsBlocked {
					continue
				}
				locale = u.Locale
			}
			text := s.Text.Translate(s.Text.ResolvePtr(locale), "premium_reminder", map[string]string{
				"date": g.ActiveUntil.UTC().Format("2006-01-02"),
			})
			if _, err := s.Sender.SendText(ctx, g.TelegramID, text, nil); err != nil {
				logger.Warn().Err(err).Int64("chat_id", g.TelegramID).Msg("reminder delivery failed")
				if telegram.IsBlocked(err) {
					_ = s.Accounts.MarkBlocked(ctx, g.TelegramID)
				}
				continue
			}
			sent++
		}
	}
	span.SetAttributes(attribute.Int("reminders.sent", sent))
	logger.Info().Int("sent", sent).Ints("days", s.Days).Msg("renewal reminders dispatched")
	return sent, nil
}
