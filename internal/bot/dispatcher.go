// Package bot routes Telegram updates through the conversation state machine
// and the feature handlers.
package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chatbotchef/chatbotchef/internal/callback"
	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
	"github.com/chatbotchef/chatbotchef/internal/llm"
	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/services"
	"github.com/chatbotchef/chatbotchef/internal/session"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

// Messenger is the outbound Bot API surface; telegram.Client implements it.
type Messenger interface {
	services.Messenger
	RemoveKeyboard(ctx context.Context, chatID int64, messageID int) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// Completer produces assistant replies; llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Deps wires a Dispatcher.
type Deps struct {
	Bot      Messenger
	LLM      Completer
	Text     *i18n.Translator
	Sessions session.Store

	Accounts  *services.AccountService
	Premium   *services.PremiumService
	Usage     *services.UsageService
	History   *services.HistoryService
	Admin     *services.AdminService
	Broadcast *services.BroadcastService

	Telegram config.TelegramConfig
	Billing  config.BillingConfig
	Help     config.HelpConfig

	Now func() time.Time
}

// Dispatcher handles one update at a time per call; it is safe for
// concurrent use across different updates.
type Dispatcher struct {
	Deps
}

// New returns a Dispatcher.
func New(d Deps) *Dispatcher {
	return &Dispatcher{Deps: d}
}

// turn carries what every handler needs about the current update.
type turn struct {
	chatID int64
	from   *tgbotapi.User
	user   *domain.User
	locale string
}

// Handle processes u. It never panics outward: failures are logged and
// answered with the localized generic error.
func (d *Dispatcher) Handle(ctx context.Context, u tgbotapi.Update) {
	kind := updateKind(u)
	ctx, span := otel.Tracer("bot/Dispatcher").Start(ctx, "Handle",
		trace.WithAttributes(attribute.Int("update.id", u.UpdateID), attribute.String("update.kind", kind)))
	defer span.End()
	observability.UpdatesTotal.WithLabelValues(kind).Inc()

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("component", "dispatcher").
				Int("update_id", u.UpdateID).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("update handler panicked")
			d.fail(ctx, u)
		}
	}()

	var err error
	switch {
	case u.CallbackQuery != nil:
		err = d.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		err = d.handleMessage(ctx, u.Message)
	default:
		return
	}
	if err != nil {
		span.RecordError(err)
		log.Error().Err(err).Str("component", "dispatcher").Int("update_id", u.UpdateID).Str("kind", kind).Msg("update failed")
		d.fail(ctx, u)
	}
}

func updateKind(u tgbotapi.Update) string {
	switch {
	case u.CallbackQuery != nil:
		return "callback"
	case u.Message != nil:
		return "message"
	}
	return "other"
}

// fail acknowledges a pending button press and sends ai_error in the
// language the platform reports for the sender.
func (d *Dispatcher) fail(ctx context.Context, u tgbotapi.Update) {
	var (
		chatID int64
		from   *tgbotapi.User
	)
	if cb := u.CallbackQuery; cb != nil {
		from = cb.From
		if cb.Message != nil && cb.Message.Chat != nil {
			chatID = cb.Message.Chat.ID
		}
		if err := d.Bot.AnswerCallback(ctx, cb.ID, ""); err != nil {
			log.Debug().Err(err).Msg("answer callback after failure")
		}
	} else if m := u.Message; m != nil {
		from = m.From
		if m.Chat != nil {
			chatID = m.Chat.ID
		}
	}
	if chatID == 0 {
		return
	}
	tag := ""
	if from != nil {
		tag = from.LanguageCode
	}
	if _, err := d.Bot.SendText(ctx, chatID, d.tr(d.Text.Resolve(tag), "ai_error"), nil); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("error reply failed")
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil || strings.TrimSpace(cb.Data) == "" {
		return nil
	}
	action, ok := callback.Parse(cb.Data)
	if !ok {
		log.Debug().Str("component", "dispatcher").Str("data", cb.Data).Msg("unrecognized callback ignored")
		return nil
	}
	t, err := d.newTurn(ctx, cb.Message.Chat.ID, cb.From)
	if err != nil {
		return err
	}
	switch a := action.(type) {
	case callback.MainMenu:
		return d.onMainMenu(ctx, t, cb, a.Mode)
	case callback.Admin:
		return d.onAdmin(ctx, t, cb, a)
	case callback.Language:
		if a.Other {
			return d.onOtherLanguage(ctx, t, cb)
		}
		return d.onLanguageSelected(ctx, t, cb, a.Locale)
	}
	return nil
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || msg.Chat == nil {
		return nil
	}
	t, err := d.newTurn(ctx, msg.Chat.ID, msg.From)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(msg.Text)
	isCommand := strings.HasPrefix(text, "/")
	state := t.user.State()

	if isCommand && state.IsAdmin() && !strings.HasPrefix(text, "/admin") {
		log.Info().Str("component", "dispatcher").Int64("user_id", t.from.ID).Str("state", string(state)).Msg("command resets admin state")
		if err := d.clearAdminState(ctx, t); err != nil {
			return err
		}
		state = domain.StateIdle
	}

	if !isCommand {
		handled, err := d.handleAdminConversation(ctx, t, msg)
		if handled || err != nil {
			return err
		}
		state = t.user.State()
	}

	if len(msg.Photo) > 0 || msg.Document != nil || msg.Video != nil || text == "" {
		_, err := d.say(ctx, t, d.tr(t.locale, "only_text"), nil)
		return err
	}

	if state == domain.StateAwaitingGreeting && !isCommand {
		return d.onGreeting(ctx, t, text)
	}

	switch {
	case strings.HasPrefix(text, "/start"):
		return d.cmdStart(ctx, t, msg.MessageID)
	case strings.HasPrefix(text, "/help"):
		return d.sendHelp(ctx, t)
	case strings.HasPrefix(text, "/language"), d.isLanguageTrigger(t.locale, text):
		return d.cmdLanguage(ctx, t)
	case strings.HasPrefix(text, "/premiumstatus"):
		return d.cmdPremiumStatus(ctx, t)
	case strings.HasPrefix(text, "/admin"):
		return d.cmdAdmin(ctx, t)
	case strings.HasPrefix(text, "/whoami"):
		return d.cmdWhoAmI(ctx, t)
	}
	return d.onContent(ctx, t, text)
}

// newTurn ensures the account and resolves its locale: the confirmed
// locale when set, otherwise the platform language tag.
func (d *Dispatcher) newTurn(ctx context.Context, chatID int64, from *tgbotapi.User) (*turn, error) {
	user, err := d.Accounts.Ensure(ctx, from.ID, from.LanguageCode)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	locale := d.Text.Resolve(from.LanguageCode)
	if user.HasLocale() {
		locale = d.Text.ResolvePtr(user.Locale)
	}
	return &turn{chatID: chatID, from: from, user: user, locale: locale}, nil
}

func (d *Dispatcher) isLanguageTrigger(locale, text string) bool {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return false
	}
	if s == "change language" {
		return true
	}
	for _, k := range d.Text.Keywords(locale, "menu.language.triggers") {
		if s == k {
			return true
		}
	}
	return false
}

// tr renders key with vars given as key/value pairs.
func (d *Dispatcher) tr(locale, key string, kv ...string) string {
	var vars map[string]string
	if len(kv) > 1 {
		vars = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			vars[kv[i]] = kv[i+1]
		}
	}
	return d.Text.Translate(locale, key, vars)
}

func (d *Dispatcher) labels(locale string) telegram.Labeler {
	return func(key string) string { return d.Text.Translate(locale, key, nil) }
}

func (d *Dispatcher) say(ctx context.Context, t *turn, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, error) {
	return d.Bot.SendText(ctx, t.chatID, text, kb)
}

// notify sends text without failing the turn: state changes are persisted
// before it runs, and a lost message must not undo them.
func (d *Dispatcher) notify(ctx context.Context, t *turn, text string, kb *tgbotapi.InlineKeyboardMarkup) (int, bool) {
	id, err := d.say(ctx, t, text, kb)
	if err != nil {
		log.Warn().Err(err).Str("component", "dispatcher").Int64("chat_id", t.chatID).Msg("send failed")
		return 0, false
	}
	return id, true
}

func (d *Dispatcher) answer(ctx context.Context, cb *tgbotapi.CallbackQuery, text string) {
	if err := d.Bot.AnswerCallback(ctx, cb.ID, text); err != nil {
		log.Warn().Err(err).Str("component", "dispatcher").Msg("answer callback failed")
	}
}

func (d *Dispatcher) isAdmin(id int64) bool { return d.Telegram.IsAdmin(id) }

func (d *Dispatcher) now() time.Time {
	if d.Now == nil {
		return time.Now().UTC()
	}
	return d.Now().UTC()
}

func (d *Dispatcher) setState(ctx context.Context, t *turn, s domain.ConversationState) error {
	if err := d.Accounts.SetState(ctx, t.from.ID, s); err != nil {
		return err
	}
	t.user.ConversationState = s.Ptr()
	return nil
}

func (d *Dispatcher) setMode(ctx context.Context, t *turn, m *domain.Mode) error {
	if err := d.Accounts.SetMode(ctx, t.from.ID, m); err != nil {
		return err
	}
	t.user.Mode = m
	return nil
}
