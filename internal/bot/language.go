package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
)

func (d *Dispatcher) onLanguageSelected(ctx context.Context, t *turn, cb *tgbotapi.CallbackQuery, tag string) error {
	locale, ok := i18n.Normalize(tag)
	if !ok {
		d.answer(ctx, cb, "")
		return nil
	}
	already := t.user.HasLocale() && *t.user.Locale == locale
	if !already {
		if err := d.Accounts.SetLocale(ctx, t.from.ID, locale); err != nil {
			return err
		}
		t.user.Locale = &locale
	}
	t.locale = locale
	if err := d.setMode(ctx, t, nil); err != nil {
		return err
	}
	if err := d.setState(ctx, t, domain.StateIdle); err != nil {
		return err
	}

	key := "lang.changed"
	if already {
		key = "lang.already"
	}
	text := d.tr(locale, key, "langName", i18n.NativeName(locale))
	d.answer(ctx, cb, text)
	d.removeKeyboard(ctx, t, cb)
	d.notify(ctx, t, text, nil)
	return d.showMainMenu(ctx, t, nil, true)
}

func (d *Dispatcher) onOtherLanguage(ctx context.Context, t *turn, cb *tgbotapi.CallbackQuery) error {
	d.answer(ctx, cb, d.tr(t.locale, "lang.other.title"))
	if err := d.setState(ctx, t, domain.StateAwaitingGreeting); err != nil {
		return err
	}
	d.removeKeyboard(ctx, t, cb)
	_, err := d.say(ctx, t, d.tr(t.locale, "lang.other.prompt"), nil)
	return err
}

// onGreeting detects a locale from free text: a known greeting first, then a
// language name, then the platform language tag.
func (d *Dispatcher) onGreeting(ctx context.Context, t *turn, text string) error {
	code, ok := i18n.DetectByGreeting(text)
	if !ok {
		code, ok = i18n.DetectByName(text)
	}
	if !ok {
		code, _ = i18n.Normalize(t.from.LanguageCode)
		ok = code != ""
	}
	if !ok {
		_, err := d.say(ctx, t, d.tr(t.locale, "lang.other.unknown", "languages", i18n.SupportedLanguageList()), nil)
		return err
	}

	var reply string
	if !i18n.IsSupported(code) {
		code = d.Text.DefaultLocale()
		reply = d.tr(code, "lang.other.unsupported", "languages", i18n.SupportedLanguageList())
	} else {
		reply = d.tr(code, "lang.other.confirm", "langName", i18n.NativeName(code))
	}
	if err := d.Accounts.SetLocale(ctx, t.from.ID, code); err != nil {
		return err
	}
	t.user.Locale = &code
	t.locale = code
	if err := d.setState(ctx, t, domain.StateIdle); err != nil {
		return err
	}
	if err := d.setMode(ctx, t, nil); err != nil {
		return err
	}
	d.notify(ctx, t, reply, nil)
	return d.showMainMenu(ctx, t, nil, true)
}

func (d *Dispatcher) removeKeyboard(ctx context.Context, t *turn, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	if err := d.Bot.RemoveKeyboard(ctx, t.chatID, cb.Message.MessageID); err != nil {
		log.Debug().Err(err).Int("message_id", cb.Message.MessageID).Msg("remove keyboard")
	}
}
