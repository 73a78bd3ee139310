package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
	"github.com/chatbotchef/chatbotchef/internal/repo"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

const dateLayout = "2006-01-02"

func (d *Dispatcher) cmdStart(ctx context.Context, t *turn, startMessageID int) error {
	awaitingSelection := t.user.State() == domain.StateAwaitingLanguageSelection
	if err := d.clearStartSequence(ctx, t, false); err != nil {
		return err
	}
	if err := d.setMode(ctx, t, nil); err != nil {
		return err
	}
	if awaitingSelection || !t.user.HasLocale() || !i18n.IsSupported(*t.user.Locale) {
		if err := d.setState(ctx, t, domain.StateAwaitingLanguageSelection); err != nil {
			return err
		}
		return d.sendLanguageMenu(ctx, t)
	}
	if err := d.setState(ctx, t, domain.StateIdle); err != nil {
		return err
	}
	return d.showMainMenu(ctx, t, &startMessageID, true)
}

func (d *Dispatcher) cmdLanguage(ctx context.Context, t *turn) error {
	if err := d.setState(ctx, t, domain.StateAwaitingLanguageSelection); err != nil {
		return err
	}
	return d.sendLanguageMenu(ctx, t)
}

func (d *Dispatcher) sendLanguageMenu(ctx context.Context, t *turn) error {
	_, err := d.say(ctx, t, d.tr(t.locale, "menu.language.title"), telegram.LanguageMenu(d.labels(t.locale)))
	return err
}

func (d *Dispatcher) sendHelp(ctx context.Context, t *turn) error {
	orDash := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}
	text := d.tr(t.locale, "help.body",
		"website", orDash(d.Help.WebsiteURL),
		"privacy", orDash(d.Help.PrivacyPolicyURL),
		"offer", orDash(d.Help.PublicOfferURL),
		"support_email", orDash(d.Help.SupportEmail),
	)
	_, err := d.say(ctx, t, text, nil)
	return err
}

func (d *Dispatcher) cmdPremiumStatus(ctx context.Context, t *turn) error {
	until, err := d.Premium.Until(ctx, t.from.ID)
	if err != nil {
		return err
	}
	text := d.tr(t.locale, "premium_status_inactive")
	if until != nil && until.After(d.now()) {
		text = d.tr(t.locale, "premium_status_active", "date", until.UTC().Format(dateLayout))
	}
	_, err = d.say(ctx, t, text, nil)
	return err
}

func (d *Dispatcher) cmdWhoAmI(ctx context.Context, t *turn) error {
	username, first := "-", "-"
	if t.from.UserName != "" {
		username = "@" + t.from.UserName
	}
	if t.from.FirstName != "" {
		first = t.from.FirstName
	}
	_, err := d.say(ctx, t, d.tr(t.locale, "whoami.you_are",
		"id", strconv.FormatInt(t.from.ID, 10),
		"username", username,
		"first_name", first,
	), nil)
	return err
}

// showMainMenu sends the welcome sequence (optional image, greeting, menu)
// and remembers its message ids so the next /start or mode switch can
// delete it.
func (d *Dispatcher) showMainMenu(ctx context.Context, t *turn, startMessageID *int, includeImage bool) error {
	refs := repo.MessageRefs{StartCommand: t.user.LastStartCommandMessageID}
	if startMessageID != nil {
		refs.StartCommand = startMessageID
	}
	if includeImage && d.Telegram.WelcomeImageURL != "" {
		id, err := d.Bot.SendPhoto(ctx, t.chatID, telegram.Media{URL: d.Telegram.WelcomeImageURL}, "", nil)
		if err != nil {
			log.Warn().Err(err).Str("component", "dispatcher").Int64("chat_id", t.chatID).Msg("welcome image failed")
		} else {
			refs.WelcomeImage = &id
		}
	}
	if greeting, ok := d.notify(ctx, t, d.tr(t.locale, "start.greeting"), nil); ok {
		refs.WelcomeGreeting = &greeting
	}
	if menu, ok := d.notify(ctx, t, d.tr(t.locale, "menu.main.title"), telegram.MainMenu(d.labels(t.locale))); ok {
		refs.Menu = &menu
	}
	if err := d.Accounts.SetMessageRefs(ctx, t.from.ID, refs); err != nil {
		return err
	}
	t.user.LastWelcomeImageMessageID = refs.WelcomeImage
	t.user.LastWelcomeGreetingMessageID = refs.WelcomeGreeting
	t.user.LastMenuMessageID = refs.Menu
	t.user.LastStartCommandMessageID = refs.StartCommand
	return nil
}

// clearStartSequence deletes the previous welcome messages. The /start
// command message itself is only deleted when withStart is set.
func (d *Dispatcher) clearStartSequence(ctx context.Context, t *turn, withStart bool) error {
	ids := []*int{t.user.LastWelcomeImageMessageID, t.user.LastWelcomeGreetingMessageID, t.user.LastMenuMessageID}
	if withStart {
		ids = append(ids, t.user.LastStartCommandMessageID)
	}
	for _, id := range ids {
		if id == nil {
			continue
		}
		if err := d.Bot.DeleteMessage(ctx, t.chatID, *id); err != nil {
			log.Debug().Err(err).Int("message_id", *id).Msg("delete stale message")
		}
	}
	refs := repo.MessageRefs{}
	if !withStart {
		refs.StartCommand = t.user.LastStartCommandMessageID
	}
	if err := d.Accounts.SetMessageRefs(ctx, t.from.ID, refs); err != nil {
		return err
	}
	t.user.LastWelcomeImageMessageID = nil
	t.user.LastWelcomeGreetingMessageID = nil
	t.user.LastMenuMessageID = nil
	t.user.LastStartCommandMessageID = refs.StartCommand
	return nil
}
