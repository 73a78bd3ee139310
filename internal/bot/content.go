package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/llm"
)

// onMainMenu activates a feature mode. Switching modes starts a fresh
// conversation.
func (d *Dispatcher) onMainMenu(ctx context.Context, t *turn, cb *tgbotapi.CallbackQuery, mode domain.Mode) error {
	menuID := cb.Message.MessageID
	if err := d.Accounts.SetMenuMessageID(ctx, t.from.ID, menuID); err != nil {
		return err
	}
	t.user.LastMenuMessageID = &menuID

	if mode == domain.ModeHelp {
		d.answer(ctx, cb, "")
		return d.sendHelp(ctx, t)
	}
	if err := d.setMode(ctx, t, &mode); err != nil {
		return err
	}
	if err := d.setState(ctx, t, domain.StateIdle); err != nil {
		return err
	}
	if err := d.History.Clear(ctx, t.from.ID); err != nil {
		return err
	}
	d.answer(ctx, cb, "")
	if err := d.clearStartSequence(ctx, t, true); err != nil {
		return err
	}
	_, err := d.say(ctx, t, d.tr(t.locale, "mode."+strings.ToLower(string(mode))+".activated"), nil)
	return err
}

// onContent answers free text in the active mode. Non-admin accounts are
// held to the free quota unless premium; usage is counted either way.
func (d *Dispatcher) onContent(ctx context.Context, t *turn, text string) error {
	if t.user.Mode == nil {
		return d.showMainMenu(ctx, t, nil, false)
	}
	mode := *t.user.Mode
	if mode == domain.ModeHelp {
		if err := d.sendHelp(ctx, t); err != nil {
			return err
		}
		return d.setMode(ctx, t, nil)
	}

	if !d.isAdmin(t.from.ID) {
		premium, err := d.Premium.IsActive(ctx, t.from.ID)
		if err != nil {
			return err
		}
		if !premium {
			used, err := d.Usage.Get(ctx, t.from.ID)
			if err != nil {
				return err
			}
			if used >= d.Billing.FreeTotalLimit {
				_, err := d.say(ctx, t, d.tr(t.locale, "limit_reached",
					"limit", strconv.Itoa(d.Billing.FreeTotalLimit),
					"price", d.Billing.PremiumPrice,
					"duration", strconv.Itoa(d.Billing.PremiumDurationDays),
				), nil)
				return err
			}
		}
		if _, err := d.Usage.Increment(ctx, t.from.ID); err != nil {
			return err
		}
	}

	history, err := d.History.Recent(ctx, t.from.ID)
	if err != nil {
		return err
	}
	prefix := stylePrefix(t.locale)
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: systemPrompt(mode, t.locale)})
	for _, h := range history {
		switch h.Role {
		case domain.RoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prefix + h.Content})
		case domain.RoleAssistant:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: h.Content})
		}
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: prefix + text})
	if err := d.History.Append(ctx, t.from.ID, domain.RoleUser, text); err != nil {
		return err
	}

	reply, err := d.LLM.Complete(ctx, msgs)
	body := strings.TrimSpace(reply)
	var out string
	if err != nil || body == "" {
		if err != nil {
			log.Warn().Err(err).Str("component", "dispatcher").Int64("user_id", t.from.ID).Msg("completion failed")
		}
		body = d.tr(t.locale, "ai_error")
		out = body
	} else {
		out = d.tr(t.locale, "chef_intro") + "\n" + body
	}
	if err := d.History.Append(ctx, t.from.ID, domain.RoleAssistant, body); err != nil {
		return err
	}
	d.notify(ctx, t, out, nil)
	return nil
}
