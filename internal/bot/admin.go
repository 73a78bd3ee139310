package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/chatbotchef/chatbotchef/internal/callback"
	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/repo"
	"github.com/chatbotchef/chatbotchef/internal/services"
	"github.com/chatbotchef/chatbotchef/internal/session"
	"github.com/chatbotchef/chatbotchef/internal/telegram"
)

const activityLayout = "2006-01-02 15:04 UTC"

func (d *Dispatcher) cmdAdmin(ctx context.Context, t *turn) error {
	if !d.isAdmin(t.from.ID) {
		_, err := d.say(ctx, t, d.tr(t.locale, "not_authorized"), nil)
		return err
	}
	if err := d.clearAdminState(ctx, t); err != nil {
		return err
	}
	_, err := d.say(ctx, t, d.tr(t.locale, "admin.menu.title"), telegram.AdminMenu(d.labels(t.locale)))
	return err
}

func (d *Dispatcher) clearAdminState(ctx context.Context, t *turn) error {
	if err := d.Sessions.Clear(ctx, t.from.ID); err != nil {
		log.Warn().Err(err).Int64("user_id", t.from.ID).Msg("clear admin session")
	}
	return d.setState(ctx, t, domain.StateIdle)
}

// enterAdminStep stores the session and the matching conversation state.
func (d *Dispatcher) enterAdminStep(ctx context.Context, t *turn, s session.AdminSession, st domain.ConversationState) error {
	if err := d.Sessions.Set(ctx, t.from.ID, s); err != nil {
		return err
	}
	return d.setState(ctx, t, st)
}

func (d *Dispatcher) onAdmin(ctx context.Context, t *turn, cb *tgbotapi.CallbackQuery, a callback.Admin) error {
	if !d.isAdmin(t.from.ID) {
		d.answer(ctx, cb, d.tr(t.locale, "not_authorized"))
		return nil
	}
	d.answer(ctx, cb, d.tr(t.locale, "admin.common.ack"))

	switch a.Kind {
	case callback.AdminStats:
		return d.sendStats(ctx, t)
	case callback.AdminLanguageStats:
		return d.sendLanguageStats(ctx, t)
	case callback.AdminBroadcast:
		if err := d.enterAdminStep(ctx, t, session.AwaitingBroadcastType(), domain.StateAdminAwaitingBroadcastContent); err != nil {
			return err
		}
		return d.promptBroadcastType(ctx, t)
	case callback.AdminBroadcastType:
		if err := d.enterAdminStep(ctx, t, session.AwaitingBroadcastContent(a.BroadcastKind), domain.StateAdminAwaitingBroadcastContent); err != nil {
			return err
		}
		return d.promptBroadcastContent(ctx, t, a.BroadcastKind)
	case callback.AdminBroadcastSend:
		return d.sendBroadcast(ctx, t)
	case callback.AdminCancel:
		if err := d.clearAdminState(ctx, t); err != nil {
			return err
		}
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.common.cancelled"), nil)
		return err
	case callback.AdminUserStatus:
		if err := d.enterAdminStep(ctx, t, session.AwaitingUserStatus(), domain.StateAdminAwaitingUserStatus); err != nil {
			return err
		}
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.user_status.prompt"), nil)
		return err
	case callback.AdminGrantPremium:
		if err := d.enterAdminStep(ctx, t, session.AwaitingGrantPremium(), domain.StateAdminAwaitingGrantPremium); err != nil {
			return err
		}
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.grant.prompt"), nil)
		return err
	}
	return nil
}

// handleAdminConversation consumes non-command input while the account is
// in an admin state. It reports whether the message was handled.
func (d *Dispatcher) handleAdminConversation(ctx context.Context, t *turn, msg *tgbotapi.Message) (bool, error) {
	state := t.user.State()
	if !state.IsAdmin() {
		return false, nil
	}
	if !d.isAdmin(t.from.ID) {
		return false, d.clearAdminState(ctx, t)
	}
	sess, err := d.Sessions.Get(ctx, t.from.ID)
	if errors.Is(err, session.ErrNotFound) {
		if err := d.clearAdminState(ctx, t); err != nil {
			return true, err
		}
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.common.expired"), nil)
		return true, err
	}
	if err != nil {
		return true, err
	}

	input := strings.TrimSpace(msg.Text)
	switch state {
	case domain.StateAdminAwaitingBroadcastContent, domain.StateAdminConfirmBroadcast:
		return true, d.onBroadcastInput(ctx, t, msg, sess)
	case domain.StateAdminAwaitingUserStatus:
		if input == "" {
			_, err := d.say(ctx, t, d.tr(t.locale, "admin.user_status.prompt"), nil)
			return true, err
		}
		return true, d.onUserStatusInput(ctx, t, input)
	case domain.StateAdminAwaitingGrantPremium:
		if input == "" {
			_, err := d.say(ctx, t, d.tr(t.locale, "admin.grant.prompt"), nil)
			return true, err
		}
		return true, d.onGrantInput(ctx, t, input)
	}
	return false, nil
}

func (d *Dispatcher) sendStats(ctx context.Context, t *turn) error {
	o, err := d.Admin.Overview(ctx)
	if err != nil {
		return err
	}
	line := func(key string, v int64) string {
		return d.tr(t.locale, "admin.stats."+key, "value", strconv.FormatInt(v, 10))
	}
	text := strings.Join([]string{
		line("total", o.TotalUsers),
		line("active7", o.Active7Days),
		line("active30", o.Active30Days),
		line("premium", o.ActivePremium),
		line("blocked", o.Blocked),
	}, "\n")
	_, err = d.say(ctx, t, text, nil)
	return err
}

func (d *Dispatcher) sendLanguageStats(ctx context.Context, t *turn) error {
	stats, err := d.Admin.LanguageStats(ctx)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.lang_stats.empty"), nil)
		return err
	}
	lines := []string{d.tr(t.locale, "admin.lang_stats.title")}
	for _, s := range stats {
		label := s.Locale
		if s.Locale == repo.UnknownLocale {
			label = d.tr(t.locale, "admin.lang_stats.unknown")
		}
		lines = append(lines, d.tr(t.locale, "admin.lang_stats.item", "locale", label, "count", strconv.FormatInt(s.Count, 10)))
	}
	_, err = d.say(ctx, t, strings.Join(lines, "\n"), nil)
	return err
}

func (d *Dispatcher) promptBroadcastType(ctx context.Context, t *turn) error {
	_, err := d.say(ctx, t, d.tr(t.locale, "admin.broadcast.type.title"), telegram.BroadcastTypeMenu(d.labels(t.locale)))
	return err
}

func (d *Dispatcher) promptBroadcastContent(ctx context.Context, t *turn, k domain.BroadcastKind) error {
	_, err := d.say(ctx, t, d.tr(t.locale, "admin.broadcast.prompt."+string(k)), nil)
	return err
}

func (d *Dispatcher) onBroadcastInput(ctx context.Context, t *turn, msg *tgbotapi.Message, sess session.AdminSession) error {
	switch sess.Step {
	case session.StepAwaitingBroadcastType:
		return d.promptBroadcastType(ctx, t)
	case session.StepAwaitingBroadcastContent:
		payload, ok := broadcastPayload(sess.BroadcastKind, msg)
		if !ok {
			if sess.BroadcastKind == domain.BroadcastText {
				_, err := d.say(ctx, t, d.tr(t.locale, "admin.broadcast.validation_empty"), nil)
				return err
			}
			return d.promptBroadcastContent(ctx, t, sess.BroadcastKind)
		}
		return d.previewBroadcast(ctx, t, payload)
	}
	// new input while a preview is pending starts over
	if err := d.enterAdminStep(ctx, t, session.AwaitingBroadcastType(), domain.StateAdminAwaitingBroadcastContent); err != nil {
		return err
	}
	return d.promptBroadcastType(ctx, t)
}

// broadcastPayload extracts content of kind k. Photo and video posts must
// carry exactly that media; captions are optional.
func broadcastPayload(k domain.BroadcastKind, msg *tgbotapi.Message) (domain.BroadcastPayload, bool) {
	caption := strings.TrimSpace(msg.Caption)
	switch k {
	case domain.BroadcastText:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return domain.BroadcastPayload{}, false
		}
		return domain.BroadcastPayload{Kind: k, Text: text}, true
	case domain.BroadcastPhoto:
		if len(msg.Photo) == 0 || msg.Video != nil || msg.Document != nil {
			return domain.BroadcastPayload{}, false
		}
		return domain.BroadcastPayload{Kind: k, FileID: msg.Photo[len(msg.Photo)-1].FileID, Caption: caption}, true
	case domain.BroadcastVideo:
		if msg.Video == nil || len(msg.Photo) > 0 || msg.Document != nil {
			return domain.BroadcastPayload{}, false
		}
		return domain.BroadcastPayload{Kind: k, FileID: msg.Video.FileID, Caption: caption}, true
	}
	return domain.BroadcastPayload{}, false
}

func (d *Dispatcher) previewBroadcast(ctx context.Context, t *turn, p domain.BroadcastPayload) error {
	title := d.tr(t.locale, "admin.broadcast.preview.title")
	kb := telegram.BroadcastPreviewMenu(d.labels(t.locale))
	caption := title
	if p.Caption != "" {
		caption += "\n\n" + p.Caption
	}
	var err error
	switch p.Kind {
	case domain.BroadcastText:
		_, err = d.say(ctx, t, title+"\n\n"+p.Text, kb)
	case domain.BroadcastPhoto:
		_, err = d.Bot.SendPhoto(ctx, t.chatID, telegram.Media{FileID: p.FileID}, caption, kb)
	case domain.BroadcastVideo:
		_, err = d.Bot.SendVideo(ctx, t.chatID, telegram.Media{FileID: p.FileID}, caption, kb)
	}
	if err != nil {
		log.Warn().Err(err).Int64("user_id", t.from.ID).Str("kind", string(p.Kind)).Msg("broadcast preview failed")
		if err := d.enterAdminStep(ctx, t, session.AwaitingBroadcastContent(p.Kind), domain.StateAdminAwaitingBroadcastContent); err != nil {
			return err
		}
		return d.promptBroadcastContent(ctx, t, p.Kind)
	}
	return d.enterAdminStep(ctx, t, session.BroadcastPreview(p), domain.StateAdminConfirmBroadcast)
}

func (d *Dispatcher) sendBroadcast(ctx context.Context, t *turn) error {
	sess, err := d.Sessions.Get(ctx, t.from.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return err
	}
	if err != nil || sess.Step != session.StepBroadcastPreview || sess.Payload == nil {
		if _, err := d.say(ctx, t, d.tr(t.locale, "admin.broadcast.nothing_to_send"), nil); err != nil {
			return err
		}
		return d.clearAdminState(ctx, t)
	}
	if err := d.clearAdminState(ctx, t); err != nil {
		return err
	}
	ids, err := d.Accounts.ListUserIDs(ctx)
	if err != nil {
		return err
	}
	res := d.Broadcast.Dispatch(ctx, t.from.ID, ids, *sess.Payload)
	_, err = d.say(ctx, t, d.tr(t.locale, "admin.broadcast.result",
		"delivered", strconv.Itoa(res.Delivered),
		"failed", strconv.Itoa(res.Failed),
		"total", strconv.Itoa(res.Total),
	), nil)
	return err
}

func (d *Dispatcher) onUserStatusInput(ctx context.Context, t *turn, input string) error {
	id, err := strconv.ParseInt(input, 10, 64)
	if err != nil {
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.validation.invalid_user_id"), nil)
		return err
	}
	st, err := d.Admin.UserStatus(ctx, id)
	if errors.Is(err, services.ErrUserNotFound) {
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.validation.not_found"), nil)
		return err
	}
	if err != nil {
		return err
	}
	if err := d.clearAdminState(ctx, t); err != nil {
		return err
	}

	na := d.tr(t.locale, "admin.common.not_available")
	lines := []string{d.tr(t.locale, "admin.user_status.result.title", "userId", strconv.FormatInt(id, 10))}
	if st.PremiumUntil != nil && st.PremiumUntil.After(d.now()) {
		lines = append(lines, d.tr(t.locale, "admin.user_status.result.premium_yes", "date", st.PremiumUntil.UTC().Format(dateLayout)))
	} else {
		lines = append(lines, d.tr(t.locale, "admin.user_status.result.premium_no"))
	}
	activity := na
	if st.LastActivity != nil {
		activity = st.LastActivity.UTC().Format(activityLayout)
	}
	lines = append(lines, d.tr(t.locale, "admin.user_status.result.last_activity", "value", activity))
	locale := na
	if st.Locale != nil && *st.Locale != "" {
		locale = *st.Locale
	}
	lines = append(lines, d.tr(t.locale, "admin.user_status.result.locale", "value", locale))
	_, err = d.say(ctx, t, strings.Join(lines, "\n"), nil)
	return err
}

// onGrantInput parses "<userId> <days>".
func (d *Dispatcher) onGrantInput(ctx context.Context, t *turn, input string) error {
	targetID, days, err := parseGrant(input)
	if err != nil {
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.validation.invalid_args"), nil)
		return err
	}
	target, err := d.Accounts.Find(ctx, targetID)
	if errors.Is(err, services.ErrUserNotFound) {
		_, err := d.say(ctx, t, d.tr(t.locale, "admin.validation.not_found"), nil)
		return err
	}
	if err != nil {
		return err
	}
	until, err := d.Premium.Grant(ctx, targetID, days)
	if err != nil {
		return err
	}
	if err := d.clearAdminState(ctx, t); err != nil {
		return err
	}
	date := until.UTC().Format(dateLayout)
	if _, err := d.say(ctx, t, d.tr(t.locale, "admin.grant.ok", "date", date), nil); err != nil {
		return err
	}
	targetLocale := d.Text.ResolvePtr(target.Locale)
	if _, err := d.Bot.SendText(ctx, targetID, d.tr(targetLocale, "user.premium.granted", "date", date), nil); err != nil {
		log.Warn().Err(err).Int64("target_id", targetID).Msg("premium notification failed")
	}
	return nil
}

func parseGrant(input string) (int64, int, error) {
	parts := strings.Fields(input)
	if len(parts) < 2 {
		return 0, 0, services.ErrInvalidArgs
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, services.ErrInvalidArgs
	}
	days, err := strconv.Atoi(parts[1])
	if err != nil || days <= 0 {
		return 0, 0, services.ErrInvalidArgs
	}
	return id, days, nil
}
