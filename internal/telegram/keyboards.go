package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/chatbotchef/chatbotchef/internal/callback"
	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/i18n"
)

// Labeler renders a UI string key for the keyboard's locale.
type Labeler func(key string) string

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

// LanguageMenu lists the inline locales in two rows plus an "other" button.
func LanguageMenu(label Labeler) *tgbotapi.InlineKeyboardMarkup {
	lang := func(code string) tgbotapi.InlineKeyboardButton {
		return button(i18n.InlineLabel(code), callback.LanguageSetData(code))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(lang("en"), lang("de"), lang("it")),
		tgbotapi.NewInlineKeyboardRow(lang("es"), lang("fr"), button(label("lang.other.button"), callback.LanguageOtherData())),
	)
	return &kb
}

// MainMenu has one row per feature mode.
func MainMenu(label Labeler) *tgbotapi.InlineKeyboardMarkup {
	row := func(key string, m domain.Mode) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(button(label(key), callback.MainMenuData(m)))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		row("menu.main.btn.recipes", domain.ModeRecipes),
		row("menu.main.btn.calorie", domain.ModeCalorie),
		row("menu.main.btn.ingredient", domain.ModeIngredient),
		row("menu.main.btn.help", domain.ModeHelp),
	)
	return &kb
}

// AdminMenu is the /admin panel.
func AdminMenu(label Labeler) *tgbotapi.InlineKeyboardMarkup {
	b := func(key string, k callback.AdminKind) tgbotapi.InlineKeyboardButton {
		return button(label(key), callback.AdminData(k))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(b("admin.menu.btn.stats", callback.AdminStats), b("admin.menu.btn.lang_stats", callback.AdminLanguageStats)),
		tgbotapi.NewInlineKeyboardRow(b("admin.menu.btn.broadcast", callback.AdminBroadcast)),
		tgbotapi.NewInlineKeyboardRow(b("admin.menu.btn.user_status", callback.AdminUserStatus), b("admin.menu.btn.grant_premium", callback.AdminGrantPremium)),
		tgbotapi.NewInlineKeyboardRow(b("admin.menu.btn.cancel", callback.AdminCancel)),
	)
	return &kb
}

// BroadcastTypeMenu picks text, photo or video.
func BroadcastTypeMenu(label Labeler) *tgbotapi.InlineKeyboardMarkup {
	b := func(k domain.BroadcastKind) tgbotapi.InlineKeyboardButton {
		return button(label("admin.broadcast.type.btn."+string(k)), callback.BroadcastTypeData(k))
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(b(domain.BroadcastText), b(domain.BroadcastPhoto), b(domain.BroadcastVideo)),
		tgbotapi.NewInlineKeyboardRow(button(label("admin.broadcast.btn.cancel"), callback.AdminData(callback.AdminCancel))),
	)
	return &kb
}

// BroadcastPreviewMenu confirms or cancels a prepared broadcast.
func BroadcastPreviewMenu(label Labeler) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(label("admin.broadcast.btn.send"), callback.AdminData(callback.AdminBroadcastSend)),
			button(label("admin.broadcast.btn.cancel"), callback.AdminData(callback.AdminCancel)),
		),
	)
	return &kb
}

// SanitizeMarkup drops buttons without text or callback data and rows left
// empty. It returns nil when nothing remains.
func SanitizeMarkup(m *tgbotapi.InlineKeyboardMarkup) *tgbotapi.InlineKeyboardMarkup {
	if m == nil {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, row := range m.InlineKeyboard {
		var kept []tgbotapi.InlineKeyboardButton
		for _, b := range row {
			if strings.TrimSpace(b.Text) == "" || b.CallbackData == nil || strings.TrimSpace(*b.CallbackData) == "" {
				continue
			}
			kept = append(kept, b)
		}
		if len(kept) > 0 {
			rows = append(rows, kept)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
