// Package callback decodes and builds inline-button payloads.
//
// A payload matches one of three grammars, tried in order:
//
//	mode:<recipes|calorie|ingredient|help>
//	admin:<stats|broadcast|broadcast_send|cancel|user_status|grant_premium|lang_stats>
//	admin:broadcast_type:<text|photo|video>
//	lang:set:<locale> | lang:other
package callback

import (
	"strings"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

const (
	modePrefix          = "mode:"
	adminPrefix         = "admin:"
	broadcastTypePrefix = "broadcast_type:"
	langSetPrefix       = "lang:set:"
	langOther           = "lang:other"
)

// Action is one of MainMenu, Admin or Language.
type Action interface {
	Data() string
	isAction()
}

// MainMenu selects a feature mode.
type MainMenu struct {
	Mode domain.Mode
}

// AdminKind enumerates admin panel buttons.
type AdminKind string

const (
	AdminStats         AdminKind = "stats"
	AdminBroadcast     AdminKind = "broadcast"
	AdminBroadcastType AdminKind = "broadcast_type"
	AdminBroadcastSend AdminKind = "broadcast_send"
	AdminCancel        AdminKind = "cancel"
	AdminUserStatus    AdminKind = "user_status"
	AdminGrantPremium  AdminKind = "grant_premium"
	AdminLanguageStats AdminKind = "lang_stats"
)

// Admin is an admin panel action. BroadcastKind is set only for
// AdminBroadcastType.
type Admin struct {
	Kind          AdminKind
	BroadcastKind domain.BroadcastKind
}

// Language either picks a locale or asks for free-text detection.
type Language struct {
	Locale string
	Other  bool
}

func (MainMenu) isAction() {}
func (Admin) isAction()    {}
func (Language) isAction() {}

func (a MainMenu) Data() string { return MainMenuData(a.Mode) }

func (a Admin) Data() string {
	if a.Kind == AdminBroadcastType {
		return BroadcastTypeData(a.BroadcastKind)
	}
	return AdminData(a.Kind)
}

func (a Language) Data() string {
	if a.Other {
		return LanguageOtherData()
	}
	return LanguageSetData(a.Locale)
}

// Parse decodes data, returning false for unrecognized payloads.
func Parse(data string) (Action, bool) {
	if data == "" {
		return nil, false
	}
	if a, ok := parseMainMenu(data); ok {
		return a, true
	}
	if a, ok := parseAdmin(data); ok {
		return a, true
	}
	if a, ok := parseLanguage(data); ok {
		return a, true
	}
	return nil, false
}

func parseMainMenu(data string) (Action, bool) {
	raw, ok := strings.CutPrefix(data, modePrefix)
	if !ok {
		return nil, false
	}
	var m domain.Mode
	switch raw {
	case "recipes":
		m = domain.ModeRecipes
	case "calorie":
		m = domain.ModeCalorie
	case "ingredient":
		m = domain.ModeIngredient
	case "help":
		m = domain.ModeHelp
	default:
		return nil, false
	}
	return MainMenu{Mode: m}, true
}

func parseAdmin(data string) (Action, bool) {
	raw, ok := strings.CutPrefix(data, adminPrefix)
	if !ok {
		return nil, false
	}
	switch k := AdminKind(raw); k {
	case AdminStats, AdminBroadcast, AdminBroadcastSend, AdminCancel,
		AdminUserStatus, AdminGrantPremium, AdminLanguageStats:
		return Admin{Kind: k}, true
	}
	kind, ok := strings.CutPrefix(raw, broadcastTypePrefix)
	if !ok {
		return nil, false
	}
	bk, ok := domain.ParseBroadcastKind(kind)
	if !ok {
		return nil, false
	}
	return Admin{Kind: AdminBroadcastType, BroadcastKind: bk}, true
}

func parseLanguage(data string) (Action, bool) {
	if data == langOther {
		return Language{Other: true}, true
	}
	locale, ok := strings.CutPrefix(data, langSetPrefix)
	if !ok || strings.TrimSpace(locale) == "" {
		return nil, false
	}
	return Language{Locale: locale}, true
}

// MainMenuData builds a mode selection payload.
func MainMenuData(m domain.Mode) string {
	return modePrefix + strings.ToLower(string(m))
}

// AdminData builds an admin payload for kinds without arguments.
func AdminData(k AdminKind) string { return adminPrefix + string(k) }

// BroadcastTypeData builds an admin broadcast type payload.
func BroadcastTypeData(k domain.BroadcastKind) string {
	return adminPrefix + broadcastTypePrefix + string(k)
}

// LanguageSetData builds a locale selection payload.
func LanguageSetData(locale string) string { return langSetPrefix + locale }

// LanguageOtherData builds the "other language" payload.
func LanguageOtherData() string { return langOther }
