package domain

import "strings"

// ConversationState gates how the next inbound text is interpreted.
// Idle is the empty value and is stored as NULL.
type ConversationState string

const (
	StateIdle                          ConversationState = ""
	StateAwaitingLanguageSelection     ConversationState = "AWAITING_LANGUAGE_SELECTION"
	StateAwaitingGreeting              ConversationState = "AWAITING_GREETING"
	StateAdminAwaitingBroadcastContent ConversationState = "ADMIN_AWAITING_BROADCAST_CONTENT"
	StateAdminConfirmBroadcast         ConversationState = "ADMIN_CONFIRM_BROADCAST"
	StateAdminAwaitingUserStatus       ConversationState = "ADMIN_AWAITING_USER_STATUS"
	StateAdminAwaitingGrantPremium     ConversationState = "ADMIN_AWAITING_GRANT_PREMIUM"
)

// IsAdmin reports whether s is one of the admin sub-flow states.
func (s ConversationState) IsAdmin() bool {
	switch s {
	case StateAdminAwaitingBroadcastContent, StateAdminConfirmBroadcast,
		StateAdminAwaitingUserStatus, StateAdminAwaitingGrantPremium:
		return true
	}
	return false
}

// ParseConversationState maps a stored value to a state; unknown values are idle.
func ParseConversationState(raw string) ConversationState {
	switch s := ConversationState(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StateAwaitingLanguageSelection, StateAwaitingGreeting,
		StateAdminAwaitingBroadcastContent, StateAdminConfirmBroadcast,
		StateAdminAwaitingUserStatus, StateAdminAwaitingGrantPremium:
		return s
	}
	return StateIdle
}

// Ptr returns a pointer for storage, or nil for the idle state.
func (s ConversationState) Ptr() *ConversationState {
	if s == StateIdle {
		return nil
	}
	return &s
}

// Mode is the feature a user's free text is directed at.
type Mode string

const (
	ModeRecipes    Mode = "RECIPES"
	ModeCalorie    Mode = "CALORIE"
	ModeIngredient Mode = "INGREDIENT"
	ModeHelp       Mode = "HELP"
)

// ParseMode maps a stored value to a Mode.
func ParseMode(raw string) (Mode, bool) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(raw))); m {
	case ModeRecipes, ModeCalorie, ModeIngredient, ModeHelp:
		return m, true
	}
	return "", false
}

// BroadcastKind selects the payload type of an admin broadcast.
type BroadcastKind string

const (
	BroadcastText  BroadcastKind = "text"
	BroadcastPhoto BroadcastKind = "photo"
	BroadcastVideo BroadcastKind = "video"
)

// ParseBroadcastKind maps a raw value to a BroadcastKind.
func ParseBroadcastKind(raw string) (BroadcastKind, bool) {
	switch k := BroadcastKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case BroadcastText, BroadcastPhoto, BroadcastVideo:
		return k, true
	}
	return "", false
}

// BroadcastPayload is the content fanned out by an admin broadcast.
// Text is used for text broadcasts; FileID and Caption for photo and video.
type BroadcastPayload struct {
	Kind    BroadcastKind `json:"kind"`
	Text    string        `json:"text,omitempty"`
	FileID  string        `json:"file_id,omitempty"`
	Caption string        `json:"caption,omitempty"`
}
