// Package domain defines the persistence models for bot accounts, premium
// grants, usage counters, conversation history, and processed updates.
// These types are mapped with GORM and shared across the repository, service,
// and dispatcher layers.
package domain

import "time"

// User is a Telegram account known to the bot. A row is created on the first
// inbound update from an unseen id and is never deleted.
//
// Fields:
//   - TelegramID: platform user id (unique).
//   - Locale: selected two-letter locale; nil until the user picks one.
//   - LanguageCode: last language tag reported by the platform.
//   - ConversationState: nil means idle.
//   - Mode: active feature; nil when no mode is selected.
//   - Last*MessageID: ids of bot messages that a later /start or mode switch deletes.
//   - IsBlocked / BlockedAt: set when delivery reports the bot was blocked.
type User struct {
	ID                           uint               `json:"-"             gorm:"primaryKey"`
	TelegramID                   int64              `json:"telegram_id"   gorm:"not null;uniqueIndex:ux_users_telegram_id"`
	Locale                       *string            `json:"locale"        gorm:"type:varchar(8)"`
	LanguageCode                 *string            `json:"language_code" gorm:"type:varchar(16)"`
	ConversationState            *ConversationState `json:"state"         gorm:"type:varchar(48)"`
	Mode                         *Mode              `json:"mode"          gorm:"type:varchar(16)"`
	LastWelcomeImageMessageID    *int               `json:"-"`
	LastWelcomeGreetingMessageID *int               `json:"-"`
	LastMenuMessageID            *int               `json:"-"`
	LastStartCommandMessageID    *int               `json:"-"`
	IsBlocked                    bool               `json:"is_blocked"    gorm:"not null;default:false;index"`
	BlockedAt                    *time.Time         `json:"blocked_at"`
	CreatedAt                    time.Time          `json:"created_at"`
	UpdatedAt                    time.Time          `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// State returns the conversation state, or the empty state when idle.
func (u *User) State() ConversationState {
	if u == nil || u.ConversationState == nil {
		return StateIdle
	}
	return *u.ConversationState
}

// HasLocale reports whether the user has confirmed a locale.
func (u *User) HasLocale() bool {
	return u != nil && u.Locale != nil && *u.Locale != ""
}

// PremiumGrant holds the expiry of an account's premium access. Grants are
// created or extended by admins and never deleted.
type PremiumGrant struct {
	ID          uint      `json:"-"            gorm:"primaryKey"`
	TelegramID  int64     `json:"telegram_id"  gorm:"not null;uniqueIndex:ux_premium_telegram_id"`
	ActiveUntil time.Time `json:"active_until" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for PremiumGrant.
func (PremiumGrant) TableName() string { return "premium" }

// UsageCounter counts content messages consumed against the free quota.
type UsageCounter struct {
	ID         uint      `json:"-"           gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"not null;uniqueIndex:ux_usage_telegram_id"`
	TotalUsed  int       `json:"total_used"  gorm:"not null;default:0"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for UsageCounter.
func (UsageCounter) TableName() string { return "usage_counters" }

// Role of a history entry author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryEntry is one turn of the conversation used as completion context.
// Entries are append-only and cleared on mode switch.
type HistoryEntry struct {
	ID         uint      `json:"-"           gorm:"primaryKey"`
	TelegramID int64     `json:"telegram_id" gorm:"not null;index:idx_history_user_time,priority:1"`
	Role       Role      `json:"role"        gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content    string    `json:"content"     gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"  gorm:"not null;index:idx_history_user_time,priority:2"`
}

// TableName returns the database table name for HistoryEntry.
func (HistoryEntry) TableName() string { return "messages_history" }
