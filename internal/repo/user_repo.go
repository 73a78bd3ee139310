// Package repo implements the data persistence layer for bot records, backed
// by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside transactions. They follow the "thin repository" approach: no
// business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - Lookups of a missing user return ErrNotFound; updates are no-ops.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// MessageRefs carries the bookkeeping message ids stored on a user. A nil
// field is written as NULL.
type MessageRefs struct {
	WelcomeImage    *int
	WelcomeGreeting *int
	Menu            *int
	StartCommand    *int
}

// EnsureUser returns the user with telegramID, creating it in the
// AWAITING_LANGUAGE_SELECTION state when unseen. For existing users a
// non-nil languageCode that differs from the stored one is refreshed.
// created reports whether the row was inserted by this call.
func EnsureUser(ctx context.Context, db *gorm.DB, telegramID int64, languageCode *string) (u *domain.User, created bool, err error) {
	u, err = FindUser(ctx, db, telegramID)
	switch {
	case err == nil:
		if languageCode != nil && (u.LanguageCode == nil || *u.LanguageCode != *languageCode) {
			if err := db.WithContext(ctx).Model(&domain.User{}).
				Where("telegram_id = ?", telegramID).
				Update("language_code", *languageCode).Error; err != nil {
				return nil, false, err
			}
			u.LanguageCode = languageCode
		}
		return u, false, nil
	case !errors.Is(err, ErrNotFound):
		return nil, false, err
	}

	u = &domain.User{
		TelegramID:        telegramID,
		LanguageCode:      languageCode,
		ConversationState: domain.StateAwaitingLanguageSelection.Ptr(),
		CreatedAt:         time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		// A concurrent update for the same account created the row first.
		if isUniqueViolation(err) {
			u, err = FindUser(ctx, db, telegramID)
			return u, false, err
		}
		return nil, false, err
	}
	return u, true, nil
}

// FindUser fetches a user by Telegram id or returns ErrNotFound.
func FindUser(ctx context.Context, db *gorm.DB, telegramID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLocale sets (or clears, when locale is nil) the selected locale.
func UpdateLocale(ctx context.Context, db *gorm.DB, telegramID int64, locale *string) error {
	return updateUserColumn(ctx, db, telegramID, "locale", locale)
}

// UpdateConversationState stores the state; the idle state is stored as NULL.
func UpdateConversationState(ctx context.Context, db *gorm.DB, telegramID int64, state domain.ConversationState) error {
	return updateUserColumn(ctx, db, telegramID, "conversation_state", state.Ptr())
}

// UpdateMode stores the active mode; nil clears it.
func UpdateMode(ctx context.Context, db *gorm.DB, telegramID int64, mode *domain.Mode) error {
	return updateUserColumn(ctx, db, telegramID, "mode", mode)
}

// UpdateMessageRefs overwrites all bookkeeping message ids at once.
func UpdateMessageRefs(ctx context.Context, db *gorm.DB, telegramID int64, refs MessageRefs) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]any{
			"last_welcome_image_message_id":    refs.WelcomeImage,
			"last_welcome_greeting_message_id": refs.WelcomeGreeting,
			"last_menu_message_id":             refs.Menu,
			"last_start_command_message_id":    refs.StartCommand,
		}).Error
}

// UpdateMenuMessageID records the id of the most recent menu message.
func UpdateMenuMessageID(ctx context.Context, db *gorm.DB, telegramID int64, messageID *int) error {
	return updateUserColumn(ctx, db, telegramID, "last_menu_message_id", messageID)
}

// ListAllUserIDs returns every known Telegram id in ascending order.
func ListAllUserIDs(ctx context.Context, db *gorm.DB) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Model(&domain.User{}).
		Order("telegram_id ASC").
		Pluck("telegram_id", &ids).Error
	return ids, err
}

// MarkBlocked flags a user that blocked the bot. Already-blocked users keep
// their original BlockedAt.
func MarkBlocked(ctx context.Context, db *gorm.DB, telegramID int64, at time.Time) error {
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("telegram_id = ? AND is_blocked = ?", telegramID, false).
		Updates(map[string]any{"is_blocked": true, "blocked_at": at.UTC()}).Error
}

func updateUserColumn(ctx context.Context, db *gorm.DB, telegramID int64, column string, value any) error {
	// Updating a missing account is a no-op.
	return db.WithContext(ctx).Model(&domain.User{}).
		Where("telegram_id = ?", telegramID).
		Update(column, value).Error
}
