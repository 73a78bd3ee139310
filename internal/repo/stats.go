// Package repo implements the data persistence layer for bot records, backed
// by GORM. This file provides the aggregate queries behind the admin
// statistics screens. Each function is context-aware and safe to call from
// services.
package repo

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// UnknownLocale labels users that never picked a locale in LanguageStats.
const UnknownLocale = "unknown"

// Overview aggregates account counters for the admin stats screen.
//
// Fields:
//   - TotalUsers:     every known account
//   - Active7Days:    distinct non-blocked accounts with history in the last 7 days
//   - Active30Days:   same, last 30 days
//   - ActivePremium:  grants expiring after now
//   - Blocked:        accounts that blocked the bot
//   - BlockedLast30:  accounts blocked within the last 30 days
type Overview struct {
	TotalUsers    int64
	Active7Days   int64
	Active30Days  int64
	ActivePremium int64
	Blocked       int64
	BlockedLast30 int64
}

// LanguageStat is the number of accounts per selected locale.
type LanguageStat struct {
	Locale string
	Count  int64
}

// UserStatus is the admin view of one account.
type UserStatus struct {
	UserID       int64
	Locale       *string
	PremiumUntil *time.Time
	LastActivity *time.Time
}

// CollectOverview computes the admin overview relative to now.
func CollectOverview(ctx context.Context, db *gorm.DB, now time.Time) (Overview, error) {
	var o Overview
	q := db.WithContext(ctx)
	now = now.UTC()
	since30 := now.Add(-30 * 24 * time.Hour)

	if err := q.Model(&domain.User{}).Count(&o.TotalUsers).Error; err != nil {
		return o, err
	}
	if err := q.Model(&domain.PremiumGrant{}).Where("active_until > ?", now).Count(&o.ActivePremium).Error; err != nil {
		return o, err
	}
	var err error
	if o.Active7Days, err = countActiveSince(ctx, db, now.Add(-7*24*time.Hour)); err != nil {
		return o, err
	}
	if o.Active30Days, err = countActiveSince(ctx, db, since30); err != nil {
		return o, err
	}
	if err := q.Model(&domain.User{}).Where("is_blocked = ?", true).Count(&o.Blocked).Error; err != nil {
		return o, err
	}
	if err := q.Model(&domain.User{}).
		Where("is_blocked = ? AND blocked_at >= ?", true, since30).
		Count(&o.BlockedLast30).Error; err != nil {
		return o, err
	}
	return o, nil
}

func countActiveSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.HistoryEntry{}).
		Joins("JOIN users ON users.telegram_id = messages_history.telegram_id").
		Where("messages_history.created_at >= ? AND users.is_blocked = ?", since, false).
		Distinct("messages_history.telegram_id").
		Count(&n).Error
	return n, err
}

// CollectLanguageStats counts accounts per locale, most common first.
// Accounts without a locale are reported as UnknownLocale.
func CollectLanguageStats(ctx context.Context, db *gorm.DB) ([]LanguageStat, error) {
	var rows []struct {
		Locale *string
		Count  int64
	}
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Select("locale, COUNT(*) AS count").
		Group("locale").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]LanguageStat, 0, len(rows))
	for _, r := range rows {
		loc := UnknownLocale
		if r.Locale != nil && *r.Locale != "" {
			loc = *r.Locale
		}
		out = append(out, LanguageStat{Locale: loc, Count: r.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Locale < out[j].Locale
	})
	return out, nil
}

// FindUserStatus returns the admin view of telegramID or ErrNotFound.
func FindUserStatus(ctx context.Context, db *gorm.DB, telegramID int64) (*UserStatus, error) {
	u, err := FindUser(ctx, db, telegramID)
	if err != nil {
		return nil, err
	}
	st := &UserStatus{UserID: telegramID, Locale: u.Locale}

	until, err := GetPremiumUntil(ctx, db, telegramID)
	switch {
	case err == nil:
		st.PremiumUntil = &until
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	if st.LastActivity, err = LastActivity(ctx, db, telegramID); err != nil {
		return nil, err
	}
	return st, nil
}
