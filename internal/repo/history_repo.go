package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// AppendHistory inserts one conversation turn.
func AppendHistory(ctx context.Context, db *gorm.DB, telegramID int64, role domain.Role, content string, at time.Time) (*domain.HistoryEntry, error) {
	e := &domain.HistoryEntry{
		TelegramID: telegramID,
		Role:       role,
		Content:    content,
		CreatedAt:  at.UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// RecentHistory returns at most limit of the newest entries, oldest first.
func RecentHistory(ctx context.Context, db *gorm.DB, telegramID int64, limit int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	q := db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ClearHistory deletes every entry of telegramID.
func ClearHistory(ctx context.Context, db *gorm.DB, telegramID int64) error {
	return db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Delete(&domain.HistoryEntry{}).Error
}

// LastActivity returns the timestamp of the newest history entry, or nil.
func LastActivity(ctx context.Context, db *gorm.DB, telegramID int64) (*time.Time, error) {
	var e domain.HistoryEntry
	err := db.WithContext(ctx).
		Where("telegram_id = ?", telegramID).
		Order("created_at DESC, id DESC").
		First(&e).Error
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	at := e.CreatedAt.UTC()
	return &at, nil
}
