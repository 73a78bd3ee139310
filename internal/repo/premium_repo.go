package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// GetPremiumUntil returns the stored expiry for telegramID or ErrNotFound.
func GetPremiumUntil(ctx context.Context, db *gorm.DB, telegramID int64) (time.Time, error) {
	var g domain.PremiumGrant
	if err := db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&g).Error; err != nil {
		return time.Time{}, err
	}
	return g.ActiveUntil.UTC(), nil
}

// UpsertPremium creates the grant or overwrites its expiry.
func UpsertPremium(ctx context.Context, db *gorm.DB, telegramID int64, activeUntil time.Time) error {
	now := time.Now().UTC()
	g := &domain.PremiumGrant{
		TelegramID:  telegramID,
		ActiveUntil: activeUntil.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"active_until", "updated_at"}),
	}).Create(g).Error
}

// ListActivePremium returns grants expiring after now, soonest first.
func ListActivePremium(ctx context.Context, db *gorm.DB, now time.Time) ([]domain.PremiumGrant, error) {
	var out []domain.PremiumGrant
	err := db.WithContext(ctx).
		Where("active_until > ?", now.UTC()).
		Order("active_until ASC").
		Find(&out).Error
	return out, err
}
