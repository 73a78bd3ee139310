package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// GetUsage returns the consumed message count; unknown accounts have 0.
func GetUsage(ctx context.Context, db *gorm.DB, telegramID int64) (int, error) {
	var c domain.UsageCounter
	err := db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&c).Error
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return c.TotalUsed, nil
}

// IncrementUsage adds one to the counter in a single upsert and returns the
// new total.
func IncrementUsage(ctx context.Context, db *gorm.DB, telegramID int64) (int, error) {
	var total int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c := &domain.UsageCounter{TelegramID: telegramID, TotalUsed: 1, UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"total_used": gorm.Expr("usage_counters.total_used + 1"),
				"updated_at": c.UpdatedAt,
			}),
		}).Create(c).Error; err != nil {
			return err
		}
		return tx.Model(&domain.UsageCounter{}).
			Where("telegram_id = ?", telegramID).
			Pluck("total_used", &total).Error
	})
	return total, err
}
