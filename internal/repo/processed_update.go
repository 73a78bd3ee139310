// Package repo implements the data persistence layer for bot records, backed
// by GORM. This file provides the processed-update markers used to drop
// redelivered Telegram updates.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// ErrDuplicate indicates that a row with the same unique key already exists.
var ErrDuplicate = errors.New("duplicate")

// MarkProcessed inserts a marker for updateID and returns ErrDuplicate when
// the id was recorded before. The primary key makes concurrent inserts of
// the same id safe: exactly one succeeds.
func MarkProcessed(ctx context.Context, db *gorm.DB, updateID int64, now time.Time) error {
	rec := &domain.ProcessedUpdate{UpdateID: updateID, ProcessedAt: now.UTC()}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// PurgeProcessedBefore deletes markers processed before cutoff and returns
// the number of rows removed.
func PurgeProcessedBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("processed_at < ?", cutoff.UTC()).
		Delete(&domain.ProcessedUpdate{})
	return res.RowsAffected, res.Error
}

// isUniqueViolation recognizes unique/primary key violations across drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "constraint failed: primary key") ||
		strings.Contains(low, "duplicate key value") ||
		strings.Contains(low, "duplicate entry")
}
