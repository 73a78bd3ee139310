package domain

import "time"

// ProcessedUpdate marks a Telegram update id as handled. Its primary key is
// the deduplication mechanism: a second insert of the same id violates the
// constraint. Rows older than the configured retention are purged.
type ProcessedUpdate struct {
	UpdateID    int64     `gorm:"primaryKey;autoIncrement:false"`
	ProcessedAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (ProcessedUpdate) TableName() string { return "processed_updates" }
