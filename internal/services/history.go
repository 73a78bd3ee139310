package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/repo"
)

// DefaultHistoryLimit caps the completion context when Limit is unset.
const DefaultHistoryLimit = 20

// HistoryService stores the conversation turns used as completion context.
type HistoryService struct {
	DB    *gorm.DB
	Limit int
	Now   Clock
}

// NewHistoryService constructs a HistoryService.
func NewHistoryService(db *gorm.DB, limit int) *HistoryService {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryService{DB: db, Limit: limit}
}

// Append stores one turn.
func (s *HistoryService) Append(ctx context.Context, userID int64, role domain.Role, content string) error {
	_, err := repo.AppendHistory(ctx, s.DB, userID, role, content, s.Now.now())
	return err
}

// Recent returns at most Limit of the newest turns, oldest first.
func (s *HistoryService) Recent(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return repo.RecentHistory(ctx, s.DB, userID, limit)
}

// Clear drops all turns of userID.
func (s *HistoryService) Clear(ctx context.Context, userID int64) error {
	return repo.ClearHistory(ctx, s.DB, userID)
}
