package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/repo"
)

// UsageService tracks consumed content messages.
type UsageService struct {
	DB *gorm.DB
}

// NewUsageService constructs a UsageService.
func NewUsageService(db *gorm.DB) *UsageService { return &UsageService{DB: db} }

// Get returns the consumed count; unknown accounts have 0.
func (s *UsageService) Get(ctx context.Context, userID int64) (int, error) {
	return repo.GetUsage(ctx, s.DB, userID)
}

// Increment adds one and returns the new total.
func (s *UsageService) Increment(ctx context.Context, userID int64) (int, error) {
	return repo.IncrementUsage(ctx, s.DB, userID)
}
