package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/repo"
)

// AdminService backs the admin statistics screens.
type AdminService struct {
	DB  *gorm.DB
	Now Clock
}

// NewAdminService constructs an AdminService.
func NewAdminService(db *gorm.DB) *AdminService { return &AdminService{DB: db} }

// Overview returns the account counters.
func (s *AdminService) Overview(ctx context.Context) (repo.Overview, error) {
	ctx, span := otel.Tracer("services/AdminService").Start(ctx, "Overview")
	defer span.End()
	return repo.CollectOverview(ctx, s.DB, s.Now.now())
}

// LanguageStats returns accounts per locale, most common first.
func (s *AdminService) LanguageStats(ctx context.Context) ([]repo.LanguageStat, error) {
	return repo.CollectLanguageStats(ctx, s.DB)
}

// UserStatus returns the admin view of an account or ErrUserNotFound.
func (s *AdminService) UserStatus(ctx context.Context, userID int64) (*repo.UserStatus, error) {
	st, err := repo.FindUserStatus(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return st, err
}
