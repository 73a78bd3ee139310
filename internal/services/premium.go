package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/repo"
)

const day = 24 * time.Hour

// PremiumService answers premium questions and grants access.
type PremiumService struct {
	DB *gorm.DB
	// DefaultDays is used when Grant is called with a non-positive day count.
	DefaultDays int
	Now         Clock
}

// NewPremiumService constructs a PremiumService.
func NewPremiumService(db *gorm.DB, defaultDays int) *PremiumService {
	return &PremiumService{DB: db, DefaultDays: defaultDays}
}

// Until returns the stored expiry, or nil when the account never had premium.
func (s *PremiumService) Until(ctx context.Context, userID int64) (*time.Time, error) {
	t, err := repo.GetPremiumUntil(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// IsActive reports whether the grant expires strictly after now.
func (s *PremiumService) IsActive(ctx context.Context, userID int64) (bool, error) {
	until, err := s.Until(ctx, userID)
	if err != nil || until == nil {
		return false, err
	}
	return until.After(s.Now.now()), nil
}

// Grant extends premium by days, counting from the current expiry when it is
// still in the future and from now otherwise. It returns the new expiry.
func (s *PremiumService) Grant(ctx context.Context, userID int64, days int) (time.Time, error) {
	ctx, span := otel.Tracer("services/PremiumService").Start(ctx, "Grant",
		trace.WithAttributes(attribute.Int64("user.id", userID), attribute.Int("days", days)))
	defer span.End()

	if days <= 0 {
		days = s.DefaultDays
	}
	now := s.Now.now()
	base := now
	until, err := s.Until(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return time.Time{}, err
	}
	if until != nil && until.After(now) {
		base = *until
	}
	next := base.Add(time.Duration(days) * day)
	if err := repo.UpsertPremium(ctx, s.DB, userID, next); err != nil {
		span.RecordError(err)
		return time.Time{}, err
	}
	return next, nil
}

// ExpiringWithin returns active grants whose expiry falls on the UTC day
// daysBefore days from today.
func (s *PremiumService) ExpiringWithin(ctx context.Context, daysBefore int) ([]domain.PremiumGrant, error) {
	now := s.Now.now()
	start := truncDay(now).Add(time.Duration(daysBefore) * day)
	end := start.Add(day)

	active, err := repo.ListActivePremium(ctx, s.DB, now)
	if err != nil {
		return nil, err
	}
	var out []domain.PremiumGrant
	for _, g := range active {
		at := g.ActiveUntil.UTC()
		if !at.Before(start) && at.Before(end) {
			out = append(out, g)
		}
	}
	return out, nil
}
