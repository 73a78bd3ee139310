package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/domain"
	"github.com/chatbotchef/chatbotchef/internal/repo"
)

// AccountService manages user rows and their conversation bookkeeping.
type AccountService struct {
	DB  *gorm.DB
	Now Clock
}

// NewAccountService constructs an AccountService.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

// Ensure returns the account, creating it on first contact. A blank
// languageCode is treated as absent.
func (s *AccountService) Ensure(ctx context.Context, userID int64, languageCode string) (*domain.User, error) {
	var code *string
	if lc := strings.TrimSpace(languageCode); lc != "" {
		code = &lc
	}
	u, _, err := repo.EnsureUser(ctx, s.DB, userID, code)
	return u, err
}

// Find returns the account or ErrUserNotFound.
func (s *AccountService) Find(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := repo.FindUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// SetLocale stores the confirmed locale.
func (s *AccountService) SetLocale(ctx context.Context, userID int64, locale string) error {
	return repo.UpdateLocale(ctx, s.DB, userID, &locale)
}

// SetState stores the conversation state; StateIdle clears it.
func (s *AccountService) SetState(ctx context.Context, userID int64, st domain.ConversationState) error {
	return repo.UpdateConversationState(ctx, s.DB, userID, st)
}

// SetMode stores the active feature; nil clears it.
func (s *AccountService) SetMode(ctx context.Context, userID int64, m *domain.Mode) error {
	return repo.UpdateMode(ctx, s.DB, userID, m)
}

// SetMessageRefs overwrites the welcome sequence message ids.
func (s *AccountService) SetMessageRefs(ctx context.Context, userID int64, refs repo.MessageRefs) error {
	return repo.UpdateMessageRefs(ctx, s.DB, userID, refs)
}

// SetMenuMessageID records the latest menu message.
func (s *AccountService) SetMenuMessageID(ctx context.Context, userID int64, messageID int) error {
	return repo.UpdateMenuMessageID(ctx, s.DB, userID, &messageID)
}

// ListUserIDs returns every known account id.
func (s *AccountService) ListUserIDs(ctx context.Context) ([]int64, error) {
	return repo.ListAllUserIDs(ctx, s.DB)
}

// MarkBlocked flags an account that blocked the bot.
func (s *AccountService) MarkBlocked(ctx context.Context, userID int64) error {
	return repo.MarkBlocked(ctx, s.DB, userID, s.Now.now())
}
