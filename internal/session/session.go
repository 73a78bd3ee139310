// Package session keeps short-lived admin wizard state between updates.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/chatbotchef/chatbotchef/internal/config"
	"github.com/chatbotchef/chatbotchef/internal/domain"
)

// Step is the position inside an admin sub-flow.
type Step string

const (
	StepAwaitingBroadcastType    Step = "awaiting_broadcast_type"
	StepAwaitingBroadcastContent Step = "awaiting_broadcast_content"
	StepBroadcastPreview         Step = "broadcast_preview"
	StepAwaitingUserStatus       Step = "awaiting_user_status"
	StepAwaitingGrantPremium     Step = "awaiting_grant_premium"
)

// AdminSession is the in-progress admin flow of one user.
type AdminSession struct {
	Step          Step                     `json:"step"`
	BroadcastKind domain.BroadcastKind     `json:"broadcast_kind,omitempty"`
	Payload       *domain.BroadcastPayload `json:"payload,omitempty"`
}

// AwaitingBroadcastType starts the broadcast wizard.
func AwaitingBroadcastType() AdminSession {
	return AdminSession{Step: StepAwaitingBroadcastType}
}

// AwaitingBroadcastContent waits for content of kind k.
func AwaitingBroadcastContent(k domain.BroadcastKind) AdminSession {
	return AdminSession{Step: StepAwaitingBroadcastContent, BroadcastKind: k}
}

// BroadcastPreview holds a payload awaiting confirmation.
func BroadcastPreview(p domain.BroadcastPayload) AdminSession {
	return AdminSession{Step: StepBroadcastPreview, BroadcastKind: p.Kind, Payload: &p}
}

// AwaitingUserStatus waits for a user id to inspect.
func AwaitingUserStatus() AdminSession { return AdminSession{Step: StepAwaitingUserStatus} }

// AwaitingGrantPremium waits for "<userId> <days>".
func AwaitingGrantPremium() AdminSession { return AdminSession{Step: StepAwaitingGrantPremium} }

// ErrNotFound is returned by Get for missing or expired sessions.
var ErrNotFound = errors.New("session: not found")

// Store keeps one AdminSession per user with a TTL.
type Store interface {
	Get(ctx context.Context, userID int64) (AdminSession, error)
	Set(ctx context.Context, userID int64, s AdminSession) error
	Clear(ctx context.Context, userID int64) error
}

// DefaultTTL applies when a store is built with a non-positive TTL.
const DefaultTTL = 10 * time.Minute

// NewStore returns a RedisStore when cfg.RedisURL is set, else a MemoryStore.
func NewStore(cfg config.SessionConfig) (Store, error) {
	if cfg.RedisURL == "" {
		return NewMemoryStore(cfg.TTL, nil), nil
	}
	return NewRedisStore(cfg.RedisURL, cfg.TTL)
}
