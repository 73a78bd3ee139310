package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/chatbotchef/chatbotchef/internal/observability"
	"github.com/chatbotchef/chatbotchef/internal/repo"
)

// Deduplicator records processed update ids so redeliveries are dropped.
type Deduplicator struct {
	DB  *gorm.DB
	Now Clock
}

// NewDeduplicator constructs a Deduplicator.
func NewDeduplicator(db *gorm.DB) *Deduplicator {
	return &Deduplicator{DB: db}
}

// MarkProcessed returns true when updateID is seen for the first time and
// false when it was already recorded.
func (d *Deduplicator) MarkProcessed(ctx context.Context, updateID int64) (bool, error) {
	ctx, span := otel.Tracer("services/Deduplicator").Start(ctx, "MarkProcessed",
		trace.WithAttributes(attribute.Int64("update.id", updateID)))
	defer span.End()

	err := repo.MarkProcessed(ctx, d.DB, updateID, d.Now.now())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrDuplicate):
		observability.UpdatesDeduplicated.Inc()
		span.SetAttributes(attribute.Bool("update.duplicate", true))
		return false, nil
	default:
		span.RecordError(err)
		return false, err
	}
}

// Purge drops markers older than retention and returns how many were removed.
func (d *Deduplicator) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	return repo.PurgeProcessedBefore(ctx, d.DB, d.Now.now().Add(-retention))
}
