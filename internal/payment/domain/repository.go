package domain

import (
	"context"
	"time"

	"github.com/recuerdos/tienda/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// UpsertEvent inserts the audit row or, when the (provider, external_id)
	// pair already exists, bumps delivery_count and last_seen_at.
	UpsertEvent(ctx context.Context, db *gorm.DB, event *WebhookEvent) error
	// ListEvents pages newest-first. A nil cursor starts at the top; one more
	// row than limit is fetched so callers can tell whether more remain.
	ListEvents(ctx context.Context, db *gorm.DB, cursor *pagination.Cursor, limit int) ([]WebhookEvent, error)
	RecordFailure(ctx context.Context, db *gorm.DB, failure *ReconcileFailure) error
	FindFailure(ctx context.Context, db *gorm.DB, id int64) (*ReconcileFailure, error)
	ListFailures(ctx context.Context, db *gorm.DB, includeReplayed bool) ([]ReconcileFailure, error)
	MarkFailureReplayed(ctx context.Context, db *gorm.DB, id int64, now time.Time) error
}
