package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/recuerdos/tienda/internal/payment/domain"
	"github.com/recuerdos/tienda/pkg/db"
	"github.com/recuerdos/tienda/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertEvent(ctx context.Context, tx *gorm.DB, event *domain.WebhookEvent) error {
	err := tx.WithContext(ctx).Create(event).Error
	if err == nil {
		return nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return err
	}

	return tx.WithContext(ctx).
		Model(&domain.WebhookEvent{}).
		Where("provider = ? AND external_id = ?", event.Provider, event.ExternalID).
		Updates(map[string]any{
			"delivery_count": gorm.Expr("delivery_count + 1"),
			"event_type":     event.EventType,
			"raw_body":       event.RawBody,
			"last_seen_at":   event.LastSeenAt,
		}).Error
}

func (r *repo) ListEvents(ctx context.Context, tx *gorm.DB, cursor *pagination.Cursor, limit int) ([]domain.WebhookEvent, error) {
	query := tx.WithContext(ctx).Model(&domain.WebhookEvent{})
	if cursor != nil && cursor.ID != "" {
		if id, err := strconv.ParseInt(cursor.ID, 10, 64); err == nil {
			query = query.Where("id < ?", id)
		}
	}

	var events []domain.WebhookEvent
	err := query.Order("id DESC").Limit(limit + 1).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *repo) RecordFailure(ctx context.Context, tx *gorm.DB, failure *domain.ReconcileFailure) error {
	return tx.WithContext(ctx).Create(failure).Error
}

func (r *repo) FindFailure(ctx context.Context, tx *gorm.DB, id int64) (*domain.ReconcileFailure, error) {
	var failure domain.ReconcileFailure
	err := tx.WithContext(ctx).
		Where("id = ?", id).
		First(&failure).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &failure, nil
}

func (r *repo) ListFailures(ctx context.Context, tx *gorm.DB, includeReplayed bool) ([]domain.ReconcileFailure, error) {
	query := tx.WithContext(ctx).Model(&domain.ReconcileFailure{})
	if !includeReplayed {
		query = query.Where("replayed_at IS NULL")
	}

	var failures []domain.ReconcileFailure
	if err := query.Order("created_at DESC").Find(&failures).Error; err != nil {
		return nil, err
	}
	return failures, nil
}

func (r *repo) MarkFailureReplayed(ctx context.Context, tx *gorm.DB, id int64, now time.Time) error {
	return tx.WithContext(ctx).
		Model(&domain.ReconcileFailure{}).
		Where("id = ?", id).
		Update("replayed_at", now).Error
}
