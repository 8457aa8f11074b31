package domain

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookEvent is the audit record of one logical provider notification.
// Redeliveries of the same (provider, external_id) bump delivery_count
// instead of creating new rows.
type WebhookEvent struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	Provider      string         `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_external,priority:1"`
	ExternalID    string         `json:"external_id" gorm:"type:text;not null;uniqueIndex:ux_webhook_events_provider_external,priority:2"`
	EventType     string         `json:"event_type" gorm:"type:text;not null"`
	RawBody       datatypes.JSON `json:"raw_body,omitempty" gorm:"type:jsonb"`
	DeliveryCount int            `json:"delivery_count" gorm:"not null;default:1"`
	FirstSeenAt   time.Time      `json:"first_seen_at" gorm:"not null"`
	LastSeenAt    time.Time      `json:"last_seen_at" gorm:"not null"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }

// ReconcileFailure is the dead-letter row for a notification that was
// acknowledged to the provider but could not be applied. Rows stay until
// replayed through the admin endpoint.
type ReconcileFailure struct {
	ID         int64          `json:"id" gorm:"primaryKey"`
	Provider   string         `json:"provider" gorm:"type:text;not null"`
	EventType  string         `json:"event_type" gorm:"type:text;not null"`
	ExternalID string         `json:"external_id" gorm:"type:text;not null"`
	Reason     string         `json:"reason" gorm:"type:text;not null"`
	RawBody    datatypes.JSON `json:"raw_body,omitempty" gorm:"type:jsonb"`
	ReplayedAt *time.Time     `json:"replayed_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
}

func (ReconcileFailure) TableName() string { return "reconcile_failures" }
