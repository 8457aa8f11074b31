package domain

import (
	"context"
	"errors"
	"time"

	"github.com/recuerdos/tienda/pkg/db/pagination"
)

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrPaymentNotFound    = errors.New("payment_not_found")
	ErrPaymentNotApproved = errors.New("payment_not_approved")
	ErrAlreadyReplayed    = errors.New("already_replayed")
)

// Outcome labels for an ingested notification. Every delivery ends in
// exactly one of these and is acknowledged regardless.
const (
	OutcomeReconciled   = "reconciled"
	OutcomeIgnored      = "ignored"
	OutcomeOrderMissing = "order_missing"
	OutcomeNoResource   = "no_resource"
	OutcomeFailed       = "failed"
)

// IngestResult is what the webhook endpoint reports back. Ok is false only
// when the notification was parked in the dead-letter table.
type IngestResult struct {
	Ok      bool   `json:"ok"`
	Outcome string `json:"-"`
}

type ResyncRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	// Fallback lookup key when the payment carries no external reference.
	ExternalReference string `json:"external_reference"`
}

type ResyncResponse struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	SalesCreated int    `json:"sales_created"`
	StockDebited bool   `json:"stock_debited"`
}

type ListFailuresRequest struct {
	IncludeReplayed bool `form:"include_replayed"`
}

type ListEventsRequest struct {
	pagination.Pagination
}

type EventResponse struct {
	ID            string    `json:"id"`
	Provider      string    `json:"provider"`
	ExternalID    string    `json:"external_id"`
	EventType     string    `json:"event_type"`
	DeliveryCount int       `json:"delivery_count"`
	FirstSeenAt   time.Time `json:"first_seen_at"`
	LastSeenAt    time.Time `json:"last_seen_at"`
}

type ListEventsResponse struct {
	Events   []EventResponse     `json:"events"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type FailureResponse struct {
	ID         string     `json:"id"`
	Provider   string     `json:"provider"`
	EventType  string     `json:"event_type"`
	ExternalID string     `json:"external_id"`
	Reason     string     `json:"reason"`
	ReplayedAt *time.Time `json:"replayed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type ReplayResponse struct {
	ID      string `json:"id"`
	Ok      bool   `json:"ok"`
	Outcome string `json:"outcome"`
}

// Service is the payment reconciliation surface: webhook ingestion, manual
// resync and dead-letter management.
type Service interface {
	Ingest(ctx context.Context, n Notification) IngestResult
	Resync(ctx context.Context, req ResyncRequest) (*ResyncResponse, error)
	ListEvents(ctx context.Context, req ListEventsRequest) (*ListEventsResponse, error)
	ListFailures(ctx context.Context, req ListFailuresRequest) ([]FailureResponse, error)
	ReplayFailure(ctx context.Context, id int64) (*ReplayResponse, error)
}
