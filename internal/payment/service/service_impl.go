package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	inventorydomain "github.com/recuerdos/tienda/internal/inventory/domain"
	"github.com/recuerdos/tienda/internal/locks"
	"github.com/recuerdos/tienda/internal/observability/metrics"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"github.com/recuerdos/tienda/internal/payment/domain"
	"github.com/recuerdos/tienda/internal/payment/mercadopago"
	"github.com/recuerdos/tienda/internal/providers/email"
	saledomain "github.com/recuerdos/tienda/internal/sale/domain"
	"github.com/recuerdos/tienda/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const providerName = "mercadopago"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Orders    orderdomain.Repository
	Sales     saledomain.Service
	Inventory inventorydomain.Service
	Provider  mercadopago.API
	Locker    *locks.Locker `optional:"true"`
	Notifier  email.Notifier
	Metrics   *metrics.Metrics
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	orders    orderdomain.Repository
	sales     saledomain.Service
	inventory inventorydomain.Service
	provider  mercadopago.API
	locker    *locks.Locker
	notifier  email.Notifier
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		orders:    p.Orders,
		sales:     p.Sales,
		inventory: p.Inventory,
		provider:  p.Provider,
		locker:    p.Locker,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
	}
}

// Ingest applies one provider notification. It never returns an error:
// every delivery is acknowledged, and failures that need a retry are parked
// in the dead-letter table instead.
func (s *Service) Ingest(ctx context.Context, n domain.Notification) domain.IngestResult {
	eventType := n.Type
	if eventType == "" {
		eventType = "unknown"
	}

	if n.ResourceID == "" {
		s.log.Warn("notification without resource id",
			zap.String("event_type", eventType),
		)
		return s.ack(eventType, domain.OutcomeNoResource, true)
	}

	s.recordEvent(ctx, eventType, n)

	var (
		outcome string
		err     error
	)
	switch eventType {
	case domain.EventTypePayment:
		outcome, err = s.handlePayment(ctx, n)
	case domain.EventTypeMerchantOrder:
		outcome, err = s.handleMerchantOrder(ctx, n)
	default:
		outcome = domain.OutcomeIgnored
	}

	if err != nil {
		s.deadLetter(ctx, eventType, n, err)
		return s.ack(eventType, domain.OutcomeFailed, false)
	}
	return s.ack(eventType, outcome, true)
}

func (s *Service) ack(eventType, outcome string, ok bool) domain.IngestResult {
	s.metrics.WebhookEvents.WithLabelValues(eventType, outcome).Inc()
	return domain.IngestResult{Ok: ok, Outcome: outcome}
}

// recordEvent keeps the audit trail. Failures here are logged and swallowed:
// auditing must never block reconciliation.
func (s *Service) recordEvent(ctx context.Context, eventType string, n domain.Notification) {
	now := time.Now().UTC()
	event := &domain.WebhookEvent{
		ID:            s.genID.Generate().Int64(),
		Provider:      providerName,
		ExternalID:    n.ResourceID,
		EventType:     eventType,
		RawBody:       datatypes.JSON(n.RawBody),
		DeliveryCount: 1,
		FirstSeenAt:   now,
		LastSeenAt:    now,
	}
	if err := s.repo.UpsertEvent(ctx, s.db, event); err != nil {
		s.log.Error("record webhook event",
			zap.String("event_type", eventType),
			zap.String("external_id", n.ResourceID),
			zap.Error(err),
		)
	}
}

func (s *Service) deadLetter(ctx context.Context, eventType string, n domain.Notification, cause error) {
	failure := &domain.ReconcileFailure{
		ID:         s.genID.Generate().Int64(),
		Provider:   providerName,
		EventType:  eventType,
		ExternalID: n.ResourceID,
		Reason:     cause.Error(),
		RawBody:    datatypes.JSON(n.RawBody),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.RecordFailure(ctx, s.db, failure); err != nil {
		s.log.Error("record reconcile failure",
			zap.String("external_id", n.ResourceID),
			zap.Error(err),
		)
		return
	}
	s.metrics.DeadLetters.Inc()
	s.log.Warn("notification dead-lettered",
		zap.String("event_type", eventType),
		zap.String("external_id", n.ResourceID),
		zap.Error(cause),
	)
}

// Resync re-runs reconciliation for one payment on demand. Unlike webhook
// ingestion it reports errors to the caller, and it refuses payments that
// are not approved.
func (s *Service) Resync(ctx context.Context, req domain.ResyncRequest) (*domain.ResyncResponse, error) {
	paymentID := strings.TrimSpace(req.PaymentID)
	if paymentID == "" {
		return nil, domain.ErrInvalidID
	}

	payment, err := s.provider.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, mercadopago.ErrResourceNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	status := orderdomain.MapProviderStatus(payment.Status)
	if status != orderdomain.StatusApproved {
		return nil, domain.ErrPaymentNotApproved
	}

	reference := payment.ExternalReference
	if reference == "" {
		reference = strings.TrimSpace(req.ExternalReference)
	}
	order, err := s.orders.FindByExternalReference(ctx, s.db, reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}

	applied, err := s.reconcile(ctx, order, reconcileInput{
		status:     status,
		paymentID:  paymentID,
		rawPayload: marshalPayload(payment),
		approvedAt: payment.DateApproved,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ResyncResponse{
		OrderID:      snowflake.ID(order.ID).String(),
		Status:       string(status),
		SalesCreated: applied.salesCreated,
		StockDebited: applied.stockDebited,
	}, nil
}

func (s *Service) ListEvents(ctx context.Context, req domain.ListEventsRequest) (*domain.ListEventsResponse, error) {
	var cursor *pagination.Cursor
	if req.PageToken != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		cursor = decoded
	}

	limit := req.Limit()
	events, err := s.repo.ListEvents(ctx, s.db, cursor, limit)
	if err != nil {
		return nil, err
	}

	resp := &domain.ListEventsResponse{Events: make([]domain.EventResponse, 0, len(events))}
	if len(events) > limit {
		events = events[:limit]
		resp.PageInfo.HasMore = true

		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID: snowflake.ID(events[len(events)-1].ID).String(),
		})
		if err != nil {
			return nil, err
		}
		resp.PageInfo.NextPageToken = token
	}

	for i := range events {
		e := &events[i]
		resp.Events = append(resp.Events, domain.EventResponse{
			ID:            snowflake.ID(e.ID).String(),
			Provider:      e.Provider,
			ExternalID:    e.ExternalID,
			EventType:     e.EventType,
			DeliveryCount: e.DeliveryCount,
			FirstSeenAt:   e.FirstSeenAt,
			LastSeenAt:    e.LastSeenAt,
		})
	}
	return resp, nil
}

func (s *Service) ListFailures(ctx context.Context, req domain.ListFailuresRequest) ([]domain.FailureResponse, error) {
	failures, err := s.repo.ListFailures(ctx, s.db, req.IncludeReplayed)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.FailureResponse, 0, len(failures))
	for i := range failures {
		f := &failures[i]
		resp = append(resp, domain.FailureResponse{
			ID:         snowflake.ID(f.ID).String(),
			Provider:   f.Provider,
			EventType:  f.EventType,
			ExternalID: f.ExternalID,
			Reason:     f.Reason,
			ReplayedAt: f.ReplayedAt,
			CreatedAt:  f.CreatedAt,
		})
	}
	return resp, nil
}

// ReplayFailure re-ingests a dead-lettered notification and marks it
// replayed when the second attempt succeeds.
func (s *Service) ReplayFailure(ctx context.Context, id int64) (*domain.ReplayResponse, error) {
	failure, err := s.repo.FindFailure(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if failure.ReplayedAt != nil {
		return nil, domain.ErrAlreadyReplayed
	}

	result := s.Ingest(ctx, domain.Notification{
		Type:       failure.EventType,
		ResourceID: failure.ExternalID,
		RawBody:    failure.RawBody,
	})
	if result.Ok {
		if err := s.repo.MarkFailureReplayed(ctx, s.db, id, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	return &domain.ReplayResponse{
		ID:      snowflake.ID(id).String(),
		Ok:      result.Ok,
		Outcome: result.Outcome,
	}, nil
}
