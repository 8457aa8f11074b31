package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	inventorydomain "github.com/recuerdos/tienda/internal/inventory/domain"
	orderdomain "github.com/recuerdos/tienda/internal/order/domain"
	"github.com/recuerdos/tienda/internal/payment/domain"
	"github.com/recuerdos/tienda/internal/payment/mercadopago"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const orderLockTTL = 30 * time.Second

type reconcileInput struct {
	status     orderdomain.Status
	paymentID  string
	rawPayload []byte
	approvedAt *time.Time
}

type reconcileOutput struct {
	salesCreated int
	stockDebited bool
}

// handlePayment fetches the authoritative payment and reconciles the order
// it references. The status carried by the notification itself is never
// trusted.
func (s *Service) handlePayment(ctx context.Context, n domain.Notification) (string, error) {
	payment, err := s.provider.GetPayment(ctx, n.ResourceID)
	if err != nil {
		if errors.Is(err, mercadopago.ErrResourceNotFound) {
			s.log.Warn("payment not found at provider",
				zap.String("payment_id", n.ResourceID),
			)
			return domain.OutcomeIgnored, nil
		}
		return "", fmt.Errorf("fetch payment %s: %w", n.ResourceID, err)
	}

	order, err := s.orders.FindByExternalReference(ctx, s.db, payment.ExternalReference)
	if err != nil {
		return "", fmt.Errorf("find order %q: %w", payment.ExternalReference, err)
	}
	if order == nil {
		s.log.Warn("payment references unknown order",
			zap.String("payment_id", n.ResourceID),
			zap.String("external_reference", payment.ExternalReference),
		)
		return domain.OutcomeOrderMissing, nil
	}

	_, err = s.reconcile(ctx, order, reconcileInput{
		status:     orderdomain.MapProviderStatus(payment.Status),
		paymentID:  strconv.FormatInt(payment.ID, 10),
		rawPayload: marshalPayload(payment),
		approvedAt: payment.DateApproved,
	})
	if err != nil {
		return "", err
	}
	return domain.OutcomeReconciled, nil
}

// handleMerchantOrder reconciles through the merchant order's preference id
// using the status of its first payment. Merchant orders without payments
// carry no signal yet and are ignored.
func (s *Service) handleMerchantOrder(ctx context.Context, n domain.Notification) (string, error) {
	mo, err := s.provider.GetMerchantOrder(ctx, n.ResourceID)
	if err != nil {
		if errors.Is(err, mercadopago.ErrResourceNotFound) {
			s.log.Warn("merchant order not found at provider",
				zap.String("merchant_order_id", n.ResourceID),
			)
			return domain.OutcomeIgnored, nil
		}
		return "", fmt.Errorf("fetch merchant order %s: %w", n.ResourceID, err)
	}

	if len(mo.Payments) == 0 {
		return domain.OutcomeIgnored, nil
	}

	order, err := s.orders.FindByPreferenceID(ctx, s.db, mo.PreferenceID)
	if err != nil {
		return "", fmt.Errorf("find order by preference %q: %w", mo.PreferenceID, err)
	}
	if order == nil {
		s.log.Warn("merchant order references unknown preference",
			zap.String("merchant_order_id", n.ResourceID),
			zap.String("preference_id", mo.PreferenceID),
		)
		return domain.OutcomeOrderMissing, nil
	}

	first := mo.Payments[0]
	_, err = s.reconcile(ctx, order, reconcileInput{
		status:     orderdomain.MapProviderStatus(first.Status),
		paymentID:  strconv.FormatInt(first.ID, 10),
		rawPayload: marshalPayload(mo),
	})
	if err != nil {
		return "", err
	}
	return domain.OutcomeReconciled, nil
}

// reconcile persists the new state and, when the payment is approved,
// materializes sales and debits stock in one transaction. Both of those are
// idempotent, so repeating a reconcile is safe. The Redis lock only narrows
// the window for concurrent duplicate work.
func (s *Service) reconcile(ctx context.Context, order *orderdomain.Order, in reconcileInput) (*reconcileOutput, error) {
	if token, release := s.tryLockOrder(ctx, order.ID); release {
		defer func() {
			_ = s.locker.Release(ctx, orderLockKey(order.ID), token)
		}()
	}

	now := time.Now().UTC()
	wasApproved := order.Status == orderdomain.StatusApproved

	err := s.orders.UpdateReconciliation(ctx, s.db, order.ID,
		in.status, in.paymentID, datatypes.JSON(in.rawPayload), in.approvedAt, now)
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", order.ID, err)
	}
	s.metrics.Reconciliations.WithLabelValues(string(in.status)).Inc()

	out := &reconcileOutput{}
	if in.status != orderdomain.StatusApproved {
		s.log.Info("order reconciled",
			zap.Int64("order_id", order.ID),
			zap.String("status", string(in.status)),
		)
		return out, nil
	}

	soldAt := now
	if in.approvedAt != nil {
		soldAt = in.approvedAt.UTC()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.sales.MaterializeOrder(ctx, tx, order, soldAt)
		if err != nil {
			return fmt.Errorf("materialize sales: %w", err)
		}
		out.salesCreated = created

		debited, err := s.inventory.DebitOrderStock(ctx, tx, order.ID, stockLines(order))
		if err != nil {
			return fmt.Errorf("debit stock: %w", err)
		}
		out.stockDebited = debited
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.salesCreated > 0 {
		s.metrics.SalesCreated.Add(float64(out.salesCreated))
	}
	s.log.Info("order approved",
		zap.Int64("order_id", order.ID),
		zap.Int("sales_created", out.salesCreated),
		zap.Bool("stock_debited", out.stockDebited),
	)

	if !wasApproved {
		if err := s.notifier.OrderApproved(ctx, order); err != nil {
			s.log.Error("notify owner",
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
		}
	}

	return out, nil
}

func (s *Service) tryLockOrder(ctx context.Context, orderID int64) (string, bool) {
	if s.locker == nil {
		return "", false
	}
	token, ok, err := s.locker.TryLock(ctx, orderLockKey(orderID), orderLockTTL)
	if err != nil {
		s.log.Warn("order lock unavailable",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return "", false
	}
	if !ok {
		s.log.Warn("order lock held elsewhere, proceeding on idempotency guards",
			zap.Int64("order_id", orderID),
		)
		return "", false
	}
	return token, true
}

func orderLockKey(orderID int64) string {
	return fmt.Sprintf("reconcile:order:%d", orderID)
}

func stockLines(order *orderdomain.Order) []inventorydomain.Line {
	lines := make([]inventorydomain.Line, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		if item.SkuID == nil {
			continue
		}
		lines = append(lines, inventorydomain.Line{
			SkuID:    *item.SkuID,
			Quantity: item.Quantity,
		})
	}
	return lines
}

func marshalPayload(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
