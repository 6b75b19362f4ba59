package orderitems

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/inventory"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	"github.com/stylekart/fulfillment-backend/pkg/audit"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Actor identifies who is driving an item mutation.
type Actor struct {
	ID   uuid.UUID
	Role enums.ActorRole
}

// CancelInput describes a partial or full item cancellation.
type CancelInput struct {
	ItemID     uuid.UUID
	Quantity   int
	Actor      Actor
	Reason     *string
	PickupType *enums.PickupType
}

// Service mutates individual order items: cancellation, return pickup
// fees, and the refund pipeline. Every mutation re-derives the parent
// order status.
type Service interface {
	Cancel(ctx context.Context, input CancelInput) (*models.OrderItem, error)
	PayPickupFee(ctx context.Context, customerID, itemID uuid.UUID) (*models.OrderItem, error)
	ProcessRefund(ctx context.Context, admin Actor, itemID uuid.UUID) (*models.OrderItem, error)
	FailRefund(ctx context.Context, admin Actor, itemID uuid.UUID, reason string) (*models.OrderItem, error)
}

type service struct {
	repo       orders.Repository
	tx         txRunner
	outbox     outboxPublisher
	inventory  inventory.Service
	wallet     wallet.Service
	expressFee decimal.Decimal
	now        func() time.Time
}

// NewService builds an order-item service with the required dependencies.
func NewService(repo orders.Repository, tx txRunner, ob outboxPublisher, inv inventory.Service, w wallet.Service, expressFee decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if w == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     ob,
		inventory:  inv,
		wallet:     w,
		expressFee: expressFee,
		now:        time.Now,
	}, nil
}

// Cancel removes quantity units from an item. The cancelled counter only
// grows; when it reaches the ordered quantity the item itself moves to
// cancelled. Goods already staged with a courier get a return pickup
// scheduled on the cancel_pickup track.
func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.OrderItem, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cancel quantity must be positive")
	}
	if !input.Actor.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid actor role")
	}
	if input.PickupType != nil && !input.PickupType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pickup type")
	}

	var result *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		order, err := repo.FindOrder(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}
		if input.Actor.Role == enums.ActorRoleCustomer && order.CustomerID != input.Actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}

		if !item.Status.IsCancellable() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item cannot be cancelled in current state")
		}
		if input.Quantity > item.ActiveQuantity() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cancel quantity exceeds remaining units")
		}

		refundDelta := item.UnitPrice.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2)
		newCancelled := item.QuantityCancelled + input.Quantity
		newRefundAmount := item.RefundAmount.Add(refundDelta).Round(2)

		role := input.Actor.Role
		updates := map[string]any{
			"quantity_cancelled": newCancelled,
			"refund_amount":      newRefundAmount,
			"refund_status":      enums.RefundStatusRequested,
			"cancelled_by":       role,
			"cancel_reason":      input.Reason,
			"cancelled_at":       now,
			"refund_requested_at": now,
		}

		fullyCancelled := newCancelled >= item.Quantity
		if fullyCancelled {
			if !item.Status.CanTransitionTo(enums.ItemStatusCancelled) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "item cannot move to cancelled")
			}
			updates["status"] = enums.ItemStatusCancelled
		}

		// Goods already with a courier need to come back.
		pickupFee := decimal.Zero
		if item.CourierID != nil && input.PickupType != nil {
			updates["pickup_type"] = *input.PickupType
			switch *input.PickupType {
			case enums.PickupTypeExpress:
				pickupFee = s.expressFee
				updates["pickup_fee"] = pickupFee
				updates["return_delivery_status"] = enums.ReturnDeliveryStatusPendingPayment
			default:
				updates["return_delivery_status"] = enums.ReturnDeliveryStatusScheduled
			}

			note := audit.Line(now, audit.TagPickup, input.Actor.Role, fmt.Sprintf("return pickup scheduled for item %s", item.ID))
			if err := repo.CreateTrackEntry(ctx, &models.DeliveryTrackEntry{
				OrderID:     order.ID,
				OrderItemID: &item.ID,
				CourierID:   *item.CourierID,
				Track:       enums.DeliveryTrackCancelPickup,
				Status:      enums.ReturnDeliveryStatusScheduled.String(),
				Note:        &note,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pickup track entry")
			}
		}

		if err := repo.UpdateItem(ctx, item.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
		}

		actorID := input.Actor.ID
		note := audit.Line(now, audit.TagCancelled, input.Actor.Role,
			fmt.Sprintf("cancelled %d of %d units of %s", input.Quantity, item.Quantity, item.ProductName))
		if err := repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   order.ID,
			Action:    models.HistoryActionCancelled,
			ActorRole: input.Actor.Role,
			ActorID:   &actorID,
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		if fullyCancelled {
			if err := s.rollup(ctx, repo, tx, order, item.ID, enums.ItemStatusCancelled, now); err != nil {
				return err
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventItemCancelled,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: input.Actor.ID, Role: input.Actor.Role.String()},
			Data: payloads.ItemCancelledEvent{
				OrderID:           order.ID,
				OrderItemID:       item.ID,
				CustomerID:        order.CustomerID,
				QuantityCancelled: newCancelled,
				RefundAmount:      newRefundAmount,
				PickupType:        pickupTypeLabel(input.PickupType),
				PickupFee:         pickupFee,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue cancellation event")
		}

		updated, err := repo.FindItem(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PayPickupFee settles the express pickup charge and unblocks the
// return pickup.
func (s *service) PayPickupFee(ctx context.Context, customerID, itemID uuid.UUID) (*models.OrderItem, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}

	var result *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		order, err := repo.FindOrder(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}
		if order.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if item.ReturnDelivery != enums.ReturnDeliveryStatusPendingPayment {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pickup fee is not pending")
		}

		if err := repo.UpdateItem(ctx, item.ID, map[string]any{
			"return_delivery_status": enums.ReturnDeliveryStatusExpressPaid,
			"pickup_fee_paid_at":     now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order item")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPickupFeePaid,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: customerID, Role: enums.ActorRoleCustomer.String()},
			Data: payloads.PickupFeePaidEvent{
				OrderItemID: item.ID,
				CustomerID:  customerID,
				Fee:         item.PickupFee,
				PaidAt:      now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue pickup event")
		}

		updated, err := repo.FindItem(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ProcessRefund walks a requested refund through initiated to completed
// in one transaction: stock goes back to the variant bucket, the wallet
// is credited, and the parent order's payment status rolls up once every
// cancelled item has its refund completed.
func (s *service) ProcessRefund(ctx context.Context, admin Actor, itemID uuid.UUID) (*models.OrderItem, error) {
	if admin.Role != enums.ActorRoleAdmin && admin.Role != enums.ActorRoleSystem {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refund processing requires admin")
	}

	var result *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		if item.QuantityCancelled == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item has no cancelled units")
		}
		if !item.RefundStatus.CanTransitionTo(enums.RefundStatusInitiated) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund is not awaiting processing")
		}
		if !item.RefundAmount.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "no refund amount recorded")
		}

		order, err := repo.FindOrder(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}

		if err := s.inventory.Restore(ctx, tx, inventory.Variant{
			ProductID: item.ProductID,
			Color:     item.Color,
			Size:      item.Size,
		}, item.QuantityCancelled); err != nil {
			return err
		}

		if _, err := s.wallet.Credit(ctx, tx, wallet.CreditInput{
			CustomerID:  order.CustomerID,
			Amount:      item.RefundAmount,
			Type:        enums.WalletTransactionTypeRefund,
			Description: fmt.Sprintf("refund for %s", item.ProductName),
			Reference:   refundReference(item.ID),
		}); err != nil {
			return err
		}

		if err := repo.UpdateItem(ctx, item.ID, map[string]any{
			"refund_status":       enums.RefundStatusCompleted,
			"refund_completed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund status")
		}

		// Payment rolls up to refunded only when no cancelled unit is
		// still waiting on its refund.
		items, err := repo.FindItemsByOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
		}
		allRefunded := true
		for _, sibling := range items {
			if sibling.QuantityCancelled == 0 {
				continue
			}
			status := sibling.RefundStatus
			if sibling.ID == item.ID {
				status = enums.RefundStatusCompleted
			}
			if status != enums.RefundStatusCompleted {
				allRefunded = false
				break
			}
		}
		if allRefunded {
			if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
				"payment_status": enums.PaymentStatusRefunded,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
			}
		}

		adminID := admin.ID
		note := audit.Line(now, audit.TagRefund, admin.Role,
			fmt.Sprintf("refunded %s for item %s", item.RefundAmount.StringFixed(2), item.ID))
		if err := repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   order.ID,
			Action:    models.HistoryActionRefunded,
			ActorRole: admin.Role,
			ActorID:   &adminID,
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventRefundProcessed,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: admin.ID, Role: admin.Role.String()},
			Data: payloads.RefundProcessedEvent{
				OrderID:     order.ID,
				OrderItemID: item.ID,
				CustomerID:  order.CustomerID,
				Status:      enums.RefundStatusCompleted,
				Amount:      item.RefundAmount,
				ProcessedAt: now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue refund event")
		}

		updated, err := repo.FindItem(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FailRefund marks an initiated refund as failed; it can be retried
// through ProcessRefund later.
func (s *service) FailRefund(ctx context.Context, admin Actor, itemID uuid.UUID, reason string) (*models.OrderItem, error) {
	if admin.Role != enums.ActorRoleAdmin && admin.Role != enums.ActorRoleSystem {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "refund processing requires admin")
	}

	var result *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := repo.FindItem(ctx, itemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		if !item.RefundStatus.CanTransitionTo(enums.RefundStatusFailed) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "refund cannot fail from current state")
		}

		if err := repo.UpdateItem(ctx, item.ID, map[string]any{
			"refund_status": enums.RefundStatusFailed,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update refund status")
		}

		adminID := admin.ID
		note := audit.Line(now, audit.TagRefund, admin.Role, fmt.Sprintf("refund failed: %s", reason))
		if err := repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   item.OrderID,
			Action:    models.HistoryActionRefunded,
			ActorRole: admin.Role,
			ActorID:   &adminID,
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		updated, err := repo.FindItem(ctx, item.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order item")
		}
		result = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rollup recomputes the order status treating the just-updated item as
// already holding its new status, and queues order_status_changed when
// the derived status moves.
func (s *service) rollup(ctx context.Context, repo orders.Repository, tx *gorm.DB, order *models.Order, changedItem uuid.UUID, newStatus enums.ItemStatus, now time.Time) error {
	items, err := repo.FindItemsByOrder(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
	}
	for i := range items {
		if items[i].ID == changedItem {
			items[i].Status = newStatus
		}
	}

	derived := orders.RollupStatus(items)
	if derived == order.Status {
		return nil
	}

	updates := map[string]any{"status": derived}
	if derived == enums.OrderStatusCancelled {
		updates["cancelled_at"] = now
	}
	if err := repo.UpdateOrder(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			OldStatus:  order.Status,
			NewStatus:  derived,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue status event")
	}
	return nil
}

func refundReference(itemID uuid.UUID) string {
	return "OrderItem_" + itemID.String()
}

func pickupTypeLabel(t *enums.PickupType) string {
	if t == nil {
		return ""
	}
	return t.String()
}
