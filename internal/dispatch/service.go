// Package dispatch runs the courier assignment workflow: admins hand
// orders to couriers, couriers accept or bounce them, and accepted work
// moves through processing, shipping, and the confirmed hand-off. The
// parent order's status is re-derived from its items after every move.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/otp"
	"github.com/stylekart/fulfillment-backend/pkg/audit"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/metrics"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

// Assignment modes recorded on the dispatch metrics.
const (
	modeBulk     = "bulk"
	modeItem     = "item"
	modeReassign = "reassign"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// DeliveredInput confirms a hand-off. Code is the customer's confirmation
// code; BarcodeValue optionally carries a scanned label for cross-checking
// against the order number.
type DeliveredInput struct {
	CourierID    uuid.UUID
	OrderID      uuid.UUID
	Code         string
	BarcodeValue string
}

// Service is the dispatcher.
type Service interface {
	AssignBulk(ctx context.Context, adminID, orderID, courierID uuid.UUID) (*models.Order, error)
	AssignItem(ctx context.Context, adminID, itemID, courierID uuid.UUID) (*models.OrderItem, error)
	Reassign(ctx context.Context, adminID, itemID, courierID uuid.UUID) (*models.OrderItem, error)
	AssignExchange(ctx context.Context, adminID, exchangeID, courierID uuid.UUID) (*models.Exchange, error)
	Approve(ctx context.Context, courierID, orderID uuid.UUID) error
	Reject(ctx context.Context, courierID, orderID uuid.UUID, reason string) error
	MarkProcessing(ctx context.Context, adminID, orderID uuid.UUID) error
	MarkShipped(ctx context.Context, adminID, orderID uuid.UUID) error
	OutForDelivery(ctx context.Context, courierID, orderID uuid.UUID) error
	Delivered(ctx context.Context, input DeliveredInput) error
	WorkerQueue(ctx context.Context, courierID uuid.UUID) ([]QueueEntry, error)
}

type service struct {
	repo      orders.Repository
	exchanges exchanges.Repository
	couriers  couriers.Service
	otp       otp.Service
	otpCfg    config.OTPConfig
	tx        txRunner
	outbox    outboxPublisher
	metrics   *metrics.DispatchMetrics
	now       func() time.Time
}

// NewService wires the dispatcher. Metrics may be nil in tests.
func NewService(repo orders.Repository, exchangeRepo exchanges.Repository, courierSvc couriers.Service, otpSvc otp.Service, otpCfg config.OTPConfig, tx txRunner, ob outboxPublisher, m *metrics.DispatchMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if exchangeRepo == nil {
		return nil, fmt.Errorf("exchanges repository required")
	}
	if courierSvc == nil {
		return nil, fmt.Errorf("couriers service required")
	}
	if otpSvc == nil {
		return nil, fmt.Errorf("otp service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		exchanges: exchangeRepo,
		couriers:  courierSvc,
		otp:       otpSvc,
		otpCfg:    otpCfg,
		tx:        tx,
		outbox:    ob,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// requireApprovedCourier gates every courier-facing operation: only
// onboarded couriers may receive or act on work.
func (s *service) requireApprovedCourier(ctx context.Context, courierID uuid.UUID) (*models.Courier, error) {
	courier, err := s.couriers.Get(ctx, courierID)
	if err != nil {
		return nil, err
	}
	if courier.Status != enums.CourierStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeWorkerNotApproved, "courier is not approved for deliveries")
	}
	return courier, nil
}

// AssignBulk hands every pending item of an order to one courier.
func (s *service) AssignBulk(ctx context.Context, adminID, orderID, courierID uuid.UUID) (*models.Order, error) {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return nil, err
	}

	var assigned *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		items, err := repo.FindItemsByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		var itemIDs []uuid.UUID
		for _, item := range items {
			if item.Status != enums.ItemStatusPending {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{
				"status":      enums.ItemStatusAssigned,
				"courier_id":  courierID,
				"assigned_at": now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign item")
			}
			itemIDs = append(itemIDs, item.ID)
		}
		if len(itemIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has no pending items to assign")
		}

		if err := repo.UpdateOrder(ctx, orderID, map[string]any{
			"status":      enums.OrderStatusAssigned,
			"courier_id":  courierID,
			"assigned_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		note := audit.Line(now, audit.TagBulkAssigned, enums.ActorRoleAdmin,
			fmt.Sprintf("%d items assigned to courier %s", len(itemIDs), courierID))
		if err := s.recordHistory(ctx, repo, orderID, models.HistoryActionBulkAssigned, enums.ActorRoleAdmin, adminID, &courierID, note); err != nil {
			return err
		}

		if err := s.emitAssignment(ctx, tx, enums.EventOrderAssigned, payloads.OrderAssignedEvent{
			OrderID:    orderID,
			CourierID:  courierID,
			ItemIDs:    itemIDs,
			AssignedAt: now,
		}, adminID); err != nil {
			return err
		}

		order.Status = enums.OrderStatusAssigned
		order.CourierID = &courierID
		order.AssignedAt = &now
		assigned = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment(modeBulk)
	return assigned, nil
}

// AssignItem hands a single pending item to a courier, leaving siblings
// untouched. Items of one order may travel with different couriers.
func (s *service) AssignItem(ctx context.Context, adminID, itemID, courierID uuid.UUID) (*models.OrderItem, error) {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return nil, err
	}

	var assigned *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := s.loadItem(ctx, repo, itemID)
		if err != nil {
			return err
		}
		if !item.Status.CanTransitionTo(enums.ItemStatusAssigned) || item.Status == enums.ItemStatusRejected {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "item cannot be assigned in current state")
		}
		order, err := s.loadOrder(ctx, repo, item.OrderID)
		if err != nil {
			return err
		}

		if err := repo.UpdateItem(ctx, itemID, map[string]any{
			"status":      enums.ItemStatusAssigned,
			"courier_id":  courierID,
			"assigned_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign item")
		}

		if err := s.rollup(ctx, repo, tx, order, itemID, enums.ItemStatusAssigned, now); err != nil {
			return err
		}

		note := audit.Line(now, audit.TagBulkAssigned, enums.ActorRoleAdmin,
			fmt.Sprintf("item %s assigned to courier %s", itemID, courierID))
		if err := s.recordHistory(ctx, repo, item.OrderID, models.HistoryActionItemAssigned, enums.ActorRoleAdmin, adminID, &courierID, note); err != nil {
			return err
		}

		if err := s.emitAssignment(ctx, tx, enums.EventOrderAssigned, payloads.OrderAssignedEvent{
			OrderID:    item.OrderID,
			CourierID:  courierID,
			ItemIDs:    []uuid.UUID{itemID},
			AssignedAt: now,
		}, adminID); err != nil {
			return err
		}

		item.Status = enums.ItemStatusAssigned
		item.CourierID = &courierID
		item.AssignedAt = &now
		assigned = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment(modeItem)
	return assigned, nil
}

// Reassign moves a rejected item to a different courier. Only rejected
// items qualify; active assignments are not silently stolen.
func (s *service) Reassign(ctx context.Context, adminID, itemID, courierID uuid.UUID) (*models.OrderItem, error) {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return nil, err
	}

	var reassigned *models.OrderItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		item, err := s.loadItem(ctx, repo, itemID)
		if err != nil {
			return err
		}
		if item.Status != enums.ItemStatusRejected {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only rejected items can be reassigned")
		}
		order, err := s.loadOrder(ctx, repo, item.OrderID)
		if err != nil {
			return err
		}
		prevCourier := item.CourierID
		if prevCourier != nil && *prevCourier == courierID {
			return pkgerrors.New(pkgerrors.CodeValidation, "cannot reassign to the courier who rejected it")
		}

		if err := repo.UpdateItem(ctx, itemID, map[string]any{
			"status":      enums.ItemStatusAssigned,
			"courier_id":  courierID,
			"assigned_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reassign item")
		}
		if err := repo.UpdateOrder(ctx, order.ID, map[string]any{
			"courier_id":  courierID,
			"assigned_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order courier")
		}

		if err := s.rollup(ctx, repo, tx, order, itemID, enums.ItemStatusAssigned, now); err != nil {
			return err
		}

		note := audit.Line(now, audit.TagReassigned, enums.ActorRoleAdmin,
			fmt.Sprintf("item %s moved to courier %s", itemID, courierID))
		if err := s.recordHistory(ctx, repo, item.OrderID, models.HistoryActionReassigned, enums.ActorRoleAdmin, adminID, &courierID, note); err != nil {
			return err
		}

		if err := s.emitAssignment(ctx, tx, enums.EventOrderReassigned, payloads.OrderAssignedEvent{
			OrderID:     item.OrderID,
			CourierID:   courierID,
			ItemIDs:     []uuid.UUID{itemID},
			Reassigned:  true,
			PrevCourier: prevCourier,
			AssignedAt:  now,
		}, adminID); err != nil {
			return err
		}

		item.Status = enums.ItemStatusAssigned
		item.CourierID = &courierID
		item.AssignedAt = &now
		reassigned = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment(modeReassign)
	return reassigned, nil
}

// AssignExchange books an approved exchange onto a courier's run. The
// replacement travels out and the original comes back as a pickup on the
// same visit, so the courier is usually the one already holding the order.
func (s *service) AssignExchange(ctx context.Context, adminID, exchangeID, courierID uuid.UUID) (*models.Exchange, error) {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return nil, err
	}

	var assigned *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exchangeRepo := s.exchanges.WithTx(tx)
		now := s.now().UTC()

		exchange, err := exchangeRepo.FindByID(ctx, exchangeID)
		if err != nil {
			return err
		}
		if !exchange.Status.CanTransitionTo(enums.ExchangeStatusAssigned) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "exchange is not approved for dispatch")
		}

		if err := exchangeRepo.Update(ctx, exchangeID, map[string]any{
			"status":      enums.ExchangeStatusAssigned,
			"courier_id":  courierID,
			"assigned_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign exchange")
		}

		note := audit.Line(now, audit.TagExchange, enums.ActorRoleAdmin,
			fmt.Sprintf("exchange %s assigned to courier %s", exchangeID, courierID))
		if err := s.recordHistory(ctx, repo, exchange.OrderID, models.HistoryActionExchangeOut, enums.ActorRoleAdmin, adminID, &courierID, note); err != nil {
			return err
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventExchangeAssigned,
			AggregateType: enums.AggregateExchange,
			AggregateID:   exchangeID,
			Actor: &outbox.ActorRef{
				ActorID:   adminID,
				CourierID: &courierID,
				Role:      enums.ActorRoleAdmin.String(),
			},
			Data: payloads.ExchangeLifecycleEvent{
				ExchangeID:  exchangeID,
				OrderID:     exchange.OrderID,
				OrderItemID: exchange.OrderItemID,
				CustomerID:  exchange.CustomerID,
				Status:      enums.ExchangeStatusAssigned,
				NewSize:     exchange.NewSize,
				NewColor:    exchange.NewColor,
				AmountDue:   exchange.AdditionalPay,
			},
			OccurredAt: now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit exchange assigned")
		}

		exchange.Status = enums.ExchangeStatusAssigned
		exchange.CourierID = &courierID
		exchange.AssignedAt = &now
		assigned = exchange
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment(modeItem)
	return assigned, nil
}

// Approve is the courier accepting all items assigned to them on the
// order. The decision lands on the courier's loyalty record.
func (s *service) Approve(ctx context.Context, courierID, orderID uuid.UUID) error {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return err
	}
	err := s.decide(ctx, courierID, orderID, true, "")
	if err != nil {
		return err
	}
	s.metrics.IncDecision("approved")
	return nil
}

// Reject is the courier bouncing the assignment back to the dispatcher.
func (s *service) Reject(ctx context.Context, courierID, orderID uuid.UUID, reason string) error {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return err
	}
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}
	err := s.decide(ctx, courierID, orderID, false, reason)
	if err != nil {
		return err
	}
	s.metrics.IncDecision("rejected")
	return nil
}

func (s *service) decide(ctx context.Context, courierID, orderID uuid.UUID, approved bool, reason string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		items, err := repo.FindItemsByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		next := enums.ItemStatusConfirmed
		action := models.HistoryActionApproved
		eventType := enums.EventAssignmentApproved
		if !approved {
			next = enums.ItemStatusRejected
			action = models.HistoryActionRejected
			eventType = enums.EventAssignmentRejected
		}

		var decided []uuid.UUID
		for _, item := range items {
			if item.CourierID == nil || *item.CourierID != courierID {
				continue
			}
			if item.Status != enums.ItemStatusAssigned {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{"status": next}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
			}
			decided = append(decided, item.ID)
		}
		if len(decided) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "courier holds no assigned items on this order")
		}

		if err := s.couriers.RecordDecision(ctx, tx, courierID, orderID, approved); err != nil {
			return err
		}

		if err := s.rollupMany(ctx, repo, tx, order, decided, next, now); err != nil {
			return err
		}

		var note *string
		if reason != "" {
			line := audit.Line(now, audit.TagReassigned, enums.ActorRoleCourier, reason)
			note = &line
		}
		if err := repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   orderID,
			Action:    action,
			ActorRole: enums.ActorRoleCourier,
			ActorID:   &courierID,
			CourierID: &courierID,
			Note:      note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		status := orders.RollupStatus(patchStatuses(items, decided, next))
		event := outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor: &outbox.ActorRef{
				ActorID:   courierID,
				CourierID: &courierID,
				Role:      enums.ActorRoleCourier.String(),
			},
			Data: payloads.AssignmentDecisionEvent{
				OrderID:   orderID,
				CourierID: courierID,
				Approved:  approved,
				Status:    status,
				Reason:    reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue decision event")
		}
		return nil
	})
}

// MarkProcessing moves every confirmed item into fulfillment.
func (s *service) MarkProcessing(ctx context.Context, adminID, orderID uuid.UUID) error {
	return s.advanceAll(ctx, adminID, orderID, enums.ItemStatusConfirmed, enums.ItemStatusProcessing)
}

// MarkShipped moves every processing item to shipped.
func (s *service) MarkShipped(ctx context.Context, adminID, orderID uuid.UUID) error {
	return s.advanceAll(ctx, adminID, orderID, enums.ItemStatusProcessing, enums.ItemStatusShipped)
}

func (s *service) advanceAll(ctx context.Context, adminID, orderID uuid.UUID, from, to enums.ItemStatus) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		items, err := repo.FindItemsByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}

		var moved []uuid.UUID
		for _, item := range items {
			if item.Status != from {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{"status": to}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
			}
			moved = append(moved, item.ID)
		}
		if len(moved) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order has no %s items", from))
		}

		return s.rollupMany(ctx, repo, tx, order, moved, to, now)
	})
}

func (s *service) loadOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadItem(ctx context.Context, repo orders.Repository, itemID uuid.UUID) (*models.OrderItem, error) {
	item, err := repo.FindItem(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	return item, nil
}

func (s *service) recordHistory(ctx context.Context, repo orders.Repository, orderID uuid.UUID, action string, role enums.ActorRole, actorID uuid.UUID, courierID *uuid.UUID, note string) error {
	if err := repo.CreateHistory(ctx, &models.OrderHistory{
		OrderID:   orderID,
		Action:    action,
		ActorRole: role,
		ActorID:   &actorID,
		CourierID: courierID,
		Note:      &note,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
	}
	return nil
}

func (s *service) emitAssignment(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, data payloads.OrderAssignedEvent, adminID uuid.UUID) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   data.OrderID,
		Version:       1,
		Actor: &outbox.ActorRef{
			ActorID: adminID,
			Role:    enums.ActorRoleAdmin.String(),
		},
		Data: data,
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue assignment event")
	}
	return nil
}

// rollup re-derives the order status after a single item changed.
func (s *service) rollup(ctx context.Context, repo orders.Repository, tx *gorm.DB, order *models.Order, changedItem uuid.UUID, newStatus enums.ItemStatus, now time.Time) error {
	return s.rollupMany(ctx, repo, tx, order, []uuid.UUID{changedItem}, newStatus, now)
}

// rollupMany re-derives the order status after a batch of items moved to
// the same status, emitting order_status_changed when it shifts.
func (s *service) rollupMany(ctx context.Context, repo orders.Repository, tx *gorm.DB, order *models.Order, changed []uuid.UUID, newStatus enums.ItemStatus, now time.Time) error {
	items, err := repo.FindItemsByOrder(ctx, order.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order items")
	}
	derived := orders.RollupStatus(patchStatuses(items, changed, newStatus))
	if derived == order.Status {
		return nil
	}

	updates := map[string]any{"status": derived}
	if derived == enums.OrderStatusDelivered {
		updates["delivered_at"] = now
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
	order.Status = derived
	return nil
}

func patchStatuses(items []models.OrderItem, changed []uuid.UUID, status enums.ItemStatus) []models.OrderItem {
	for i := range items {
		for _, id := range changed {
			if items[i].ID == id {
				items[i].Status = status
			}
		}
	}
	return items
}
