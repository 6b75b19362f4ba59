package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/otp"
	"github.com/stylekart/fulfillment-backend/pkg/audit"
	"github.com/stylekart/fulfillment-backend/pkg/barcode"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

// OutForDelivery moves the courier's shipped items out the door. Any
// approved exchanges assigned to the same courier on this order advance
// in lock-step, and a confirmation code is issued for each hand-off.
func (s *service) OutForDelivery(ctx context.Context, courierID, orderID uuid.UUID) error {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exchangeRepo := s.exchanges.WithTx(tx)
		now := s.now().UTC()

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.CourierID == nil || *order.CourierID != courierID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this courier")
		}

		items, err := repo.FindItemsByOrder(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		var moved []uuid.UUID
		for _, item := range items {
			if item.Status != enums.ItemStatusShipped {
				continue
			}
			if item.CourierID == nil || *item.CourierID != courierID {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{"status": enums.ItemStatusOutForDelivery}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
			}
			moved = append(moved, item.ID)
		}
		if len(moved) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "courier holds no shipped items on this order")
		}

		note := audit.Line(now, audit.TagPickup, enums.ActorRoleCourier, "departed with delivery")
		if err := repo.CreateTrackEntry(ctx, &models.DeliveryTrackEntry{
			OrderID:   orderID,
			CourierID: courierID,
			Track:     enums.DeliveryTrackNormal,
			Status:    enums.ItemStatusOutForDelivery.String(),
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record track entry")
		}

		// Exchanges assigned to this courier ride along with the trip.
		exchangeIDs, err := s.advanceExchanges(ctx, repo, exchangeRepo, tx, orderID, courierID,
			enums.ExchangeStatusAssigned, enums.ExchangeStatusOutForDelivery, now)
		if err != nil {
			return err
		}

		if err := s.issueDeliveryCode(ctx, tx, otp.ItemTypeOrder, orderID, courierID, order.CustomerID, now); err != nil {
			return err
		}
		for _, exchangeID := range exchangeIDs {
			if err := s.issueDeliveryCode(ctx, tx, otp.ItemTypeExchange, exchangeID, courierID, order.CustomerID, now); err != nil {
				return err
			}
		}

		if err := s.rollupMany(ctx, repo, tx, order, moved, enums.ItemStatusOutForDelivery, now); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderOutForDelivery,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Version:       1,
			Actor: &outbox.ActorRef{
				ActorID:   courierID,
				CourierID: &courierID,
				Role:      enums.ActorRoleCourier.String(),
			},
			Data: payloads.DeliveryProgressEvent{
				OrderID:     orderID,
				CourierID:   courierID,
				Status:      enums.OrderStatusOutForDelivery,
				ExchangeIDs: exchangeIDs,
				OccurredAt:  now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue delivery event")
		}
		return nil
	})
}

// Delivered confirms the hand-off. The customer's confirmation code is
// mandatory; a scanned label, when supplied, must match the order number.
func (s *service) Delivered(ctx context.Context, input DeliveredInput) error {
	if _, err := s.requireApprovedCourier(ctx, input.CourierID); err != nil {
		return err
	}

	ref := otp.Reference{
		ItemType:  otp.ItemTypeOrder,
		ItemID:    input.OrderID.String(),
		CourierID: input.CourierID.String(),
	}
	if err := s.otp.Verify(ctx, ref, input.Code); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exchangeRepo := s.exchanges.WithTx(tx)
		now := s.now().UTC()

		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.CourierID == nil || *order.CourierID != input.CourierID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not assigned to this courier")
		}
		if input.BarcodeValue != "" && !barcode.Matches(input.BarcodeValue, order.OrderNumber) {
			return pkgerrors.New(pkgerrors.CodeValidation, "scanned label does not match order")
		}

		items, err := repo.FindItemsByOrder(ctx, input.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
		}
		var delivered []uuid.UUID
		for _, item := range items {
			if item.Status != enums.ItemStatusOutForDelivery {
				continue
			}
			if item.CourierID == nil || *item.CourierID != input.CourierID {
				continue
			}
			if err := repo.UpdateItem(ctx, item.ID, map[string]any{"status": enums.ItemStatusDelivered}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item status")
			}
			delivered = append(delivered, item.ID)
		}
		if len(delivered) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "courier has no items out for delivery on this order")
		}

		exchangeIDs, err := s.advanceExchanges(ctx, repo, exchangeRepo, tx, input.OrderID, input.CourierID,
			enums.ExchangeStatusOutForDelivery, enums.ExchangeStatusDelivered, now)
		if err != nil {
			return err
		}

		note := audit.Line(now, audit.TagPickup, enums.ActorRoleCourier, "delivery confirmed by customer code")
		if err := repo.CreateTrackEntry(ctx, &models.DeliveryTrackEntry{
			OrderID:   input.OrderID,
			CourierID: input.CourierID,
			Track:     enums.DeliveryTrackNormal,
			Status:    enums.ItemStatusDelivered.String(),
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record track entry")
		}
		if err := s.recordHistory(ctx, repo, input.OrderID, models.HistoryActionDelivered, enums.ActorRoleCourier, input.CourierID, &input.CourierID, note); err != nil {
			return err
		}

		if err := s.rollupMany(ctx, repo, tx, order, delivered, enums.ItemStatusDelivered, now); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   input.OrderID,
			Version:       1,
			Actor: &outbox.ActorRef{
				ActorID:   input.CourierID,
				CourierID: &input.CourierID,
				Role:      enums.ActorRoleCourier.String(),
			},
			Data: payloads.DeliveryProgressEvent{
				OrderID:     input.OrderID,
				CourierID:   input.CourierID,
				Status:      enums.OrderStatusDelivered,
				ExchangeIDs: exchangeIDs,
				OccurredAt:  now,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue delivery event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncDelivery()
	return nil
}

// advanceExchanges moves this courier's exchanges on the order from one
// status to the next. Delivered exchanges are stamped and announced.
func (s *service) advanceExchanges(ctx context.Context, repo orders.Repository, exchangeRepo exchanges.Repository, tx *gorm.DB, orderID, courierID uuid.UUID, from, to enums.ExchangeStatus, now time.Time) ([]uuid.UUID, error) {
	rows, err := exchangeRepo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order exchanges")
	}

	var advanced []uuid.UUID
	for _, exchange := range rows {
		if exchange.Status != from {
			continue
		}
		if exchange.CourierID == nil || *exchange.CourierID != courierID {
			continue
		}
		updates := map[string]any{"status": to}
		if to == enums.ExchangeStatusDelivered {
			updates["delivered_at"] = now
		}
		if err := exchangeRepo.Update(ctx, exchange.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update exchange status")
		}

		exchangeID := exchange.ID
		note := audit.Line(now, audit.TagExchange, enums.ActorRoleCourier,
			"exchange "+to.String())
		if err := repo.CreateTrackEntry(ctx, &models.DeliveryTrackEntry{
			OrderID:    orderID,
			ExchangeID: &exchangeID,
			CourierID:  courierID,
			Track:      enums.DeliveryTrackExchangePickup,
			Status:     to.String(),
			Note:       &note,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record track entry")
		}

		if to == enums.ExchangeStatusDelivered {
			event := outbox.DomainEvent{
				EventType:     enums.EventExchangeCompleted,
				AggregateType: enums.AggregateExchange,
				AggregateID:   exchange.ID,
				Version:       1,
				Actor: &outbox.ActorRef{
					ActorID:   courierID,
					CourierID: &courierID,
					Role:      enums.ActorRoleCourier.String(),
				},
				Data: payloads.ExchangeLifecycleEvent{
					ExchangeID:  exchange.ID,
					OrderID:     exchange.OrderID,
					OrderItemID: exchange.OrderItemID,
					CustomerID:  exchange.CustomerID,
					Status:      to,
					NewSize:     exchange.NewSize,
					NewColor:    exchange.NewColor,
					AmountDue:   exchange.AdditionalPay,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue exchange event")
			}
		}
		advanced = append(advanced, exchange.ID)
	}
	return advanced, nil
}

func (s *service) issueDeliveryCode(ctx context.Context, tx *gorm.DB, itemType string, itemID, courierID, customerID uuid.UUID, now time.Time) error {
	ref := otp.Reference{
		ItemType:  itemType,
		ItemID:    itemID.String(),
		CourierID: courierID.String(),
	}
	if _, err := s.otp.Issue(ctx, ref); err != nil {
		return err
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventDeliveryOTPIssued,
		AggregateType: enums.AggregateOrder,
		AggregateID:   itemID,
		Version:       1,
		Data: payloads.DeliveryOTPIssuedEvent{
			ItemType:   itemType,
			ItemID:     itemID,
			CourierID:  courierID,
			CustomerID: customerID,
			ExpiresAt:  now.Add(s.otpCfg.TTL),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue otp event")
	}
	return nil
}
