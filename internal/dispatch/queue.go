package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
)

// QueueEntry is one trip in a courier's work queue. Exchange pickups
// outrank cancel pickups, which outrank forward deliveries.
type QueueEntry struct {
	Track       enums.DeliveryTrack `json:"track"`
	OrderID     uuid.UUID           `json:"order_id"`
	OrderItemID *uuid.UUID          `json:"order_item_id,omitempty"`
	ExchangeID  *uuid.UUID          `json:"exchange_id,omitempty"`
	Status      string              `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

// activeItemStatuses are the item states that still need courier action.
var activeItemStatuses = []enums.ItemStatus{
	enums.ItemStatusAssigned,
	enums.ItemStatusConfirmed,
	enums.ItemStatusProcessing,
	enums.ItemStatusShipped,
	enums.ItemStatusOutForDelivery,
}

// WorkerQueue builds the courier's queue ordered by track urgency, then
// age within a track.
func (s *service) WorkerQueue(ctx context.Context, courierID uuid.UUID) ([]QueueEntry, error) {
	if _, err := s.requireApprovedCourier(ctx, courierID); err != nil {
		return nil, err
	}

	items, err := s.repo.FindItemsByCourier(ctx, courierID, activeItemStatuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier items")
	}

	var entries []QueueEntry
	for _, item := range items {
		itemID := item.ID

		// A scheduled or paid return pickup is its own trip on the
		// cancel track, alongside any forward delivery of remaining units.
		if item.ReturnDelivery == enums.ReturnDeliveryStatusScheduled ||
			item.ReturnDelivery == enums.ReturnDeliveryStatusExpressPaid {
			entries = append(entries, QueueEntry{
				Track:       enums.DeliveryTrackCancelPickup,
				OrderID:     item.OrderID,
				OrderItemID: &itemID,
				Status:      item.ReturnDelivery.String(),
				CreatedAt:   item.UpdatedAt,
			})
		}

		if item.ActiveQuantity() > 0 {
			entries = append(entries, QueueEntry{
				Track:       enums.DeliveryTrackNormal,
				OrderID:     item.OrderID,
				OrderItemID: &itemID,
				Status:      item.Status.String(),
				CreatedAt:   item.CreatedAt,
			})
		}
	}

	exchangeRows, err := s.exchanges.FindByCourier(ctx, courierID, []enums.ExchangeStatus{
		enums.ExchangeStatusAssigned,
		enums.ExchangeStatusOutForDelivery,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier exchanges")
	}
	for _, exchange := range exchangeRows {
		exchangeID := exchange.ID
		entries = append(entries, QueueEntry{
			Track:      enums.DeliveryTrackExchangePickup,
			OrderID:    exchange.OrderID,
			ExchangeID: &exchangeID,
			Status:     exchange.Status.String(),
			CreatedAt:  exchange.CreatedAt,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		pi, pj := entries[i].Track.Priority(), entries[j].Track.Priority()
		if pi != pj {
			return pi < pj
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
