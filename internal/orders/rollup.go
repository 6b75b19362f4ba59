package orders

import (
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// RollupStatus derives the order status from its item statuses. The order
// never moves on its own: every item transition is followed by a roll-up.
//
// Precedence: a fully terminal item set resolves first (all delivered,
// all cancelled, or the delivered/cancelled mix), then the furthest
// in-flight stage any item has reached wins.
func RollupStatus(items []models.OrderItem) enums.OrderStatus {
	if len(items) == 0 {
		return enums.OrderStatusPending
	}

	counts := make(map[enums.ItemStatus]int, len(items))
	for _, item := range items {
		counts[item.Status]++
	}

	total := len(items)
	delivered := counts[enums.ItemStatusDelivered]
	cancelled := counts[enums.ItemStatusCancelled]
	rejected := counts[enums.ItemStatusRejected]

	switch {
	case delivered == total:
		return enums.OrderStatusDelivered
	case cancelled == total:
		return enums.OrderStatusCancelled
	case rejected == total:
		return enums.OrderStatusRejected
	case delivered > 0 && delivered+cancelled == total:
		return enums.OrderStatusPartiallyDelivered
	}

	// Highest active stage across the remaining items.
	stages := []struct {
		item  enums.ItemStatus
		order enums.OrderStatus
	}{
		{enums.ItemStatusOutForDelivery, enums.OrderStatusOutForDelivery},
		{enums.ItemStatusShipped, enums.OrderStatusShipped},
		{enums.ItemStatusProcessing, enums.OrderStatusProcessing},
		{enums.ItemStatusConfirmed, enums.OrderStatusConfirmed},
		{enums.ItemStatusAssigned, enums.OrderStatusAssigned},
		{enums.ItemStatusRejected, enums.OrderStatusAssigned},
	}
	for _, stage := range stages {
		if counts[stage.item] > 0 {
			return stage.order
		}
	}

	return enums.OrderStatusPending
}
