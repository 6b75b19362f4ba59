package enums

import "fmt"

// ItemStatus tracks the lifecycle of a single order item. Items move
// independently of their parent order; the order status is recomputed
// from the items after every item transition.
type ItemStatus string

const (
	ItemStatusPending        ItemStatus = "pending"
	ItemStatusAssigned       ItemStatus = "assigned"
	ItemStatusConfirmed      ItemStatus = "confirmed"
	ItemStatusProcessing     ItemStatus = "processing"
	ItemStatusShipped        ItemStatus = "shipped"
	ItemStatusOutForDelivery ItemStatus = "out_for_delivery"
	ItemStatusDelivered      ItemStatus = "delivered"
	ItemStatusCancelled      ItemStatus = "cancelled"
	ItemStatusRejected       ItemStatus = "rejected"
)

var validItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusAssigned,
	ItemStatusConfirmed,
	ItemStatusProcessing,
	ItemStatusShipped,
	ItemStatusOutForDelivery,
	ItemStatusDelivered,
	ItemStatusCancelled,
	ItemStatusRejected,
}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusPending:        {ItemStatusAssigned, ItemStatusCancelled},
	ItemStatusAssigned:       {ItemStatusConfirmed, ItemStatusRejected, ItemStatusCancelled},
	ItemStatusConfirmed:      {ItemStatusProcessing, ItemStatusCancelled},
	ItemStatusProcessing:     {ItemStatusShipped, ItemStatusCancelled},
	ItemStatusShipped:        {ItemStatusOutForDelivery},
	ItemStatusOutForDelivery: {ItemStatusDelivered},
	ItemStatusRejected:       {ItemStatusAssigned},
}

// cancellableItemStatuses are the states from which a customer or admin may
// still cancel units. Once an item ships, cancellation becomes a return.
var cancellableItemStatuses = []ItemStatus{
	ItemStatusPending,
	ItemStatusAssigned,
	ItemStatusConfirmed,
	ItemStatusProcessing,
}

// String implements fmt.Stringer.
func (i ItemStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known ItemStatus.
func (i ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (i ItemStatus) IsTerminal() bool {
	return len(itemTransitions[i]) == 0
}

// IsCancellable reports whether units of an item in this status may still
// be cancelled.
func (i ItemStatus) IsCancellable() bool {
	for _, candidate := range cancellableItemStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the move from i to next is legal.
func (i ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, candidate := range itemTransitions[i] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
