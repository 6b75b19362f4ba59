package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "pending"
	OrderStatusAssigned           OrderStatus = "assigned"
	OrderStatusConfirmed          OrderStatus = "confirmed"
	OrderStatusProcessing         OrderStatus = "processing"
	OrderStatusShipped            OrderStatus = "shipped"
	OrderStatusOutForDelivery     OrderStatus = "out_for_delivery"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusPartiallyDelivered OrderStatus = "partially_delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
	OrderStatusRejected           OrderStatus = "rejected"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAssigned,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusPartiallyDelivered,
	OrderStatusCancelled,
	OrderStatusRejected,
}

// orderTransitions is the closed set of legal order status moves. Roll-up
// recomputation bypasses this table because derived statuses follow the items.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusAssigned, OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusAssigned:       {OrderStatusConfirmed, OrderStatusRejected, OrderStatusCancelled},
	OrderStatusConfirmed:      {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery},
	OrderStatusOutForDelivery: {OrderStatusDelivered, OrderStatusPartiallyDelivered},
	OrderStatusRejected:       {OrderStatusAssigned},
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions leave this status.
func (o OrderStatus) IsTerminal() bool {
	return len(orderTransitions[o]) == 0
}

// CanTransitionTo reports whether the move from o to next is legal.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, candidate := range orderTransitions[o] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
