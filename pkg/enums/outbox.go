package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder     OutboxAggregateType = "order"
	AggregateOrderItem OutboxAggregateType = "order_item"
	AggregateExchange  OutboxAggregateType = "exchange"
	AggregateCourier   OutboxAggregateType = "courier"
	AggregateWallet    OutboxAggregateType = "wallet"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregateOrderItem,
	AggregateExchange,
	AggregateCourier,
	AggregateWallet,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres. Events are
// emitted inside the same transaction as the state change they describe and
// published to Pub/Sub by the outbox publisher.
type OutboxEventType string

const (
	EventOrderPlaced            OutboxEventType = "order_placed"
	EventOrderStatusChanged     OutboxEventType = "order_status_changed"
	EventItemStatusChanged      OutboxEventType = "item_status_changed"
	EventOrderAssigned          OutboxEventType = "order_assigned"
	EventOrderReassigned        OutboxEventType = "order_reassigned"
	EventAssignmentApproved     OutboxEventType = "assignment_approved"
	EventAssignmentRejected     OutboxEventType = "assignment_rejected"
	EventOrderOutForDelivery    OutboxEventType = "order_out_for_delivery"
	EventOrderDelivered         OutboxEventType = "order_delivered"
	EventItemCancelled          OutboxEventType = "item_cancelled"
	EventRefundRequested        OutboxEventType = "refund_requested"
	EventRefundProcessed        OutboxEventType = "refund_processed"
	EventExchangeRequested      OutboxEventType = "exchange_requested"
	EventExchangeApproved       OutboxEventType = "exchange_approved"
	EventExchangeRejected       OutboxEventType = "exchange_rejected"
	EventExchangeAssigned       OutboxEventType = "exchange_assigned"
	EventExchangeCompleted      OutboxEventType = "exchange_completed"
	EventWalletCredited         OutboxEventType = "wallet_credited"
	EventPickupFeePaid          OutboxEventType = "pickup_fee_paid"
	EventDeliveryOTPIssued      OutboxEventType = "delivery_otp_issued"
	EventNotificationRequested  OutboxEventType = "notification_requested"
	EventInventoryBelowExpected OutboxEventType = "inventory_below_expected"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderStatusChanged,
	EventItemStatusChanged,
	EventOrderAssigned,
	EventOrderReassigned,
	EventAssignmentApproved,
	EventAssignmentRejected,
	EventOrderOutForDelivery,
	EventOrderDelivered,
	EventItemCancelled,
	EventRefundRequested,
	EventRefundProcessed,
	EventExchangeRequested,
	EventExchangeApproved,
	EventExchangeRejected,
	EventExchangeAssigned,
	EventExchangeCompleted,
	EventWalletCredited,
	EventPickupFeePaid,
	EventDeliveryOTPIssued,
	EventNotificationRequested,
	EventInventoryBelowExpected,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
