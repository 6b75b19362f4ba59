package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// OrderPlacedEvent signals a new order entered the fulfillment pipeline.
type OrderPlacedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
}

// OrderStatusChangedEvent is emitted whenever the roll-up moves the order.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID         `json:"order_id"`
	CustomerID uuid.UUID         `json:"customer_id"`
	OldStatus  enums.OrderStatus `json:"old_status"`
	NewStatus  enums.OrderStatus `json:"new_status"`
}

// OrderAssignedEvent covers bulk, per-item, and reassignment flows.
type OrderAssignedEvent struct {
	OrderID     uuid.UUID   `json:"order_id"`
	CourierID   uuid.UUID   `json:"courier_id"`
	ItemIDs     []uuid.UUID `json:"item_ids,omitempty"`
	Reassigned  bool        `json:"reassigned"`
	PrevCourier *uuid.UUID  `json:"previous_courier_id,omitempty"`
	AssignedAt  time.Time   `json:"assigned_at"`
}

// AssignmentDecisionEvent is emitted when a courier approves or rejects.
type AssignmentDecisionEvent struct {
	OrderID   uuid.UUID         `json:"order_id"`
	CourierID uuid.UUID         `json:"courier_id"`
	Approved  bool              `json:"approved"`
	Status    enums.OrderStatus `json:"status"`
	Reason    string            `json:"reason,omitempty"`
}

// DeliveryProgressEvent covers out-for-delivery and delivered transitions,
// including any exchanges riding along.
type DeliveryProgressEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	CourierID   uuid.UUID         `json:"courier_id"`
	Status      enums.OrderStatus `json:"status"`
	ExchangeIDs []uuid.UUID       `json:"exchange_ids,omitempty"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// ItemCancelledEvent reports a partial or full item cancellation.
type ItemCancelledEvent struct {
	OrderID           uuid.UUID       `json:"order_id"`
	OrderItemID       uuid.UUID       `json:"order_item_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	QuantityCancelled int             `json:"quantity_cancelled"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	PickupType        string          `json:"pickup_type,omitempty"`
	PickupFee         decimal.Decimal `json:"pickup_fee"`
}

// RefundProcessedEvent reports a refund outcome for a cancelled item.
type RefundProcessedEvent struct {
	OrderID     uuid.UUID          `json:"order_id"`
	OrderItemID uuid.UUID          `json:"order_item_id"`
	CustomerID  uuid.UUID          `json:"customer_id"`
	Status      enums.RefundStatus `json:"status"`
	Amount      decimal.Decimal    `json:"amount"`
	ProcessedAt time.Time          `json:"processed_at"`
}

// ExchangeLifecycleEvent tracks an exchange from request to completion.
type ExchangeLifecycleEvent struct {
	ExchangeID  uuid.UUID            `json:"exchange_id"`
	OrderID     uuid.UUID            `json:"order_id"`
	OrderItemID uuid.UUID            `json:"order_item_id"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	Status      enums.ExchangeStatus `json:"status"`
	NewSize     string               `json:"new_size,omitempty"`
	NewColor    string               `json:"new_color,omitempty"`
	AmountDue   decimal.Decimal      `json:"amount_due"`
}

// WalletCreditedEvent reports store credit landing in a customer wallet.
type WalletCreditedEvent struct {
	WalletID   uuid.UUID       `json:"wallet_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Reference  string          `json:"reference"`
}

// PickupFeePaidEvent unblocks an express return pickup.
type PickupFeePaidEvent struct {
	OrderItemID uuid.UUID       `json:"order_item_id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Fee         decimal.Decimal `json:"fee"`
	PaidAt      time.Time       `json:"paid_at"`
}

// DeliveryOTPIssuedEvent asks the notification service to deliver a code.
type DeliveryOTPIssuedEvent struct {
	ItemType   string    `json:"item_type"`
	ItemID     uuid.UUID `json:"item_id"`
	CourierID  uuid.UUID `json:"courier_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NotificationRequestedEvent asks the notification consumer to nudge a
// customer about an order that has stalled in the pipeline.
type NotificationRequestedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	PendingFor  string            `json:"pending_for"`
}

// InventoryBelowExpectedEvent flags a stock movement that found fewer
// units on hand than the operation expected.
type InventoryBelowExpectedEvent struct {
	ProductID uuid.UUID `json:"product_id"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
	Requested int       `json:"requested"`
	Applied   int       `json:"applied"`
}
