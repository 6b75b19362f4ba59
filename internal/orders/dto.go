package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/types"
)

// OrderLineInput is one product line on a placement request.
type OrderLineInput struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"required"`
	ProductName string          `json:"product_name" validate:"required"`
	Size        string          `json:"size" validate:"required"`
	Color       string          `json:"color" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"required"`
}

// PlaceOrderInput carries everything needed to place an order.
type PlaceOrderInput struct {
	CustomerID      uuid.UUID           `json:"-"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method" validate:"required"`
	DeliveryType    enums.DeliveryType  `json:"delivery_type" validate:"required"`
	ScheduledFor    *time.Time          `json:"scheduled_for,omitempty"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	ShippingAddress types.Address       `json:"shipping_address" validate:"required"`
	DeliveryNotes   *string             `json:"delivery_notes,omitempty"`
	Items           []OrderLineInput    `json:"items" validate:"required,min=1,dive"`
}

// AdminOrderFilters describe the inputs supported by the admin listing.
type AdminOrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CourierID     *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// OrderSummary is the listing shape shared by customer and admin views.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	DeliveryType  enums.DeliveryType  `json:"delivery_type"`
	CourierID     *uuid.UUID          `json:"courier_id,omitempty"`
	Total         decimal.Decimal     `json:"total"`
	ItemCount     int                 `json:"item_count"`
	EstimatedAt   *time.Time          `json:"estimated_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// CancelledItemRow is the admin view over items awaiting refund work.
type CancelledItemRow struct {
	OrderID           uuid.UUID                  `json:"order_id"`
	OrderNumber       string                     `json:"order_number"`
	CustomerID        uuid.UUID                  `json:"customer_id"`
	Item              models.OrderItem           `json:"item"`
	RefundStatus      enums.RefundStatus         `json:"refund_status"`
	ReturnDelivery    enums.ReturnDeliveryStatus `json:"return_delivery_status"`
	QuantityCancelled int                        `json:"quantity_cancelled"`
	RefundAmount      decimal.Decimal            `json:"refund_amount"`
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		DeliveryType:  order.DeliveryType,
		CourierID:     order.CourierID,
		Total:         order.Total,
		ItemCount:     len(order.Items),
		EstimatedAt:   order.EstimatedAt,
		CreatedAt:     order.CreatedAt,
	}
}
