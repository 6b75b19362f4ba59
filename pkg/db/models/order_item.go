package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// OrderItem is a single product line on an order. Cancellation is partial:
// QuantityCancelled only ever grows, and never beyond Quantity.
type OrderItem struct {
	ID                uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID                  `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID                  `gorm:"column:product_id;type:uuid;not null"`
	ProductName       string                     `gorm:"column:product_name;not null"`
	Size              string                     `gorm:"column:size;not null"`
	Color             string                     `gorm:"column:color;not null"`
	Quantity          int                        `gorm:"column:quantity;not null"`
	QuantityCancelled int                        `gorm:"column:quantity_cancelled;not null;default:0"`
	UnitPrice         decimal.Decimal            `gorm:"column:unit_price;type:numeric(12,2);not null"`
	LineTotal         decimal.Decimal            `gorm:"column:line_total;type:numeric(12,2);not null"`
	Status            enums.ItemStatus           `gorm:"column:status;type:item_status;not null;default:'pending'"`
	RefundStatus      enums.RefundStatus         `gorm:"column:refund_status;type:refund_status;not null;default:'none'"`
	RefundAmount      decimal.Decimal            `gorm:"column:refund_amount;type:numeric(12,2);not null;default:0"`
	ReturnDelivery    enums.ReturnDeliveryStatus `gorm:"column:return_delivery_status;type:return_delivery_status;not null;default:'none'"`
	PickupType        *enums.PickupType          `gorm:"column:pickup_type;type:pickup_type"`
	PickupFee         decimal.Decimal            `gorm:"column:pickup_fee;type:numeric(12,2);not null;default:0"`
	PickupFeePaidAt   *time.Time                 `gorm:"column:pickup_fee_paid_at"`
	CourierID         *uuid.UUID                 `gorm:"column:courier_id;type:uuid;index"`
	AssignedAt        *time.Time                 `gorm:"column:assigned_at"`
	CancelledAt       *time.Time                 `gorm:"column:cancelled_at"`
	CancelledBy       *enums.ActorRole           `gorm:"column:cancelled_by;type:actor_role"`
	CancelReason      *string                    `gorm:"column:cancel_reason"`
	RefundRequestedAt *time.Time                 `gorm:"column:refund_requested_at"`
	RefundCompletedAt *time.Time                 `gorm:"column:refund_completed_at"`
	CreatedAt         time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

// ActiveQuantity returns the units still being fulfilled.
func (i OrderItem) ActiveQuantity() int {
	return i.Quantity - i.QuantityCancelled
}

// FullyCancelled reports whether every unit of the item has been cancelled.
func (i OrderItem) FullyCancelled() bool {
	return i.QuantityCancelled >= i.Quantity
}
