package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/types"
)

// Order is the customer-facing order aggregate. Its status is derived from
// the statuses of its items after every item transition.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null;default:'cod'"`
	DeliveryType    enums.DeliveryType  `gorm:"column:delivery_type;type:delivery_type;not null;default:'standard'"`
	CourierID       *uuid.UUID          `gorm:"column:courier_id;type:uuid;index"`
	AssignedAt      *time.Time          `gorm:"column:assigned_at"`
	CouponID        *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountTotal   decimal.Decimal     `gorm:"column:discount_total;type:numeric(12,2);not null;default:0"`
	DeliveryFee     decimal.Decimal     `gorm:"column:delivery_fee;type:numeric(12,2);not null;default:0"`
	Total           decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:address_t"`
	DeliveryNotes   *string             `gorm:"column:delivery_notes"`
	ScheduledFor    *time.Time          `gorm:"column:scheduled_for"`
	EstimatedAt     *time.Time          `gorm:"column:estimated_at"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Histories       []OrderHistory      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
