package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Exchange is a size/color swap request against a delivered order item.
// After approval it rides with the courier assigned to the parent order
// and advances in lock-step with the forward delivery transitions.
type Exchange struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID     uuid.UUID            `gorm:"column:order_item_id;type:uuid;not null"`
	CustomerID      uuid.UUID            `gorm:"column:customer_id;type:uuid;not null;index"`
	CourierID       *uuid.UUID           `gorm:"column:courier_id;type:uuid;index"`
	AssignedAt      *time.Time           `gorm:"column:assigned_at"`
	OldSize         string               `gorm:"column:old_size;not null"`
	NewSize         string               `gorm:"column:new_size;not null"`
	OldColor        string               `gorm:"column:old_color;not null"`
	NewColor        string               `gorm:"column:new_color;not null"`
	Quantity        int                  `gorm:"column:quantity;not null"`
	PaymentRequired bool                 `gorm:"column:payment_required;not null;default:false"`
	AdditionalPay   decimal.Decimal      `gorm:"column:additional_amount;type:numeric(12,2);not null;default:0"`
	Status          enums.ExchangeStatus `gorm:"column:status;type:exchange_status;not null;default:'initiated'"`
	Reason          *string              `gorm:"column:reason"`
	RejectionReason *string              `gorm:"column:rejection_reason"`
	ApprovedAt      *time.Time           `gorm:"column:approved_at"`
	RejectedAt      *time.Time           `gorm:"column:rejected_at"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
