package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// DeliveryTrackEntry is an append-only audit row written on every courier
// movement: assignment, hand-off, pickup, delivery.
type DeliveryTrackEntry struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID *uuid.UUID          `gorm:"column:order_item_id;type:uuid"`
	ExchangeID  *uuid.UUID          `gorm:"column:exchange_id;type:uuid"`
	CourierID   uuid.UUID           `gorm:"column:courier_id;type:uuid;not null;index"`
	Track       enums.DeliveryTrack `gorm:"column:track;type:delivery_track;not null;default:'normal'"`
	Status      string              `gorm:"column:status;not null"`
	Note        *string             `gorm:"column:note"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}
