package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Actions recorded in order history rows.
const (
	HistoryActionPlaced       = "placed"
	HistoryActionBulkAssigned = "bulk_assigned"
	HistoryActionItemAssigned = "item_assigned"
	HistoryActionReassigned   = "reassigned"
	HistoryActionApproved     = "approved"
	HistoryActionRejected     = "rejected"
	HistoryActionCancelled    = "cancelled"
	HistoryActionRefunded     = "refunded"
	HistoryActionDelivered    = "delivered"
	HistoryActionExchangeOut  = "exchange_assigned"
)

// OrderHistory is an append-only record of who did what to an order.
type OrderHistory struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	Action    string          `gorm:"column:action;not null"`
	ActorRole enums.ActorRole `gorm:"column:actor_role;type:actor_role;not null"`
	ActorID   *uuid.UUID      `gorm:"column:actor_id;type:uuid"`
	CourierID *uuid.UUID      `gorm:"column:courier_id;type:uuid"`
	Note      *string         `gorm:"column:note"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
