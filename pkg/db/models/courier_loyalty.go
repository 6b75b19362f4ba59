package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/stylekart/fulfillment-backend/pkg/db/types"
)

// CourierLoyalty accumulates the orders a courier approved or rejected.
// The lists feed courier scoring; appends are idempotent per order.
type CourierLoyalty struct {
	ID             uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourierID      uuid.UUID         `gorm:"column:courier_id;type:uuid;not null;uniqueIndex"`
	ApprovedOrders dbtypes.UUIDArray `gorm:"column:approved_orders;type:uuid[];not null;default:'{}'"`
	RejectedOrders dbtypes.UUIDArray `gorm:"column:rejected_orders;type:uuid[];not null;default:'{}'"`
	UpdatedAt      time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// RecordApproved appends orderID to the approved list if absent.
func (l *CourierLoyalty) RecordApproved(orderID uuid.UUID) {
	l.ApprovedOrders = appendUnique(l.ApprovedOrders, orderID)
}

// RecordRejected appends orderID to the rejected list if absent.
func (l *CourierLoyalty) RecordRejected(orderID uuid.UUID) {
	l.RejectedOrders = appendUnique(l.RejectedOrders, orderID)
}

func appendUnique(list dbtypes.UUIDArray, id uuid.UUID) dbtypes.UUIDArray {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}
