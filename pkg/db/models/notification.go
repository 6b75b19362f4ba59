package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Notification is an in-app message for a customer, written by the
// notification consumer from published domain events.
type Notification struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID              `gorm:"column:customer_id;type:uuid;not null;index"`
	Type       enums.NotificationType `gorm:"column:type;type:notification_type;not null"`
	Title      string                 `gorm:"column:title;not null"`
	Message    string                 `gorm:"column:message;not null"`
	Link       *string                `gorm:"column:link"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
