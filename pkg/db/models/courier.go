package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Courier is a delivery worker. Only approved couriers can hold
// assignments.
type Courier struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName      string              `gorm:"column:full_name;not null"`
	Email         string              `gorm:"column:email;not null;uniqueIndex"`
	Phone         string              `gorm:"column:phone;not null"`
	PasswordHash  string              `gorm:"column:password_hash;not null"`
	Status        enums.CourierStatus `gorm:"column:status;type:courier_status;not null;default:'pending'"`
	VehicleNumber *string             `gorm:"column:vehicle_number"`
	Zone          *string             `gorm:"column:zone"`
	Loyalty       *CourierLoyalty     `gorm:"foreignKey:CourierID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsApproved reports whether the courier may receive work.
func (c Courier) IsApproved() bool {
	return c.Status == enums.CourierStatusApproved
}
