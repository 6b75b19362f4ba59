package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a customer's store-credit balance. Created lazily on the
// first credit.
type Wallet struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID   uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;uniqueIndex"`
	Balance      decimal.Decimal     `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
