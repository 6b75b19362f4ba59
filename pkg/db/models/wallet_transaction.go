package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// WalletTransaction is an immutable ledger row. BalanceAfter snapshots the
// wallet balance at write time so the ledger replays without recomputation.
type WalletTransaction struct {
	ID           uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID     uuid.UUID                   `gorm:"column:wallet_id;type:uuid;not null;index"`
	Type         enums.WalletTransactionType `gorm:"column:type;type:wallet_transaction_type;not null"`
	Amount       decimal.Decimal             `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceAfter decimal.Decimal             `gorm:"column:balance_after;type:numeric(12,2);not null"`
	Description  string                      `gorm:"column:description;not null"`
	Reference    string                      `gorm:"column:reference;not null;index"`
	CreatedAt    time.Time                   `gorm:"column:created_at;autoCreateTime"`
}
