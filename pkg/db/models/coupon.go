package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a discount code. UsedCount is incremented inside the order
// placement transaction.
type Coupon struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code            string          `gorm:"column:code;not null;uniqueIndex"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null"`
	MaxUses         int             `gorm:"column:max_uses;not null;default:0"`
	UsedCount       int             `gorm:"column:used_count;not null;default:0"`
	Active          bool            `gorm:"column:active;not null;default:true"`
	ExpiresAt       *time.Time      `gorm:"column:expires_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Usable reports whether the coupon can still be applied at placement time.
func (c Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if c.MaxUses > 0 && c.UsedCount >= c.MaxUses {
		return false
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return false
	}
	return true
}
