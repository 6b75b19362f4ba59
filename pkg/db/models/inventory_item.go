package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks on-hand stock for one product variant. The
// (product, color, size) triple is the bucket refunds restore into.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_inventory_variant"`
	Color        string    `gorm:"column:color;not null;uniqueIndex:idx_inventory_variant"`
	Size         string    `gorm:"column:size;not null;uniqueIndex:idx_inventory_variant"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
