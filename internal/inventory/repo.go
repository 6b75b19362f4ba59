package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
)

// Repository defines persistence operations for variant stock buckets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariant(ctx context.Context, productID uuid.UUID, color, size string) (*models.InventoryItem, error)
	CreateVariant(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error)
	AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) error
	SetAvailable(ctx context.Context, id uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVariant(ctx context.Context, productID uuid.UUID, color, size string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateVariant(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) AdjustAvailable(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, delta, id).Error
}

func (r *repository) SetAvailable(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id).Error
}
