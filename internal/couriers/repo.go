package couriers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Repository defines persistence operations for couriers and loyalty.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, courier *models.Courier) (*models.Courier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	FindByEmail(ctx context.Context, email string) (*models.Courier, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CourierStatus) error
	ListByStatus(ctx context.Context, status enums.CourierStatus) ([]models.Courier, error)
	CountActiveItems(ctx context.Context, courierID uuid.UUID) (int64, error)
	FindOrCreateLoyalty(ctx context.Context, courierID uuid.UUID) (*models.CourierLoyalty, error)
	SaveLoyalty(ctx context.Context, loyalty *models.CourierLoyalty) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a couriers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, courier *models.Courier) (*models.Courier, error) {
	if err := r.db.WithContext(ctx).Create(courier).Error; err != nil {
		return nil, err
	}
	return courier, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&courier).Error
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Courier, error) {
	var courier models.Courier
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&courier).Error
	if err != nil {
		return nil, err
	}
	return &courier, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.CourierStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Courier{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) ListByStatus(ctx context.Context, status enums.CourierStatus) ([]models.Courier, error) {
	var couriers []models.Courier
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&couriers).Error
	if err != nil {
		return nil, err
	}
	return couriers, nil
}

// CountActiveItems counts order items the courier is still carrying.
// Terminal and pre-assignment states do not count toward workload.
func (r *repository) CountActiveItems(ctx context.Context, courierID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("courier_id = ? AND status IN ?", courierID, []enums.ItemStatus{
			enums.ItemStatusAssigned,
			enums.ItemStatusConfirmed,
			enums.ItemStatusProcessing,
			enums.ItemStatusShipped,
			enums.ItemStatusOutForDelivery,
		}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) FindOrCreateLoyalty(ctx context.Context, courierID uuid.UUID) (*models.CourierLoyalty, error) {
	var loyalty models.CourierLoyalty
	err := r.db.WithContext(ctx).Where("courier_id = ?", courierID).First(&loyalty).Error
	if err == nil {
		return &loyalty, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	loyalty = models.CourierLoyalty{CourierID: courierID}
	if err := r.db.WithContext(ctx).Create(&loyalty).Error; err != nil {
		return nil, err
	}
	return &loyalty, nil
}

func (r *repository) SaveLoyalty(ctx context.Context, loyalty *models.CourierLoyalty) error {
	return r.db.WithContext(ctx).Save(loyalty).Error
}
