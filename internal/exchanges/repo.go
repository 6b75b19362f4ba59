package exchanges

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Repository defines persistence operations for exchange requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, exchange *models.Exchange) (*models.Exchange, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Exchange, error)
	FindByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ExchangeStatus) ([]models.Exchange, error)
	FindOpenByItem(ctx context.Context, orderItemID uuid.UUID) (*models.Exchange, error)
	ListByStatus(ctx context.Context, status enums.ExchangeStatus) ([]models.Exchange, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an exchanges repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, exchange *models.Exchange) (*models.Exchange, error) {
	if err := r.db.WithContext(ctx).Create(exchange).Error; err != nil {
		return nil, err
	}
	return exchange, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&exchange).Error
	if err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&exchanges).Error
	if err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *repository) FindByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ExchangeStatus) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	q := r.db.WithContext(ctx).Where("courier_id = ?", courierID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at ASC").Find(&exchanges).Error; err != nil {
		return nil, err
	}
	return exchanges, nil
}

// FindOpenByItem returns the in-flight exchange for an item, if any.
// An item can only carry one exchange at a time.
func (r *repository) FindOpenByItem(ctx context.Context, orderItemID uuid.UUID) (*models.Exchange, error) {
	var exchange models.Exchange
	err := r.db.WithContext(ctx).
		Where("order_item_id = ? AND status NOT IN ?", orderItemID, []enums.ExchangeStatus{
			enums.ExchangeStatusRejected,
			enums.ExchangeStatusDelivered,
		}).
		First(&exchange).Error
	if err != nil {
		return nil, err
	}
	return &exchange, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.ExchangeStatus) ([]models.Exchange, error) {
	var exchanges []models.Exchange
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&exchanges).Error
	if err != nil {
		return nil, err
	}
	return exchanges, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Exchange{}).
		Where("id = ?", id).
		Updates(updates).Error
}
