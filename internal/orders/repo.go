package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
)

// Repository defines persistence operations for orders, items, and history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error)
	FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	FindItemsByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ItemStatus) ([]models.OrderItem, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error
	CreateHistory(ctx context.Context, row *models.OrderHistory) error
	CreateTrackEntry(ctx context.Context, row *models.DeliveryTrackEntry) error
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummary], error)
	ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (pagination.Page[OrderSummary], error)
	ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[CancelledItemRow], error)
	FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error)
	IncrementCouponUse(ctx context.Context, couponID uuid.UUID) error
	CountOrdersCreatedSince(ctx context.Context, prefix string) (int64, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Histories", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", number).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindItemsByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ItemStatus) ([]models.OrderItem, error) {
	var items []models.OrderItem
	q := r.db.WithContext(ctx).Where("courier_id = ?", courierID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(updates).Error
}

func (r *repository) CreateHistory(ctx context.Context, row *models.OrderHistory) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) CreateTrackEntry(ctx context.Context, row *models.DeliveryTrackEntry) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *repository) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummary], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderSummary]{}, err
	}

	q := r.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID)
	q = applyCursor(q, cursor)

	var rows []models.Order
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[OrderSummary]{}, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, summarize(row))
	}
	return pagination.BuildPage(summaries, params.Limit, func(s OrderSummary) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	}), nil
}

func (r *repository) ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (pagination.Page[OrderSummary], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[OrderSummary]{}, err
	}

	q := r.db.WithContext(ctx).Preload("Items").Model(&models.Order{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.CourierID != nil {
		q = q.Where("courier_id = ?", *filters.CourierID)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}
	if filters.Query != "" {
		q = q.Where("order_number LIKE ?", "%"+filters.Query+"%")
	}
	q = applyCursor(q, cursor)

	var rows []models.Order
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[OrderSummary]{}, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, summarize(row))
	}
	return pagination.BuildPage(summaries, params.Limit, func(s OrderSummary) pagination.Cursor {
		return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID}
	}), nil
}

func (r *repository) ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[CancelledItemRow], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[CancelledItemRow]{}, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("quantity_cancelled > 0")
	if cursor != nil {
		q = q.Where(
			"(order_items.created_at < ?) OR (order_items.created_at = ? AND order_items.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var items []models.OrderItem
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&items).Error; err != nil {
		return pagination.Page[CancelledItemRow]{}, err
	}

	rows := make([]CancelledItemRow, 0, len(items))
	for _, item := range items {
		var order models.Order
		if err := r.db.WithContext(ctx).
			Select("id", "order_number", "customer_id").
			Where("id = ?", item.OrderID).
			First(&order).Error; err != nil {
			return pagination.Page[CancelledItemRow]{}, err
		}
		rows = append(rows, CancelledItemRow{
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			CustomerID:        order.CustomerID,
			Item:              item,
			RefundStatus:      item.RefundStatus,
			ReturnDelivery:    item.ReturnDelivery,
			QuantityCancelled: item.QuantityCancelled,
			RefundAmount:      item.RefundAmount,
		})
	}
	return pagination.BuildPage(rows, params.Limit, func(row CancelledItemRow) pagination.Cursor {
		return pagination.Cursor{CreatedAt: row.Item.CreatedAt, ID: row.Item.ID}
	}), nil
}

func (r *repository) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) IncrementCouponUse(ctx context.Context, couponID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE coupons
		SET used_count = used_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, couponID).Error
}

// CountOrdersCreatedSince counts orders whose number shares the given
// timestamp prefix, used to de-duplicate order numbers minted in the
// same second.
func (r *repository) CountOrdersCreatedSince(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func applyCursor(q *gorm.DB, cursor *pagination.Cursor) *gorm.DB {
	if cursor == nil {
		return q
	}
	return q.Where(
		"(orders.created_at < ?) OR (orders.created_at = ? AND orders.id < ?)",
		cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
	)
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.OrderStatusPending, cutoff).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
