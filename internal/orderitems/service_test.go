package orderitems

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/inventory"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
)

// memoryRepo keeps orders and items in maps and applies column updates
// the way the gorm repository would.
type memoryRepo struct {
	orders    map[uuid.UUID]*models.Order
	items     map[uuid.UUID]*models.OrderItem
	histories []*models.OrderHistory
	tracks    []*models.DeliveryTrackEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders: make(map[uuid.UUID]*models.Order),
		items:  make(map[uuid.UUID]*models.OrderItem),
	}
}

func (m *memoryRepo) WithTx(tx *gorm.DB) orders.Repository { return m }

func (m *memoryRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *memoryRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) FindOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	if item, ok := m.items[itemID]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memoryRepo) FindItemsByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ItemStatus) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range m.items {
		if item.CourierID == nil || *item.CourierID != courierID {
			continue
		}
		if len(statuses) == 0 {
			out = append(out, *item)
			continue
		}
		for _, status := range statuses {
			if item.Status == status {
				out = append(out, *item)
				break
			}
		}
	}
	return out, nil
}

func (m *memoryRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	o, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		o.Status = v.(enums.OrderStatus)
	}
	if v, ok := updates["payment_status"]; ok {
		o.PaymentStatus = v.(enums.PaymentStatus)
	}
	if v, ok := updates["courier_id"]; ok {
		id := v.(uuid.UUID)
		o.CourierID = &id
	}
	if v, ok := updates["assigned_at"]; ok {
		t := v.(time.Time)
		o.AssignedAt = &t
	}
	if v, ok := updates["cancelled_at"]; ok {
		t := v.(time.Time)
		o.CancelledAt = &t
	}
	if v, ok := updates["delivered_at"]; ok {
		t := v.(time.Time)
		o.DeliveredAt = &t
	}
	return nil
}

func (m *memoryRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	item, ok := m.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"]; ok {
		item.Status = v.(enums.ItemStatus)
	}
	if v, ok := updates["quantity_cancelled"]; ok {
		item.QuantityCancelled = v.(int)
	}
	if v, ok := updates["refund_amount"]; ok {
		item.RefundAmount = v.(decimal.Decimal)
	}
	if v, ok := updates["refund_status"]; ok {
		item.RefundStatus = v.(enums.RefundStatus)
	}
	if v, ok := updates["return_delivery_status"]; ok {
		item.ReturnDelivery = v.(enums.ReturnDeliveryStatus)
	}
	if v, ok := updates["pickup_type"]; ok {
		t := v.(enums.PickupType)
		item.PickupType = &t
	}
	if v, ok := updates["pickup_fee"]; ok {
		item.PickupFee = v.(decimal.Decimal)
	}
	if v, ok := updates["pickup_fee_paid_at"]; ok {
		t := v.(time.Time)
		item.PickupFeePaidAt = &t
	}
	if v, ok := updates["cancelled_by"]; ok {
		role := v.(enums.ActorRole)
		item.CancelledBy = &role
	}
	if v, ok := updates["cancel_reason"]; ok {
		if reason, ok := v.(*string); ok {
			item.CancelReason = reason
		}
	}
	if v, ok := updates["cancelled_at"]; ok {
		t := v.(time.Time)
		item.CancelledAt = &t
	}
	if v, ok := updates["refund_requested_at"]; ok {
		t := v.(time.Time)
		item.RefundRequestedAt = &t
	}
	if v, ok := updates["refund_completed_at"]; ok {
		t := v.(time.Time)
		item.RefundCompletedAt = &t
	}
	if v, ok := updates["courier_id"]; ok {
		switch id := v.(type) {
		case uuid.UUID:
			item.CourierID = &id
		case *uuid.UUID:
			item.CourierID = id
		}
	}
	if v, ok := updates["assigned_at"]; ok {
		t := v.(time.Time)
		item.AssignedAt = &t
	}
	return nil
}

func (m *memoryRepo) CreateHistory(ctx context.Context, row *models.OrderHistory) error {
	m.histories = append(m.histories, row)
	return nil
}

func (m *memoryRepo) CreateTrackEntry(ctx context.Context, row *models.DeliveryTrackEntry) error {
	m.tracks = append(m.tracks, row)
	return nil
}

func (m *memoryRepo) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[orders.OrderSummary], error) {
	return pagination.Page[orders.OrderSummary]{}, nil
}

func (m *memoryRepo) ListOrders(ctx context.Context, params pagination.Params, filters orders.AdminOrderFilters) (pagination.Page[orders.OrderSummary], error) {
	return pagination.Page[orders.OrderSummary]{}, nil
}

func (m *memoryRepo) ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[orders.CancelledItemRow], error) {
	return pagination.Page[orders.CancelledItemRow]{}, nil
}

func (m *memoryRepo) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (m *memoryRepo) IncrementCouponUse(ctx context.Context, couponID uuid.UUID) error { return nil }

func (m *memoryRepo) CountOrdersCreatedSince(ctx context.Context, prefix string) (int64, error) {
	return 0, nil
}

func (m *memoryRepo) FindPendingBefore(_ context.Context, _ time.Time) ([]models.Order, error) {
	return nil, nil
}

func (m *memoryRepo) seedOrder(customerID uuid.UUID, items ...*models.OrderItem) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD20260314092653",
		CustomerID:    customerID,
		Status:        enums.OrderStatusPending,
		PaymentStatus: enums.PaymentStatusPaid,
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		m.items[item.ID] = item
		order.Items = append(order.Items, *item)
	}
	m.orders[order.ID] = order
	return order
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubOutbox) eventTypes() []enums.OutboxEventType {
	out := make([]enums.OutboxEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

type stubInventory struct {
	restored int
}

func (s *stubInventory) Reserve(ctx context.Context, tx *gorm.DB, v inventory.Variant, qty int) error {
	return nil
}

func (s *stubInventory) Restore(ctx context.Context, tx *gorm.DB, v inventory.Variant, qty int) error {
	s.restored += qty
	return nil
}

func (s *stubInventory) Available(ctx context.Context, v inventory.Variant) (int, error) {
	return 0, nil
}

type stubWallet struct {
	credits []wallet.CreditInput
}

func (s *stubWallet) Credit(ctx context.Context, tx *gorm.DB, input wallet.CreditInput) (*models.WalletTransaction, error) {
	s.credits = append(s.credits, input)
	return &models.WalletTransaction{ID: uuid.New(), Amount: input.Amount}, nil
}

func (s *stubWallet) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubWallet) Ledger(ctx context.Context, customerID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	return nil, nil
}

type fixture struct {
	repo   *memoryRepo
	ob     *stubOutbox
	inv    *stubInventory
	wal    *stubWallet
	svc    Service
	fee    decimal.Decimal
	custID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   newMemoryRepo(),
		ob:     &stubOutbox{},
		inv:    &stubInventory{},
		wal:    &stubWallet{},
		fee:    decimal.NewFromInt(50),
		custID: uuid.New(),
	}
	svc, err := NewService(f.repo, stubTxRunner{}, f.ob, f.inv, f.wal, f.fee)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestCancelPartialKeepsItemActive(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductID:   uuid.New(),
		ProductName: "Linen Shirt",
		Size:        "M",
		Color:       "white",
		Quantity:    3,
		UnitPrice:   decimal.NewFromInt(800),
		LineTotal:   decimal.NewFromInt(2400),
		Status:      enums.ItemStatusConfirmed,
	}
	f.repo.seedOrder(f.custID, item)

	updated, err := f.svc.Cancel(context.Background(), CancelInput{
		ItemID:   item.ID,
		Quantity: 1,
		Actor:    Actor{ID: f.custID, Role: enums.ActorRoleCustomer},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, updated.QuantityCancelled)
	assert.Equal(t, enums.ItemStatusConfirmed, updated.Status)
	assert.Equal(t, enums.RefundStatusRequested, updated.RefundStatus)
	assert.True(t, updated.RefundAmount.Equal(decimal.NewFromInt(800)))
	assert.Equal(t, []enums.OutboxEventType{enums.EventItemCancelled}, f.ob.eventTypes())
}

func TestCancelRemainingUnitsCancelsItemAndRollsUp(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductID:   uuid.New(),
		ProductName: "Linen Shirt",
		Size:        "M",
		Color:       "white",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(800),
		Status:      enums.ItemStatusPending,
	}
	order := f.repo.seedOrder(f.custID, item)

	updated, err := f.svc.Cancel(context.Background(), CancelInput{
		ItemID:   item.ID,
		Quantity: 2,
		Actor:    Actor{ID: f.custID, Role: enums.ActorRoleCustomer},
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ItemStatusCancelled, updated.Status)
	assert.True(t, updated.FullyCancelled())

	assert.Equal(t, enums.OrderStatusCancelled, f.repo.orders[order.ID].Status)
	require.NotNil(t, f.repo.orders[order.ID].CancelledAt)

	types := f.ob.eventTypes()
	assert.Contains(t, types, enums.EventOrderStatusChanged)
	assert.Contains(t, types, enums.EventItemCancelled)
}

func TestCancelQuantityGuard(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductName:       "Linen Shirt",
		Quantity:          3,
		QuantityCancelled: 2,
		UnitPrice:         decimal.NewFromInt(800),
		Status:            enums.ItemStatusAssigned,
	}
	f.repo.seedOrder(f.custID, item)

	_, err := f.svc.Cancel(context.Background(), CancelInput{
		ItemID:   item.ID,
		Quantity: 2,
		Actor:    Actor{ID: f.custID, Role: enums.ActorRoleCustomer},
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCancelShippedItemRejected(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductName: "Linen Shirt",
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(800),
		Status:      enums.ItemStatusShipped,
	}
	f.repo.seedOrder(f.custID, item)

	_, err := f.svc.Cancel(context.Background(), CancelInput{
		ItemID:   item.ID,
		Quantity: 1,
		Actor:    Actor{ID: f.custID, Role: enums.ActorRoleCustomer},
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestCancelWithCourierSchedulesExpressPickup(t *testing.T) {
	f := newFixture(t)
	courierID := uuid.New()
	item := &models.OrderItem{
		ProductName: "Linen Shirt",
		Quantity:    1,
		UnitPrice:   decimal.NewFromInt(800),
		Status:      enums.ItemStatusProcessing,
		CourierID:   &courierID,
	}
	f.repo.seedOrder(f.custID, item)

	pickup := enums.PickupTypeExpress
	updated, err := f.svc.Cancel(context.Background(), CancelInput{
		ItemID:     item.ID,
		Quantity:   1,
		Actor:      Actor{ID: f.custID, Role: enums.ActorRoleCustomer},
		PickupType: &pickup,
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ReturnDeliveryStatusPendingPayment, updated.ReturnDelivery)
	assert.True(t, updated.PickupFee.Equal(decimal.NewFromInt(50)))

	require.Len(t, f.repo.tracks, 1)
	assert.Equal(t, enums.DeliveryTrackCancelPickup, f.repo.tracks[0].Track)
	assert.Equal(t, courierID, f.repo.tracks[0].CourierID)
}

func TestPayPickupFee(t *testing.T) {
	f := newFixture(t)
	courierID := uuid.New()
	item := &models.OrderItem{
		ProductName:    "Linen Shirt",
		Quantity:       1,
		UnitPrice:      decimal.NewFromInt(800),
		Status:         enums.ItemStatusCancelled,
		CourierID:      &courierID,
		ReturnDelivery: enums.ReturnDeliveryStatusPendingPayment,
		PickupFee:      decimal.NewFromInt(50),
	}
	f.repo.seedOrder(f.custID, item)

	updated, err := f.svc.PayPickupFee(context.Background(), f.custID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReturnDeliveryStatusExpressPaid, updated.ReturnDelivery)
	require.NotNil(t, updated.PickupFeePaidAt)
	assert.Contains(t, f.ob.eventTypes(), enums.EventPickupFeePaid)

	// Paying twice conflicts.
	_, err = f.svc.PayPickupFee(context.Background(), f.custID, item.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestProcessRefundCompletesPipeline(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductID:         uuid.New(),
		ProductName:       "Linen Shirt",
		Size:              "M",
		Color:             "white",
		Quantity:          2,
		QuantityCancelled: 2,
		UnitPrice:         decimal.NewFromInt(800),
		RefundAmount:      decimal.NewFromInt(1600),
		Status:            enums.ItemStatusCancelled,
		RefundStatus:      enums.RefundStatusRequested,
	}
	order := f.repo.seedOrder(f.custID, item)

	updated, err := f.svc.ProcessRefund(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}, item.ID)
	require.NoError(t, err)

	assert.Equal(t, enums.RefundStatusCompleted, updated.RefundStatus)
	require.NotNil(t, updated.RefundCompletedAt)

	assert.Equal(t, 2, f.inv.restored)

	require.Len(t, f.wal.credits, 1)
	assert.Equal(t, f.custID, f.wal.credits[0].CustomerID)
	assert.True(t, f.wal.credits[0].Amount.Equal(decimal.NewFromInt(1600)))
	assert.True(t, strings.HasPrefix(f.wal.credits[0].Reference, "OrderItem_"))

	assert.Equal(t, enums.PaymentStatusRefunded, f.repo.orders[order.ID].PaymentStatus)
	assert.Contains(t, f.ob.eventTypes(), enums.EventRefundProcessed)
}

func TestProcessRefundWaitsForSiblings(t *testing.T) {
	f := newFixture(t)
	first := &models.OrderItem{
		ProductID:         uuid.New(),
		ProductName:       "Shirt",
		Quantity:          1,
		QuantityCancelled: 1,
		UnitPrice:         decimal.NewFromInt(500),
		RefundAmount:      decimal.NewFromInt(500),
		Status:            enums.ItemStatusCancelled,
		RefundStatus:      enums.RefundStatusRequested,
	}
	second := &models.OrderItem{
		ProductID:         uuid.New(),
		ProductName:       "Trousers",
		Quantity:          1,
		QuantityCancelled: 1,
		UnitPrice:         decimal.NewFromInt(900),
		RefundAmount:      decimal.NewFromInt(900),
		Status:            enums.ItemStatusCancelled,
		RefundStatus:      enums.RefundStatusRequested,
	}
	order := f.repo.seedOrder(f.custID, first, second)

	_, err := f.svc.ProcessRefund(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}, first.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, f.repo.orders[order.ID].PaymentStatus)

	_, err = f.svc.ProcessRefund(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}, second.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefunded, f.repo.orders[order.ID].PaymentStatus)
}

func TestProcessRefundRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ProcessRefund(context.Background(), Actor{ID: uuid.New(), Role: enums.ActorRoleCustomer}, uuid.New())
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestFailThenRetryRefund(t *testing.T) {
	f := newFixture(t)
	item := &models.OrderItem{
		ProductID:         uuid.New(),
		ProductName:       "Shirt",
		Quantity:          1,
		QuantityCancelled: 1,
		UnitPrice:         decimal.NewFromInt(500),
		RefundAmount:      decimal.NewFromInt(500),
		Status:            enums.ItemStatusCancelled,
		RefundStatus:      enums.RefundStatusInitiated,
	}
	f.repo.seedOrder(f.custID, item)

	admin := Actor{ID: uuid.New(), Role: enums.ActorRoleAdmin}

	failed, err := f.svc.FailRefund(context.Background(), admin, item.ID, "gateway timeout")
	require.NoError(t, err)
	assert.Equal(t, enums.RefundStatusFailed, failed.RefundStatus)

	retried, err := f.svc.ProcessRefund(context.Background(), admin, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.RefundStatusCompleted, retried.RefundStatus)
}
