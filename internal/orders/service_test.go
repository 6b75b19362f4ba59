package orders

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
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
	"github.com/stylekart/fulfillment-backend/pkg/types"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	histories []*models.OrderHistory
	coupons   map[string]*models.Coupon
	couponUse map[uuid.UUID]int
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:    make(map[uuid.UUID]*models.Order),
		coupons:   make(map[string]*models.Coupon),
		couponUse: make(map[uuid.UUID]int),
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == number {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindItem(ctx context.Context, itemID uuid.UUID) (*models.OrderItem, error) {
	for _, o := range s.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				return &o.Items[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o.Items, nil
}

func (s *stubOrdersRepo) FindItemsByCourier(ctx context.Context, courierID uuid.UUID, statuses []enums.ItemStatus) ([]models.OrderItem, error) {
	return nil, nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrdersRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrdersRepo) CreateHistory(ctx context.Context, row *models.OrderHistory) error {
	s.histories = append(s.histories, row)
	return nil
}

func (s *stubOrdersRepo) CreateTrackEntry(ctx context.Context, row *models.DeliveryTrackEntry) error {
	return nil
}

func (s *stubOrdersRepo) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummary], error) {
	var rows []OrderSummary
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			rows = append(rows, summarize(*o))
		}
	}
	return pagination.Page[OrderSummary]{Items: rows}, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (pagination.Page[OrderSummary], error) {
	var rows []OrderSummary
	for _, o := range s.orders {
		rows = append(rows, summarize(*o))
	}
	return pagination.Page[OrderSummary]{Items: rows}, nil
}

func (s *stubOrdersRepo) ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[CancelledItemRow], error) {
	return pagination.Page[CancelledItemRow]{}, nil
}

func (s *stubOrdersRepo) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if c, ok := s.coupons[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) IncrementCouponUse(ctx context.Context, couponID uuid.UUID) error {
	s.couponUse[couponID]++
	return nil
}

func (s *stubOrdersRepo) CountOrdersCreatedSince(ctx context.Context, prefix string) (int64, error) {
	var count int64
	for _, o := range s.orders {
		if strings.HasPrefix(o.OrderNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (s *stubOrdersRepo) FindPendingBefore(_ context.Context, _ time.Time) ([]models.Order, error) {
	return nil, nil
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

type stubInventory struct {
	reserved map[string]int
	restored map[string]int
}

func newStubInventory() *stubInventory {
	return &stubInventory{reserved: make(map[string]int), restored: make(map[string]int)}
}

func variantKey(v inventory.Variant) string {
	return v.ProductID.String() + "/" + v.Color + "/" + v.Size
}

func (s *stubInventory) Reserve(ctx context.Context, tx *gorm.DB, v inventory.Variant, qty int) error {
	s.reserved[variantKey(v)] += qty
	return nil
}

func (s *stubInventory) Restore(ctx context.Context, tx *gorm.DB, v inventory.Variant, qty int) error {
	s.restored[variantKey(v)] += qty
	return nil
}

func (s *stubInventory) Available(ctx context.Context, v inventory.Variant) (int, error) {
	return 0, nil
}

func testAddress() types.Address {
	return types.Address{
		Line1:      "14 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func newOrdersService(t *testing.T, repo *stubOrdersRepo, ob *stubOutbox, inv *stubInventory) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, ob, inv, config.DeliveryConfig{
		ExpressWindow:  time.Hour,
		StandardWindow: 48 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestPlaceOrderComputesTotalsAndReservesStock(t *testing.T) {
	repo := newStubOrdersRepo()
	ob := &stubOutbox{}
	inv := newStubInventory()
	svc := newOrdersService(t, repo, ob, inv)

	customerID := uuid.New()
	productID := uuid.New()
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      customerID,
		PaymentMethod:   enums.PaymentMethodUPI,
		DeliveryType:    enums.DeliveryTypeStandard,
		ShippingAddress: testAddress(),
		Items: []OrderLineInput{
			{ProductID: productID, ProductName: "Linen Shirt", Size: "M", Color: "white", Quantity: 2, UnitPrice: decimal.NewFromFloat(799.50)},
			{ProductID: productID, ProductName: "Linen Shirt", Size: "L", Color: "white", Quantity: 1, UnitPrice: decimal.NewFromFloat(799.50)},
		},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD"))
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromFloat(2398.50)), "subtotal %s", order.Subtotal)
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(2398.50)))
	require.NotNil(t, order.EstimatedAt)
	assert.Len(t, order.Items, 2)

	assert.Equal(t, 2, inv.reserved[productID.String()+"/white/M"])
	assert.Equal(t, 1, inv.reserved[productID.String()+"/white/L"])

	require.Len(t, repo.histories, 1)
	assert.Equal(t, models.HistoryActionPlaced, repo.histories[0].Action)

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventOrderPlaced, ob.events[0].EventType)
}

func TestPlaceOrderAppliesCoupon(t *testing.T) {
	repo := newStubOrdersRepo()
	coupon := &models.Coupon{
		ID:              uuid.New(),
		Code:            "WELCOME10",
		DiscountPercent: decimal.NewFromInt(10),
		Active:          true,
	}
	repo.coupons[coupon.Code] = coupon

	svc := newOrdersService(t, repo, &stubOutbox{}, newStubInventory())

	code := "WELCOME10"
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCard,
		DeliveryType:    enums.DeliveryTypeExpress,
		CouponCode:      &code,
		ShippingAddress: testAddress(),
		Items: []OrderLineInput{
			{ProductID: uuid.New(), ProductName: "Denim Jacket", Size: "M", Color: "blue", Quantity: 1, UnitPrice: decimal.NewFromInt(2000)},
		},
	})
	require.NoError(t, err)

	assert.True(t, order.DiscountTotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, 1, repo.couponUse[coupon.ID])
}

func TestPlaceOrderRejectsExpiredCoupon(t *testing.T) {
	repo := newStubOrdersRepo()
	expired := time.Now().Add(-time.Hour)
	repo.coupons["OLD"] = &models.Coupon{
		ID:              uuid.New(),
		Code:            "OLD",
		DiscountPercent: decimal.NewFromInt(25),
		Active:          true,
		ExpiresAt:       &expired,
	}

	svc := newOrdersService(t, repo, &stubOutbox{}, newStubInventory())

	code := "OLD"
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		DeliveryType:    enums.DeliveryTypeStandard,
		CouponCode:      &code,
		ShippingAddress: testAddress(),
		Items: []OrderLineInput{
			{ProductID: uuid.New(), ProductName: "Kurta", Size: "S", Color: "green", Quantity: 1, UnitPrice: decimal.NewFromInt(900)},
		},
	})
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := newOrdersService(t, newStubOrdersRepo(), &stubOutbox{}, newStubInventory())

	line := OrderLineInput{ProductID: uuid.New(), ProductName: "Tee", Size: "M", Color: "black", Quantity: 1, UnitPrice: decimal.NewFromInt(500)}

	cases := []struct {
		name  string
		input PlaceOrderInput
		code  pkgerrors.Code
	}{
		{
			"missing customer",
			PlaceOrderInput{PaymentMethod: enums.PaymentMethodCOD, DeliveryType: enums.DeliveryTypeStandard, Items: []OrderLineInput{line}},
			pkgerrors.CodeUnauthorized,
		},
		{
			"no items",
			PlaceOrderInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCOD, DeliveryType: enums.DeliveryTypeStandard},
			pkgerrors.CodeValidation,
		},
		{
			"bad payment method",
			PlaceOrderInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethod("cheque"), DeliveryType: enums.DeliveryTypeStandard, Items: []OrderLineInput{line}},
			pkgerrors.CodeValidation,
		},
		{
			"scheduled without slot",
			PlaceOrderInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCOD, DeliveryType: enums.DeliveryTypeScheduled, Items: []OrderLineInput{line}},
			pkgerrors.CodeValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tc.input)
			var appErr *pkgerrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.code, appErr.Code())
		})
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newOrdersService(t, repo, &stubOutbox{}, newStubInventory())

	owner := uuid.New()
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID:      owner,
		PaymentMethod:   enums.PaymentMethodCOD,
		DeliveryType:    enums.DeliveryTypeStandard,
		ShippingAddress: testAddress(),
		Items: []OrderLineInput{
			{ProductID: uuid.New(), ProductName: "Saree", Size: "fs", Color: "red", Quantity: 1, UnitPrice: decimal.NewFromInt(3200)},
		},
	})
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), uuid.New(), order.ID)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeForbidden, appErr.Code())
}

func TestMintOrderNumberAddsSuffixWithinSameSecond(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newOrdersService(t, repo, &stubOutbox{}, newStubInventory()).(*service)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	input := PlaceOrderInput{
		CustomerID:      uuid.New(),
		PaymentMethod:   enums.PaymentMethodCOD,
		DeliveryType:    enums.DeliveryTypeStandard,
		ShippingAddress: testAddress(),
		Items: []OrderLineInput{
			{ProductID: uuid.New(), ProductName: "Tee", Size: "M", Color: "black", Quantity: 1, UnitPrice: decimal.NewFromInt(500)},
		},
	}

	first, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "ORD20260314092653", first.OrderNumber)
	assert.Equal(t, "ORD20260314092653-2", second.OrderNumber)
}
