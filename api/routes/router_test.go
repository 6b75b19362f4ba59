package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/internal/dispatch"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/notifications"
	"github.com/stylekart/fulfillment-backend/internal/orderitems"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	pkgAuth "github.com/stylekart/fulfillment-backend/pkg/auth"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
	"github.com/stylekart/fulfillment-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubOrdersService struct{}

func (stubOrdersService) PlaceOrder(context.Context, orders.PlaceOrderInput) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetOrder(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) GetOrderAdmin(context.Context, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubOrdersService) ListCustomerOrders(context.Context, uuid.UUID, pagination.Params) (pagination.Page[orders.OrderSummary], error) {
	return pagination.Page[orders.OrderSummary]{}, nil
}

func (stubOrdersService) ListOrders(context.Context, pagination.Params, orders.AdminOrderFilters) (pagination.Page[orders.OrderSummary], error) {
	return pagination.Page[orders.OrderSummary]{}, nil
}

func (stubOrdersService) ListCancelledItems(context.Context, pagination.Params) (pagination.Page[orders.CancelledItemRow], error) {
	return pagination.Page[orders.CancelledItemRow]{}, nil
}

type stubOrderItemsService struct{}

func (stubOrderItemsService) Cancel(context.Context, orderitems.CancelInput) (*models.OrderItem, error) {
	panic("unimplemented")
}

func (stubOrderItemsService) PayPickupFee(context.Context, uuid.UUID, uuid.UUID) (*models.OrderItem, error) {
	panic("unimplemented")
}

func (stubOrderItemsService) ProcessRefund(context.Context, orderitems.Actor, uuid.UUID) (*models.OrderItem, error) {
	panic("unimplemented")
}

func (stubOrderItemsService) FailRefund(context.Context, orderitems.Actor, uuid.UUID, string) (*models.OrderItem, error) {
	panic("unimplemented")
}

type stubExchangesService struct{}

func (stubExchangesService) Create(context.Context, exchanges.CreateInput) (*models.Exchange, error) {
	panic("unimplemented")
}

func (stubExchangesService) Approve(context.Context, exchanges.ApproveInput) (*models.Exchange, error) {
	panic("unimplemented")
}

func (stubExchangesService) Reject(context.Context, uuid.UUID, uuid.UUID, string) (*models.Exchange, error) {
	panic("unimplemented")
}

func (stubExchangesService) Get(context.Context, uuid.UUID) (*models.Exchange, error) {
	panic("unimplemented")
}

func (stubExchangesService) ListForOrder(context.Context, uuid.UUID, uuid.UUID) ([]models.Exchange, error) {
	return nil, nil
}

func (stubExchangesService) ListPending(context.Context) ([]models.Exchange, error) {
	return nil, nil
}

type stubDispatchService struct{}

func (stubDispatchService) AssignBulk(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.Order, error) {
	panic("unimplemented")
}

func (stubDispatchService) AssignItem(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.OrderItem, error) {
	panic("unimplemented")
}

func (stubDispatchService) Reassign(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.OrderItem, error) {
	panic("unimplemented")
}

func (stubDispatchService) AssignExchange(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) (*models.Exchange, error) {
	panic("unimplemented")
}

func (stubDispatchService) Approve(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

func (stubDispatchService) Reject(context.Context, uuid.UUID, uuid.UUID, string) error {
	panic("unimplemented")
}

func (stubDispatchService) MarkProcessing(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

func (stubDispatchService) MarkShipped(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

func (stubDispatchService) OutForDelivery(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

func (stubDispatchService) Delivered(context.Context, dispatch.DeliveredInput) error {
	panic("unimplemented")
}

func (stubDispatchService) WorkerQueue(context.Context, uuid.UUID) ([]dispatch.QueueEntry, error) {
	return []dispatch.QueueEntry{}, nil
}

type stubCouriersService struct{}

func (stubCouriersService) Register(context.Context, couriers.RegisterInput) (*models.Courier, error) {
	panic("unimplemented")
}

func (stubCouriersService) Login(context.Context, string, string) (*couriers.LoginResult, error) {
	panic("unimplemented")
}

func (stubCouriersService) Get(context.Context, uuid.UUID) (*models.Courier, error) {
	panic("unimplemented")
}

func (stubCouriersService) SetStatus(context.Context, uuid.UUID, enums.CourierStatus) (*models.Courier, error) {
	panic("unimplemented")
}

func (stubCouriersService) Workload(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func (stubCouriersService) Loyalty(context.Context, uuid.UUID) (*models.CourierLoyalty, error) {
	return &models.CourierLoyalty{}, nil
}

func (stubCouriersService) RecordDecision(context.Context, *gorm.DB, uuid.UUID, uuid.UUID, bool) error {
	panic("unimplemented")
}

type stubWalletService struct{}

func (stubWalletService) Credit(context.Context, *gorm.DB, wallet.CreditInput) (*models.WalletTransaction, error) {
	panic("unimplemented")
}

func (stubWalletService) Balance(context.Context, uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubWalletService) Ledger(context.Context, uuid.UUID, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	panic("unimplemented")
}

func (stubNotificationsService) MarkAllRead(context.Context, uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "stylekart-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		Services{
			Orders:        stubOrdersService{},
			OrderItems:    stubOrderItemsService{},
			Exchanges:     stubExchangesService{},
			Dispatch:      stubDispatchService{},
			Couriers:      stubCouriersService{},
			Wallet:        stubWalletService{},
			Notifications: stubNotificationsService{},
		},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{ActorID: uuid.New(), Role: role}
	if role == enums.ActorRoleCourier {
		courierID := uuid.New()
		payload.CourierID = &courierID
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestCustomerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestCustomerGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for customer order list got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestCourierGroupRequiresCourierRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/courier/queue", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-courier got %d", resp.Code)
	}

	courier := httptest.NewRequest(http.MethodGet, "/api/v1/courier/queue", nil)
	courier.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCourier))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, courier)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for courier queue got %d", resp.Code)
	}
}

func TestWalletRoutesForCustomer(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for wallet balance got %d", resp.Code)
	}
}

func TestLoyaltyRouteForCourier(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/courier/loyalty", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCourier))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for courier loyalty got %d", resp.Code)
	}
}
