package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stylekart/fulfillment-backend/api/controllers"
	"github.com/stylekart/fulfillment-backend/api/middleware"
	"github.com/stylekart/fulfillment-backend/internal/couriers"
	"github.com/stylekart/fulfillment-backend/internal/dispatch"
	"github.com/stylekart/fulfillment-backend/internal/exchanges"
	"github.com/stylekart/fulfillment-backend/internal/notifications"
	"github.com/stylekart/fulfillment-backend/internal/orderitems"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/internal/wallet"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
	"github.com/stylekart/fulfillment-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers. cmd/api
// builds one of these after wiring repositories and services.
type Services struct {
	Orders        orders.Service
	OrderItems    orderitems.Service
	Exchanges     exchanges.Service
	Dispatch      dispatch.Service
	Couriers      couriers.Service
	Wallet        wallet.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbP,
			"redis": redisClient,
		}))
	})

	r.Route("/api/v1/auth/courier", func(r chi.Router) {
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.CourierRegister(svcs.Couriers, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.CourierLogin(svcs.Couriers, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		// Customer surface. Order placement and anything that moves money
		// sits behind the idempotency middleware's long-TTL rules.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleCustomer, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.PlaceOrder(svcs.Orders, logg))
				r.Get("/", controllers.ListMyOrders(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.GetMyOrder(svcs.Orders, logg))
				r.Get("/{orderID}/exchanges", controllers.ListMyExchanges(svcs.Exchanges, logg))
				r.Post("/items/{itemID}/cancel", controllers.CancelItem(svcs.OrderItems, logg))
				r.Post("/items/{itemID}/pickup-fee", controllers.PayPickupFee(svcs.OrderItems, logg))
				r.Post("/items/{itemID}/exchange", controllers.RequestExchange(svcs.Exchanges, logg))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", controllers.WalletBalance(svcs.Wallet, logg))
				r.Get("/transactions", controllers.WalletLedger(svcs.Wallet, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
				r.Post("/{notificationID}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			})
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleAdmin, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(svcs.Orders, logg))
				r.Get("/cancelled-items", controllers.AdminListCancelledItems(svcs.Orders, logg))
				r.Get("/{orderID}", controllers.AdminGetOrder(svcs.Orders, logg))
				r.Post("/{orderID}/processing", controllers.MarkOrderProcessing(svcs.Dispatch, logg))
				r.Post("/{orderID}/shipped", controllers.MarkOrderShipped(svcs.Dispatch, logg))
			})

			r.Route("/dispatch", func(r chi.Router) {
				r.Post("/{orderID}/assign", controllers.AssignOrder(svcs.Dispatch, logg))
				r.Post("/items/{itemID}/assign", controllers.AssignOrderItem(svcs.Dispatch, logg))
				r.Post("/items/{itemID}/reassign", controllers.ReassignOrderItem(svcs.Dispatch, logg))
				r.Post("/exchanges/{exchangeID}/assign", controllers.AssignExchange(svcs.Dispatch, logg))
			})

			r.Route("/refunds", func(r chi.Router) {
				r.Post("/{itemID}/process", controllers.ProcessRefund(svcs.OrderItems, logg))
				r.Post("/{itemID}/fail", controllers.FailRefund(svcs.OrderItems, logg))
			})

			r.Route("/exchanges", func(r chi.Router) {
				r.Get("/pending", controllers.AdminListPendingExchanges(svcs.Exchanges, logg))
				r.Post("/{exchangeID}/approve", controllers.ApproveExchange(svcs.Exchanges, logg))
				r.Post("/{exchangeID}/reject", controllers.RejectExchange(svcs.Exchanges, logg))
			})

			r.Route("/couriers", func(r chi.Router) {
				r.Get("/{courierID}", controllers.AdminGetCourier(svcs.Couriers, logg))
				r.Post("/{courierID}/status", controllers.SetCourierStatus(svcs.Couriers, logg))
			})
		})

		// Courier surface.
		r.Route("/courier", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.ActorRoleCourier, logg))

			r.Get("/queue", controllers.CourierQueue(svcs.Dispatch, logg))
			r.Get("/loyalty", controllers.CourierLoyaltyView(svcs.Couriers, logg))
			r.Route("/orders/{orderID}", func(r chi.Router) {
				r.Post("/approve", controllers.CourierApproveOrder(svcs.Dispatch, logg))
				r.Post("/reject", controllers.CourierRejectOrder(svcs.Dispatch, logg))
				r.Post("/out-for-delivery", controllers.CourierOutForDelivery(svcs.Dispatch, logg))
				r.Post("/delivered", controllers.CourierDelivered(svcs.Dispatch, logg))
			})
		})
	})

	return r
}
