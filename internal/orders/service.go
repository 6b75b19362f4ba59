package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/inventory"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
	"github.com/stylekart/fulfillment-backend/pkg/pagination"
)

const orderNumberPrefix = "ORD"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service covers order placement and the read paths customers and
// admins use. Item-level mutation lives in internal/orderitems and
// courier flows in internal/dispatch.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummary], error)
	ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (pagination.Page[OrderSummary], error)
	ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[CancelledItemRow], error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory inventory.Service
	delivery  config.DeliveryConfig
	now       func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, inv inventory.Service, delivery config.DeliveryConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    ob,
		inventory: inv,
		delivery:  delivery,
		now:       time.Now,
	}, nil
}

// PlaceOrder creates the order, its items, the initial history row, and
// the stock reservations in one transaction, then queues order_placed.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.DeliveryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery type")
	}
	if input.DeliveryType == enums.DeliveryTypeScheduled && input.ScheduledFor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled delivery requires a slot")
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
	}

	var placed *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Size:        line.Size,
				Color:       line.Color,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice.Round(2),
				LineTotal:   lineTotal,
				Status:      enums.ItemStatusPending,
			})

			if err := s.inventory.Reserve(ctx, tx, inventory.Variant{
				ProductID: line.ProductID,
				Color:     line.Color,
				Size:      line.Size,
			}, line.Quantity); err != nil {
				return err
			}
		}
		subtotal = subtotal.Round(2)

		discount := decimal.Zero
		var couponID *uuid.UUID
		if input.CouponCode != nil && strings.TrimSpace(*input.CouponCode) != "" {
			coupon, err := repo.FindCouponByCode(ctx, strings.TrimSpace(*input.CouponCode))
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown coupon code")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
			}
			if !coupon.Usable(now) {
				return pkgerrors.New(pkgerrors.CodeValidation, "coupon is no longer usable")
			}
			discount = subtotal.Mul(coupon.DiscountPercent).Div(decimal.NewFromInt(100)).Round(2)
			id := coupon.ID
			couponID = &id
			if err := repo.IncrementCouponUse(ctx, coupon.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume coupon")
			}
		}

		total := subtotal.Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		number, err := s.mintOrderNumber(ctx, repo, now)
		if err != nil {
			return err
		}

		estimated := s.estimatedDelivery(input.DeliveryType, input.ScheduledFor, now)
		addr := input.ShippingAddress

		order := &models.Order{
			OrderNumber:     number,
			CustomerID:      input.CustomerID,
			Status:          enums.OrderStatusPending,
			PaymentStatus:   enums.PaymentStatusPending,
			PaymentMethod:   input.PaymentMethod,
			DeliveryType:    input.DeliveryType,
			CouponID:        couponID,
			Subtotal:        subtotal,
			DiscountTotal:   discount,
			Total:           total,
			ShippingAddress: &addr,
			DeliveryNotes:   input.DeliveryNotes,
			ScheduledFor:    input.ScheduledFor,
			EstimatedAt:     estimated,
			Items:           items,
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		customerID := input.CustomerID
		if err := repo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   order.ID,
			Action:    models.HistoryActionPlaced,
			ActorRole: enums.ActorRoleCustomer,
			ActorID:   &customerID,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{ActorID: input.CustomerID, Role: enums.ActorRoleCustomer.String()},
			Data: payloads.OrderPlacedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CustomerID:  order.CustomerID,
				Total:       order.Total,
				ItemCount:   len(order.Items),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order event")
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

func (s *service) GetOrder(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrderAdmin(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	return order, nil
}

func (s *service) GetOrderAdmin(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListCustomerOrders(ctx context.Context, customerID uuid.UUID, params pagination.Params) (pagination.Page[OrderSummary], error) {
	page, err := s.repo.ListCustomerOrders(ctx, customerID, params)
	if err != nil {
		return pagination.Page[OrderSummary]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return page, nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (pagination.Page[OrderSummary], error) {
	page, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return pagination.Page[OrderSummary]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return page, nil
}

func (s *service) ListCancelledItems(ctx context.Context, params pagination.Params) (pagination.Page[CancelledItemRow], error) {
	page, err := s.repo.ListCancelledItems(ctx, params)
	if err != nil {
		return pagination.Page[CancelledItemRow]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cancelled items")
	}
	return page, nil
}

// mintOrderNumber builds ORD<yyyymmddhhmmss> plus a numeric suffix when
// more than one order lands in the same second.
func (s *service) mintOrderNumber(ctx context.Context, repo Repository, now time.Time) (string, error) {
	base := orderNumberPrefix + now.Format("20060102150405")
	existing, err := repo.CountOrdersCreatedSince(ctx, base)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sibling orders")
	}
	if existing == 0 {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, existing+1), nil
}

func (s *service) estimatedDelivery(deliveryType enums.DeliveryType, scheduledFor *time.Time, now time.Time) *time.Time {
	switch deliveryType {
	case enums.DeliveryTypeExpress:
		t := now.Add(s.delivery.ExpressWindow)
		return &t
	case enums.DeliveryTypeScheduled:
		return scheduledFor
	default:
		t := now.Add(s.delivery.StandardWindow)
		return &t
	}
}
