package exchanges

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/internal/inventory"
	"github.com/stylekart/fulfillment-backend/internal/orders"
	"github.com/stylekart/fulfillment-backend/pkg/audit"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput is a customer's request to swap a delivered item's variant.
type CreateInput struct {
	CustomerID  uuid.UUID
	OrderItemID uuid.UUID
	NewSize     string
	NewColor    string
	Quantity    int
	Reason      *string
}

// ApproveInput is the admin decision that releases replacement stock.
type ApproveInput struct {
	AdminID    uuid.UUID
	ExchangeID uuid.UUID
	// AdditionalAmount covers any price difference on the replacement
	// variant; zero means an even swap.
	AdditionalAmount decimal.Decimal
}

// Service manages the exchange workflow up to courier hand-off. The
// courier-side transitions (out for delivery, delivered) ride along with
// the parent order in internal/dispatch.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Exchange, error)
	Approve(ctx context.Context, input ApproveInput) (*models.Exchange, error)
	Reject(ctx context.Context, adminID, exchangeID uuid.UUID, reason string) (*models.Exchange, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Exchange, error)
	ListForOrder(ctx context.Context, customerID, orderID uuid.UUID) ([]models.Exchange, error)
	ListPending(ctx context.Context) ([]models.Exchange, error)
}

type service struct {
	repo      Repository
	orderRepo orders.Repository
	tx        txRunner
	outbox    outboxPublisher
	inventory inventory.Service
	now       func() time.Time
}

// NewService builds an exchange service with the required dependencies.
func NewService(repo Repository, orderRepo orders.Repository, tx txRunner, ob outboxPublisher, inv inventory.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("exchanges repository required")
	}
	if orderRepo == nil {
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
		orderRepo: orderRepo,
		tx:        tx,
		outbox:    ob,
		inventory: inv,
		now:       time.Now,
	}, nil
}

// Create opens an exchange against a delivered item. The requested
// quantity cannot exceed the units actually delivered, and the new
// variant must differ from the old one.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Exchange, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if input.OrderItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order item id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange quantity must be positive")
	}
	if input.NewSize == "" && input.NewColor == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exchange must change size or color")
	}

	var created *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		item, err := orderRepo.FindItem(ctx, input.OrderItemID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}
		order, err := orderRepo.FindOrder(ctx, item.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load parent order")
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if item.Status != enums.ItemStatusDelivered {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered items can be exchanged")
		}
		if input.Quantity > item.ActiveQuantity() {
			return pkgerrors.New(pkgerrors.CodeValidation, "exchange quantity exceeds delivered units")
		}

		newSize := item.Size
		if input.NewSize != "" {
			newSize = input.NewSize
		}
		newColor := item.Color
		if input.NewColor != "" {
			newColor = input.NewColor
		}
		if newSize == item.Size && newColor == item.Color {
			return pkgerrors.New(pkgerrors.CodeValidation, "exchange must change size or color")
		}

		if _, err := repo.FindOpenByItem(ctx, item.ID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "item already has an open exchange")
		} else if err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open exchanges")
		}

		exchange, err := repo.Create(ctx, &models.Exchange{
			OrderID:       order.ID,
			OrderItemID:   item.ID,
			CustomerID:    order.CustomerID,
			OldSize:       item.Size,
			NewSize:       newSize,
			OldColor:      item.Color,
			NewColor:      newColor,
			Quantity:      input.Quantity,
			AdditionalPay: decimal.Zero,
			Status:        enums.ExchangeStatusInitiated,
			Reason:        input.Reason,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create exchange")
		}

		if err := s.emitLifecycle(ctx, tx, enums.EventExchangeRequested, exchange, &outbox.ActorRef{
			ActorID: input.CustomerID,
			Role:    enums.ActorRoleCustomer.String(),
		}); err != nil {
			return err
		}

		created = exchange
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Approve reserves the replacement variant and returns the old one to
// stock, all inside the decision transaction.
func (s *service) Approve(ctx context.Context, input ApproveInput) (*models.Exchange, error) {
	if input.AdditionalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "additional amount cannot be negative")
	}

	var approved *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		now := s.now().UTC()

		exchange, err := repo.FindByID(ctx, input.ExchangeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "exchange not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange")
		}
		if !exchange.Status.CanTransitionTo(enums.ExchangeStatusApproved) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "exchange cannot be approved in current state")
		}

		item, err := orderRepo.FindItem(ctx, exchange.OrderItemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
		}

		// Replacement units leave stock now; the returned units come
		// back when the courier completes the swap.
		if err := s.inventory.Reserve(ctx, tx, inventory.Variant{
			ProductID: item.ProductID,
			Color:     exchange.NewColor,
			Size:      exchange.NewSize,
		}, exchange.Quantity); err != nil {
			return err
		}

		updates := map[string]any{
			"status":            enums.ExchangeStatusApproved,
			"approved_at":       now,
			"additional_amount": input.AdditionalAmount.Round(2),
			"payment_required":  input.AdditionalAmount.IsPositive(),
		}
		if err := repo.Update(ctx, exchange.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update exchange")
		}
		exchange.Status = enums.ExchangeStatusApproved
		exchange.ApprovedAt = &now
		exchange.AdditionalPay = input.AdditionalAmount.Round(2)
		exchange.PaymentRequired = input.AdditionalAmount.IsPositive()

		adminID := input.AdminID
		note := audit.Line(now, audit.TagExchange, enums.ActorRoleAdmin,
			fmt.Sprintf("approved exchange %s to %s/%s", exchange.ID, exchange.NewColor, exchange.NewSize))
		if err := orderRepo.CreateHistory(ctx, &models.OrderHistory{
			OrderID:   exchange.OrderID,
			Action:    models.HistoryActionApproved,
			ActorRole: enums.ActorRoleAdmin,
			ActorID:   &adminID,
			Note:      &note,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
		}

		if err := s.emitLifecycle(ctx, tx, enums.EventExchangeApproved, exchange, &outbox.ActorRef{
			ActorID: input.AdminID,
			Role:    enums.ActorRoleAdmin.String(),
		}); err != nil {
			return err
		}

		approved = exchange
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

func (s *service) Reject(ctx context.Context, adminID, exchangeID uuid.UUID, reason string) (*models.Exchange, error) {
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var rejected *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		exchange, err := repo.FindByID(ctx, exchangeID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "exchange not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange")
		}
		if !exchange.Status.CanTransitionTo(enums.ExchangeStatusRejected) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "exchange cannot be rejected in current state")
		}

		if err := repo.Update(ctx, exchange.ID, map[string]any{
			"status":           enums.ExchangeStatusRejected,
			"rejected_at":      now,
			"rejection_reason": reason,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update exchange")
		}
		exchange.Status = enums.ExchangeStatusRejected
		exchange.RejectedAt = &now
		exchange.RejectionReason = &reason

		if err := s.emitLifecycle(ctx, tx, enums.EventExchangeRejected, exchange, &outbox.ActorRef{
			ActorID: adminID,
			Role:    enums.ActorRoleAdmin.String(),
		}); err != nil {
			return err
		}

		rejected = exchange
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Exchange, error) {
	exchange, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exchange not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange")
	}
	return exchange, nil
}

func (s *service) ListForOrder(ctx context.Context, customerID, orderID uuid.UUID) ([]models.Exchange, error) {
	order, err := s.orderRepo.FindOrder(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	exchanges, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list exchanges")
	}
	return exchanges, nil
}

func (s *service) ListPending(ctx context.Context) ([]models.Exchange, error) {
	exchanges, err := s.repo.ListByStatus(ctx, enums.ExchangeStatusInitiated)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending exchanges")
	}
	return exchanges, nil
}

func (s *service) emitLifecycle(ctx context.Context, tx *gorm.DB, eventType enums.OutboxEventType, exchange *models.Exchange, actor *outbox.ActorRef) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateExchange,
		AggregateID:   exchange.ID,
		Version:       1,
		Actor:         actor,
		Data: payloads.ExchangeLifecycleEvent{
			ExchangeID:  exchange.ID,
			OrderID:     exchange.OrderID,
			OrderItemID: exchange.OrderItemID,
			CustomerID:  exchange.CustomerID,
			Status:      exchange.Status,
			NewSize:     exchange.NewSize,
			NewColor:    exchange.NewColor,
			AmountDue:   exchange.AdditionalPay,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue exchange event")
	}
	return nil
}
