package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Variant identifies one stock bucket.
type Variant struct {
	ProductID uuid.UUID
	Color     string
	Size      string
}

// Service moves stock in and out of variant buckets. All mutating calls
// run inside a caller-owned transaction so stock moves commit or roll
// back together with the order rows that caused them.
type Service interface {
	Reserve(ctx context.Context, tx *gorm.DB, v Variant, qty int) error
	Restore(ctx context.Context, tx *gorm.DB, v Variant, qty int) error
	Available(ctx context.Context, v Variant) (int, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
}

// NewService builds an inventory service with the required dependencies.
func NewService(repo Repository, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: ob}, nil
}

// Reserve removes qty units from the variant bucket. When the bucket
// holds fewer units than requested the balance clamps at zero and an
// inventory_below_expected event is queued so ops can reconcile,
// rather than failing the customer-facing operation.
func (s *service) Reserve(ctx context.Context, tx *gorm.DB, v Variant, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory reserve")
	}

	repo := s.repo.WithTx(tx)
	item, err := repo.FindVariant(ctx, v.ProductID, v.Color, v.Size)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product variant not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}

	applied := qty
	if item.AvailableQty < qty {
		applied = item.AvailableQty
	}

	if err := repo.SetAvailable(ctx, item.ID, item.AvailableQty-applied); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}

	if applied < qty {
		event := outbox.DomainEvent{
			EventType:     enums.EventInventoryBelowExpected,
			AggregateType: enums.AggregateOrderItem,
			AggregateID:   item.ID,
			Version:       1,
			Data: payloads.InventoryBelowExpectedEvent{
				ProductID: v.ProductID,
				Color:     v.Color,
				Size:      v.Size,
				Requested: qty,
				Applied:   applied,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue stock shortfall event")
		}
	}

	return nil
}

// Restore returns qty units to the variant bucket, creating the bucket
// when a refunded variant was never stocked before.
func (s *service) Restore(ctx context.Context, tx *gorm.DB, v Variant, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory restore")
	}

	repo := s.repo.WithTx(tx)
	item, err := repo.FindVariant(ctx, v.ProductID, v.Color, v.Size)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			_, err = repo.CreateVariant(ctx, &models.InventoryItem{
				ProductID:    v.ProductID,
				Color:        v.Color,
				Size:         v.Size,
				AvailableQty: qty,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create variant bucket")
			}
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}

	if err := repo.AdjustAvailable(ctx, item.ID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore stock")
	}
	return nil
}

func (s *service) Available(ctx context.Context, v Variant) (int, error) {
	item, err := s.repo.FindVariant(ctx, v.ProductID, v.Color, v.Size)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant stock")
	}
	return item.AvailableQty, nil
}
