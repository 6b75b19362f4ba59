package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// CreditInput describes one store-credit grant.
type CreditInput struct {
	CustomerID  uuid.UUID
	Amount      decimal.Decimal
	Type        enums.WalletTransactionType
	Description string
	Reference   string
}

// Service manages customer store-credit balances. Credits run inside a
// caller-owned transaction so a refund and its wallet movement commit
// together.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.WalletTransaction, error)
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	Ledger(ctx context.Context, customerID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type service struct {
	repo   Repository
	outbox outboxPublisher
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository, ob outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, outbox: ob}, nil
}

// Credit adds funds to the customer wallet, creating it on first use.
// The reference makes the credit idempotent: a second credit with the
// same reference returns the original ledger row untouched.
func (s *service) Credit(ctx context.Context, tx *gorm.DB, input CreditInput) (*models.WalletTransaction, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if input.Reference == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit reference required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid wallet transaction type")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for wallet credit")
	}

	repo := s.repo.WithTx(tx)

	wallet, err := repo.FindByCustomer(ctx, input.CustomerID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
		}
		wallet, err = repo.Create(ctx, &models.Wallet{
			CustomerID: input.CustomerID,
			Balance:    decimal.Zero,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create wallet")
		}
	}

	if existing, err := repo.FindTransactionByReference(ctx, wallet.ID, input.Reference); err == nil {
		return existing, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check credit reference")
	}

	newBalance := wallet.Balance.Add(input.Amount).Round(2)
	if err := repo.UpdateBalance(ctx, wallet.ID, newBalance); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}

	txn, err := repo.CreateTransaction(ctx, &models.WalletTransaction{
		WalletID:     wallet.ID,
		Type:         input.Type,
		Amount:       input.Amount.Round(2),
		BalanceAfter: newBalance,
		Description:  input.Description,
		Reference:    input.Reference,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write wallet ledger")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventWalletCredited,
		AggregateType: enums.AggregateWallet,
		AggregateID:   wallet.ID,
		Version:       1,
		Data: payloads.WalletCreditedEvent{
			WalletID:   wallet.ID,
			CustomerID: input.CustomerID,
			Amount:     input.Amount.Round(2),
			Balance:    newBalance,
			Reference:  input.Reference,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue wallet event")
	}

	return txn, nil
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	wallet, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return decimal.Zero, nil
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return wallet.Balance, nil
}

func (s *service) Ledger(ctx context.Context, customerID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	wallet, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	txns, err := s.repo.ListTransactions(ctx, wallet.ID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet ledger")
	}
	return txns, nil
}
