package wallet

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
)

// Repository defines persistence operations for wallets and their ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error)
	Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error)
	UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error
	CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error)
	FindTransactionByReference(ctx context.Context, walletID uuid.UUID, reference string) (*models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return nil, err
	}
	return wallet, nil
}

func (r *repository) UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *repository) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	var txns []models.WalletTransaction
	q := r.db.WithContext(ctx).
		Where("wallet_id = ?", walletID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) FindTransactionByReference(ctx context.Context, walletID uuid.UUID, reference string) (*models.WalletTransaction, error) {
	var txn models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("wallet_id = ? AND reference = ?", walletID, reference).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}
