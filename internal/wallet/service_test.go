package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
)

type stubWalletRepo struct {
	wallets map[uuid.UUID]*models.Wallet
	txns    []*models.WalletTransaction
}

func newStubWalletRepo() *stubWalletRepo {
	return &stubWalletRepo{wallets: make(map[uuid.UUID]*models.Wallet)}
}

func (s *stubWalletRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWalletRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.Wallet, error) {
	for _, w := range s.wallets {
		if w.CustomerID == customerID {
			return w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubWalletRepo) Create(ctx context.Context, wallet *models.Wallet) (*models.Wallet, error) {
	if wallet.ID == uuid.Nil {
		wallet.ID = uuid.New()
	}
	s.wallets[wallet.ID] = wallet
	return wallet, nil
}

func (s *stubWalletRepo) UpdateBalance(ctx context.Context, walletID uuid.UUID, balance decimal.Decimal) error {
	w, ok := s.wallets[walletID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.Balance = balance
	return nil
}

func (s *stubWalletRepo) CreateTransaction(ctx context.Context, txn *models.WalletTransaction) (*models.WalletTransaction, error) {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.txns = append(s.txns, txn)
	return txn, nil
}

func (s *stubWalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, txn := range s.txns {
		if txn.WalletID == walletID {
			out = append(out, *txn)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubWalletRepo) FindTransactionByReference(ctx context.Context, walletID uuid.UUID, reference string) (*models.WalletTransaction, error) {
	for _, txn := range s.txns {
		if txn.WalletID == walletID && txn.Reference == reference {
			return txn, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestCreditCreatesWalletLazily(t *testing.T) {
	repo := newStubWalletRepo()
	ob := &stubOutbox{}
	svc, err := NewService(repo, ob)
	require.NoError(t, err)

	customerID := uuid.New()
	txn, err := svc.Credit(context.Background(), &gorm.DB{}, CreditInput{
		CustomerID:  customerID,
		Amount:      decimal.NewFromFloat(149.99),
		Type:        enums.WalletTransactionTypeRefund,
		Description: "refund for cancelled item",
		Reference:   "OrderItem_" + uuid.NewString(),
	})
	require.NoError(t, err)

	assert.True(t, txn.Amount.Equal(decimal.NewFromFloat(149.99)))
	assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromFloat(149.99)))

	balance, err := svc.Balance(context.Background(), customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromFloat(149.99)))

	require.Len(t, ob.events, 1)
	assert.Equal(t, enums.EventWalletCredited, ob.events[0].EventType)
}

func TestCreditIsIdempotentPerReference(t *testing.T) {
	repo := newStubWalletRepo()
	ob := &stubOutbox{}
	svc, err := NewService(repo, ob)
	require.NoError(t, err)

	customerID := uuid.New()
	input := CreditInput{
		CustomerID:  customerID,
		Amount:      decimal.NewFromInt(50),
		Type:        enums.WalletTransactionTypeRefund,
		Description: "refund",
		Reference:   "OrderItem_fixed-ref",
	}

	first, err := svc.Credit(context.Background(), &gorm.DB{}, input)
	require.NoError(t, err)
	second, err := svc.Credit(context.Background(), &gorm.DB{}, input)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	balance, err := svc.Balance(context.Background(), customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)))
	assert.Len(t, ob.events, 1)
}

func TestCreditAccumulatesBalance(t *testing.T) {
	repo := newStubWalletRepo()
	svc, err := NewService(repo, &stubOutbox{})
	require.NoError(t, err)

	customerID := uuid.New()
	for i, amount := range []int64{100, 25} {
		_, err = svc.Credit(context.Background(), &gorm.DB{}, CreditInput{
			CustomerID:  customerID,
			Amount:      decimal.NewFromInt(amount),
			Type:        enums.WalletTransactionTypeCredit,
			Description: "promo credit",
			Reference:   uuid.NewString() + string(rune('a'+i)),
		})
		require.NoError(t, err)
	}

	balance, err := svc.Balance(context.Background(), customerID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(125)))

	ledger, err := svc.Ledger(context.Background(), customerID, 0)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

func TestCreditRejectsBadInput(t *testing.T) {
	svc, err := NewService(newStubWalletRepo(), &stubOutbox{})
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreditInput
	}{
		{"missing customer", CreditInput{Amount: decimal.NewFromInt(10), Type: enums.WalletTransactionTypeCredit, Reference: "r"}},
		{"zero amount", CreditInput{CustomerID: uuid.New(), Type: enums.WalletTransactionTypeCredit, Reference: "r"}},
		{"negative amount", CreditInput{CustomerID: uuid.New(), Amount: decimal.NewFromInt(-5), Type: enums.WalletTransactionTypeCredit, Reference: "r"}},
		{"missing reference", CreditInput{CustomerID: uuid.New(), Amount: decimal.NewFromInt(10), Type: enums.WalletTransactionTypeCredit}},
		{"bad type", CreditInput{CustomerID: uuid.New(), Amount: decimal.NewFromInt(10), Type: enums.WalletTransactionType("bogus"), Reference: "r"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Credit(context.Background(), &gorm.DB{}, tc.input)
			var appErr *pkgerrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestBalanceUnknownCustomerIsZero(t *testing.T) {
	svc, err := NewService(newStubWalletRepo(), &stubOutbox{})
	require.NoError(t, err)

	balance, err := svc.Balance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
