package couriers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/auth"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/security"
)

// RegisterInput captures a new courier application.
type RegisterInput struct {
	FullName      string `validate:"required,min=2"`
	Email         string `validate:"required,email"`
	Phone         string `validate:"required,min=7"`
	Password      string `validate:"required,min=8"`
	VehicleNumber *string
	Zone          *string
}

// LoginResult carries the minted token and the courier profile.
type LoginResult struct {
	Token   string
	Courier *models.Courier
}

// Service manages courier onboarding, auth, and loyalty bookkeeping.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Courier, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Courier, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.CourierStatus) (*models.Courier, error)
	Workload(ctx context.Context, id uuid.UUID) (int64, error)
	Loyalty(ctx context.Context, id uuid.UUID) (*models.CourierLoyalty, error)
	RecordDecision(ctx context.Context, tx *gorm.DB, courierID, orderID uuid.UUID, approved bool) error
}

type service struct {
	repo    Repository
	jwtCfg  config.JWTConfig
	passCfg config.PasswordConfig
}

// NewService builds a courier service with the required dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig, passCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("couriers repository required")
	}
	return &service{repo: repo, jwtCfg: jwtCfg, passCfg: passCfg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Courier, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if strings.TrimSpace(input.FullName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing courier")
	}

	hash, err := security.HashPassword(input.Password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	courier, err := s.repo.Create(ctx, &models.Courier{
		FullName:      strings.TrimSpace(input.FullName),
		Email:         email,
		Phone:         strings.TrimSpace(input.Phone),
		PasswordHash:  hash,
		Status:        enums.CourierStatusPending,
		VehicleNumber: input.VehicleNumber,
		Zone:          input.Zone,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create courier")
	}
	return courier, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	courier, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
	}

	ok, err := security.VerifyPassword(password, courier.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	courierID := courier.ID
	token, err := auth.MintAccessToken(s.jwtCfg, time.Now(), auth.AccessTokenPayload{
		ActorID:   courier.ID,
		Role:      enums.ActorRoleCourier,
		CourierID: &courierID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	return &LoginResult{Token: token, Courier: courier}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Courier, error) {
	courier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "courier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier")
	}
	return courier, nil
}

// SetStatus moves a courier between onboarding states. Approval is the
// gate every dispatch path checks before handing work over.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.CourierStatus) (*models.Courier, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid courier status")
	}

	courier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if courier.Status == status {
		return courier, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update courier status")
	}
	courier.Status = status
	return courier, nil
}

func (s *service) Workload(ctx context.Context, id uuid.UUID) (int64, error) {
	count, err := s.repo.CountActiveItems(ctx, id)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active items")
	}
	return count, nil
}

func (s *service) Loyalty(ctx context.Context, id uuid.UUID) (*models.CourierLoyalty, error) {
	loyalty, err := s.repo.FindOrCreateLoyalty(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier loyalty")
	}
	return loyalty, nil
}

// RecordDecision appends the order to the courier's approved or rejected
// list inside the caller's transaction. Appends are idempotent per order.
func (s *service) RecordDecision(ctx context.Context, tx *gorm.DB, courierID, orderID uuid.UUID, approved bool) error {
	repo := s.repo.WithTx(tx)
	loyalty, err := repo.FindOrCreateLoyalty(ctx, courierID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load courier loyalty")
	}
	if approved {
		loyalty.RecordApproved(orderID)
	} else {
		loyalty.RecordRejected(orderID)
	}
	if err := repo.SaveLoyalty(ctx, loyalty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save courier loyalty")
	}
	return nil
}
