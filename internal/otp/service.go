// Package otp issues and verifies the numeric confirmation codes a
// courier must collect from the customer before a hand-off counts as
// delivered. Codes are single-use and expire on their own.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"

	"github.com/stylekart/fulfillment-backend/pkg/config"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
)

// Item types scoping confirmation codes.
const (
	ItemTypeOrder    = "order"
	ItemTypeExchange = "exchange"
)

// Service issues, verifies, and consumes delivery confirmation codes.
type Service interface {
	Issue(ctx context.Context, ref Reference) (string, error)
	Verify(ctx context.Context, ref Reference, code string) error
}

type service struct {
	store CodeStore
	cfg   config.OTPConfig
}

// NewService builds an OTP service over the given store.
func NewService(store CodeStore, cfg config.OTPConfig) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("code store required")
	}
	if cfg.Length < 4 {
		return nil, fmt.Errorf("otp length %d too short", cfg.Length)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("otp ttl must be positive")
	}
	return &service{store: store, cfg: cfg}, nil
}

// Issue mints a fresh code for the reference, replacing any live one.
func (s *service) Issue(ctx context.Context, ref Reference) (string, error) {
	if err := ref.validate(); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid code reference")
	}
	code, err := generateCode(s.cfg.Length)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate confirmation code")
	}
	if err := s.store.Save(ctx, ref, code, s.cfg.TTL); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store confirmation code")
	}
	return code, nil
}

// Verify checks the supplied code and consumes it on success, so a code
// can confirm at most one hand-off.
func (s *service) Verify(ctx context.Context, ref Reference, code string) error {
	if err := ref.validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid code reference")
	}
	if code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation code required")
	}
	stored, err := s.store.Get(ctx, ref)
	if err != nil {
		if err == ErrNoCode {
			return pkgerrors.New(pkgerrors.CodeValidation, "confirmation code expired or never issued")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load confirmation code")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "confirmation code does not match")
	}
	if err := s.store.Delete(ctx, ref); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume confirmation code")
	}
	return nil
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	max := big.NewInt(10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
