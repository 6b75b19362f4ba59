package cron

import (
	"context"
	"fmt"

	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

type OTPSweepJobParams struct {
	Logger *logger.Logger
	Store  otpSweeper
}

// otpSweeper drops expired delivery codes from an in-process store. The
// Redis-backed store expires keys natively and never needs sweeping.
type otpSweeper interface {
	Sweep(ctx context.Context) int
}

func NewOTPSweepJob(params OTPSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("otp store required")
	}
	return &otpSweepJob{
		logg:  params.Logger,
		store: params.Store,
	}, nil
}

type otpSweepJob struct {
	logg  *logger.Logger
	store otpSweeper
}

func (j *otpSweepJob) Name() string { return "otp-sweep" }

func (j *otpSweepJob) Run(ctx context.Context) error {
	swept := j.store.Sweep(ctx)
	if swept > 0 {
		logCtx := j.logg.WithField(ctx, "codes_removed", swept)
		j.logg.Info(logCtx, "expired delivery codes swept")
	}
	return nil
}
