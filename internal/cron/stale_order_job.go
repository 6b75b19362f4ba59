package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

const staleOrderThresholdHours = 24

type StaleOrderJobParams struct {
	Logger         *logger.Logger
	DB             txRunner
	Repository     staleOrderRepo
	Outbox         outboxEmitter
	ThresholdHours int
}

type staleOrderRepo interface {
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

func NewStaleOrderJob(params StaleOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	threshold := params.ThresholdHours
	if threshold <= 0 {
		threshold = staleOrderThresholdHours
	}
	return &staleOrderJob{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		outbox:    params.Outbox,
		threshold: threshold,
		now:       time.Now,
	}, nil
}

type staleOrderJob struct {
	logg      *logger.Logger
	db        txRunner
	repo      staleOrderRepo
	outbox    outboxEmitter
	threshold int
	now       func() time.Time
}

func (j *staleOrderJob) Name() string { return "stale-order" }

// Run flags orders still pending past the threshold. EmitIfNotExists keeps
// the nudge to one per order no matter how many runs see it.
func (j *staleOrderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	cutoff := now.Add(-time.Duration(j.threshold) * time.Hour)
	stale, err := j.repo.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("stale order scan: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}
	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, order := range stale {
			event := outbox.DomainEvent{
				EventType:     enums.EventNotificationRequested,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.NotificationRequestedEvent{
					OrderID:     order.ID,
					CustomerID:  order.CustomerID,
					OrderNumber: order.OrderNumber,
					Status:      order.Status,
					PendingFor:  now.Sub(order.CreatedAt).Round(time.Minute).String(),
				},
				OccurredAt: now,
			}
			if err := j.outbox.EmitIfNotExists(ctx, tx, event); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stale order emit: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"stale_orders": len(stale),
	})
	j.logg.Info(logCtx, "stale order nudges emitted")
	return nil
}
