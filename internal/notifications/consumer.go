package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/db/models"
	"github.com/stylekart/fulfillment-backend/pkg/enums"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
	"github.com/stylekart/fulfillment-backend/pkg/outbox"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/idempotency"
	"github.com/stylekart/fulfillment-backend/pkg/outbox/payloads"
)

const notificationConsumer = "customer-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer turns published fulfillment events into in-app customer
// notifications. Events it does not care about are acked and dropped.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the customer notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType.String(),
	})

	builder, ok := builders[eventType]
	if !ok {
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, notificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notification, err := builder(envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	if notification == nil {
		return processResult{ack: true}
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, notificationConsumer, eventID)
		return processResult{nack: true}
	}
	c.logg.Info(c.logg.WithUserID(logCtx, notification.CustomerID.String()), "customer notified")
	return processResult{ack: true}
}

type builderFunc func(data json.RawMessage) (*models.Notification, error)

// builders maps the event types this consumer cares about to the
// notification each one produces. A nil notification means skip.
var builders = map[enums.OutboxEventType]builderFunc{
	enums.EventOrderStatusChanged:    buildOrderStatusNotification,
	enums.EventRefundProcessed:       buildRefundNotification,
	enums.EventExchangeApproved:      buildExchangeNotification,
	enums.EventExchangeRejected:      buildExchangeNotification,
	enums.EventExchangeCompleted:     buildExchangeNotification,
	enums.EventDeliveryOTPIssued:     buildDeliveryCodeNotification,
	enums.EventWalletCredited:        buildWalletNotification,
	enums.EventPickupFeePaid:         buildPickupFeeNotification,
	enums.EventNotificationRequested: buildStaleOrderNotification,
}

func buildOrderStatusNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.OrderStatusChangedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/orders/%s", payload.OrderID)
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeOrderUpdate,
		Title:      "Order update",
		Message:    fmt.Sprintf("Your order is now %s.", humanOrderStatus(payload.NewStatus)),
		Link:       &link,
	}, nil
}

func buildRefundNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.RefundProcessedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/orders/%s", payload.OrderID)
	title := "Refund credited"
	message := fmt.Sprintf("%s was credited to your wallet.", payload.Amount.StringFixed(2))
	if payload.Status == enums.RefundStatusFailed {
		title = "Refund delayed"
		message = "We hit a snag processing your refund and will retry shortly."
	}
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeRefund,
		Title:      title,
		Message:    message,
		Link:       &link,
	}, nil
}

func buildExchangeNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.ExchangeLifecycleEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/orders/%s/exchanges/%s", payload.OrderID, payload.ExchangeID)
	var title, message string
	switch payload.Status {
	case enums.ExchangeStatusApproved:
		title = "Exchange approved"
		message = "Your exchange was approved. The replacement is being prepared."
		if payload.AmountDue.IsPositive() {
			message = fmt.Sprintf("Your exchange was approved. %s is due on delivery.", payload.AmountDue.StringFixed(2))
		}
	case enums.ExchangeStatusRejected:
		title = "Exchange declined"
		message = "Your exchange request could not be accepted."
	case enums.ExchangeStatusDelivered:
		title = "Exchange completed"
		message = "Your replacement item has been delivered."
	default:
		return nil, nil
	}
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeExchange,
		Title:      title,
		Message:    message,
		Link:       &link,
	}, nil
}

func buildDeliveryCodeNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.DeliveryOTPIssuedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeDeliveryCode,
		Title:      "Courier on the way",
		Message:    "Your delivery is out. Share your confirmation code with the courier at hand-off.",
	}, nil
}

func buildWalletNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.WalletCreditedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := "/wallet"
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeWallet,
		Title:      "Wallet credited",
		Message:    fmt.Sprintf("%s added to your wallet. New balance: %s.", payload.Amount.StringFixed(2), payload.Balance.StringFixed(2)),
		Link:       &link,
	}, nil
}

func buildPickupFeeNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.PickupFeePaidEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeOrderUpdate,
		Title:      "Pickup scheduled",
		Message:    "Your express pickup fee was received. A courier will collect the return shortly.",
	}, nil
}

func buildStaleOrderNotification(data json.RawMessage) (*models.Notification, error) {
	var payload payloads.NotificationRequestedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	link := fmt.Sprintf("/orders/%s", payload.OrderID)
	return &models.Notification{
		CustomerID: payload.CustomerID,
		Type:       enums.NotificationTypeOrderUpdate,
		Title:      "Order still in queue",
		Message:    fmt.Sprintf("Order %s is taking longer than usual. We are on it and will update you soon.", payload.OrderNumber),
		Link:       &link,
	}, nil
}

func humanOrderStatus(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusOutForDelivery:
		return "out for delivery"
	case enums.OrderStatusPartiallyDelivered:
		return "partially delivered"
	default:
		return status.String()
	}
}
