package enums

import "fmt"

// NotificationType buckets customer notifications by the flow that
// produced them.
type NotificationType string

const (
	NotificationTypeOrderUpdate  NotificationType = "order_update"
	NotificationTypeRefund       NotificationType = "refund"
	NotificationTypeExchange     NotificationType = "exchange"
	NotificationTypeDeliveryCode NotificationType = "delivery_code"
	NotificationTypeWallet       NotificationType = "wallet"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderUpdate,
	NotificationTypeRefund,
	NotificationTypeExchange,
	NotificationTypeDeliveryCode,
	NotificationTypeWallet,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
