package enums

import "fmt"

// ReturnDeliveryStatus tracks how cancelled units travel back to the
// warehouse. Standard pickups are scheduled for free; express pickups are
// blocked on a flat fee until the customer pays it.
type ReturnDeliveryStatus string

const (
	ReturnDeliveryStatusNone           ReturnDeliveryStatus = "none"
	ReturnDeliveryStatusScheduled      ReturnDeliveryStatus = "scheduled"
	ReturnDeliveryStatusPendingPayment ReturnDeliveryStatus = "pending_payment"
	ReturnDeliveryStatusExpressPaid    ReturnDeliveryStatus = "express_paid"
	ReturnDeliveryStatusOutForPickup   ReturnDeliveryStatus = "out_for_pickup"
	ReturnDeliveryStatusReturned       ReturnDeliveryStatus = "returned"
)

var validReturnDeliveryStatuses = []ReturnDeliveryStatus{
	ReturnDeliveryStatusNone,
	ReturnDeliveryStatusScheduled,
	ReturnDeliveryStatusPendingPayment,
	ReturnDeliveryStatusExpressPaid,
	ReturnDeliveryStatusOutForPickup,
	ReturnDeliveryStatusReturned,
}

// String implements fmt.Stringer.
func (r ReturnDeliveryStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReturnDeliveryStatus.
func (r ReturnDeliveryStatus) IsValid() bool {
	for _, candidate := range validReturnDeliveryStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReturnDeliveryStatus converts raw input into a ReturnDeliveryStatus.
func ParseReturnDeliveryStatus(value string) (ReturnDeliveryStatus, error) {
	for _, candidate := range validReturnDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid return delivery status %q", value)
}
