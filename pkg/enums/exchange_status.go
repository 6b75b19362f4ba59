package enums

import "fmt"

// ExchangeStatus tracks a size/color exchange request. Once an exchange is
// assigned to a courier it advances in lock-step with the courier's
// out-for-delivery and delivered transitions on the parent order.
type ExchangeStatus string

const (
	ExchangeStatusInitiated      ExchangeStatus = "initiated"
	ExchangeStatusApproved       ExchangeStatus = "approved"
	ExchangeStatusAssigned       ExchangeStatus = "assigned"
	ExchangeStatusOutForDelivery ExchangeStatus = "out_for_delivery"
	ExchangeStatusDelivered      ExchangeStatus = "delivered"
	ExchangeStatusRejected       ExchangeStatus = "rejected"
)

var validExchangeStatuses = []ExchangeStatus{
	ExchangeStatusInitiated,
	ExchangeStatusApproved,
	ExchangeStatusAssigned,
	ExchangeStatusOutForDelivery,
	ExchangeStatusDelivered,
	ExchangeStatusRejected,
}

var exchangeTransitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeStatusInitiated:      {ExchangeStatusApproved, ExchangeStatusRejected},
	ExchangeStatusApproved:       {ExchangeStatusAssigned},
	ExchangeStatusAssigned:       {ExchangeStatusOutForDelivery},
	ExchangeStatusOutForDelivery: {ExchangeStatusDelivered},
}

// String implements fmt.Stringer.
func (e ExchangeStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExchangeStatus.
func (e ExchangeStatus) IsValid() bool {
	for _, candidate := range validExchangeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the move from e to next is legal.
func (e ExchangeStatus) CanTransitionTo(next ExchangeStatus) bool {
	for _, candidate := range exchangeTransitions[e] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseExchangeStatus converts raw input into an ExchangeStatus.
func ParseExchangeStatus(value string) (ExchangeStatus, error) {
	for _, candidate := range validExchangeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exchange status %q", value)
}
