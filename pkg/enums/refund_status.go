package enums

import "fmt"

// RefundStatus tracks the refund sub-lifecycle of a cancelled order item.
type RefundStatus string

const (
	RefundStatusNone      RefundStatus = "none"
	RefundStatusRequested RefundStatus = "requested"
	RefundStatusInitiated RefundStatus = "initiated"
	RefundStatusCompleted RefundStatus = "completed"
	RefundStatusFailed    RefundStatus = "failed"
)

var validRefundStatuses = []RefundStatus{
	RefundStatusNone,
	RefundStatusRequested,
	RefundStatusInitiated,
	RefundStatusCompleted,
	RefundStatusFailed,
}

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundStatusNone:      {RefundStatusRequested},
	RefundStatusRequested: {RefundStatusInitiated},
	RefundStatusInitiated: {RefundStatusCompleted, RefundStatusFailed},
	RefundStatusFailed:    {RefundStatusInitiated},
}

// String implements fmt.Stringer.
func (r RefundStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RefundStatus.
func (r RefundStatus) IsValid() bool {
	for _, candidate := range validRefundStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the move from r to next is legal.
func (r RefundStatus) CanTransitionTo(next RefundStatus) bool {
	for _, candidate := range refundTransitions[r] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseRefundStatus converts raw input into a RefundStatus.
func ParseRefundStatus(value string) (RefundStatus, error) {
	for _, candidate := range validRefundStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid refund status %q", value)
}
