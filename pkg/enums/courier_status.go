package enums

import "fmt"

// CourierStatus tracks courier onboarding. Only approved couriers may
// receive assignments.
type CourierStatus string

const (
	CourierStatusPending   CourierStatus = "pending"
	CourierStatusApproved  CourierStatus = "approved"
	CourierStatusSuspended CourierStatus = "suspended"
	CourierStatusRejected  CourierStatus = "rejected"
)

var validCourierStatuses = []CourierStatus{
	CourierStatusPending,
	CourierStatusApproved,
	CourierStatusSuspended,
	CourierStatusRejected,
}

// String implements fmt.Stringer.
func (c CourierStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CourierStatus.
func (c CourierStatus) IsValid() bool {
	for _, candidate := range validCourierStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCourierStatus converts raw input into a CourierStatus.
func ParseCourierStatus(value string) (CourierStatus, error) {
	for _, candidate := range validCourierStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid courier status %q", value)
}
