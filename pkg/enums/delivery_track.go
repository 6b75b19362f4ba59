package enums

import "fmt"

// DeliveryTrack classifies the kind of trip a courier makes for an order:
// a normal forward delivery, a pickup of cancelled units, or an exchange
// drop-off-and-pickup. Tracks order courier queues by urgency.
type DeliveryTrack string

const (
	DeliveryTrackNormal         DeliveryTrack = "normal"
	DeliveryTrackCancelPickup   DeliveryTrack = "cancel_pickup"
	DeliveryTrackExchangePickup DeliveryTrack = "exchange_pickup"
)

var validDeliveryTracks = []DeliveryTrack{
	DeliveryTrackNormal,
	DeliveryTrackCancelPickup,
	DeliveryTrackExchangePickup,
}

// String implements fmt.Stringer.
func (d DeliveryTrack) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryTrack.
func (d DeliveryTrack) IsValid() bool {
	for _, candidate := range validDeliveryTracks {
		if candidate == d {
			return true
		}
	}
	return false
}

// Priority returns the queue ordering weight for the track. Lower sorts
// first: exchange pickups outrank cancel pickups, which outrank normal
// deliveries.
func (d DeliveryTrack) Priority() int {
	switch d {
	case DeliveryTrackExchangePickup:
		return 0
	case DeliveryTrackCancelPickup:
		return 1
	default:
		return 2
	}
}

// ParseDeliveryTrack converts raw input into a DeliveryTrack.
func ParseDeliveryTrack(value string) (DeliveryTrack, error) {
	for _, candidate := range validDeliveryTracks {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery track %q", value)
}
