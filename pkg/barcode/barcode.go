package barcode

import (
	"context"
	"errors"
	"strings"
)

// Decoder extracts the encoded value from a scanned label image. Decoding
// itself happens in an external capability; the service only compares the
// decoded value against what it expects.
type Decoder interface {
	Decode(ctx context.Context, image []byte) (string, error)
}

var ErrUnreadable = errors.New("barcode: unreadable image")

// StaticDecoder returns a fixed value for every image. Used by handheld
// scanner integrations that decode on-device and submit the raw value.
type StaticDecoder struct {
	Value string
}

// Decode implements Decoder.
func (s StaticDecoder) Decode(_ context.Context, _ []byte) (string, error) {
	if strings.TrimSpace(s.Value) == "" {
		return "", ErrUnreadable
	}
	return s.Value, nil
}

// Matches reports whether a decoded value identifies the expected order
// number, ignoring case and surrounding whitespace.
func Matches(decoded, expected string) bool {
	return strings.EqualFold(strings.TrimSpace(decoded), strings.TrimSpace(expected))
}
