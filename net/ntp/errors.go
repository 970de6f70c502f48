package ntp

import (
	"errors"
)

var (
	// ErrPacketTooShort is returned when fewer than PacketLen bytes are
	// available to decode.
	ErrPacketTooShort = errors.New("unexpected packet size")

	// ErrInvalidKissCode is returned when a stratum 0 packet carries a
	// reference identifier outside the Kiss-of-Death vocabulary.
	ErrInvalidKissCode = errors.New("invalid kiss-of-death code")

	// ErrInvalidTimestamp is returned when the transmit timestamp field is
	// the zero sentinel or cannot be represented.
	ErrInvalidTimestamp = errors.New("invalid transmit timestamp")
)

// A FieldError reports an enumeration byte or bit pattern outside the valid
// set for the named field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "invalid value in field " + e.Field
}
