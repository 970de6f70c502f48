package ntp

import (
	"math"
	"time"
)

const (
	// Seconds from the NTP epoch (1900) to the Unix epoch (1970),
	// including 17 leap days.
	epochOffset int64 = 2208988800

	nanosecondsPerSecond int64 = 1e9
)

// decodeTimestamp reads a 64-bit NTP timestamp (32-bit seconds since 1900,
// 32-bit binary fraction, both big-endian) from the first 8 bytes of b.
// The fraction is converted to nanoseconds by exact fixed-point scaling.
// The all-zero wire value is the "unspecified" sentinel and yields ok ==
// false rather than an instant.
func decodeTimestamp(b []byte) (t time.Time, ok bool) {
	_ = b[7]
	seconds := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	fraction := uint32(b[4])<<24 | uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7])

	if seconds == 0 && fraction == 0 {
		return time.Time{}, false
	}
	nsec := (uint64(fraction)*uint64(nanosecondsPerSecond) + 1<<31) >> 32
	return time.Unix(int64(seconds)-epochOffset, int64(nsec)).UTC(), true
}

// encodeTimestamp writes t to the first 8 bytes of b in the 64-bit NTP
// timestamp format, applying the exact inverse of the fraction scaling used
// by decodeTimestamp. The zero time encodes as the "unspecified" sentinel.
// Instants outside NTP era 0 cannot be represented and indicate a caller
// bug.
func encodeTimestamp(b []byte, t time.Time) {
	if t.IsZero() {
		encodeZeroTimestamp(b)
		return
	}
	seconds := t.Unix() + epochOffset
	if seconds < 0 || seconds > math.MaxUint32 {
		panic("unexpected NTP timestamp value")
	}
	fraction := (uint64(t.Nanosecond())<<32 + uint64(nanosecondsPerSecond)/2) /
		uint64(nanosecondsPerSecond)

	_ = b[7]
	b[0] = byte(seconds >> 24)
	b[1] = byte(seconds >> 16)
	b[2] = byte(seconds >> 8)
	b[3] = byte(seconds)
	b[4] = byte(fraction >> 24)
	b[5] = byte(fraction >> 16)
	b[6] = byte(fraction >> 8)
	b[7] = byte(fraction)
}

// encodeZeroTimestamp writes the "unspecified" sentinel used for absent
// timestamp fields.
func encodeZeroTimestamp(b []byte) {
	_ = b[7]
	for i := 0; i != 8; i++ {
		b[i] = 0
	}
}
