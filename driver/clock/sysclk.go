package clock

import (
	"time"

	"example.com/ntp-responder/base/timebase"
)

// SystemClock reads the operating system clock. The responder never steps
// or disciplines it.
type SystemClock struct{}

var _ timebase.LocalClock = (*SystemClock)(nil)

func (c *SystemClock) Epoch() uint64 {
	return 0
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}
