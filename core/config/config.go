package config

// DSCP is the Differentiated Services Codepoint value to be used by senders
// of time synchronization packets. Valid values must be in range [0, 63].
const DSCP = 46

// Defaults applied when the service configuration omits the corresponding
// clock source fields.
const (
	DefaultStratum         = 1
	DefaultReferenceSource = "GPS"
	DefaultPrecision       = -20 // log2 seconds, roughly 1 microsecond
	DefaultRootDispersion  = 10  // 16.16 fixed point
)
