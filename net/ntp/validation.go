package ntp

import (
	"errors"
	"time"
)

var (
	errUnexpectedRequest  = errors.New("unexpected request structure")
	errUnexpectedResponse = errors.New("unexpected response structure")
)

// ValidateRequest checks that req is plausible as a client request beyond
// plain wire validity.
func ValidateRequest(req *Message) error {
	// Based on Ntimed by Poul-Henning Kamp, https://github.com/bsdphk/Ntimed

	li := req.LeapIndicator
	if li != LeapIndicatorNoWarning && li != LeapIndicatorUnknown {
		return errUnexpectedRequest
	}
	if req.Version == 1 && req.Mode != ModeReserved0 ||
		req.Version != 1 && req.Mode != ModeClient {
		return errUnexpectedRequest
	}
	return nil
}

// ValidateResponseMetadata checks that resp is plausible as a server reply.
func ValidateResponseMetadata(resp *Message) error {
	if resp.LeapIndicator == LeapIndicatorUnknown {
		return errUnexpectedResponse
	}
	if resp.Version != 3 && resp.Version != 4 {
		return errUnexpectedResponse
	}
	if resp.Mode != ModeServer {
		return errUnexpectedResponse
	}
	if resp.Stratum == 0 || resp.Stratum > 15 {
		return errUnexpectedResponse
	}
	return nil
}

// ValidateResponseTimestamps checks the exchange timestamps of a completed
// round trip: t0/t3 are local transmit/receive instants, t1/t2 the server's
// receive/transmit instants.
func ValidateResponseTimestamps(t0, t1, t2, t3 time.Time) error {
	if t3.Sub(t0) < 0 {
		panic("unexpected local clock behavior")
	}
	if t2.Sub(t1) < 0 {
		return errUnexpectedResponse
	}
	return nil
}
