package server

import (
	"time"

	"example.com/ntp-responder/core/timebase"

	"example.com/ntp-responder/net/ntp"
)

// ClockSource describes the reference clock the responder claims to serve
// time from. It is assembled once at startup from the service configuration
// and shared read-only by all listeners.
type ClockSource struct {
	Stratum        uint8
	ReferenceID    *ntp.ReferenceID
	Poll           uint8
	Precision      int8
	RootDelay      int32
	RootDispersion uint32
}

// handleRequest builds the reply for one accepted request. The request's
// version is echoed, its transmit timestamp becomes the reply's origin
// timestamp, and rxt becomes the receive timestamp. The transmit timestamp
// is taken from the local clock at build time.
func handleRequest(req *ntp.Message, src *ClockSource, rxt time.Time) *ntp.Message {
	txt := timebase.Now()
	originTime := req.TransmitTime
	resp := &ntp.ServerResponse{
		LeapIndicator:  ntp.LeapIndicatorNoWarning,
		Version:        req.Version,
		Stratum:        src.Stratum,
		Poll:           src.Poll,
		Precision:      src.Precision,
		RootDelay:      src.RootDelay,
		RootDispersion: src.RootDispersion,
		ReferenceID:    src.ReferenceID,
		ReferenceTime:  txt,
		OriginTime:     &originTime,
		ReceiveTime:    rxt,
	}
	return ntp.NewServerResponseMessage(resp, txt)
}
