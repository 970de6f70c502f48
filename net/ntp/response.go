package ntp

import (
	"time"
)

// ServerResponse carries the caller-assembled reference clock data and
// exchange timestamps from which a server reply is built. OriginTime is
// normally the transmit timestamp of the request being answered.
type ServerResponse struct {
	LeapIndicator  LeapIndicator
	Version        Version
	Stratum        uint8
	Poll           uint8
	Precision      int8
	RootDelay      int32
	RootDispersion uint32
	ReferenceID    *ReferenceID
	ReferenceTime  time.Time
	OriginTime     *time.Time
	ReceiveTime    time.Time
	TransmitTime   *time.Time
}

// NewServerResponseMessage builds the reply message for resp. The mode is
// always ModeServer; a responder never echoes the mode of the request. If
// resp carries no transmit timestamp, now is used.
func NewServerResponseMessage(resp *ServerResponse, now time.Time) *Message {
	referenceTime := resp.ReferenceTime
	receiveTime := resp.ReceiveTime
	transmitTime := now
	if resp.TransmitTime != nil {
		transmitTime = *resp.TransmitTime
	}
	return &Message{
		LeapIndicator:  resp.LeapIndicator,
		Version:        resp.Version,
		Mode:           ModeServer,
		Stratum:        resp.Stratum,
		Poll:           resp.Poll,
		Precision:      resp.Precision,
		RootDelay:      resp.RootDelay,
		RootDispersion: resp.RootDispersion,
		ReferenceID:    resp.ReferenceID,
		ReferenceTime:  &referenceTime,
		OriginTime:     resp.OriginTime,
		ReceiveTime:    &receiveTime,
		TransmitTime:   transmitTime,
	}
}
