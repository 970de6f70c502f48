package ntp

import (
	"time"
)

const (
	ServerPort = 123

	PacketLen = 48
)

// LeapIndicator occupies bits 7-6 of the flags byte. All four values are
// valid.
type LeapIndicator uint8

const (
	LeapIndicatorNoWarning LeapIndicator = iota
	LeapIndicatorInsertSecond
	LeapIndicatorDeleteSecond
	LeapIndicatorUnknown
)

// Version occupies bits 5-3 of the flags byte. Only values 1-4 are valid.
type Version uint8

const (
	VersionMin Version = 1
	VersionMax Version = 4
)

// Mode occupies bits 2-0 of the flags byte. All eight values map to a named
// variant; two are reserved but not rejected.
type Mode uint8

const (
	ModeReserved0 Mode = iota
	ModeSymmetricActive
	ModeSymmetricPassive
	ModeClient
	ModeServer
	ModeBroadcast
	ModeControl
	ModeReserved7
)

// DecodeLeapIndicator maps the 2-bit leap indicator field. The mapping is
// total over [0, 4).
func DecodeLeapIndicator(x uint8) (LeapIndicator, error) {
	if x > uint8(LeapIndicatorUnknown) {
		return 0, &FieldError{Field: "leap indicator"}
	}
	return LeapIndicator(x), nil
}

// DecodeVersion maps the 3-bit version field. Values 0 and 5-7 are outside
// the protocol's valid range.
func DecodeVersion(x uint8) (Version, error) {
	if x < uint8(VersionMin) || uint8(VersionMax) < x {
		return 0, &FieldError{Field: "version"}
	}
	return Version(x), nil
}

// DecodeMode maps the 3-bit mode field. The mapping is total over [0, 8).
func DecodeMode(x uint8) (Mode, error) {
	if x > uint8(ModeReserved7) {
		return 0, &FieldError{Field: "mode"}
	}
	return Mode(x), nil
}

// Message is the decoded form of one 48-byte NTP frame. It is built either
// by DecodeMessage from a received datagram or by NewServerResponseMessage,
// and is not mutated afterwards.
//
// ReferenceID is nil for client requests. The reference, origin, and receive
// timestamps are nil when the wire field held the zero sentinel or did not
// parse; the transmit timestamp is mandatory.
type Message struct {
	LeapIndicator  LeapIndicator
	Version        Version
	Mode           Mode
	Stratum        uint8
	Poll           uint8
	Precision      int8
	RootDelay      int32
	RootDispersion uint32
	ReferenceID    *ReferenceID
	ReferenceTime  *time.Time
	OriginTime     *time.Time
	ReceiveTime    *time.Time
	TransmitTime   time.Time
}

// DecodeMessage decodes one datagram payload into msg. On failure msg is
// left unmodified; no partial message is ever produced.
func DecodeMessage(msg *Message, b []byte) error {
	if len(b) < PacketLen {
		return ErrPacketTooShort
	}

	_ = b[47]
	li, err := DecodeLeapIndicator(b[0] >> 6)
	if err != nil {
		return err
	}
	vn, err := DecodeVersion((b[0] >> 3) & 0b0000_0111)
	if err != nil {
		return err
	}
	mode, err := DecodeMode(b[0] & 0b0000_0111)
	if err != nil {
		return err
	}

	var m Message
	m.LeapIndicator = li
	m.Version = vn
	m.Mode = mode
	m.Stratum = b[1]
	m.Poll = b[2]
	m.Precision = int8(b[3])
	m.RootDelay = int32(uint32(b[4])<<24 | uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7]))
	m.RootDispersion = uint32(b[8])<<24 | uint32(b[9])<<16 | uint32(b[10])<<8 | uint32(b[11])

	m.ReferenceID, err = decodeReferenceID(b[12:16], m.Mode, m.Stratum)
	if err != nil {
		return err
	}

	if t, ok := decodeTimestamp(b[16:24]); ok {
		m.ReferenceTime = &t
	}
	if t, ok := decodeTimestamp(b[24:32]); ok {
		m.OriginTime = &t
	}
	if t, ok := decodeTimestamp(b[32:40]); ok {
		m.ReceiveTime = &t
	}
	t, ok := decodeTimestamp(b[40:48])
	if !ok {
		return ErrInvalidTimestamp
	}
	m.TransmitTime = t

	*msg = m
	return nil
}

// EncodeMessage encodes msg into b, growing b as needed. The result is
// always exactly PacketLen bytes; absent optional fields are written as
// their all-zero sentinels.
func EncodeMessage(b *[]byte, msg *Message) {
	if cap(*b) < PacketLen {
		*b = make([]byte, PacketLen)
	} else {
		*b = (*b)[:PacketLen]
	}

	buf := *b
	_ = buf[47]
	buf[0] = byte(msg.LeapIndicator)<<6 | byte(msg.Version)<<3 | byte(msg.Mode)
	buf[1] = msg.Stratum
	buf[2] = msg.Poll
	buf[3] = byte(msg.Precision)
	buf[4] = byte(uint32(msg.RootDelay) >> 24)
	buf[5] = byte(uint32(msg.RootDelay) >> 16)
	buf[6] = byte(uint32(msg.RootDelay) >> 8)
	buf[7] = byte(uint32(msg.RootDelay))
	buf[8] = byte(msg.RootDispersion >> 24)
	buf[9] = byte(msg.RootDispersion >> 16)
	buf[10] = byte(msg.RootDispersion >> 8)
	buf[11] = byte(msg.RootDispersion)
	encodeReferenceID(buf[12:16], msg.ReferenceID)
	if msg.ReferenceTime != nil {
		encodeTimestamp(buf[16:24], *msg.ReferenceTime)
	} else {
		encodeZeroTimestamp(buf[16:24])
	}
	if msg.OriginTime != nil {
		encodeTimestamp(buf[24:32], *msg.OriginTime)
	} else {
		encodeZeroTimestamp(buf[24:32])
	}
	if msg.ReceiveTime != nil {
		encodeTimestamp(buf[32:40], *msg.ReceiveTime)
	} else {
		encodeZeroTimestamp(buf[32:40])
	}
	encodeTimestamp(buf[40:48], msg.TransmitTime)
}

// ClockOffset returns the offset of the server clock relative to the client
// clock from one request/response exchange: t0/t3 are the client's transmit
// and receive instants, t1/t2 the server's receive and transmit instants.
func ClockOffset(t0, t1, t2, t3 time.Time) time.Duration {
	return (t1.Sub(t0) + t2.Sub(t3)) / 2
}

// RoundTripDelay returns the network round-trip portion of one exchange.
func RoundTripDelay(t0, t1, t2, t3 time.Time) time.Duration {
	return t3.Sub(t0) - t2.Sub(t1)
}
