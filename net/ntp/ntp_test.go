package ntp_test

import (
	"errors"
	"testing"
	"time"

	"example.com/ntp-responder/net/ntp"
)

// requestFrame returns a minimal well-formed 48-byte client request.
func requestFrame() []byte {
	b := make([]byte, ntp.PacketLen)
	b[0] = byte(ntp.VersionMax)<<3 | byte(ntp.ModeClient)
	b[47] = 1 // nonzero transmit timestamp
	return b
}

func TestDecodeTooShort(t *testing.T) {
	for n := 0; n < ntp.PacketLen; n++ {
		var msg ntp.Message
		err := ntp.DecodeMessage(&msg, make([]byte, n))
		if !errors.Is(err, ntp.ErrPacketTooShort) {
			t.Errorf("length %d: expected ErrPacketTooShort, got %v", n, err)
		}
	}
}

func TestDecodeFlags(t *testing.T) {
	b := requestFrame()
	b[0] = 0b11_100_101
	b[1] = 2 // secondary stratum, numeric reference ID

	var msg ntp.Message
	err := ntp.DecodeMessage(&msg, b)
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if msg.LeapIndicator != ntp.LeapIndicatorUnknown {
		t.Errorf("unexpected leap indicator: %v", msg.LeapIndicator)
	}
	if msg.Version != 4 {
		t.Errorf("unexpected version: %v", msg.Version)
	}
	if msg.Mode != ntp.ModeBroadcast {
		t.Errorf("unexpected mode: %v", msg.Mode)
	}
}

func TestDecodeInvalidVersion(t *testing.T) {
	for _, vn := range []uint8{0, 5, 6, 7} {
		b := requestFrame()
		b[0] = vn<<3 | byte(ntp.ModeClient)

		var msg ntp.Message
		err := ntp.DecodeMessage(&msg, b)
		var fieldErr *ntp.FieldError
		if !errors.As(err, &fieldErr) {
			t.Errorf("version %d: expected field error, got %v", vn, err)
		}
	}
}

func TestDecodeVersionIndependentOfNeighbors(t *testing.T) {
	// An invalid version must be rejected regardless of the surrounding
	// leap indicator and mode bits.
	for li := uint8(0); li < 4; li++ {
		for mode := uint8(0); mode < 8; mode++ {
			b := requestFrame()
			b[0] = li<<6 | 7<<3 | mode

			var msg ntp.Message
			err := ntp.DecodeMessage(&msg, b)
			if err == nil {
				t.Errorf("li %d mode %d: version 7 must not decode", li, mode)
			}
		}
	}
}

func TestDecodeFailureLeavesMessageUnmodified(t *testing.T) {
	var msg ntp.Message
	err := ntp.DecodeMessage(&msg, requestFrame())
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	before := msg

	bad := requestFrame()
	bad[40], bad[47] = 0, 0 // zero transmit timestamp
	err = ntp.DecodeMessage(&msg, bad)
	if !errors.Is(err, ntp.ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
	if msg != before {
		t.Error("failed decode must not modify the message")
	}
}

func TestDecodeZeroTransmitTimestamp(t *testing.T) {
	b := requestFrame()
	b[47] = 0

	var msg ntp.Message
	err := ntp.DecodeMessage(&msg, b)
	if !errors.Is(err, ntp.ErrInvalidTimestamp) {
		t.Errorf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestEncodeLength(t *testing.T) {
	msg := &ntp.Message{
		Version:      ntp.VersionMax,
		Mode:         ntp.ModeClient,
		TransmitTime: time.Now().UTC(),
	}

	var buf []byte
	ntp.EncodeMessage(&buf, msg)
	if len(buf) != ntp.PacketLen {
		t.Errorf("unexpected length for nil buffer: %d", len(buf))
	}

	buf = make([]byte, 7)
	ntp.EncodeMessage(&buf, msg)
	if len(buf) != ntp.PacketLen {
		t.Errorf("unexpected length for short buffer: %d", len(buf))
	}

	big := make([]byte, 2048)
	buf = big
	ntp.EncodeMessage(&buf, msg)
	if len(buf) != ntp.PacketLen {
		t.Errorf("unexpected length for large buffer: %d", len(buf))
	}
	if &buf[0] != &big[0] {
		t.Error("encoding must reuse a buffer with sufficient capacity")
	}
}

func TestMessageRoundTrip(t *testing.T) {
	referenceTime := time.Unix(10000, 500000000).UTC()
	originTime := time.Unix(10001, 250000000).UTC()
	receiveTime := time.Unix(10002, 125000000).UTC()

	msg := &ntp.Message{
		LeapIndicator:  ntp.LeapIndicatorNoWarning,
		Version:        ntp.VersionMax,
		Mode:           ntp.ModeServer,
		Stratum:        1,
		Poll:           6,
		Precision:      -20,
		RootDelay:      -123456,
		RootDispersion: 654321,
		ReferenceID:    &ntp.ReferenceID{Kind: ntp.ReferenceIDPrimary, Source: "GPS"},
		ReferenceTime:  &referenceTime,
		OriginTime:     &originTime,
		ReceiveTime:    &receiveTime,
		TransmitTime:   time.Unix(10003, 62500000).UTC(),
	}

	var buf []byte
	ntp.EncodeMessage(&buf, msg)

	var decoded ntp.Message
	err := ntp.DecodeMessage(&decoded, buf)
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}

	if decoded.LeapIndicator != msg.LeapIndicator ||
		decoded.Version != msg.Version ||
		decoded.Mode != msg.Mode ||
		decoded.Stratum != msg.Stratum ||
		decoded.Poll != msg.Poll ||
		decoded.Precision != msg.Precision ||
		decoded.RootDelay != msg.RootDelay ||
		decoded.RootDispersion != msg.RootDispersion {
		t.Errorf("header fields do not round trip: %+v", decoded)
	}
	if decoded.ReferenceID == nil ||
		decoded.ReferenceID.Kind != ntp.ReferenceIDPrimary ||
		decoded.ReferenceID.Source != "GPS" {
		t.Errorf("reference ID does not round trip: %+v", decoded.ReferenceID)
	}
	if decoded.ReferenceTime == nil || !decoded.ReferenceTime.Equal(referenceTime) {
		t.Errorf("reference time does not round trip: %v", decoded.ReferenceTime)
	}
	if decoded.OriginTime == nil || !decoded.OriginTime.Equal(originTime) {
		t.Errorf("origin time does not round trip: %v", decoded.OriginTime)
	}
	if decoded.ReceiveTime == nil || !decoded.ReceiveTime.Equal(receiveTime) {
		t.Errorf("receive time does not round trip: %v", decoded.ReceiveTime)
	}
	if !decoded.TransmitTime.Equal(msg.TransmitTime) {
		t.Errorf("transmit time does not round trip: %v", decoded.TransmitTime)
	}
}

func TestMessageRoundTripAbsentTimestamps(t *testing.T) {
	msg := &ntp.Message{
		Version:      ntp.VersionMax,
		Mode:         ntp.ModeClient,
		TransmitTime: time.Unix(42, 0).UTC(),
	}

	var buf []byte
	ntp.EncodeMessage(&buf, msg)

	var decoded ntp.Message
	err := ntp.DecodeMessage(&decoded, buf)
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if decoded.ReferenceTime != nil || decoded.OriginTime != nil || decoded.ReceiveTime != nil {
		t.Error("absent timestamps must decode as nil")
	}
	if decoded.ReferenceID != nil {
		t.Errorf("client request must decode with nil reference ID: %+v", decoded.ReferenceID)
	}
}

func TestLeapIndicatorMapping(t *testing.T) {
	for x := uint8(0); x < 4; x++ {
		li, err := ntp.DecodeLeapIndicator(x)
		if err != nil {
			t.Errorf("leap indicator %d must decode: %v", x, err)
		}
		if uint8(li) != x {
			t.Errorf("unexpected leap indicator: %v", li)
		}
	}
	_, err := ntp.DecodeLeapIndicator(4)
	if err == nil {
		t.Error("leap indicator 4 must not decode")
	}
}

func TestModeMapping(t *testing.T) {
	for x := uint8(0); x < 8; x++ {
		mode, err := ntp.DecodeMode(x)
		if err != nil {
			t.Errorf("mode %d must decode: %v", x, err)
		}
		if uint8(mode) != x {
			t.Errorf("unexpected mode: %v", mode)
		}
	}
	_, err := ntp.DecodeMode(8)
	if err == nil {
		t.Error("mode 8 must not decode")
	}
}

func TestClockOffset(t *testing.T) {
	t0 := time.Unix(0, 0)
	t1 := t0.Add(10 * time.Millisecond)
	t2 := t1.Add(1 * time.Millisecond)
	t3 := t0.Add(5 * time.Millisecond)

	offset := ntp.ClockOffset(t0, t1, t2, t3)
	if offset != 8*time.Millisecond {
		t.Errorf("unexpected clock offset: %v", offset)
	}

	delay := ntp.RoundTripDelay(t0, t1, t2, t3)
	if delay != 4*time.Millisecond {
		t.Errorf("unexpected round trip delay: %v", delay)
	}
}
