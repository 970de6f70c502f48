package gopacketntp_test

import (
	"testing"
	"time"

	"github.com/google/gopacket"

	"example.com/ntp-responder/net/gopacketntp"
	"example.com/ntp-responder/net/ntp"
)

// The raw packet layer and the interpreting codec must agree on the wire
// layout.
func TestCrossValidateEncoding(t *testing.T) {
	referenceTime := time.Unix(10000, 500000000).UTC()
	receiveTime := time.Unix(10002, 250000000).UTC()

	msg := &ntp.Message{
		LeapIndicator:  ntp.LeapIndicatorInsertSecond,
		Version:        ntp.VersionMax,
		Mode:           ntp.ModeServer,
		Stratum:        2,
		Poll:           10,
		Precision:      -18,
		RootDelay:      0x00010203,
		RootDispersion: 0x04050607,
		ReferenceID:    &ntp.ReferenceID{Kind: ntp.ReferenceIDUnknownIPVersion, Value: 0xc0000201},
		ReferenceTime:  &referenceTime,
		ReceiveTime:    &receiveTime,
		TransmitTime:   time.Unix(10003, 0).UTC(),
	}

	var buf []byte
	ntp.EncodeMessage(&buf, msg)

	var p gopacketntp.Packet
	err := p.DecodeFromBytes(buf, gopacket.NilDecodeFeedback)
	if err != nil {
		t.Fatalf("failed to decode packet: %v", err)
	}

	if p.LeapIndicator() != uint8(msg.LeapIndicator) {
		t.Errorf("unexpected leap indicator: %v", p.LeapIndicator())
	}
	if p.Version() != uint8(msg.Version) {
		t.Errorf("unexpected version: %v", p.Version())
	}
	if p.Mode() != uint8(msg.Mode) {
		t.Errorf("unexpected mode: %v", p.Mode())
	}
	if p.Stratum != msg.Stratum {
		t.Errorf("unexpected stratum: %v", p.Stratum)
	}
	if p.Poll != msg.Poll {
		t.Errorf("unexpected poll: %v", p.Poll)
	}
	if p.Precision != msg.Precision {
		t.Errorf("unexpected precision: %v", p.Precision)
	}
	if p.RootDelay != uint32(msg.RootDelay) {
		t.Errorf("unexpected root delay: %#x", p.RootDelay)
	}
	if p.RootDispersion != msg.RootDispersion {
		t.Errorf("unexpected root dispersion: %#x", p.RootDispersion)
	}
	if p.ReferenceID != msg.ReferenceID.Value {
		t.Errorf("unexpected reference ID: %#x", p.ReferenceID)
	}
	if p.ReferenceTime.Seconds != 10000+2208988800 || p.ReferenceTime.Fraction != 1<<31 {
		t.Errorf("unexpected reference time: %+v", p.ReferenceTime)
	}
	if p.OriginTime.Seconds != 0 || p.OriginTime.Fraction != 0 {
		t.Errorf("absent origin time must serialize as zero: %+v", p.OriginTime)
	}
	if p.TransmitTime.Fraction != 0 {
		t.Errorf("unexpected transmit time fraction: %#x", p.TransmitTime.Fraction)
	}
}

func TestCrossValidateDecoding(t *testing.T) {
	p := gopacketntp.Packet{
		Stratum:      1,
		Poll:         6,
		Precision:    -20,
		ReferenceID:  0x47505300, // "GPS\0"
		TransmitTime: gopacketntp.Time64{Seconds: 3900000000, Fraction: 1 << 30},
	}
	p.SetLeapIndicator(0)
	p.SetVersion(4)
	p.SetMode(4) // server

	sb := gopacket.NewSerializeBuffer()
	err := p.SerializeTo(sb, gopacket.SerializeOptions{})
	if err != nil {
		t.Fatalf("failed to serialize packet: %v", err)
	}

	var msg ntp.Message
	err = ntp.DecodeMessage(&msg, sb.Bytes())
	if err != nil {
		t.Fatalf("failed to decode message: %v", err)
	}
	if msg.Mode != ntp.ModeServer || msg.Version != 4 {
		t.Errorf("unexpected flags: %+v", msg)
	}
	if msg.ReferenceID == nil ||
		msg.ReferenceID.Kind != ntp.ReferenceIDPrimary ||
		msg.ReferenceID.Source != "GPS" {
		t.Errorf("unexpected reference ID: %+v", msg.ReferenceID)
	}
	if msg.TransmitTime.Unix() != 3900000000-2208988800 {
		t.Errorf("unexpected transmit time: %v", msg.TransmitTime)
	}
	if msg.TransmitTime.Nanosecond() != 250000000 {
		t.Errorf("unexpected transmit time fraction: %v", msg.TransmitTime.Nanosecond())
	}
}
