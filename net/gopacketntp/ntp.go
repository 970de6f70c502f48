package gopacketntp

import (
	"encoding/binary"
	"errors"

	"github.com/google/gopacket"
)

const (
	ServerPort = 123

	PacketLen = 48
)

var LayerTypeNTP = gopacket.RegisterLayerType(
	1212,
	gopacket.LayerTypeMetadata{
		Name:    "NTP",
		Decoder: gopacket.DecodeFunc(decodeNTP),
	},
)

// BaseLayer is a convenience struct which implements the LayerData and
// LayerPayload functions of the Layer interface.
// Copy-pasted from gopacket/layers (we avoid importing this due its massive size)
type BaseLayer struct {
	// Contents is the set of bytes that make up this layer.  IE: for an
	// Ethernet packet, this would be the set of bytes making up the
	// Ethernet frame.
	Contents []byte
	// Payload is the set of bytes contained by (but not part of) this
	// Layer.  Again, to take Ethernet as an example, this would be the
	// set of bytes encapsulated by the Ethernet protocol.
	Payload []byte
}

func (b *BaseLayer) LayerContents() []byte { return b.Contents }

func (b *BaseLayer) LayerPayload() []byte { return b.Payload }

// Time64 is a raw 64-bit NTP timestamp, seconds and binary fraction,
// uninterpreted.
type Time64 struct {
	Seconds  uint32
	Fraction uint32
}

// Packet is the raw view of one NTP frame for packet analysis. All fields
// hold the uninterpreted wire values; no vocabulary or stratum rules are
// applied.
type Packet struct {
	BaseLayer
	LVM            uint8
	Stratum        uint8
	Poll           uint8
	Precision      int8
	RootDelay      uint32
	RootDispersion uint32
	ReferenceID    uint32
	ReferenceTime  Time64
	OriginTime     Time64
	ReceiveTime    Time64
	TransmitTime   Time64
}

var (
	errUnexpectedPacketSize = errors.New("unexpected packet size")
)

func (p *Packet) LayerType() gopacket.LayerType {
	return LayerTypeNTP
}

func decodeNTP(data []byte, p gopacket.PacketBuilder) error {
	d := &Packet{}
	err := d.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}

	p.AddLayer(d)
	p.SetApplicationLayer(d)

	return nil
}

func (p *Packet) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	data, err := b.PrependBytes(PacketLen)
	if err != nil {
		return err
	}

	data[0] = byte(p.LVM)
	data[1] = byte(p.Stratum)
	data[2] = byte(p.Poll)
	data[3] = byte(p.Precision)
	binary.BigEndian.PutUint32(data[4:], p.RootDelay)
	binary.BigEndian.PutUint32(data[8:], p.RootDispersion)
	binary.BigEndian.PutUint32(data[12:], p.ReferenceID)
	binary.BigEndian.PutUint32(data[16:], p.ReferenceTime.Seconds)
	binary.BigEndian.PutUint32(data[20:], p.ReferenceTime.Fraction)
	binary.BigEndian.PutUint32(data[24:], p.OriginTime.Seconds)
	binary.BigEndian.PutUint32(data[28:], p.OriginTime.Fraction)
	binary.BigEndian.PutUint32(data[32:], p.ReceiveTime.Seconds)
	binary.BigEndian.PutUint32(data[36:], p.ReceiveTime.Fraction)
	binary.BigEndian.PutUint32(data[40:], p.TransmitTime.Seconds)
	binary.BigEndian.PutUint32(data[44:], p.TransmitTime.Fraction)

	return nil
}

func (p *Packet) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < PacketLen {
		df.SetTruncated()
		return errUnexpectedPacketSize
	}

	p.BaseLayer = BaseLayer{Contents: data}

	p.LVM = uint8(data[0])
	p.Stratum = uint8(data[1])
	p.Poll = uint8(data[2])
	p.Precision = int8(data[3])
	p.RootDelay = binary.BigEndian.Uint32(data[4:])
	p.RootDispersion = binary.BigEndian.Uint32(data[8:])
	p.ReferenceID = binary.BigEndian.Uint32(data[12:])
	p.ReferenceTime.Seconds = binary.BigEndian.Uint32(data[16:])
	p.ReferenceTime.Fraction = binary.BigEndian.Uint32(data[20:])
	p.OriginTime.Seconds = binary.BigEndian.Uint32(data[24:])
	p.OriginTime.Fraction = binary.BigEndian.Uint32(data[28:])
	p.ReceiveTime.Seconds = binary.BigEndian.Uint32(data[32:])
	p.ReceiveTime.Fraction = binary.BigEndian.Uint32(data[36:])
	p.TransmitTime.Seconds = binary.BigEndian.Uint32(data[40:])
	p.TransmitTime.Fraction = binary.BigEndian.Uint32(data[44:])

	return nil
}

func (p *Packet) LeapIndicator() uint8 {
	return (p.LVM >> 6) & 0b0000_0011
}

func (p *Packet) SetLeapIndicator(l uint8) {
	if l&0b0000_0011 != l {
		panic("unexpected NTP leap indicator value")
	}
	p.LVM = (p.LVM & 0b0011_1111) | (l << 6)
}

func (p *Packet) Version() uint8 {
	return (p.LVM >> 3) & 0b0000_0111
}

func (p *Packet) SetVersion(v uint8) {
	if v&0b0000_0111 != v {
		panic("unexpected NTP version value")
	}
	p.LVM = (p.LVM & 0b_1100_0111) | (v << 3)
}

func (p *Packet) Mode() uint8 {
	return p.LVM & 0b0000_0111
}

func (p *Packet) SetMode(m uint8) {
	if m&0b0000_0111 != m {
		panic("unexpected NTP mode value")
	}
	p.LVM = (p.LVM & 0b1111_1000) | m
}

func (p *Packet) CanDecode() gopacket.LayerClass {
	return LayerTypeNTP
}

func (p *Packet) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypeZero
}

func (p *Packet) Payload() []byte {
	return nil
}
