package ntp

// StratumClass partitions the stratum byte into the four ranges that drive
// reference identifier interpretation.
type StratumClass uint8

const (
	StratumClassKissODeath StratumClass = iota
	StratumClassPrimary
	StratumClassSecondary
	StratumClassReserved
)

// ClassifyStratum maps a raw stratum byte to its class. The mapping is
// total: every byte value lands in a class.
func ClassifyStratum(stratum uint8) StratumClass {
	switch {
	case stratum == 0:
		return StratumClassKissODeath
	case stratum == 1:
		return StratumClassPrimary
	case stratum <= 15:
		return StratumClassSecondary
	default:
		return StratumClassReserved
	}
}

// ReferenceIDKind selects the interpretation of a decoded reference
// identifier. The kind is fully determined by the stratum class, never by
// packet content.
type ReferenceIDKind uint8

const (
	// ReferenceIDKissODeath carries a code from the Kiss-of-Death
	// vocabulary (stratum 0).
	ReferenceIDKissODeath ReferenceIDKind = iota
	// ReferenceIDPrimary carries a reference clock source name (stratum 1),
	// or no name if the wire bytes matched none.
	ReferenceIDPrimary
	// ReferenceIDUnknownIPVersion carries the raw 32-bit value of a
	// secondary server identifier (stratum 2-15). Whether it embeds an IPv4
	// address or an IPv6/OSI hash is not resolved here.
	ReferenceIDUnknownIPVersion
	// ReferenceIDReservedStratum carries the raw 32-bit value found in a
	// packet with a reserved stratum (16-255).
	ReferenceIDReservedStratum
)

// ReferenceID is the decoded form of the 4-byte reference identifier field.
// Code is set only for ReferenceIDKissODeath, Source only for
// ReferenceIDPrimary (empty if unrecognized), Value only for the numeric
// kinds.
type ReferenceID struct {
	Kind   ReferenceIDKind
	Code   string
	Source string
	Value  uint32
}

var kissCodes = map[string]bool{
	"ACST": true, "AUTH": true, "AUTO": true, "BCST": true,
	"CRYP": true, "DENY": true, "DROP": true, "RSTR": true,
	"INIT": true, "MCST": true, "NKEY": true, "RATE": true,
	"RMOT": true, "STEP": true,
}

var referenceSources = map[string]bool{
	"LOCL": true, "CESM": true, "RBDM": true, "PPS": true,
	"IRIG": true, "ACTS": true, "USNO": true, "PTB": true,
	"TDF": true, "DCF": true, "MSF": true, "WWV": true,
	"WWVB": true, "WWVH": true, "CHU": true, "LORC": true,
	"OMEG": true, "GPS": true,
}

// IsKissCode reports whether s is a member of the Kiss-of-Death vocabulary.
func IsKissCode(s string) bool { return kissCodes[s] }

// IsReferenceSource reports whether s names a known primary reference
// source.
func IsReferenceSource(s string) bool { return referenceSources[s] }

// asciiCode interprets up to 4 bytes as a zero-padded ASCII word. ok is
// false if a byte after the padding boundary is non-zero or any byte is
// outside the ASCII range.
func asciiCode(b []byte) (s string, ok bool) {
	_ = b[3]
	n := 4
	for n > 0 && b[n-1] == 0 {
		n--
	}
	for i := 0; i != n; i++ {
		if b[i] == 0 || b[i] > 0x7f {
			return "", false
		}
	}
	return string(b[:n]), true
}

// decodeReferenceID interprets the 4 bytes at b according to mode and
// stratum. Client requests carry no meaningful identifier: the bytes are
// consumed but the field decodes to nil.
func decodeReferenceID(b []byte, mode Mode, stratum uint8) (*ReferenceID, error) {
	if mode == ModeClient {
		return nil, nil
	}
	value := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	switch ClassifyStratum(stratum) {
	case StratumClassKissODeath:
		code, ok := asciiCode(b)
		if !ok || !kissCodes[code] {
			return nil, ErrInvalidKissCode
		}
		return &ReferenceID{Kind: ReferenceIDKissODeath, Code: code}, nil
	case StratumClassPrimary:
		// Unrecognized primary sources are common and non-fatal, unlike
		// unrecognized Kiss-of-Death codes.
		source, ok := asciiCode(b)
		if !ok || !referenceSources[source] {
			return &ReferenceID{Kind: ReferenceIDPrimary}, nil
		}
		return &ReferenceID{Kind: ReferenceIDPrimary, Source: source}, nil
	case StratumClassSecondary:
		return &ReferenceID{Kind: ReferenceIDUnknownIPVersion, Value: value}, nil
	default:
		return &ReferenceID{Kind: ReferenceIDReservedStratum, Value: value}, nil
	}
}

// encodeReferenceID writes the wire form of id to the 4 bytes at b. A nil
// identifier and an unrecognized primary source both encode as zero bytes.
func encodeReferenceID(b []byte, id *ReferenceID) {
	_ = b[3]
	b[0], b[1], b[2], b[3] = 0, 0, 0, 0
	if id == nil {
		return
	}
	switch id.Kind {
	case ReferenceIDKissODeath:
		copy(b[:4], id.Code)
	case ReferenceIDPrimary:
		copy(b[:4], id.Source)
	default:
		b[0] = byte(id.Value >> 24)
		b[1] = byte(id.Value >> 16)
		b[2] = byte(id.Value >> 8)
		b[3] = byte(id.Value)
	}
}
