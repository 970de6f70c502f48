package ntp

import "time"

func DecodeTimestamp(b []byte) (time.Time, bool) { return decodeTimestamp(b) }

func EncodeTimestamp(b []byte, t time.Time) { encodeTimestamp(b, t) }
