package udp

import (
	"errors"
	"net"

	"golang.org/x/sys/unix"
)

var (
	errTimestampNotFound = errors.New("failed to read timestamp from out of band data")
	errUnexpectedData    = errors.New("failed to read out of band data")
)

// Timestamp handling based on studying code from the following projects:
// - https://github.com/bsdphk/Ntimed, file udp.c
// - https://github.com/golang/go, package "golang.org/x/sys/unix"
// - https://github.com/facebook/time, package "github.com/facebook/time/ntp/protocol/ntp"

// TimestampLen returns the out of band data buffer capacity required by
// TimestampFromOOBData.
func TimestampLen() int {
	return unix.CmsgSpace(3 * 16)
}

// SetDSCP marks packets sent via conn with the given Differentiated
// Services Codepoint. Valid values are in range [0, 63].
func SetDSCP(conn *net.UDPConn, dscp uint8) error {
	sconn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var res struct {
		err error
	}
	err = sconn.Control(func(fd uintptr) {
		res.err = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TOS, int(dscp)<<2)
	})
	if err != nil {
		return err
	}
	return res.err
}
