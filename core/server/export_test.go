package server

import (
	"time"

	"example.com/ntp-responder/net/ntp"
)

func HandleRequest(req *ntp.Message, src *ClockSource, rxt time.Time) *ntp.Message {
	return handleRequest(req, src, rxt)
}
