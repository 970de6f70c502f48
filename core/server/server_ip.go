package server

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/libp2p/go-reuseport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"example.com/ntp-responder/base/logbase"
	"example.com/ntp-responder/base/metrics"

	"example.com/ntp-responder/core/timebase"

	"example.com/ntp-responder/net/ntp"
	"example.com/ntp-responder/net/udp"
)

const (
	ipServerNumGoroutine = 8
)

type ipServerMetrics struct {
	pktsReceived  prometheus.Counter
	pktsMalformed prometheus.Counter
	reqsAccepted  prometheus.Counter
	reqsServed    prometheus.Counter
}

func newIPServerMetrics() *ipServerMetrics {
	return &ipServerMetrics{
		pktsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.IPServerPktsReceivedN,
			Help: metrics.IPServerPktsReceivedH,
		}),
		pktsMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.IPServerPktsMalformedN,
			Help: metrics.IPServerPktsMalformedH,
		}),
		reqsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.IPServerReqsAcceptedN,
			Help: metrics.IPServerReqsAcceptedH,
		}),
		reqsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: metrics.IPServerReqsServedN,
			Help: metrics.IPServerReqsServedH,
		}),
	}
}

func runIPServer(ctx context.Context, log *slog.Logger, mtrcs *ipServerMetrics,
	conn *net.UDPConn, dscp uint8, src *ClockSource) {
	defer conn.Close()
	err := udp.EnableRxTimestamps(conn)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelError, "failed to enable rx timestamps", slog.Any("error", err))
	}
	err = udp.SetDSCP(conn, dscp)
	if err != nil {
		log.LogAttrs(ctx, slog.LevelInfo, "failed to set DSCP", slog.Any("error", err))
	}

	buf := make([]byte, 2048)
	oob := make([]byte, udp.TimestampLen())
	for {
		buf = buf[:cap(buf)]
		oob = oob[:cap(oob)]
		n, oobn, flags, srcAddr, err := conn.ReadMsgUDPAddrPort(buf, oob)
		if err != nil {
			log.LogAttrs(ctx, slog.LevelError, "failed to read packet", slog.Any("error", err))
			continue
		}
		if flags != 0 {
			log.LogAttrs(ctx, slog.LevelError, "failed to read packet", slog.Int("flags", flags))
			continue
		}
		oob = oob[:oobn]
		rxt, err := udp.TimestampFromOOBData(oob)
		if err != nil {
			oob = oob[:0]
			rxt = timebase.Now()
			log.LogAttrs(ctx, slog.LevelDebug, "failed to read packet rx timestamp", slog.Any("error", err))
		}
		buf = buf[:n]
		mtrcs.pktsReceived.Inc()

		var ntpreq ntp.Message
		err = ntp.DecodeMessage(&ntpreq, buf)
		if err != nil {
			mtrcs.pktsMalformed.Inc()
			log.LogAttrs(ctx, slog.LevelInfo, "failed to decode packet payload", slog.Any("error", err))
			continue
		}

		err = ntp.ValidateRequest(&ntpreq)
		if err != nil {
			mtrcs.pktsMalformed.Inc()
			log.LogAttrs(ctx, slog.LevelInfo, "failed to validate packet payload", slog.Any("error", err))
			continue
		}

		clientID := srcAddr.Addr().String()

		mtrcs.reqsAccepted.Inc()
		log.LogAttrs(ctx, slog.LevelDebug, "received request",
			slog.Time("at", rxt),
			slog.String("from", clientID),
			slog.Any("data", ntp.MessageLogValuer{Msg: &ntpreq}),
		)

		ntpresp := handleRequest(&ntpreq, src, rxt)
		ntp.EncodeMessage(&buf, ntpresp)

		n, err = conn.WriteToUDPAddrPort(buf, srcAddr)
		if err != nil || n != len(buf) {
			log.LogAttrs(ctx, slog.LevelError, "failed to write packet", slog.Any("error", err))
			continue
		}

		mtrcs.reqsServed.Inc()
	}
}

// StartIPServer listens for client requests on localHost and answers them
// with time from the given clock source. Listeners never return; a
// malformed packet is logged and discarded, never fatal.
func StartIPServer(ctx context.Context, log *slog.Logger,
	localHost *net.UDPAddr, dscp uint8, src *ClockSource) {
	log.LogAttrs(ctx, slog.LevelInfo, "server listening via IP",
		slog.Any("local host", localHost),
	)

	mtrcs := newIPServerMetrics()

	if ipServerNumGoroutine == 1 {
		conn, err := net.ListenUDP("udp", localHost)
		if err != nil {
			logbase.FatalContext(ctx, log, "failed to listen for packets", slog.Any("error", err))
		}
		go runIPServer(ctx, log, mtrcs, conn, dscp, src)
	} else {
		for i := 0; i < ipServerNumGoroutine; i++ {
			conn, err := reuseport.ListenPacket("udp",
				net.JoinHostPort(localHost.IP.String(), strconv.Itoa(localHost.Port)))
			if err != nil {
				logbase.FatalContext(ctx, log, "failed to listen for packets", slog.Any("error", err))
			}
			go runIPServer(ctx, log, mtrcs, conn.(*net.UDPConn), dscp, src)
		}
	}
}
