package benchmark

import (
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"example.com/ntp-responder/core/timebase"

	"example.com/ntp-responder/net/ntp"
	"example.com/ntp-responder/net/udp"
)

func RunIPBenchmark(localAddr, remoteAddr *net.UDPAddr) {
	// const numClientGoroutine = 8
	// const numRequestPerClient = 10000
	const numClientGoroutine = 1
	const numRequestPerClient = 1_000_000
	var mu sync.Mutex
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(numClientGoroutine)
	for i := numClientGoroutine; i > 0; i-- {
		go func() {
			hg := hdrhistogram.New(1, 50000, 5)

			conn, err := net.DialUDP("udp", localAddr, remoteAddr)
			if err != nil {
				log.Printf("Failed to dial UDP connection: %v", err)
				return
			}
			defer conn.Close()
			_ = udp.EnableRxTimestamps(conn)

			defer wg.Done()
			<-sg
			for j := numRequestPerClient; j > 0; j-- {
				cTxTime := timebase.Now()

				ntpreq := ntp.Message{
					Version:      ntp.VersionMax,
					Mode:         ntp.ModeClient,
					TransmitTime: cTxTime,
				}
				buf := make([]byte, ntp.PacketLen)
				ntp.EncodeMessage(&buf, &ntpreq)

				_, err = conn.Write(buf)
				if err != nil {
					log.Printf("Failed to write packet: %v", err)
					return
				}

				oob := make([]byte, udp.TimestampLen())

				n, oobn, flags, _, err := conn.ReadMsgUDPAddrPort(buf, oob)
				if err != nil {
					log.Printf("Failed to read packet: %v", err)
					return
				}
				if flags != 0 {
					log.Printf("Failed to read packet, flags: %v", flags)
					return
				}

				oob = oob[:oobn]
				cRxTime, err := udp.TimestampFromOOBData(oob)
				if err != nil {
					cRxTime = timebase.Now()
					log.Printf("Failed to read packet timestamp")
				}
				buf = buf[:n]

				var ntpresp ntp.Message
				err = ntp.DecodeMessage(&ntpresp, buf)
				if err != nil {
					log.Printf("Failed to decode packet payload: %v", err)
					return
				}

				// The transmit timestamp survives the wire encoding exactly,
				// so a simple equality check identifies our response.
				if ntpresp.OriginTime == nil || !ntpresp.OriginTime.Equal(cTxTime) {
					log.Printf("Unrelated packet received")
					return
				}

				err = ntp.ValidateResponseMetadata(&ntpresp)
				if err != nil {
					log.Printf("Unexpected packet received: %v", err)
					return
				}

				if ntpresp.ReceiveTime == nil {
					log.Printf("Unexpected packet received: no receive timestamp")
					return
				}
				sRxTime := *ntpresp.ReceiveTime
				sTxTime := ntpresp.TransmitTime

				err = ntp.ValidateResponseTimestamps(cTxTime, sRxTime, sTxTime, cRxTime)
				if err != nil {
					log.Printf("Unexpected packet received: %v", err)
					return
				}

				_ = ntp.ClockOffset(cTxTime, sRxTime, sTxTime, cRxTime)
				roundTripDelay := ntp.RoundTripDelay(cTxTime, sRxTime, sTxTime, cRxTime)

				err = hg.RecordValue(roundTripDelay.Microseconds())
				if err != nil {
					log.Printf("Failed to record histogram value: %v", err)
					return
				}
			}
			mu.Lock()
			defer mu.Unlock()
			hg.PercentilesPrint(os.Stdout, 1, 1.0)
		}()
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	log.Print(time.Since(t0))
}
