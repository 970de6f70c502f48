// NTP responder service

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	beevikntp "github.com/beevik/ntp"

	"example.com/ntp-responder/base/zaplog"

	"example.com/ntp-responder/benchmark"

	"example.com/ntp-responder/core/config"
	"example.com/ntp-responder/core/server"
	"example.com/ntp-responder/core/timebase"

	"example.com/ntp-responder/driver/clock"

	"example.com/ntp-responder/net/ntp"
)

type svcConfig struct {
	LocalAddr       string `toml:"local_address,omitempty"`
	RemoteAddr      string `toml:"remote_address,omitempty"`
	MetricsAddr     string `toml:"metrics_address,omitempty"`
	Stratum         uint8  `toml:"stratum,omitempty"`
	ReferenceSource string `toml:"reference_source,omitempty"`
	ReferenceID     uint32 `toml:"reference_id,omitempty"`
	PollInterval    uint8  `toml:"poll_interval,omitempty"`
	Precision       int8   `toml:"precision,omitempty"`
	RootDelay       int32  `toml:"root_delay,omitempty"`
	RootDispersion  uint32 `toml:"root_dispersion,omitempty"`
}

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = func(
		caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		// See https://github.com/scionproto/scion/blob/master/pkg/log/log.go
		p := caller.TrimmedPath()
		if len(p) > 30 {
			p = "..." + p[len(p)-27:]
		}
		enc.AppendString(fmt.Sprintf("%30s", p))
	}
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var err error
	log, err = c.Build()
	if err != nil {
		panic(err)
	}
	zaplog.SetLogger(log)
}

func slogger() *slog.Logger {
	return slog.New(zapslog.NewHandler(log.Core()))
}

func runMonitor(metricsAddr string) {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(metricsAddr, nil)
	zaplog.Logger().Fatal("failed to serve metrics", zap.Error(err))
}

func loadConfig(configFile string) svcConfig {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	var cfg svcConfig
	err = toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		log.Fatal("failed to decode configuration", zap.Error(err))
	}
	return cfg
}

func localAddress(cfg svcConfig) *net.UDPAddr {
	if cfg.LocalAddr == "" {
		log.Fatal("local_address not specified in configuration")
	}
	localAddr, err := net.ResolveUDPAddr("udp", cfg.LocalAddr)
	if err != nil {
		log.Fatal("failed to resolve local address", zap.Error(err))
	}
	return localAddr
}

func remoteAddress(cfg svcConfig) *net.UDPAddr {
	if cfg.RemoteAddr == "" {
		log.Fatal("remote_address not specified in configuration")
	}
	remoteAddr, err := net.ResolveUDPAddr("udp", cfg.RemoteAddr)
	if err != nil {
		log.Fatal("failed to resolve remote address", zap.Error(err))
	}
	return remoteAddr
}

func metricsAddress(cfg svcConfig) string {
	if cfg.MetricsAddr == "" {
		return "127.0.0.1:8080"
	}
	return cfg.MetricsAddr
}

func createClockSource(cfg svcConfig) *server.ClockSource {
	stratum := cfg.Stratum
	if stratum == 0 {
		stratum = config.DefaultStratum
	}
	if ntp.ClassifyStratum(stratum) != ntp.StratumClassPrimary &&
		ntp.ClassifyStratum(stratum) != ntp.StratumClassSecondary {
		log.Fatal("invalid stratum in configuration", zap.Uint8("stratum", stratum))
	}
	var refid *ntp.ReferenceID
	if stratum == 1 {
		src := cfg.ReferenceSource
		if src == "" {
			src = config.DefaultReferenceSource
		}
		if !ntp.IsReferenceSource(src) {
			log.Fatal("unknown reference source in configuration", zap.String("reference_source", src))
		}
		refid = &ntp.ReferenceID{Kind: ntp.ReferenceIDPrimary, Source: src}
	} else {
		refid = &ntp.ReferenceID{Kind: ntp.ReferenceIDUnknownIPVersion, Value: cfg.ReferenceID}
	}
	precision := cfg.Precision
	if precision == 0 {
		precision = config.DefaultPrecision
	}
	rootDispersion := cfg.RootDispersion
	if rootDispersion == 0 {
		rootDispersion = config.DefaultRootDispersion
	}
	return &server.ClockSource{
		Stratum:        stratum,
		ReferenceID:    refid,
		Poll:           cfg.PollInterval,
		Precision:      precision,
		RootDelay:      cfg.RootDelay,
		RootDispersion: rootDispersion,
	}
}

func runServer(configFile string) {
	ctx := context.Background()

	cfg := loadConfig(configFile)
	localAddr := localAddress(cfg)
	src := createClockSource(cfg)

	lclk := &clock.SystemClock{}
	timebase.RegisterClock(lclk)

	server.StartIPServer(ctx, slogger(), localAddr, config.DSCP, src)

	runMonitor(metricsAddress(cfg))
}

func runBenchmark(configFile string) {
	cfg := loadConfig(configFile)
	localAddr := localAddress(cfg)
	remoteAddr := remoteAddress(cfg)

	lclk := &clock.SystemClock{}
	timebase.RegisterClock(lclk)
	benchmark.RunIPBenchmark(localAddr, remoteAddr)
}

func runQuery(host string) {
	fmt.Printf("[%s] ----------------------\n", host)
	fmt.Printf("[%s] NTP protocol version %d\n", host, 4)

	r, err := beevikntp.QueryWithOptions(host, beevikntp.QueryOptions{Timeout: 3 * time.Second})
	if err != nil {
		log.Fatal("failed to query NTP server", zap.Error(err))
	}
	err = r.Validate()
	if err != nil {
		log.Fatal("failed to validate NTP response", zap.Error(err))
	}

	now := time.Now()

	fmt.Printf("[%s]  LocalTime: %v\n", host, now)
	fmt.Printf("[%s]   XmitTime: %v\n", host, r.Time)
	fmt.Printf("[%s]    RefTime: %v\n", host, r.ReferenceTime)
	fmt.Printf("[%s]        RTT: %v\n", host, r.RTT)
	fmt.Printf("[%s]     Offset: %v\n", host, r.ClockOffset)
	fmt.Printf("[%s]       Poll: %v\n", host, r.Poll)
	fmt.Printf("[%s]  Precision: %v\n", host, r.Precision)
	fmt.Printf("[%s]    Stratum: %v\n", host, r.Stratum)
	fmt.Printf("[%s]      RefID: 0x%08x\n", host, r.ReferenceID)
	fmt.Printf("[%s]  RootDelay: %v\n", host, r.RootDelay)
	fmt.Printf("[%s]   RootDisp: %v\n", host, r.RootDispersion)
	fmt.Printf("[%s]       Leap: %v\n", host, r.Leap)
	fmt.Printf("[%s]   KissCode: \"%v\"\n", host, r.KissCode)
}

func exitWithUsage() {
	fmt.Println("usage: ntpresponder server    -config <file> [-verbose]")
	fmt.Println("       ntpresponder benchmark -config <file> [-verbose]")
	fmt.Println("       ntpresponder query     -remote <host> [-verbose]")
	os.Exit(1)
}

func main() {
	var (
		verbose    bool
		configFile string
		remoteAddr string
	)

	serverFlags := flag.NewFlagSet("server", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)
	queryFlags := flag.NewFlagSet("query", flag.ExitOnError)

	serverFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	serverFlags.StringVar(&configFile, "config", "", "Config file")

	benchmarkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	benchmarkFlags.StringVar(&configFile, "config", "", "Config file")

	queryFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	queryFlags.StringVar(&remoteAddr, "remote", "", "Remote address")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case serverFlags.Name():
		err := serverFlags.Parse(os.Args[2:])
		if err != nil || serverFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runServer(configFile)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runBenchmark(configFile)
	case queryFlags.Name():
		err := queryFlags.Parse(os.Args[2:])
		if err != nil || queryFlags.NArg() != 0 {
			exitWithUsage()
		}
		if remoteAddr == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runQuery(remoteAddr)
	default:
		exitWithUsage()
	}
}
