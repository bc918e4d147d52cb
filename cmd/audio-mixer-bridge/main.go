package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	flag "github.com/spf13/pflag"

	"github.com/librescoot/audio-mixer-bridge/pkg/assets"
	"github.com/librescoot/audio-mixer-bridge/pkg/audio"
	"github.com/librescoot/audio-mixer-bridge/pkg/bridge"
	"github.com/librescoot/audio-mixer-bridge/pkg/config"
	"github.com/librescoot/audio-mixer-bridge/pkg/dispatch"
	"github.com/librescoot/audio-mixer-bridge/pkg/eventsink"
	"github.com/librescoot/audio-mixer-bridge/pkg/metrics"
	"github.com/librescoot/audio-mixer-bridge/pkg/serialport"
	"github.com/librescoot/audio-mixer-bridge/pkg/sniffer"
	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

var configPath = flag.String("config", "", "path to a YAML config file, overlaid on the built-in defaults")

func main() {
	// The override flags are only defined after the config file is loaded, so
	// the first pass tolerates them and the second pass applies them.
	flag.CommandLine.ParseErrorsWhitelist.UnknownFlags = true
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.BindFlags(flag.CommandLine, &cfg)
	flag.CommandLine.ParseErrorsWhitelist.UnknownFlags = false
	flag.Parse()

	level, err := log.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = log.InfoLevel
	}
	sink := eventsink.New(eventsink.Options{Level: level, ReportTime: cfg.Logging.ReportTime})
	sink.Service.Infof("Starting audio-mixer-bridge (device=%s)", cfg.DeviceID)

	stats := wire.NewStats()

	assetProvider, err := assets.New(func(processName string) ([]byte, error) {
		return nil, &assets.NotAvailableError{ProcessName: processName}
	})
	if err != nil {
		log.Fatalf("Failed to build asset provider: %v", err)
	}

	// The real OS-specific audio backend is out of this module's scope; the
	// in-memory Mock lets the bridge run end-to-end without one attached.
	backend := audio.NewMock()

	dispatcher := dispatch.New(sink.Incoming)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sender bridge.Sender
	var transport *serialport.Transport
	crashSniffer := sniffer.New()
	crashSniffer.OnQuarantine = func() {
		sink.Service.Warn("crash banner detected on serial link, quarantining")
	}
	crashSniffer.OnELFTrailer = func(line string) {
		sink.Service.Errorf("firmware crash dump trailer: %s", line)
		sink.Service.Error("crash sniffer decoded a full dump, terminating as an operator-signaled shutdown")
		os.Exit(2)
	}

	if cfg.EnableSerial {
		transport, err = serialport.Open(ctx, serialport.Config{
			PortName:            cfg.Serial.PortName,
			BaudRate:            cfg.Serial.BaudRate,
			DataBits:            cfg.Serial.DataBits,
			Parity:              cfg.Serial.Parity,
			StopBits:            cfg.Serial.StopBits,
			ReadTimeout:         cfg.Serial.ReadTimeout(),
			WriteTimeout:        cfg.Serial.WriteTimeout(),
			EnableAutoReconnect: cfg.Serial.EnableAutoReconnect,
			ReconnectDelay:      cfg.Serial.ReconnectDelay(),
		}, stats, crashSniffer, sink, "serial", func(d wire.Decoded) {
			dispatcher.Dispatch(d.Data)
		})
		if err != nil {
			log.Fatalf("Failed to open serial transport: %v", err)
		}
		defer transport.Close()
		sender = transport
	} else {
		sender = noopSender{}
	}

	orchestrator := bridge.New(bridge.Config{
		DeviceID: cfg.DeviceID,
		Backend:  backend,
		Assets:   assetProvider,
		Sender:   sender,
		Logger:   sink.Service,
	})
	orchestrator.RegisterHandlers(dispatcher)

	registry := metrics.NewRegistry(stats)
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: registry.Handler()}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sink.Service.Errorf("metrics server stopped: %v", err)
		}
	}()
	defer metricsServer.Close()

	go orchestrator.Run(ctx, cfg.StatusBroadcastInterval(), cfg.AudioSessionRefreshInterval())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	sink.Service.Info("Shutting down")
	cancel()
}

// noopSender is used when --enable-serial=false: commands still dispatch
// and the orchestrator still runs, it just has nowhere to write replies.
type noopSender struct{}

func (noopSender) Send(payload []byte) error { return nil }
