package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qxsch/freerdp-web-sub001/internal/compositor"
	"github.com/qxsch/freerdp-web-sub001/internal/config"
	"github.com/qxsch/freerdp-web-sub001/internal/logging"
	"github.com/qxsch/freerdp-web-sub001/internal/softsink"
	"github.com/qxsch/freerdp-web-sub001/internal/transport/wstransport"
	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	cfgFile   string
	serverURL string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "gfxclientd",
	Short: "RDPGFX client-side compositor",
	Long:  `gfxclientd decodes the RDPGFX wire protocol over a WebSocket transport and composites surfaces into a software output buffer.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a GFX server and run the compositor",
	Run: func(cmd *cobra.Command, args []string) {
		runClient()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gfxclientd v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/gfxclientd/gfxclientd.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "GFX server URL")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging sets up structured logging from config. Call after config.Load().
func initLogging(cfg *config.Config) {
	var output io.Writer = os.Stdout
	logFileFallback := false

	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
			logFileFallback = true
		} else {
			output = logging.TeeWriter(os.Stdout, rw)
		}
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	log = logging.L("main")

	if logFileFallback {
		log.Warn("log file fallback active, logging to stdout only", "requestedFile", cfg.LogFile)
	}
}

// runClient loads config, wires the transport/sink/compositor together, and
// blocks until a shutdown signal arrives or the transport gives up.
func runClient() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if cfg.ServerURL == "" {
		fmt.Fprintln(os.Stderr, "Server URL required. Use --server flag or set server_url in config.")
		os.Exit(1)
	}

	initLogging(cfg)
	log.Info("starting gfxclientd",
		"version", version,
		"server", cfg.ServerURL,
		"clientId", cfg.ClientID,
	)

	sink := softsink.New()

	var comp *compositor.Compositor
	if cfg.ProgressiveWorkerCount > 0 {
		comp = compositor.NewWithProgressiveWorkers(sink, softsink.NoopVideoDelegate{}, softsink.NoopImageDelegate{}, cfg.ProgressiveWorkerCount)
	} else {
		comp = compositor.New(sink, softsink.NoopVideoDelegate{}, softsink.NoopImageDelegate{})
	}
	defer comp.Close(context.Background())

	transport := wstransport.New(&wstransport.Config{
		ServerURL:             cfg.ServerURL,
		ClientID:              cfg.ClientID,
		AuthToken:             cfg.AuthToken,
		TLSInsecureSkipVerify: cfg.TLSInsecureSkipVerify,
		ReconnectMinBackoff:   time.Duration(cfg.ReconnectMinBackoffMs) * time.Millisecond,
		ReconnectMaxBackoff:   time.Duration(cfg.ReconnectMaxBackoffMs) * time.Millisecond,
		PingInterval:          time.Duration(cfg.PingIntervalSeconds) * time.Second,
		SendQueueSize:         cfg.SendQueueSize,
	})

	go transport.Start()

	runErr := make(chan error, 1)
	go func() {
		runErr <- comp.Run(transport)
	}()

	if cfg.MetricsLogIntervalSeconds > 0 {
		go logMetricsPeriodically(comp, time.Duration(cfg.MetricsLogIntervalSeconds)*time.Second)
	}

	log.Info("gfxclientd is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info("shutting down gfxclientd")
	case err := <-runErr:
		log.Warn("compositor run loop exited", "error", err)
	}

	transport.Stop()
	log.Info("gfxclientd stopped")
}

func logMetricsPeriodically(comp *compositor.Compositor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		snap := comp.Metrics.Snapshot()
		log.Info("metrics",
			"framesDecoded", snap.FramesDecoded,
			"framesAcked", snap.FramesAcked,
			"tilesDecoded", snap.TilesDecoded,
			"tilesFailed", snap.TilesFailed,
			"lastFrameLatencyMs", time.Duration(snap.LastFrameLatency).Milliseconds(),
		)
	}
}
