package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kaireichart/flight-visualizer/config"
	"github.com/kaireichart/flight-visualizer/data_analysis"
	"github.com/kaireichart/flight-visualizer/events"
	"github.com/kaireichart/flight-visualizer/live"
	"github.com/kaireichart/flight-visualizer/metrics"
	"github.com/kaireichart/flight-visualizer/playback"
)

func main() {
	configPath := flag.String("config", "flightviz.yaml", "path to the configuration file")
	flag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := events.Init(cfg.Log.EventsDir); err != nil {
		log.Printf("Failed to initialize event log: %v", err)
	}
	if err := os.MkdirAll(cfg.Server.UploadDir, 0755); err != nil {
		log.Printf("Failed to create upload directory: %v", err)
	}

	collector := metrics.NewCollector("flightviz", prometheus.DefaultRegisterer)
	hub := live.NewHub()

	engine := playback.NewEngine(
		playback.NewTickerScheduler(playback.RealClock{}),
		time.Duration(cfg.Playback.Interval),
		playback.MultiSink{hub, collector},
	)

	params := data_analysis.Params{
		MedianWindow:     min(data_analysis.ClampWindow(cfg.Smoothing.MedianWindow), data_analysis.MaxWindow),
		MeanWindow:       min(data_analysis.ClampWindow(cfg.Smoothing.MeanWindow), data_analysis.MaxWindow),
		PolynomialFilter: cfg.Smoothing.PolynomialFilter,
	}
	if params.PolynomialFilter && !data_analysis.PolynomialFilterAvailable() {
		log.Println("Polynomial filter not compiled in, smoothing without it")
	}

	workspace := data_analysis.NewWorkspace(engine, data_analysis.WorkspaceConfig{
		Params:          params,
		PressureColumns: cfg.Telemetry.PressureColumns,
		PhaseThreshold:  cfg.Analysis.PhaseThresholdMPS,
		Recorder:        collector,
		OnState:         collector.ObserveState,
	})

	mux := http.NewServeMux()
	data_analysis.SetupHandlers(mux, workspace, cfg.Server.UploadDir)
	events.SetupHandlers(mux)
	mux.HandleFunc("/live/ws", hub.HandleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: collector.Instrument(mux,
			"/", "/data-analysis/upload", "/data-analysis/params", "/data-analysis/status",
			"/data-analysis/dataset", "/data-analysis/statistics", "/data-analysis/chart",
			"/data-analysis/snapshot.png", "/playback/start", "/playback/stop",
			"/live/ws", "/events", "/events/list", "/metrics"),
	}

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-c
		log.Println("Shutting down gracefully...")
		workspace.Stop()
		hub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
		if err := events.Close(); err != nil {
			log.Printf("Error closing event log: %v", err)
		}
	}()

	log.Printf("Server started at http://%s", displayAddr(cfg.Server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	<-done
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
