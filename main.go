package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"video-converter/internal/converter"
	"video-converter/internal/handlers"
	"video-converter/internal/logging"
	"video-converter/internal/memory"
	"video-converter/internal/metrics"
	"video-converter/internal/middleware"
	"video-converter/internal/planner"
	"video-converter/internal/startup"
	"video-converter/internal/telemetry"
	"video-converter/internal/transcoder"
	"video-converter/internal/workspace"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	if err := startup.LoadEnvFile(); err != nil {
		startup.LogFatal("Environment file error: %v", err)
	}
	logging.Configure(logging.Config{})
	memory.ConfigureFromEnv()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Tracing
	tracer, err := telemetry.NewProvider(context.Background(), config.Telemetry)
	if err != nil {
		startup.LogFatal("Failed to initialize tracing: %v", err)
	}

	// Workspaces left behind by a crash are never resumed. WORK_DIR may be
	// shared with other instances, so only long-idle ones are removed.
	staleAfter := workspace.StaleAfter(config.ProcessTimeout)
	startup.LogWorkspaceSweep(workspace.Sweep(config.WorkDir, staleAfter))

	// Conversion pipeline
	cat := config.Catalog
	plan := planner.New(cat, config.PlannerOptions())
	trans := transcoder.New(config.TranscoderConfig())
	svc := converter.New(cat, plan, trans, config.ConverterConfig())
	startup.LogConverterInit(trans, cat)

	// Metrics
	metrics.InitializeMetrics(cat.IDs())
	buildInfo := startup.GetBuildInfo()
	metrics.SetAppInfo(buildInfo.Version, buildInfo.Commit, buildInfo.GoVersion)
	collector := metrics.NewCollector(svc, 30*time.Second)
	collector.Start()

	// Initialize handlers
	h := handlers.New(svc, trans, config)

	// Setup router
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	router.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	handler = middleware.CORS(config.CORSAllowedOrigins)(handler)
	handler = middleware.Logger(loggingConfig)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Tracing(config.Telemetry.ServiceName)(handler)

	// Uploads can be large and conversions run up to PROCESS_TIMEOUT, so
	// neither body reads nor response writes get a server deadline.
	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       0,
		WriteTimeout:      0,
		IdleTimeout:       60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsRouter := mux.NewRouter()
		metricsRouter.Handle("/metrics", h.MetricsHandler()).Methods("GET")
		metricsSrv = &http.Server{
			Addr:              ":" + config.MetricsPort,
			Handler:           metricsRouter,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, metricsSrv, shutdownDeps{
		trans:      trans,
		collector:  collector,
		tracer:     tracer,
		workDir:    config.WorkDir,
		staleAfter: staleAfter,
	})

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods("GET")

	// Conversion API. OPTIONS is answered by the CORS middleware.
	r.HandleFunc("/convert", h.Convert).Methods("POST", "OPTIONS")
	r.HandleFunc("/formats", h.ListFormats).Methods("GET")

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	return r
}

type shutdownDeps struct {
	trans      *transcoder.Transcoder
	collector  *metrics.Collector
	tracer     *telemetry.Provider
	workDir    string
	staleAfter time.Duration
}

func handleShutdown(srv, metricsSrv *http.Server, deps shutdownDeps) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Killing encoders first lets in-flight conversions fail fast, so the
	// HTTP drain below does not wait for PROCESS_TIMEOUT.
	startup.LogShutdownStep("Stopping encoder processes")
	deps.trans.Cleanup()
	startup.LogShutdownStepComplete("Encoder processes stopped")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	deps.collector.Stop()

	startup.LogShutdownStep("Removing stale workspaces")
	startup.LogWorkspaceSweep(workspace.Sweep(deps.workDir, deps.staleAfter))

	startup.LogShutdownStep("Flushing traces")
	if err := deps.tracer.Shutdown(ctx); err != nil {
		logging.Warn("Trace flush error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Traces flushed")
	}

	startup.LogShutdownComplete()
}
