package startup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"video-converter/internal/catalog"
	"video-converter/internal/converter"
	"video-converter/internal/logging"
	"video-converter/internal/naming"
	"video-converter/internal/planner"
	"video-converter/internal/telemetry"
	"video-converter/internal/transcoder"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Defaults for the configuration surface.
const (
	DefaultPort           = "5000"
	DefaultMetricsPort    = "9090"
	DefaultMaxUploadBytes = 500 << 20
	DefaultProcessTimeout = 120 * time.Second

	DefaultDeliveryWriteTimeout = 30 * time.Second
)

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	MaxUploadBytes int64
	ProcessTimeout time.Duration
	FFmpegPath     string
	WorkDir        string

	// DeliveryWriteTimeout bounds each write of a converted file to the
	// client.
	DeliveryWriteTimeout time.Duration

	OutputNaming      naming.Policy
	VideoBitrate      string
	OverwriteOutput   bool
	ExperimentalAudio bool

	CORSAllowedOrigins []string

	CodecTableFile   string
	SupportedFormats []string

	// Catalog is built from the defaults, CODEC_TABLE_FILE and
	// SUPPORTED_FORMATS.
	Catalog *catalog.Catalog

	Telemetry telemetry.Config
}

// LoadEnvFile loads variables from a .env file into the environment
// without overriding ones already set. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	cfg, err := configFromEnv()
	if err != nil {
		return nil, err
	}

	logging.Info("  PORT:                %s", cfg.Port)
	logging.Info("  METRICS_PORT:        %s", cfg.MetricsPort)
	logging.Info("  METRICS_ENABLED:     %v", cfg.MetricsEnabled)
	logging.Info("  MAX_UPLOAD_BYTES:    %d (%s)", cfg.MaxUploadBytes, formatBytes(cfg.MaxUploadBytes))
	logging.Info("  PROCESS_TIMEOUT:     %s", cfg.ProcessTimeout)
	logging.Info("  FFMPEG_PATH:         %s", cfg.FFmpegPath)
	logging.Info("  DELIVERY_WRITE_TIMEOUT: %s", cfg.DeliveryWriteTimeout)
	logging.Info("  WORK_DIR:            %s", cfg.WorkDir)
	logging.Info("  OUTPUT_NAMING:       %s", cfg.OutputNaming)
	logging.Info("  VIDEO_BITRATE:       %s", valueOr(cfg.VideoBitrate, "(encoder default)"))
	logging.Info("  OVERWRITE_OUTPUT:    %v", cfg.OverwriteOutput)
	logging.Info("  EXPERIMENTAL_AUDIO:  %v", cfg.ExperimentalAudio)
	logging.Info("  CORS_ALLOWED_ORIGINS: %s", strings.Join(cfg.CORSAllowedOrigins, ","))
	logging.Info("  CODEC_TABLE_FILE:    %s", valueOr(cfg.CodecTableFile, "(built-in)"))
	logging.Info("  SUPPORTED_FORMATS:   %s", strings.Join(cfg.Catalog.IDs(), ","))
	logging.Info("  OTEL_EXPORTER:       %s", valueOr(cfg.Telemetry.ExporterType, "(disabled)"))
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	if err := ensureDirectory(cfg.WorkDir, "work"); err != nil {
		return nil, fmt.Errorf("work directory error: %w", err)
	}
	if err := testWriteAccess(cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("work directory is not writable (required for uploads): %w", err)
	}
	logging.Info("  [OK] Work directory is writable")

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Metrics:     %s", enabledString(cfg.MetricsEnabled))
	logging.Info("    Tracing:     %s", enabledString(cfg.Telemetry.Enabled))

	return cfg, nil
}

// FromEnv reads and validates the environment without logging or touching
// the work directory. Command-line tools use it instead of LoadConfig.
func FromEnv() (*Config, error) {
	return configFromEnv()
}

// configFromEnv reads and validates the environment without side effects
// beyond reading the codec table file.
func configFromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", DefaultPort),
		MetricsPort:        getEnv("METRICS_PORT", DefaultMetricsPort),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
		LogHealthChecks:    getEnvBool("LOG_HEALTH_CHECKS", false),
		MaxUploadBytes:     getEnvInt64("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
		ProcessTimeout:     getEnvDuration("PROCESS_TIMEOUT", DefaultProcessTimeout),
		FFmpegPath:         getEnv("FFMPEG_PATH", "ffmpeg"),
		WorkDir:            getEnv("WORK_DIR", filepath.Join(os.TempDir(), "video-converter")),
		OutputNaming:       naming.ParsePolicy(getEnv("OUTPUT_NAMING", string(naming.PolicyPreserve))),
		VideoBitrate:       getEnv("VIDEO_BITRATE", ""),
		OverwriteOutput:    getEnvBool("OVERWRITE_OUTPUT", true),
		ExperimentalAudio:  getEnvBool("EXPERIMENTAL_AUDIO", true),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		CodecTableFile:     getEnv("CODEC_TABLE_FILE", ""),
		SupportedFormats:   splitList(getEnv("SUPPORTED_FORMATS", "")),
	}

	cfg.DeliveryWriteTimeout = getEnvDuration("DELIVERY_WRITE_TIMEOUT", DefaultDeliveryWriteTimeout)

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.ProcessTimeout <= 0 {
		return nil, fmt.Errorf("PROCESS_TIMEOUT must be positive, got %s", cfg.ProcessTimeout)
	}

	workDir, err := filepath.Abs(cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory path: %w", err)
	}
	cfg.WorkDir = workDir

	cat, err := buildCatalog(cfg.CodecTableFile, cfg.SupportedFormats)
	if err != nil {
		return nil, err
	}
	cfg.Catalog = cat

	exporter := strings.ToLower(getEnv("OTEL_EXPORTER", ""))
	cfg.Telemetry = telemetry.Config{
		Enabled:        exporter != "",
		ServiceName:    "video-converter",
		ServiceVersion: Version,
		ExporterType:   exporter,
		Endpoint:       getEnv("OTEL_ENDPOINT", defaultOTELEndpoint(exporter)),
		SamplingRate:   getEnvFloat("OTEL_SAMPLING_RATE", 1.0),
	}

	return cfg, nil
}

func buildCatalog(tableFile string, supported []string) (*catalog.Catalog, error) {
	cat := catalog.Default()
	if tableFile != "" {
		loaded, err := catalog.LoadFile(tableFile)
		if err != nil {
			return nil, fmt.Errorf("codec table: %w", err)
		}
		cat = loaded
	}
	if len(supported) > 0 {
		restricted, err := cat.Restrict(supported)
		if err != nil {
			return nil, fmt.Errorf("SUPPORTED_FORMATS: %w", err)
		}
		cat = restricted
	}
	return cat, nil
}

func defaultOTELEndpoint(exporter string) string {
	if exporter == "http" {
		return "localhost:4318"
	}
	return "localhost:4317"
}

// PlannerOptions maps the configuration onto planner.Options.
func (c *Config) PlannerOptions() planner.Options {
	return planner.Options{
		Overwrite:         c.OverwriteOutput,
		VideoBitrate:      c.VideoBitrate,
		ExperimentalAudio: c.ExperimentalAudio,
		Naming:            c.OutputNaming,
	}
}

// TranscoderConfig maps the configuration onto transcoder.Config.
func (c *Config) TranscoderConfig() transcoder.Config {
	tc := transcoder.DefaultConfig()
	tc.Binary = c.FFmpegPath
	tc.Timeout = c.ProcessTimeout
	return tc
}

// ConverterConfig maps the configuration onto converter.Config.
func (c *Config) ConverterConfig() converter.Config {
	return converter.Config{
		WorkDir:        c.WorkDir,
		MaxUploadBytes: c.MaxUploadBytes,
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// LogConverterInit logs converter initialization and checks FFmpeg
func LogConverterInit(trans *transcoder.Transcoder, cat *catalog.Catalog) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("CONVERTER INITIALIZATION")
	logging.Info("------------------------------------------------------------")

	for _, f := range cat.Formats() {
		logging.Debug("  %-5s video=%-11s audio=%-8s %s", f.ID, f.VideoCodec, f.AudioCodec, f.MimeType)
	}
	logging.Info("  Formats: %d supported", len(cat.IDs()))

	if err := checkFFmpeg(trans.Binary()); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Conversions will fail until %s is installed", trans.Binary())
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// LogWorkspaceSweep logs the result of removing stale workspaces.
func LogWorkspaceSweep(freed int64, err error) {
	if err != nil {
		logging.Warn("  Stale workspace sweep failed: %v", err)
		return
	}
	if freed > 0 {
		logging.Info("  [OK] Removed stale workspaces (%s)", formatBytes(freed))
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		sort.Slice(routes, func(i, j int) bool {
			if routes[i].Path != routes[j].Path {
				return routes[i].Path < routes[j].Path
			}
			return routes[i].Method < routes[j].Method
		})

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, route := range routes {
			logging.Debug("    %-7s %s", route.Method, route.Path)
		}
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	logging.Info("    Convert:       POST http://0.0.0.0:%s/convert", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
 _   _ _     _               ____                          _
| | | (_) __| | ___  ___    / ___|___  _ ____   _____ _ __| |_ ___ _ __
| | | | |/ _' |/ _ \/ _ \  | |   / _ \| '_ \ \ / / _ \ '__| __/ _ \ '__|
| |_| | | (_| |  __/ (_) | | |__| (_) | | | \ V /  __/ |  | ||  __/ |
 \___/|_|\__,_|\___|\___/   \____\___/|_| |_|\_/ \___|_|   \__\___|_|

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func checkFFmpeg(binary string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", binary)
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "-version") // #nosec G204 -- operator-configured binary
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}

	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("Invalid number for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

// getEnvDuration accepts a Go duration ("90s", "2m") or a bare number of
// seconds ("120").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
