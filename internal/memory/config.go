package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"video-converter/internal/logging"
)

const (
	// DefaultMemoryRatio is the share of the container limit given to the Go
	// heap. Encoders run as separate processes in the same cgroup and need
	// the rest.
	DefaultMemoryRatio = 0.5

	// cgroupMemoryMax is the cgroup v2 limit file for the current container.
	cgroupMemoryMax = "/sys/fs/cgroup/memory.max"
)

// Sources reported in Result.Source.
const (
	SourceGOMEMLIMIT  = "GOMEMLIMIT"
	SourceMemoryLimit = "MEMORY_LIMIT"
	SourceCgroup      = "cgroup"
	SourceNone        = "none"
)

// Result describes what ConfigureFromEnv did.
type Result struct {
	Configured     bool
	Source         string
	ContainerLimit int64
	GoMemLimit     int64
	Ratio          float64
}

// ConfigureFromEnv sets the Go soft memory limit. Call it early in main.
//
// Precedence: GOMEMLIMIT (left to the runtime), MEMORY_LIMIT in bytes, then
// the cgroup v2 memory.max of the container. MEMORY_RATIO scales the
// container limit.
func ConfigureFromEnv() Result {
	return configure(os.Getenv, cgroupMemoryMax)
}

func configure(getenv func(string) string, cgroupFile string) Result {
	if v := getenv("GOMEMLIMIT"); v != "" {
		res := Result{Source: SourceGOMEMLIMIT}
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			res.Configured = true
			res.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return res
	}

	limit, source := containerLimit(getenv, cgroupFile)
	if limit <= 0 {
		logging.Debug("No container memory limit found, GOMEMLIMIT not configured")
		return Result{Source: SourceNone}
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	goLimit := int64(float64(limit) * ratio)
	debug.SetMemoryLimit(goLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s %s limit)",
		formatBytes(goLimit), ratio*100, formatBytes(limit), source)

	return Result{
		Configured:     true,
		Source:         source,
		ContainerLimit: limit,
		GoMemLimit:     goLimit,
		Ratio:          ratio,
	}
}

func containerLimit(getenv func(string) string, cgroupFile string) (int64, string) {
	if v := getenv("MEMORY_LIMIT"); v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n <= 0 {
			logging.Warn("Ignoring invalid MEMORY_LIMIT %q", v)
		} else {
			return n, SourceMemoryLimit
		}
	}

	if cgroupFile == "" {
		return 0, SourceNone
	}
	data, err := os.ReadFile(cgroupFile)
	if err != nil {
		return 0, SourceNone
	}
	// "max" means unlimited.
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || n <= 0 {
		return 0, SourceNone
	}
	return n, SourceCgroup
}

func parseRatio(v string) float64 {
	if v == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(v, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using default %.2f", v, DefaultMemoryRatio)
		return DefaultMemoryRatio
	}
	return r
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
