// Package memory sizes the Go runtime's soft memory limit for containers.
//
// Unlike GOMAXPROCS, GOMEMLIMIT is not derived from cgroup limits by the
// runtime. The converter shares its container with FFmpeg processes, so
// only part of the limit is handed to the Go heap:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ...
//	}
//
// # Environment Variables
//
//   - GOMEMLIMIT: standard Go variable; when set nothing else is consulted.
//   - MEMORY_LIMIT: container limit in bytes, typically from the Kubernetes
//     Downward API (resources.limits.memory).
//   - MEMORY_RATIO: share of the container limit for the heap, in (0, 1].
//     Default 0.5.
//
// Without MEMORY_LIMIT the cgroup v2 file /sys/fs/cgroup/memory.max is
// read; "max" leaves the runtime unlimited.
package memory
