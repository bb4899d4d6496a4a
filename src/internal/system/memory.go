package system

import (
	"log/slog"
	"runtime"
)

// LogMemoryUsage logs heap figures after a large allocation such as loading
// an embedding table.
func LogMemoryUsage(tag string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	slog.Debug("memory usage",
		"tag", tag,
		"alloc_mb", bToMb(m.Alloc),
		"sys_mb", bToMb(m.Sys),
		"num_gc", m.NumGC,
	)
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
