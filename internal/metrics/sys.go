package metrics

import (
	"os"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

var processStart = time.Now()

// SysHealth is a snapshot of the planner process and its usage database.
type SysHealth struct {
	AllocMB     uint64
	SysMB       uint64
	NumGC       uint32
	Goroutines  int
	Uptime      time.Duration
	UsageDBSize string
}

// GetSysHealth reads runtime memory stats and the on-disk size of the usage
// database at dbPath, including its WAL and shared-memory files.
func GetSysHealth(dbPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:     m.Alloc / 1024 / 1024,
		SysMB:       m.Sys / 1024 / 1024,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		Uptime:      time.Since(processStart).Truncate(time.Second),
		UsageDBSize: humanize.IBytes(usageDBBytes(dbPath)),
	}
}

func usageDBBytes(dbPath string) uint64 {
	var total uint64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			total += uint64(info.Size())
		}
	}
	return total
}
