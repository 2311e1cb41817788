package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

var startedAt = time.Now()

// SysHealth is a point-in-time snapshot of the process.
type SysHealth struct {
	AllocMB       uint64 `json:"allocMb"`
	SysMB         uint64 `json:"sysMb"`
	NumGC         uint32 `json:"numGc"`
	Goroutines    int    `json:"goroutines"`
	DataDiskBytes int64  `json:"dataDiskBytes"`
	DataDiskSize  string `json:"dataDiskSize"`
	Uptime        string `json:"uptime"`
}

// GetSysHealth collects memory, goroutine and data directory figures.
func GetSysHealth(dataDir string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	size := dirSize(dataDir)
	return SysHealth{
		AllocMB:       m.Alloc / 1024 / 1024,
		SysMB:         m.Sys / 1024 / 1024,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
		DataDiskBytes: size,
		DataDiskSize:  humanBytes(size),
		Uptime:        time.Since(startedAt).Truncate(time.Second).String(),
	}
}

func dirSize(path string) int64 {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

func humanBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
