package api

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ServerMetrics tracks process-level runtime metrics for the stats endpoint.
type ServerMetrics struct {
	StartTime time.Time
}

func NewServerMetrics() *ServerMetrics {
	return &ServerMetrics{
		StartTime: time.Now(),
	}
}

// GetUptime returns the server uptime as a human-readable string.
func (sm *ServerMetrics) GetUptime() string {
	uptime := time.Since(sm.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// GetMemoryUsage returns the heap allocation of the process in MB.
func (sm *ServerMetrics) GetMemoryUsage() (float64, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024, nil
}

// GetCPUUsage returns the CPU usage of this process in percent. Falls back
// to a short system-wide sample when per-process metrics are unavailable.
func (sm *ServerMetrics) GetCPUUsage() (float64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// GetSystemCPUUsage returns the total CPU usage of the host in percent.
func (sm *ServerMetrics) GetSystemCPUUsage() (float64, error) {
	cpuPercents, err := cpu.Percent(time.Second, false)
	if err != nil || len(cpuPercents) == 0 {
		return 0, err
	}
	return cpuPercents[0], nil
}

// GetDetailedMemoryStats returns a breakdown of runtime memory statistics.
func (sm *ServerMetrics) GetDetailedMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"alloc_mb":       float64(m.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(m.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(m.Sys) / 1024 / 1024,
		"heap_alloc_mb":  float64(m.HeapAlloc) / 1024 / 1024,
		"heap_sys_mb":    float64(m.HeapSys) / 1024 / 1024,
		"num_gc":         m.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}
}
