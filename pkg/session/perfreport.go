package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qrsdp/qrsdp/pkg/eventlog"
)

// WritePerformanceReport renders a markdown run/per-day/aggregate report to
// path, grounded on
// original_source/src/producer/session_runner.cpp's writePerformanceResults.
func WritePerformanceReport(config RunConfig, result RunResult, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("session: cannot create %s: %w", dir, err)
		}
	}

	var b []byte
	app := func(format string, args ...interface{}) {
		b = append(b, []byte(fmt.Sprintf(format, args...))...)
	}

	app("# Performance Results\n\n")
	app("Auto-generated by `qrsdp`.\n\n")

	app("## Run Configuration\n\n")
	app("| Parameter | Value |\n")
	app("|:----------|:------|\n")
	app("| run_id | %s |\n", config.RunID)
	app("| base_seed | %d |\n", config.BaseSeed)
	app("| num_days | %d |\n", config.NumDays)
	app("| session_seconds | %d |\n", config.SessionSeconds)
	app("| p0_ticks | %d |\n", config.P0Ticks)
	app("| tick_size | %d |\n", config.TickSize)
	app("| levels_per_side | %d |\n", config.LevelsPerSide)
	app("| initial_depth | %d |\n", config.InitialDepth)
	chunkCap := config.ChunkCapacity
	if chunkCap == 0 {
		chunkCap = 4096
	}
	app("| chunk_capacity | %d |\n", chunkCap)
	app("| base_L | %.1f |\n", config.IntensityParams.BaseL)
	app("| base_C | %.1f |\n", config.IntensityParams.BaseC)
	app("| base_M | %.1f |\n", config.IntensityParams.BaseM)
	app("\n")

	app("## Per-Day Results\n\n")
	app("| Date | Events | File Size | Compression | Write ev/s | Read ev/s | Write (s) | Read (s) | Open | Close |\n")
	app("|:-----|-------:|----------:|------------:|-----------:|----------:|----------:|---------:|-----:|------:|\n")

	var totalFileBytes, totalRawBytes uint64
	var totalWriteSecs, totalReadSecs float64
	for _, d := range result.Days {
		raw := d.EventsWritten * uint64(eventlog.DiskRecordSize)
		ratio := 0.0
		if d.FileSizeBytes > 0 {
			ratio = float64(raw) / float64(d.FileSizeBytes)
		}
		wEps := 0.0
		if d.WriteSeconds > 0 {
			wEps = float64(d.EventsWritten) / d.WriteSeconds
		}
		rEps := 0.0
		if d.ReadSeconds > 0 {
			rEps = float64(d.EventsWritten) / d.ReadSeconds
		}
		totalFileBytes += d.FileSizeBytes
		totalRawBytes += raw
		totalWriteSecs += d.WriteSeconds
		totalReadSecs += d.ReadSeconds

		app("| %s | %d | %d B | %.2fx | %.0f | %.0f | %.2f | %.2f | %d | %d |\n",
			d.Date, d.EventsWritten, d.FileSizeBytes, ratio, wEps, rEps,
			d.WriteSeconds, d.ReadSeconds, d.OpenTicks, d.CloseTicks)
	}

	app("\n## Aggregate\n\n")
	app("| Metric | Value |\n")
	app("|:-------|:------|\n")
	app("| Total events | %d |\n", result.TotalEvents)
	app("| Total file size | %d B (%.2f MB) |\n", totalFileBytes, float64(totalFileBytes)/(1024.0*1024.0))
	app("| Total raw size | %d B (%.2f MB) |\n", totalRawBytes, float64(totalRawBytes)/(1024.0*1024.0))
	overallRatio := 0.0
	if totalFileBytes > 0 {
		overallRatio = float64(totalRawBytes) / float64(totalFileBytes)
	}
	meanWEps := 0.0
	if totalWriteSecs > 0 {
		meanWEps = float64(result.TotalEvents) / totalWriteSecs
	}
	meanREps := 0.0
	if totalReadSecs > 0 {
		meanREps = float64(result.TotalEvents) / totalReadSecs
	}
	app("| Overall compression | %.2fx |\n", overallRatio)
	app("| Mean write throughput | %.0f events/sec |\n", meanWEps)
	app("| Mean read throughput | %.0f events/sec |\n", meanREps)
	app("| Total wall time | %.2f s |\n", result.TotalElapsedSeconds)
	app("\n")

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("session: cannot write performance report %s: %w", path, err)
	}
	return nil
}
