package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/qrsdp/qrsdp/pkg/eventlog"
	"github.com/qrsdp/qrsdp/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func TestNextBusinessDaySkipsWeekend(t *testing.T) {
	// 2024-01-05 is a Friday.
	friday, err := ParseDate("2024-01-05")
	require.NoError(t, err)
	require.Equal(t, 5, DayOfWeek(friday))

	next := NextBusinessDay(friday)
	require.Equal(t, "2024-01-08", FormatDate(next))
	require.Equal(t, 1, DayOfWeek(next))
}

func TestParseDateRejectsMalformed(t *testing.T) {
	_, err := ParseDate("01/05/2024")
	require.Error(t, err)
}

func TestWriteManifestSingleSecurity(t *testing.T) {
	dir := t.TempDir()
	config := RunConfig{
		RunID: "run-1", OutputDir: dir, BaseSeed: 42,
		SessionSeconds: 100, TickSize: 100, P0Ticks: 10000,
		LevelsPerSide: 5, InitialSpreadTicks: 2, InitialDepth: 5,
	}
	result := RunResult{
		Days: []DayResult{{Date: "2024-01-02", Seed: 42, Filename: "2024-01-02.qrsdp", EventsWritten: 10}},
		TotalEvents: 10,
	}
	require.NoError(t, WriteManifest(config, result))

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "1.0", decoded["format_version"])
	require.Equal(t, "qrsdp", decoded["producer"])
	require.Equal(t, "sequential", decoded["seed_strategy"])
	sessions := decoded["sessions"].([]interface{})
	require.Len(t, sessions, 1)
}

func TestWriteManifestMultiSecurity(t *testing.T) {
	dir := t.TempDir()
	config := RunConfig{
		RunID: "run-2", OutputDir: dir, BaseSeed: 1,
		SessionSeconds: 100,
		Securities: []SecurityConfig{
			{Symbol: "AAPL", P0Ticks: 15000},
			{Symbol: "MSFT", P0Ticks: 30000},
		},
	}
	result := RunResult{
		Days: []DayResult{
			{Symbol: "AAPL", Date: "2024-01-02", Seed: 1, Filename: "AAPL/2024-01-02.qrsdp"},
			{Symbol: "MSFT", Date: "2024-01-02", Seed: 1025, Filename: "MSFT/2024-01-02.qrsdp"},
		},
	}
	require.NoError(t, WriteManifest(config, result))

	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)

	// "securities" must appear before any per-security "sessions" key
	// (spec.md §6 manifest v1.1 ordering requirement).
	secIdx := indexOf(string(data), `"securities"`)
	sessIdx := indexOf(string(data), `"sessions"`)
	require.Greater(t, secIdx, 0)
	require.Greater(t, sessIdx, secIdx)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, "1.1", decoded["format_version"])
	secs := decoded["securities"].([]interface{})
	require.Len(t, secs, 2)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestRunnerProducesFileAndManifest(t *testing.T) {
	dir := t.TempDir()
	config := RunConfig{
		RunID: "run-3", OutputDir: dir, BaseSeed: 12345,
		NumDays: 2, SessionSeconds: 2, StartDate: "2024-01-02",
		ChunkCapacity: 64, P0Ticks: 10000, TickSize: 100,
		LevelsPerSide: 5, InitialSpreadTicks: 2, InitialDepth: 5,
		Verify: true,
	}

	result, err := NewRunner().Run(config)
	require.NoError(t, err)
	require.Len(t, result.Days, 2)
	require.Equal(t, "2024-01-02", result.Days[0].Date)
	require.Equal(t, "2024-01-03", result.Days[1].Date)
	// Day 2 opens where day 1 closed (price chaining).
	require.Equal(t, result.Days[0].CloseTicks, result.Days[1].OpenTicks)

	reader, err := eventlog.OpenReader(filepath.Join(dir, result.Days[0].Filename))
	require.NoError(t, err)
	defer reader.Close()
	records, err := reader.ReadAll()
	require.NoError(t, err)
	require.Equal(t, result.Days[0].EventsWritten, uint64(len(records)))

	_, err = os.Stat(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
}

func TestRunnerStopsBetweenDaysOnShutdown(t *testing.T) {
	dir := t.TempDir()
	var shutdown atomic.Bool
	shutdown.Store(true)
	config := RunConfig{
		RunID: "run-5", OutputDir: dir, BaseSeed: 1,
		NumDays: 5, SessionSeconds: 2, StartDate: "2024-01-02",
		ChunkCapacity: 64, P0Ticks: 10000, TickSize: 100,
		LevelsPerSide: 5, InitialSpreadTicks: 2, InitialDepth: 5,
		Shutdown: &shutdown,
	}
	result, err := NewRunner().Run(config)
	require.NoError(t, err)
	require.Empty(t, result.Days)
}

func TestWritePerformanceReportRendersTables(t *testing.T) {
	dir := t.TempDir()
	config := RunConfig{
		RunID: "run-6", BaseSeed: 42, NumDays: 1, SessionSeconds: 100,
		P0Ticks: 10000, TickSize: 100, LevelsPerSide: 5,
	}
	result := RunResult{
		Days: []DayResult{{
			Date: "2024-01-02", EventsWritten: 10, FileSizeBytes: 200,
			WriteSeconds: 0.1, OpenTicks: 10000, CloseTicks: 10010,
		}},
		TotalEvents:         10,
		TotalElapsedSeconds: 0.1,
	}

	path := filepath.Join(dir, "perf.md")
	require.NoError(t, WritePerformanceReport(config, result, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	report := string(data)
	require.True(t, strings.Contains(report, "# Performance Results"))
	require.True(t, strings.Contains(report, "2024-01-02"))
	require.True(t, strings.Contains(report, "run-6"))
}

func TestRunnerWithMetricsRecordsCounters(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.New()
	config := RunConfig{
		RunID: "run-4", OutputDir: dir, BaseSeed: 7,
		NumDays: 1, SessionSeconds: 1, StartDate: "2024-01-02",
		ChunkCapacity: 64, P0Ticks: 10000, TickSize: 100,
		LevelsPerSide: 5, InitialSpreadTicks: 2, InitialDepth: 5,
		Metrics: reg,
	}
	result, err := NewRunner().Run(config)
	require.NoError(t, err)
	require.Len(t, result.Days, 1)
}
