package session

import (
	"sync/atomic"

	"github.com/qrsdp/qrsdp/pkg/intensity"
	"github.com/qrsdp/qrsdp/pkg/metrics"
	"github.com/qrsdp/qrsdp/pkg/producer"
)

// ModelType selects which intensity model a security uses.
type ModelType int

const (
	ModelSimpleImbalance ModelType = iota
	ModelHLR
)

// seedStride spaces each security's seed range apart so concurrent
// securities never draw overlapping RNG streams (spec.md §5 "seed
// derivation").
const seedStride = 1024

// SecurityConfig parameterizes one security's multi-day run within a
// multi-security RunConfig.
type SecurityConfig struct {
	Symbol             string
	P0Ticks            int32
	TickSize           uint32
	LevelsPerSide      uint32
	InitialSpreadTicks uint32
	InitialDepth       uint32
	IntensityParams    intensity.SimpleParams
	QueueReactive      producer.QueueReactiveParams
	ModelType          ModelType
	HLRParams          intensity.HLRParams
}

// RunConfig parameterizes a full multi-day run. When Securities is
// empty, the run is single-security using the top-level fields below
// (spec.md §6 "manifest v1.0" vs "v1.1").
type RunConfig struct {
	RunID             string
	OutputDir         string
	BaseSeed          uint64
	NumDays           uint32 // 0 means run until shutdown is requested
	SessionSeconds    uint32
	StartDate         string
	ChunkCapacity     uint32
	MarketOpenSeconds uint32
	Verify            bool

	Securities []SecurityConfig

	P0Ticks            int32
	TickSize           uint32
	LevelsPerSide      uint32
	InitialSpreadTicks uint32
	InitialDepth       uint32
	IntensityParams    intensity.SimpleParams
	QueueReactive      producer.QueueReactiveParams
	ModelType          ModelType
	HLRParams          intensity.HLRParams

	// Shutdown, when non-nil, is polled between sessions and between
	// events within a session; setting it (e.g. from a signal handler)
	// stops the run gracefully after the current event.
	Shutdown *atomic.Bool

	// Metrics, when non-nil, receives per-day counters (events written,
	// shifts, chunks, write latency) for Prometheus scraping.
	Metrics *metrics.Registry

	// NATSURL, when non-empty, additionally fans out every appended
	// record to a NATS subject alongside the binary file sink (spec.md
	// §1's named-but-pluggable Kafka-style fan-out sink; see
	// pkg/sink.NATS). NATSSubject defaults to "qrsdp.events" if empty.
	NATSURL     string
	NATSSubject string
}

// DayResult records one security-day's outcome.
type DayResult struct {
	Symbol        string
	Date          string
	Filename      string
	Seed          uint64
	OpenTicks     int32
	CloseTicks    int32
	EventsWritten uint64
	ChunksWritten int
	FileSizeBytes uint64
	WriteSeconds  float64
	ReadSeconds   float64
}

// RunResult summarizes a full run.
type RunResult struct {
	Days                []DayResult
	TotalEvents         uint64
	TotalElapsedSeconds float64
}
