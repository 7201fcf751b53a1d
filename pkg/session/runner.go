package session

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/eventlog"
	"github.com/qrsdp/qrsdp/pkg/intensity"
	"github.com/qrsdp/qrsdp/pkg/producer"
	"github.com/qrsdp/qrsdp/pkg/rng"
	"github.com/qrsdp/qrsdp/pkg/sampler"
	"github.com/qrsdp/qrsdp/pkg/sink"
)

const defaultNATSSubject = "qrsdp.events"

// fanoutSink appends to the authoritative file sink first, surfacing its
// errors as before, then best-effort publishes to NATS: a slow or
// unreachable broker must never fail the run (spec.md §1's fan-out sink
// is named but pluggable, not a hard dependency of the simulation).
type fanoutSink struct {
	file *eventlog.FileSink
	nats *sink.NATS
}

func (f fanoutSink) Append(rec book.Record) error {
	if err := f.file.Append(rec); err != nil {
		return err
	}
	if f.nats != nil {
		if err := f.nats.Append(rec); err != nil {
			log.Printf("session: nats publish failed, continuing: %v", err)
		}
	}
	return nil
}

// Runner drives one or more securities across multiple trading days.
type Runner struct{}

// NewRunner returns a Runner.
func NewRunner() *Runner { return &Runner{} }

func buildModel(modelType ModelType, params intensity.SimpleParams, hlr intensity.HLRParams, levelsPerSide uint32) intensity.Model {
	if modelType == ModelHLR {
		p := hlr
		if !p.HasCurves() {
			p = intensity.DefaultHLRParams(int(levelsPerSide))
		}
		return intensity.NewCurveIntensity(p)
	}
	return intensity.NewSimpleImbalance(params)
}

func shutdownRequested(flag *atomic.Bool) bool {
	if flag == nil {
		return false
	}
	return flag.Load()
}

// Run drives config to completion, writing one file per security-day and
// a manifest.json when done.
func (r *Runner) Run(config RunConfig) (RunResult, error) {
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return RunResult{}, fmt.Errorf("session: cannot create output dir %s: %w", config.OutputDir, err)
	}

	var natsSink *sink.NATS
	if config.NATSURL != "" {
		subject := config.NATSSubject
		if subject == "" {
			subject = defaultNATSSubject
		}
		var err error
		natsSink, err = sink.NewNATS(config.NATSURL, subject)
		if err != nil {
			return RunResult{}, err
		}
		defer natsSink.Close()
	}

	start := time.Now()
	var result RunResult

	if len(config.Securities) == 0 {
		days, err := r.runSecurityDays(config, "", config.P0Ticks, config.TickSize, config.LevelsPerSide,
			config.InitialSpreadTicks, config.InitialDepth, config.IntensityParams, config.QueueReactive,
			config.ModelType, config.HLRParams, 0, natsSink)
		if err != nil {
			return RunResult{}, err
		}
		for _, d := range days {
			result.TotalEvents += d.EventsWritten
			result.Days = append(result.Days, d)
		}
	} else {
		var wg sync.WaitGroup
		perSecDays := make([][]DayResult, len(config.Securities))
		errs := make([]error, len(config.Securities))

		for si, sec := range config.Securities {
			wg.Add(1)
			go func(si int, sec SecurityConfig) {
				defer wg.Done()
				days, err := r.runSecurityDays(config, sec.Symbol, sec.P0Ticks, sec.TickSize, sec.LevelsPerSide,
					sec.InitialSpreadTicks, sec.InitialDepth, sec.IntensityParams, sec.QueueReactive,
					sec.ModelType, sec.HLRParams, uint64(si)*seedStride, natsSink)
				perSecDays[si] = days
				errs[si] = err
			}(si, sec)
		}
		wg.Wait()

		for si, sec := range config.Securities {
			if errs[si] != nil {
				return RunResult{}, fmt.Errorf("session: security %s failed: %w", sec.Symbol, errs[si])
			}
			for _, d := range perSecDays[si] {
				result.TotalEvents += d.EventsWritten
				result.Days = append(result.Days, d)
			}
		}
	}

	result.TotalElapsedSeconds = time.Since(start).Seconds()

	if err := WriteManifest(config, result); err != nil {
		return result, err
	}
	return result, nil
}

func (r *Runner) runSecurityDays(
	config RunConfig,
	symbol string,
	p0Ticks int32,
	tickSize uint32,
	levelsPerSide uint32,
	initialSpreadTicks uint32,
	initialDepth uint32,
	intensityParams intensity.SimpleParams,
	queueReactive producer.QueueReactiveParams,
	modelType ModelType,
	hlrParams intensity.HLRParams,
	seedOffset uint64,
	natsSink *sink.NATS,
) ([]DayResult, error) {
	subDir := config.OutputDir
	if symbol != "" {
		subDir = filepath.Join(config.OutputDir, symbol)
	}
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		return nil, fmt.Errorf("session: cannot create %s: %w", subDir, err)
	}

	base := config.BaseSeed + seedOffset
	r1 := rng.New(base)
	bk := book.New()
	model := buildModel(modelType, intensityParams, hlrParams, levelsPerSide)
	evSampler := sampler.NewEventSampler(r1)
	attrSampler := sampler.NewAttributeSampler(r1, 0.5, 0.5)
	prod := producer.New(r1, bk, model, evSampler, attrSampler)
	prod.SetShutdownSignal(config.Shutdown)

	chunkCap := config.ChunkCapacity
	if chunkCap == 0 {
		chunkCap = 4096
	}

	currentDate, err := ParseDate(config.StartDate)
	if err != nil {
		return nil, err
	}
	nextP0 := p0Ticks
	marketOpenNs := uint64(config.MarketOpenSeconds) * 1_000_000_000

	var days []DayResult
	infinite := config.NumDays == 0
	for dayIdx := uint32(0); infinite || dayIdx < config.NumDays; dayIdx++ {
		if shutdownRequested(config.Shutdown) {
			break
		}

		daySeed := base + uint64(dayIdx)
		dateStr := FormatDate(currentDate)
		filename := dateStr + ".qrsdp"
		if symbol != "" {
			filename = filepath.Join(symbol, dateStr+".qrsdp")
		}
		outPath := filepath.Join(config.OutputDir, filename)

		fileSink, err := eventlog.NewFileSink(outPath, eventlog.WriterConfig{
			Seed:               daySeed,
			P0Ticks:            nextP0,
			TickSize:           tickSize,
			SessionSeconds:     config.SessionSeconds,
			LevelsPerSide:      levelsPerSide,
			InitialSpreadTicks: initialSpreadTicks,
			InitialDepth:       initialDepth,
			ChunkCapacity:      chunkCap,
			MarketOpenNs:       marketOpenNs,
		})
		if err != nil {
			return nil, err
		}

		writeStart := time.Now()
		sessionResult, err := prod.RunSession(producer.TradingSession{
			Seed:               daySeed,
			P0Ticks:            nextP0,
			SessionSeconds:     float64(config.SessionSeconds),
			LevelsPerSide:      levelsPerSide,
			TickSize:           int32(tickSize),
			InitialSpreadTicks: initialSpreadTicks,
			InitialDepth:       initialDepth,
			QueueReactive:      queueReactive,
		}, fanoutSink{file: fileSink, nats: natsSink})
		if err != nil {
			fileSink.Close()
			return nil, fmt.Errorf("session: %s %s: %w", symbol, dateStr, err)
		}
		if err := fileSink.Close(); err != nil {
			return nil, fmt.Errorf("session: %s %s: close failed: %w", symbol, dateStr, err)
		}
		writeSecs := time.Since(writeStart).Seconds()

		info, err := os.Stat(outPath)
		if err != nil {
			return nil, fmt.Errorf("session: cannot stat %s: %w", outPath, err)
		}

		if config.Metrics != nil {
			config.Metrics.RecordDay(sessionResult.EventsWritten, fileSink.ChunksWritten(), uint64(info.Size()), writeSecs)
			config.Metrics.RecordShifts(sessionResult.ShiftCount)
		}

		var readSecs float64
		if config.Verify {
			readStart := time.Now()
			reader, err := eventlog.OpenReader(outPath)
			if err != nil {
				return nil, fmt.Errorf("session: verify open %s: %w", outPath, err)
			}
			records, err := reader.ReadAll()
			reader.Close()
			if err != nil {
				return nil, fmt.Errorf("session: verify read %s: %w", outPath, err)
			}
			if uint64(len(records)) != sessionResult.EventsWritten {
				return nil, fmt.Errorf("session: read-back count mismatch for %s: got %d want %d",
					outPath, len(records), sessionResult.EventsWritten)
			}
			readSecs = time.Since(readStart).Seconds()
		}

		days = append(days, DayResult{
			Symbol:        symbol,
			Date:          dateStr,
			Filename:      filename,
			Seed:          daySeed,
			OpenTicks:     nextP0,
			CloseTicks:    sessionResult.CloseTicks,
			EventsWritten: sessionResult.EventsWritten,
			ChunksWritten: fileSink.ChunksWritten(),
			FileSizeBytes: uint64(info.Size()),
			WriteSeconds:  writeSecs,
			ReadSeconds:   readSecs,
		})

		log.Printf("session: %s %s complete: %d events in %.1fs", symbol, dateStr, sessionResult.EventsWritten, writeSecs)

		nextP0 = sessionResult.CloseTicks
		currentDate = NextBusinessDay(currentDate)
	}

	return days, nil
}
