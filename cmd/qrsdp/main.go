// Command qrsdp drives the queue-reactive stochastic limit-order-book
// simulator end to end: parse a run configuration from flags, generate
// one binary log per security-day, and write the run's manifest.json.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/intensity"
	applog "github.com/qrsdp/qrsdp/pkg/log"
	"github.com/qrsdp/qrsdp/pkg/metrics"
	"github.com/qrsdp/qrsdp/pkg/producer"
	"github.com/qrsdp/qrsdp/pkg/session"
)

var logger = applog.NewLogger("qrsdp")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("qrsdp", flag.ContinueOnError)

	seed := fs.Uint64("seed", 12345, "base RNG seed")
	days := fs.Uint("days", 1, "number of trading days to simulate (0 = run until signaled)")
	seconds := fs.Uint("seconds", 23400, "simulated session length in seconds")
	p0 := fs.Int("p0", 10000, "opening mid price in ticks")
	output := fs.String("output", "./out", "output directory for logs and manifest.json")
	startDate := fs.String("start-date", "2024-01-02", "first session date, YYYY-MM-DD")
	chunkSize := fs.Uint("chunk-size", 4096, "records per compressed chunk")
	depth := fs.Uint("depth", 5, "initial depth per level")
	levels := fs.Uint("levels", 5, "book levels per side")
	spread := fs.Uint("initial-spread", 2, "initial spread in ticks")
	tickSize := fs.Uint("tick-size", 100, "tick size in price-4 units")
	securitiesFlag := fs.String("securities", "", "comma-separated SYM:P0 list, e.g. AAPL:15000,MSFT:30000")
	modelFlag := fs.String("model", "simple", "intensity model: simple|hlr")
	hlrCurves := fs.String("hlr-curves", "", "path to HLRParams JSON for --model hlr (default: built-in curves)")
	baseL := fs.Float64("base-l", 10, "simple model: base limit-add rate")
	baseC := fs.Float64("base-c", 0.01, "simple model: base cancel rate coefficient")
	baseM := fs.Float64("base-m", 5, "simple model: base execution rate")
	spreadSens := fs.Float64("spread-sensitivity", 0.5, "simple model: spread sensitivity")
	imbalanceSens := fs.Float64("imbalance-sensitivity", 1, "simple model: imbalance sensitivity")
	cancelSens := fs.Float64("cancel-sensitivity", 1, "simple model: cancel sensitivity")
	thetaReinit := fs.Float64("theta-reinit", 0, "probability of depth reinitialization on a shift")
	reinitDepthMean := fs.Float64("reinit-depth-mean", 5, "Poisson mean for reinitialized depths")
	marketOpen := fs.Uint("market-open-seconds", 0, "market open offset, wall-clock seconds since midnight")
	verify := fs.Bool("verify", false, "read back each file after writing and confirm record counts")
	runID := fs.String("run-id", "", "run identifier recorded in manifest.json (default: random UUID)")
	metricsPort := fs.String("metrics-port", "", "if set, serve Prometheus metrics on this port for the duration of the run")
	strict := fs.Bool("strict", false, "panic on a violated book invariant instead of clamping and logging")
	perfReport := fs.String("perf-report", "", "if set, write a markdown performance report to this path after the run")
	natsURL := fs.String("nats-url", "", "if set, additionally publish every record to this NATS server alongside the file sink")
	natsSubject := fs.String("nats-subject", "", "NATS subject to publish to (default qrsdp.events)")

	if err := fs.Parse(argv); err != nil {
		return 1
	}
	book.Strict = *strict

	modelType, hlrParams, err := resolveModel(*modelFlag, *hlrCurves, int(*levels))
	if err != nil {
		logger.Error("bad argument", "error", err)
		return 1
	}

	securities, err := parseSecurities(*securitiesFlag)
	if err != nil {
		logger.Error("bad argument", "error", err)
		return 1
	}

	id := *runID
	if id == "" {
		id = uuid.NewString()
	}

	config := session.RunConfig{
		RunID:             id,
		OutputDir:         *output,
		BaseSeed:          *seed,
		NumDays:           uint32(*days),
		SessionSeconds:    uint32(*seconds),
		StartDate:         *startDate,
		ChunkCapacity:     uint32(*chunkSize),
		MarketOpenSeconds: uint32(*marketOpen),
		Verify:            *verify,

		P0Ticks:            int32(*p0),
		TickSize:           uint32(*tickSize),
		LevelsPerSide:      uint32(*levels),
		InitialSpreadTicks: uint32(*spread),
		InitialDepth:       uint32(*depth),
		ModelType:          modelType,
		HLRParams:          hlrParams,
		IntensityParams: intensity.SimpleParams{
			BaseL:                *baseL,
			BaseC:                *baseC,
			BaseM:                *baseM,
			SpreadSensitivity:    *spreadSens,
			ImbalanceSensitivity: *imbalanceSens,
			CancelSensitivity:    *cancelSens,
			EpsilonExec:          0.05,
		},
		QueueReactive: producer.QueueReactiveParams{
			ThetaReinit:     *thetaReinit,
			ReinitDepthMean: *reinitDepthMean,
		},

		NATSURL:     *natsURL,
		NATSSubject: *natsSubject,
	}

	if len(securities) > 0 {
		for _, sec := range securities {
			config.Securities = append(config.Securities, session.SecurityConfig{
				Symbol:             sec.symbol,
				P0Ticks:            sec.p0,
				TickSize:           config.TickSize,
				LevelsPerSide:      config.LevelsPerSide,
				InitialSpreadTicks: config.InitialSpreadTicks,
				InitialDepth:       config.InitialDepth,
				IntensityParams:    config.IntensityParams,
				QueueReactive:      config.QueueReactive,
				ModelType:          config.ModelType,
				HLRParams:          config.HLRParams,
			})
		}
	}

	var shutdown atomic.Bool
	config.Shutdown = &shutdown
	installSignalHandler(&shutdown)

	if *metricsPort != "" {
		reg := metrics.New()
		config.Metrics = reg
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", reg.Handler())
			if err := http.ListenAndServe(":"+*metricsPort, mux); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "port", *metricsPort)
	}

	runner := session.NewRunner()
	result, err := runner.Run(config)
	if err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}

	logger.Info("run complete", "run_id", id, "days", len(result.Days), "events", result.TotalEvents,
		"elapsed_seconds", result.TotalElapsedSeconds)

	if *perfReport != "" {
		if err := session.WritePerformanceReport(config, result, *perfReport); err != nil {
			logger.Error("writing performance report", "error", err)
			return 1
		}
		logger.Info("performance report written", "path", *perfReport)
	}
	return 0
}

// installSignalHandler flips flag on SIGINT/SIGTERM; the session runner
// polls it between events and between sessions (spec.md §5 "Cancellation").
func installSignalHandler(flag *atomic.Bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("shutdown requested, finishing current event")
		flag.Store(true)
	}()
}

func resolveModel(name, curvesPath string, levelsPerSide int) (session.ModelType, intensity.HLRParams, error) {
	switch strings.ToLower(name) {
	case "", "simple":
		return session.ModelSimpleImbalance, intensity.HLRParams{}, nil
	case "hlr":
		if curvesPath == "" {
			return session.ModelHLR, intensity.DefaultHLRParams(levelsPerSide), nil
		}
		params, err := intensity.LoadHLRParamsFromFile(curvesPath)
		if err != nil {
			return 0, intensity.HLRParams{}, fmt.Errorf("loading --hlr-curves %s: %w", curvesPath, err)
		}
		return session.ModelHLR, params, nil
	default:
		return 0, intensity.HLRParams{}, fmt.Errorf("unknown --model %q (want simple|hlr)", name)
	}
}

type securitySpec struct {
	symbol string
	p0     int32
}

// parseSecurities parses "SYM:P0,SYM:P0,…" (spec.md §6 CLI surface).
func parseSecurities(spec string) ([]securitySpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	out := make([]securitySpec, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed --securities entry %q (want SYM:P0)", part)
		}
		p0, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed --securities entry %q: %w", part, err)
		}
		out = append(out, securitySpec{symbol: strings.TrimSpace(fields[0]), p0: int32(p0)})
	}
	return out, nil
}
