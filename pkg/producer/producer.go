// Package producer drives a single trading session: sampling events from
// an intensity model and applying them to a book, grounded on
// original_source/src/qrsdp/qrsdp_producer.cpp.
package producer

import (
	"math"
	"sync/atomic"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/intensity"
	"github.com/qrsdp/qrsdp/pkg/sampler"
)

const (
	defaultInitialDepth       uint32 = 50
	defaultInitialSpreadTicks uint32 = 2
	defaultReinitDepthMean    float64 = 10
)

// kLevelHintNone mirrors the original's kLevelHintNone sentinel.
const kLevelHintNone = sampler.NoHint

// QueueReactiveParams controls post-shift depth reinitialization.
type QueueReactiveParams struct {
	ThetaReinit     float64
	ReinitDepthMean float64
}

// TradingSession parameterizes one producer run (spec.md §3).
type TradingSession struct {
	Seed                uint64
	P0Ticks             int32
	SessionSeconds      float64
	LevelsPerSide       uint32
	TickSize            int32
	InitialSpreadTicks  uint32
	InitialDepth        uint32
	QueueReactive       QueueReactiveParams
}

// SessionResult summarizes a completed session.
type SessionResult struct {
	CloseTicks    int32
	EventsWritten uint64
	ShiftCount    uint64
}

// RNGSeeder is the RNG capability the producer needs: reseed plus the
// Uniform draws the book/sampler packages require.
type RNGSeeder interface {
	book.Uniformer
	Seed(seed uint64)
}

// EventSink receives produced records.
type EventSink interface {
	Append(rec book.Record) error
}

// Producer drives one trading session end to end.
type Producer struct {
	rng              RNGSeeder
	bk               *book.Book
	model            intensity.Model
	eventSampler     *sampler.EventSampler
	attributeSampler *sampler.AttributeSampler
	shutdown         *atomic.Bool

	sessionSeconds float64
	t              float64
	orderID        uint64
	eventsWritten  uint64
	shiftCount     uint64
	thetaReinit    float64
	reinitMean     float64
}

// SetShutdownSignal installs a cooperative-cancellation flag, polled
// between events (spec.md §5 "Cancellation"). RunSession stops the
// session early once it reports true instead of only checking between
// whole sessions. s may be nil, meaning no cancellation is requested.
func (p *Producer) SetShutdownSignal(s *atomic.Bool) {
	p.shutdown = s
}

// New builds a Producer from its collaborators. eventSampler and
// attributeSampler must share rng so draws are deterministic given a
// fixed seed.
func New(rng RNGSeeder, bk *book.Book, model intensity.Model, eventSampler *sampler.EventSampler, attributeSampler *sampler.AttributeSampler) *Producer {
	return &Producer{
		rng:              rng,
		bk:               bk,
		model:            model,
		eventSampler:     eventSampler,
		attributeSampler: attributeSampler,
	}
}

// StartSession reseeds the RNG and book from session and resets counters.
func (p *Producer) StartSession(session TradingSession) {
	p.rng.Seed(session.Seed)

	initialDepth := session.InitialDepth
	if initialDepth == 0 {
		initialDepth = defaultInitialDepth
	}
	initialSpread := session.InitialSpreadTicks
	if initialSpread == 0 {
		initialSpread = defaultInitialSpreadTicks
	}
	p.bk.Seed(book.Seed{
		P0Ticks:            session.P0Ticks,
		LevelsPerSide:      session.LevelsPerSide,
		InitialDepth:       initialDepth,
		InitialSpreadTicks: initialSpread,
	})

	p.sessionSeconds = session.SessionSeconds
	p.t = 0
	p.orderID = 1
	p.eventsWritten = 0
	p.shiftCount = 0
	p.thetaReinit = session.QueueReactive.ThetaReinit
	p.reinitMean = session.QueueReactive.ReinitDepthMean
	if p.reinitMean <= 0 {
		p.reinitMean = defaultReinitDepthMean
	}
}

// StepOneEvent advances the session by one sampled event, appending it to
// sink. It returns false once the session has ended (no event appended
// in that case).
func (p *Producer) StepOneEvent(sink EventSink) (bool, error) {
	if p.t >= p.sessionSeconds {
		return false, nil
	}

	numLevels := p.bk.NumLevels()
	bidDepths := make([]uint32, numLevels)
	askDepths := make([]uint32, numLevels)
	for k := 0; k < numLevels; k++ {
		bidDepths[k] = p.bk.BidDepthAtLevel(k)
		askDepths[k] = p.bk.AskDepthAtLevel(k)
	}
	features := p.bk.Features()
	state := intensity.State{Features: features, BidDepths: bidDepths, AskDepths: askDepths}

	intens := p.model.Compute(state)
	lambdaTotal := intens.Total()

	dt := p.eventSampler.SampleDeltaT(lambdaTotal)
	p.t += dt
	if p.t >= p.sessionSeconds {
		return false, nil
	}

	var eventType book.EventType
	levelHint := kLevelHintNone
	if weighted, ok := p.model.(intensity.PerLevelWeighted); ok {
		perLevel := weighted.PerLevelWeights()
		if len(perLevel) > 0 {
			idx := p.eventSampler.SampleIndexFromWeights(perLevel)
			k := (len(perLevel) - 2) / 4
			eventType, levelHint = intensity.DecodePerLevelIndex(idx, k)
		} else {
			eventType = p.eventSampler.SampleType(intens)
		}
	} else {
		eventType = p.eventSampler.SampleType(intens)
	}

	attrs := p.attributeSampler.Sample(eventType, p.bk, features, levelHint)

	orderID := p.orderID
	p.orderID++

	prevBid := p.bk.BestBid().PriceTicks
	prevAsk := p.bk.BestAsk().PriceTicks

	p.bk.Apply(book.Event{
		Type:       eventType,
		Side:       attrs.Side,
		PriceTicks: attrs.PriceTicks,
		Qty:        attrs.Qty,
		OrderID:    orderID,
	})

	newBid := p.bk.BestBid().PriceTicks
	newAsk := p.bk.BestAsk().PriceTicks
	shiftOccurred := newBid != prevBid || newAsk != prevAsk

	var reinitHappened bool
	if shiftOccurred {
		p.shiftCount++
		if p.thetaReinit > 0 && p.rng.Uniform() < p.thetaReinit {
			p.bk.Reinitialize(p.rng, p.reinitMean)
			reinitHappened = true
		}
	}

	var flags uint32
	if newBid < prevBid {
		flags |= book.FlagShiftDown
	}
	if newAsk > prevAsk {
		flags |= book.FlagShiftUp
	}
	if reinitHappened {
		flags |= book.FlagReinit
	}

	rec := book.Record{
		TsNs:       uint64(math.Round(p.t * 1e9)),
		Type:       eventType,
		Side:       attrs.Side,
		PriceTicks: attrs.PriceTicks,
		Qty:        attrs.Qty,
		OrderID:    orderID,
		Flags:      flags,
	}
	if err := sink.Append(rec); err != nil {
		return false, err
	}
	p.eventsWritten++
	return true, nil
}

// RunSession drives a whole session start to finish.
func (p *Producer) RunSession(session TradingSession, sink EventSink) (SessionResult, error) {
	p.StartSession(session)
	for {
		if p.shutdown != nil && p.shutdown.Load() {
			break
		}
		ok, err := p.StepOneEvent(sink)
		if err != nil {
			return SessionResult{}, err
		}
		if !ok {
			break
		}
	}
	bid := p.bk.BestBid()
	ask := p.bk.BestAsk()
	return SessionResult{
		CloseTicks:    (bid.PriceTicks + ask.PriceTicks) / 2,
		EventsWritten: p.eventsWritten,
		ShiftCount:    p.shiftCount,
	}, nil
}
