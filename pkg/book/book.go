package book

import (
	"fmt"
	"log"
	"math"
)

// Strict gates the spec.md §7 "InvariantViolation" check: when true, a
// violated post-apply invariant (best_bid >= best_ask, or a price ladder
// out of order) aborts with context; depths are unsigned and cancels use
// saturatingSub, so negative depth cannot occur and is not checked;
// when false (the default), Apply clamps nothing further and only logs,
// matching the spec's release-build behavior. There is no Go equivalent
// of the original project's separate debug/release build profile, so
// this is a runtime toggle instead of a build tag.
var Strict = false

// Uniformer is the RNG capability the book needs for reinitialize: a
// uniform [0,1) source. Implemented by *rng.Source; declared locally so
// this package has no dependency on pkg/rng.
type Uniformer interface {
	Uniform() float64
}

// Book is a counts-only K-level-per-side order book. It is owned
// exclusively by a single producer for the lifetime of a session
// (spec.md §3 "Ownership").
type Book struct {
	numLevels     int
	initialDepth  uint32
	bidLevels     [MaxLevels]Level
	askLevels     [MaxLevels]Level
}

// New returns an unseeded book; callers must call Seed before use.
func New() *Book {
	return &Book{}
}

// Seed installs numLevels price levels per side around seed.P0Ticks with
// the requested initial spread and depth (spec.md §4.2).
func (b *Book) Seed(s Seed) {
	n := int(s.LevelsPerSide)
	if n > MaxLevels {
		n = MaxLevels
	}
	if n == 0 {
		n = 1
	}
	b.numLevels = n

	depth := s.InitialDepth
	if depth == 0 {
		depth = 50
	}
	b.initialDepth = depth

	spread := s.InitialSpreadTicks
	if spread == 0 {
		spread = 2
	}
	half := int32(spread / 2)

	bestBid := s.P0Ticks - half
	bestAsk := s.P0Ticks + int32(spread) - half

	for k := 0; k < n; k++ {
		b.bidLevels[k] = Level{PriceTicks: bestBid - int32(k), Depth: depth}
		b.askLevels[k] = Level{PriceTicks: bestAsk + int32(k), Depth: depth}
	}
}

// NumLevels returns the number of active levels per side.
func (b *Book) NumLevels() int { return b.numLevels }

// BestBid returns the top-of-book bid level.
func (b *Book) BestBid() Level {
	if b.numLevels == 0 {
		return Level{}
	}
	return b.bidLevels[0]
}

// BestAsk returns the top-of-book ask level.
func (b *Book) BestAsk() Level {
	if b.numLevels == 0 {
		return Level{}
	}
	return b.askLevels[0]
}

// BidPriceAtLevel returns the bid price at index k, clamped to the deepest
// level if k is out of range.
func (b *Book) BidPriceAtLevel(k int) int32 {
	if k >= b.numLevels {
		k = b.numLevels - 1
	}
	if k < 0 {
		return 0
	}
	return b.bidLevels[k].PriceTicks
}

// AskPriceAtLevel returns the ask price at index k, clamped to the deepest
// level if k is out of range.
func (b *Book) AskPriceAtLevel(k int) int32 {
	if k >= b.numLevels {
		k = b.numLevels - 1
	}
	if k < 0 {
		return 0
	}
	return b.askLevels[k].PriceTicks
}

// BidDepthAtLevel returns the depth at bid index k, or 0 if out of range.
func (b *Book) BidDepthAtLevel(k int) uint32 {
	if k < 0 || k >= b.numLevels {
		return 0
	}
	return b.bidLevels[k].Depth
}

// AskDepthAtLevel returns the depth at ask index k, or 0 if out of range.
func (b *Book) AskDepthAtLevel(k int) uint32 {
	if k < 0 || k >= b.numLevels {
		return 0
	}
	return b.askLevels[k].Depth
}

// Features derives the book statistics consumed by intensity models.
func (b *Book) Features() Features {
	if b.numLevels == 0 {
		return Features{}
	}
	bestBid := b.bidLevels[0].PriceTicks
	bestAsk := b.askLevels[0].PriceTicks
	qBid := b.bidLevels[0].Depth
	qAsk := b.askLevels[0].Depth
	spread := int(bestAsk - bestBid)
	sum := float64(qBid) + float64(qAsk) + imbalanceEps
	imbalance := (float64(qBid) - float64(qAsk)) / sum
	return Features{
		BestBidTicks: bestBid,
		BestAskTicks: bestAsk,
		QBidBest:     qBid,
		QAskBest:     qAsk,
		SpreadTicks:  spread,
		Imbalance:    imbalance,
	}
}

func (b *Book) bidIndexForPrice(priceTicks int32) int {
	if b.numLevels == 0 {
		return -1
	}
	best := b.bidLevels[0].PriceTicks
	idx := int(best - priceTicks)
	if idx < 0 || idx >= b.numLevels {
		return -1
	}
	return idx
}

func (b *Book) askIndexForPrice(priceTicks int32) int {
	if b.numLevels == 0 {
		return -1
	}
	best := b.askLevels[0].PriceTicks
	idx := int(priceTicks - best)
	if idx < 0 || idx >= b.numLevels {
		return -1
	}
	return idx
}

// Apply mutates the book according to e (spec.md §4.2). Out-of-range adds
// and cancels (e.g. a spread-improving add the attribute sampler should
// never produce) are discarded at book level, matching the original's
// silent-drop behavior.
func (b *Book) Apply(e Event) {
	switch e.Type {
	case AddBid:
		if idx := b.bidIndexForPrice(e.PriceTicks); idx >= 0 {
			b.bidLevels[idx].Depth += e.Qty
		}
	case AddAsk:
		if idx := b.askIndexForPrice(e.PriceTicks); idx >= 0 {
			b.askLevels[idx].Depth += e.Qty
		}
	case CancelBid:
		if idx := b.bidIndexForPrice(e.PriceTicks); idx >= 0 {
			b.bidLevels[idx].Depth = saturatingSub(b.bidLevels[idx].Depth, e.Qty)
		}
	case CancelAsk:
		if idx := b.askIndexForPrice(e.PriceTicks); idx >= 0 {
			b.askLevels[idx].Depth = saturatingSub(b.askLevels[idx].Depth, e.Qty)
		}
	case ExecuteBuy:
		if b.numLevels > 0 && b.askLevels[0].Depth > 0 {
			b.askLevels[0].Depth--
			if b.askLevels[0].Depth == 0 {
				b.shiftAsk()
			}
		}
	case ExecuteSell:
		if b.numLevels > 0 && b.bidLevels[0].Depth > 0 {
			b.bidLevels[0].Depth--
			if b.bidLevels[0].Depth == 0 {
				b.shiftBid()
			}
		}
	}
	b.checkInvariants()
}

// checkInvariants validates best_bid < best_ask and strictly-ordered
// price ladders (spec.md §8). In Strict mode it panics with context; by
// default it only logs, per spec.md §7's release-build clamp-and-log.
func (b *Book) checkInvariants() {
	if b.numLevels == 0 {
		return
	}
	if violation := b.firstInvariantViolation(); violation != "" {
		if Strict {
			panic(fmt.Sprintf("book: invariant violation: %s", violation))
		}
		log.Printf("book: invariant violation (clamped): %s", violation)
	}
}

func (b *Book) firstInvariantViolation() string {
	if b.bidLevels[0].PriceTicks >= b.askLevels[0].PriceTicks {
		return fmt.Sprintf("best_bid %d >= best_ask %d", b.bidLevels[0].PriceTicks, b.askLevels[0].PriceTicks)
	}
	for k := 0; k+1 < b.numLevels; k++ {
		if b.bidLevels[k].PriceTicks <= b.bidLevels[k+1].PriceTicks {
			return fmt.Sprintf("bid prices not strictly decreasing at index %d", k)
		}
		if b.askLevels[k].PriceTicks >= b.askLevels[k+1].PriceTicks {
			return fmt.Sprintf("ask prices not strictly increasing at index %d", k)
		}
	}
	return ""
}

func saturatingSub(d, qty uint32) uint32 {
	if d >= qty {
		return d - qty
	}
	return 0
}

// shiftBid telescopes the bid ladder down one index and synthesizes a new
// deepest level one tick below the old deepest price (spec.md §4.2
// "Shift semantics").
func (b *Book) shiftBid() {
	oldDeepest := b.bidLevels[b.numLevels-1].PriceTicks
	for i := 0; i+1 < b.numLevels; i++ {
		b.bidLevels[i] = b.bidLevels[i+1]
	}
	b.bidLevels[b.numLevels-1] = Level{
		PriceTicks: oldDeepest - 1,
		Depth:      b.initialDepth,
	}
}

func (b *Book) shiftAsk() {
	oldDeepest := b.askLevels[b.numLevels-1].PriceTicks
	for i := 0; i+1 < b.numLevels; i++ {
		b.askLevels[i] = b.askLevels[i+1]
	}
	b.askLevels[b.numLevels-1] = Level{
		PriceTicks: oldDeepest + 1,
		Depth:      b.initialDepth,
	}
}

// Reinitialize Poisson-samples every level's depth with mean depthMean
// (spec.md §4.2), invoked by the producer after a theta_reinit draw.
func (b *Book) Reinitialize(rng Uniformer, depthMean float64) {
	mu := depthMean
	if mu <= 0 {
		mu = float64(b.initialDepth)
	}
	for k := 0; k < b.numLevels; k++ {
		b.bidLevels[k].Depth = poissonSample(rng, mu)
		b.askLevels[k].Depth = poissonSample(rng, mu)
	}
}

// poissonSample draws from Poisson(mean) via Knuth's inversion method,
// matching original_source/src/qrsdp/multi_level_book.cpp's poissonSample.
func poissonSample(rng Uniformer, mean float64) uint32 {
	if mean <= 0 {
		return 0
	}
	if mean > 1e6 {
		return uint32(mean)
	}
	u := rng.Uniform()
	if u <= 0 || u >= 1 {
		u = 0.5
	}
	p := math.Exp(-mean)
	s := p
	var k uint32
	for u > s {
		k++
		p *= mean / float64(k)
		s += p
	}
	return k
}
