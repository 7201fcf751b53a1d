package sampler

import (
	"math"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// NoHint indicates the caller has no level preference; the attribute
// sampler should pick its own level.
const NoHint = -1

// maxAttrLevels bounds how many levels the weighted-pick loops consider,
// matching original_source's kAttrSamplerMaxLevels.
const maxAttrLevels = book.MaxLevels

// AttributeSampler draws side/price/qty for a sampled event type
// (spec.md §4.5), grounded on
// original_source/src/qrsdp/unit_size_attribute_sampler.cpp, extended
// with a level hint and spread-improving placement.
type AttributeSampler struct {
	rng               Uniformer
	alpha             float64
	spreadImproveCoeff float64
}

// NewAttributeSampler builds an AttributeSampler. alpha controls the
// level-decay weight exp(-alpha*k) for unhinted adds; spreadImproveCoeff
// controls the probability of placing an add inside the spread.
func NewAttributeSampler(rng Uniformer, alpha, spreadImproveCoeff float64) *AttributeSampler {
	return &AttributeSampler{rng: rng, alpha: alpha, spreadImproveCoeff: spreadImproveCoeff}
}

// Sample draws side/price/qty (qty always 1 in the baseline model) for
// type t given the current book and features. levelHint, when not
// NoHint, pins the level for ADD_*/CANCEL_* draws (clamped to range).
// order_id is left zero; the caller assigns it.
func (s *AttributeSampler) Sample(t book.EventType, bk *book.Book, f book.Features, levelHint int) book.Attrs {
	switch t {
	case book.AddBid:
		return s.sampleAdd(bk, f, book.SideBid, levelHint)
	case book.AddAsk:
		return s.sampleAdd(bk, f, book.SideAsk, levelHint)
	case book.CancelBid:
		k := levelHint
		if k == NoHint {
			k = s.sampleCancelLevel(bk, true)
		}
		return book.Attrs{Side: book.SideBid, PriceTicks: bk.BidPriceAtLevel(k), Qty: 1}
	case book.CancelAsk:
		k := levelHint
		if k == NoHint {
			k = s.sampleCancelLevel(bk, false)
		}
		return book.Attrs{Side: book.SideAsk, PriceTicks: bk.AskPriceAtLevel(k), Qty: 1}
	case book.ExecuteBuy:
		return book.Attrs{Side: book.SideAsk, PriceTicks: f.BestAskTicks, Qty: 1}
	case book.ExecuteSell:
		return book.Attrs{Side: book.SideBid, PriceTicks: f.BestBidTicks, Qty: 1}
	default:
		return book.Attrs{Side: book.SideNA, Qty: 1}
	}
}

func (s *AttributeSampler) sampleAdd(bk *book.Book, f book.Features, side book.Side, levelHint int) book.Attrs {
	if levelHint != NoHint {
		k := levelHint
		if side == book.SideBid {
			return book.Attrs{Side: side, PriceTicks: bk.BidPriceAtLevel(k), Qty: 1}
		}
		return book.Attrs{Side: side, PriceTicks: bk.AskPriceAtLevel(k), Qty: 1}
	}

	if s.spreadImproveCoeff > 0 && f.SpreadTicks > 1 {
		p := math.Min(1, float64(f.SpreadTicks-1)*s.spreadImproveCoeff)
		if s.rng.Uniform() < p {
			if side == book.SideBid {
				return book.Attrs{Side: side, PriceTicks: f.BestBidTicks + 1, Qty: 1}
			}
			return book.Attrs{Side: side, PriceTicks: f.BestAskTicks - 1, Qty: 1}
		}
	}

	k := s.sampleLevelIndex(bk.NumLevels())
	if side == book.SideBid {
		return book.Attrs{Side: side, PriceTicks: bk.BidPriceAtLevel(k), Qty: 1}
	}
	return book.Attrs{Side: side, PriceTicks: bk.AskPriceAtLevel(k), Qty: 1}
}

// sampleLevelIndex picks level k with probability proportional to
// exp(-alpha*k) over k in [0, numLevels).
func (s *AttributeSampler) sampleLevelIndex(numLevels int) int {
	if numLevels <= 1 {
		return 0
	}
	n := numLevels
	if n > maxAttrLevels {
		n = maxAttrLevels
	}
	weights := make([]float64, n)
	var total float64
	for k := 0; k < n; k++ {
		weights[k] = math.Exp(-s.alpha * float64(k))
		total += weights[k]
	}
	if total <= 0 {
		return 0
	}
	u := s.rng.Uniform()
	var cum float64
	for k := 0; k < n; k++ {
		cum += weights[k]
		if u < cum/total {
			return k
		}
	}
	return n - 1
}

// sampleCancelLevel picks level k with probability proportional to the
// current depth at k (depth-weighted cancel placement).
func (s *AttributeSampler) sampleCancelLevel(bk *book.Book, isBid bool) int {
	n := bk.NumLevels()
	if n > maxAttrLevels {
		n = maxAttrLevels
	}
	if n == 0 {
		return 0
	}
	weights := make([]float64, n)
	var total float64
	for k := 0; k < n; k++ {
		var d uint32
		if isBid {
			d = bk.BidDepthAtLevel(k)
		} else {
			d = bk.AskDepthAtLevel(k)
		}
		weights[k] = float64(d)
		total += weights[k]
	}
	if total <= 0 {
		return 0
	}
	u := s.rng.Uniform()
	var cum float64
	for k := 0; k < n; k++ {
		cum += weights[k]
		if u < cum/total {
			return k
		}
	}
	return n - 1
}
