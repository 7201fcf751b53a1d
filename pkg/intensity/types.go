package intensity

import (
	"math"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// Intensities holds the six competing-risk rates for one book state.
type Intensities struct {
	AddBid     float64
	AddAsk     float64
	CancelBid  float64
	CancelAsk  float64
	ExecBuy    float64
	ExecSell   float64
}

// Total returns the sum of all six rates.
func (i Intensities) Total() float64 {
	return i.AddBid + i.AddAsk + i.CancelBid + i.CancelAsk + i.ExecBuy + i.ExecSell
}

// At returns the rate for a given event type, in the fixed traversal order
// ADD_BID, ADD_ASK, CANCEL_BID, CANCEL_ASK, EXECUTE_BUY, EXECUTE_SELL.
func (i Intensities) At(t book.EventType) float64 {
	switch t {
	case book.AddBid:
		return i.AddBid
	case book.AddAsk:
		return i.AddAsk
	case book.CancelBid:
		return i.CancelBid
	case book.CancelAsk:
		return i.CancelAsk
	case book.ExecuteBuy:
		return i.ExecBuy
	case book.ExecuteSell:
		return i.ExecSell
	default:
		return 0
	}
}

// State is the producer's snapshot handed to a model: derived features
// plus the full per-level depth arrays (needed by both SimpleImbalance's
// aggregate cancel sum and CurveIntensity's per-level lookups).
type State struct {
	Features  book.Features
	BidDepths []uint32
	AskDepths []uint32
}

// Model computes Intensities from book state. Implementations may
// optionally expose per-level weights for direct (type, level) sampling.
type Model interface {
	Compute(state State) Intensities
}

// PerLevelWeighted is implemented by models that can decompose their
// computed intensities into a per-(level,type) weight vector, enabling
// the sampler to draw (type, level) directly instead of type alone
// (spec.md §4.3 "Optionally expose per-(level,type) weights").
type PerLevelWeighted interface {
	PerLevelWeights() []float64
}

func clampNonNegative(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < MinIntensity {
		return MinIntensity
	}
	return x
}
