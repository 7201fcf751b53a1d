package intensity

import (
	"math"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// HLRParams holds the per-level curves and scalar sensitivities of the
// queue-reactive (Huang-Lehalle-Rosenbaum-style) model (spec.md §3).
type HLRParams struct {
	K                    int
	NMax                 int
	SpreadSensitivity    float64
	ImbalanceSensitivity float64
	LambdaLBid           []Curve
	LambdaLAsk           []Curve
	LambdaCBid           []Curve
	LambdaCAsk           []Curve
	LambdaMBuy           Curve
	LambdaMSell          Curve
}

// HasCurves reports whether p carries any per-level curve data.
func (p HLRParams) HasCurves() bool {
	return p.K > 0 && len(p.LambdaLBid) > 0
}

// DefaultHLRParams builds a reasonable default curve set for K levels,
// grounded on original_source/src/qrsdp/hlr_params.cpp's makeDefaultHLRParams:
// adds flat except lower at the best level, deeper adds decaying with n,
// cancels increasing-concave, and market orders decaying with opposite
// best depth. This resolves the HLR-without-curves-file Open Question
// (spec.md §9) the same way the original CLI does.
func DefaultHLRParams(k int) HLRParams {
	if k < 1 {
		k = 1
	}
	nMax := 20

	addBest := func(n int) float64 {
		if n == 0 {
			return 2.0
		}
		return 5.0
	}
	addDeeper := func(n int) float64 {
		return 4.0 / (1.0 + 0.1*float64(n))
	}
	cancelCurve := func(n int) float64 {
		if n == 0 {
			return 0.0
		}
		return 0.05*math.Sqrt(float64(n)) + 0.02*float64(n)
	}
	marketCurve := func(n int) float64 {
		if n == 0 {
			return 0.5
		}
		return 2.0 / (1.0 + 0.2*float64(n))
	}

	makeTable := func(f func(int) float64) []float64 {
		t := make([]float64, nMax+1)
		for n := 0; n <= nMax; n++ {
			t[n] = math.Max(0, f(n))
		}
		return t
	}

	p := HLRParams{K: k, NMax: nMax, SpreadSensitivity: 0.5, ImbalanceSensitivity: 1}
	p.LambdaLBid = make([]Curve, k)
	p.LambdaLAsk = make([]Curve, k)
	p.LambdaCBid = make([]Curve, k)
	p.LambdaCAsk = make([]Curve, k)
	for i := 0; i < k; i++ {
		addFn := addDeeper
		if i == 0 {
			addFn = addBest
		}
		addTable := makeTable(addFn)
		cancelTable := makeTable(cancelCurve)
		p.LambdaLBid[i] = NewCurve(addTable, TailFlat)
		p.LambdaLAsk[i] = NewCurve(addTable, TailFlat)
		p.LambdaCBid[i] = NewCurve(cancelTable, TailFlat)
		p.LambdaCAsk[i] = NewCurve(cancelTable, TailFlat)
	}
	marketTable := makeTable(marketCurve)
	p.LambdaMBuy = NewCurve(marketTable, TailFlat)
	p.LambdaMSell = NewCurve(marketTable, TailFlat)
	return p
}

// CurveIntensity implements the per-level HLR intensity model (spec.md
// §4.3 "CurveIntensity (HLR)"), grounded on
// original_source/src/model/curve_intensity_model.cpp (the richer sibling
// of src/qrsdp/curve_intensity_model.cpp, which omits the aggregate
// imbalance and spread feedback this port carries).
type CurveIntensity struct {
	p          HLRParams
	lastPerLvl []float64
}

// NewCurveIntensity builds a CurveIntensity model from p.
func NewCurveIntensity(p HLRParams) *CurveIntensity {
	return &CurveIntensity{p: p, lastPerLvl: make([]float64, 4*p.K+2)}
}

// Compute implements Model.
func (m *CurveIntensity) Compute(state State) Intensities {
	k := m.p.K
	if len(state.BidDepths) < k || len(state.AskDepths) < k {
		return Intensities{
			AddBid: MinIntensity, AddAsk: MinIntensity,
			CancelBid: MinIntensity, CancelAsk: MinIntensity,
			ExecBuy: MinIntensity, ExecSell: MinIntensity,
		}
	}

	perLvl := make([]float64, 4*k+2)
	var addBid, addAsk, cancelBid, cancelAsk float64

	for i := 0; i < k; i++ {
		nBid := state.BidDepths[i]
		nAsk := state.AskDepths[i]

		var lb, la, cb, ca float64
		if i < len(m.p.LambdaLBid) {
			lb = m.p.LambdaLBid[i].Value(nBid)
		}
		if i < len(m.p.LambdaLAsk) {
			la = m.p.LambdaLAsk[i].Value(nAsk)
		}
		if i < len(m.p.LambdaCBid) {
			cb = m.p.LambdaCBid[i].Value(nBid)
		}
		if i < len(m.p.LambdaCAsk) {
			ca = m.p.LambdaCAsk[i].Value(nAsk)
		}

		addBid += lb
		addAsk += la
		cancelBid += cb
		cancelAsk += ca

		perLvl[i] = lb
		perLvl[k+i] = la
		perLvl[2*k+i] = cb
		perLvl[3*k+i] = ca
	}

	spreadShift := float64(state.Features.SpreadTicks) - 2
	addSpreadFactor := math.Exp(m.p.SpreadSensitivity * spreadShift)
	execSpreadFactor := math.Exp(-m.p.SpreadSensitivity * spreadShift)
	addBid *= addSpreadFactor
	addAsk *= addSpreadFactor
	for i := 0; i < 2*k; i++ {
		perLvl[i] *= addSpreadFactor
	}

	// Aggregate imbalance over all K levels, not just best-level depth:
	// spec.md §4.3 "with total depth and aggregate imbalance", matching
	// original_source/src/model/curve_intensity_model.cpp summing
	// total_bid/total_ask across every level before computing imbalance.
	var totalBid, totalAsk float64
	for i := 0; i < k; i++ {
		totalBid += float64(state.BidDepths[i])
		totalAsk += float64(state.AskDepths[i])
	}
	var imb float64
	if sum := totalBid + totalAsk; sum > 0 {
		imb = (totalBid - totalAsk) / sum
	}
	imbFactorBuy := 1 + m.p.ImbalanceSensitivity*math.Max(-imb, 0)
	imbFactorSell := 1 + m.p.ImbalanceSensitivity*math.Max(imb, 0)

	execBuy := m.p.LambdaMBuy.Value(state.AskDepths[0]) * execSpreadFactor * imbFactorBuy
	execSell := m.p.LambdaMSell.Value(state.BidDepths[0]) * execSpreadFactor * imbFactorSell

	perLvl[4*k] = execBuy
	perLvl[4*k+1] = execSell
	m.lastPerLvl = perLvl

	return Intensities{
		AddBid:    math.Max(addBid, MinIntensity),
		AddAsk:    math.Max(addAsk, MinIntensity),
		CancelBid: math.Max(cancelBid, MinIntensity),
		CancelAsk: math.Max(cancelAsk, MinIntensity),
		ExecBuy:   math.Max(execBuy, MinIntensity),
		ExecSell:  math.Max(execSell, MinIntensity),
	}
}

// PerLevelWeights implements PerLevelWeighted, returning the decomposition
// computed by the most recent Compute call, laid out as
// [add_bid[0..K), add_ask[0..K), cancel_bid[0..K), cancel_ask[0..K), exec_buy, exec_sell].
func (m *CurveIntensity) PerLevelWeights() []float64 {
	return m.lastPerLvl
}

// DecodePerLevelIndex maps an index into the per-level weight vector back
// to (event type, level hint), per spec.md §4.3's layout and
// original_source/src/qrsdp/curve_intensity_model.cpp's decodePerLevelIndex.
func DecodePerLevelIndex(index, k int) (book.EventType, int) {
	switch {
	case index < k:
		return book.AddBid, index
	case index < 2*k:
		return book.AddAsk, index - k
	case index < 3*k:
		return book.CancelBid, index - 2*k
	case index < 4*k:
		return book.CancelAsk, index - 3*k
	case index == 4*k:
		return book.ExecuteBuy, 0
	default:
		return book.ExecuteSell, 0
	}
}
