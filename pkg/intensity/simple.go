package intensity

import "math"

// SimpleParams configures the SimpleImbalance model (spec.md §3 "HLRParams"
// sibling "IntensityParams", §4.3 "SimpleImbalance").
type SimpleParams struct {
	BaseL                float64
	BaseC                float64
	BaseM                float64
	SpreadSensitivity    float64
	ImbalanceSensitivity float64
	CancelSensitivity    float64
	EpsilonExec          float64
}

// DefaultSimpleParams returns base_L=10, base_C=0.01, base_M=5,
// spread/imbalance/cancel sensitivities 0.5/1/1, and the epsilon_exec
// default 0.05 per original_source/src/model/simple_imbalance_intensity.cpp.
func DefaultSimpleParams() SimpleParams {
	return SimpleParams{
		BaseL:                10,
		BaseC:                0.01,
		BaseM:                5,
		SpreadSensitivity:    0.5,
		ImbalanceSensitivity: 1,
		CancelSensitivity:    1,
		EpsilonExec:          0.05,
	}
}

// SimpleImbalance implements the closed-form intensity model of spec.md
// §4.3: add/cancel/execute rates driven by best-level imbalance and
// spread, with spread=2 as the neutral fixed point.
type SimpleImbalance struct {
	p SimpleParams
}

// NewSimpleImbalance builds a SimpleImbalance model from p.
func NewSimpleImbalance(p SimpleParams) *SimpleImbalance {
	return &SimpleImbalance{p: p}
}

// Compute implements Model.
func (m *SimpleImbalance) Compute(state State) Intensities {
	f := state.Features
	p := m.p

	imb := f.Imbalance
	if math.IsNaN(imb) {
		imb = 0
	}

	epsExec := p.EpsilonExec
	if epsExec <= 0 {
		epsExec = 0.05
	}

	spreadShift := float64(f.SpreadTicks) - 2
	addSpreadFactor := math.Exp(p.SpreadSensitivity * spreadShift)
	execSpreadFactor := math.Exp(-p.SpreadSensitivity * spreadShift)

	addBid := p.BaseL * (1 - p.ImbalanceSensitivity*imb) * addSpreadFactor
	addAsk := p.BaseL * (1 + p.ImbalanceSensitivity*imb) * addSpreadFactor
	execSell := p.BaseM * (epsExec + math.Max(p.ImbalanceSensitivity*imb, 0)) * execSpreadFactor
	execBuy := p.BaseM * (epsExec + math.Max(-p.ImbalanceSensitivity*imb, 0)) * execSpreadFactor

	var bidSum, askSum float64
	for _, d := range state.BidDepths {
		bidSum += float64(d)
	}
	for _, d := range state.AskDepths {
		askSum += float64(d)
	}
	cancelBid := p.BaseC * p.CancelSensitivity * bidSum
	cancelAsk := p.BaseC * p.CancelSensitivity * askSum

	return Intensities{
		AddBid:    clampNonNegative(addBid),
		AddAsk:    clampNonNegative(addAsk),
		CancelBid: clampNonNegative(cancelBid),
		CancelAsk: clampNonNegative(cancelAsk),
		ExecBuy:   clampNonNegative(execBuy),
		ExecSell:  clampNonNegative(execSell),
	}
}
