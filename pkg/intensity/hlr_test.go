package intensity

import (
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/stretchr/testify/require"
)

func TestDefaultHLRParamsShape(t *testing.T) {
	p := DefaultHLRParams(3)
	require.Equal(t, 3, p.K)
	require.Len(t, p.LambdaLBid, 3)
	require.Len(t, p.LambdaLAsk, 3)
	require.Len(t, p.LambdaCBid, 3)
	require.Len(t, p.LambdaCAsk, 3)
	require.False(t, p.LambdaMBuy.Empty())
	require.False(t, p.LambdaMSell.Empty())
}

func TestCurveIntensityComputeProducesPositiveRates(t *testing.T) {
	p := DefaultHLRParams(3)
	m := NewCurveIntensity(p)

	state := State{
		Features:  book.Features{SpreadTicks: 2, Imbalance: 0},
		BidDepths: []uint32{5, 3, 2},
		AskDepths: []uint32{5, 3, 2},
	}
	out := m.Compute(state)

	require.Greater(t, out.AddBid, 0.0)
	require.Greater(t, out.AddAsk, 0.0)
	require.Greater(t, out.CancelBid, 0.0)
	require.Greater(t, out.CancelAsk, 0.0)
	require.Greater(t, out.ExecBuy, 0.0)
	require.Greater(t, out.ExecSell, 0.0)
}

func TestCurveIntensityPerLevelWeightsLayout(t *testing.T) {
	p := DefaultHLRParams(2)
	m := NewCurveIntensity(p)
	state := State{
		Features:  book.Features{SpreadTicks: 2, Imbalance: 0},
		BidDepths: []uint32{1, 1},
		AskDepths: []uint32{1, 1},
	}
	out := m.Compute(state)
	weights := m.PerLevelWeights()
	require.Len(t, weights, 4*2+2)

	var addBidSum, addAskSum, cancelBidSum, cancelAskSum float64
	for i := 0; i < 2; i++ {
		addBidSum += weights[i]
		addAskSum += weights[2+i]
		cancelBidSum += weights[4+i]
		cancelAskSum += weights[6+i]
	}
	require.InDelta(t, out.AddBid, addBidSum, 1e-9)
	require.InDelta(t, out.AddAsk, addAskSum, 1e-9)
	require.InDelta(t, out.CancelBid, cancelBidSum, 1e-9)
	require.InDelta(t, out.CancelAsk, cancelAskSum, 1e-9)
	require.InDelta(t, out.ExecBuy, weights[8], 1e-9)
	require.InDelta(t, out.ExecSell, weights[9], 1e-9)
}

func TestDecodePerLevelIndex(t *testing.T) {
	k := 3
	cases := []struct {
		index     int
		wantType  book.EventType
		wantLevel int
	}{
		{0, book.AddBid, 0},
		{2, book.AddBid, 2},
		{3, book.AddAsk, 0},
		{6, book.CancelBid, 0},
		{9, book.CancelAsk, 0},
		{12, book.ExecuteBuy, 0},
		{13, book.ExecuteSell, 0},
	}
	for _, c := range cases {
		gotType, gotLevel := DecodePerLevelIndex(c.index, k)
		require.Equal(t, c.wantType, gotType, "index %d", c.index)
		require.Equal(t, c.wantLevel, gotLevel, "index %d", c.index)
	}
}

func TestCurveIntensityShortDepthsReturnsFloor(t *testing.T) {
	p := DefaultHLRParams(3)
	m := NewCurveIntensity(p)
	state := State{
		Features:  book.Features{SpreadTicks: 2},
		BidDepths: []uint32{1},
		AskDepths: []uint32{1},
	}
	out := m.Compute(state)
	require.Equal(t, MinIntensity, out.AddBid)
	require.Equal(t, MinIntensity, out.ExecSell)
}
