package sampler

import (
	"math"
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/intensity"
	"github.com/stretchr/testify/require"
)

type seqRNG struct {
	vals []float64
	i    int
}

func (s *seqRNG) Uniform() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func TestSampleDeltaTSentinelOnNonPositiveLambda(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0.5}})
	require.Equal(t, safeDeltaT, s.SampleDeltaT(0))
	require.Equal(t, safeDeltaT, s.SampleDeltaT(-1))
	require.Equal(t, safeDeltaT, s.SampleDeltaT(math.Inf(1)))
	require.Equal(t, safeDeltaT, s.SampleDeltaT(math.NaN()))
}

func TestSampleDeltaTMatchesInverseCDF(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0.25}})
	got := s.SampleDeltaT(2.0)
	want := -math.Log(0.25) / 2.0
	require.InDelta(t, want, got, 1e-12)
}

func TestSampleDeltaTClampsExtremeU(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0}})
	got := s.SampleDeltaT(1.0)
	want := -math.Log(minU)
	require.InDelta(t, want, got, 1e-9)
}

func TestSampleTypeTraversalOrderAndBoundary(t *testing.T) {
	intens := intensity.Intensities{AddBid: 1, AddAsk: 1, CancelBid: 1, CancelAsk: 1, ExecBuy: 1, ExecSell: 1}
	// total=6. u=0 -> cum/total after ADD_BID = 1/6 > 0 => ADD_BID.
	s := NewEventSampler(&seqRNG{vals: []float64{0}})
	require.Equal(t, book.AddBid, s.SampleType(intens))

	// u exactly 1/6 is not < 1/6 (strict boundary), so it rolls to ADD_ASK.
	s2 := NewEventSampler(&seqRNG{vals: []float64{1.0 / 6.0}})
	require.Equal(t, book.AddAsk, s2.SampleType(intens))

	// u close to 1 -> EXECUTE_SELL (last bucket).
	s3 := NewEventSampler(&seqRNG{vals: []float64{0.9999999}})
	require.Equal(t, book.ExecuteSell, s3.SampleType(intens))
}

func TestSampleTypeFallsBackOnDegenerateTotal(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0.5}})
	require.Equal(t, book.AddBid, s.SampleType(intensity.Intensities{}))
}

func TestSampleIndexFromWeights(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0.5}})
	// weights [1,1,2]; total=4; cum/total = 0.25, 0.5, 1.0; u=0.5 -> index 2 (0.5 not < 0.5).
	idx := s.SampleIndexFromWeights([]float64{1, 1, 2})
	require.Equal(t, 2, idx)
}

func TestSampleIndexFromWeightsEmpty(t *testing.T) {
	s := NewEventSampler(&seqRNG{vals: []float64{0.5}})
	require.Equal(t, 0, s.SampleIndexFromWeights(nil))
}
