package sampler

import (
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/stretchr/testify/require"
)

func seededBook() *book.Book {
	b := book.New()
	b.Seed(book.Seed{P0Ticks: 10000, LevelsPerSide: 3, InitialDepth: 5, InitialSpreadTicks: 4})
	return b
}

func TestSampleAddWithHintUsesHintLevel(t *testing.T) {
	s := NewAttributeSampler(&seqRNG{vals: []float64{0.99}}, 0.5, 0)
	b := seededBook()
	f := b.Features()
	attrs := s.Sample(book.AddBid, b, f, 1)
	require.Equal(t, book.SideBid, attrs.Side)
	require.Equal(t, b.BidPriceAtLevel(1), attrs.PriceTicks)
	require.Equal(t, uint32(1), attrs.Qty)
}

func TestSampleAddWithoutHintNoSpreadImprove(t *testing.T) {
	s := NewAttributeSampler(&seqRNG{vals: []float64{0}}, 0.5, 0)
	b := seededBook()
	f := b.Features()
	attrs := s.Sample(book.AddAsk, b, f, NoHint)
	require.Equal(t, book.SideAsk, attrs.Side)
	require.Equal(t, b.AskPriceAtLevel(0), attrs.PriceTicks)
}

func TestSampleAddSpreadImprovePlacesInsideSpread(t *testing.T) {
	// spreadImproveCoeff large and u=0 always takes the improve branch.
	s := NewAttributeSampler(&seqRNG{vals: []float64{0}}, 0.5, 1.0)
	b := seededBook()
	f := b.Features()
	require.Greater(t, f.SpreadTicks, 1)
	attrs := s.Sample(book.AddBid, b, f, NoHint)
	require.Equal(t, f.BestBidTicks+1, attrs.PriceTicks)
}

func TestSampleCancelDepthWeighted(t *testing.T) {
	s := NewAttributeSampler(&seqRNG{vals: []float64{0.99}}, 0.5, 0)
	b := seededBook()
	f := b.Features()
	attrs := s.Sample(book.CancelBid, b, f, NoHint)
	require.Equal(t, book.SideBid, attrs.Side)
}

func TestSampleExecuteUsesBestPrices(t *testing.T) {
	s := NewAttributeSampler(&seqRNG{vals: []float64{0.5}}, 0.5, 0)
	b := seededBook()
	f := b.Features()
	buy := s.Sample(book.ExecuteBuy, b, f, NoHint)
	require.Equal(t, book.SideAsk, buy.Side)
	require.Equal(t, f.BestAskTicks, buy.PriceTicks)

	sell := s.Sample(book.ExecuteSell, b, f, 7)
	require.Equal(t, book.SideBid, sell.Side)
	require.Equal(t, f.BestBidTicks, sell.PriceTicks)
}
