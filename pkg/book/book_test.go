package book

import "testing"

func seeded() *Book {
	b := New()
	b.Seed(Seed{P0Ticks: 10000, LevelsPerSide: 3, InitialDepth: 1, InitialSpreadTicks: 2})
	return b
}

func TestSeedInvariants(t *testing.T) {
	b := seeded()
	bid := b.BestBid()
	ask := b.BestAsk()
	if bid.PriceTicks != 9999 {
		t.Fatalf("best bid = %d, want 9999", bid.PriceTicks)
	}
	if ask.PriceTicks != 10001 {
		t.Fatalf("best ask = %d, want 10001", ask.PriceTicks)
	}
	if bid.PriceTicks >= ask.PriceTicks {
		t.Fatalf("invariant violated: best_bid < best_ask")
	}
}

func TestShiftOnDepletion(t *testing.T) {
	b := seeded()
	// Apply EXECUTE_SELL at best bid (9999, depth 1): depletes to 0, shifts.
	b.Apply(Event{Type: ExecuteSell, Side: SideBid, PriceTicks: 9999, Qty: 1})

	bid := b.BestBid()
	if bid.PriceTicks != 9998 {
		t.Fatalf("after shift, best bid = %d, want 9998", bid.PriceTicks)
	}
	if bid.Depth != 1 {
		t.Fatalf("after shift, best bid depth = %d, want 1", bid.Depth)
	}
	ask := b.BestAsk()
	if bid.PriceTicks >= ask.PriceTicks {
		t.Fatalf("invariant violated after shift: best_bid < best_ask")
	}
	// Deeper levels should have shifted and re-priced accordingly.
	if b.BidPriceAtLevel(1) != 9997 {
		t.Fatalf("level 1 bid price = %d, want 9997", b.BidPriceAtLevel(1))
	}
}

func TestCancelSaturatesAtZero(t *testing.T) {
	b := seeded()
	b.Apply(Event{Type: CancelBid, Side: SideBid, PriceTicks: 9999, Qty: 100})
	if d := b.BidDepthAtLevel(0); d != 0 {
		t.Fatalf("depth after over-cancel = %d, want 0", d)
	}
}

func TestAddOutOfRangeDiscarded(t *testing.T) {
	b := seeded()
	before := b.BidDepthAtLevel(0)
	// 20000 is nowhere near any level for this book; should be a no-op.
	b.Apply(Event{Type: AddBid, Side: SideBid, PriceTicks: 20000, Qty: 5})
	if after := b.BidDepthAtLevel(0); after != before {
		t.Fatalf("out-of-range add mutated book: %d != %d", after, before)
	}
}

func TestFeaturesImbalance(t *testing.T) {
	b := seeded()
	f := b.Features()
	// Equal depths at best (1 vs 1) => imbalance ~ 0.
	if f.Imbalance < -1e-6 || f.Imbalance > 1e-6 {
		t.Fatalf("imbalance = %v, want ~0", f.Imbalance)
	}
	if f.SpreadTicks != 2 {
		t.Fatalf("spread = %d, want 2", f.SpreadTicks)
	}
}

func TestReinitializeKeepsLevelCount(t *testing.T) {
	b := seeded()
	b.Reinitialize(constRNG{u: 0.999999}, 5.0)
	if b.NumLevels() != 3 {
		t.Fatalf("reinitialize changed level count: %d", b.NumLevels())
	}
}

type constRNG struct{ u float64 }

func (c constRNG) Uniform() float64 { return c.u }
