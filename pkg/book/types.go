// Package book implements the counts-only multi-level order book the
// producer drives. It is grounded on original_source/src/qrsdp/multi_level_book.cpp,
// carrying over its depletion-shift semantics rather than the separate
// FIFO-queue matching engine the original project also contains (out of
// scope per spec.md §1 / §9).
package book

// EventType enumerates the six competing event categories.
type EventType uint8

const (
	AddBid EventType = iota
	AddAsk
	CancelBid
	CancelAsk
	ExecuteBuy
	ExecuteSell
)

func (t EventType) String() string {
	switch t {
	case AddBid:
		return "ADD_BID"
	case AddAsk:
		return "ADD_ASK"
	case CancelBid:
		return "CANCEL_BID"
	case CancelAsk:
		return "CANCEL_ASK"
	case ExecuteBuy:
		return "EXECUTE_BUY"
	case ExecuteSell:
		return "EXECUTE_SELL"
	default:
		return "UNKNOWN"
	}
}

// Side identifies which side of the book an attribute or record refers to.
type Side uint8

const (
	SideBid Side = iota
	SideAsk
	SideNA
)

// MaxLevels bounds the per-side ladder depth (spec.md §3).
const MaxLevels = 64

// Flag bits carried on in-memory EventRecord only; never written to disk.
const (
	FlagNone      uint32 = 0
	FlagShiftUp   uint32 = 0x1
	FlagShiftDown uint32 = 0x2
	FlagReinit    uint32 = 0x4
)

// Record is the in-memory, 30-logical-byte event record (flags included).
type Record struct {
	TsNs       uint64
	Type       EventType
	Side       Side
	PriceTicks int32
	Qty        uint32
	OrderID    uint64
	Flags      uint32
}

// Seed parameterizes the initial book state.
type Seed struct {
	P0Ticks             int32
	LevelsPerSide       uint32
	InitialDepth        uint32
	InitialSpreadTicks  uint32
}

// Level is a single best-price snapshot (price, depth).
type Level struct {
	PriceTicks int32
	Depth      uint32
}

// Features are the derived, intensity-model-facing book statistics.
type Features struct {
	BestBidTicks int32
	BestAskTicks int32
	QBidBest     uint32
	QAskBest     uint32
	SpreadTicks  int
	Imbalance    float64
}

// Event is the internal, fully-resolved event applied to the book.
type Event struct {
	Type       EventType
	Side       Side
	PriceTicks int32
	Qty        uint32
	OrderID    uint64
}

// Attrs are the sampled attributes (side/price/qty/order id) for an event.
type Attrs struct {
	Side       Side
	PriceTicks int32
	Qty        uint32
	OrderID    uint64
}

// imbalanceEps matches original_source's kImbalanceEps (multi_level_book.cpp).
const imbalanceEps = 1e-9
