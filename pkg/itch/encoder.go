package itch

import (
	"fmt"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// Encoder encodes event records into ITCH 5.0 binary messages for a
// single symbol, grounded on original_source/src/itch/itch_encoder.cpp.
type Encoder struct {
	symbol      [8]byte
	locate      uint16
	tickSize    uint32
	matchNumber uint64
}

// NewEncoder builds an Encoder. symbol is right-padded with spaces to 8
// bytes (truncated if longer). tickSize is in price-4 units: a tick_size
// of 100 means one tick is $0.0100.
func NewEncoder(symbol string, locate uint16, tickSize uint32) *Encoder {
	var sym [8]byte
	for i := range sym {
		sym[i] = ' '
	}
	copy(sym[:], symbol)
	return &Encoder{symbol: sym, locate: locate, tickSize: tickSize, matchNumber: 1}
}

// Encode converts rec into its ITCH message bytes: AddOrder for
// ADD_BID/ADD_ASK, OrderDelete for CANCEL_BID/CANCEL_ASK, OrderExecuted
// for EXECUTE_BUY/EXECUTE_SELL.
func (e *Encoder) Encode(rec book.Record) ([]byte, error) {
	switch rec.Type {
	case book.AddBid, book.AddAsk:
		buySell := byte('S')
		if rec.Type == book.AddBid {
			buySell = 'B'
		}
		price := uint32(rec.PriceTicks) * e.tickSize
		return encodeAddOrderMsg(e.locate, rec.TsNs, rec.OrderID, buySell, rec.Qty, e.symbol, price), nil
	case book.CancelBid, book.CancelAsk:
		return encodeOrderDeleteMsg(e.locate, rec.TsNs, rec.OrderID), nil
	case book.ExecuteBuy, book.ExecuteSell:
		msg := encodeOrderExecutedMsg(e.locate, rec.TsNs, rec.OrderID, rec.Qty, e.matchNumber)
		e.matchNumber++
		return msg, nil
	default:
		return nil, fmt.Errorf("itch: unknown event type %v", rec.Type)
	}
}

// EncodeSystemEvent encodes a System Event Message with the given code.
func (e *Encoder) EncodeSystemEvent(eventCode byte, tsNs uint64) []byte {
	return encodeSystemEventMsg(e.locate, tsNs, eventCode)
}

// EncodeStockDirectory encodes a Stock Directory Message for this symbol.
func (e *Encoder) EncodeStockDirectory(tsNs uint64) []byte {
	return encodeStockDirectoryMsg(e.locate, tsNs, e.symbol)
}

// NextMatchNumber returns the match number that will be used by the next
// EXECUTE_BUY/EXECUTE_SELL encoding.
func (e *Encoder) NextMatchNumber() uint64 { return e.matchNumber }
