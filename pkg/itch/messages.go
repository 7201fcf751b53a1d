// Package itch encodes event records as ITCH 5.0 messages and frames them
// into MoldUDP64 packets, grounded on
// original_source/src/itch/itch_messages.h,
// original_source/src/itch/itch_encoder.cpp and
// original_source/src/itch/moldudp64.cpp. All multi-byte fields are
// big-endian on the wire, matching the NASDAQ ITCH 5.0 specification.
package itch

import "encoding/binary"

const (
	MsgTypeSystemEvent    = 'S'
	MsgTypeStockDirectory = 'R'
	MsgTypeAddOrder       = 'A'
	MsgTypeOrderDelete    = 'D'
	MsgTypeOrderExecuted  = 'E'
)

const (
	SystemEventStartOfMessages = 'O'
	SystemEventStartOfSystem   = 'S'
	SystemEventStartOfMarket   = 'Q'
	SystemEventEndOfMarket     = 'M'
	SystemEventEndOfMessages   = 'E'
	SystemEventHalt            = 'A'
)

const (
	SystemEventMsgSize    = 12
	StockDirectoryMsgSize = 39
	AddOrderMsgSize       = 36
	OrderDeleteMsgSize    = 19
	OrderExecutedMsgSize  = 31
)

func store48be(buf []byte, v uint64) {
	buf[0] = byte(v >> 40)
	buf[1] = byte(v >> 32)
	buf[2] = byte(v >> 24)
	buf[3] = byte(v >> 16)
	buf[4] = byte(v >> 8)
	buf[5] = byte(v)
}

// encodeSystemEventMsg builds a 12-byte System Event Message.
func encodeSystemEventMsg(locate uint16, tsNs uint64, eventCode byte) []byte {
	buf := make([]byte, SystemEventMsgSize)
	buf[0] = MsgTypeSystemEvent
	binary.BigEndian.PutUint16(buf[1:3], locate)
	binary.BigEndian.PutUint16(buf[3:5], 0)
	store48be(buf[5:11], tsNs)
	buf[11] = eventCode
	return buf
}

// encodeStockDirectoryMsg builds a 39-byte Stock Directory Message with
// the fixed field defaults the original CLI uses for synthetic symbols.
func encodeStockDirectoryMsg(locate uint16, tsNs uint64, symbol [8]byte) []byte {
	buf := make([]byte, StockDirectoryMsgSize)
	buf[0] = MsgTypeStockDirectory
	binary.BigEndian.PutUint16(buf[1:3], locate)
	binary.BigEndian.PutUint16(buf[3:5], 0)
	store48be(buf[5:11], tsNs)
	copy(buf[11:19], symbol[:])
	buf[19] = 'Q' // market_category: NASDAQ Global Select
	buf[20] = 'N' // financial_status: Normal
	binary.BigEndian.PutUint32(buf[21:25], 100) // round_lot_size
	buf[25] = 'N'                               // round_lots_only
	buf[26] = 'A'                               // issue_classification
	buf[27] = 'Z'                                // issue_sub_type[0]
	buf[28] = ' '                                // issue_sub_type[1]
	buf[29] = 'P'                                // authenticity: Production
	buf[30] = 'N'                                // short_sale_threshold
	buf[31] = ' '                                // ipo_flag
	buf[32] = ' '                                // luld_ref_price_tier
	buf[33] = 'N'                                // etp_flag
	binary.BigEndian.PutUint32(buf[34:38], 0)    // etp_leverage_factor
	buf[38] = 'N'                                // inverse_indicator
	return buf
}

// encodeAddOrderMsg builds a 36-byte Add Order Message (No MPID Attribution).
func encodeAddOrderMsg(locate uint16, tsNs uint64, orderRef uint64, buySell byte, shares uint32, symbol [8]byte, price uint32) []byte {
	buf := make([]byte, AddOrderMsgSize)
	buf[0] = MsgTypeAddOrder
	binary.BigEndian.PutUint16(buf[1:3], locate)
	binary.BigEndian.PutUint16(buf[3:5], 0)
	store48be(buf[5:11], tsNs)
	binary.BigEndian.PutUint64(buf[11:19], orderRef)
	buf[19] = buySell
	binary.BigEndian.PutUint32(buf[20:24], shares)
	copy(buf[24:32], symbol[:])
	binary.BigEndian.PutUint32(buf[32:36], price)
	return buf
}

// encodeOrderDeleteMsg builds a 19-byte Order Delete Message.
func encodeOrderDeleteMsg(locate uint16, tsNs uint64, orderRef uint64) []byte {
	buf := make([]byte, OrderDeleteMsgSize)
	buf[0] = MsgTypeOrderDelete
	binary.BigEndian.PutUint16(buf[1:3], locate)
	binary.BigEndian.PutUint16(buf[3:5], 0)
	store48be(buf[5:11], tsNs)
	binary.BigEndian.PutUint64(buf[11:19], orderRef)
	return buf
}

// encodeOrderExecutedMsg builds a 31-byte Order Executed Message.
func encodeOrderExecutedMsg(locate uint16, tsNs uint64, orderRef uint64, executedShares uint32, matchNumber uint64) []byte {
	buf := make([]byte, OrderExecutedMsgSize)
	buf[0] = MsgTypeOrderExecuted
	binary.BigEndian.PutUint16(buf[1:3], locate)
	binary.BigEndian.PutUint16(buf[3:5], 0)
	store48be(buf[5:11], tsNs)
	binary.BigEndian.PutUint64(buf[11:19], orderRef)
	binary.BigEndian.PutUint32(buf[19:23], executedShares)
	binary.BigEndian.PutUint64(buf[23:31], matchNumber)
	return buf
}
