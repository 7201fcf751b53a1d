package itch

import (
	"encoding/binary"
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/stretchr/testify/require"
)

func TestEncodeAddOrderRoundTrip(t *testing.T) {
	e := NewEncoder("AAPL", 1, 100)
	rec := book.Record{
		TsNs:       123456789,
		Type:       book.AddBid,
		Side:       book.SideBid,
		PriceTicks: 10000,
		Qty:        7,
		OrderID:    42,
	}
	msg, err := e.Encode(rec)
	require.NoError(t, err)
	require.Len(t, msg, AddOrderMsgSize)
	require.Equal(t, byte('A'), msg[0])
	require.Equal(t, uint16(1), binary.BigEndian.Uint16(msg[1:3]))
	require.Equal(t, uint64(42), binary.BigEndian.Uint64(msg[11:19]))
	require.Equal(t, byte('B'), msg[19])
	require.Equal(t, uint32(7), binary.BigEndian.Uint32(msg[20:24]))
	require.Equal(t, "AAPL    ", string(msg[24:32]))
	require.Equal(t, uint32(1000000), binary.BigEndian.Uint32(msg[32:36]))
}

func TestEncodeAddAskUsesSellSide(t *testing.T) {
	e := NewEncoder("MSFT", 2, 1)
	msg, err := e.Encode(book.Record{Type: book.AddAsk, PriceTicks: 5, Qty: 1, OrderID: 1})
	require.NoError(t, err)
	require.Equal(t, byte('S'), msg[19])
}

func TestEncodeOrderDelete(t *testing.T) {
	e := NewEncoder("AAPL", 1, 100)
	msg, err := e.Encode(book.Record{Type: book.CancelBid, OrderID: 99})
	require.NoError(t, err)
	require.Len(t, msg, OrderDeleteMsgSize)
	require.Equal(t, byte('D'), msg[0])
	require.Equal(t, uint64(99), binary.BigEndian.Uint64(msg[11:19]))
}

func TestEncodeOrderExecutedIncrementsMatchNumber(t *testing.T) {
	e := NewEncoder("AAPL", 1, 100)
	msg1, err := e.Encode(book.Record{Type: book.ExecuteBuy, OrderID: 1, Qty: 3})
	require.NoError(t, err)
	require.Equal(t, uint64(1), binary.BigEndian.Uint64(msg1[23:31]))

	msg2, err := e.Encode(book.Record{Type: book.ExecuteSell, OrderID: 2, Qty: 1})
	require.NoError(t, err)
	require.Equal(t, uint64(2), binary.BigEndian.Uint64(msg2[23:31]))
}

func TestEncodeSystemEventAndStockDirectorySizes(t *testing.T) {
	e := NewEncoder("AAPL", 1, 100)
	sys := e.EncodeSystemEvent(SystemEventStartOfMessages, 0)
	require.Len(t, sys, SystemEventMsgSize)
	require.Equal(t, byte('O'), sys[11])

	dir := e.EncodeStockDirectory(0)
	require.Len(t, dir, StockDirectoryMsgSize)
	require.Equal(t, "AAPL    ", string(dir[11:19]))
}

func TestMoldUDP64SequenceContinuity(t *testing.T) {
	framer := NewMoldUDP64Framer("SESSION1")
	e := NewEncoder("AAPL", 1, 100)

	var packets [][]byte
	framer.SetSendFunc(func(p []byte) {
		packets = append(packets, append([]byte(nil), p...))
	})

	for i := 0; i < 100; i++ {
		msg, err := e.Encode(book.Record{Type: book.AddBid, PriceTicks: int32(10000 + i), Qty: 1, OrderID: uint64(i + 1)})
		require.NoError(t, err)
		framer.AddMessage(msg)
	}
	if last := framer.Flush(); last != nil {
		packets = append(packets, last)
	}

	require.NotEmpty(t, packets)

	var totalMessages uint64
	var expectedSeq uint64 = 1
	for _, p := range packets {
		require.LessOrEqual(t, len(p), MoldUDP64MaxPayload)
		seq := binary.BigEndian.Uint64(p[10:18])
		count := binary.BigEndian.Uint16(p[18:20])
		require.Equal(t, expectedSeq, seq)
		expectedSeq += uint64(count)
		totalMessages += uint64(count)
	}
	require.Equal(t, uint64(100), totalMessages)
}

func TestMoldUDP64FlushEmptyReturnsNil(t *testing.T) {
	framer := NewMoldUDP64Framer("S")
	require.Nil(t, framer.Flush())
}
