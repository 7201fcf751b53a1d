package itch

import (
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/stretchr/testify/require"
)

func TestSinkAppendEncodesAndFrames(t *testing.T) {
	framer := NewMoldUDP64Framer("SESSION1")
	var packets [][]byte
	framer.SetSendFunc(func(p []byte) {
		packets = append(packets, append([]byte(nil), p...))
	})

	s := NewSink(NewEncoder("AAPL", 1, 100), framer)
	require.NoError(t, s.Append(book.Record{Type: book.AddBid, PriceTicks: 10050, Qty: 10, OrderID: 42}))
	require.Equal(t, uint16(1), framer.PendingMessageCount())

	require.NoError(t, s.Close())
	require.Len(t, packets, 1)
	require.Equal(t, uint16(1), binaryBE16(packets[0][18:20]))
}

func TestSinkAppendRejectsUnknownType(t *testing.T) {
	framer := NewMoldUDP64Framer("SESSION1")
	s := NewSink(NewEncoder("AAPL", 1, 100), framer)
	err := s.Append(book.Record{Type: book.EventType(99)})
	require.Error(t, err)
}

func binaryBE16(b []byte) uint16 {
	return uint16(b[0])<<8 | uint16(b[1])
}
