package sink

import (
	"errors"
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	appends int
	flushes int
	closes  int
	failAt  int
}

func (c *countingSink) Append(book.Record) error {
	c.appends++
	if c.failAt > 0 && c.appends == c.failAt {
		return errors.New("boom")
	}
	return nil
}
func (c *countingSink) Flush() error { c.flushes++; return nil }
func (c *countingSink) Close() error { c.closes++; return nil }

func TestInMemoryAppends(t *testing.T) {
	s := NewInMemory()
	require.NoError(t, s.Append(book.Record{OrderID: 1}))
	require.NoError(t, s.Append(book.Record{OrderID: 2}))
	require.Len(t, s.Records, 2)
	require.Equal(t, uint64(1), s.Records[0].OrderID)
}

func TestMultiplexForwardsToAll(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiplex(a, b)
	require.NoError(t, m.Append(book.Record{}))
	require.Equal(t, 1, a.appends)
	require.Equal(t, 1, b.appends)
}

func TestMultiplexContinuesAfterOneSinkFails(t *testing.T) {
	failing := &countingSink{failAt: 1}
	ok := &countingSink{}
	m := NewMultiplex(failing, ok)
	require.NoError(t, m.Append(book.Record{}))
	require.Equal(t, 1, ok.appends)
}

func TestMultiplexFlushAndCloseForwardToAll(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiplex(a, b)
	require.NoError(t, m.Flush())
	require.NoError(t, m.Close())
	require.Equal(t, 1, a.flushes)
	require.Equal(t, 1, b.closes)
}

// TestNewNATSFailsFastOnUnreachableServer confirms NewNATS surfaces a
// wrapped connection error instead of hanging or panicking when no
// broker is listening, without requiring a live NATS server in CI.
func TestNewNATSFailsFastOnUnreachableServer(t *testing.T) {
	_, err := NewNATS("nats://127.0.0.1:1", "qrsdp.events")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot connect to nats")
}
