package producer

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/intensity"
	"github.com/qrsdp/qrsdp/pkg/rng"
	"github.com/qrsdp/qrsdp/pkg/sampler"
	"github.com/stretchr/testify/require"
)

type memSink struct {
	recs []book.Record
}

func (m *memSink) Append(rec book.Record) error {
	m.recs = append(m.recs, rec)
	return nil
}

type failingSink struct{}

func (failingSink) Append(book.Record) error { return errors.New("disk full") }

func newProducer() *Producer {
	r := rng.New(1)
	bk := book.New()
	model := intensity.NewSimpleImbalance(intensity.DefaultSimpleParams())
	es := sampler.NewEventSampler(r)
	as := sampler.NewAttributeSampler(r, 0.5, 0.1)
	return New(r, bk, model, es, as)
}

func testSession() TradingSession {
	return TradingSession{
		Seed:               12345,
		P0Ticks:            10000,
		SessionSeconds:     5,
		LevelsPerSide:      5,
		TickSize:           100,
		InitialSpreadTicks: 2,
		InitialDepth:       5,
	}
}

func TestRunSessionProducesEventsAndStops(t *testing.T) {
	p := newProducer()
	sink := &memSink{}
	result, err := p.RunSession(testSession(), sink)
	require.NoError(t, err)
	require.Equal(t, uint64(len(sink.recs)), result.EventsWritten)
	require.Greater(t, result.EventsWritten, uint64(0))
	for _, rec := range sink.recs {
		require.Less(t, rec.TsNs, uint64(5e9))
	}
}

func TestRunSessionIsDeterministic(t *testing.T) {
	p1 := newProducer()
	sink1 := &memSink{}
	_, err := p1.RunSession(testSession(), sink1)
	require.NoError(t, err)

	p2 := newProducer()
	sink2 := &memSink{}
	_, err = p2.RunSession(testSession(), sink2)
	require.NoError(t, err)

	require.Equal(t, sink1.recs, sink2.recs)
}

func TestRunSessionSurfacesSinkFailure(t *testing.T) {
	p := newProducer()
	_, err := p.RunSession(testSession(), failingSink{})
	require.Error(t, err)
}

func TestStepOneEventFalseAtSessionEnd(t *testing.T) {
	p := newProducer()
	session := testSession()
	session.SessionSeconds = 0
	p.StartSession(session)
	ok, err := p.StepOneEvent(&memSink{})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRunSessionStopsOnShutdownBetweenEvents(t *testing.T) {
	p := newProducer()
	var shutdown atomic.Bool
	shutdown.Store(true)
	p.SetShutdownSignal(&shutdown)

	result, err := p.RunSession(testSession(), &memSink{})
	require.NoError(t, err)
	require.Equal(t, uint64(0), result.EventsWritten)
}

func TestOrderIDsAreMonotonic(t *testing.T) {
	p := newProducer()
	sink := &memSink{}
	_, err := p.RunSession(testSession(), sink)
	require.NoError(t, err)
	for i := 1; i < len(sink.recs); i++ {
		require.Greater(t, sink.recs[i].OrderID, sink.recs[i-1].OrderID)
	}
}
