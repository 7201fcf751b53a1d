// Package sink implements the EventSink capability and its variants
// (spec.md §4.7): in-memory, best-effort multiplex fan-out, and a NATS
// fan-out sink standing in for the spec's pluggable Kafka-style sink
// (SPEC_FULL.md "DOMAIN STACK"). The chunked binary file sink lives in
// pkg/eventlog, which owns the on-disk format it implements.
package sink

import (
	"log"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// EventSink receives produced records.
type EventSink interface {
	Append(rec book.Record) error
	Flush() error
	Close() error
}

// InMemory appends records to a growable in-process slice. Intended for
// tests and short interactive runs.
type InMemory struct {
	Records []book.Record
}

// NewInMemory returns an empty InMemory sink.
func NewInMemory() *InMemory { return &InMemory{} }

// Append implements EventSink.
func (s *InMemory) Append(rec book.Record) error {
	s.Records = append(s.Records, rec)
	return nil
}

// Flush implements EventSink; a no-op for an in-memory sink.
func (s *InMemory) Flush() error { return nil }

// Close implements EventSink; a no-op for an in-memory sink.
func (s *InMemory) Close() error { return nil }

// Multiplex holds non-owning references to N sinks and forwards to each.
// A single failing sink is logged and skipped rather than aborting the
// whole fan-out (spec.md §4.7 "best-effort fan-out").
type Multiplex struct {
	sinks []EventSink
}

// NewMultiplex builds a Multiplex fanning out to sinks.
func NewMultiplex(sinks ...EventSink) *Multiplex {
	return &Multiplex{sinks: sinks}
}

// Append implements EventSink, forwarding to every held sink.
func (m *Multiplex) Append(rec book.Record) error {
	for _, s := range m.sinks {
		if err := s.Append(rec); err != nil {
			log.Printf("sink: multiplex append failed, continuing: %v", err)
		}
	}
	return nil
}

// Flush implements EventSink, flushing every held sink.
func (m *Multiplex) Flush() error {
	for _, s := range m.sinks {
		if err := s.Flush(); err != nil {
			log.Printf("sink: multiplex flush failed, continuing: %v", err)
		}
	}
	return nil
}

// Close implements EventSink, closing every held sink.
func (m *Multiplex) Close() error {
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink: multiplex close failed, continuing: %v", err)
		}
	}
	return nil
}
