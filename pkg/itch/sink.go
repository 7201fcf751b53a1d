package itch

import (
	"fmt"

	"github.com/qrsdp/qrsdp/pkg/book"
)

// Sink adapts an Encoder and a MoldUDP64Framer to the pkg/sink.EventSink
// capability, completing the streaming path spec.md §2 describes: "a
// Kafka-adjacent or streaming path feeds the ITCH encoder, whose output
// is buffered by the MoldUDP64 framer and handed to a UDP send
// callback." Append encodes one record and frames it; Flush/Close emit
// any partially-filled packet through the framer's send callback.
type Sink struct {
	encoder *Encoder
	framer  *MoldUDP64Framer
}

// NewSink builds a Sink from encoder and framer. Wire framer's send
// callback (SetSendFunc) before use, typically to a *UDPSender's Send
// method.
func NewSink(encoder *Encoder, framer *MoldUDP64Framer) *Sink {
	return &Sink{encoder: encoder, framer: framer}
}

// Append implements sink.EventSink: encode rec to ITCH bytes and add it
// to the framer, which auto-flushes a full packet through the send
// callback when MTU-bound.
func (s *Sink) Append(rec book.Record) error {
	msg, err := s.encoder.Encode(rec)
	if err != nil {
		return fmt.Errorf("itch: sink append: %w", err)
	}
	s.framer.AddMessage(msg)
	return nil
}

// Flush emits any partially-filled packet through the framer's send
// callback.
func (s *Sink) Flush() error {
	if packet := s.framer.Flush(); len(packet) > 0 && s.framer.sendFn != nil {
		s.framer.sendFn(packet)
	}
	return nil
}

// Close flushes any remaining packet. Closing the underlying UDP sender,
// if any, is the caller's responsibility.
func (s *Sink) Close() error {
	return s.Flush()
}
