package sink

import (
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/qrsdp/qrsdp/pkg/book"
	"github.com/qrsdp/qrsdp/pkg/eventlog"
)

// NATS publishes each record as a NATS message, substituting for the
// spec's named-but-pluggable Kafka-based fan-out sink: the retrieved
// example pack carries no Kafka client but directly requires nats.go for
// exactly this fire-and-forget event fan-out shape (SPEC_FULL.md "DOMAIN
// STACK"). Records are encoded with the same 26-byte little-endian
// layout as the binary log's on-disk records, so a subscriber can decode
// with eventlog.DecodeDiskRecord.
type NATS struct {
	conn    *nats.Conn
	subject string
}

// NewNATS connects to url and builds a sink publishing to subject.
func NewNATS(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("sink: cannot connect to nats %s: %w", url, err)
	}
	return &NATS{conn: conn, subject: subject}, nil
}

// Append implements EventSink, publishing rec to the configured subject.
func (s *NATS) Append(rec book.Record) error {
	buf := make([]byte, 26)
	eventlog.DiskRecord{
		TsNs:       rec.TsNs,
		Type:       uint8(rec.Type),
		Side:       uint8(rec.Side),
		PriceTicks: rec.PriceTicks,
		Qty:        rec.Qty,
		OrderID:    rec.OrderID,
	}.Encode(buf)
	if err := s.conn.Publish(s.subject, buf); err != nil {
		return fmt.Errorf("sink: nats publish failed: %w", err)
	}
	return nil
}

// Flush implements EventSink, flushing the underlying connection.
func (s *NATS) Flush() error {
	if err := s.conn.Flush(); err != nil {
		return fmt.Errorf("sink: nats flush failed: %w", err)
	}
	return nil
}

// Close implements EventSink, draining and closing the connection.
func (s *NATS) Close() error {
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("sink: nats drain failed: %w", err)
	}
	return nil
}
