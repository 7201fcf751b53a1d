package eventlog

import "github.com/qrsdp/qrsdp/pkg/book"

// FileSink adapts a Writer to the sink.EventSink capability, translating
// in-memory book.Record (which may carry flags) to the 26-byte on-disk
// DiskRecord layout (spec.md §4.8 "BinaryFile" sink variant). Flags are
// in-memory-only and intentionally dropped at this boundary.
type FileSink struct {
	w *Writer
}

// NewFileSink opens path and wraps it as an EventSink.
func NewFileSink(path string, cfg WriterConfig) (*FileSink, error) {
	w, err := NewWriter(path, cfg)
	if err != nil {
		return nil, err
	}
	return &FileSink{w: w}, nil
}

// Append implements sink.EventSink.
func (s *FileSink) Append(rec book.Record) error {
	return s.w.Append(DiskRecord{
		TsNs:       rec.TsNs,
		Type:       uint8(rec.Type),
		Side:       uint8(rec.Side),
		PriceTicks: rec.PriceTicks,
		Qty:        rec.Qty,
		OrderID:    rec.OrderID,
	})
}

// Flush implements sink.EventSink.
func (s *FileSink) Flush() error { return s.w.Flush() }

// Close implements sink.EventSink.
func (s *FileSink) Close() error { return s.w.Close() }

// TotalRecords returns the number of records appended so far.
func (s *FileSink) TotalRecords() uint64 { return s.w.TotalRecords() }

// ChunksWritten returns the number of chunks flushed so far.
func (s *FileSink) ChunksWritten() int { return s.w.ChunksWritten() }
