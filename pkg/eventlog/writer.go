package eventlog

import (
	"fmt"
	"os"

	"github.com/pierrec/lz4"
)

// WriterConfig parameterizes a new log file.
type WriterConfig struct {
	Seed               uint64
	P0Ticks            int32
	TickSize           uint32
	SessionSeconds     uint32
	LevelsPerSide      uint32
	InitialSpreadTicks uint32
	InitialDepth       uint32
	ChunkCapacity      uint32
	MarketOpenNs       uint64
}

// Writer is the BinaryFileSink equivalent: it buffers records, flushes
// LZ4-compressed chunks at capacity, and writes a footer index at Close
// (spec.md §4.8), grounded on
// original_source/src/io/binary_file_sink.cpp.
type Writer struct {
	f             *os.File
	chunkCapacity uint32
	buffer        []DiskRecord
	index         []IndexEntry
	totalRecords  uint64
	offset        int64
	hashTable     []int
}

// NewWriter creates path and writes the file header.
func NewWriter(path string, cfg WriterConfig) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: cannot open %s: %w", path, err)
	}
	cap := cfg.ChunkCapacity
	if cap == 0 {
		cap = defaultChunkCap
	}
	w := &Writer{f: f, chunkCapacity: cap, hashTable: make([]int, lz4HashTableSize)}

	hdr := FileHeader{
		VersionMajor:       logVersionMajor,
		VersionMinor:       logVersionMinor,
		RecordSize:         diskRecordSize,
		Seed:               cfg.Seed,
		P0Ticks:            cfg.P0Ticks,
		TickSize:           cfg.TickSize,
		SessionSeconds:     cfg.SessionSeconds,
		LevelsPerSide:      cfg.LevelsPerSide,
		InitialSpreadTicks: cfg.InitialSpreadTicks,
		InitialDepth:       cfg.InitialDepth,
		ChunkCapacity:      cap,
		HeaderFlags:        0,
		MarketOpenNs:       cfg.MarketOpenNs,
	}
	n, err := f.Write(hdr.Encode())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("eventlog: cannot write header: %w", err)
	}
	w.offset = int64(n)
	return w, nil
}

const lz4HashTableSize = 1 << 16

// Append buffers rec, flushing a chunk once the buffer reaches capacity.
func (w *Writer) Append(rec DiskRecord) error {
	w.buffer = append(w.buffer, rec)
	if uint32(len(w.buffer)) >= w.chunkCapacity {
		return w.flushChunk()
	}
	return nil
}

// Flush writes any buffered records as a final (possibly short) chunk.
func (w *Writer) Flush() error {
	if len(w.buffer) == 0 {
		return nil
	}
	return w.flushChunk()
}

// Close flushes remaining records, writes the footer index, backpatches
// the HAS_INDEX header flag, and closes the file.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := w.writeIndex(); err != nil {
		return err
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// TotalRecords returns the number of records appended so far.
func (w *Writer) TotalRecords() uint64 { return w.totalRecords }

// ChunksWritten returns the number of chunks flushed so far.
func (w *Writer) ChunksWritten() int { return len(w.index) }

func (w *Writer) flushChunk() error {
	if len(w.buffer) == 0 {
		return nil
	}
	recordCount := uint32(len(w.buffer))
	raw := make([]byte, int(recordCount)*diskRecordSize)
	for i, rec := range w.buffer {
		rec.Encode(raw[i*diskRecordSize : (i+1)*diskRecordSize])
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	n, err := lz4.CompressBlock(raw, compressed, w.hashTable)
	if err != nil {
		return fmt.Errorf("eventlog: lz4 compress failed: %w", err)
	}
	var chunkFlags uint32
	if n == 0 {
		// pierrec/lz4 declines to compress blocks it judges incompressible;
		// fall back to storing the chunk raw, flagged so the reader skips
		// LZ4 decompression for it.
		compressed = raw
		n = len(raw)
		chunkFlags = chunkFlagRaw
	} else {
		compressed = compressed[:n]
	}

	entry := IndexEntry{
		FileOffset:  uint64(w.offset),
		FirstTsNs:   w.buffer[0].TsNs,
		LastTsNs:    w.buffer[len(w.buffer)-1].TsNs,
		RecordCount: recordCount,
	}
	w.index = append(w.index, entry)

	chdr := ChunkHeader{
		UncompressedSize: uint32(len(raw)),
		CompressedSize:   uint32(len(compressed)),
		RecordCount:      recordCount,
		ChunkFlags:       chunkFlags,
		FirstTsNs:        entry.FirstTsNs,
		LastTsNs:         entry.LastTsNs,
	}

	written, err := w.f.Write(chdr.Encode())
	if err != nil {
		return fmt.Errorf("eventlog: cannot write chunk header: %w", err)
	}
	w.offset += int64(written)

	written, err = w.f.Write(compressed)
	if err != nil {
		return fmt.Errorf("eventlog: cannot write chunk payload: %w", err)
	}
	w.offset += int64(written)

	w.totalRecords += uint64(recordCount)
	w.buffer = w.buffer[:0]
	return nil
}

func (w *Writer) writeIndex() error {
	if len(w.index) == 0 {
		return nil
	}
	indexStart := w.offset

	for _, e := range w.index {
		n, err := w.f.Write(e.Encode())
		if err != nil {
			return fmt.Errorf("eventlog: cannot write index entry: %w", err)
		}
		w.offset += int64(n)
	}

	tail := IndexTail{ChunkCount: uint32(len(w.index)), IndexStartOffset: uint64(indexStart)}
	if _, err := w.f.Write(tail.Encode()); err != nil {
		return fmt.Errorf("eventlog: cannot write index tail: %w", err)
	}

	if _, err := w.f.Seek(52, 0); err != nil { // offset of FileHeader.HeaderFlags
		return fmt.Errorf("eventlog: cannot seek to header flags: %w", err)
	}
	var flagBuf [4]byte
	flagBuf[0] = byte(headerFlagHasIndex)
	if _, err := w.f.Write(flagBuf[:]); err != nil {
		return fmt.Errorf("eventlog: cannot backpatch header flags: %w", err)
	}
	if _, err := w.f.Seek(0, 2); err != nil {
		return fmt.Errorf("eventlog: cannot seek to end: %w", err)
	}
	return nil
}
