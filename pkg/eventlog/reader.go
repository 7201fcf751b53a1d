package eventlog

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
)

// Reader provides chunk/range/sequential access to a log file, building
// its index from the footer when present and falling back to a full
// sequential scan otherwise (spec.md §4.9), grounded on
// original_source/src/io/event_log_reader.cpp.
type Reader struct {
	f      *os.File
	Header FileHeader
	index  []IndexEntry
}

// OpenReader opens path, validates its header, and builds its index.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: cannot open %s: %w", path, err)
	}
	hdrBuf := make([]byte, fileHeaderSize)
	if _, err := io.ReadFull(f, hdrBuf); err != nil {
		f.Close()
		return nil, fmt.Errorf("eventlog: cannot read header from %s: %w", path, err)
	}
	hdr, err := DecodeFileHeader(hdrBuf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("eventlog: %s: %w", path, err)
	}
	r := &Reader{f: f, Header: hdr}
	if hdr.HasIndex() {
		if err := r.buildIndexFromFooter(); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		if err := r.buildIndexByScanning(); err != nil {
			f.Close()
			return nil, err
		}
	}
	return r, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error { return r.f.Close() }

// ChunkCount returns the number of chunks in the index.
func (r *Reader) ChunkCount() int { return len(r.index) }

// TotalRecords sums record counts across the index.
func (r *Reader) TotalRecords() uint64 {
	var total uint64
	for _, e := range r.index {
		total += uint64(e.RecordCount)
	}
	return total
}

// ReadChunk decompresses and returns the records of chunk idx.
func (r *Reader) ReadChunk(idx int) ([]DiskRecord, error) {
	if idx < 0 || idx >= len(r.index) {
		return nil, fmt.Errorf("eventlog: chunk index %d out of range [0,%d)", idx, len(r.index))
	}
	return r.decompressChunkAt(int64(r.index[idx].FileOffset))
}

// ReadRange returns all records from chunks whose [first_ts,last_ts]
// overlaps [tsStart, tsEnd].
func (r *Reader) ReadRange(tsStart, tsEnd uint64) ([]DiskRecord, error) {
	var result []DiskRecord
	for _, e := range r.index {
		if e.FirstTsNs <= tsEnd && e.LastTsNs >= tsStart {
			chunk, err := r.decompressChunkAt(int64(e.FileOffset))
			if err != nil {
				return nil, err
			}
			result = append(result, chunk...)
		}
	}
	return result, nil
}

// ReadAll returns every record in file order.
func (r *Reader) ReadAll() ([]DiskRecord, error) {
	var result []DiskRecord
	for i := range r.index {
		chunk, err := r.ReadChunk(i)
		if err != nil {
			return nil, err
		}
		result = append(result, chunk...)
	}
	return result, nil
}

func (r *Reader) buildIndexFromFooter() error {
	if _, err := r.f.Seek(-int64(indexTailSize), io.SeekEnd); err != nil {
		return fmt.Errorf("eventlog: cannot seek to index tail: %w", err)
	}
	tailBuf := make([]byte, indexTailSize)
	if _, err := io.ReadFull(r.f, tailBuf); err != nil {
		return fmt.Errorf("eventlog: cannot read index tail: %w", err)
	}
	tail, err := DecodeIndexTail(tailBuf)
	if err != nil {
		return err
	}

	if _, err := r.f.Seek(int64(tail.IndexStartOffset), io.SeekStart); err != nil {
		return fmt.Errorf("eventlog: cannot seek to index start: %w", err)
	}
	entries := make([]IndexEntry, tail.ChunkCount)
	buf := make([]byte, indexEntrySize)
	for i := range entries {
		if _, err := io.ReadFull(r.f, buf); err != nil {
			return fmt.Errorf("eventlog: cannot read index entry %d: %w", i, err)
		}
		entries[i] = DecodeIndexEntry(buf)
	}
	r.index = entries
	return nil
}

func (r *Reader) buildIndexByScanning() error {
	if _, err := r.f.Seek(fileHeaderSize, io.SeekStart); err != nil {
		return fmt.Errorf("eventlog: cannot seek to first chunk: %w", err)
	}
	var entries []IndexEntry
	for {
		offset, err := r.f.Seek(0, io.SeekCurrent)
		if err != nil {
			return fmt.Errorf("eventlog: cannot determine offset: %w", err)
		}
		hdrBuf := make([]byte, chunkHeaderSize)
		if _, err := io.ReadFull(r.f, hdrBuf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return fmt.Errorf("eventlog: cannot read chunk header while scanning: %w", err)
		}
		chdr := DecodeChunkHeader(hdrBuf)
		entries = append(entries, IndexEntry{
			FileOffset:  uint64(offset),
			FirstTsNs:   chdr.FirstTsNs,
			LastTsNs:    chdr.LastTsNs,
			RecordCount: chdr.RecordCount,
		})
		if _, err := r.f.Seek(int64(chdr.CompressedSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("eventlog: cannot skip chunk payload while scanning: %w", err)
		}
	}
	r.index = entries
	return nil
}

func (r *Reader) decompressChunkAt(offset int64) ([]DiskRecord, error) {
	if _, err := r.f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("eventlog: cannot seek to chunk at %d: %w", offset, err)
	}
	hdrBuf := make([]byte, chunkHeaderSize)
	if _, err := io.ReadFull(r.f, hdrBuf); err != nil {
		return nil, fmt.Errorf("eventlog: cannot read chunk header at %d: %w", offset, err)
	}
	chdr := DecodeChunkHeader(hdrBuf)

	compressed := make([]byte, chdr.CompressedSize)
	if _, err := io.ReadFull(r.f, compressed); err != nil {
		return nil, fmt.Errorf("eventlog: cannot read chunk payload at %d: %w", offset, err)
	}

	var raw []byte
	if chdr.ChunkFlags&chunkFlagRaw != 0 {
		raw = compressed
	} else {
		raw = make([]byte, chdr.UncompressedSize)
		n, err := lz4.UncompressBlock(compressed, raw)
		if err != nil {
			return nil, fmt.Errorf("eventlog: lz4 decompress failed at %d: %w", offset, err)
		}
		if uint32(n) != chdr.UncompressedSize {
			return nil, fmt.Errorf("eventlog: lz4 decompressed size mismatch at %d: got %d want %d", offset, n, chdr.UncompressedSize)
		}
	}

	records := make([]DiskRecord, chdr.RecordCount)
	for i := range records {
		records[i] = DecodeDiskRecord(raw[i*diskRecordSize : (i+1)*diskRecordSize])
	}
	return records, nil
}
