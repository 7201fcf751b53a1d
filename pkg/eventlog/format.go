// Package eventlog implements the chunked, LZ4-compressed, footer-indexed
// binary event log (spec.md §4.8/§4.9 and §6 "log file format"), grounded
// on original_source/src/io/event_log_format.h,
// original_source/src/io/binary_file_sink.cpp and
// original_source/src/io/event_log_reader.cpp. All integers are encoded
// little-endian explicitly rather than relied on via struct layout, since
// Go structs carry no on-the-wire byte guarantee.
package eventlog

import (
	"encoding/binary"
	"fmt"
)

const (
	logMagic          = "QRSDPLOG"
	logVersionMajor   = 1
	logVersionMinor   = 0
	defaultChunkCap   = 4096
	headerFlagHasIndex uint32 = 0x1
	chunkFlagRaw       uint32 = 0x1

	fileHeaderSize  = 64
	diskRecordSize  = 26
	chunkHeaderSize = 32
	indexEntrySize  = 32
	indexTailSize   = 16

	// DiskRecordSize is the on-disk size of one record, exported for
	// callers computing raw-vs-compressed ratios (e.g. performance
	// reports) without depending on internal layout details.
	DiskRecordSize = diskRecordSize
)

var indexMagic = [4]byte{'Q', 'I', 'D', 'X'}

// FileHeader is the 64-byte header at offset 0.
type FileHeader struct {
	VersionMajor       uint16
	VersionMinor       uint16
	RecordSize         uint32
	Seed               uint64
	P0Ticks            int32
	TickSize           uint32
	SessionSeconds     uint32
	LevelsPerSide      uint32
	InitialSpreadTicks uint32
	InitialDepth       uint32
	ChunkCapacity      uint32
	HeaderFlags        uint32
	MarketOpenNs       uint64
}

// Encode writes h in the 64-byte on-disk layout.
func (h FileHeader) Encode() []byte {
	buf := make([]byte, fileHeaderSize)
	copy(buf[0:8], logMagic)
	binary.LittleEndian.PutUint16(buf[8:10], h.VersionMajor)
	binary.LittleEndian.PutUint16(buf[10:12], h.VersionMinor)
	binary.LittleEndian.PutUint32(buf[12:16], h.RecordSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.Seed)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(h.P0Ticks))
	binary.LittleEndian.PutUint32(buf[28:32], h.TickSize)
	binary.LittleEndian.PutUint32(buf[32:36], h.SessionSeconds)
	binary.LittleEndian.PutUint32(buf[36:40], h.LevelsPerSide)
	binary.LittleEndian.PutUint32(buf[40:44], h.InitialSpreadTicks)
	binary.LittleEndian.PutUint32(buf[44:48], h.InitialDepth)
	binary.LittleEndian.PutUint32(buf[48:52], h.ChunkCapacity)
	binary.LittleEndian.PutUint32(buf[52:56], h.HeaderFlags)
	binary.LittleEndian.PutUint64(buf[56:64], h.MarketOpenNs)
	return buf
}

// DecodeFileHeader parses a 64-byte header, validating magic/version/record size.
func DecodeFileHeader(buf []byte) (FileHeader, error) {
	if len(buf) < fileHeaderSize {
		return FileHeader{}, fmt.Errorf("eventlog: header too short: %d bytes", len(buf))
	}
	if string(buf[0:8]) != logMagic {
		return FileHeader{}, fmt.Errorf("eventlog: invalid magic %q", buf[0:8])
	}
	h := FileHeader{
		VersionMajor:       binary.LittleEndian.Uint16(buf[8:10]),
		VersionMinor:       binary.LittleEndian.Uint16(buf[10:12]),
		RecordSize:         binary.LittleEndian.Uint32(buf[12:16]),
		Seed:               binary.LittleEndian.Uint64(buf[16:24]),
		P0Ticks:            int32(binary.LittleEndian.Uint32(buf[24:28])),
		TickSize:           binary.LittleEndian.Uint32(buf[28:32]),
		SessionSeconds:     binary.LittleEndian.Uint32(buf[32:36]),
		LevelsPerSide:      binary.LittleEndian.Uint32(buf[36:40]),
		InitialSpreadTicks: binary.LittleEndian.Uint32(buf[40:44]),
		InitialDepth:       binary.LittleEndian.Uint32(buf[44:48]),
		ChunkCapacity:      binary.LittleEndian.Uint32(buf[48:52]),
		HeaderFlags:        binary.LittleEndian.Uint32(buf[52:56]),
		MarketOpenNs:       binary.LittleEndian.Uint64(buf[56:64]),
	}
	if h.VersionMajor != logVersionMajor {
		return FileHeader{}, fmt.Errorf("eventlog: unsupported version %d.%d", h.VersionMajor, h.VersionMinor)
	}
	if h.RecordSize != diskRecordSize {
		return FileHeader{}, fmt.Errorf("eventlog: record size mismatch: %d", h.RecordSize)
	}
	return h, nil
}

// HasIndex reports whether the footer-index flag is set.
func (h FileHeader) HasIndex() bool { return h.HeaderFlags&headerFlagHasIndex != 0 }

// DiskRecord is the 26-byte on-disk event record (no in-memory flags).
type DiskRecord struct {
	TsNs       uint64
	Type       uint8
	Side       uint8
	PriceTicks int32
	Qty        uint32
	OrderID    uint64
}

// Encode writes r into the 26-byte on-disk layout at buf[0:26].
func (r DiskRecord) Encode(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], r.TsNs)
	buf[8] = r.Type
	buf[9] = r.Side
	binary.LittleEndian.PutUint32(buf[10:14], uint32(r.PriceTicks))
	binary.LittleEndian.PutUint32(buf[14:18], r.Qty)
	binary.LittleEndian.PutUint64(buf[18:26], r.OrderID)
}

// DecodeDiskRecord parses a 26-byte on-disk record from buf[0:26].
func DecodeDiskRecord(buf []byte) DiskRecord {
	return DiskRecord{
		TsNs:       binary.LittleEndian.Uint64(buf[0:8]),
		Type:       buf[8],
		Side:       buf[9],
		PriceTicks: int32(binary.LittleEndian.Uint32(buf[10:14])),
		Qty:        binary.LittleEndian.Uint32(buf[14:18]),
		OrderID:    binary.LittleEndian.Uint64(buf[18:26]),
	}
}

// ChunkHeader is the 32-byte header preceding each compressed chunk.
type ChunkHeader struct {
	UncompressedSize uint32
	CompressedSize   uint32
	RecordCount      uint32
	ChunkFlags       uint32
	FirstTsNs        uint64
	LastTsNs         uint64
}

// Encode writes h in the 32-byte on-disk layout.
func (h ChunkHeader) Encode() []byte {
	buf := make([]byte, chunkHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.UncompressedSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.CompressedSize)
	binary.LittleEndian.PutUint32(buf[8:12], h.RecordCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.ChunkFlags)
	binary.LittleEndian.PutUint64(buf[16:24], h.FirstTsNs)
	binary.LittleEndian.PutUint64(buf[24:32], h.LastTsNs)
	return buf
}

// DecodeChunkHeader parses a 32-byte chunk header.
func DecodeChunkHeader(buf []byte) ChunkHeader {
	return ChunkHeader{
		UncompressedSize: binary.LittleEndian.Uint32(buf[0:4]),
		CompressedSize:   binary.LittleEndian.Uint32(buf[4:8]),
		RecordCount:      binary.LittleEndian.Uint32(buf[8:12]),
		ChunkFlags:       binary.LittleEndian.Uint32(buf[12:16]),
		FirstTsNs:        binary.LittleEndian.Uint64(buf[16:24]),
		LastTsNs:         binary.LittleEndian.Uint64(buf[24:32]),
	}
}

// IndexEntry is a 32-byte footer index entry, one per chunk.
type IndexEntry struct {
	FileOffset  uint64
	FirstTsNs   uint64
	LastTsNs    uint64
	RecordCount uint32
	Reserved    uint32
}

// Encode writes e in the 32-byte on-disk layout.
func (e IndexEntry) Encode() []byte {
	buf := make([]byte, indexEntrySize)
	binary.LittleEndian.PutUint64(buf[0:8], e.FileOffset)
	binary.LittleEndian.PutUint64(buf[8:16], e.FirstTsNs)
	binary.LittleEndian.PutUint64(buf[16:24], e.LastTsNs)
	binary.LittleEndian.PutUint32(buf[24:28], e.RecordCount)
	binary.LittleEndian.PutUint32(buf[28:32], e.Reserved)
	return buf
}

// DecodeIndexEntry parses a 32-byte index entry.
func DecodeIndexEntry(buf []byte) IndexEntry {
	return IndexEntry{
		FileOffset:  binary.LittleEndian.Uint64(buf[0:8]),
		FirstTsNs:   binary.LittleEndian.Uint64(buf[8:16]),
		LastTsNs:    binary.LittleEndian.Uint64(buf[16:24]),
		RecordCount: binary.LittleEndian.Uint32(buf[24:28]),
		Reserved:    binary.LittleEndian.Uint32(buf[28:32]),
	}
}

// IndexTail is the 16-byte footer trailer identifying the index location.
type IndexTail struct {
	ChunkCount       uint32
	IndexStartOffset uint64
}

// Encode writes t in the 16-byte on-disk layout.
func (t IndexTail) Encode() []byte {
	buf := make([]byte, indexTailSize)
	binary.LittleEndian.PutUint32(buf[0:4], t.ChunkCount)
	copy(buf[4:8], indexMagic[:])
	binary.LittleEndian.PutUint64(buf[8:16], t.IndexStartOffset)
	return buf
}

// DecodeIndexTail parses a 16-byte index tail, validating its magic.
func DecodeIndexTail(buf []byte) (IndexTail, error) {
	if len(buf) < indexTailSize {
		return IndexTail{}, fmt.Errorf("eventlog: index tail too short")
	}
	chunkCount := binary.LittleEndian.Uint32(buf[0:4])
	if buf[4] != indexMagic[0] || buf[5] != indexMagic[1] || buf[6] != indexMagic[2] || buf[7] != indexMagic[3] {
		return IndexTail{}, fmt.Errorf("eventlog: invalid index magic")
	}
	return IndexTail{
		ChunkCount:       chunkCount,
		IndexStartOffset: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}
