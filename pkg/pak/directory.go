package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// directoryMarker is the single byte every decoded directory block starts
// with.
const directoryMarker byte = 1

// sideRecordSize is the byte size of one zlib side-table record.
const sideRecordSize = 8

// sideRecordFlag is the constant flag byte stamped into every side-table
// record.
const sideRecordFlag byte = 128

// sentinelEndOffset is the cumulative end offset carried by the writer's
// leading sentinel record, matching pack_offset_and_flag(4, 128) in the
// original tool: 4 bytes for the size_prefix field that precedes the
// compressed stream.
const sentinelEndOffset = 4

// Directory is the decoded archive trailer: every entry, in on-disk order.
type Directory struct {
	Entries []Entry
}

// sideRecord is one entry of the zlib side table.
type sideRecord struct {
	cumulativeDecompressed uint32
	cumulativeEndOffset    uint32 // 24 bits on the wire
}

func encodeSideRecord(rec sideRecord) []byte {
	buf := make([]byte, sideRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], rec.cumulativeDecompressed)
	buf[4] = byte(rec.cumulativeEndOffset)
	buf[5] = byte(rec.cumulativeEndOffset >> 8)
	buf[6] = byte(rec.cumulativeEndOffset >> 16)
	buf[7] = sideRecordFlag
	return buf
}

func decodeSideRecord(buf []byte) sideRecord {
	end := uint32(buf[4]) | uint32(buf[5])<<8 | uint32(buf[6])<<16
	return sideRecord{
		cumulativeDecompressed: binary.LittleEndian.Uint32(buf[0:4]),
		cumulativeEndOffset:    end,
	}
}

// EncodeDirectory builds the logical directory block for the given entries
// and zlib-chunks it per spec §3/§4.3, returning the full on-disk trailer
// bytes (size_prefix, compressed windows, record_count, side table).
func EncodeDirectory(entries []Entry, zlibLevel int) ([]byte, error) {
	fixed := &bytes.Buffer{}
	variable := &bytes.Buffer{}

	for _, e := range entries {
		var head [12]byte
		binary.LittleEndian.PutUint32(head[0:4], e.FileOffset)
		binary.LittleEndian.PutUint32(head[4:8], e.FileSize)
		binary.LittleEndian.PutUint32(head[8:12], e.PathHash)
		fixed.Write(head[:])

		for _, ch := range e.Chunks {
			var hb [4]byte
			binary.LittleEndian.PutUint16(hb[0:2], ch.SizeField)
			binary.LittleEndian.PutUint16(hb[2:4], ch.Flag)
			fixed.Write(hb[:])
		}
	}

	for _, e := range entries {
		var ft [8]byte
		binary.LittleEndian.PutUint64(ft[:], uint64(e.FileTime))
		variable.Write(ft[:])

		pathBytes := []byte(e.Path)
		if len(pathBytes) > 255 {
			return nil, newErr(ErrCorrupt, fmt.Sprintf("path %q exceeds 255 bytes", e.Path), nil)
		}
		variable.WriteByte(byte(len(pathBytes)))
		variable.Write(pathBytes)
	}

	logical := &bytes.Buffer{}
	logical.WriteByte(directoryMarker)
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(entries)))
	logical.Write(countBuf[:])
	logical.Write(fixed.Bytes())
	logical.Write(variable.Bytes())

	return zlibChunk(logical.Bytes(), zlibLevel)
}

// zlibChunk splits data into <=64KiB windows, zlib-compresses each, and
// assembles the size_prefix + compressed stream + record_count + side table
// trailer format.
func zlibChunk(data []byte, level int) ([]byte, error) {
	var compressed bytes.Buffer
	records := []sideRecord{{cumulativeDecompressed: 0, cumulativeEndOffset: sentinelEndOffset}}

	decompressedSoFar := uint32(0)
	endOffset := uint32(sentinelEndOffset)

	for off := 0; off < len(data); off += MaxChunkSize {
		end := off + MaxChunkSize
		if end > len(data) {
			end = len(data)
		}
		window := data[off:end]

		var windowBuf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&windowBuf, level)
		if err != nil {
			return nil, newErr(ErrZlib, "new writer", err)
		}
		if _, err := zw.Write(window); err != nil {
			return nil, newErr(ErrZlib, "compress metadata window", err)
		}
		if err := zw.Close(); err != nil {
			return nil, newErr(ErrZlib, "close metadata window", err)
		}

		compressed.Write(windowBuf.Bytes())
		decompressedSoFar += uint32(len(window))
		endOffset += uint32(windowBuf.Len())

		records = append(records, sideRecord{
			cumulativeDecompressed: decompressedSoFar,
			cumulativeEndOffset:    endOffset,
		})
	}

	out := &bytes.Buffer{}
	var sizePrefix [4]byte
	binary.LittleEndian.PutUint32(sizePrefix[:], uint32(compressed.Len())+4)
	out.Write(sizePrefix[:])
	out.Write(compressed.Bytes())

	var recordCount [4]byte
	binary.LittleEndian.PutUint32(recordCount[:], uint32(len(records)))
	out.Write(recordCount[:])

	for _, rec := range records {
		out.Write(encodeSideRecord(rec))
	}

	return out.Bytes(), nil
}

// DecodeDirectory reads and decodes the trailer starting at trailerOff in r.
func DecodeDirectory(r io.ReaderAt, trailerOff int64) (*Directory, error) {
	var sizePrefixBuf [4]byte
	if _, err := r.ReadAt(sizePrefixBuf[:], trailerOff); err != nil {
		return nil, newErr(ErrTruncated, "read size prefix", err)
	}
	sizePrefix := binary.LittleEndian.Uint32(sizePrefixBuf[:])

	var recordCountBuf [4]byte
	if _, err := r.ReadAt(recordCountBuf[:], trailerOff+int64(sizePrefix)); err != nil {
		return nil, newErr(ErrTruncated, "read record count", err)
	}
	recordCount := binary.LittleEndian.Uint32(recordCountBuf[:])

	tableBuf := make([]byte, int(recordCount)*sideRecordSize)
	if _, err := r.ReadAt(tableBuf, trailerOff+int64(sizePrefix)+4); err != nil {
		return nil, newErr(ErrTruncated, "read side table", err)
	}

	records := make([]sideRecord, recordCount)
	for i := range records {
		records[i] = decodeSideRecord(tableBuf[i*sideRecordSize : (i+1)*sideRecordSize])
	}

	// Tolerate a missing leading sentinel (spec §9): if the first record's
	// end offset is not the sentinel floor, treat the floor as implicit.
	prevEnd := uint32(sentinelEndOffset)
	startIdx := 0
	if len(records) > 0 && records[0].cumulativeEndOffset == sentinelEndOffset && records[0].cumulativeDecompressed == 0 {
		startIdx = 1
	}

	var logical bytes.Buffer
	for i := startIdx; i < len(records); i++ {
		rec := records[i]
		windowLen := rec.cumulativeEndOffset - prevEnd
		windowBuf := make([]byte, windowLen)
		if _, err := r.ReadAt(windowBuf, trailerOff+int64(prevEnd)); err != nil {
			return nil, newErr(ErrTruncated, "read metadata window", err)
		}
		prevEnd = rec.cumulativeEndOffset

		zr, err := zlib.NewReader(bytes.NewReader(windowBuf))
		if err != nil {
			return nil, newErr(ErrZlib, "new reader", err)
		}
		if _, err := io.Copy(&logical, zr); err != nil {
			zr.Close()
			return nil, newErr(ErrZlib, "inflate metadata window", err)
		}
		zr.Close()
	}

	return parseDirectory(logical.Bytes())
}

func parseDirectory(data []byte) (*Directory, error) {
	if len(data) < 5 {
		return nil, newErr(ErrCorrupt, "directory too short", nil)
	}
	marker := data[0]
	if marker != directoryMarker {
		return nil, newErr(ErrCorrupt, fmt.Sprintf("unexpected marker %d", marker), nil)
	}
	fileCount := binary.LittleEndian.Uint32(data[1:5])

	cursor := 5
	entries := make([]Entry, fileCount)

	for i := range entries {
		if cursor+12 > len(data) {
			return nil, newErr(ErrTruncated, "fixed record", nil)
		}
		e := &entries[i]
		e.FileOffset = binary.LittleEndian.Uint32(data[cursor : cursor+4])
		e.FileSize = binary.LittleEndian.Uint32(data[cursor+4 : cursor+8])
		e.PathHash = binary.LittleEndian.Uint32(data[cursor+8 : cursor+12])
		cursor += 12

		n := ChunkCount(e.FileSize)
		e.Chunks = make([]ChunkHeader, n)
		for c := 0; c < n; c++ {
			if cursor+4 > len(data) {
				return nil, newErr(ErrTruncated, "chunk header", nil)
			}
			e.Chunks[c] = ChunkHeader{
				SizeField: binary.LittleEndian.Uint16(data[cursor : cursor+2]),
				Flag:      binary.LittleEndian.Uint16(data[cursor+2 : cursor+4]),
			}
			cursor += 4
		}
	}

	for i := range entries {
		if cursor+9 > len(data) {
			return nil, newErr(ErrTruncated, "variable record", nil)
		}
		e := &entries[i]
		e.FileTime = FileTime(binary.LittleEndian.Uint64(data[cursor : cursor+8]))
		pathLen := int(data[cursor+8])
		cursor += 9
		if cursor+pathLen > len(data) {
			return nil, newErr(ErrTruncated, "path bytes", nil)
		}
		e.Path = string(data[cursor : cursor+pathLen])
		cursor += pathLen
	}

	return &Directory{Entries: entries}, nil
}
