package pak

import "time"

// MaxChunkSize is the fixed window size every chunk inflates to, except
// possibly the last chunk of an entry.
const MaxChunkSize = 65536

// filetimeEpochOffset is the number of 100ns intervals between the
// FILETIME epoch (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const filetimeEpochOffset = 116444736000000000

// FileTime is a Windows FILETIME: 100ns ticks since 1601-01-01 UTC.
type FileTime uint64

// ToTime converts a FileTime to a time.Time in UTC.
func (f FileTime) ToTime() time.Time {
	ticks := int64(f) - filetimeEpochOffset
	return time.Unix(0, ticks*100).UTC()
}

// FileTimeFromTime converts a time.Time to a FileTime.
func FileTimeFromTime(t time.Time) FileTime {
	ticks := t.UnixNano()/100 + filetimeEpochOffset
	if ticks < 0 {
		ticks = 0
	}
	return FileTime(ticks)
}

// ChunkHeader frames one chunk body: its on-disk size field and the flag
// that discriminates stored vs. LZO1X-compressed encoding.
type ChunkHeader struct {
	SizeField uint16
	Flag      uint16
}

// FlagStored marks a chunk stored verbatim (no LZO1X compression).
const FlagStored uint16 = 65535

// FlagLZO marks a chunk compressed with LZO1X.
const FlagLZO uint16 = 0

// StoredLength returns the on-disk body length of a stored chunk.
func (c ChunkHeader) StoredLength() int {
	if c.SizeField == 0 {
		return MaxChunkSize
	}
	return MaxChunkSize - int(c.SizeField)
}

// CompressedLength returns the on-disk body length of an LZO-framed chunk.
func (c ChunkHeader) CompressedLength() int {
	if c.SizeField == 0 {
		return MaxChunkSize
	}
	return int(c.SizeField)
}

// Entry is one logical file recorded in the archive directory.
type Entry struct {
	Path       string
	FileSize   uint32
	PathHash   uint32
	FileTime   FileTime
	FileOffset uint32
	Chunks     []ChunkHeader
}

// ChunkCount returns the number of chunks an entry of the given size is
// split into: ceil(fileSize / MaxChunkSize), or zero for an empty file.
func ChunkCount(fileSize uint32) int {
	if fileSize == 0 {
		return 0
	}
	n := int(fileSize) / MaxChunkSize
	if int(fileSize)%MaxChunkSize != 0 {
		n++
	}
	return n
}

// InflatedSize returns the inflated size of the chunk at index i within an
// entry of the given total file size.
func InflatedSize(fileSize uint32, i, total int) int {
	if i < total-1 {
		return MaxChunkSize
	}
	rem := int(fileSize) % MaxChunkSize
	if rem == 0 {
		return MaxChunkSize
	}
	return rem
}
