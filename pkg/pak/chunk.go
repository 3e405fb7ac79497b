package pak

import (
	"fmt"
	"io"
	"strings"

	"github.com/JasperZebra/avatar-pak/pkg/lzo"
)

// UncompressedSuffixes is the default set of path suffixes written stored
// rather than LZO1X-compressed, matching the game's own packer.
var UncompressedSuffixes = []string{".vso", ".pso", ".rs", ".bik"}

func suffixSet(suffixes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(suffixes))
	for _, s := range suffixes {
		set[strings.ToLower(s)] = struct{}{}
	}
	return set
}

func hasSuffix(path string, set map[string]struct{}) bool {
	lower := strings.ToLower(path)
	for suf := range set {
		if strings.HasSuffix(lower, suf) {
			return true
		}
	}
	return false
}

// chunkWriter frames one entry's payload as a sequence of ChunkHeader+body
// pairs, per spec §4.2's writer policy.
type chunkWriter struct {
	w            io.Writer
	alwaysStore  bool
	headers      []ChunkHeader
	bytesWritten int64
}

func newChunkWriter(w io.Writer, path string, suffixes map[string]struct{}) *chunkWriter {
	return &chunkWriter{
		w:           w,
		alwaysStore: hasSuffix(path, suffixes),
	}
}

// WriteChunk consumes exactly one window (at most MaxChunkSize bytes) and
// emits its header+body.
func (cw *chunkWriter) WriteChunk(data []byte) error {
	if len(data) == 0 || len(data) > MaxChunkSize {
		return newErr(ErrCorrupt, fmt.Sprintf("invalid chunk size %d", len(data)), nil)
	}

	if cw.alwaysStore {
		return cw.writeStored(data)
	}

	compressed, err := lzo.Compress(data)
	if err != nil {
		return newErr(ErrLzo, "compress chunk", err)
	}
	if len(compressed) < len(data) {
		return cw.writeLZO(data, compressed)
	}
	return cw.writeStored(data)
}

func (cw *chunkWriter) writeStored(data []byte) error {
	sizeField := uint16((MaxChunkSize - len(data)) % MaxChunkSize)
	header := ChunkHeader{SizeField: sizeField, Flag: FlagStored}
	cw.headers = append(cw.headers, header)
	n, err := cw.w.Write(data)
	cw.bytesWritten += int64(n)
	if err != nil {
		return newErr(ErrIO, "write stored chunk", err)
	}
	return nil
}

func (cw *chunkWriter) writeLZO(data, compressed []byte) error {
	sizeField := uint16(len(compressed) % MaxChunkSize)
	header := ChunkHeader{SizeField: sizeField, Flag: FlagLZO}
	cw.headers = append(cw.headers, header)
	n, err := cw.w.Write(compressed)
	cw.bytesWritten += int64(n)
	if err != nil {
		return newErr(ErrIO, "write lzo chunk", err)
	}
	return nil
}

// readChunk reads one chunk body per its header and returns the inflated
// bytes. inflatedSize is the expected decompressed length for this chunk
// (65536 for every chunk but possibly the last of an entry).
func readChunk(r io.Reader, header ChunkHeader, inflatedSize int) ([]byte, error) {
	switch header.Flag {
	case FlagStored:
		n := header.StoredLength()
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, newErr(ErrTruncated, "read stored chunk", err)
		}
		return buf, nil
	default:
		n := header.CompressedLength()
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, newErr(ErrTruncated, "read lzo chunk", err)
		}
		out, err := lzo.Decompress(buf, inflatedSize)
		if err != nil {
			return nil, newErr(ErrLzo, "decompress chunk", err)
		}
		return out, nil
	}
}
