package pak

import (
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zlib"
)

// PackerOption configures a Packer.
type PackerOption func(*Packer)

// WithUncompressedSuffixes overrides the default stored-verbatim suffix list.
func WithUncompressedSuffixes(suffixes []string) PackerOption {
	return func(p *Packer) { p.uncompressedSuffixes = suffixes }
}

// WithMetadataZlibLevel sets the zlib level used for the metadata directory
// (1-9); values outside that range are ignored, leaving the level as it was
// (zlib.BestSpeed by default).
func WithMetadataZlibLevel(level int) PackerOption {
	return func(p *Packer) {
		if level >= zlib.BestSpeed && level <= zlib.BestCompression {
			p.metadataZlibLevel = level
		}
	}
}

// WithReporter injects a progress/log sink. Without one, or with a nil
// Reporter, progress and log output are discarded; StdReporter prints to
// stdout in the teacher's plain fmt.Printf progress style.
func WithReporter(r Reporter) PackerOption {
	return func(p *Packer) { p.reporter = r }
}

// Packer walks a source tree and writes it out as a PAK archive.
type Packer struct {
	uncompressedSuffixes []string
	metadataZlibLevel    int
	reporter             Reporter
}

// NewPacker creates a Packer with the given options applied over the
// spec's defaults.
func NewPacker(opts ...PackerOption) *Packer {
	p := &Packer{
		uncompressedSuffixes: UncompressedSuffixes,
		metadataZlibLevel:    zlib.BestSpeed,
		reporter:             nopReporter{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.reporter == nil {
		p.reporter = nopReporter{}
	}
	return p
}

// PackReport summarizes a completed Pack call.
type PackReport struct {
	FileCount    int
	BytesWritten int64
	Duration     time.Duration
}

// Pack walks sourceDir, writes destPath as a new PAK archive, and returns a
// report of what was written. On any I/O failure the partial output file is
// removed.
func (p *Packer) Pack(sourceDir, destPath string) (*PackReport, error) {
	start := time.Now()

	paths, err := collectSortedPaths(sourceDir)
	if err != nil {
		return nil, newErr(ErrIO, "walk source tree", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return nil, newErr(ErrIO, "create archive", err)
	}
	succeeded := false
	defer func() {
		out.Close()
		if !succeeded {
			os.Remove(destPath)
		}
	}()

	header := &Header{Magic: Magic, Version: Version}
	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(headerBytes); err != nil {
		return nil, newErr(ErrIO, "write header", err)
	}

	suffixSet := suffixSet(p.uncompressedSuffixes)
	var offset int64 = HeaderSize
	entries := make([]Entry, 0, len(paths))

	for i, rel := range paths {
		abs := filepath.Join(sourceDir, rel)
		entry, err := p.packFile(out, abs, rel, &offset, suffixSet)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)

		if (i+1)%10 == 0 || i+1 == len(paths) {
			p.reporter.Progress(i+1, len(paths))
		}
	}

	p.reporter.Status("compressing metadata")
	dirBytes, err := EncodeDirectory(entries, p.metadataZlibLevel)
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(dirBytes); err != nil {
		return nil, newErr(ErrIO, "write directory", err)
	}

	if _, err := out.Seek(8, io.SeekStart); err != nil {
		return nil, newErr(ErrTruncated, "seek to patch trailer offset", err)
	}
	var trailerOffBuf [4]byte
	putUint32LE(trailerOffBuf[:], uint32(offset))
	if _, err := out.Write(trailerOffBuf[:]); err != nil {
		return nil, newErr(ErrTruncated, "patch trailer offset", err)
	}

	finalSize := offset + int64(len(dirBytes))
	succeeded = true

	p.reporter.Status("pack complete")
	return &PackReport{
		FileCount:    len(entries),
		BytesWritten: finalSize,
		Duration:     time.Since(start),
	}, nil
}

func (p *Packer) packFile(out io.Writer, abs, rel string, offset *int64, suffixSet map[string]struct{}) (Entry, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return Entry{}, newErr(ErrIO, "stat "+rel, err)
	}
	if info.Size() > 1<<32-1 {
		return Entry{}, newErr(ErrCorrupt, "file exceeds 4 GiB: "+rel, nil)
	}

	archivePath := filepath.ToSlash(rel)
	pathBytes := []byte(archivePath)

	entry := Entry{
		Path:       archivePath,
		FileSize:   uint32(info.Size()),
		PathHash:   crc32.ChecksumIEEE(pathBytes),
		FileTime:   FileTimeFromTime(info.ModTime()),
		FileOffset: uint32(*offset),
	}
	if ct, err := creationTime(abs); err == nil {
		entry.FileTime = FileTimeFromTime(ct)
	}

	if entry.FileSize == 0 {
		return entry, nil
	}

	f, err := os.Open(abs)
	if err != nil {
		return Entry{}, newErr(ErrIO, "open "+rel, err)
	}
	defer f.Close()

	cw := newChunkWriter(out, archivePath, suffixSet)
	buf := make([]byte, MaxChunkSize)
	for {
		n, err := io.ReadFull(f, buf)
		if n > 0 {
			if werr := cw.WriteChunk(buf[:n]); werr != nil {
				return Entry{}, werr
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return Entry{}, newErr(ErrIO, "read "+rel, err)
		}
	}

	*offset += cw.bytesWritten
	entry.Chunks = cw.headers
	return entry, nil
}

// collectSortedPaths walks dir and returns every regular file's path
// relative to dir, sorted byte-lexicographically for determinism.
func collectSortedPaths(dir string) ([]string, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return strings.Compare(paths[i], paths[j]) < 0
	})
	return paths, nil
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
