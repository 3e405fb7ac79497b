package pak

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the entry count extraction must exceed before it fans
// out across multiple goroutines; up to it the per-task setup cost dominates.
const parallelThreshold = 4

// ExtractOption configures an extraction run.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	reporter    Reporter
	restoreTime bool
}

// WithExtractReporter injects a progress/log sink for ExtractAll.
func WithExtractReporter(r Reporter) ExtractOption {
	return func(c *extractConfig) { c.reporter = r }
}

// WithRestoreFileTime restores each extracted file's creation time from its
// entry's FileTime where the host platform supports it.
func WithRestoreFileTime(restore bool) ExtractOption {
	return func(c *extractConfig) { c.restoreTime = restore }
}

// Unpacker reads entries out of an opened PAK archive.
type Unpacker struct {
	r         io.ReaderAt
	size      int64
	header    Header
	directory *Directory
}

// Open parses the archive's header and trailer and returns an Unpacker
// ready to extract entries from r.
func Open(r io.ReaderAt, size int64) (*Unpacker, error) {
	if size < HeaderSize {
		return nil, newErr(ErrTruncated, "archive smaller than header", nil)
	}

	headerBuf := make([]byte, HeaderSize)
	if _, err := r.ReadAt(headerBuf, 0); err != nil {
		return nil, newErr(ErrTruncated, "read header", err)
	}
	var header Header
	if err := header.UnmarshalBinary(headerBuf); err != nil {
		return nil, err
	}
	if int64(header.TrailerOff) > size {
		return nil, newErr(ErrTruncated, "trailer offset beyond file size", nil)
	}

	dir, err := DecodeDirectory(r, int64(header.TrailerOff))
	if err != nil {
		return nil, err
	}

	return &Unpacker{r: r, size: size, header: header, directory: dir}, nil
}

// Entries returns the archive's directory entries, in on-disk order.
func (u *Unpacker) Entries() []Entry {
	return u.directory.Entries
}

// EntryReport describes the outcome of extracting a single entry.
type EntryReport struct {
	Path string
	Err  error
}

// ExtractReport summarizes a completed ExtractAll call.
type ExtractReport struct {
	Extracted int
	Skipped   []EntryReport
	Duration  time.Duration
}

// ExtractAll writes every archive entry beneath destDir. Per-entry failures
// (an unsafe path, a corrupt chunk) are collected into the report rather
// than aborting the whole run; only a cancelled context or a destDir we
// cannot create is fatal.
func (u *Unpacker) ExtractAll(ctx context.Context, destDir string, opts ...ExtractOption) (*ExtractReport, error) {
	cfg := extractConfig{reporter: nopReporter{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.reporter == nil {
		cfg.reporter = nopReporter{}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, newErr(ErrIO, "create destination", err)
	}

	start := time.Now()
	entries := u.directory.Entries
	report := &ExtractReport{}

	workers := 1
	if len(entries) > parallelThreshold {
		workers = len(entries)
		if hw := runtime.GOMAXPROCS(0); hw < workers {
			workers = hw
		}
	}

	results := make([]EntryReport, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			err := u.extractEntry(gctx, destDir, e, cfg)
			results[i] = EntryReport{Path: e.Path, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, newErr(ErrIO, "extraction cancelled", ctx.Err())
	}

	for i, res := range results {
		if res.Err != nil {
			report.Skipped = append(report.Skipped, res)
		} else {
			report.Extracted++
		}
		if (i+1)%10 == 0 || i+1 == len(entries) {
			cfg.reporter.Progress(i+1, len(entries))
		}
	}
	report.Duration = time.Since(start)
	return report, nil
}

// extractEntry writes one entry beneath destDir. It reads the chunk bodies
// through the Unpacker's shared io.ReaderAt with positional reads and does
// not open a file handle of its own. It polls ctx between chunks so a
// cancelled extraction stops promptly instead of running every worker to
// completion, and removes the partially written file when it stops.
func (u *Unpacker) extractEntry(ctx context.Context, destDir string, e Entry, cfg extractConfig) error {
	relPath, err := safeJoin(destDir, e.Path)
	if err != nil {
		return newErr(ErrUnsafePath, e.Path, err)
	}

	if err := os.MkdirAll(filepath.Dir(relPath), 0o755); err != nil {
		return newErr(ErrIO, "create parent directory", err)
	}

	out, err := os.Create(relPath)
	if err != nil {
		return newErr(ErrIO, "create output file", err)
	}
	defer out.Close()

	offset := int64(e.FileOffset)
	total := len(e.Chunks)
	for i, ch := range e.Chunks {
		select {
		case <-ctx.Done():
			out.Close()
			os.Remove(relPath)
			return ctx.Err()
		default:
		}

		bodyLen := chunkBodyLength(ch)
		body := make([]byte, bodyLen)
		if _, err := u.r.ReadAt(body, offset); err != nil {
			return newErr(ErrTruncated, fmt.Sprintf("%s chunk %d", e.Path, i), err)
		}
		offset += int64(bodyLen)

		inflated, err := readChunk(bytes.NewReader(body), ch, InflatedSize(e.FileSize, i, total))
		if err != nil {
			return err
		}
		if _, err := out.Write(inflated); err != nil {
			return newErr(ErrIO, "write extracted chunk", err)
		}
	}

	if cfg.restoreTime {
		_ = setCreationTime(relPath, e.FileTime)
	}
	return nil
}

func chunkBodyLength(ch ChunkHeader) int {
	if ch.Flag == FlagStored {
		return ch.StoredLength()
	}
	return ch.CompressedLength()
}

// safeJoin joins an archive-relative path onto destDir, rejecting absolute
// paths and any ".." traversal segment.
func safeJoin(destDir, archivePath string) (string, error) {
	cleaned := filepath.Clean(archivePath)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("absolute path")
	}
	for _, seg := range strings.Split(filepath.ToSlash(archivePath), "/") {
		if seg == ".." {
			return "", fmt.Errorf("path traversal segment")
		}
	}
	return filepath.Join(destDir, cleaned), nil
}
