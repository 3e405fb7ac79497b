// Package lzo binds the LZO1X block primitive used by the PAK chunk codec.
// It never frames or chunks data itself; callers are responsible for
// keeping each call under the codec's 64 KiB window.
package lzo

import (
	"fmt"

	"github.com/dgryski/go-lzo"
)

// MaxBlockSize is the largest buffer this binding is contracted to handle
// in a single call, matching the PAK chunk window.
const MaxBlockSize = 65536

// compressor is shared across goroutines; each Compress/Decompress call is
// self-contained (one input, one fresh output buffer).
var compressor, compressorErr = lzo.NewCompressor(lzo.BestSpeed)

// Compress compresses src, which must be at most MaxBlockSize bytes.
// The output may legally be larger than src; the chunk codec decides
// whether to keep it or fall back to a stored chunk.
func Compress(src []byte) ([]byte, error) {
	if len(src) > MaxBlockSize {
		return nil, fmt.Errorf("lzo: input of %d bytes exceeds max block size %d", len(src), MaxBlockSize)
	}
	if compressorErr != nil {
		return nil, fmt.Errorf("lzo: init compressor: %w", compressorErr)
	}

	out, err := compressor.Compress(src)
	if err != nil {
		return nil, fmt.Errorf("lzo: compress: %w", err)
	}
	return out, nil
}

// Decompress decompresses src into a buffer of exactly expected bytes.
func Decompress(src []byte, expected int) ([]byte, error) {
	if compressorErr != nil {
		return nil, fmt.Errorf("lzo: init compressor: %w", compressorErr)
	}

	dst := make([]byte, expected)
	n, err := compressor.Decompress(src, dst)
	if err != nil {
		return nil, fmt.Errorf("lzo: decompress: %w", err)
	}
	if n != expected {
		return nil, fmt.Errorf("lzo: decompressed %d bytes, expected %d", n, expected)
	}
	return dst, nil
}
