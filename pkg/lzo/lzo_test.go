package lzo

import (
	"bytes"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"short":      []byte("HELLO\nWORLD"),
		"zeros-64k":  make([]byte, MaxBlockSize),
		"empty":      {},
		"repetitive": bytes.Repeat([]byte("abcd"), 4096),
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			if len(src) == 0 {
				return
			}
			compressed, err := Compress(src)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}

			decompressed, err := Decompress(compressed, len(src))
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}

			if !bytes.Equal(decompressed, src) {
				t.Errorf("round-trip mismatch for %s", name)
			}
		})
	}
}

func TestCompressTooLarge(t *testing.T) {
	src := make([]byte, MaxBlockSize+1)
	if _, err := Compress(src); err == nil {
		t.Error("expected error for oversized input")
	}
}
