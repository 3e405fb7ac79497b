package pak

import (
	"testing"
	"time"
)

func TestFileTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(2023, 5, 17, 12, 30, 0, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 2, 29, 23, 59, 59, 0, time.UTC),
	}
	for _, want := range cases {
		ft := FileTimeFromTime(want)
		got := ft.ToTime()
		if !got.Equal(want) {
			t.Errorf("round trip: got %v, want %v", got, want)
		}
	}
}

func TestChunkCount(t *testing.T) {
	cases := []struct {
		size uint32
		want int
	}{
		{0, 0},
		{1, 1},
		{MaxChunkSize, 1},
		{MaxChunkSize + 1, 2},
		{MaxChunkSize * 2, 2},
	}
	for _, c := range cases {
		if got := ChunkCount(c.size); got != c.want {
			t.Errorf("ChunkCount(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestInflatedSize(t *testing.T) {
	total := ChunkCount(MaxChunkSize + 1)
	if got := InflatedSize(MaxChunkSize+1, 0, total); got != MaxChunkSize {
		t.Errorf("first chunk = %d, want %d", got, MaxChunkSize)
	}
	if got := InflatedSize(MaxChunkSize+1, 1, total); got != 1 {
		t.Errorf("last chunk = %d, want 1", got)
	}
}

func TestChunkHeaderLengths(t *testing.T) {
	stored := ChunkHeader{SizeField: 0, Flag: FlagStored}
	if got := stored.StoredLength(); got != MaxChunkSize {
		t.Errorf("zero size field stored length = %d, want %d", got, MaxChunkSize)
	}
	stored2 := ChunkHeader{SizeField: uint16((MaxChunkSize - 100) % MaxChunkSize), Flag: FlagStored}
	if got := stored2.StoredLength(); got != 100 {
		t.Errorf("stored length = %d, want 100", got)
	}

	lzo := ChunkHeader{SizeField: 0, Flag: FlagLZO}
	if got := lzo.CompressedLength(); got != MaxChunkSize {
		t.Errorf("zero size field compressed length = %d, want %d", got, MaxChunkSize)
	}
	lzo2 := ChunkHeader{SizeField: 1234, Flag: FlagLZO}
	if got := lzo2.CompressedLength(); got != 1234 {
		t.Errorf("compressed length = %d, want 1234", got)
	}
}
