package pak

import "testing"

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := &Header{Magic: Magic, Version: Version, TrailerOff: 4096}

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if len(data) != HeaderSize {
			t.Fatalf("marshaled length = %d, want %d", len(data), HeaderSize)
		}

		decoded := &Header{}
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if *decoded != *original {
			t.Errorf("mismatch: got %+v, want %+v", decoded, original)
		}
	})

	t.Run("ByteLayout", func(t *testing.T) {
		h := &Header{Magic: Magic, Version: Version, TrailerOff: 0x00000001}
		data, err := h.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		want := []byte{'P', 'A', 'K', '!', 0x04, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}
		for i := range want {
			if data[i] != want[i] {
				t.Fatalf("byte %d = %#x, want %#x", i, data[i], want[i])
			}
		}
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		h := &Header{Magic: [4]byte{0, 0, 0, 0}, Version: Version}
		if err := h.Validate(); !IsKind(err, ErrNotPak) {
			t.Errorf("want ErrNotPak, got %v", err)
		}
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		h := &Header{Magic: Magic, Version: 99}
		if err := h.Validate(); !IsKind(err, ErrUnsupportedVersion) {
			t.Errorf("want ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		h := &Header{}
		if err := h.UnmarshalBinary([]byte{1, 2, 3}); !IsKind(err, ErrTruncated) {
			t.Errorf("want ErrTruncated, got %v", err)
		}
	})
}
