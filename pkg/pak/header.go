package pak

import (
	"encoding/binary"
	"fmt"
)

// Magic identifies a PAK archive: the ASCII bytes "PAK!".
var Magic = [4]byte{'P', 'A', 'K', '!'}

// Version is the only archive version this codec understands.
const Version uint32 = 4

// HeaderSize is the fixed byte size of the archive header.
const HeaderSize = 12

// Header is the archive's fixed 12-byte lead-in: magic, version, and the
// absolute byte offset of the trailer (the metadata directory).
type Header struct {
	Magic      [4]byte
	Version    uint32
	TrailerOff uint32
}

// Validate checks the header for the two fatal conditions spec'd for it.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return newErr(ErrNotPak, fmt.Sprintf("got magic %q", h.Magic), nil)
	}
	if h.Version != Version {
		return newErr(ErrUnsupportedVersion, fmt.Sprintf("version %d", h.Version), nil)
	}
	return nil
}

// MarshalBinary encodes the header to its 12-byte wire form.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.TrailerOff)
	return buf, nil
}

// UnmarshalBinary decodes the header from its 12-byte wire form and
// validates it.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return newErr(ErrTruncated, "short header", nil)
	}
	copy(h.Magic[:], data[0:4])
	h.Version = binary.LittleEndian.Uint32(data[4:8])
	h.TrailerOff = binary.LittleEndian.Uint32(data[8:12])
	return h.Validate()
}
