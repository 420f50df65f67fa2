package csi

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned when a Reader is used before Load.
var ErrNotLoaded = errors.New("csi: reader not loaded")

// Reader provides sequential field access to a PackedBits payload.
// A Reader is not safe for concurrent use. Create one reader per goroutine
// if the same payload is parsed concurrently.
type Reader struct {
	// bits is the payload being parsed.
	bits PackedBits

	// pos is the offset of the next unread bit.
	pos int

	// loaded indicates if the reader has been loaded with a payload.
	loaded bool
}

// NewReader creates a Reader positioned at the first bit of p.
func NewReader(p PackedBits) *Reader {
	r := &Reader{}
	r.Load(p)
	return r
}

// Load points the reader at a new payload and rewinds it.
// It can be called multiple times to reuse the reader.
func (r *Reader) Load(p PackedBits) {
	r.bits = p
	r.pos = 0
	r.loaded = true
}

// IsLoaded returns whether the reader has been loaded with a payload.
func (r *Reader) IsLoaded() bool {
	return r.loaded
}

// Pos returns the offset of the next unread bit.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return r.bits.Len() - r.pos
}

// Reset rewinds the reader to the first bit.
func (r *Reader) Reset() {
	r.pos = 0
}

// Read consumes the next width bits (0..32) and returns them MSB first.
// A zero width read returns 0 without moving.
func (r *Reader) Read(width int) (uint32, error) {
	if !r.loaded {
		return 0, ErrNotLoaded
	}
	if width < 0 || width > maxFieldBits {
		return 0, fmt.Errorf("%w: field width %d outside 0..%d", ErrInvalidBuffer, width, maxFieldBits)
	}
	if width > r.Remaining() {
		return 0, fmt.Errorf("%w: need %d bits at offset %d, have %d", ErrShortRead, width, r.pos, r.Remaining())
	}
	v := r.bits.Extract(r.pos, width)
	r.pos += width
	return v, nil
}

// Skip consumes n bits without interpreting them.
func (r *Reader) Skip(n int) error {
	if !r.loaded {
		return ErrNotLoaded
	}
	if n < 0 || n > r.Remaining() {
		return fmt.Errorf("%w: cannot skip %d bits at offset %d, have %d", ErrShortRead, n, r.pos, r.Remaining())
	}
	r.pos += n
	return nil
}

// field reads a field whose presence in the payload was already established
// by a length check. Running out of bits here is a decoder bug.
func (r *Reader) field(width int) uint32 {
	v, err := r.Read(width)
	mustf(err == nil, "reading %d bit field: %v", width, err)
	return v
}
