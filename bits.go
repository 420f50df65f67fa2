package csi

import (
	"fmt"
	"slices"
	"strings"
)

// PackedBits is an ordered sequence of bits stored MSB first in a byte
// slice. Fields are appended without byte alignment and can be extracted at
// any bit offset. The zero value is an empty sequence ready for use.
//
// PackedBits is not safe for concurrent mutation; concurrent reads are fine.
type PackedBits struct {
	buf []byte
	n   int
}

// NewPackedBits returns an empty sequence with room for capBits bits.
func NewPackedBits(capBits int) PackedBits {
	return PackedBits{buf: make([]byte, 0, (capBits+7)/8)}
}

// PackedBitsFromBytes wraps the first nbits bits of b (MSB first). The bytes
// are copied; bits past nbits in the final byte are cleared.
func PackedBitsFromBytes(b []byte, nbits int) (PackedBits, error) {
	if nbits < 0 || nbits > len(b)*8 {
		return PackedBits{}, fmt.Errorf("%w: %d bits requested from %d bytes", ErrInvalidBuffer, nbits, len(b))
	}
	nbytes := (nbits + 7) / 8
	p := PackedBits{buf: slices.Clone(b[:nbytes]), n: nbits}
	if rem := nbits & 7; rem != 0 {
		p.buf[nbytes-1] &= ^byte(0xff >> rem)
	}
	return p, nil
}

// PackedBitsFromString parses a string of '0' and '1' characters. Spaces,
// underscores and dots are ignored so field boundaries can be written out,
// e.g. "0 1 00 1010".
func PackedBitsFromString(s string) (PackedBits, error) {
	var p PackedBits
	for i, c := range s {
		switch c {
		case '0', '1':
			p.AppendBits(uint32(c-'0'), 1)
		case ' ', '_', '.':
		default:
			return PackedBits{}, fmt.Errorf("%w: unexpected %q at position %d", ErrInvalidBuffer, c, i)
		}
	}
	return p, nil
}

// Len returns the number of bits in the sequence.
func (p PackedBits) Len() int {
	return p.n
}

// Reset empties the sequence, keeping the allocated storage.
func (p *PackedBits) Reset() {
	clear(p.buf)
	p.buf = p.buf[:0]
	p.n = 0
}

// AppendBits appends the width least significant bits of value, most
// significant bit first. It panics if width is outside 0..32 or value does
// not fit in width bits.
func (p *PackedBits) AppendBits(value uint32, width int) {
	mustf(width >= 0 && width <= maxFieldBits, "field width %d outside 0..%d", width, maxFieldBits)
	mustf(width == maxFieldBits || value>>width == 0, "value %d does not fit in %d bits", value, width)

	// Fill the partially used tail byte first, then whole bytes.
	for width > 0 {
		free := 8 - p.n&7
		if free == 8 {
			p.buf = append(p.buf, 0)
		}
		take := min(free, width)
		chunk := byte((value >> (width - take)) & (1<<take - 1))
		p.buf[len(p.buf)-1] |= chunk << (free - take)
		width -= take
		p.n += take
	}
}

// AppendZeros appends n zero bits.
func (p *PackedBits) AppendZeros(n int) {
	mustf(n >= 0, "negative zero padding %d", n)
	for n > 0 {
		w := min(n, maxFieldBits)
		p.AppendBits(0, w)
		n -= w
	}
}

// Append appends every bit of q.
func (p *PackedBits) Append(q PackedBits) {
	for off := 0; off < q.n; off += maxFieldBits {
		w := min(q.n-off, maxFieldBits)
		p.AppendBits(q.Extract(off, w), w)
	}
}

// Extract returns width bits starting at bit offset as an unsigned integer,
// first bit most significant. It panics if the range is outside the sequence
// or width exceeds 32.
func (p PackedBits) Extract(offset, width int) uint32 {
	mustf(width >= 0 && width <= maxFieldBits, "field width %d outside 0..%d", width, maxFieldBits)
	mustf(offset >= 0 && offset+width <= p.n, "bits [%d, %d) outside payload of %d bits", offset, offset+width, p.n)

	var acc uint64
	for width > 0 {
		avail := 8 - offset&7
		take := min(avail, width)
		b := uint64(p.buf[offset>>3]>>(avail-take)) & (1<<take - 1)
		acc = acc<<take | b
		offset += take
		width -= take
	}
	return uint32(acc)
}

// Bit returns the bit at position i as 0 or 1.
func (p PackedBits) Bit(i int) uint8 {
	mustf(i >= 0 && i < p.n, "bit %d outside payload of %d bits", i, p.n)
	return (p.buf[i>>3] >> (7 - i&7)) & 1
}

// Slice returns a copy of the bits [from, to).
func (p PackedBits) Slice(from, to int) PackedBits {
	mustf(from >= 0 && from <= to && to <= p.n, "slice [%d, %d) outside payload of %d bits", from, to, p.n)
	out := NewPackedBits(to - from)
	for off := from; off < to; off += maxFieldBits {
		w := min(to-off, maxFieldBits)
		out.AppendBits(p.Extract(off, w), w)
	}
	return out
}

// Bytes returns the sequence as MSB-first bytes. Unused bits of the final
// byte are zero. The result does not alias p.
func (p PackedBits) Bytes() []byte {
	return slices.Clone(p.buf[:(p.n+7)/8])
}

// Equal reports whether p and q hold the same bits.
func (p PackedBits) Equal(q PackedBits) bool {
	if p.n != q.n {
		return false
	}
	// Unused tail bits are always zero, so whole bytes compare.
	return slices.Equal(p.buf[:(p.n+7)/8], q.buf[:(q.n+7)/8])
}

// String renders the bits as a string of '0' and '1'.
func (p PackedBits) String() string {
	var sb strings.Builder
	sb.Grow(p.n)
	for i := range p.n {
		sb.WriteByte('0' + p.Bit(i))
	}
	return sb.String()
}
