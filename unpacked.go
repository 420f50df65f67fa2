package csi

import (
	"encoding/binary"
	"fmt"
)

// Unpacked bit arrays hold one bit per byte (value 0 or 1), the form UCI
// decoders and FAPI indications commonly hand payloads over in.

const (
	// unpackedLaneMask selects the least significant bit of every byte in a word.
	unpackedLaneMask = 0x0101010101010101
	// unpackedGather moves bit 0 of byte k to bit 63-k of the product, so the
	// top byte holds the eight lanes in MSB-first order.
	unpackedGather = 0x8040201008040201
)

// PackedBitsFromUnpacked packs an unpacked bit array. It returns
// ErrInvalidBuffer if any byte is not 0 or 1.
func PackedBitsFromUnpacked(src []uint8) (PackedBits, error) {
	p := NewPackedBits(len(src))
	i := 0
	// Eight bits at a time: one little endian word per output byte.
	for ; i+8 <= len(src); i += 8 {
		w := binary.LittleEndian.Uint64(src[i:])
		if w&^unpackedLaneMask != 0 {
			return PackedBits{}, invalidUnpacked(src[i : i+8])
		}
		p.AppendBits(uint32((w*unpackedGather)>>56), 8)
	}
	for ; i < len(src); i++ {
		if src[i] > 1 {
			return PackedBits{}, invalidUnpacked(src[i : i+1])
		}
		p.AppendBits(uint32(src[i]), 1)
	}
	return p, nil
}

func invalidUnpacked(chunk []uint8) error {
	for _, b := range chunk {
		if b > 1 {
			return fmt.Errorf("%w: unpacked bit value %d", ErrInvalidBuffer, b)
		}
	}
	return ErrInvalidBuffer
}

// Unpacked appends the bits of p to dst, one bit per byte, and returns the
// extended slice.
func (p PackedBits) Unpacked(dst []uint8) []uint8 {
	for i := range p.n {
		dst = append(dst, p.Bit(i))
	}
	return dst
}
