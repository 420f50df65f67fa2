// Random access into serialized correspondence tables.
//
// A transport layer that keeps tables in their serialized form can look up
// the Part 2 size of one RI value without decoding the whole StreamVByte map.

package csi

import "fmt"

// svbControlBlockSizeLUT maps a control byte of a serialized size map to the
// number of data bytes its four sizes occupy.
var svbControlBlockSizeLUT [256]uint8

func init() {
	for ctrl := range svbControlBlockSizeLUT {
		n := 0
		for pos := range 4 {
			n += svbValueLen(byte(ctrl), pos)
		}
		svbControlBlockSizeLUT[ctrl] = uint8(n)
	}
}

// svbValueLen returns the data length of value pos (0..3) under a control byte.
func svbValueLen(ctrl byte, pos int) int {
	return int((ctrl>>(pos*2))&0x03) + 1
}

// svbEncodedLen returns the number of bytes a StreamVByte stream of count
// values occupies, derived from its control bytes. It returns -1 if svbData
// is too short to hold the control bytes.
func svbEncodedLen(svbData []byte, count int) int {
	numControlBytes := (count + 3) >> 2
	if len(svbData) < numControlBytes {
		return -1
	}
	n := numControlBytes
	full := count >> 2
	for i := range full {
		n += int(svbControlBlockSizeLUT[svbData[i]])
	}
	// A partial last block only stores its first count%4 values.
	for pos := range count & 0x03 {
		n += svbValueLen(svbData[full], pos)
	}
	return n
}

// svbDecodeOne decodes a single value from StreamVByte data at the given index.
// count is the total number of encoded values; the caller has checked with
// svbEncodedLen that svbData holds all of them.
func svbDecodeOne(svbData []byte, count, index int) uint32 {
	// StreamVByte format: control bytes first, then data bytes
	numControlBytes := (count + 3) >> 2
	controlBytes := svbData[:numControlBytes]
	dataBytes := svbData[numControlBytes:]

	blockIndex := index >> 2
	posInBlock := index & 0x03

	dataOffset := 0
	for i := range blockIndex {
		dataOffset += int(svbControlBlockSizeLUT[controlBytes[i]])
	}

	ctrl := controlBytes[blockIndex]
	for i := range posInBlock {
		dataOffset += svbValueLen(ctrl, i)
	}
	return svbReadValue(dataBytes[dataOffset:], svbValueLen(ctrl, posInBlock))
}

// svbReadValue reads a little endian value of 1-4 bytes.
func svbReadValue(data []byte, byteLen int) uint32 {
	var v uint32
	for i := byteLen - 1; i >= 0; i-- {
		v = v<<8 | uint32(data[i])
	}
	return v
}

// Part2BitsAt returns entry index of a serialized Correspondence.
func Part2BitsAt(blob []byte, index int) (int, error) {
	h, err := parseCorrHeader(blob)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= h.entries {
		return 0, fmt.Errorf("%w: index %d, table has %d entries", ErrInvalidRankIndex, index, h.entries)
	}
	return int(svbDecodeOne(h.svb, h.entries, index)), nil
}

// Part2BitsForBlob performs the blind decode lookup of Correspondence.Part2BitsFor
// directly on a serialized table.
func Part2BitsForBlob(blob []byte, part1 PackedBits) (int, error) {
	h, err := parseCorrHeader(blob)
	if err != nil {
		return 0, err
	}
	index, err := Correspondence{Params: h.locations(blob)}.Index(part1)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= h.entries {
		return 0, fmt.Errorf("%w: index %d, table has %d entries", ErrInvalidRankIndex, index, h.entries)
	}
	return int(svbDecodeOne(h.svb, h.entries, index)), nil
}
