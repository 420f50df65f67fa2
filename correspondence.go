package csi

import (
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/mhr3/streamvbyte"
)

// FieldLocation is the position of a field inside a PUSCH Part 1 payload.
type FieldLocation struct {
	Offset int
	Width  int
}

// Correspondence maps Part 1 content to the size of Part 2 (the UCI Part 1
// to Part 2 correspondence of the FAPI interface). The values of the Params
// fields, concatenated in order, index Sizes. For CSI reports the only
// parameter is the RI field and Sizes holds one Part 2 size per allowed rank,
// ascending.
type Correspondence struct {
	Params []FieldLocation
	Sizes  []int
}

// BuildCorrespondence enumerates the allowed ranks of cfg and records the
// Part 2 size each RI value announces. cfg must pass ValidateConfig.
func BuildCorrespondence(cfg ReportConfig) Correspondence {
	ranks := cfg.RIRestriction.Ranks()
	mustf(len(ranks) > 0, "rank restriction %v allows no rank", cfg.RIRestriction)

	ri := FieldLocation{
		Offset: criBits(cfg.NofCSIRSResources),
		Width:  riBits(cfg.Codebook, cfg.RIRestriction),
	}
	sizes := make([]int, len(ranks))
	for i, rank := range ranks {
		sizes[i] = PUSCHPart2Bits(cfg, rank)
	}
	return Correspondence{Params: []FieldLocation{ri}, Sizes: sizes}
}

// Len returns the number of entries.
func (c Correspondence) Len() int {
	return len(c.Sizes)
}

// Part2Bits returns the Part 2 size announced by index.
func (c Correspondence) Part2Bits(index int) (int, bool) {
	if index < 0 || index >= len(c.Sizes) {
		return 0, false
	}
	return c.Sizes[index], true
}

// MinBits returns the smallest Part 2 size, 0 for an empty table.
func (c Correspondence) MinBits() int {
	if len(c.Sizes) == 0 {
		return 0
	}
	return slices.Min(c.Sizes)
}

// MaxBits returns the largest Part 2 size, 0 for an empty table.
func (c Correspondence) MaxBits() int {
	if len(c.Sizes) == 0 {
		return 0
	}
	return slices.Max(c.Sizes)
}

// Index reads the parameter fields out of a Part 1 payload and concatenates
// them into a table index.
func (c Correspondence) Index(part1 PackedBits) (int, error) {
	index, width := 0, 0
	for _, p := range c.Params {
		if p.Offset < 0 || p.Width < 0 || p.Width > maxFieldBits || p.Offset+p.Width > part1.Len() {
			return 0, fmt.Errorf("%w: parameter bits [%d, %d) outside Part 1 of %d bits",
				ErrInvalidBuffer, p.Offset, p.Offset+p.Width, part1.Len())
		}
		width += p.Width
		if width > corrMaxIndexBits {
			return 0, fmt.Errorf("%w: parameters span %d bits, at most %d", ErrInvalidBuffer, width, corrMaxIndexBits)
		}
		index = index<<p.Width | int(part1.Extract(p.Offset, p.Width))
	}
	return index, nil
}

// Part2BitsFor returns the Part 2 size announced by a Part 1 payload, without
// decoding Part 1. This is the blind decode step of the transport layer.
func (c Correspondence) Part2BitsFor(part1 PackedBits) (int, error) {
	index, err := c.Index(part1)
	if err != nil {
		return 0, err
	}
	size, ok := c.Part2Bits(index)
	if !ok {
		return 0, fmt.Errorf("%w: index %d, table has %d entries", ErrInvalidRankIndex, index, len(c.Sizes))
	}
	return size, nil
}

// Clone returns a deep copy of c.
func (c Correspondence) Clone() Correspondence {
	return Correspondence{Params: slices.Clone(c.Params), Sizes: slices.Clone(c.Sizes)}
}

// Serialized layout of a Correspondence (multi-byte integers little endian):
//
//	version     u8      1
//	params      u8      P
//	locations   P x 2B  (offset u8, width u8)
//	entries     u16     M
//	svb_len     u16     S
//	sizes       S bytes StreamVByte-encoded Part 2 sizes
const (
	corrVersion       = 1
	corrHeaderBytes   = 2
	corrParamBytes    = 2
	corrTrailerBytes  = 4
	corrMaxParams     = 0xff
	corrMaxEntries    = 0xffff
	corrMaxFieldValue = 0xff
	// corrMaxIndexBits bounds the concatenated parameter fields so the index
	// stays a non-negative int32.
	corrMaxIndexBits = maxFieldBits - 1
)

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Correspondence) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(nil)
}

// AppendBinary appends the serialized form of c to dst. On error dst is
// returned unchanged.
func (c Correspondence) AppendBinary(dst []byte) ([]byte, error) {
	if len(c.Params) > corrMaxParams {
		return dst, fmt.Errorf("%w: %d parameters exceed %d", ErrInvalidBuffer, len(c.Params), corrMaxParams)
	}
	if len(c.Sizes) > corrMaxEntries {
		return dst, fmt.Errorf("%w: %d entries exceed %d", ErrInvalidBuffer, len(c.Sizes), corrMaxEntries)
	}
	for _, p := range c.Params {
		if p.Offset < 0 || p.Offset > corrMaxFieldValue || p.Width < 0 || p.Width > corrMaxFieldValue {
			return dst, fmt.Errorf("%w: parameter location %+v out of range", ErrInvalidBuffer, p)
		}
	}
	values := make([]uint32, len(c.Sizes))
	for i, s := range c.Sizes {
		if s < 0 {
			return dst, fmt.Errorf("%w: negative Part 2 size %d at index %d", ErrInvalidBuffer, s, i)
		}
		values[i] = uint32(s)
	}

	dst = append(dst, corrVersion, byte(len(c.Params)))
	for _, p := range c.Params {
		dst = append(dst, byte(p.Offset), byte(p.Width))
	}

	var svbData []byte
	if len(values) > 0 {
		svbData = streamvbyte.EncodeUint32(values, &streamvbyte.EncodeOptions[uint32]{
			Buffer: make([]byte, streamvbyte.MaxEncodedLen(len(values))),
		})
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(values)))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(svbData)))
	return append(dst, svbData...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Correspondence) UnmarshalBinary(b []byte) error {
	h, err := parseCorrHeader(b)
	if err != nil {
		return err
	}
	params := h.locations(b)
	sizes := make([]int, h.entries)
	if h.entries > 0 {
		values := streamvbyte.DecodeUint32(h.svb, h.entries, &streamvbyte.DecodeOptions[uint32]{
			Buffer: make([]uint32, h.entries),
		})
		for i, v := range values {
			sizes[i] = int(v)
		}
	}
	c.Params = params
	c.Sizes = sizes
	return nil
}

// corrHeader is the parsed fixed part of a serialized Correspondence.
type corrHeader struct {
	params  int
	entries int
	svb     []byte
}

// locations decodes the parameter locations of the buffer h was parsed from.
func (h corrHeader) locations(b []byte) []FieldLocation {
	params := make([]FieldLocation, h.params)
	for i := range params {
		off := corrHeaderBytes + i*corrParamBytes
		params[i] = FieldLocation{Offset: int(b[off]), Width: int(b[off+1])}
	}
	return params
}

func parseCorrHeader(b []byte) (corrHeader, error) {
	if len(b) < corrHeaderBytes {
		return corrHeader{}, fmt.Errorf("%w: buffer too small for header (need %d bytes, got %d)",
			ErrInvalidBuffer, corrHeaderBytes, len(b))
	}
	if b[0] != corrVersion {
		return corrHeader{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBuffer, b[0])
	}
	h := corrHeader{params: int(b[1])}
	pos := corrHeaderBytes + h.params*corrParamBytes
	if len(b) < pos+corrTrailerBytes {
		return corrHeader{}, fmt.Errorf("%w: buffer truncated (need %d bytes, got %d)",
			ErrInvalidBuffer, pos+corrTrailerBytes, len(b))
	}
	h.entries = int(binary.LittleEndian.Uint16(b[pos:]))
	svbLen := int(binary.LittleEndian.Uint16(b[pos+2:]))
	pos += corrTrailerBytes
	if len(b) < pos+svbLen {
		return corrHeader{}, fmt.Errorf("%w: truncated StreamVByte data (need %d bytes, got %d)",
			ErrInvalidBuffer, svbLen, len(b)-pos)
	}
	h.svb = b[pos : pos+svbLen]
	if need := svbEncodedLen(h.svb, h.entries); need < 0 || need > svbLen {
		return corrHeader{}, fmt.Errorf("%w: StreamVByte data of %d bytes cannot hold %d entries",
			ErrInvalidBuffer, svbLen, h.entries)
	}
	return h, nil
}
