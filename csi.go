// Package csi implements the NR channel state information (CSI) report codec
// used on the uplink control channels.
//
// A CSI report is a variable-length bit string whose layout depends on the
// report configuration (codebook, number of CSI-RS resources, rank
// restriction, report quantities) and, for some fields, on the rank the UE
// reports inside the very same payload. The package resolves field widths,
// packs reports into PackedBits and unpacks them again for both transports:
//
//   - PUCCH carries one payload padded to the largest size over all allowed
//     ranks (TS 38.212 Table 6.3.1.1.2-7).
//   - PUSCH carries a rank independent Part 1 and a Part 2 whose length follows
//     from the RI decoded out of Part 1 (TS 38.212 Table 6.3.2.1.2-3). The
//     Part 2 correspondence lets a transport layer size Part 2 before reading it.
//
// Fields are packed MSB first and concatenated without byte alignment.
// Decoders assume the configuration and payload lengths were checked with the
// Validate* functions first; reaching a structurally impossible state panics.
// The package maintains no global mutable state; all functions are safe for
// concurrent use.
package csi

import (
	"errors"
	"fmt"
)

const (
	// maxCSIRSResources is the largest CSI-RS resource set a report can select from.
	maxCSIRSResources = 64
	// maxRank is the largest rank a restriction bitmap can describe.
	maxRank = 8
	// cqiBits is the width of a wideband CQI field.
	cqiBits = 4
	// maxLayersSingleCodeword is the largest rank reported with one transport block.
	maxLayersSingleCodeword = 4
	// maxFieldBits is the widest single field AppendBits/Extract accept.
	maxFieldBits = 32
)

// ErrInvalidConfig is returned when a report configuration cannot be used by the codec.
var ErrInvalidConfig = errors.New("csi: invalid report configuration")

// ErrInvalidReport is returned when a report cannot be encoded with a configuration.
var ErrInvalidReport = errors.New("csi: invalid report")

// ErrInvalidRankIndex is returned when a payload carries an RI index beyond the allowed ranks.
var ErrInvalidRankIndex = errors.New("csi: rank indicator index out of range")

// ErrInvalidBuffer is returned when a serialized buffer is too small or malformed.
var ErrInvalidBuffer = errors.New("csi: invalid buffer")

// ErrShortRead is returned by Reader when fewer bits remain than requested.
var ErrShortRead = errors.New("csi: not enough bits")

// mustf aborts the current unit of work. It guards states that validation
// rules out, so reaching it means a caller skipped the Validate* functions.
func mustf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("csi: "+format, args...))
	}
}

// ceilLog2 returns ceil(log2(n)) for n >= 1 and 0 for n <= 1.
func ceilLog2(n int) int {
	if n <= 1 {
		return 0
	}
	return ceilLog2LUT[n]
}

// ceilLog2LUT covers every count the resolver can ask for (resources up to 64).
var ceilLog2LUT = [maxCSIRSResources + 1]int{
	0, 0, 1, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4, 4, 4, 4, 4,
	5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
	6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6, 6,
}
