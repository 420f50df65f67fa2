package csi

import (
	"fmt"
	"math/bits"
)

// Codebook identifies the PMI codebook a report configuration uses.
type Codebook uint8

const (
	// CodebookOnePort is the single antenna port case; the report carries no PMI.
	CodebookOnePort Codebook = iota
	// CodebookTwoPort is the two antenna port Type I single panel codebook.
	CodebookTwoPort
	// CodebookTypeISinglePanel4PortMode1 is the four port Type I single panel
	// codebook with codebookMode 1 (N1=2, N2=1, O1=4, O2=1).
	CodebookTypeISinglePanel4PortMode1
	// CodebookOther is any codebook the codec does not support.
	CodebookOther
)

func (c Codebook) String() string {
	switch c {
	case CodebookOnePort:
		return "one-port"
	case CodebookTwoPort:
		return "two-port"
	case CodebookTypeISinglePanel4PortMode1:
		return "typeI-single-panel-4port-mode1"
	case CodebookOther:
		return "other"
	}
	return fmt.Sprintf("Codebook(%d)", uint8(c))
}

// AntennaPorts returns the number of CSI-RS antenna ports implied by the
// codebook. CodebookOther yields 0.
func AntennaPorts(c Codebook) int {
	switch c {
	case CodebookOnePort:
		return 1
	case CodebookTwoPort:
		return 2
	case CodebookTypeISinglePanel4PortMode1:
		return 4
	}
	return 0
}

// Quantities selects which fields a report carries (reportQuantity in RRC).
type Quantities uint8

const (
	// QuantitiesCRIRIPMICQI reports CRI, RI, PMI and CQI.
	QuantitiesCRIRIPMICQI Quantities = iota
	// QuantitiesCRIRICQI reports CRI, RI and CQI.
	QuantitiesCRIRICQI
	// QuantitiesCRIRILIPMICQI reports CRI, RI, LI, PMI and CQI.
	QuantitiesCRIRILIPMICQI
	// QuantitiesOther is any report quantity the codec does not support.
	QuantitiesOther
)

func (q Quantities) String() string {
	switch q {
	case QuantitiesCRIRIPMICQI:
		return "cri-ri-pmi-cqi"
	case QuantitiesCRIRICQI:
		return "cri-ri-cqi"
	case QuantitiesCRIRILIPMICQI:
		return "cri-ri-li-pmi-cqi"
	case QuantitiesOther:
		return "other"
	}
	return fmt.Sprintf("Quantities(%d)", uint8(q))
}

// hasPMI reports whether the quantities include a PMI field.
func (q Quantities) hasPMI() bool {
	return q == QuantitiesCRIRIPMICQI || q == QuantitiesCRIRILIPMICQI
}

// hasLI reports whether the quantities include an LI field.
func (q Quantities) hasLI() bool {
	return q == QuantitiesCRIRILIPMICQI
}

// RIRestriction is the typeI-SinglePanel-ri-Restriction bitmap. Bit i set
// allows rank i+1. The width of the bitmap equals the number of antenna ports
// of the codebook it belongs to.
type RIRestriction struct {
	mask uint8
	size uint8
}

// NewRIRestriction builds a restriction of the given width allowing the listed
// ranks. It returns ErrInvalidConfig for widths outside 1..8 or ranks that do
// not fit the width.
func NewRIRestriction(size int, allowed ...int) (RIRestriction, error) {
	if size < 1 || size > maxRank {
		return RIRestriction{}, fmt.Errorf("%w: restriction width %d outside 1..%d", ErrInvalidConfig, size, maxRank)
	}
	var mask uint8
	for _, rank := range allowed {
		if rank < 1 || rank > size {
			return RIRestriction{}, fmt.Errorf("%w: rank %d outside 1..%d", ErrInvalidConfig, rank, size)
		}
		mask |= 1 << (rank - 1)
	}
	return RIRestriction{mask: mask, size: uint8(size)}, nil
}

// RIRestrictionFromMask builds a restriction from a raw bitmap. Bits at or
// above size are dropped.
func RIRestrictionFromMask(size int, mask uint8) (RIRestriction, error) {
	if size < 1 || size > maxRank {
		return RIRestriction{}, fmt.Errorf("%w: restriction width %d outside 1..%d", ErrInvalidConfig, size, maxRank)
	}
	if size < maxRank {
		mask &= (1 << size) - 1
	}
	return RIRestriction{mask: mask, size: uint8(size)}, nil
}

// AllRanks allows every rank up to the number of ports of the codebook.
// CodebookOther yields the zero restriction, which fails validation.
func AllRanks(c Codebook) RIRestriction {
	ports := AntennaPorts(c)
	if ports == 0 {
		return RIRestriction{}
	}
	r, _ := RIRestrictionFromMask(ports, 0xff)
	return r
}

// Size returns the width of the bitmap.
func (r RIRestriction) Size() int { return int(r.size) }

// Mask returns the raw bitmap.
func (r RIRestriction) Mask() uint8 { return r.mask }

// Count returns the number of allowed ranks.
func (r RIRestriction) Count() int { return bits.OnesCount8(r.mask) }

// Allowed reports whether rank is permitted.
func (r RIRestriction) Allowed(rank int) bool {
	if rank < 1 || rank > int(r.size) {
		return false
	}
	return r.mask&(1<<(rank-1)) != 0
}

// Ranks returns the allowed ranks in ascending order.
func (r RIRestriction) Ranks() []int {
	out := make([]int, 0, r.Count())
	for m := r.mask; m != 0; m &= m - 1 {
		out = append(out, bits.TrailingZeros8(m)+1)
	}
	return out
}

// MaxRank returns the largest allowed rank, or 0 if none is allowed.
func (r RIRestriction) MaxRank() int {
	return bits.Len8(r.mask)
}

// RankAt maps an RI field value to a rank. The RI field does not carry the
// rank itself: it carries the position of the rank within the ascending list
// of allowed ranks. ok is false when index is beyond that list.
func (r RIRestriction) RankAt(index int) (rank int, ok bool) {
	if index < 0 {
		return 0, false
	}
	for m := r.mask; m != 0; m &= m - 1 {
		if index == 0 {
			return bits.TrailingZeros8(m) + 1, true
		}
		index--
	}
	return 0, false
}

// IndexOf is the inverse of RankAt: it returns the RI field value that
// signals rank. ok is false when the rank is not allowed.
func (r RIRestriction) IndexOf(rank int) (index int, ok bool) {
	if !r.Allowed(rank) {
		return 0, false
	}
	below := r.mask & (1<<(rank-1) - 1)
	return bits.OnesCount8(below), true
}

func (r RIRestriction) String() string {
	return fmt.Sprintf("%0*b", int(r.size), r.mask)
}

// SubbandConfig carries the subband reporting parameters of a report
// configuration. The codec reports wideband quantities only; the value is
// kept so configurations round-trip unchanged.
type SubbandConfig struct {
	NofSubbands int
	CQIFormat   bool
	PMIFormat   bool
}

// ReportConfig describes what a CSI report contains. It is produced from the
// RRC CSI-ReportConfig and lives as long as that configuration.
type ReportConfig struct {
	// NofCSIRSResources is the number of resources in the CSI-RS resource set (1..64).
	NofCSIRSResources int
	// Codebook is the PMI codebook.
	Codebook Codebook
	// RIRestriction selects the ranks the UE may report.
	RIRestriction RIRestriction
	// Quantities selects the reported fields.
	Quantities Quantities
	// Subband is nil for wideband reporting.
	Subband *SubbandConfig
}

// sizeKey holds every ReportConfig field that affects the bit layout.
type sizeKey struct {
	nofResources uint8
	codebook     Codebook
	ri           RIRestriction
	quantities   Quantities
}

func (c ReportConfig) key() sizeKey {
	return sizeKey{
		nofResources: uint8(c.NofCSIRSResources),
		codebook:     c.Codebook,
		ri:           c.RIRestriction,
		quantities:   c.Quantities,
	}
}
