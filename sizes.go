package csi

import "fmt"

// FieldSizes holds the bit widths of every field of a wideband CSI report for
// one configuration and rank. Absent fields have width 0.
type FieldSizes struct {
	CRI  int
	RI   int
	LI   int
	PMI  int
	CQI1 int
	CQI2 int
}

// Total returns the report size in bits.
func (f FieldSizes) Total() int {
	return f.CRI + f.RI + f.LI + f.PMI + f.CQI1 + f.CQI2
}

// Part1 returns the width of the PUSCH Part 1 fields (CRI, RI, CQI1).
func (f FieldSizes) Part1() int {
	return f.CRI + f.RI + f.CQI1
}

// Part2 returns the width of the PUSCH Part 2 fields (LI, PMI, CQI2).
func (f FieldSizes) Part2() int {
	return f.LI + f.PMI + f.CQI2
}

// FieldSizesFor resolves the field widths of a report carrying the given
// rank. LI, PMI and CQI2 depend on the rank; CRI, RI and CQI1 do not.
//
// The configuration must have passed ValidateConfig: an Other codebook or
// quantity, or a restriction without allowed ranks, panics.
func FieldSizesFor(cfg ReportConfig, rank int) FieldSizes {
	mustf(cfg.Codebook < CodebookOther, "no field sizes for codebook %v", cfg.Codebook)
	mustf(cfg.Quantities < QuantitiesOther, "no field sizes for quantities %v", cfg.Quantities)

	f := FieldSizes{
		CRI:  criBits(cfg.NofCSIRSResources),
		RI:   riBits(cfg.Codebook, cfg.RIRestriction),
		CQI1: cqiBits,
		CQI2: cqi2Bits(rank),
	}
	if cfg.Quantities.hasLI() {
		f.LI = liBits(cfg.Codebook, rank)
	}
	if cfg.Quantities.hasPMI() {
		f.PMI = PMIBits(cfg.Codebook, rank)
	}
	return f
}

// ReportBits returns the size in bits of a report carrying the given rank.
func ReportBits(cfg ReportConfig, rank int) int {
	return FieldSizesFor(cfg, rank).Total()
}

// criBits is ceil(log2(K_s)) for a resource set of n resources.
func criBits(n int) int {
	mustf(n >= 1 && n <= maxCSIRSResources, "CSI-RS resource count %d outside 1..%d", n, maxCSIRSResources)
	return ceilLog2(n)
}

// riBits is the rank independent width of the RI field: enough bits to index
// the allowed ranks, capped by what the port count can signal.
func riBits(c Codebook, r RIRestriction) int {
	allowed := r.Count()
	mustf(allowed > 0, "rank restriction %v allows no rank", r)

	bits := ceilLog2(allowed)
	switch AntennaPorts(c) {
	case 1:
		return 0
	case 2:
		return min(1, bits)
	case 4:
		return min(2, bits)
	}
	return bits
}

// liBits is the LI width for the decoded rank.
func liBits(c Codebook, rank int) int {
	switch AntennaPorts(c) {
	case 1:
		return 0
	case 2:
		return ceilLog2(rank)
	case 4:
		return min(2, ceilLog2(rank))
	}
	panic(fmt.Sprintf("csi: no LI size for codebook %v", c))
}

// cqi2Bits is the width of the second transport block CQI, only reported
// when the rank needs two codewords.
func cqi2Bits(rank int) int {
	if rank > maxLayersSingleCodeword {
		return cqiBits
	}
	return 0
}
