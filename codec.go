package csi

import "fmt"

// reportPlan is a report checked against a configuration, with the rank
// resolved into its RI field index and the field widths for that rank.
type reportPlan struct {
	rep     Report
	rank    int
	riIndex int
	sizes   FieldSizes
	quant   Quantities
	book    Codebook
}

// planReport checks that rep can be packed with cfg. Absent CRI and LI are
// packed as 0 and an absent RI as rank 1; a field the layout has no room for
// is an error rather than silently dropped.
func planReport(rep Report, cfg ReportConfig) (reportPlan, error) {
	if err := ValidateConfig(cfg); err != nil {
		return reportPlan{}, err
	}
	rank := rep.rank()
	index, ok := cfg.RIRestriction.IndexOf(rank)
	if !ok {
		return reportPlan{}, fmt.Errorf("%w: rank %d not allowed by restriction %v", ErrInvalidReport, rank, cfg.RIRestriction)
	}
	p := reportPlan{
		rep:     rep,
		rank:    rank,
		riIndex: index,
		sizes:   FieldSizesFor(cfg, rank),
		quant:   cfg.Quantities,
		book:    cfg.Codebook,
	}

	if !fits(uint32(rep.CRI.Value), p.sizes.CRI) {
		return reportPlan{}, fmt.Errorf("%w: CRI %d does not fit %d bits", ErrInvalidReport, rep.CRI.Value, p.sizes.CRI)
	}
	if rep.LI.Valid && !cfg.Quantities.hasLI() {
		return reportPlan{}, fmt.Errorf("%w: LI present but quantities %v carry none", ErrInvalidReport, cfg.Quantities)
	}
	if !fits(uint32(rep.LI.Value), p.sizes.LI) {
		return reportPlan{}, fmt.Errorf("%w: LI %d does not fit %d bits at rank %d", ErrInvalidReport, rep.LI.Value, p.sizes.LI, rank)
	}
	if rep.PMI != nil && !cfg.Quantities.hasPMI() {
		return reportPlan{}, fmt.Errorf("%w: PMI present but quantities %v carry none", ErrInvalidReport, cfg.Quantities)
	}
	if !rep.FirstTBCQI.Valid {
		return reportPlan{}, fmt.Errorf("%w: missing first transport block CQI", ErrInvalidReport)
	}
	if !fits(uint32(rep.FirstTBCQI.Value), p.sizes.CQI1) {
		return reportPlan{}, fmt.Errorf("%w: CQI %d does not fit %d bits", ErrInvalidReport, rep.FirstTBCQI.Value, p.sizes.CQI1)
	}
	if rep.SecondTBCQI.Valid != (p.sizes.CQI2 > 0) {
		return reportPlan{}, fmt.Errorf("%w: second transport block CQI presence %v does not match rank %d", ErrInvalidReport, rep.SecondTBCQI.Valid, rank)
	}
	if !fits(uint32(rep.SecondTBCQI.Value), p.sizes.CQI2) {
		return reportPlan{}, fmt.Errorf("%w: second CQI %d does not fit %d bits", ErrInvalidReport, rep.SecondTBCQI.Value, p.sizes.CQI2)
	}
	return p, nil
}

func (p reportPlan) appendCRI(dst *PackedBits) {
	dst.AppendBits(uint32(p.rep.CRI.Value), p.sizes.CRI)
}

func (p reportPlan) appendRI(dst *PackedBits) {
	dst.AppendBits(uint32(p.riIndex), p.sizes.RI)
}

func (p reportPlan) appendLI(dst *PackedBits) {
	if p.quant.hasLI() {
		dst.AppendBits(uint32(p.rep.LI.Value), p.sizes.LI)
	}
}

func (p reportPlan) appendPMI(dst *PackedBits) error {
	if !p.quant.hasPMI() {
		return nil
	}
	return encodePMI(dst, p.book, p.rank, p.rep.PMI)
}

func (p reportPlan) appendCQI(dst *PackedBits) {
	dst.AppendBits(uint32(p.rep.FirstTBCQI.Value), p.sizes.CQI1)
}

func (p reportPlan) appendSecondCQI(dst *PackedBits) {
	dst.AppendBits(uint32(p.rep.SecondTBCQI.Value), p.sizes.CQI2)
}

// decodeCRI reads the CRI field. A single resource set yields CRI 0.
func decodeCRI(rd *Reader, cfg ReportConfig) Optional[uint8] {
	return Some(uint8(rd.field(criBits(cfg.NofCSIRSResources))))
}

// decodeRank reads the RI field and maps the carried index to a rank through
// the allowed rank list.
func decodeRank(rd *Reader, cfg ReportConfig) (int, error) {
	index := int(rd.field(riBits(cfg.Codebook, cfg.RIRestriction)))
	rank, ok := cfg.RIRestriction.RankAt(index)
	if !ok {
		return 0, fmt.Errorf("%w: index %d, restriction %v allows %d ranks",
			ErrInvalidRankIndex, index, cfg.RIRestriction, cfg.RIRestriction.Count())
	}
	return rank, nil
}

// decodeLI reads the LI field when the quantities carry one.
func decodeLI(rd *Reader, cfg ReportConfig, sizes FieldSizes) Optional[uint8] {
	if !cfg.Quantities.hasLI() {
		return Optional[uint8]{}
	}
	return Some(uint8(rd.field(sizes.LI)))
}

// decodeReportPMI reads the PMI field when the quantities carry one.
func decodeReportPMI(rd *Reader, cfg ReportConfig, rank int) PMI {
	if !cfg.Quantities.hasPMI() {
		return nil
	}
	return decodePMI(rd, cfg.Codebook, rank)
}

// decodeSecondCQI reads the second transport block CQI for ranks that need it.
func decodeSecondCQI(rd *Reader, sizes FieldSizes) Optional[uint8] {
	if sizes.CQI2 == 0 {
		return Optional[uint8]{}
	}
	return Some(uint8(rd.field(sizes.CQI2)))
}
