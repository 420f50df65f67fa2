package csi

// PUSCH splits the report in two parts, TS 38.212 Table 6.3.2.1.2-3:
//
//	Part 1: CRI | RI | CQI TB1        (same width for every rank)
//	Part 2: LI | PMI | CQI TB2        (width follows the rank in Part 1)
//
// Part 1 needs no padding. Part 2 only exists for codebooks with more than one
// port and quantities that include a PMI; otherwise it is empty.

// PUSCHSize describes the PUSCH layout of a configuration: the fixed Part 1
// size and the Part 2 size for every RI value Part 1 can carry. It is built
// by PUSCHSizeFor and never modified afterwards, so it can be shared.
type PUSCHSize struct {
	Part1Bits    int
	Part2        Correspondence
	Part2MinBits int
	Part2MaxBits int
}

// PUSCHPart1Bits returns the Part 1 size for cfg.
func PUSCHPart1Bits(cfg ReportConfig) int {
	mustf(cfg.Quantities < QuantitiesOther, "no field sizes for quantities %v", cfg.Quantities)
	return criBits(cfg.NofCSIRSResources) + riBits(cfg.Codebook, cfg.RIRestriction) + cqiBits
}

// hasPart2 reports whether cfg produces a Part 2 at all.
func hasPart2(cfg ReportConfig) bool {
	return AntennaPorts(cfg.Codebook) > 1 && cfg.Quantities.hasPMI()
}

// PUSCHPart2Bits returns the Part 2 size of a report carrying rank.
func PUSCHPart2Bits(cfg ReportConfig, rank int) int {
	sizes := FieldSizesFor(cfg, rank)
	if !hasPart2(cfg) {
		return 0
	}
	return sizes.Part2()
}

// PUSCHSizeFor builds the PUSCH size description of cfg.
// cfg must pass ValidateConfig.
func PUSCHSizeFor(cfg ReportConfig) PUSCHSize {
	corr := BuildCorrespondence(cfg)
	return PUSCHSize{
		Part1Bits:    PUSCHPart1Bits(cfg),
		Part2:        corr,
		Part2MinBits: corr.MinBits(),
		Part2MaxBits: corr.MaxBits(),
	}
}

// EncodePUSCH packs rep into its two PUSCH parts.
// It returns ErrInvalidConfig or ErrInvalidReport when rep cannot be
// represented with cfg.
func EncodePUSCH(rep Report, cfg ReportConfig) (part1, part2 PackedBits, err error) {
	plan, err := planReport(rep, cfg)
	if err != nil {
		return PackedBits{}, PackedBits{}, err
	}

	part1 = NewPackedBits(plan.sizes.Part1())
	plan.appendCRI(&part1)
	plan.appendRI(&part1)
	plan.appendCQI(&part1)

	if !hasPart2(cfg) {
		return part1, PackedBits{}, nil
	}
	part2 = NewPackedBits(plan.sizes.Part2())
	plan.appendLI(&part2)
	if err := plan.appendPMI(&part2); err != nil {
		return PackedBits{}, PackedBits{}, err
	}
	plan.appendSecondCQI(&part2)
	return part1, part2, nil
}

// DecodePUSCHPart1 unpacks Part 1 alone (CRI, RI, CQI TB1). The decoded RI
// tells how many Part 2 bits to expect, see PUSCHPart2Bits.
//
// A Part 1 whose length differs from PUSCHPart1Bits(cfg) panics. An RI index
// beyond the allowed rank list returns ErrInvalidRankIndex.
func DecodePUSCHPart1(part1 PackedBits, cfg ReportConfig) (Report, error) {
	want := PUSCHPart1Bits(cfg)
	mustf(part1.Len() == want, "PUSCH Part 1 length mismatch: got %d bits, want %d", part1.Len(), want)

	var rd Reader
	rd.Load(part1)

	var rep Report
	rep.CRI = decodeCRI(&rd, cfg)
	rank, err := decodeRank(&rd, cfg)
	if err != nil {
		return Report{}, err
	}
	rep.RI = Some(uint8(rank))
	rep.FirstTBCQI = Some(uint8(rd.field(cqiBits)))
	return rep, nil
}

// DecodePUSCH unpacks both PUSCH parts. ValidatePUSCH must accept the
// payloads and cfg first: Part 1 or Part 2 lengths that do not match the
// configuration and the decoded rank panic.
func DecodePUSCH(part1, part2 PackedBits, cfg ReportConfig) (Report, error) {
	rep, err := DecodePUSCHPart1(part1, cfg)
	if err != nil {
		return Report{}, err
	}
	rank := rep.rank()
	want := PUSCHPart2Bits(cfg, rank)
	mustf(part2.Len() == want, "PUSCH Part 2 length mismatch: got %d bits, want %d for rank %d", part2.Len(), want, rank)

	// Without a Part 2 every remaining field has zero width; presence still
	// follows the quantities, as on PUCCH.
	var rd Reader
	rd.Load(part2)
	sizes := FieldSizesFor(cfg, rank)
	rep.LI = decodeLI(&rd, cfg, sizes)
	rep.PMI = decodeReportPMI(&rd, cfg, rank)
	rep.SecondTBCQI = decodeSecondCQI(&rd, sizes)
	mustf(rd.Remaining() == 0, "PUSCH decoder left %d Part 2 bits unread", rd.Remaining())
	return rep, nil
}
