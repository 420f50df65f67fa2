package csi

// PUCCH carries the whole report in one payload. Because the rank is only
// known after decoding RI, the payload is padded to the largest report size
// over all allowed ranks, TS 38.212 Table 6.3.1.1.2-7:
//
//	CRI | RI | LI | zero padding | PMI | CQI TB1 | CQI TB2

// PUCCHBits returns the PUCCH payload size for cfg: the maximum of ReportBits
// over the allowed ranks. cfg must pass ValidateConfig.
func PUCCHBits(cfg ReportConfig) int {
	ranks := cfg.RIRestriction.Ranks()
	mustf(len(ranks) > 0, "rank restriction %v allows no rank", cfg.RIRestriction)
	size := 0
	for _, rank := range ranks {
		size = max(size, ReportBits(cfg, rank))
	}
	return size
}

// PUCCHPaddingBits returns the number of padding bits a PUCCH payload carries
// after the LI field when it reports rank.
func PUCCHPaddingBits(cfg ReportConfig, rank int) int {
	return PUCCHBits(cfg) - ReportBits(cfg, rank)
}

// EncodePUCCH packs rep into a PUCCH payload of PUCCHBits(cfg) bits.
// It returns ErrInvalidConfig or ErrInvalidReport when rep cannot be
// represented with cfg.
func EncodePUCCH(rep Report, cfg ReportConfig) (PackedBits, error) {
	plan, err := planReport(rep, cfg)
	if err != nil {
		return PackedBits{}, err
	}
	total := PUCCHBits(cfg)
	out := NewPackedBits(total)
	plan.appendCRI(&out)
	plan.appendRI(&out)
	plan.appendLI(&out)
	out.AppendZeros(total - plan.sizes.Total())
	if err := plan.appendPMI(&out); err != nil {
		return PackedBits{}, err
	}
	plan.appendCQI(&out)
	plan.appendSecondCQI(&out)
	mustf(out.Len() == total, "PUCCH encoder produced %d bits, want %d", out.Len(), total)
	return out, nil
}

// DecodePUCCH unpacks a PUCCH payload. CRI and RI are always present in the
// result; with a zero width field they hold 0 and the only allowed rank.
//
// ValidatePUCCH must accept payload and cfg first: a payload whose length
// differs from PUCCHBits(cfg) panics. An RI index beyond the allowed rank list
// returns ErrInvalidRankIndex.
func DecodePUCCH(payload PackedBits, cfg ReportConfig) (Report, error) {
	total := PUCCHBits(cfg)
	mustf(payload.Len() == total, "PUCCH payload length mismatch: got %d bits, want %d", payload.Len(), total)

	var rd Reader
	rd.Load(payload)

	var rep Report
	rep.CRI = decodeCRI(&rd, cfg)
	rank, err := decodeRank(&rd, cfg)
	if err != nil {
		return Report{}, err
	}
	rep.RI = Some(uint8(rank))

	sizes := FieldSizesFor(cfg, rank)
	rep.LI = decodeLI(&rd, cfg, sizes)
	if err := rd.Skip(total - sizes.Total()); err != nil {
		mustf(false, "skipping PUCCH padding: %v", err)
	}
	rep.PMI = decodeReportPMI(&rd, cfg, rank)
	rep.FirstTBCQI = Some(uint8(rd.field(sizes.CQI1)))
	rep.SecondTBCQI = decodeSecondCQI(&rd, sizes)
	mustf(rd.Remaining() == 0, "PUCCH decoder left %d bits unread", rd.Remaining())
	return rep, nil
}
