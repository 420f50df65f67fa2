package csi

import "fmt"

// ValidateConfig checks that cfg describes a report the codec can size and
// decode. The error wraps ErrInvalidConfig and names the first problem found.
func ValidateConfig(cfg ReportConfig) error {
	if cfg.NofCSIRSResources < 1 || cfg.NofCSIRSResources > maxCSIRSResources {
		return fmt.Errorf("%w: CSI-RS resource count %d outside 1..%d", ErrInvalidConfig, cfg.NofCSIRSResources, maxCSIRSResources)
	}
	if cfg.Codebook >= CodebookOther {
		return fmt.Errorf("%w: unsupported codebook %v", ErrInvalidConfig, cfg.Codebook)
	}
	if cfg.Quantities >= QuantitiesOther {
		return fmt.Errorf("%w: unsupported quantities %v", ErrInvalidConfig, cfg.Quantities)
	}
	ports := AntennaPorts(cfg.Codebook)
	if cfg.RIRestriction.Size() != ports {
		return fmt.Errorf("%w: rank restriction width %d does not match %d antenna ports",
			ErrInvalidConfig, cfg.RIRestriction.Size(), ports)
	}
	if cfg.RIRestriction.Count() == 0 {
		return fmt.Errorf("%w: rank restriction allows no rank", ErrInvalidConfig)
	}
	return nil
}

// ValidatePUCCH reports whether payload can be decoded with DecodePUCCH:
// cfg is valid and payload is exactly PUCCHBits(cfg) long. It never panics.
func ValidatePUCCH(payload PackedBits, cfg ReportConfig) bool {
	return CheckPUCCH(payload, cfg) == nil
}

// CheckPUCCH is ValidatePUCCH with the reason for a rejection.
func CheckPUCCH(payload PackedBits, cfg ReportConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if want := PUCCHBits(cfg); payload.Len() != want {
		return fmt.Errorf("%w: PUCCH payload has %d bits, want %d", ErrInvalidBuffer, payload.Len(), want)
	}
	return nil
}

// ValidatePUSCH reports whether part1 and part2 can be decoded with
// DecodePUSCH: cfg is valid, Part 1 has the configured size and Part 2 the
// size announced by the RI carried in Part 1. It never panics.
func ValidatePUSCH(part1, part2 PackedBits, cfg ReportConfig) bool {
	return CheckPUSCH(part1, part2, cfg) == nil
}

// CheckPUSCH is ValidatePUSCH with the reason for a rejection.
func CheckPUSCH(part1, part2 PackedBits, cfg ReportConfig) error {
	if err := CheckPUSCHPart1(part1, cfg); err != nil {
		return err
	}
	corr := BuildCorrespondence(cfg)
	want, err := corr.Part2BitsFor(part1)
	if err != nil {
		return err
	}
	if part2.Len() != want {
		return fmt.Errorf("%w: PUSCH Part 2 has %d bits, want %d", ErrInvalidBuffer, part2.Len(), want)
	}
	return nil
}

// CheckPUSCHPart1 checks cfg and the Part 1 length, the precondition of
// DecodePUSCHPart1.
func CheckPUSCHPart1(part1 PackedBits, cfg ReportConfig) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if want := PUSCHPart1Bits(cfg); part1.Len() != want {
		return fmt.Errorf("%w: PUSCH Part 1 has %d bits, want %d", ErrInvalidBuffer, part1.Len(), want)
	}
	return nil
}
