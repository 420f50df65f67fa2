package csi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	good := twoPortConfig(4)
	testCases := []struct {
		name   string
		modify func(*ReportConfig)
		ok     bool
	}{
		{"valid", func(*ReportConfig) {}, true},
		{"valid_max_resources", func(c *ReportConfig) { c.NofCSIRSResources = 64 }, true},
		{"valid_subband_ignored", func(c *ReportConfig) { c.Subband = &SubbandConfig{NofSubbands: 10} }, true},
		{"zero_resources", func(c *ReportConfig) { c.NofCSIRSResources = 0 }, false},
		{"too_many_resources", func(c *ReportConfig) { c.NofCSIRSResources = 65 }, false},
		{"other_codebook", func(c *ReportConfig) { c.Codebook = CodebookOther }, false},
		{"other_quantities", func(c *ReportConfig) { c.Quantities = QuantitiesOther }, false},
		{"restriction_width_mismatch", func(c *ReportConfig) { c.RIRestriction = AllRanks(CodebookTypeISinglePanel4PortMode1) }, false},
		{"empty_restriction", func(c *ReportConfig) { c.RIRestriction, _ = RIRestrictionFromMask(2, 0) }, false},
		{"zero_restriction", func(c *ReportConfig) { c.RIRestriction = RIRestriction{} }, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := good
			tc.modify(&cfg)
			err := ValidateConfig(cfg)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestValidatePUCCH(t *testing.T) {
	for _, cfg := range allConfigs() {
		n := PUCCHBits(cfg)
		var p PackedBits
		p.AppendZeros(n)
		assert.True(t, ValidatePUCCH(p, cfg), configName(cfg))

		short := p.Slice(0, n-1)
		assert.False(t, ValidatePUCCH(short, cfg), configName(cfg))
		assert.ErrorIs(t, CheckPUCCH(short, cfg), ErrInvalidBuffer)

		p.AppendZeros(1)
		assert.False(t, ValidatePUCCH(p, cfg), configName(cfg))
	}

	bad := twoPortConfig(1)
	bad.Codebook = CodebookOther
	assert.False(t, ValidatePUCCH(mustBits(t, "0000000"), bad))
	assert.ErrorIs(t, CheckPUCCH(mustBits(t, "0000000"), bad), ErrInvalidConfig)
}

func TestValidatePUSCH(t *testing.T) {
	for _, cfg := range allConfigs() {
		n1 := PUSCHPart1Bits(cfg)
		for index, rank := range cfg.RIRestriction.Ranks() {
			var part1 PackedBits
			part1.AppendBits(0, criBits(cfg.NofCSIRSResources))
			part1.AppendBits(uint32(index), riBits(cfg.Codebook, cfg.RIRestriction))
			part1.AppendZeros(cqiBits)
			assert.Equal(t, n1, part1.Len())

			n2 := PUSCHPart2Bits(cfg, rank)
			var part2 PackedBits
			part2.AppendZeros(n2)
			assert.True(t, ValidatePUSCH(part1, part2, cfg), "%s rank %d", configName(cfg), rank)
			assert.NoError(t, CheckPUSCHPart1(part1, cfg))

			longer := part2
			longer.AppendZeros(1)
			assert.False(t, ValidatePUSCH(part1, longer, cfg), "%s rank %d", configName(cfg), rank)
			if n2 > 0 {
				assert.False(t, ValidatePUSCH(part1, part2.Slice(0, n2-1), cfg), "%s rank %d", configName(cfg), rank)
			}
			assert.False(t, ValidatePUSCH(part1.Slice(0, n1-1), part2, cfg), "%s rank %d", configName(cfg), rank)
		}
	}
}

func TestCheckPUSCHReasons(t *testing.T) {
	assert := assert.New(t)
	cfg := fourPortConfig(QuantitiesCRIRILIPMICQI, AllRanks(CodebookTypeISinglePanel4PortMode1))
	part1 := mustBits(t, "01 1100")

	assert.ErrorIs(CheckPUSCH(part1, mustBits(t, "10110"), cfg), ErrInvalidBuffer)
	assert.ErrorIs(CheckPUSCH(mustBits(t, "0"), mustBits(t, "101101"), cfg), ErrInvalidBuffer)
	assert.ErrorIs(CheckPUSCHPart1(mustBits(t, "0"), cfg), ErrInvalidBuffer)

	cfg.NofCSIRSResources = 0
	assert.ErrorIs(CheckPUSCH(part1, mustBits(t, "101101"), cfg), ErrInvalidConfig)
	assert.False(ValidatePUSCH(part1, mustBits(t, "101101"), cfg))
}

// Validators must never panic, whatever the input.
func TestValidatorsNeverPanic(t *testing.T) {
	configs := []ReportConfig{
		{},
		{NofCSIRSResources: 300, Codebook: CodebookTwoPort, RIRestriction: AllRanks(CodebookTwoPort)},
		{NofCSIRSResources: 1, Codebook: Codebook(42), Quantities: QuantitiesCRIRICQI},
		{NofCSIRSResources: 1, Codebook: CodebookTwoPort, RIRestriction: AllRanks(CodebookTwoPort), Quantities: Quantities(42)},
		twoPortConfig(3),
	}
	var payload PackedBits
	for n := 0; n < 20; n++ {
		for _, cfg := range configs {
			assert.NotPanics(t, func() {
				ValidatePUCCH(payload, cfg)
				ValidatePUSCH(payload, payload, cfg)
				_ = CheckPUSCHPart1(payload, cfg)
			})
		}
		payload.AppendBits(1, 1)
	}
}
