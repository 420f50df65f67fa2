package csi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func onePortConfig() ReportConfig {
	return ReportConfig{
		NofCSIRSResources: 1,
		Codebook:          CodebookOnePort,
		RIRestriction:     AllRanks(CodebookOnePort),
		Quantities:        QuantitiesCRIRIPMICQI,
	}
}

func twoPortConfig(resources int) ReportConfig {
	return ReportConfig{
		NofCSIRSResources: resources,
		Codebook:          CodebookTwoPort,
		RIRestriction:     AllRanks(CodebookTwoPort),
		Quantities:        QuantitiesCRIRIPMICQI,
	}
}

func fourPortConfig(q Quantities, ri RIRestriction) ReportConfig {
	return ReportConfig{
		NofCSIRSResources: 1,
		Codebook:          CodebookTypeISinglePanel4PortMode1,
		RIRestriction:     ri,
		Quantities:        q,
	}
}

// A single port report is only a CQI.
func TestPUCCHOnePort(t *testing.T) {
	assert := assert.New(t)
	cfg := onePortConfig()
	assert.Equal(4, PUCCHBits(cfg))

	rep, err := DecodePUCCH(mustBits(t, "1011"), cfg)
	assert.NoError(err)
	assert.Equal(Report{
		CRI:        Some(uint8(0)),
		RI:         Some(uint8(1)),
		FirstTBCQI: Some(uint8(11)),
	}, rep)

	payload, err := EncodePUCCH(Report{FirstTBCQI: Some(uint8(11))}, cfg)
	assert.NoError(err)
	assert.Equal("1011", payload.String())
}

func TestPUCCHTwoPort(t *testing.T) {
	testCases := []struct {
		name      string
		resources int
		payload   string
		want      Report
	}{
		{
			name:      "single_resource_rank1",
			resources: 1,
			payload:   "0 00 1010",
			want:      Report{CRI: Some(uint8(0)), RI: Some(uint8(1)), PMI: TwoPortPMI{Index: 0}, FirstTBCQI: Some(uint8(10))},
		},
		{
			name:      "single_resource_rank2_padded",
			resources: 1,
			payload:   "1 0 1 0111",
			want:      Report{CRI: Some(uint8(0)), RI: Some(uint8(2)), PMI: TwoPortPMI{Index: 1}, FirstTBCQI: Some(uint8(7))},
		},
		{
			name:      "two_resources_rank1",
			resources: 2,
			payload:   "0 0 00 1010",
			want:      Report{CRI: Some(uint8(0)), RI: Some(uint8(1)), PMI: TwoPortPMI{Index: 0}, FirstTBCQI: Some(uint8(10))},
		},
		{
			name:      "two_resources_rank2_padded",
			resources: 2,
			payload:   "1 1 0 1 0111",
			want:      Report{CRI: Some(uint8(1)), RI: Some(uint8(2)), PMI: TwoPortPMI{Index: 1}, FirstTBCQI: Some(uint8(7))},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			cfg := twoPortConfig(tc.resources)
			payload := mustBits(t, tc.payload)
			assert.Equal(payload.Len(), PUCCHBits(cfg))
			assert.True(ValidatePUCCH(payload, cfg))

			rep, err := DecodePUCCH(payload, cfg)
			assert.NoError(err)
			assert.Equal(tc.want, rep)

			encoded, err := EncodePUCCH(tc.want, cfg)
			assert.NoError(err)
			assert.Equal(payload.String(), encoded.String())
		})
	}
}

func TestPUCCHFourPortSizes(t *testing.T) {
	assert := assert.New(t)
	all := AllRanks(CodebookTypeISinglePanel4PortMode1)

	cfg := fourPortConfig(QuantitiesCRIRILIPMICQI, all)
	assert.Equal(12, PUCCHBits(cfg))
	assert.Equal([]int{1, 0, 0, 0}, []int{
		PUCCHPaddingBits(cfg, 1),
		PUCCHPaddingBits(cfg, 2),
		PUCCHPaddingBits(cfg, 3),
		PUCCHPaddingBits(cfg, 4),
	})

	cfg = fourPortConfig(QuantitiesCRIRIPMICQI, all)
	assert.Equal(11, PUCCHBits(cfg))
	assert.Equal(1, PUCCHPaddingBits(cfg, 3))

	cfg = fourPortConfig(QuantitiesCRIRICQI, mustRestriction(t, 4, 1, 2, 3))
	assert.Equal(6, PUCCHBits(cfg))
}

func TestPUCCHPaddingIsZeroAfterLI(t *testing.T) {
	assert := assert.New(t)
	cfg := fourPortConfig(QuantitiesCRIRILIPMICQI, AllRanks(CodebookTypeISinglePanel4PortMode1))
	rep := Report{
		CRI:        Some(uint8(0)),
		RI:         Some(uint8(1)),
		LI:         Some(uint8(0)),
		PMI:        TypeI4PortMode1PMI{I11: 7, I2: 3},
		FirstTBCQI: Some(uint8(15)),
	}
	payload, err := EncodePUCCH(rep, cfg)
	assert.NoError(err)
	// RI index 0, no LI bits at rank 1, one padding bit, PMI, CQI.
	assert.Equal("00"+"0"+"111"+"11"+"1111", payload.String())

	got, err := DecodePUCCH(payload, cfg)
	assert.NoError(err)
	assert.Equal(rep, got)
}

func TestPUCCHInvalidRankIndex(t *testing.T) {
	cfg := fourPortConfig(QuantitiesCRIRICQI, mustRestriction(t, 4, 1, 2, 3))
	payload := mustBits(t, "11 0000")
	assert.True(t, ValidatePUCCH(payload, cfg), "length is right, content is not")

	_, err := DecodePUCCH(payload, cfg)
	assert.ErrorIs(t, err, ErrInvalidRankIndex)
}

func TestPUCCHLengthMismatchPanics(t *testing.T) {
	cfg := twoPortConfig(1)
	assert.PanicsWithValue(t, "csi: PUCCH payload length mismatch: got 6 bits, want 7", func() {
		_, _ = DecodePUCCH(mustBits(t, "000000"), cfg)
	})
	assert.PanicsWithValue(t, "csi: PUCCH payload length mismatch: got 8 bits, want 7", func() {
		_, _ = DecodePUCCH(mustBits(t, "00000000"), cfg)
	})
}

func TestPUCCHSizeIsMaxOverRanks(t *testing.T) {
	for _, cfg := range allConfigs() {
		want := 0
		for _, rank := range cfg.RIRestriction.Ranks() {
			want = max(want, FieldSizesFor(cfg, rank).Total())
			assert.GreaterOrEqual(t, PUCCHPaddingBits(cfg, rank), 0, configName(cfg))
		}
		assert.Equal(t, want, PUCCHBits(cfg), configName(cfg))
	}
}

func TestEncodePUCCHRejects(t *testing.T) {
	two := twoPortConfig(1)
	four := fourPortConfig(QuantitiesCRIRIPMICQI, mustRestriction(t, 4, 1, 2))
	cqi := Some(uint8(3))
	testCases := []struct {
		name string
		rep  Report
		cfg  ReportConfig
		want error
	}{
		{"invalid_config", Report{FirstTBCQI: cqi}, ReportConfig{Codebook: CodebookTwoPort}, ErrInvalidConfig},
		{"rank_not_allowed", Report{RI: Some(uint8(3)), PMI: TypeI4PortMode1PMI{I13: Some(uint32(0))}, FirstTBCQI: cqi}, four, ErrInvalidReport},
		{"rank_zero", Report{RI: Some(uint8(0)), FirstTBCQI: cqi}, two, ErrInvalidReport},
		{"cri_too_wide", Report{CRI: Some(uint8(1)), PMI: TwoPortPMI{}, FirstTBCQI: cqi}, two, ErrInvalidReport},
		{"li_not_carried", Report{LI: Some(uint8(0)), PMI: TwoPortPMI{}, FirstTBCQI: cqi}, two, ErrInvalidReport},
		{"missing_cqi", Report{PMI: TwoPortPMI{}}, two, ErrInvalidReport},
		{"cqi_too_wide", Report{PMI: TwoPortPMI{}, FirstTBCQI: Some(uint8(16))}, two, ErrInvalidReport},
		{"unexpected_second_cqi", Report{PMI: TwoPortPMI{}, FirstTBCQI: cqi, SecondTBCQI: cqi}, two, ErrInvalidReport},
		{"missing_pmi", Report{FirstTBCQI: cqi}, two, ErrInvalidReport},
		{"pmi_not_carried", Report{PMI: TwoPortPMI{}, FirstTBCQI: cqi}, fourPortConfig(QuantitiesCRIRICQI, AllRanks(CodebookTypeISinglePanel4PortMode1)), ErrInvalidReport},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodePUCCH(tc.rep, tc.cfg)
			assert.ErrorIs(t, err, tc.want)
			_, _, err = EncodePUSCH(tc.rep, tc.cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
