package csi

import (
	"fmt"
	"math/rand"
	"testing"
)

var supportedCodebooks = []Codebook{
	CodebookOnePort,
	CodebookTwoPort,
	CodebookTypeISinglePanel4PortMode1,
}

var supportedQuantities = []Quantities{
	QuantitiesCRIRIPMICQI,
	QuantitiesCRIRICQI,
	QuantitiesCRIRILIPMICQI,
}

func mustRestriction(t testing.TB, size int, ranks ...int) RIRestriction {
	t.Helper()
	r, err := NewRIRestriction(size, ranks...)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func mustBits(t testing.TB, s string) PackedBits {
	t.Helper()
	p, err := PackedBitsFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// allConfigs enumerates every supported codebook, quantity and non-empty rank
// restriction for a few resource set sizes.
func allConfigs() []ReportConfig {
	var out []ReportConfig
	for _, book := range supportedCodebooks {
		ports := AntennaPorts(book)
		for _, q := range supportedQuantities {
			for mask := 1; mask < 1<<ports; mask++ {
				ri, err := RIRestrictionFromMask(ports, uint8(mask))
				if err != nil {
					panic(err)
				}
				for _, res := range []int{1, 2, 3, 8, 64} {
					out = append(out, ReportConfig{
						NofCSIRSResources: res,
						Codebook:          book,
						RIRestriction:     ri,
						Quantities:        q,
					})
				}
			}
		}
	}
	return out
}

func configName(cfg ReportConfig) string {
	return fmt.Sprintf("%v/%v/ri=%v/res=%d", cfg.Codebook, cfg.Quantities, cfg.RIRestriction, cfg.NofCSIRSResources)
}

// randomReport draws a report that fits cfg at the given rank, with every
// field the decoders produce present.
func randomReport(rng *rand.Rand, cfg ReportConfig, rank int) Report {
	sizes := FieldSizesFor(cfg, rank)
	rep := Report{
		CRI:        Some(uint8(rng.Intn(1 << sizes.CRI))),
		RI:         Some(uint8(rank)),
		FirstTBCQI: Some(uint8(rng.Intn(16))),
	}
	if cfg.Quantities.hasLI() {
		rep.LI = Some(uint8(rng.Intn(1 << sizes.LI)))
	}
	if cfg.Quantities.hasPMI() {
		switch cfg.Codebook {
		case CodebookTwoPort:
			rep.PMI = TwoPortPMI{Index: uint32(rng.Intn(1 << sizes.PMI))}
		case CodebookTypeISinglePanel4PortMode1:
			w := typeI4PortWidths(rank)
			p := TypeI4PortMode1PMI{
				I11: uint32(rng.Intn(1 << w.i11)),
				I12: uint32(rng.Intn(1 << w.i12)),
				I2:  uint32(rng.Intn(1 << w.i2)),
			}
			if rank > 1 {
				p.I13 = Some(uint32(rng.Intn(1 << w.i13)))
			}
			rep.PMI = p
		}
	}
	if sizes.CQI2 > 0 {
		rep.SecondTBCQI = Some(uint8(rng.Intn(16)))
	}
	return rep
}
