package csi_test

import (
	"fmt"

	csi "github.com/Akron/csi-go"
)

// Example decodes a PUCCH report of a two port configuration. The RI field
// selects rank 2, so one padding bit follows it.
func Example() {
	cfg := csi.ReportConfig{
		NofCSIRSResources: 2,
		Codebook:          csi.CodebookTwoPort,
		RIRestriction:     csi.AllRanks(csi.CodebookTwoPort),
		Quantities:        csi.QuantitiesCRIRIPMICQI,
	}
	payload, err := csi.PackedBitsFromString("1 1 0 1 0111")
	if err != nil {
		panic(err)
	}
	if !csi.ValidatePUCCH(payload, cfg) {
		panic("unexpected payload size")
	}
	rep, err := csi.DecodePUCCH(payload, cfg)
	if err != nil {
		panic(err)
	}
	fmt.Println(rep)

	// Output:
	// cri=1 ri=2 li=- pmi={Index:1} cqi1=7 cqi2=-
}

// Example_pusch sizes and decodes a two part PUSCH report. The transport
// layer reads the Part 2 size out of Part 1 before cutting Part 2.
func Example_pusch() {
	cfg := csi.ReportConfig{
		NofCSIRSResources: 1,
		Codebook:          csi.CodebookTypeISinglePanel4PortMode1,
		RIRestriction:     csi.AllRanks(csi.CodebookTypeISinglePanel4PortMode1),
		Quantities:        csi.QuantitiesCRIRILIPMICQI,
	}
	size := csi.PUSCHSizeFor(cfg)
	fmt.Println("part 1:", size.Part1Bits, "part 2:", size.Part2.Sizes)

	stream, _ := csi.PackedBitsFromString("01 1100 1 101 1 0")
	part1 := stream.Slice(0, size.Part1Bits)
	n, err := size.Part2.Part2BitsFor(part1)
	if err != nil {
		panic(err)
	}
	part2 := stream.Slice(size.Part1Bits, size.Part1Bits+n)

	rep, err := csi.DecodePUSCH(part1, part2, cfg)
	if err != nil {
		panic(err)
	}
	fmt.Println(rep)

	// Output:
	// part 1: 6 part 2: [5 6 6 6]
	// cri=0 ri=2 li=1 pmi={I11:5 I12:0 I13:1 I2:0} cqi1=12 cqi2=-
}
