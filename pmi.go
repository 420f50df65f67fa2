package csi

import "fmt"

// PMI is a precoding matrix indicator. The concrete type tells which codebook
// the indices belong to: TwoPortPMI or TypeI4PortMode1PMI.
type PMI interface {
	// Codebook returns the codebook the indices select from.
	Codebook() Codebook
}

// TwoPortPMI is the PMI of the two antenna port codebook
// (TS 38.214 Table 5.2.2.2.1-1).
type TwoPortPMI struct {
	// Index is the codebook index: 0..3 for rank 1, 0..1 for rank 2.
	Index uint32
}

// Codebook implements PMI.
func (TwoPortPMI) Codebook() Codebook { return CodebookTwoPort }

// TypeI4PortMode1PMI is the PMI of the four port Type I single panel
// codebook with codebookMode 1.
type TypeI4PortMode1PMI struct {
	I11 uint32
	I12 uint32
	// I13 is present for ranks above 1 only.
	I13 Optional[uint32]
	I2  uint32
}

// Codebook implements PMI.
func (TypeI4PortMode1PMI) Codebook() Codebook { return CodebookTypeISinglePanel4PortMode1 }

// Panel geometry of the four port codebook, TS 38.214 Table 5.2.2.2.1-2.
const (
	typeIN1 = 2
	typeIN2 = 1
	typeIO1 = 4
	typeIO2 = 1
)

// typeIWidths holds the PMI sub-field widths of a Type I single panel report,
// TS 38.212 Table 6.3.1.1.2-1.
type typeIWidths struct {
	i11, i12, i13, i2 int
}

func (w typeIWidths) total() int {
	return w.i11 + w.i12 + w.i13 + w.i2
}

// typeISinglePanelWidths resolves the PMI sub-field widths for a rank and
// panel. Combinations the table does not list panic.
func typeISinglePanelWidths(rank, ports, n1, n2, o1, o2 int) typeIWidths {
	w := typeIWidths{i11: ceilLog2(n1 * o1), i12: ceilLog2(n2 * o2)}
	switch {
	case rank == 1 && ports > 2 && n2 == 1:
		w.i13, w.i2 = 0, 2
	case rank == 2 && ports == 4 && n2 == 1:
		w.i13, w.i2 = 1, 1
	case rank == 2 && ports > 4 && n2 == 1:
		w.i13, w.i2 = 2, 1
	case (rank == 3 || rank == 4) && ports == 4:
		w.i13, w.i2 = 0, 1
	default:
		panic(fmt.Sprintf("csi: unhandled Type I single panel case rank=%d ports=%d N2=%d", rank, ports, n2))
	}
	return w
}

// typeI4PortWidths is the four port codebook mode 1 instance of typeISinglePanelWidths.
func typeI4PortWidths(rank int) typeIWidths {
	return typeISinglePanelWidths(rank, 4, typeIN1, typeIN2, typeIO1, typeIO2)
}

// PMIBits returns the width of the PMI field for a codebook and rank.
// It panics for CodebookOther and for ranks the codebook cannot carry.
func PMIBits(c Codebook, rank int) int {
	switch c {
	case CodebookOnePort:
		return 0
	case CodebookTwoPort:
		switch rank {
		case 1:
			return 2
		case 2:
			return 1
		}
		panic(fmt.Sprintf("csi: two port codebook cannot carry rank %d", rank))
	case CodebookTypeISinglePanel4PortMode1:
		return typeI4PortWidths(rank).total()
	}
	panic(fmt.Sprintf("csi: no PMI size for codebook %v", c))
}

// fits reports whether v can be stored in width bits.
func fits(v uint32, width int) bool {
	return width >= maxFieldBits || v>>width == 0
}

// encodePMI appends the PMI field for the given rank.
func encodePMI(dst *PackedBits, c Codebook, rank int, pmi PMI) error {
	switch c {
	case CodebookOnePort:
		if pmi != nil {
			return fmt.Errorf("%w: one port codebook carries no PMI, got %T", ErrInvalidReport, pmi)
		}
		return nil
	case CodebookTwoPort:
		p, ok := pmi.(TwoPortPMI)
		if !ok {
			return fmt.Errorf("%w: two port codebook needs TwoPortPMI, got %T", ErrInvalidReport, pmi)
		}
		width := PMIBits(c, rank)
		if !fits(p.Index, width) {
			return fmt.Errorf("%w: PMI index %d does not fit %d bits at rank %d", ErrInvalidReport, p.Index, width, rank)
		}
		dst.AppendBits(p.Index, width)
		return nil
	case CodebookTypeISinglePanel4PortMode1:
		p, ok := pmi.(TypeI4PortMode1PMI)
		if !ok {
			return fmt.Errorf("%w: four port codebook needs TypeI4PortMode1PMI, got %T", ErrInvalidReport, pmi)
		}
		return encodeTypeI(dst, typeI4PortWidths(rank), rank, p)
	}
	panic(fmt.Sprintf("csi: cannot encode PMI for codebook %v", c))
}

func encodeTypeI(dst *PackedBits, w typeIWidths, rank int, p TypeI4PortMode1PMI) error {
	if p.I13.Valid != (rank > 1) {
		return fmt.Errorf("%w: i_1_3 presence %v does not match rank %d", ErrInvalidReport, p.I13.Valid, rank)
	}
	fields := [...]struct {
		name  string
		value uint32
		width int
	}{
		{"i_1_1", p.I11, w.i11},
		{"i_1_2", p.I12, w.i12},
		{"i_1_3", p.I13.Value, w.i13},
		{"i_2", p.I2, w.i2},
	}
	for _, f := range fields {
		if !fits(f.value, f.width) {
			return fmt.Errorf("%w: %s=%d does not fit %d bits at rank %d", ErrInvalidReport, f.name, f.value, f.width, rank)
		}
	}
	for _, f := range fields {
		dst.AppendBits(f.value, f.width)
	}
	return nil
}

// decodePMI reads the PMI field for the given rank. The one port codebook
// has no PMI and yields nil.
func decodePMI(r *Reader, c Codebook, rank int) PMI {
	switch c {
	case CodebookOnePort:
		return nil
	case CodebookTwoPort:
		return TwoPortPMI{Index: r.field(PMIBits(c, rank))}
	case CodebookTypeISinglePanel4PortMode1:
		w := typeI4PortWidths(rank)
		var p TypeI4PortMode1PMI
		p.I11 = r.field(w.i11)
		p.I12 = r.field(w.i12)
		i13 := r.field(w.i13)
		if rank > 1 {
			p.I13 = Some(i13)
		}
		p.I2 = r.field(w.i2)
		return p
	}
	panic(fmt.Sprintf("csi: cannot decode PMI for codebook %v", c))
}
