package csi

import "fmt"

// Optional is a report field that may be absent.
type Optional[T ~uint8 | ~uint32] struct {
	Value T
	Valid bool
}

// Some returns a present field holding v.
func Some[T ~uint8 | ~uint32](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// Or returns the value if present and def otherwise.
func (o Optional[T]) Or(def T) T {
	if o.Valid {
		return o.Value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.Valid {
		return "-"
	}
	return fmt.Sprint(o.Value)
}

// Report is a decoded CSI report. Field presence follows the configuration
// and the reported rank: LI only with QuantitiesCRIRILIPMICQI, PMI only with
// PMI quantities and more than one port, SecondTBCQI only for ranks above 4.
type Report struct {
	// CRI selects the CSI-RS resource the report refers to.
	CRI Optional[uint8]
	// RI is the reported rank (1..8), not the RI field index.
	RI Optional[uint8]
	// LI is the strongest layer (0..7).
	LI Optional[uint8]
	// PMI is nil when the report carries no precoder.
	PMI PMI
	// FirstTBCQI is the wideband CQI of the first transport block (0..15).
	FirstTBCQI Optional[uint8]
	// SecondTBCQI is the wideband CQI of the second transport block (0..15).
	SecondTBCQI Optional[uint8]
}

func (r Report) String() string {
	pmi := "-"
	if r.PMI != nil {
		pmi = fmt.Sprintf("%+v", r.PMI)
	}
	return fmt.Sprintf("cri=%v ri=%v li=%v pmi=%s cqi1=%v cqi2=%v",
		r.CRI, r.RI, r.LI, pmi, r.FirstTBCQI, r.SecondTBCQI)
}

// rank returns the reported rank, 1 when RI is absent.
func (r Report) rank() int {
	return int(r.RI.Or(1))
}
