// Package intensity implements the two IntensityModel variants: a
// closed-form SimpleImbalance model and a per-level HLR/CurveIntensity
// model (spec.md §4.3), grounded on original_source/src/model and
// original_source/src/qrsdp's intensity_curve/hlr_params/simple_imbalance
// and curve_intensity_model files.
package intensity

import "math"

// MinIntensity is the floor every component rate is clamped up to so the
// total arrival rate is always strictly positive (spec.md §4.3).
const MinIntensity = 1e-12

// TailRule controls how a Curve extrapolates beyond its table's n_max.
type TailRule int

const (
	TailFlat TailRule = iota
	TailZero
)

// Curve is a queue-size-dependent intensity table: values[0..=n_max] with
// a tail rule beyond n_max (spec.md "IntensityCurve").
type Curve struct {
	table []float64
	nMax  int
	tail  TailRule
}

// NewCurve builds a Curve from a table of values for n = 0..len(values)-1.
// Negative/NaN entries become 0; small positive entries are clamped up to
// MinIntensity, matching IntensityCurve::setTable.
func NewCurve(values []float64, tail TailRule) Curve {
	table := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		if v > 0 && v < MinIntensity {
			v = MinIntensity
		}
		table[i] = v
	}
	nMax := 0
	if len(table) > 0 {
		nMax = len(table) - 1
	}
	return Curve{table: table, nMax: nMax, tail: tail}
}

// Value looks up the intensity for queue depth n.
func (c Curve) Value(n uint32) float64 {
	if len(c.table) == 0 {
		return 0
	}
	if int(n) <= c.nMax {
		return math.Max(c.table[n], 0)
	}
	switch c.tail {
	case TailFlat:
		return math.Max(c.table[len(c.table)-1], 0)
	case TailZero:
		return 0
	default:
		return 0
	}
}

// Empty reports whether the curve has no table data.
func (c Curve) Empty() bool { return len(c.table) == 0 }
