package cube

import (
	"github.com/shopspring/decimal"

	domain "cubeengine/internal/core/domain/cube"
)

// Accumulator is the per-measure running-state object materialized during
// registration and during a raw-scan: add ingests one fact value, finalize
// reduces the accumulated state to a number.
type Accumulator interface {
	Add(v domain.Scalar)
	Finalize() float64
}

// NewAccumulator constructs the concrete accumulator for an aggregation kind.
func NewAccumulator(kind domain.AggregationKind) Accumulator {
	switch kind {
	case domain.AggSum:
		return &sumAccumulator{}
	case domain.AggCount:
		return &countAccumulator{}
	case domain.AggAvg:
		return &avgAccumulator{}
	case domain.AggMin:
		return &minAccumulator{}
	case domain.AggMax:
		return &maxAccumulator{}
	case domain.AggDistinct:
		return &distinctAccumulator{seen: make(map[string]struct{})}
	default:
		return &sumAccumulator{}
	}
}

// sumAccumulator accumulates only numeric inputs via decimal.Decimal to avoid
// float drift across many fact rows; non-numeric inputs are ignored.
type sumAccumulator struct {
	total decimal.Decimal
}

func (a *sumAccumulator) Add(v domain.Scalar) {
	if !v.IsNumber() {
		return
	}
	a.total = a.total.Add(decimal.NewFromFloat(v.Number()))
}

func (a *sumAccumulator) Finalize() float64 {
	f, _ := a.total.Float64()
	return f
}

// countAccumulator increments on any non-null, non-absent input, including
// strings.
type countAccumulator struct {
	n int64
}

func (a *countAccumulator) Add(v domain.Scalar) {
	if v.IsNull() {
		return
	}
	a.n++
}

func (a *countAccumulator) Finalize() float64 { return float64(a.n) }

// avgAccumulator tracks numeric sum and numeric count; finalize returns 0
// when count is 0.
type avgAccumulator struct {
	total decimal.Decimal
	n     int64
}

func (a *avgAccumulator) Add(v domain.Scalar) {
	if !v.IsNumber() {
		return
	}
	a.total = a.total.Add(decimal.NewFromFloat(v.Number()))
	a.n++
}

func (a *avgAccumulator) Finalize() float64 {
	if a.n == 0 {
		return 0
	}
	f, _ := a.total.Div(decimal.NewFromInt(a.n)).Float64()
	return f
}

// minAccumulator tracks the smallest numeric seen; finalize returns 0 when no
// numeric value was ever seen.
type minAccumulator struct {
	val  decimal.Decimal
	seen bool
}

func (a *minAccumulator) Add(v domain.Scalar) {
	if !v.IsNumber() {
		return
	}
	d := decimal.NewFromFloat(v.Number())
	if !a.seen || d.LessThan(a.val) {
		a.val = d
		a.seen = true
	}
}

func (a *minAccumulator) Finalize() float64 {
	if !a.seen {
		return 0
	}
	f, _ := a.val.Float64()
	return f
}

// maxAccumulator tracks the largest numeric seen; finalize returns 0 when no
// numeric value was ever seen.
type maxAccumulator struct {
	val  decimal.Decimal
	seen bool
}

func (a *maxAccumulator) Add(v domain.Scalar) {
	if !v.IsNumber() {
		return
	}
	d := decimal.NewFromFloat(v.Number())
	if !a.seen || d.GreaterThan(a.val) {
		a.val = d
		a.seen = true
	}
}

func (a *maxAccumulator) Finalize() float64 {
	if !a.seen {
		return 0
	}
	f, _ := a.val.Float64()
	return f
}

// distinctAccumulator tracks the set of stringified non-null inputs;
// finalize returns cardinality.
type distinctAccumulator struct {
	seen map[string]struct{}
}

func (a *distinctAccumulator) Add(v domain.Scalar) {
	if v.IsNull() {
		return
	}
	a.seen[v.String()] = struct{}{}
}

func (a *distinctAccumulator) Finalize() float64 { return float64(len(a.seen)) }
