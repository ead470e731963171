// Package cube defines the domain model for the in-memory OLAP cube engine:
// cubes, dimensions, measures, fact rows, and the pre-aggregate store
// materialized from them at registration time.
package cube

import (
	"encoding/json"
	"fmt"
)

// AggregationKind identifies how a measure's values are combined.
type AggregationKind string

const (
	AggSum      AggregationKind = "SUM"
	AggCount    AggregationKind = "COUNT"
	AggAvg      AggregationKind = "AVG"
	AggMin      AggregationKind = "MIN"
	AggMax      AggregationKind = "MAX"
	AggDistinct AggregationKind = "DISTINCT"
)

// ScalarKind tags the underlying type carried by a Scalar.
type ScalarKind int

const (
	ScalarNull ScalarKind = iota
	ScalarNumber
	ScalarString
)

// AllValue is the sentinel coordinate used when a fact row does not carry a
// value at a given (dimension, level).
const AllValue = "All"

// Scalar is a tagged heterogeneous value: a number, a string, or null/absent.
// Fact row level coordinates and metric values, as well as filter operands,
// are all represented with this type.
type Scalar struct {
	kind ScalarKind
	num  float64
	str  string
}

// Null is the zero-value absent Scalar.
var Null = Scalar{kind: ScalarNull}

// NumberScalar builds a numeric Scalar.
func NumberScalar(v float64) Scalar { return Scalar{kind: ScalarNumber, num: v} }

// StringScalar builds a string Scalar.
func StringScalar(v string) Scalar { return Scalar{kind: ScalarString, str: v} }

// IsNull reports whether the scalar carries no value.
func (s Scalar) IsNull() bool { return s.kind == ScalarNull }

// IsNumber reports whether the scalar is numeric.
func (s Scalar) IsNumber() bool { return s.kind == ScalarNumber }

// Number returns the numeric value (0 if not numeric).
func (s Scalar) Number() float64 { return s.num }

// String renders the scalar's canonical string form. Integral numbers print
// as plain integers, other numbers with %g; this is used both for DISTINCT
// cardinality tracking and for building pivot/cache keys.
func (s Scalar) String() string {
	switch s.kind {
	case ScalarNumber:
		return formatNumber(s.num)
	case ScalarString:
		return s.str
	default:
		return ""
	}
}

// MarshalJSON renders the scalar as a bare number, string, or null.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case ScalarNumber:
		return json.Marshal(s.num)
	case ScalarString:
		return json.Marshal(s.str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, string, or null.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = Null
	case float64:
		*s = NumberScalar(t)
	case string:
		*s = StringScalar(t)
	default:
		return fmt.Errorf("scalar must be a number, string, or null, got %T", v)
	}
	return nil
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// Dimension is a categorical attribute with a strictly ordered hierarchy of
// levels, coarse to fine.
type Dimension struct {
	Name      string
	Label     string
	Hierarchy []string
}

// CoarsestLevel returns the first (coarsest) level in the hierarchy.
func (d Dimension) CoarsestLevel() string { return d.Hierarchy[0] }

// FinestLevel returns the last (finest) level in the hierarchy.
func (d Dimension) FinestLevel() string { return d.Hierarchy[len(d.Hierarchy)-1] }

// LevelIndex returns the position of level in the hierarchy, or -1.
func (d Dimension) LevelIndex(level string) int {
	for i, l := range d.Hierarchy {
		if l == level {
			return i
		}
	}
	return -1
}

// HasLevel reports whether level belongs to this dimension's hierarchy.
func (d Dimension) HasLevel(level string) bool { return d.LevelIndex(level) >= 0 }

// Measure is a numerically aggregatable quantity.
type Measure struct {
	Name       string
	Label      string
	Format     string
	ValueField string
	Kind       AggregationKind
}

// FactRow is a single observation: per-dimension level coordinates and
// per-measure metric values. Any subset of levels may be populated; a missing
// level resolves to the AllValue sentinel wherever it is read.
type FactRow struct {
	// Levels maps "dimension.level" -> Scalar coordinate.
	Levels map[string]Scalar
	// Metrics maps measure value-field -> Scalar (may be Null).
	Metrics map[string]Scalar
}

// LevelKey builds the map key used by FactRow.Levels and the pre-aggregate
// store for a given dimension and level.
func LevelKey(dimension, level string) string {
	return dimension + "." + level
}

// Level returns the fact row's value at (dimension, level), or the AllValue
// sentinel scalar if absent.
func (f FactRow) Level(dimension, level string) Scalar {
	if v, ok := f.Levels[LevelKey(dimension, level)]; ok {
		return v
	}
	return StringScalar(AllValue)
}

// Metric returns the fact row's value at the given measure value-field, or
// Null if absent.
func (f FactRow) Metric(field string) Scalar {
	if v, ok := f.Metrics[field]; ok {
		return v
	}
	return Null
}

// Definition is the immutable, caller-supplied description of a cube,
// submitted to RegisterCube.
type Definition struct {
	Name       string
	Dimensions []Dimension
	Measures   []Measure
	Facts      []FactRow
}

// Validate checks the structural invariants from the data model table: at
// least one dimension, unique dimension names, unique measure names, and a
// non-empty hierarchy per dimension.
func (d Definition) Validate() error {
	if len(d.Dimensions) == 0 {
		return fmt.Errorf("cube %q: at least one dimension is required", d.Name)
	}
	seenDims := make(map[string]bool, len(d.Dimensions))
	for _, dim := range d.Dimensions {
		if seenDims[dim.Name] {
			return fmt.Errorf("cube %q: duplicate dimension %q", d.Name, dim.Name)
		}
		seenDims[dim.Name] = true
		if len(dim.Hierarchy) == 0 {
			return fmt.Errorf("cube %q: dimension %q has no hierarchy levels", d.Name, dim.Name)
		}
		seenLevels := make(map[string]bool, len(dim.Hierarchy))
		for _, lvl := range dim.Hierarchy {
			if seenLevels[lvl] {
				return fmt.Errorf("cube %q: dimension %q has duplicate level %q", d.Name, dim.Name, lvl)
			}
			seenLevels[lvl] = true
		}
	}
	seenMeasures := make(map[string]bool, len(d.Measures))
	for _, m := range d.Measures {
		if seenMeasures[m.Name] {
			return fmt.Errorf("cube %q: duplicate measure %q", d.Name, m.Name)
		}
		seenMeasures[m.Name] = true
		if m.ValueField == "" {
			return fmt.Errorf("cube %q: measure %q has no value-field", d.Name, m.Name)
		}
	}
	return nil
}

// PreAggregateEntry is the finalized measure map for one distinct
// (dimension, level, value) tuple.
type PreAggregateEntry map[string]float64 // measure name -> finalized value

// PreAggregateStore maps "dimension.level" -> value string -> finalized entry.
type PreAggregateStore map[string]map[string]PreAggregateEntry

// CubeSummary is the richer per-cube projection returned by Registry.List,
// beyond the bare name the external ListCubes() operation requires.
type CubeSummary struct {
	Name           string `json:"name"`
	DimensionCount int    `json:"dimensionCount"`
	MeasureCount   int    `json:"measureCount"`
}

// Instance is the immutable, registered form of a cube: its definition plus
// lookup indexes and the materialized pre-aggregate store.
type Instance struct {
	Definition    Definition
	DimensionIdx  map[string]Dimension
	MeasureIdx    map[string]Measure
	PreAggregates PreAggregateStore
}

// Dimension looks up a dimension by name.
func (in *Instance) Dimension(name string) (Dimension, bool) {
	d, ok := in.DimensionIdx[name]
	return d, ok
}

// Measure looks up a measure by name.
func (in *Instance) Measure(name string) (Measure, bool) {
	m, ok := in.MeasureIdx[name]
	return m, ok
}

// Summary projects the richer list-view summary for this instance.
func (in *Instance) Summary() CubeSummary {
	return CubeSummary{
		Name:           in.Definition.Name,
		DimensionCount: len(in.Definition.Dimensions),
		MeasureCount:   len(in.Definition.Measures),
	}
}
