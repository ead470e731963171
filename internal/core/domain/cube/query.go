package cube

// FilterOperator enumerates the predicate operators a FilterSpec may carry.
type FilterOperator string

const (
	OpEq      FilterOperator = "eq"
	OpNeq     FilterOperator = "neq"
	OpIn      FilterOperator = "in"
	OpNin     FilterOperator = "nin"
	OpGt      FilterOperator = "gt"
	OpGte     FilterOperator = "gte"
	OpLt      FilterOperator = "lt"
	OpLte     FilterOperator = "lte"
	OpBetween FilterOperator = "between"
)

// AxisSpec is a caller-supplied row or column axis request, prior to
// resolution.
type AxisSpec struct {
	Dimension string
	Level     string // optional; resolved to the finest level if empty
	Alias     string // echoed onto its side's headers only when it is that side's sole axis; otherwise unused
	Sort      string // optional, e.g. "asc"/"desc"; unspecified meaning beyond pass-through
}

// ResolvedAxis is an AxisSpec after level resolution: level is
// always populated and validated against the dimension's hierarchy.
type ResolvedAxis struct {
	Dimension string
	Level     string
	Alias     string
	Sort      string
}

// FilterSpec is a single predicate, whatever surface (slice/dice/filter) it
// originated from; all three are unified into one ordered filter list.
type FilterSpec struct {
	Dimension string
	Level     string // optional; defaults to the finest level of Dimension
	Operator  FilterOperator
	Value     Scalar   // used by eq/neq/gt/gte/lt/lte
	Values    []Scalar // used by in/nin
	Low, High Scalar   // used by between
}

// DrillSpec requests refinement of rendering to a finer level, optionally
// pinned to a path of ancestor values.
type DrillSpec struct {
	Dimension string
	FromLevel string
	ToLevel   string
	Path      []Scalar
}

// RollupSpec requests rendering at a coarser level.
type RollupSpec struct {
	Dimension string
	Level     string
}

// PivotSpec carries the optional nested `pivot.rows`/`pivot.columns` form,
// which takes precedence over top-level rows/columns.
type PivotSpec struct {
	Rows    []AxisSpec
	Columns []AxisSpec
}

// RawQuery is the caller-supplied query payload, prior to normalization.
// All fields are optional except Cube and a non-empty Measures.
type RawQuery struct {
	Cube             string
	Measures         []string
	Rows             []AxisSpec
	Columns          []AxisSpec
	Pivot            *PivotSpec
	Slices           []FilterSpec
	Dices            []FilterSpec
	Filters          []FilterSpec
	Drill            *DrillSpec
	Rollup           *RollupSpec
	MDX              string // textual-helper source string
	IncludeFlattened *bool  // optional, defaults to true
}

// NormalizedQuery is the fully resolved query the Planner and Executor
// operate on.
type NormalizedQuery struct {
	Cube             string
	Measures         []string
	RowAxes          []ResolvedAxis
	ColumnAxes       []ResolvedAxis
	Filters          []FilterSpec
	Drill            *DrillSpec
	Rollup           *RollupSpec
	IncludeFlattened bool
}

// TotalAxisCount returns the combined number of row and column axes.
func (q NormalizedQuery) TotalAxisCount() int {
	return len(q.RowAxes) + len(q.ColumnAxes)
}
