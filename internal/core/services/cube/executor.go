package cube

import (
	"sort"
	"strconv"

	domain "cubeengine/internal/core/domain/cube"
)

// Executor runs a NormalizedQuery against a registered cube instance using
// whichever strategy the Planner selected.
type Executor struct{}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor { return &Executor{} }

// Execute dispatches to the pre-aggregate or raw-scan path per strategy.
func (e *Executor) Execute(inst *domain.Instance, q domain.NormalizedQuery, strategy string) domain.Data {
	if strategy == "pre-aggregate" {
		return e.executePreAggregate(inst, q)
	}
	return e.executeRawScan(inst, q)
}

// executePreAggregate answers a single-row-axis query directly from the
// materialized pre-aggregate store: one row header per distinct value in
// canonical order, against a single synthetic "All" column.
func (e *Executor) executePreAggregate(inst *domain.Instance, q domain.NormalizedQuery) domain.Data {
	axis := q.RowAxes[0]
	levelKey := domain.LevelKey(axis.Dimension, axis.Level)
	entries := inst.PreAggregates[levelKey]

	values := make([]string, 0, len(entries))
	for v := range entries {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		return compareScalars(scalarForValue(values[i]), scalarForValue(values[j])) < 0
	})

	rowHeaders := make([]domain.PivotHeader, 0, len(values))
	for _, v := range values {
		rowHeaders = append(rowHeaders, domain.BuildHeader([]domain.Coordinate{
			{Dimension: axis.Dimension, Level: axis.Level, Value: scalarForValue(v)},
		}, axis.Alias))
	}
	colHeader := domain.BuildHeader(nil, "")

	matrices := make([]domain.MeasureMatrix, 0, len(q.Measures))
	flat := make([]domain.FlatRow, 0, len(values))
	flatByRow := make(map[string]map[string]float64, len(values))

	for _, mName := range q.Measures {
		measure, _ := inst.Measure(mName)
		grid := make([][]float64, len(values))
		for i, v := range values {
			val := entries[v][mName]
			grid[i] = []float64{val}
			if q.IncludeFlattened {
				if flatByRow[v] == nil {
					flatByRow[v] = make(map[string]float64)
				}
				flatByRow[v][mName] = val
			}
		}
		matrices = append(matrices, domain.MeasureMatrix{
			Name: mName, Format: measure.Format, Label: measure.Label, Values: grid,
		})
	}

	if q.IncludeFlattened {
		for i, v := range values {
			flat = append(flat, domain.FlatRow{
				RowKey: rowHeaders[i].Key, ColumnKey: colHeader.Key, Measures: flatByRow[v],
			})
		}
	}

	return domain.Data{
		Pivot: domain.Pivot{
			Rows:     rowHeaders,
			Columns:  []domain.PivotHeader{colHeader},
			Measures: matrices,
		},
		Flat: flat,
	}
}

// scalarForValue reconstructs the Scalar stored as a pre-aggregate value
// key. The store keys are the canonical string form of the original fact
// value and do not retain the source tag, so a key that parses as a number
// is treated as one; this keeps row ordering numeric for year-like values.
func scalarForValue(v string) domain.Scalar {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return domain.NumberScalar(f)
	}
	return domain.StringScalar(v)
}

// executeRawScan streams over the fact rows: filter, drill-path match,
// coordinate build, insertion-ordered headers, per-cell accumulation, and a
// dense finalize pass at the end.
func (e *Executor) executeRawScan(inst *domain.Instance, q domain.NormalizedQuery) domain.Data {
	rowOrder := newHeaderIndex()
	colOrder := newHeaderIndex()
	cells := make(map[string]map[string]map[string]Accumulator) // rowKey -> colKey -> measure -> acc

	for _, fact := range inst.Definition.Facts {
		if !matchesFilters(fact, q.Filters) {
			continue
		}
		if q.Drill != nil && len(q.Drill.Path) > 0 {
			if !matchesDrillPath(inst, fact, *q.Drill) {
				continue
			}
		}

		rowCoords := coordinatesFor(fact, q.RowAxes)
		colCoords := coordinatesFor(fact, q.ColumnAxes)
		rowHeader := domain.BuildHeader(rowCoords, axisAlias(q.RowAxes))
		colHeader := domain.BuildHeader(colCoords, axisAlias(q.ColumnAxes))

		rowOrder.add(rowHeader)
		colOrder.add(colHeader)

		rowCell, ok := cells[rowHeader.Key]
		if !ok {
			rowCell = make(map[string]map[string]Accumulator)
			cells[rowHeader.Key] = rowCell
		}
		accByMeasure, ok := rowCell[colHeader.Key]
		if !ok {
			accByMeasure = make(map[string]Accumulator, len(q.Measures))
			for _, mName := range q.Measures {
				measure, _ := inst.Measure(mName)
				accByMeasure[mName] = NewAccumulator(measure.Kind)
			}
			rowCell[colHeader.Key] = accByMeasure
		}
		for _, mName := range q.Measures {
			measure, _ := inst.Measure(mName)
			accByMeasure[mName].Add(fact.Metric(measure.ValueField))
		}
	}

	rowHeaders := rowOrder.headers()
	colHeaders := colOrder.headers()

	matrices := make([]domain.MeasureMatrix, 0, len(q.Measures))
	for _, mName := range q.Measures {
		measure, _ := inst.Measure(mName)
		grid := make([][]float64, len(rowHeaders))
		for ri, rh := range rowHeaders {
			grid[ri] = make([]float64, len(colHeaders))
			for ci, ch := range colHeaders {
				if rowCell, ok := cells[rh.Key]; ok {
					if accByMeasure, ok := rowCell[ch.Key]; ok {
						grid[ri][ci] = accByMeasure[mName].Finalize()
					}
				}
			}
		}
		matrices = append(matrices, domain.MeasureMatrix{
			Name: mName, Format: measure.Format, Label: measure.Label, Values: grid,
		})
	}

	var flat []domain.FlatRow
	if q.IncludeFlattened {
		for _, rh := range rowHeaders {
			rowCell, ok := cells[rh.Key]
			if !ok {
				continue
			}
			for _, ch := range colHeaders {
				accByMeasure, ok := rowCell[ch.Key]
				if !ok {
					continue
				}
				measures := make(map[string]float64, len(q.Measures))
				for _, mName := range q.Measures {
					measures[mName] = accByMeasure[mName].Finalize()
				}
				flat = append(flat, domain.FlatRow{RowKey: rh.Key, ColumnKey: ch.Key, Measures: measures})
			}
		}
	}

	return domain.Data{
		Pivot: domain.Pivot{Rows: rowHeaders, Columns: colHeaders, Measures: matrices},
		Flat:  flat,
	}
}

func axisAlias(axes []domain.ResolvedAxis) string {
	if len(axes) == 1 {
		return axes[0].Alias
	}
	return ""
}

// coordinatesFor builds the coordinate tuple for one fact row across a set
// of resolved axes, substituting the AllValue sentinel for missing levels.
func coordinatesFor(fact domain.FactRow, axes []domain.ResolvedAxis) []domain.Coordinate {
	if len(axes) == 0 {
		return nil
	}
	coords := make([]domain.Coordinate, 0, len(axes))
	for _, axis := range axes {
		coords = append(coords, domain.Coordinate{
			Dimension: axis.Dimension,
			Level:     axis.Level,
			Value:     fact.Level(axis.Dimension, axis.Level),
		})
	}
	return coords
}

// matchesFilters applies every filter's operator semantics against the
// fact's value at the filter's (dimension, level).
func matchesFilters(fact domain.FactRow, filters []domain.FilterSpec) bool {
	for _, f := range filters {
		v := fact.Level(f.Dimension, f.Level)
		if !matchesFilter(v, f) {
			return false
		}
	}
	return true
}

func matchesFilter(v domain.Scalar, f domain.FilterSpec) bool {
	switch f.Operator {
	case domain.OpEq:
		return scalarEquals(v, f.Value)
	case domain.OpNeq:
		return !scalarEquals(v, f.Value)
	case domain.OpIn:
		for _, candidate := range f.Values {
			if scalarEquals(v, candidate) {
				return true
			}
		}
		return false
	case domain.OpNin:
		for _, candidate := range f.Values {
			if scalarEquals(v, candidate) {
				return false
			}
		}
		return true
	case domain.OpGt:
		return v.IsNumber() && f.Value.IsNumber() && v.Number() > f.Value.Number()
	case domain.OpGte:
		return v.IsNumber() && f.Value.IsNumber() && v.Number() >= f.Value.Number()
	case domain.OpLt:
		return v.IsNumber() && f.Value.IsNumber() && v.Number() < f.Value.Number()
	case domain.OpLte:
		return v.IsNumber() && f.Value.IsNumber() && v.Number() <= f.Value.Number()
	case domain.OpBetween:
		return v.IsNumber() && f.Low.IsNumber() && f.High.IsNumber() &&
			v.Number() >= f.Low.Number() && v.Number() <= f.High.Number()
	default:
		return false
	}
}

func scalarEquals(a, b domain.Scalar) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.Number() == b.Number()
	}
	return a.String() == b.String()
}

// matchesDrillPath checks a non-empty drill path: the path binds consecutive
// hierarchy levels starting at min(fromIndex, toIndex), truncated to the
// shorter of path length and range length. A fact missing a value at any
// bound level fails.
func matchesDrillPath(inst *domain.Instance, fact domain.FactRow, drill domain.DrillSpec) bool {
	dim, ok := inst.Dimension(drill.Dimension)
	if !ok {
		return false
	}
	fromIdx := dim.LevelIndex(drill.FromLevel)
	toIdx := dim.LevelIndex(drill.ToLevel)
	if fromIdx < 0 || toIdx < 0 {
		return false
	}
	start := fromIdx
	if toIdx < start {
		start = toIdx
	}
	end := fromIdx
	if toIdx > end {
		end = toIdx
	}
	rangeLen := end - start + 1
	n := len(drill.Path)
	if n > rangeLen {
		n = rangeLen
	}
	for i := 0; i < n; i++ {
		level := dim.Hierarchy[start+i]
		v, present := fact.Levels[domain.LevelKey(drill.Dimension, level)]
		if !present {
			return false
		}
		if !scalarEquals(v, drill.Path[i]) {
			return false
		}
	}
	return true
}

// headerIndex preserves first-seen order for pivot headers.
type headerIndex struct {
	order []domain.PivotHeader
	seen  map[string]bool
}

func newHeaderIndex() *headerIndex {
	return &headerIndex{seen: make(map[string]bool)}
}

func (h *headerIndex) add(header domain.PivotHeader) {
	if h.seen[header.Key] {
		return
	}
	h.seen[header.Key] = true
	h.order = append(h.order, header)
}

func (h *headerIndex) headers() []domain.PivotHeader {
	return h.order
}
