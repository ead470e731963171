package cube

import domain "cubeengine/internal/core/domain/cube"

// Assembler builds the two-part response document from the
// executed data, the cache outcome, and the planner's verdict.
type Assembler struct{}

// NewAssembler constructs an Assembler.
func NewAssembler() *Assembler { return &Assembler{} }

// Assemble composes a Result. cacheHit/cacheKey/ttlRemaining describe this
// call's cache outcome. Engine.Execute calls it only on a cache miss; on a
// hit it returns the cached Result with only its cache block re-stamped.
func (a *Assembler) Assemble(inst *domain.Instance, q domain.NormalizedQuery, data domain.Data, verdict domain.PlannerVerdict, cacheHit bool, cacheKey string, ttlRemaining *int64, stats domain.CacheStats) domain.Result {
	available := make([]domain.AvailableMeasure, 0, len(inst.Definition.Measures))
	for _, m := range inst.Definition.Measures {
		available = append(available, domain.AvailableMeasure{
			Name: m.Name, Label: m.Label, Format: m.Format, Kind: m.Kind,
		})
	}

	return domain.Result{
		Data: data,
		Metadata: domain.Metadata{
			Cube:              q.Cube,
			Measures:          q.Measures,
			AvailableMeasures: available,
			Breadcrumbs:       buildBreadcrumbs(inst, q.Drill),
			Cache: domain.CacheMeta{
				Hit:            cacheHit,
				Key:            cacheKey,
				TTLRemainingMs: ttlRemaining,
				Stats:          stats,
			},
			Planner:     verdict,
			Suggestions: suggestVisualizations(len(q.RowAxes), len(q.ColumnAxes), len(q.Measures)),
		},
	}
}

// buildBreadcrumbs pairs each drill.path element with consecutive levels of
// the drilled range, starting at min(fromIndex, toIndex), mirroring the
// executor's drill-path matching rule.
func buildBreadcrumbs(inst *domain.Instance, drill *domain.DrillSpec) []domain.Breadcrumb {
	if drill == nil || len(drill.Path) == 0 {
		return nil
	}
	dim, ok := inst.Dimension(drill.Dimension)
	if !ok {
		return nil
	}
	fromIdx := dim.LevelIndex(drill.FromLevel)
	toIdx := dim.LevelIndex(drill.ToLevel)
	if fromIdx < 0 || toIdx < 0 {
		return nil
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
	crumbs := make([]domain.Breadcrumb, 0, n)
	for i := 0; i < n; i++ {
		crumbs = append(crumbs, domain.Breadcrumb{
			Dimension: drill.Dimension,
			Level:     dim.Hierarchy[start+i],
			Value:     drill.Path[i],
		})
	}
	return crumbs
}

// suggestVisualizations implements the deterministic suggestion rules
// from axis cardinality and requested measure count.
func suggestVisualizations(rows, cols, measures int) []string {
	switch {
	case rows >= 1 && cols >= 1:
		return []string{"heatmap", "stacked-bar"}
	case rows == 1 && cols == 0:
		return []string{"column", "line"}
	case rows > 1 && cols == 0:
		return []string{"matrix", "line"}
	case rows == 0 && cols == 0:
		if measures == 1 {
			return []string{"big-number"}
		}
		return []string{"multi-stat"}
	default:
		return nil
	}
}
