package cube

import domain "cubeengine/internal/core/domain/cube"

// Planner chooses between the pre-aggregate and raw-scan strategies from a
// small, deterministic decision table. It has no side effects and is
// reproducible for identical inputs.
type Planner struct{}

// NewPlanner constructs a Planner.
func NewPlanner() *Planner { return &Planner{} }

// Plan returns the chosen strategy and a human-readable reason.
func (p *Planner) Plan(q domain.NormalizedQuery) domain.PlannerVerdict {
	if q.TotalAxisCount() == 1 &&
		len(q.RowAxes) == 1 &&
		len(q.Filters) == 0 &&
		q.Drill == nil &&
		q.Rollup == nil {
		return domain.PlannerVerdict{
			Strategy: "pre-aggregate",
			Reason:   "single row axis on one dimension, no filters, no drill/rollup: pre-aggregate store answers it directly",
		}
	}
	return domain.PlannerVerdict{
		Strategy: "raw-scan",
		Reason:   reasonForRawScan(q),
	}
}

func reasonForRawScan(q domain.NormalizedQuery) string {
	switch {
	case q.TotalAxisCount() != 1:
		return "more than one axis requested: pre-aggregates only answer a single-axis query"
	case len(q.RowAxes) != 1:
		return "the single axis is a column axis, not a row axis: pre-aggregates are row-only"
	case len(q.Filters) > 0:
		return "filters present: pre-aggregates carry no predicate information"
	case q.Drill != nil:
		return "drill requested: pre-aggregates do not encode drill paths"
	case q.Rollup != nil:
		return "rollup requested: pre-aggregates are per-level, not per-rollup"
	default:
		return "raw scan required"
	}
}
