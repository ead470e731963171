package cube

import (
	domain "cubeengine/internal/core/domain/cube"
	apperrors "cubeengine/pkg/errors"
)

// normalizeQuery merges the textual-helper output into the
// structured payload (structured always wins), pick axes, resolve levels
// against rollup/drill, and validate dimensions/levels/measures.
func normalizeQuery(inst *domain.Instance, raw domain.RawQuery) (domain.NormalizedQuery, error) {
	merged, err := mergeHelper(raw)
	if err != nil {
		return domain.NormalizedQuery{}, err
	}

	rowSpecs, colSpecs := pickAxes(merged)
	if len(rowSpecs) == 0 && len(colSpecs) == 0 {
		if len(inst.Definition.Dimensions) == 0 {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownDimension), "cube has no dimensions")
		}
		first := inst.Definition.Dimensions[0]
		rowSpecs = []domain.AxisSpec{{Dimension: first.Name, Level: first.CoarsestLevel()}}
	}

	rowAxes, err := resolveAxes(inst, rowSpecs, merged.Drill, merged.Rollup)
	if err != nil {
		return domain.NormalizedQuery{}, err
	}
	colAxes, err := resolveAxes(inst, colSpecs, merged.Drill, merged.Rollup)
	if err != nil {
		return domain.NormalizedQuery{}, err
	}

	if len(merged.Measures) == 0 {
		return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMissingMeasures), "")
	}
	for _, m := range merged.Measures {
		if _, ok := inst.Measure(m); !ok {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownMeasure), m)
		}
	}

	filters := make([]domain.FilterSpec, 0, len(merged.Slices)+len(merged.Dices)+len(merged.Filters))
	filters = append(filters, merged.Slices...)
	filters = append(filters, merged.Dices...)
	filters = append(filters, merged.Filters...)
	for i, f := range filters {
		if _, ok := inst.Dimension(f.Dimension); !ok {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownDimension), f.Dimension)
		}
		if f.Level == "" {
			dim, _ := inst.Dimension(f.Dimension)
			filters[i].Level = dim.FinestLevel()
		} else if dim, _ := inst.Dimension(f.Dimension); !dim.HasLevel(f.Level) {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownLevel), f.Level)
		}
	}

	if merged.Drill != nil {
		if _, ok := inst.Dimension(merged.Drill.Dimension); !ok {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownDimension), merged.Drill.Dimension)
		}
		dim, _ := inst.Dimension(merged.Drill.Dimension)
		if !dim.HasLevel(merged.Drill.FromLevel) || !dim.HasLevel(merged.Drill.ToLevel) {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedDrill), "")
		}
	}
	if merged.Rollup != nil {
		if _, ok := inst.Dimension(merged.Rollup.Dimension); !ok {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownDimension), merged.Rollup.Dimension)
		}
		dim, _ := inst.Dimension(merged.Rollup.Dimension)
		if !dim.HasLevel(merged.Rollup.Level) {
			return domain.NormalizedQuery{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedRollup), "")
		}
	}

	includeFlattened := true
	if merged.IncludeFlattened != nil {
		includeFlattened = *merged.IncludeFlattened
	}

	return domain.NormalizedQuery{
		Cube:             inst.Definition.Name,
		Measures:         merged.Measures,
		RowAxes:          rowAxes,
		ColumnAxes:       colAxes,
		Filters:          filters,
		Drill:            merged.Drill,
		Rollup:           merged.Rollup,
		IncludeFlattened: includeFlattened,
	}, nil
}

// mergeHelper parses raw.MDX (if present) and merges it under the structured
// payload: any field the structured payload set is left untouched, any field
// it left zero-valued is filled from the parsed helper.
func mergeHelper(raw domain.RawQuery) (domain.RawQuery, error) {
	if raw.MDX == "" {
		return raw, nil
	}
	parsed, err := parseHelper(raw.MDX)
	if err != nil {
		return domain.RawQuery{}, err
	}
	merged := raw
	if len(merged.Measures) == 0 {
		merged.Measures = parsed.Measures
	}
	if len(merged.Rows) == 0 {
		merged.Rows = parsed.Rows
	}
	if len(merged.Columns) == 0 {
		merged.Columns = parsed.Columns
	}
	if merged.Pivot == nil {
		merged.Pivot = parsed.Pivot
	}
	if len(merged.Slices) == 0 {
		merged.Slices = parsed.Slices
	}
	if len(merged.Dices) == 0 {
		merged.Dices = parsed.Dices
	}
	if len(merged.Filters) == 0 {
		merged.Filters = parsed.Filters
	}
	if merged.Drill == nil {
		merged.Drill = parsed.Drill
	}
	if merged.Rollup == nil {
		merged.Rollup = parsed.Rollup
	}
	return merged, nil
}

// pickAxes implements the axis precedence rule: pivot.rows/columns beats
// top-level rows/columns.
func pickAxes(q domain.RawQuery) (rows, cols []domain.AxisSpec) {
	if q.Pivot != nil && (len(q.Pivot.Rows) > 0 || len(q.Pivot.Columns) > 0) {
		return q.Pivot.Rows, q.Pivot.Columns
	}
	return q.Rows, q.Columns
}

// resolveAxes resolves each axis to a concrete level, applying rollup then
// drill rewrites, and validates dimension/level references.
func resolveAxes(inst *domain.Instance, specs []domain.AxisSpec, drill *domain.DrillSpec, rollup *domain.RollupSpec) ([]domain.ResolvedAxis, error) {
	resolved := make([]domain.ResolvedAxis, 0, len(specs))
	for _, spec := range specs {
		dim, ok := inst.Dimension(spec.Dimension)
		if !ok {
			return nil, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownDimension), spec.Dimension)
		}
		level := spec.Level
		if level == "" {
			level = dim.FinestLevel()
		} else if !dim.HasLevel(level) {
			return nil, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnknownLevel), level)
		}
		if rollup != nil && rollup.Dimension == spec.Dimension {
			if dim.LevelIndex(level) > dim.LevelIndex(rollup.Level) {
				level = rollup.Level
			}
		}
		if drill != nil && drill.Dimension == spec.Dimension {
			level = drill.ToLevel
		}
		resolved = append(resolved, domain.ResolvedAxis{
			Dimension: spec.Dimension,
			Level:     level,
			Alias:     spec.Alias,
			Sort:      spec.Sort,
		})
	}
	return resolved, nil
}
