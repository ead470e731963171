package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "cubeengine/internal/core/domain/cube"
)

func TestSuggestVisualizations(t *testing.T) {
	tests := []struct {
		name     string
		rows     int
		cols     int
		measures int
		want     []string
	}{
		{"rows and columns", 1, 1, 1, []string{"heatmap", "stacked-bar"}},
		{"many rows and columns", 3, 2, 2, []string{"heatmap", "stacked-bar"}},
		{"single row axis", 1, 0, 1, []string{"column", "line"}},
		{"multiple row axes", 2, 0, 1, []string{"matrix", "line"}},
		{"no axes one measure", 0, 0, 1, []string{"big-number"}},
		{"no axes many measures", 0, 0, 3, []string{"multi-stat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, suggestVisualizations(tt.rows, tt.cols, tt.measures))
		})
	}
}

func TestBuildBreadcrumbs_PairsPathWithLevels(t *testing.T) {
	inst := registerSampleCube(NewRegistry())

	crumbs := buildBreadcrumbs(inst, &domain.DrillSpec{
		Dimension: "time", FromLevel: "year", ToLevel: "month",
		Path: []domain.Scalar{domain.NumberScalar(2023), domain.StringScalar("Q1")},
	})
	require.Len(t, crumbs, 2)
	assert.Equal(t, "year", crumbs[0].Level)
	assert.Equal(t, 2023.0, crumbs[0].Value.Number())
	assert.Equal(t, "quarter", crumbs[1].Level)
	assert.Equal(t, "Q1", crumbs[1].Value.String())
}

func TestBuildBreadcrumbs_PathTruncatedToRange(t *testing.T) {
	inst := registerSampleCube(NewRegistry())

	crumbs := buildBreadcrumbs(inst, &domain.DrillSpec{
		Dimension: "time", FromLevel: "quarter", ToLevel: "month",
		Path: []domain.Scalar{
			domain.StringScalar("Q1"),
			domain.StringScalar("Jan"),
			domain.StringScalar("extra"),
		},
	})
	require.Len(t, crumbs, 2)
	assert.Equal(t, "quarter", crumbs[0].Level)
	assert.Equal(t, "month", crumbs[1].Level)
}

func TestBuildBreadcrumbs_NilWithoutPath(t *testing.T) {
	inst := registerSampleCube(NewRegistry())
	assert.Nil(t, buildBreadcrumbs(inst, nil))
	assert.Nil(t, buildBreadcrumbs(inst, &domain.DrillSpec{Dimension: "time", FromLevel: "year", ToLevel: "month"}))
}

func TestAssembler_EchoesMeasureFormats(t *testing.T) {
	inst := registerSampleCube(NewRegistry())
	q := domain.NormalizedQuery{Cube: "sales", Measures: []string{"revenue"}}
	result := NewAssembler().Assemble(inst, q, domain.Data{}, domain.PlannerVerdict{Strategy: "raw-scan", Reason: "test"}, false, "sales|key", nil, domain.CacheStats{})

	require.Len(t, result.Metadata.AvailableMeasures, 4)
	byName := make(map[string]domain.AvailableMeasure)
	for _, m := range result.Metadata.AvailableMeasures {
		byName[m.Name] = m
	}
	assert.Equal(t, "currency", byName["revenue"].Format)
	assert.Equal(t, domain.AggSum, byName["revenue"].Kind)
	assert.Equal(t, "integer", byName["units"].Format)
}
