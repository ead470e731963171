package cube

import (
	domain "cubeengine/internal/core/domain/cube"
)

// fact builds a FactRow from plain maps, converting numbers and strings into
// scalars.
func fact(levels map[string]any, metrics map[string]any) domain.FactRow {
	row := domain.FactRow{
		Levels:  make(map[string]domain.Scalar, len(levels)),
		Metrics: make(map[string]domain.Scalar, len(metrics)),
	}
	for k, v := range levels {
		row.Levels[k] = anyScalar(v)
	}
	for k, v := range metrics {
		row.Metrics[k] = anyScalar(v)
	}
	return row
}

func anyScalar(v any) domain.Scalar {
	switch t := v.(type) {
	case nil:
		return domain.Null
	case string:
		return domain.StringScalar(t)
	case int:
		return domain.NumberScalar(float64(t))
	case float64:
		return domain.NumberScalar(t)
	default:
		panic("unsupported scalar type in test fixture")
	}
}

// sampleCubeDefinition is the sales cube the end-to-end tests run against:
// three dimensions, SUM/AVG/MAX measures, and ten fact rows spanning
// 2023 Q1-Q4 and 2024 Q1-Q4.
func sampleCubeDefinition() domain.Definition {
	return domain.Definition{
		Name: "sales",
		Dimensions: []domain.Dimension{
			{Name: "time", Label: "Time", Hierarchy: []string{"year", "quarter", "month"}},
			{Name: "geography", Label: "Geography", Hierarchy: []string{"region", "country", "state"}},
			{Name: "product", Label: "Product", Hierarchy: []string{"category", "item"}},
		},
		Measures: []domain.Measure{
			{Name: "revenue", Label: "Revenue", Format: "currency", ValueField: "revenue", Kind: domain.AggSum},
			{Name: "units", Label: "Units", Format: "integer", ValueField: "units", Kind: domain.AggSum},
			{Name: "avgRevenue", Label: "Average revenue", Format: "currency", ValueField: "revenue", Kind: domain.AggAvg},
			{Name: "peakRevenue", Label: "Peak revenue", Format: "currency", ValueField: "revenue", Kind: domain.AggMax},
		},
		Facts: []domain.FactRow{
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q1", "time.month": "Jan",
				"geography.region": "North America", "geography.country": "USA", "geography.state": "California",
				"product.category": "Electronics", "product.item": "Laptop",
			}, map[string]any{"revenue": 900, "units": 4}),
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q1", "time.month": "Feb",
				"geography.region": "Europe", "geography.country": "Germany", "geography.state": "Bavaria",
				"product.category": "Electronics", "product.item": "Phone",
			}, map[string]any{"revenue": 1200, "units": 2}),
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q2", "time.month": "Apr",
				"geography.region": "North America", "geography.country": "USA", "geography.state": "Texas",
				"product.category": "Furniture", "product.item": "Desk",
			}, map[string]any{"revenue": 1200, "units": 5}),
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q2", "time.month": "May",
				"geography.region": "Europe", "geography.country": "France",
				"product.category": "Electronics", "product.item": "Laptop",
			}, map[string]any{"revenue": 1500, "units": 3}),
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q3", "time.month": "Jul",
				"geography.region": "Asia Pacific", "geography.country": "Japan", "geography.state": "Tokyo",
				"product.category": "Electronics", "product.item": "Phone",
			}, map[string]any{"revenue": 2000, "units": 6}),
			fact(map[string]any{
				"time.year": 2023, "time.quarter": "Q4", "time.month": "Oct",
				"geography.region": "North America", "geography.country": "Canada", "geography.state": "Ontario",
				"product.category": "Furniture", "product.item": "Chair",
			}, map[string]any{"revenue": 1400, "units": 4}),
			fact(map[string]any{
				"time.year": 2024, "time.quarter": "Q1", "time.month": "Jan",
				"geography.region": "North America", "geography.country": "USA", "geography.state": "California",
				"product.category": "Electronics", "product.item": "Laptop",
			}, map[string]any{"revenue": 1300, "units": 3}),
			fact(map[string]any{
				"time.year": 2024, "time.quarter": "Q2", "time.month": "Apr",
				"geography.region": "Europe", "geography.country": "Germany", "geography.state": "Berlin",
				"product.category": "Furniture", "product.item": "Desk",
			}, map[string]any{"revenue": 800, "units": 2}),
			fact(map[string]any{
				"time.year": 2024, "time.quarter": "Q3", "time.month": "Jul",
				"geography.region": "Asia Pacific", "geography.country": "Australia", "geography.state": "New South Wales",
				"product.category": "Electronics", "product.item": "Phone",
			}, map[string]any{"revenue": 1700, "units": 5}),
			fact(map[string]any{
				"time.year": 2024, "time.quarter": "Q4", "time.month": "Oct",
				"geography.region": "Europe", "geography.country": "France", "geography.state": "Provence",
				"product.category": "Furniture", "product.item": "Chair",
			}, map[string]any{"revenue": 900, "units": 2}),
		},
	}
}

// registerSampleCube registers the sample cube on a fresh registry and
// returns its instance.
func registerSampleCube(r *Registry) *domain.Instance {
	inst, err := r.Register(sampleCubeDefinition())
	if err != nil {
		panic(err)
	}
	return inst
}
