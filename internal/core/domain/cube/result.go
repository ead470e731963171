package cube

import "strings"

// Coordinate is one (dimension, level, value) triple inside a pivot header.
type Coordinate struct {
	Dimension string `json:"dimension"`
	Level     string `json:"level"`
	Value     Scalar `json:"value"`
}

// PivotHeader identifies one row or column in the pivot result. Its Key is a
// pure function of Coordinates.
type PivotHeader struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Alias       string       `json:"alias,omitempty"`
	Coordinates []Coordinate `json:"coordinates"`
}

// BuildHeader constructs a PivotHeader from its coordinate list, computing
// the canonical key and label. An empty coordinate list yields key "__all__"
// and label "All".
func BuildHeader(coords []Coordinate, alias string) PivotHeader {
	h := PivotHeader{Coordinates: coords, Alias: alias}
	if len(coords) == 0 {
		h.Key = "__all__"
		h.Label = "All"
		return h
	}
	var keyParts, labelParts []string
	for _, c := range coords {
		keyParts = append(keyParts, c.Dimension+"."+c.Level+":"+c.Value.String())
		labelParts = append(labelParts, c.Value.String())
	}
	h.Key = strings.Join(keyParts, "|")
	h.Label = strings.Join(labelParts, " / ")
	return h
}

// MeasureMatrix is the dense values[row][col] grid for one measure.
type MeasureMatrix struct {
	Name   string      `json:"name"`
	Format string      `json:"format,omitempty"`
	Label  string      `json:"label,omitempty"`
	Values [][]float64 `json:"values"`
}

// FlatRow is a single populated pivot cell, emitted when IncludeFlattened.
type FlatRow struct {
	RowKey    string             `json:"rowKey"`
	ColumnKey string             `json:"columnKey"`
	Measures  map[string]float64 `json:"measures"`
}

// Pivot is the pivoted result block: headers for both axes plus the dense
// per-measure matrix.
type Pivot struct {
	Rows     []PivotHeader   `json:"rows"`
	Columns  []PivotHeader   `json:"columns"`
	Measures []MeasureMatrix `json:"measures"`
}

// Data is the `data` half of the response document.
type Data struct {
	Pivot Pivot     `json:"pivot"`
	Flat  []FlatRow `json:"flat,omitempty"`
}

// Breadcrumb is one ancestor-value pairing derived from a drill path.
type Breadcrumb struct {
	Dimension string `json:"dimension"`
	Level     string `json:"level"`
	Value     Scalar `json:"value"`
}

// PlannerVerdict is the planner's chosen strategy and its rationale.
type PlannerVerdict struct {
	Strategy string `json:"strategy"` // "pre-aggregate" | "raw-scan"
	Reason   string `json:"reason"`
}

// CacheStats are the bounded-LRU counters, plus an eviction count clients
// may ignore.
type CacheStats struct {
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Size      int `json:"size"`
	Evictions int `json:"evictions"`
}

// CacheMeta describes the cache outcome of one execute() call.
type CacheMeta struct {
	Hit            bool       `json:"hit"`
	Key            string     `json:"key"`
	TTLRemainingMs *int64     `json:"ttlRemainingMs"`
	Stats          CacheStats `json:"stats"`
}

// AvailableMeasure describes one measure the cube exposes, independent of
// whether it was requested.
type AvailableMeasure struct {
	Name   string          `json:"name"`
	Label  string          `json:"label,omitempty"`
	Format string          `json:"format,omitempty"`
	Kind   AggregationKind `json:"kind"`
}

// Metadata is the `metadata` half of the response document.
type Metadata struct {
	Cube              string             `json:"cube"`
	Measures          []string           `json:"measures"`
	AvailableMeasures []AvailableMeasure `json:"availableMeasures"`
	Breadcrumbs       []Breadcrumb       `json:"breadcrumbs,omitempty"`
	Cache             CacheMeta          `json:"cache"`
	Planner           PlannerVerdict     `json:"planner"`
	Suggestions       []string           `json:"suggestions"`
}

// Result is the complete response document returned by Execute.
type Result struct {
	Data     Data     `json:"data"`
	Metadata Metadata `json:"metadata"`
}
