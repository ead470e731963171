package http

import (
	"time"

	"github.com/gin-gonic/gin"

	domain "cubeengine/internal/core/domain/cube"
	"cubeengine/internal/observability/metrics"
	apperrors "cubeengine/pkg/errors"
	"cubeengine/pkg/response"
)

// Handler adapts HTTP requests onto the domain.Engine surface.
type Handler struct {
	engine domain.Engine
}

// NewHandler constructs a Handler.
func NewHandler(engine domain.Engine) *Handler {
	return &Handler{engine: engine}
}

// cubeRequest is the wire shape for POST /cubes.
type cubeRequest struct {
	Name       string             `json:"name" binding:"required"`
	Dimensions []dimensionRequest `json:"dimensions" binding:"required"`
	Measures   []measureRequest   `json:"measures" binding:"required"`
	Facts      []factRequest      `json:"facts"`
}

type dimensionRequest struct {
	Name      string   `json:"name" binding:"required"`
	Label     string   `json:"label"`
	Hierarchy []string `json:"hierarchy" binding:"required"`
}

type measureRequest struct {
	Name       string `json:"name" binding:"required"`
	Label      string `json:"label"`
	Format     string `json:"format"`
	ValueField string `json:"valueField" binding:"required"`
	Kind       string `json:"kind" binding:"required"`
}

type factRequest struct {
	Levels  map[string]any `json:"levels"`
	Metrics map[string]any `json:"metrics"`
}

// RegisterCube handles POST /cubes.
func (h *Handler) RegisterCube(c *gin.Context) {
	var req cubeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidationError("invalid cube payload", err.Error()))
		return
	}

	def := domain.Definition{Name: req.Name}
	for _, d := range req.Dimensions {
		def.Dimensions = append(def.Dimensions, domain.Dimension{
			Name: d.Name, Label: d.Label, Hierarchy: d.Hierarchy,
		})
	}
	for _, m := range req.Measures {
		def.Measures = append(def.Measures, domain.Measure{
			Name: m.Name, Label: m.Label, Format: m.Format,
			ValueField: m.ValueField, Kind: domain.AggregationKind(m.Kind),
		})
	}
	for _, f := range req.Facts {
		row := domain.FactRow{
			Levels:  make(map[string]domain.Scalar, len(f.Levels)),
			Metrics: make(map[string]domain.Scalar, len(f.Metrics)),
		}
		for k, v := range f.Levels {
			row.Levels[k] = toScalar(v)
		}
		for k, v := range f.Metrics {
			row.Metrics[k] = toScalar(v)
		}
		def.Facts = append(def.Facts, row)
	}

	if err := h.engine.RegisterCube(def); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"name": def.Name})
}

// ListCubes handles GET /cubes.
func (h *Handler) ListCubes(c *gin.Context) {
	response.Success(c, h.engine.ListCubes())
}

// InvalidateCube handles POST /cubes/:name/invalidate.
func (h *Handler) InvalidateCube(c *gin.Context) {
	name := c.Param("name")
	reason := c.Query("reason")

	event, err := h.engine.InvalidateCube(name, reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, event)
}

// queryRequest is the wire shape for POST /query, mirroring domain.RawQuery.
type queryRequest struct {
	Cube             string          `json:"cube" binding:"required"`
	Measures         []string        `json:"measures"`
	Rows             []axisRequest   `json:"rows"`
	Columns          []axisRequest   `json:"columns"`
	Pivot            *pivotRequest   `json:"pivot"`
	Slices           []filterRequest `json:"slices"`
	Dices            []filterRequest `json:"dices"`
	Filters          []filterRequest `json:"filters"`
	Drill            *drillRequest   `json:"drill"`
	Rollup           *rollupRequest  `json:"rollup"`
	MDX              string          `json:"mdx"`
	IncludeFlattened *bool           `json:"includeFlattened"`
}

type axisRequest struct {
	Dimension string `json:"dimension"`
	Level     string `json:"level"`
	Alias     string `json:"alias"`
	Sort      string `json:"sort"`
}

type pivotRequest struct {
	Rows    []axisRequest `json:"rows"`
	Columns []axisRequest `json:"columns"`
}

type filterRequest struct {
	Dimension string `json:"dimension" binding:"required"`
	Level     string `json:"level"`
	Operator  string `json:"operator" binding:"required"`
	Value     any    `json:"value"`
	Values    []any  `json:"values"`
	Low       any    `json:"low"`
	High      any    `json:"high"`
}

type drillRequest struct {
	Dimension string `json:"dimension" binding:"required"`
	FromLevel string `json:"fromLevel" binding:"required"`
	ToLevel   string `json:"toLevel" binding:"required"`
	Path      []any  `json:"path"`
}

type rollupRequest struct {
	Dimension string `json:"dimension" binding:"required"`
	Level     string `json:"level" binding:"required"`
}

// Query handles POST /query.
func (h *Handler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.NewValidationError("invalid query payload", err.Error()))
		return
	}

	raw := domain.RawQuery{
		Cube:             req.Cube,
		Measures:         req.Measures,
		Rows:             toAxes(req.Rows),
		Columns:          toAxes(req.Columns),
		Slices:           toFilters(req.Slices),
		Dices:            toFilters(req.Dices),
		Filters:          toFilters(req.Filters),
		MDX:              req.MDX,
		IncludeFlattened: req.IncludeFlattened,
	}
	if req.Pivot != nil {
		raw.Pivot = &domain.PivotSpec{Rows: toAxes(req.Pivot.Rows), Columns: toAxes(req.Pivot.Columns)}
	}
	if req.Drill != nil {
		raw.Drill = &domain.DrillSpec{
			Dimension: req.Drill.Dimension, FromLevel: req.Drill.FromLevel, ToLevel: req.Drill.ToLevel,
			Path: toScalars(req.Drill.Path),
		}
	}
	if req.Rollup != nil {
		raw.Rollup = &domain.RollupSpec{Dimension: req.Rollup.Dimension, Level: req.Rollup.Level}
	}

	start := time.Now()
	result, err := h.engine.Execute(raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	metrics.ObserveQuery(req.Cube, result.Metadata.Planner.Strategy, time.Since(start).Seconds())
	metrics.ObserveCacheStats(result.Metadata.Cache.Stats)

	response.Success(c, result)
}

func toAxes(reqs []axisRequest) []domain.AxisSpec {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]domain.AxisSpec, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, domain.AxisSpec{Dimension: r.Dimension, Level: r.Level, Alias: r.Alias, Sort: r.Sort})
	}
	return out
}

func toFilters(reqs []filterRequest) []domain.FilterSpec {
	if len(reqs) == 0 {
		return nil
	}
	out := make([]domain.FilterSpec, 0, len(reqs))
	for _, r := range reqs {
		f := domain.FilterSpec{
			Dimension: r.Dimension, Level: r.Level,
			Operator: domain.FilterOperator(r.Operator),
		}
		if r.Value != nil {
			f.Value = toScalar(r.Value)
		}
		if len(r.Values) > 0 {
			f.Values = toScalars(r.Values)
		}
		if r.Low != nil {
			f.Low = toScalar(r.Low)
		}
		if r.High != nil {
			f.High = toScalar(r.High)
		}
		out = append(out, f)
	}
	return out
}

func toScalars(vs []any) []domain.Scalar {
	out := make([]domain.Scalar, 0, len(vs))
	for _, v := range vs {
		out = append(out, toScalar(v))
	}
	return out
}

func toScalar(v any) domain.Scalar {
	switch t := v.(type) {
	case nil:
		return domain.Null
	case string:
		return domain.StringScalar(t)
	case float64:
		return domain.NumberScalar(t)
	case int:
		return domain.NumberScalar(float64(t))
	default:
		return domain.Null
	}
}
