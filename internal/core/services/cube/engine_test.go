package cube

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "cubeengine/internal/core/domain/cube"
	apperrors "cubeengine/pkg/errors"
)

func newTestEngine(t *testing.T, cacheMax int, cacheTTLMs int64) *Engine {
	t.Helper()
	e := NewEngine(cacheMax, cacheTTLMs, nil)
	require.NoError(t, e.RegisterCube(sampleCubeDefinition()))
	return e
}

func yearRevenueQuery() domain.RawQuery {
	return domain.RawQuery{
		Cube:     "sales",
		Measures: []string{"revenue"},
		Rows:     []domain.AxisSpec{{Dimension: "time", Level: "year"}},
	}
}

func TestEngine_RegisterCube_DuplicateFails(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	err := e.RegisterCube(sampleCubeDefinition())
	require.Error(t, err)
	assert.True(t, apperrors.IsBadRequest(err))
}

func TestEngine_ListCubes(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	summaries := e.ListCubes()
	require.Len(t, summaries, 1)
	assert.Equal(t, "sales", summaries[0].Name)
}

func TestEngine_Execute_PopulatesMetadata(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	result, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)

	assert.Equal(t, "sales", result.Metadata.Cube)
	assert.Equal(t, []string{"revenue"}, result.Metadata.Measures)
	assert.Len(t, result.Metadata.AvailableMeasures, 4)
	assert.Equal(t, "pre-aggregate", result.Metadata.Planner.Strategy)
	assert.False(t, result.Metadata.Cache.Hit)
	assert.NotEmpty(t, result.Metadata.Cache.Key)
	assert.Equal(t, []string{"column", "line"}, result.Metadata.Suggestions)
}

// Scenario: identical queries within TTL; the second is a byte-identical
// cache hit.
func TestEngine_Execute_CacheHitWithinTTL(t *testing.T) {
	e := newTestEngine(t, 0, 500)

	first, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)
	assert.False(t, first.Metadata.Cache.Hit)

	second, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)
	assert.True(t, second.Metadata.Cache.Hit)
	assert.Equal(t, first.Data, second.Data)
	assert.GreaterOrEqual(t, second.Metadata.Cache.Stats.Hits, 1)
	require.NotNil(t, second.Metadata.Cache.TTLRemainingMs)
	assert.LessOrEqual(t, *second.Metadata.Cache.TTLRemainingMs, int64(500))
}

func TestEngine_Execute_CacheExpiresAfterTTL(t *testing.T) {
	e := newTestEngine(t, 0, 30)

	_, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)

	again, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)
	assert.False(t, again.Metadata.Cache.Hit)
}

// Scenario: missing measures is a 400-class failure that leaves the cache
// untouched.
func TestEngine_Execute_MissingMeasuresIsBadRequest(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	before := e.cache.Stats()

	_, err := e.Execute(domain.RawQuery{Cube: "sales"})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.StatusCode)

	assert.Equal(t, before, e.cache.Stats())
}

// Scenario: unknown cube is a 404-class failure.
func TestEngine_Execute_UnknownCubeIsNotFound(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	_, err := e.Execute(domain.RawQuery{Cube: "unknown", Measures: []string{"revenue"}})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestEngine_Execute_BadRequestLeavesCountersUnchanged(t *testing.T) {
	e := newTestEngine(t, 0, 0)

	_, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)
	before := e.cache.Stats()

	_, err = e.Execute(domain.RawQuery{Cube: "sales", Measures: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, before, e.cache.Stats())
}

func TestEngine_InvalidateCube_EvictsAndNotifies(t *testing.T) {
	e := newTestEngine(t, 0, 0)

	var received []domain.InvalidationEvent
	unsubscribe := e.OnInvalidation(func(ev domain.InvalidationEvent) {
		received = append(received, ev)
	})
	defer unsubscribe()

	_, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)

	event, err := e.InvalidateCube("sales", "reload")
	require.NoError(t, err)
	assert.Equal(t, "sales", event.Cube)
	assert.Equal(t, "reload", event.Reason)
	assert.Equal(t, 1, event.EvictedCount)
	assert.NotEmpty(t, event.ID)

	require.Len(t, received, 1)
	assert.Equal(t, event.ID, received[0].ID)

	// The next identical query misses.
	again, err := e.Execute(yearRevenueQuery())
	require.NoError(t, err)
	assert.False(t, again.Metadata.Cache.Hit)
}

func TestEngine_InvalidateCube_UnknownCube(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	_, err := e.InvalidateCube("unknown", "whatever")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEngine_InvalidateCube_Unsubscribe(t *testing.T) {
	e := newTestEngine(t, 0, 0)

	calls := 0
	unsubscribe := e.OnInvalidation(func(domain.InvalidationEvent) { calls++ })

	_, err := e.InvalidateCube("sales", "first")
	require.NoError(t, err)
	unsubscribe()
	_, err = e.InvalidateCube("sales", "second")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestEngine_RecentInvalidations(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	_, err := e.InvalidateCube("sales", "a")
	require.NoError(t, err)
	_, err = e.InvalidateCube("sales", "b")
	require.NoError(t, err)

	events := e.RecentInvalidations()
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Reason)
	assert.Equal(t, "b", events[1].Reason)
}

func TestEngine_Execute_TextualHelperOnly(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	result, err := e.Execute(domain.RawQuery{
		Cube:     "sales",
		Measures: []string{"revenue"},
		MDX:      "ROWS time.year; SLICE geography.region = North America",
	})
	require.NoError(t, err)
	assert.Equal(t, "raw-scan", result.Metadata.Planner.Strategy)
	require.Len(t, result.Data.Pivot.Measures, 1)
	assert.Equal(t, [][]float64{{3500}, {1300}}, result.Data.Pivot.Measures[0].Values)
}

func TestEngine_Execute_IncludeFlattenedFalseOmitsFlatRows(t *testing.T) {
	e := newTestEngine(t, 0, 0)
	off := false
	q := yearRevenueQuery()
	q.IncludeFlattened = &off

	result, err := e.Execute(q)
	require.NoError(t, err)
	assert.Empty(t, result.Data.Flat)
	assert.NotEmpty(t, result.Data.Pivot.Rows)
}
