package cube

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "cubeengine/internal/core/domain/cube"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(10, 60_000)

	_, hit := c.Get("sales|m=revenue")
	assert.False(t, hit)

	c.Set("sales|m=revenue", domain.Result{Metadata: domain.Metadata{Cube: "sales"}})
	got, hit := c.Get("sales|m=revenue")
	require.True(t, hit)
	assert.Equal(t, "sales", got.Metadata.Cube)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestCache_CapacityEviction(t *testing.T) {
	c := NewCache(2, 60_000)
	c.Set("sales|a", domain.Result{})
	c.Set("sales|b", domain.Result{})
	c.Set("sales|c", domain.Result{})

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 1, stats.Evictions)

	// The oldest entry went first.
	_, hit := c.Get("sales|a")
	assert.False(t, hit)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := NewCache(10, 30)
	c.Set("sales|a", domain.Result{})
	time.Sleep(80 * time.Millisecond)
	_, hit := c.Get("sales|a")
	assert.False(t, hit)
}

func TestCache_GetRemainingTTL(t *testing.T) {
	c := NewCache(10, 500)
	c.Set("sales|a", domain.Result{})

	ttl := c.GetRemainingTTL("sales|a")
	require.NotNil(t, ttl)
	assert.LessOrEqual(t, *ttl, int64(500))
	assert.GreaterOrEqual(t, *ttl, int64(0))

	assert.Nil(t, c.GetRemainingTTL("sales|missing"))
}

func TestCache_InvalidateCubeEvictsByPrefixOnly(t *testing.T) {
	c := NewCache(10, 60_000)
	c.Set("sales|a", domain.Result{})
	c.Set("sales|b", domain.Result{})
	c.Set("inventory|a", domain.Result{})

	removed := c.InvalidateCube("sales")
	assert.Equal(t, 2, removed)

	_, hit := c.Get("inventory|a")
	assert.True(t, hit)

	// Explicit invalidation does not count as an LRU eviction.
	assert.Equal(t, 0, c.Stats().Evictions)
}

func TestCache_DefaultsApplied(t *testing.T) {
	c := NewCache(0, 0)
	for i := 0; i < 250; i++ {
		c.Set(fmt.Sprintf("sales|%d", i), domain.Result{})
	}
	assert.Equal(t, 200, c.Stats().Size)
}

func TestBuildKey_StableAndPlanSensitive(t *testing.T) {
	q := domain.NormalizedQuery{
		Cube:     "sales",
		Measures: []string{"revenue", "units"},
		RowAxes:  []domain.ResolvedAxis{{Dimension: "time", Level: "year"}},
		Filters: []domain.FilterSpec{{
			Dimension: "geography", Level: "region",
			Operator: domain.OpEq, Value: domain.StringScalar("Europe"),
		}},
		IncludeFlattened: true,
	}

	assert.Equal(t, BuildKey(q, "raw-scan"), BuildKey(q, "raw-scan"))
	assert.NotEqual(t, BuildKey(q, "raw-scan"), BuildKey(q, "pre-aggregate"))
	assert.True(t, len(BuildKey(q, "raw-scan")) > 0)

	// The cube name prefixes the key so invalidation can match on it.
	assert.Equal(t, "sales|", BuildKey(q, "raw-scan")[:6])
}

func TestBuildKey_DistinguishesQueries(t *testing.T) {
	base := domain.NormalizedQuery{
		Cube:             "sales",
		Measures:         []string{"revenue"},
		RowAxes:          []domain.ResolvedAxis{{Dimension: "time", Level: "year"}},
		IncludeFlattened: true,
	}

	other := base
	other.Measures = []string{"units"}
	assert.NotEqual(t, BuildKey(base, "raw-scan"), BuildKey(other, "raw-scan"))

	withDrill := base
	withDrill.Drill = &domain.DrillSpec{Dimension: "time", FromLevel: "year", ToLevel: "month"}
	assert.NotEqual(t, BuildKey(base, "raw-scan"), BuildKey(withDrill, "raw-scan"))

	withRollup := base
	withRollup.Rollup = &domain.RollupSpec{Dimension: "time", Level: "quarter"}
	assert.NotEqual(t, BuildKey(base, "raw-scan"), BuildKey(withRollup, "raw-scan"))

	noFlat := base
	noFlat.IncludeFlattened = false
	assert.NotEqual(t, BuildKey(base, "raw-scan"), BuildKey(noFlat, "raw-scan"))
}
