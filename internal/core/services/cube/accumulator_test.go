package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"

	domain "cubeengine/internal/core/domain/cube"
)

func TestSumAccumulator_IgnoresNonNumeric(t *testing.T) {
	acc := NewAccumulator(domain.AggSum)
	acc.Add(domain.NumberScalar(10))
	acc.Add(domain.StringScalar("nope"))
	acc.Add(domain.Null)
	acc.Add(domain.NumberScalar(2.5))
	assert.Equal(t, 12.5, acc.Finalize())
}

func TestSumAccumulator_ZeroObservations(t *testing.T) {
	assert.Equal(t, 0.0, NewAccumulator(domain.AggSum).Finalize())
}

func TestCountAccumulator_CountsStringsButNotNull(t *testing.T) {
	acc := NewAccumulator(domain.AggCount)
	acc.Add(domain.NumberScalar(1))
	acc.Add(domain.StringScalar("yes"))
	acc.Add(domain.Null)
	assert.Equal(t, 2.0, acc.Finalize())
}

func TestAvgAccumulator(t *testing.T) {
	acc := NewAccumulator(domain.AggAvg)
	acc.Add(domain.NumberScalar(10))
	acc.Add(domain.NumberScalar(20))
	acc.Add(domain.StringScalar("skipped"))
	assert.Equal(t, 15.0, acc.Finalize())
}

func TestAvgAccumulator_ZeroObservationsReturnsZero(t *testing.T) {
	acc := NewAccumulator(domain.AggAvg)
	acc.Add(domain.StringScalar("only strings"))
	assert.Equal(t, 0.0, acc.Finalize())
}

func TestMinMaxAccumulators(t *testing.T) {
	min := NewAccumulator(domain.AggMin)
	max := NewAccumulator(domain.AggMax)
	for _, v := range []float64{5, -3, 12, 0} {
		min.Add(domain.NumberScalar(v))
		max.Add(domain.NumberScalar(v))
	}
	assert.Equal(t, -3.0, min.Finalize())
	assert.Equal(t, 12.0, max.Finalize())
}

func TestMinMaxAccumulators_ZeroObservationsReturnZero(t *testing.T) {
	assert.Equal(t, 0.0, NewAccumulator(domain.AggMin).Finalize())
	assert.Equal(t, 0.0, NewAccumulator(domain.AggMax).Finalize())
}

func TestDistinctAccumulator_StringifiesInputs(t *testing.T) {
	acc := NewAccumulator(domain.AggDistinct)
	acc.Add(domain.NumberScalar(1))
	acc.Add(domain.StringScalar("1")) // same stringified form as the number
	acc.Add(domain.StringScalar("a"))
	acc.Add(domain.StringScalar("a"))
	acc.Add(domain.Null)
	assert.Equal(t, 2.0, acc.Finalize())
}

func TestDistinctAccumulator_ZeroObservations(t *testing.T) {
	assert.Equal(t, 0.0, NewAccumulator(domain.AggDistinct).Finalize())
}
