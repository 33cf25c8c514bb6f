package core

import (
	"math"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
)

func TestCalculateMeanStd(t *testing.T) {
	mean, std := CalculateMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.InDelta(t, 5, mean.Float64, 1e-12)
	// sample std, n-1 = 7
	assert.InDelta(t, math.Sqrt(32.0/7.0), std.Float64, 1e-12)
}

func TestCalculateMeanStdSmallInputs(t *testing.T) {
	mean, std := CalculateMeanStd(nil)
	assert.False(t, mean.Valid)
	assert.False(t, std.Valid)

	mean, std = CalculateMeanStd([]float64{3})
	assert.InDelta(t, 3, mean.Float64, 1e-12)
	assert.False(t, std.Valid)
}

func TestQuantileInterpolates(t *testing.T) {
	sorted := []float64{1, 2, 3, 4}

	assert.InDelta(t, 1, Quantile(sorted, 0).Float64, 1e-12)
	assert.InDelta(t, 1.75, Quantile(sorted, 0.25).Float64, 1e-12)
	assert.InDelta(t, 2.5, Quantile(sorted, 0.5).Float64, 1e-12)
	assert.InDelta(t, 3.25, Quantile(sorted, 0.75).Float64, 1e-12)
	assert.InDelta(t, 4, Quantile(sorted, 1).Float64, 1e-12)

	assert.False(t, Quantile(nil, 0.5).Valid)
	assert.False(t, Quantile(sorted, 1.5).Valid)
}

func TestDescribeIgnoresMissing(t *testing.T) {
	values := []null.Float{{}, null.FloatFrom(0.1), null.FloatFrom(-0.1), {}, null.FloatFrom(0.3)}

	d := Describe(values)

	assert.Equal(t, 3, d.Count)
	assert.InDelta(t, 0.1, d.Mean.Float64, 1e-12)
	assert.InDelta(t, 0.2, d.Std.Float64, 1e-12)
	assert.InDelta(t, -0.1, d.Min.Float64, 1e-12)
	assert.InDelta(t, 0.0, d.Q25.Float64, 1e-12)
	assert.InDelta(t, 0.1, d.Median.Float64, 1e-12)
	assert.InDelta(t, 0.2, d.Q75.Float64, 1e-12)
	assert.InDelta(t, 0.3, d.Max.Float64, 1e-12)
}

func TestDescribeEmpty(t *testing.T) {
	d := Describe([]null.Float{{}, {}})

	assert.Equal(t, 0, d.Count)
	assert.False(t, d.Mean.Valid)
	assert.False(t, d.Max.Valid)
}
