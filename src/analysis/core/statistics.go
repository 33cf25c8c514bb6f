package core

import (
	"math"
	"sort"

	"github.com/guregu/null/v6"
)

// Description is the count/mean/std/min/quartiles/max summary of a series.
type Description struct {
	Count  int
	Mean   null.Float
	Std    null.Float
	Min    null.Float
	Q25    null.Float
	Median null.Float
	Q75    null.Float
	Max    null.Float
}

// -----------------------------------------------------------------------------

// CalculateMeanStd computes the mean and the sample standard deviation (n-1 denominator).
// The std is missing for fewer than two values, the mean for an empty slice.
func CalculateMeanStd(data []float64) (null.Float, null.Float) {
	if len(data) == 0 {
		return null.Float{}, null.Float{}
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return null.FloatFrom(mean), null.Float{}
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	std := math.Sqrt(varianceSum / float64(len(data)-1))
	return null.FloatFrom(mean), null.FloatFrom(std)
}

// -----------------------------------------------------------------------------

// Quantile returns the q-quantile of an ascending slice using linear interpolation
// between the closest ranks.
func Quantile(sorted []float64, q float64) null.Float {
	n := len(sorted)
	if n == 0 || q < 0 || q > 1 {
		return null.Float{}
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return null.FloatFrom(sorted[lo])
	}
	frac := pos - float64(lo)
	return null.FloatFrom(sorted[lo] + (sorted[hi]-sorted[lo])*frac)
}

// -----------------------------------------------------------------------------

// Describe summarizes the valid values of a series, ignoring missing cells.
func Describe(values []null.Float) Description {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			data = append(data, v.Float64)
		}
	}

	d := Description{Count: len(data)}
	if len(data) == 0 {
		return d
	}

	d.Mean, d.Std = CalculateMeanStd(data)

	sort.Float64s(data)
	d.Min = null.FloatFrom(data[0])
	d.Max = null.FloatFrom(data[len(data)-1])
	d.Q25 = Quantile(data, 0.25)
	d.Median = Quantile(data, 0.5)
	d.Q75 = Quantile(data, 0.75)
	return d
}
