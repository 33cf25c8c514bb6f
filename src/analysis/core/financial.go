package core

import "github.com/guregu/null/v6"

// -----------------------------------------------------------------------------

// PercentChange returns current/previous - 1. It is missing when either side is
// missing or previous is zero, so a gap never turns into a fake 0% or an Inf.
func PercentChange(current, previous null.Float) null.Float {
	if !current.Valid || !previous.Valid || previous.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom(current.Float64/previous.Float64 - 1)
}

// -----------------------------------------------------------------------------

// CompoundReturns returns the running compounded growth minus one for a return series.
// Missing returns contribute a factor of 1, so the first value is always 0.
func CompoundReturns(returns []null.Float) []null.Float {
	out := make([]null.Float, len(returns))
	growth := 1.0
	for i, r := range returns {
		if i > 0 && r.Valid {
			growth *= 1 + r.Float64
		}
		out[i] = null.FloatFrom(growth - 1)
	}
	return out
}

// -----------------------------------------------------------------------------

// TrailingMean returns the mean of values[end-window+1 .. end]. It is missing when the
// window reaches before the first value or contains a missing value.
func TrailingMean(values []null.Float, end, window int) null.Float {
	if window <= 0 || end >= len(values) || end < window-1 {
		return null.Float{}
	}
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		if !values[i].Valid {
			return null.Float{}
		}
		sum += values[i].Float64
	}
	return null.FloatFrom(sum / float64(window))
}
