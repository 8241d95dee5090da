package analytics

import "math"

// TrendStatistics bundles dispersion and direction for one metric
// series sampled at a fixed cadence.
type TrendStatistics struct {
	Variance   float64 `json:"variance"`
	TrendSlope float64 `json:"trend_slope"`
}

// SeriesStats computes variance and trend slope for a chronological
// series of values.
func SeriesStats(values []float64) TrendStatistics {
	return TrendStatistics{
		Variance:   Variance(values),
		TrendSlope: TrendSlope(values),
	}
}

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance returns the sample variance (n-1 denominator). Fewer than
// two observations yield 0; that is a defined insufficient-data result,
// not an error.
func Variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(n-1)
}

// StdDev returns the sample standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// TrendSlope returns the ordinary least squares slope of values against
// their index positions 0..n-1. The input must be chronological for the
// sign to mean anything. Fewer than two values yield 0, and a flat
// series yields exactly 0.
func TrendSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	xMean := float64(n-1) / 2
	yMean := Mean(values)

	var num, den float64
	for i, v := range values {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// Round2 rounds to two decimal places for presentation. Internal
// computation always runs at full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimal places, used for trend slopes where two
// decimals would flatten small but real drifts.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
