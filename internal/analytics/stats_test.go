package analytics

import (
	"math"
	"testing"
)

func TestVariance(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty sequence", nil, 0},
		{"single element", []float64{42}, 0},
		{"constant sequence", []float64{5, 5, 5, 5}, 0},
		{"known sample variance", []float64{1, 2, 3, 4, 5}, 2.5},
		{"two points", []float64{1000, 2000}, 500000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Variance(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Variance(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestTrendSlope(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty sequence", nil, 0},
		{"single element", []float64{7}, 0},
		{"constant sequence is exactly flat", []float64{5, 5, 5, 5}, 0},
		{"unit ramp has slope one exactly", []float64{1, 2, 3, 4, 5}, 1},
		{"declining series", []float64{10, 8, 6, 4}, -2},
		{"noisy but rising", []float64{1, 3, 2, 4}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrendSlope(tt.values); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("TrendSlope(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Mean([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Mean = %v, want 4", got)
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{1, 2, 3}); math.Abs(got-1) > 1e-9 {
		t.Errorf("StdDev = %v, want 1", got)
	}
	if got := StdDev([]float64{9}); got != 0 {
		t.Errorf("StdDev of single element = %v, want 0", got)
	}
}

func TestSeriesStats(t *testing.T) {
	got := SeriesStats([]float64{1, 2, 3, 4, 5})
	if got.TrendSlope != 1 {
		t.Errorf("TrendSlope = %v, want 1", got.TrendSlope)
	}
	if math.Abs(got.Variance-2.5) > 1e-9 {
		t.Errorf("Variance = %v, want 2.5", got.Variance)
	}
}

func TestRounding(t *testing.T) {
	if got := Round2(4.333333); got != 4.33 {
		t.Errorf("Round2 = %v, want 4.33", got)
	}
	if got := Round4(0.123456); got != 0.1235 {
		t.Errorf("Round4 = %v, want 0.1235", got)
	}
}
