package analytics

import (
	"math"
	"testing"
)

func TestCompareInsufficientData(t *testing.T) {
	want := SignificanceResult{PValue: 1.0}

	tests := []struct {
		name    string
		control []float64
		test    []float64
	}{
		{"empty control", nil, []float64{1, 2, 3}},
		{"empty test", []float64{1, 2, 3}, nil},
		{"single-element control", []float64{1}, []float64{1, 2}},
		{"single-element test", []float64{1, 2}, []float64{2}},
		{"both constant gives zero standard error", []float64{3, 3, 3}, []float64{7, 7, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.control, tt.test)
			if got != want {
				t.Errorf("Compare() = %+v, want exact degenerate result %+v", got, want)
			}
		})
	}
}

func TestCompareIdenticalSamples(t *testing.T) {
	sample := []float64{1.0, 2.0, 3.0}
	got := Compare(sample, sample)

	if got.EffectSize != 0 {
		t.Errorf("EffectSize = %v, want 0", got.EffectSize)
	}
	if got.Significant {
		t.Error("identical samples must not be significant")
	}
	// With zero effect the interval is symmetric around zero.
	if math.Abs(got.ConfidenceInterval[0]+got.ConfidenceInterval[1]) > 1e-9 {
		t.Errorf("confidence interval %v not symmetric around 0", got.ConfidenceInterval)
	}
}

func TestCompareClearDifference(t *testing.T) {
	control := []float64{10, 10.1, 9.9, 10.05, 9.95}
	test := []float64{20, 20.2, 19.8, 20.1, 19.9}

	got := Compare(control, test)

	if !got.Significant {
		t.Errorf("expected significance, p = %v", got.PValue)
	}
	if math.Abs(got.EffectSize-10) > 1e-9 {
		t.Errorf("EffectSize = %v, want 10", got.EffectSize)
	}
	if got.PValue >= 0.05 {
		t.Errorf("PValue = %v, want < 0.05", got.PValue)
	}
	if got.ConfidenceInterval[0] >= got.ConfidenceInterval[1] {
		t.Errorf("interval bounds out of order: %v", got.ConfidenceInterval)
	}
	// The interval must bracket the effect size.
	if got.EffectSize < got.ConfidenceInterval[0] || got.EffectSize > got.ConfidenceInterval[1] {
		t.Errorf("effect %v outside interval %v", got.EffectSize, got.ConfidenceInterval)
	}
}

func TestCompareDirection(t *testing.T) {
	lower := []float64{5, 6, 7}
	higher := []float64{8, 9, 10}

	got := Compare(lower, higher)
	if got.EffectSize <= 0 {
		t.Errorf("test above control should give positive effect, got %v", got.EffectSize)
	}

	flipped := Compare(higher, lower)
	if flipped.EffectSize >= 0 {
		t.Errorf("test below control should give negative effect, got %v", flipped.EffectSize)
	}
	if math.Abs(got.PValue-flipped.PValue) > 1e-9 {
		t.Errorf("two-sided p should not depend on direction: %v vs %v", got.PValue, flipped.PValue)
	}
}
