package analytics

import (
	"math"
	"testing"
)

func TestScoreRisk(t *testing.T) {
	cfg := DefaultRiskConfig()

	tests := []struct {
		name     string
		ctr      float64
		cvr      float64
		roas     float64
		variance float64
		expected float64
	}{
		{
			name: "excellent everything floors at zero",
			ctr:  5, cvr: 10, roas: 5, variance: 0,
			expected: 0,
		},
		{
			name: "above excellent does not go negative",
			ctr:  9, cvr: 25, roas: 12, variance: 0,
			expected: 0,
		},
		{
			name: "worst case saturates at the weight ceiling",
			ctr:  0, cvr: 0, roas: 0, variance: 5_000_000,
			expected: 100,
		},
		{
			name: "variance term capped at its weight",
			ctr:  5, cvr: 10, roas: 5, variance: 123_000_000,
			expected: 10,
		},
		{
			name: "mid-range campaign",
			ctr:  2.5, cvr: 5, roas: 2.5, variance: 500_000,
			// each rate sub-score is 0.5, variance sub-score 0.5
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(tt.ctr, tt.cvr, tt.roas, tt.variance, cfg)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ScoreRisk() = %v, want %v", got, tt.expected)
			}
			if got < 0 || got > 100 {
				t.Errorf("ScoreRisk() = %v, outside [0,100]", got)
			}
		})
	}
}

func TestDefaultRiskConfigWeightsSumToOne(t *testing.T) {
	cfg := DefaultRiskConfig()
	sum := cfg.CTRWeight + cfg.CVRWeight + cfg.ROASWeight + cfg.VarianceWeight
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
}
