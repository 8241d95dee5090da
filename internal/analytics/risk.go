package analytics

import "math"

// RiskConfig holds the normalization thresholds and weights for risk
// scoring. It is passed explicitly into ScoreRisk so the engine carries
// no process-wide settings; use DefaultRiskConfig as the starting point.
type RiskConfig struct {
	// Raw values at or above these are treated as excellent and
	// contribute zero risk.
	ExcellentCTR  float64 // percent
	ExcellentCVR  float64 // percent
	ExcellentROAS float64 // multiple of spend

	// VarianceScale is the delivery variance treated as maximally
	// unstable; anything above it saturates the variance sub-score.
	VarianceScale float64

	CTRWeight      float64
	CVRWeight      float64
	ROASWeight     float64
	VarianceWeight float64
}

// DefaultRiskConfig returns the platform's standard thresholds.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		ExcellentCTR:   5,
		ExcellentCVR:   10,
		ExcellentROAS:  5,
		VarianceScale:  1_000_000,
		CTRWeight:      0.3,
		CVRWeight:      0.3,
		ROASWeight:     0.3,
		VarianceWeight: 0.1,
	}
}

// ScoreRisk combines rate metrics and delivery variance into a single
// score in [0,100]; higher means riskier. Each input is normalized to a
// [0,1] sub-score where a strong raw value reduces risk, then the
// weighted sum is scaled to 100. The weights sum to 1, so no final
// clamp is needed beyond the per-term guards.
func ScoreRisk(ctrPercent, cvrPercent, roas, variance float64, cfg RiskConfig) float64 {
	ctrRisk := math.Max(0, 1-ctrPercent/cfg.ExcellentCTR)
	cvrRisk := math.Max(0, 1-cvrPercent/cfg.ExcellentCVR)
	roasRisk := math.Max(0, 1-roas/cfg.ExcellentROAS)
	varianceRisk := math.Min(1, variance/cfg.VarianceScale)

	score := (ctrRisk*cfg.CTRWeight +
		cvrRisk*cfg.CVRWeight +
		roasRisk*cfg.ROASWeight +
		varianceRisk*cfg.VarianceWeight) * 100

	return Round2(score)
}
