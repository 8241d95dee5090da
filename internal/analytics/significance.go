package analytics

import "math"

// SignificanceResult is the outcome of an approximate two-sample test
// between a control and a test campaign.
type SignificanceResult struct {
	PValue             float64    `json:"p_value"`
	Significant        bool       `json:"significant"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	EffectSize         float64    `json:"effect_size"`
}

// insufficientData is the defined result for samples too small (or too
// degenerate) to compare. It is a value, not an error.
func insufficientData() SignificanceResult {
	return SignificanceResult{PValue: 1.0}
}

// Compare runs an approximate two-sample significance test. The p-value
// uses the heuristic tail approximation
//
//	p = 2 * (1 - |t| / (|t| + sqrt(nc+nt-2)))
//
// rather than a Student's t CDF. It is kept bit-for-bit compatible with
// the reporting pipeline's historical outputs and must not be read as an
// exact probability; swapping in a real t-distribution is a deliberate,
// output-changing decision.
//
// Samples with fewer than two observations each, or with zero pooled
// standard error, produce the insufficient-data result
// {p=1, significant=false, ci=[0,0], effect=0}.
func Compare(control, test []float64) SignificanceResult {
	if len(control) < 2 || len(test) < 2 {
		return insufficientData()
	}

	meanControl := Mean(control)
	meanTest := Mean(test)

	// Standard error of the mean difference; Variance is already the
	// squared sample standard deviation.
	se := math.Sqrt(Variance(control)/float64(len(control)) + Variance(test)/float64(len(test)))
	if se == 0 {
		return insufficientData()
	}

	tStat := (meanTest - meanControl) / se
	p := 2 * (1 - math.Abs(tStat)/(math.Abs(tStat)+math.Sqrt(float64(len(control)+len(test)-2))))

	effect := meanTest - meanControl
	margin := 1.96 * se

	return SignificanceResult{
		PValue:             p,
		Significant:        p < 0.05,
		ConfidenceInterval: [2]float64{effect - margin, effect + margin},
		EffectSize:         effect,
	}
}
