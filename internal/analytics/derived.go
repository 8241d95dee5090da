package analytics

import "math"

// DerivedMetrics holds the ratio-based business metrics computed from
// one set of totals. All fields are rounded to two decimals for
// presentation.
type DerivedMetrics struct {
	CTRPercent          float64 `json:"ctr_percent"`
	CVRPercent          float64 `json:"cvr_percent"`
	CPC                 float64 `json:"cpc"`
	CPM                 float64 `json:"cpm"`
	ROAS                float64 `json:"roas"`
	CostPerAcquisition  float64 `json:"cost_per_acquisition"`
	Profit              float64 `json:"profit"`
	ProfitMarginPercent float64 `json:"profit_margin_percent"`
}

// Derive computes rate and cost metrics from aggregated totals. Any
// ratio with a zero denominator resolves to 0. That is the contract, not
// a shortcut: total absence of clicks or impressions is a representable
// state the reporting layer must render.
func Derive(t Totals) DerivedMetrics {
	var d DerivedMetrics

	if t.Impressions > 0 {
		d.CTRPercent = float64(t.Clicks) / float64(t.Impressions) * 100
		d.CPM = t.Spend / float64(t.Impressions) * 1000
	}
	if t.Clicks > 0 {
		d.CVRPercent = float64(t.Conversions) / float64(t.Clicks) * 100
		d.CPC = t.Spend / float64(t.Clicks)
	}
	if t.Spend > 0 {
		d.ROAS = t.Revenue / t.Spend
	}
	if t.Conversions > 0 {
		d.CostPerAcquisition = t.Spend / float64(t.Conversions)
	}

	d.Profit = t.Revenue - t.Spend
	if t.Revenue > 0 {
		d.ProfitMarginPercent = d.Profit / t.Revenue * 100
	}

	d.CTRPercent = Round2(d.CTRPercent)
	d.CVRPercent = Round2(d.CVRPercent)
	d.CPC = Round2(d.CPC)
	d.CPM = Round2(d.CPM)
	d.ROAS = Round2(d.ROAS)
	d.CostPerAcquisition = Round2(d.CostPerAcquisition)
	d.Profit = Round2(d.Profit)
	d.ProfitMarginPercent = Round2(d.ProfitMarginPercent)
	return d
}

// ROI returns return on investment as a percentage. Unlike the other
// ratios, a zero cost with positive revenue yields +Inf; callers
// presenting ROI decide how to render that.
func ROI(revenue, cost float64) float64 {
	if cost == 0 {
		if revenue > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (revenue - cost) / cost * 100
}
