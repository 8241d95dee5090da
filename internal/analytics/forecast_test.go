package analytics

import (
	"math"
	"testing"
)

func TestProjectValue(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		slope    float64
		days     int
		expected float64
	}{
		{"rising trend", 100, 10, 30, 400},
		{"flat trend", 100, 0, 30, 100},
		{"negative projection clamps to zero", 100, -50, 10, 0},
		{"zero days returns current", 250, 5, 0, 250},
		{"negative days treated as zero", 250, 5, -7, 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProjectValue(tt.current, tt.slope, tt.days); got != tt.expected {
				t.Errorf("ProjectValue(%v, %v, %d) = %v, want %v",
					tt.current, tt.slope, tt.days, got, tt.expected)
			}
		})
	}
}

func TestProject(t *testing.T) {
	t.Run("empty history yields zero forecast", func(t *testing.T) {
		got := Project(nil, nil, 30)
		if got != (Forecast{}) {
			t.Errorf("Project(nil, nil, 30) = %+v, want zero forecast", got)
		}
	})

	t.Run("projects last value along trend", func(t *testing.T) {
		revenues := []float64{500, 700}
		spends := []float64{100, 150}
		got := Project(revenues, spends, 30)

		if got.ProjectedRevenue != 6700 { // 700 + 200*30
			t.Errorf("ProjectedRevenue = %v, want 6700", got.ProjectedRevenue)
		}
		if got.ProjectedSpend != 1650 { // 150 + 50*30
			t.Errorf("ProjectedSpend = %v, want 1650", got.ProjectedSpend)
		}
		if got.RevenueTrend != 200 {
			t.Errorf("RevenueTrend = %v, want 200", got.RevenueTrend)
		}
		if got.SpendTrend != 50 {
			t.Errorf("SpendTrend = %v, want 50", got.SpendTrend)
		}
	})

	t.Run("collapsing revenue clamps at zero", func(t *testing.T) {
		got := Project([]float64{300, 200, 100}, []float64{50, 50, 50}, 30)
		if got.ProjectedRevenue != 0 {
			t.Errorf("ProjectedRevenue = %v, want 0", got.ProjectedRevenue)
		}
	})

	t.Run("confidence stays within bounds", func(t *testing.T) {
		stable := Project([]float64{100, 101, 99, 100}, nil, 7)
		volatile := Project([]float64{10, 900, 5, 1200}, nil, 7)

		for _, f := range []Forecast{stable, volatile} {
			if f.ConfidencePercent < 0 || f.ConfidencePercent > 100 {
				t.Errorf("ConfidencePercent = %v, outside [0,100]", f.ConfidencePercent)
			}
		}
		if stable.ConfidencePercent <= volatile.ConfidencePercent {
			t.Errorf("stable series confidence %v should exceed volatile %v",
				stable.ConfidencePercent, volatile.ConfidencePercent)
		}
	})
}

func TestProjectMonthlyRevenue(t *testing.T) {
	tests := []struct {
		name     string
		revenue  float64
		days     int
		expected float64
	}{
		{"half month doubles", 1500, 15, 3000},
		{"full month stays", 3000, 30, 3000},
		{"zero days elapsed", 500, 0, 0},
		{"negative days elapsed", 500, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProjectMonthlyRevenue(tt.revenue, tt.days)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ProjectMonthlyRevenue(%v, %d) = %v, want %v",
					tt.revenue, tt.days, got, tt.expected)
			}
		})
	}
}
