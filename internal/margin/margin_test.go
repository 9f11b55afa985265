package margin

import (
	"math"
	"testing"
)

const tolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestComputeDefaultProduct(t *testing.T) {
	m := Compute(DefaultParams())

	expectedNet := 49 - (20 + 5 + (49*0.025 + 0.3) + (49*0.015 + 0.25) + 10)

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"PlatformFee", m.PlatformFee, 1.525},
		{"PaymentFee", m.PaymentFee, 0.985},
		{"COGS", m.COGS, 25},
		{"TotalFees", m.TotalFees, 2.51},
		{"TotalCost", m.TotalCost, 37.51},
		{"NetMargin", m.NetMargin, expectedNet},
		{"NetMarginPct", m.NetMarginPct, expectedNet / 49 * 100},
		{"TargetROAS", m.TargetROAS, 49 / (49 - 27.51)},
		{"ROAS", m.ROAS, 4.9},
		{"BreakEvenPrice", m.BreakEvenPrice, 37.51},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !almostEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, expected %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	if !m.Profitable() {
		t.Error("default product should be profitable")
	}
	if r := m.Rounded(); r.NetMargin != 11.49 || r.TargetROAS != 2.28 {
		t.Errorf("rounded = %+v", r)
	}
}

func TestComputeGuards(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		check  func(t *testing.T, m Margins)
	}{
		{
			name:   "Zero price",
			params: Params{Cost: 20, Shipping: 5, PlatformFeeFixed: 0.3, PaymentFeeFixed: 0.25},
			check: func(t *testing.T, m Margins) {
				if m.NetMarginPct != 0 || m.TargetROAS != 0 {
					t.Errorf("expected guarded ratios, got %+v", m)
				}
				if !almostEqual(m.NetMargin, -25.55) {
					t.Errorf("net margin = %v", m.NetMargin)
				}
			},
		},
		{
			name:   "Costs above price",
			params: Params{Price: 20, Cost: 25},
			check: func(t *testing.T, m Margins) {
				if m.TargetROAS != 0 {
					t.Errorf("target ROAS = %v, expected 0", m.TargetROAS)
				}
				if m.Profitable() {
					t.Error("should not be profitable")
				}
			},
		},
		{
			name:   "Costs equal price",
			params: Params{Price: 20, Cost: 20},
			check: func(t *testing.T, m Margins) {
				if m.TargetROAS != 0 {
					t.Errorf("target ROAS = %v, expected 0", m.TargetROAS)
				}
			},
		},
		{
			name:   "No ad spend",
			params: Params{Price: 30, Cost: 10},
			check: func(t *testing.T, m Margins) {
				if m.ROAS != 0 {
					t.Errorf("ROAS = %v, expected 0", m.ROAS)
				}
				if !almostEqual(m.TargetROAS, 1.5) {
					t.Errorf("target ROAS = %v, expected 1.5", m.TargetROAS)
				}
			},
		},
		{
			name:   "Non-finite inputs",
			params: Params{Price: math.NaN(), Cost: math.Inf(1), AdCost: 5},
			check: func(t *testing.T, m Margins) {
				if math.IsNaN(m.NetMargin) || math.IsInf(m.NetMargin, 0) {
					t.Fatalf("net margin not finite: %v", m.NetMargin)
				}
				if !almostEqual(m.NetMargin, -5) {
					t.Errorf("net margin = %v, expected -5", m.NetMargin)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Compute(tt.params))
		})
	}
}

func assertFinite(t *testing.T, m Margins) {
	t.Helper()
	fields := map[string]float64{
		"PlatformFee":    m.PlatformFee,
		"PaymentFee":     m.PaymentFee,
		"COGS":           m.COGS,
		"TotalFees":      m.TotalFees,
		"TotalCost":      m.TotalCost,
		"NetMargin":      m.NetMargin,
		"NetMarginPct":   m.NetMarginPct,
		"TargetROAS":     m.TargetROAS,
		"ROAS":           m.ROAS,
		"BreakEvenPrice": m.BreakEvenPrice,
	}
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, expected a finite value", name, v)
		}
	}
}

func TestComputeOverflowingInputs(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{name: "Fee overflows", params: Params{Price: 1e308, PlatformFeePct: 1e308}},
		{name: "Opposite fees overflow", params: Params{Price: 1e308, PlatformFeePct: 1e308, PaymentFeePct: -1e308}},
		{name: "Costs overflow", params: Params{Price: 1e308, Cost: math.MaxFloat64, Shipping: math.MaxFloat64, AdCost: math.MaxFloat64}},
		{name: "Tiny price", params: Params{Price: 1e-308, Cost: -1e308}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compute(tt.params)
			assertFinite(t, m)
			assertFinite(t, m.Rounded())
		})
	}
}

func TestProfitableIgnoresSubCentMargins(t *testing.T) {
	tests := []struct {
		name      string
		netMargin float64
		expected  bool
	}{
		{"Loss", -3, false},
		{"Break even", 0, false},
		{"Rounding noise", 0.004, false},
		{"One cent", 0.01, false},
		{"Real margin", 0.02, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Margins{NetMargin: tt.netMargin}).Profitable(); got != tt.expected {
				t.Errorf("Profitable() with net margin %v = %v, expected %v", tt.netMargin, got, tt.expected)
			}
		})
	}
}

func TestSweep(t *testing.T) {
	points := Sweep(DefaultParams(), 30, 2, 21)
	if len(points) != 21 {
		t.Fatalf("expected 21 points, got %d", len(points))
	}
	if points[0].Price != 30 || points[20].Price != 70 {
		t.Errorf("price range = %v..%v, expected 30..70", points[0].Price, points[20].Price)
	}
	for i := 1; i < len(points); i++ {
		if points[i].NetMargin <= points[i-1].NetMargin {
			t.Fatalf("net margin should grow with price: %+v", points)
		}
	}

	at49 := Compute(DefaultParams())
	for _, p := range Sweep(DefaultParams(), 49, 1, 1) {
		if !almostEqual(p.NetMargin, at49.NetMargin) {
			t.Errorf("sweep point differs from Compute: %v vs %v", p.NetMargin, at49.NetMargin)
		}
	}

	for _, p := range Sweep(DefaultParams(), 1e308, 1e308, 3) {
		if math.IsInf(p.Price, 0) || math.IsInf(p.NetMargin, 0) || math.IsNaN(p.NetMarginPct) {
			t.Errorf("sweep point not finite: %+v", p)
		}
	}

	if Sweep(DefaultParams(), 30, 2, 0) != nil {
		t.Error("expected no points for count 0")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"49", 49},
		{" 2,5 ", 2.5},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"-3.5", -3.5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseNumber(tt.input); got != tt.expected {
				t.Errorf("ParseNumber(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
