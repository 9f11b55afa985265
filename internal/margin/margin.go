// Package margin computes the unit economics of an e-commerce product.
package margin

import (
	"strconv"
	"strings"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/mathutil"
)

// Params are the per-unit inputs of a product. Percentages are expressed in
// percent (2.5 means 2.5 %).
type Params struct {
	Price            float64 `json:"price"`
	Cost             float64 `json:"cost"`
	Shipping         float64 `json:"shipping"`
	PlatformFeePct   float64 `json:"platformFeePct"`
	PlatformFeeFixed float64 `json:"platformFeeFixed"`
	PaymentFeePct    float64 `json:"paymentFeePct"`
	PaymentFeeFixed  float64 `json:"paymentFeeFixed"`
	AdCost           float64 `json:"adCost"`
}

// DefaultParams returns the sample product shown when the calculator opens.
func DefaultParams() Params {
	return Params{
		Price:            49,
		Cost:             20,
		Shipping:         5,
		PlatformFeePct:   2.5,
		PlatformFeeFixed: 0.3,
		PaymentFeePct:    1.5,
		PaymentFeeFixed:  0.25,
		AdCost:           10,
	}
}

// Margins holds the derived figures for one unit sold.
type Margins struct {
	PlatformFee    float64 `json:"platformFee"`
	PaymentFee     float64 `json:"paymentFee"`
	COGS           float64 `json:"cogs"`
	TotalFees      float64 `json:"totalFees"`
	TotalCost      float64 `json:"totalCost"`
	NetMargin      float64 `json:"netMargin"`
	NetMarginPct   float64 `json:"netMarginPct"`
	TargetROAS     float64 `json:"targetRoas"`
	ROAS           float64 `json:"roas"`
	BreakEvenPrice float64 `json:"breakEvenPrice"`
}

// Compute derives the margins of p. Non-finite inputs count as 0, and so
// does any intermediate figure that overflows float64.
func Compute(p Params) Margins {
	p = p.sanitize()
	f := mathutil.Finite

	platformFee := f(f(mathutil.ApplyPercentage(p.Price, p.PlatformFeePct)) + p.PlatformFeeFixed)
	paymentFee := f(f(mathutil.ApplyPercentage(p.Price, p.PaymentFeePct)) + p.PaymentFeeFixed)
	cogs := f(p.Cost + p.Shipping)
	totalFees := f(platformFee + paymentFee)
	costWithoutAds := f(cogs + totalFees)
	totalCost := f(costWithoutAds + p.AdCost)
	netMargin := f(p.Price - totalCost)

	return Margins{
		PlatformFee:    platformFee,
		PaymentFee:     paymentFee,
		COGS:           cogs,
		TotalFees:      totalFees,
		TotalCost:      totalCost,
		NetMargin:      netMargin,
		NetMarginPct:   f(mathutil.CalculatePercentage(netMargin, p.Price)),
		TargetROAS:     f(mathutil.SafeDivide(p.Price, f(p.Price-costWithoutAds))),
		ROAS:           f(mathutil.SafeDivide(p.Price, p.AdCost)),
		BreakEvenPrice: totalCost,
	}
}

// Rounded returns m with every figure rounded to two decimals.
func (m Margins) Rounded() Margins {
	return Margins{
		PlatformFee:    mathutil.Round(m.PlatformFee),
		PaymentFee:     mathutil.Round(m.PaymentFee),
		COGS:           mathutil.Round(m.COGS),
		TotalFees:      mathutil.Round(m.TotalFees),
		TotalCost:      mathutil.Round(m.TotalCost),
		NetMargin:      mathutil.Round(m.NetMargin),
		NetMarginPct:   mathutil.Round(m.NetMarginPct),
		TargetROAS:     mathutil.Round(m.TargetROAS),
		ROAS:           mathutil.Round(m.ROAS),
		BreakEvenPrice: mathutil.Round(m.BreakEvenPrice),
	}
}

// Profitable reports whether a unit sale leaves more than a cent of net
// margin.
func (m Margins) Profitable() bool {
	return m.NetMargin > 0 && !mathutil.IsZero(m.NetMargin)
}

// Point is one sample of a price sweep.
type Point struct {
	Price        float64 `json:"price"`
	NetMargin    float64 `json:"netMargin"`
	NetMarginPct float64 `json:"netMarginPct"`
}

// Sweep recomputes p for count prices starting at from, step apart. A price
// that overflows float64 counts as 0.
func Sweep(p Params, from, step float64, count int) []Point {
	if count <= 0 {
		return nil
	}

	points := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		q := p
		q.Price = mathutil.Finite(from + step*float64(i))
		m := Compute(q)
		points = append(points, Point{
			Price:        q.Price,
			NetMargin:    m.NetMargin,
			NetMarginPct: m.NetMarginPct,
		})
	}
	return points
}

// ParseNumber reads a number typed by the user; anything unparsable is 0.
func ParseNumber(raw string) float64 {
	trimmed := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return mathutil.Finite(v)
}

func (p Params) sanitize() Params {
	return Params{
		Price:            mathutil.Finite(p.Price),
		Cost:             mathutil.Finite(p.Cost),
		Shipping:         mathutil.Finite(p.Shipping),
		PlatformFeePct:   mathutil.Finite(p.PlatformFeePct),
		PlatformFeeFixed: mathutil.Finite(p.PlatformFeeFixed),
		PaymentFeePct:    mathutil.Finite(p.PaymentFeePct),
		PaymentFeeFixed:  mathutil.Finite(p.PaymentFeeFixed),
		AdCost:           mathutil.Finite(p.AdCost),
	}
}
