package reimbursement

import (
	"github.com/shopspring/decimal"
)

// Point is one sample of a reimbursement sweep. Refused samples carry zeros.
type Point struct {
	BilledAmount              decimal.Decimal `json:"billedAmount"`
	StatutoryReimbursement    decimal.Decimal `json:"statutoryReimbursement"`
	SupplementalReimbursement decimal.Decimal `json:"supplementalReimbursement"`
	OutOfPocket               decimal.Decimal `json:"outOfPocket"`
	Refused                   bool            `json:"refused,omitempty"`
}

// Sweep recomputes sim for count billed amounts starting at from, step
// apart. All other inputs are held fixed.
func Sweep(sim Simulation, from, step decimal.Decimal, count int) []Point {
	if count <= 0 {
		return nil
	}

	points := make([]Point, 0, count)
	for i := 0; i < count; i++ {
		amount := from.Add(step.Mul(decimal.NewFromInt(int64(i))))
		s := sim
		s.BilledAmount = amount

		res, err := Compute(s)
		if err != nil {
			points = append(points, Point{BilledAmount: amount, Refused: true})
			continue
		}
		points = append(points, Point{
			BilledAmount:              amount,
			StatutoryReimbursement:    res.StatutoryReimbursement,
			SupplementalReimbursement: res.SupplementalReimbursement,
			OutOfPocket:               res.OutOfPocket,
		})
	}
	return points
}

// Summary is the display view of a Result: amounts rounded to the cent,
// rates to one decimal.
type Summary struct {
	StatutoryBase              float64 `json:"statutoryBase"`
	Overage                    float64 `json:"overage"`
	StatutoryReimbursement     float64 `json:"statutoryReimbursement"`
	SupplementalReimbursement  float64 `json:"supplementalReimbursement"`
	Copay                      float64 `json:"copay"`
	OutOfPocket                float64 `json:"outOfPocket"`
	TotalReimbursementRate     float64 `json:"totalReimbursementRate"`
	StatutoryReimbursementRate float64 `json:"statutoryReimbursementRate"`
	FlatFee                    float64 `json:"flatFee"`
	Deductible                 float64 `json:"deductible"`
	Exempt                     bool    `json:"exempt"`
}

// Rounded rounds r for display. Rounding happens only here.
func (r Result) Rounded() Summary {
	return Summary{
		StatutoryBase:              cents(r.StatutoryBase),
		Overage:                    cents(r.Overage),
		StatutoryReimbursement:     cents(r.StatutoryReimbursement),
		SupplementalReimbursement:  cents(r.SupplementalReimbursement),
		Copay:                      cents(r.Copay),
		OutOfPocket:                cents(r.OutOfPocket),
		TotalReimbursementRate:     r.TotalReimbursementRate.Round(1).InexactFloat64(),
		StatutoryReimbursementRate: r.StatutoryReimbursementRate.Round(1).InexactFloat64(),
		FlatFee:                    cents(r.FlatFee),
		Deductible:                 cents(r.Deductible),
		Exempt:                     r.Exempt,
	}
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
