// Package reimbursement simulates what the statutory insurer (Sécu), the
// supplemental insurer (mutuelle) and the patient each pay for a bill.
package reimbursement

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/shopspring/decimal"
)

// ErrAmountOutOfRange is returned when the billed amount is negative or
// above the supported maximum.
var ErrAmountOutOfRange = errors.New("billed amount out of supported range")

var (
	one             = decimal.NewFromInt(1)
	hundred         = decimal.NewFromInt(100)
	maxBilledAmount = decimal.NewFromInt(constants.MaxBilledAmount)
	flatFeeAmount   = dec(constants.FlatFee)
	deductibleUnit  = dec(constants.MedicationDeductible)
	partialAidShare = dec(constants.PartialAidShare)
)

// Simulation is one set of inputs typed by the user.
type Simulation struct {
	CareType         CareType        `json:"careType"`
	Sector           Sector          `json:"sector"`
	BilledAmount     decimal.Decimal `json:"billedAmount"`
	SupplementalTier Tier            `json:"supplementalTier"`
	// UniversalCoverage is the CMU/CSS exemption, PartialAidCoverage the ACS.
	UniversalCoverage  bool `json:"universalCoverage"`
	PartialAidCoverage bool `json:"partialAidCoverage"`
	ApplyFlatFee       bool `json:"applyFlatFee"`
	ApplyDeductible    bool `json:"applyDeductible"`
}

// Exempt reports whether an exemption waives the flat fee and deductible.
func (s Simulation) Exempt() bool {
	return s.UniversalCoverage || s.PartialAidCoverage
}

// Result holds every amount derived from a Simulation, at full precision.
type Result struct {
	StatutoryBase              decimal.Decimal `json:"statutoryBase"`
	Overage                    decimal.Decimal `json:"overage"`
	StatutoryReimbursement     decimal.Decimal `json:"statutoryReimbursement"`
	SupplementalReimbursement  decimal.Decimal `json:"supplementalReimbursement"`
	Copay                      decimal.Decimal `json:"copay"`
	OutOfPocket                decimal.Decimal `json:"outOfPocket"`
	TotalReimbursementRate     decimal.Decimal `json:"totalReimbursementRate"`
	StatutoryReimbursementRate decimal.Decimal `json:"statutoryReimbursementRate"`
	FlatFee                    decimal.Decimal `json:"flatFee"`
	Deductible                 decimal.Decimal `json:"deductible"`
	Exempt                     bool            `json:"exempt"`
}

// Compute runs the reimbursement model on sim. It refuses amounts outside
// [0, 10000] with ErrAmountOutOfRange; every other input is accepted.
func Compute(sim Simulation) (*Result, error) {
	amount := sim.BilledAmount
	if amount.IsNegative() || amount.GreaterThan(maxBilledAmount) {
		return nil, ErrAmountOutOfRange
	}

	care, _ := LookupCareType(sim.CareType)
	exempt := sim.Exempt()

	// The Sécu always reimburses against the regulated tariff, whatever the sector.
	base := care.Tariff
	overage := decimal.Max(decimal.Zero, amount.Sub(base))
	statutory := base.Mul(care.Rate)

	// FlatFee reports what was actually withheld, so nothing for care with
	// no statutory share.
	var flatFee decimal.Decimal
	if sim.ApplyFlatFee && !exempt && statutory.IsPositive() {
		flatFee = decimal.Min(flatFeeAmount, statutory)
		statutory = statutory.Sub(flatFee)
	}

	copay := base.Mul(one.Sub(care.Rate))

	var supplemental decimal.Decimal
	if sim.SupplementalTier > 0 {
		t := decimal.NewFromInt(int64(sim.SupplementalTier)).Div(hundred)
		supplemental = copay.Mul(decimal.Min(one, t))
		if t.GreaterThan(one) {
			supplemental = supplemental.Add(overage.Mul(t.Sub(one)))
		}
	}

	outOfPocket := decimal.Max(decimal.Zero, overage.Add(copay).Sub(supplemental))

	if sim.UniversalCoverage {
		outOfPocket = decimal.Zero
		supplemental = decimal.Zero
	} else if sim.PartialAidCoverage {
		outOfPocket = decimal.Max(decimal.Zero, outOfPocket.Mul(partialAidShare))
	}

	var deductible decimal.Decimal
	if sim.ApplyDeductible && !exempt && care.ID == CareMedication {
		deductible = deductibleUnit
		outOfPocket = outOfPocket.Add(deductible)
	}

	statutory = decimal.Max(decimal.Zero, statutory)
	supplemental = decimal.Max(decimal.Zero, supplemental)
	outOfPocket = decimal.Max(decimal.Zero, outOfPocket)

	var statutoryRate, totalRate decimal.Decimal
	if amount.IsPositive() {
		statutoryRate = statutory.Div(amount).Mul(hundred)
		totalRate = statutory.Add(supplemental).Div(amount).Mul(hundred)
	}

	return &Result{
		StatutoryBase:              base,
		Overage:                    overage,
		StatutoryReimbursement:     statutory,
		SupplementalReimbursement:  supplemental,
		Copay:                      copay,
		OutOfPocket:                outOfPocket,
		TotalReimbursementRate:     totalRate,
		StatutoryReimbursementRate: statutoryRate,
		FlatFee:                    flatFee,
		Deductible:                 deductible,
		Exempt:                     exempt,
	}, nil
}

// ParseAmount reads an amount typed by the user. Blank or non-numeric input
// counts as 0; a decimal comma is accepted.
func ParseAmount(raw string) decimal.Decimal {
	trimmed := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if trimmed == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// AmountFromFloat converts a float amount, mapping NaN and infinities to 0.
func AmountFromFloat(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

// ParseTier reads a supplemental tier; anything that is not an integer is 0.
func ParseTier(raw string) Tier {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if err != nil {
		return 0
	}
	return Tier(n)
}
