package config

import (
	"fmt"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/nir"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Nothing here stops a run; the calculators tolerate every
// warned case.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	for i, raw := range c.NIRs {
		if nir.Clean(raw) == "" {
			warnings = append(warnings, fmt.Sprintf("NIR #%d has no digits", i+1))
		}
	}

	for i, sim := range c.Simulations {
		name := EntryName(sim.Name, "Simulation", i)

		if _, ok := reimbursement.LookupCareType(reimbursement.CareType(sim.CareType)); !ok && sim.CareType != "" {
			warnings = append(warnings, fmt.Sprintf("%s: unknown care type %q, using %s",
				name, sim.CareType, reimbursement.CareGeneralPractitioner))
		}
		if sim.Sector != "" && sim.Sector != string(reimbursement.SectorRegulated) && sim.Sector != string(reimbursement.SectorFree) {
			warnings = append(warnings, fmt.Sprintf("%s: unknown sector %q, using sector 1", name, sim.Sector))
		}
		if !reimbursement.Tier(sim.SupplementalTier).Known() {
			warnings = append(warnings, fmt.Sprintf("%s: supplemental tier %d is not one of the offered levels", name, sim.SupplementalTier))
		}
		if sim.UniversalCoverage && sim.PartialAidCoverage {
			warnings = append(warnings, fmt.Sprintf("%s: both exemptions set, universal coverage takes precedence", name))
		}

		amount := reimbursement.ParseAmount(sim.BilledAmount)
		if amount.IsNegative() || amount.GreaterThan(reimbursement.AmountFromFloat(constants.MaxBilledAmount)) {
			warnings = append(warnings, fmt.Sprintf("%s: billed amount %s is outside [0, %d] and will be refused",
				name, sim.BilledAmount, constants.MaxBilledAmount))
		}
	}

	for i, p := range c.Products {
		name := EntryName(p.Name, "Produit", i)
		if p.Price < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: negative price %.2f", name, p.Price))
		}
		if p.Cost < 0 || p.Shipping < 0 || p.AdCost < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: negative cost", name))
		}
	}

	if len(c.Simulations) > 0 && !anyActive(c.Simulations, SimulationConfig.IsActive) {
		warnings = append(warnings, fmt.Sprintf("every simulation is inactive, keeping %s",
			EntryName(c.Simulations[0].Name, "Simulation", 0)))
	}
	if len(c.Products) > 0 && !anyActive(c.Products, ProductConfig.IsActive) {
		warnings = append(warnings, fmt.Sprintf("every product is inactive, keeping %s",
			EntryName(c.Products[0].Name, "Produit", 0)))
	}

	if len(c.Simulations) > 0 && (c.Selected.Simulation < 0 || c.Selected.Simulation >= len(c.Simulations)) {
		warnings = append(warnings, fmt.Sprintf("selected simulation %d is out of range", c.Selected.Simulation))
	}
	if len(c.Products) > 0 && (c.Selected.Product < 0 || c.Selected.Product >= len(c.Products)) {
		warnings = append(warnings, fmt.Sprintf("selected product %d is out of range", c.Selected.Product))
	}

	return warnings
}

func anyActive[T any](entries []T, active func(T) bool) bool {
	for _, e := range entries {
		if active(e) {
			return true
		}
	}
	return false
}
