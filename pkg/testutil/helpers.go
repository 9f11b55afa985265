// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/report"
)

// FindSimulation finds a simulation by name in the report.
// Returns a pointer to the entry if found, nil otherwise.
func FindSimulation(rep *report.Report, name string) *report.SimulationEntry {
	if rep == nil {
		return nil
	}
	for i := range rep.Simulations {
		if rep.Simulations[i].Name == name {
			return &rep.Simulations[i]
		}
	}
	return nil
}

// FindProduct finds a product by name in the report.
func FindProduct(rep *report.Report, name string) *report.ProductEntry {
	if rep == nil {
		return nil
	}
	for i := range rep.Products {
		if rep.Products[i].Name == name {
			return &rep.Products[i]
		}
	}
	return nil
}
