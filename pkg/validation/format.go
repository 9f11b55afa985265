// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatJSON {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatJSON, format)
	}
	return nil
}

// ValidateSweep checks the parameters of a chart sweep.
func ValidateSweep(step float64, points int, maxPoints int) error {
	if points <= 0 {
		return fmt.Errorf("sweep needs at least one point, got %d", points)
	}
	if points > maxPoints {
		return fmt.Errorf("sweep is limited to %d points, got %d", maxPoints, points)
	}
	if step < 0 {
		return fmt.Errorf("sweep step must not be negative, got %v", step)
	}
	return nil
}
