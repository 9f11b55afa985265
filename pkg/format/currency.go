// Package format renders amounts the way the French pages display them.
package format

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.French)

// Euro returns a currency string with French separators and a trailing euro
// sign (e.g., "-1 234,56 €").
func Euro(amount float64) string {
	formatted := NumericEuro(math.Abs(amount))
	if amount < 0 && formatted != "0,00" {
		return "-" + formatted + " €"
	}
	return formatted + " €"
}

// NumericEuro returns the amount with French separators and no currency sign.
func NumericEuro(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Percent returns a one-decimal percentage (e.g., "66,2 %").
func Percent(value float64) string {
	return printer.Sprintf("%.1f %%", value)
}

// Ratio returns a two-decimal ratio such as a ROAS (e.g., "2,04").
func Ratio(value float64) string {
	return printer.Sprintf("%.2f", value)
}
