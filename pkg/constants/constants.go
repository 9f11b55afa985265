// Package constants provides shared constants for the calculateur application.
package constants

// Currency and percentage constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// DecimalPlaces is the number of decimals shown for currency amounts
	DecimalPlaces = 2

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Reimbursement constants
const (
	// MaxBilledAmount is the largest billed amount accepted by the simulator
	MaxBilledAmount = 10000

	// FlatFee is the participation forfaitaire withheld per consultation
	FlatFee = "1.00"

	// MedicationDeductible is the franchise médicale added per medication box
	MedicationDeductible = "0.50"

	// PartialAidShare is the share of the remainder still paid under ACS
	PartialAidShare = "0.5"
)

// Sweep defaults, matching the charts of the web pages.
const (
	// ReimbursementSweepFrom is the first billed amount of the chart
	ReimbursementSweepFrom = 10.0

	// ReimbursementSweepStep is the billed amount increment of the chart
	ReimbursementSweepStep = 5.0

	// ReimbursementSweepPoints is the number of chart points
	ReimbursementSweepPoints = 20

	// MarginSweepFrom is the first selling price of the chart
	MarginSweepFrom = 30.0

	// MarginSweepStep is the selling price increment of the chart
	MarginSweepStep = 2.0

	// MarginSweepPoints is the number of chart points
	MarginSweepPoints = 21

	// MaxSweepPoints bounds the number of points a single sweep may request
	MaxSweepPoints = 200
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// AddressEnvVar overrides the server listen address
	AddressEnvVar = "CALCULATEUR_ADDRESS"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitPerSecond is the token refill rate per client
	DefaultRateLimitPerSecond = 20.0

	// DefaultRateLimitCapacity is the token bucket capacity per client
	DefaultRateLimitCapacity int64 = 200
)
