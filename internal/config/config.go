// Package config defines the data structures related to configuration and
// includes functions for loading, validating and converting the config.
package config

import (
	"fmt"
	"strings"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/margin"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables overriding config keys, e.g.
// CALCULATEUR_LOGGING_LEVEL.
const EnvPrefix = "CALCULATEUR"

// Configuration holds all configuration for the calculators.
type Configuration struct {
	NIRs        []string           `yaml:"nirs,omitempty"`
	Simulations []SimulationConfig `yaml:"simulations,omitempty"`
	Products    []ProductConfig    `yaml:"products,omitempty"`
	Selected    Selection          `yaml:"selected,omitempty"`
	Logging     LoggingConfig      `yaml:"logging,omitempty"`
	Output      OutputConfig       `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, json
}

// Selection holds the index of the active simulation and product tabs.
type Selection struct {
	Simulation int `yaml:"simulation,omitempty"`
	Product    int `yaml:"product,omitempty"`
}

// SimulationConfig is a reimbursement simulation as written in the config.
// The billed amount is kept as text so cents stay exact.
type SimulationConfig struct {
	Name               string
	CareType           string
	Sector             string
	BilledAmount       string
	SupplementalTier   int
	UniversalCoverage  bool
	PartialAidCoverage bool
	// Both fees default to applied when omitted.
	ApplyFlatFee    *bool
	ApplyDeductible *bool
	// Active defaults to true; inactive entries are left out of reports.
	Active *bool
}

// ProductConfig is a margin calculator product as written in the config.
type ProductConfig struct {
	Name             string
	Price            float64
	Cost             float64
	Shipping         float64
	PlatformFeePct   float64
	PlatformFeeFixed float64
	PaymentFeePct    float64
	PaymentFeeFixed  float64
	AdCost           float64
	Active           *bool
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	return &configuration, nil
}

// ToSimulation converts the config entry into calculator input. Malformed
// amounts count as 0 and unknown care types are kept for the calculator's
// own fallback.
func (s SimulationConfig) ToSimulation() reimbursement.Simulation {
	sector := reimbursement.SectorRegulated
	if reimbursement.Sector(s.Sector) == reimbursement.SectorFree {
		sector = reimbursement.SectorFree
	}
	return reimbursement.Simulation{
		CareType:           reimbursement.CareType(s.CareType),
		Sector:             sector,
		BilledAmount:       reimbursement.ParseAmount(s.BilledAmount),
		SupplementalTier:   reimbursement.Tier(s.SupplementalTier),
		UniversalCoverage:  s.UniversalCoverage,
		PartialAidCoverage: s.PartialAidCoverage,
		ApplyFlatFee:       boolOrTrue(s.ApplyFlatFee),
		ApplyDeductible:    boolOrTrue(s.ApplyDeductible),
	}
}

// IsActive reports whether the simulation belongs in reports.
func (s SimulationConfig) IsActive() bool {
	return boolOrTrue(s.Active)
}

// ToParams converts the config entry into calculator input.
func (p ProductConfig) ToParams() margin.Params {
	return margin.Params{
		Price:            p.Price,
		Cost:             p.Cost,
		Shipping:         p.Shipping,
		PlatformFeePct:   p.PlatformFeePct,
		PlatformFeeFixed: p.PlatformFeeFixed,
		PaymentFeePct:    p.PaymentFeePct,
		PaymentFeeFixed:  p.PaymentFeeFixed,
		AdCost:           p.AdCost,
	}
}

// IsActive reports whether the product belongs in reports.
func (p ProductConfig) IsActive() bool {
	return boolOrTrue(p.Active)
}

// EntryName returns name, or "<prefix> N" for the unnamed entry at index i.
func EntryName(name, prefix string, i int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%s %d", prefix, i+1)
}

// DefaultSimulation is the simulation shown when nothing is configured.
func DefaultSimulation() SimulationConfig {
	return SimulationConfig{
		Name:             "Consultation type",
		CareType:         string(reimbursement.CareGeneralPractitioner),
		Sector:           string(reimbursement.SectorRegulated),
		BilledAmount:     "26.50",
		SupplementalTier: 150,
	}
}

// DefaultProduct is the product shown when nothing is configured.
func DefaultProduct() ProductConfig {
	p := margin.DefaultParams()
	return ProductConfig{
		Name:             "Produit 1",
		Price:            p.Price,
		Cost:             p.Cost,
		Shipping:         p.Shipping,
		PlatformFeePct:   p.PlatformFeePct,
		PlatformFeeFixed: p.PlatformFeeFixed,
		PaymentFeePct:    p.PaymentFeePct,
		PaymentFeeFixed:  p.PaymentFeeFixed,
		AdCost:           p.AdCost,
	}
}

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
