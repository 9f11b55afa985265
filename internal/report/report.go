// Package report evaluates every NIR, simulation and product of a
// configuration and gathers the results for rendering.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/config"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/margin"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/nir"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/workbook"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report holds the evaluated configuration.
type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	NIRs        []NIREntry        `json:"nirs,omitempty"`
	Simulations []SimulationEntry `json:"simulations"`
	Products    []ProductEntry    `json:"products"`
	// Sweeps are computed for the selected simulation and product only.
	ReimbursementSweep []reimbursement.Point `json:"reimbursementSweep,omitempty"`
	MarginSweep        []margin.Point        `json:"marginSweep,omitempty"`
}

// NIREntry is one validated social security number.
type NIREntry struct {
	Input  string     `json:"input"`
	Result nir.Result `json:"result"`
}

// SimulationEntry is one evaluated reimbursement simulation. Result is nil
// and Error set when the calculator refused the inputs.
type SimulationEntry struct {
	Name       string                   `json:"name"`
	Selected   bool                     `json:"selected"`
	Simulation reimbursement.Simulation `json:"simulation"`
	Result     *reimbursement.Result    `json:"result,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// ProductEntry is one evaluated product.
type ProductEntry struct {
	Name     string         `json:"name"`
	Selected bool           `json:"selected"`
	Params   margin.Params  `json:"params"`
	Margins  margin.Margins `json:"margins"`
}

// Build evaluates conf.
func Build(logger *zap.Logger, conf config.Configuration) (*Report, error) {
	return BuildWithFixedTime(logger, conf, time.Now())
}

// BuildWithFixedTime evaluates conf with an injectable clock for the NIR
// birth year rules.
func BuildWithFixedTime(logger *zap.Logger, conf config.Configuration, now time.Time) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &Report{GeneratedAt: now}

	for _, raw := range conf.NIRs {
		result := nir.ValidateWithFixedTime(raw, now)
		logger.Debug("validated NIR",
			zap.String("op", "report.Build"),
			zap.Bool("valid", result.Valid),
			zap.Strings("details", result.Messages()),
		)
		report.NIRs = append(report.NIRs, NIREntry{Input: raw, Result: result})
	}

	simulations, err := simulationWorkbook(logger, conf)
	if err != nil {
		return nil, err
	}
	for i, entry := range simulations.Entries() {
		se := SimulationEntry{
			Name:       entry.Name,
			Selected:   i == simulations.SelectedIndex(),
			Simulation: entry.Value,
		}
		result, err := reimbursement.Compute(entry.Value)
		if err != nil {
			logger.Warn(fmt.Sprintf("simulation %s refused", entry.Name),
				zap.String("op", "report.Build"),
				zap.String("billedAmount", entry.Value.BilledAmount.String()),
				zap.Error(err),
			)
			se.Error = err.Error()
		} else {
			logger.Debug(fmt.Sprintf("simulation %s computed", entry.Name),
				zap.String("op", "report.Build"),
				zap.String("outOfPocket", result.OutOfPocket.StringFixed(constants.DecimalPlaces)),
			)
			se.Result = result
		}
		report.Simulations = append(report.Simulations, se)
	}
	report.ReimbursementSweep = reimbursement.Sweep(
		simulations.Selected().Value,
		decimal.NewFromFloat(constants.ReimbursementSweepFrom),
		decimal.NewFromFloat(constants.ReimbursementSweepStep),
		constants.ReimbursementSweepPoints,
	)

	products, err := productWorkbook(logger, conf)
	if err != nil {
		return nil, err
	}
	for i, entry := range products.Entries() {
		m := margin.Compute(entry.Value)
		logger.Debug(fmt.Sprintf("product %s computed", entry.Name),
			zap.String("op", "report.Build"),
			zap.Float64("netMargin", m.NetMargin),
		)
		report.Products = append(report.Products, ProductEntry{
			Name:     entry.Name,
			Selected: i == products.SelectedIndex(),
			Params:   entry.Value,
			Margins:  m,
		})
	}
	report.MarginSweep = margin.Sweep(
		products.Selected().Value,
		constants.MarginSweepFrom,
		constants.MarginSweepStep,
		constants.MarginSweepPoints,
	)

	return report, nil
}

// SelectedSimulation returns the selected simulation entry.
func (r *Report) SelectedSimulation() SimulationEntry {
	for _, s := range r.Simulations {
		if s.Selected {
			return s
		}
	}
	return SimulationEntry{}
}

// SelectedProduct returns the selected product entry.
func (r *Report) SelectedProduct() ProductEntry {
	for _, p := range r.Products {
		if p.Selected {
			return p
		}
	}
	return ProductEntry{}
}

// simulationWorkbook lays the configured simulations out as tabs, selects
// the configured one and then drops the inactive tabs.
func simulationWorkbook(logger *zap.Logger, conf config.Configuration) (*workbook.Workbook[reimbursement.Simulation], error) {
	sims := conf.Simulations
	if len(sims) == 0 {
		sims = []config.SimulationConfig{config.DefaultSimulation()}
	}

	wb := workbook.New(config.EntryName(sims[0].Name, "Simulation", 0), sims[0].ToSimulation())
	for _, s := range sims[1:] {
		if s.Name == "" {
			wb.AddNumbered("Simulation", s.ToSimulation())
			continue
		}
		wb.Add(s.Name, s.ToSimulation())
	}
	if err := wb.Select(conf.Selected.Simulation); err != nil {
		return nil, fmt.Errorf("select simulation: %w", err)
	}

	for i, s := range sims {
		if !s.UniversalCoverage || !s.PartialAidCoverage {
			continue
		}
		err := wb.Update(i, func(sim reimbursement.Simulation) reimbursement.Simulation {
			sim.PartialAidCoverage = false
			return sim
		})
		if err != nil {
			return nil, fmt.Errorf("update simulation: %w", err)
		}
		logger.Info("both exemptions set, keeping universal coverage",
			zap.String("op", "report.simulationWorkbook"),
			zap.String("simulation", wb.Entries()[i].Name),
		)
	}

	if err := dropInactive(logger, wb, sims, config.SimulationConfig.IsActive); err != nil {
		return nil, fmt.Errorf("drop inactive simulations: %w", err)
	}
	return wb, nil
}

func productWorkbook(logger *zap.Logger, conf config.Configuration) (*workbook.Workbook[margin.Params], error) {
	products := conf.Products
	if len(products) == 0 {
		products = []config.ProductConfig{config.DefaultProduct()}
	}

	wb := workbook.New(config.EntryName(products[0].Name, "Produit", 0), products[0].ToParams())
	for _, p := range products[1:] {
		if p.Name == "" {
			wb.AddNumbered("Produit", p.ToParams())
			continue
		}
		wb.Add(p.Name, p.ToParams())
	}
	if err := wb.Select(conf.Selected.Product); err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}

	if err := dropInactive(logger, wb, products, config.ProductConfig.IsActive); err != nil {
		return nil, fmt.Errorf("drop inactive products: %w", err)
	}
	return wb, nil
}

// dropInactive removes the tabs whose config entry is inactive, last first so
// indexes stay aligned with entries. A workbook keeps its last tab even when
// every entry is inactive.
func dropInactive[T, C any](logger *zap.Logger, wb *workbook.Workbook[T], entries []C, active func(C) bool) error {
	for i := len(entries) - 1; i >= 0; i-- {
		if active(entries[i]) {
			continue
		}
		name := wb.Entries()[i].Name
		err := wb.Remove(i)
		if errors.Is(err, workbook.ErrLastEntry) {
			logger.Warn(fmt.Sprintf("%s is inactive but is the only entry left, keeping it", name),
				zap.String("op", "report.dropInactive"),
			)
			continue
		}
		if err != nil {
			return err
		}
		logger.Debug(fmt.Sprintf("%s is inactive, skipped", name),
			zap.String("op", "report.dropInactive"),
		)
	}
	return nil
}
