package report

import (
	"errors"
	"testing"
	"time"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/config"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/workbook"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

func TestBuildFromExampleConfig(t *testing.T) {
	conf, err := config.LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	logger, _ := zap.NewDevelopment()
	rep, err := BuildWithFixedTime(logger, *conf, fixedNow)
	if err != nil {
		t.Fatalf("BuildWithFixedTime() error = %v", err)
	}

	if !rep.GeneratedAt.Equal(fixedNow) {
		t.Errorf("GeneratedAt = %v", rep.GeneratedAt)
	}

	if len(rep.NIRs) != 3 {
		t.Fatalf("Expected 3 NIRs, got %d", len(rep.NIRs))
	}
	expectedValid := []bool{true, true, false}
	for i, valid := range expectedValid {
		if rep.NIRs[i].Result.Valid != valid {
			t.Errorf("NIR %q valid = %v, expected %v", rep.NIRs[i].Input, rep.NIRs[i].Result.Valid, valid)
		}
	}

	if len(rep.Simulations) != 3 {
		t.Fatalf("Expected 3 simulations, got %d", len(rep.Simulations))
	}
	selected := rep.SelectedSimulation()
	if selected.Name != "Spécialiste dépassement" {
		t.Errorf("selected simulation = %q", selected.Name)
	}
	if selected.Result == nil || !selected.Result.OutOfPocket.IsZero() {
		t.Errorf("tier 200 on a 50 € specialist should leave nothing to pay, got %+v", selected.Result)
	}
	if css := rep.Simulations[2]; css.Result == nil || !css.Result.OutOfPocket.IsZero() {
		t.Errorf("universal coverage should leave nothing to pay, got %+v", css.Result)
	}

	if len(rep.ReimbursementSweep) != 20 {
		t.Errorf("Expected 20 sweep points, got %d", len(rep.ReimbursementSweep))
	}

	if len(rep.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(rep.Products))
	}
	if p := rep.SelectedProduct(); p.Name != "Produit 1" || !p.Margins.Profitable() {
		t.Errorf("unexpected selected product %+v", p)
	}
	if rep.Products[1].Margins.Profitable() {
		t.Error("second product should lose money")
	}
	if len(rep.MarginSweep) != 21 || rep.MarginSweep[0].Price != 30 {
		t.Errorf("unexpected margin sweep %+v", rep.MarginSweep)
	}
}

func TestBuildDefaults(t *testing.T) {
	rep, err := BuildWithFixedTime(nil, config.Configuration{}, fixedNow)
	if err != nil {
		t.Fatalf("BuildWithFixedTime() error = %v", err)
	}

	if len(rep.NIRs) != 0 {
		t.Errorf("Expected no NIRs, got %d", len(rep.NIRs))
	}
	if len(rep.Simulations) != 1 || rep.Simulations[0].Name != "Consultation type" || !rep.Simulations[0].Selected {
		t.Errorf("unexpected default simulations %+v", rep.Simulations)
	}
	if len(rep.Products) != 1 || rep.Products[0].Name != "Produit 1" {
		t.Errorf("unexpected default products %+v", rep.Products)
	}
}

func TestBuildRecordsRefusedSimulations(t *testing.T) {
	conf := config.Configuration{
		Simulations: []config.SimulationConfig{
			{CareType: "generaliste", BilledAmount: "10001"},
			{CareType: "generaliste", BilledAmount: "-1"},
		},
	}

	rep, err := BuildWithFixedTime(zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("BuildWithFixedTime() error = %v", err)
	}

	tests := []struct {
		name  string
		entry SimulationEntry
	}{
		{"Above maximum", rep.Simulations[0]},
		{"Negative", rep.Simulations[1]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.entry.Result != nil {
				t.Errorf("expected no result, got %+v", tt.entry.Result)
			}
			if tt.entry.Error != reimbursement.ErrAmountOutOfRange.Error() {
				t.Errorf("error = %q", tt.entry.Error)
			}
		})
	}

	if rep.Simulations[1].Name != "Simulation 2" {
		t.Errorf("unnamed entries should be numbered, got %q", rep.Simulations[1].Name)
	}
	for _, p := range rep.ReimbursementSweep[len(rep.ReimbursementSweep)-1:] {
		if p.Refused {
			t.Error("sweep of the selected simulation stays in range")
		}
	}
}

func TestBuildSelectionOutOfRange(t *testing.T) {
	tests := []struct {
		name      string
		selection config.Selection
	}{
		{"Simulation", config.Selection{Simulation: 3}},
		{"Product", config.Selection{Product: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildWithFixedTime(zap.NewNop(), config.Configuration{Selected: tt.selection}, fixedNow)
			if !errors.Is(err, workbook.ErrIndexOutOfRange) {
				t.Errorf("expected ErrIndexOutOfRange, got %v", err)
			}
		})
	}
}

func inactive() *bool {
	b := false
	return &b
}

func TestBuildSkipsInactiveEntries(t *testing.T) {
	tests := []struct {
		name             string
		simulations      []config.SimulationConfig
		selected         int
		expectedNames    []string
		expectedSelected string
	}{
		{
			name: "Inactive entry after the selection",
			simulations: []config.SimulationConfig{
				{Name: "A", CareType: "generaliste"},
				{Name: "B", CareType: "generaliste", Active: inactive()},
				{Name: "C", CareType: "dentiste"},
			},
			selected:         0,
			expectedNames:    []string{"A", "C"},
			expectedSelected: "A",
		},
		{
			name: "Inactive entry before the selection",
			simulations: []config.SimulationConfig{
				{Name: "A", CareType: "generaliste", Active: inactive()},
				{Name: "B", CareType: "generaliste"},
				{Name: "C", CareType: "dentiste"},
			},
			selected:         2,
			expectedNames:    []string{"B", "C"},
			expectedSelected: "C",
		},
		{
			name: "Selected entry inactive",
			simulations: []config.SimulationConfig{
				{Name: "A", CareType: "generaliste"},
				{Name: "B", CareType: "generaliste", Active: inactive()},
				{Name: "C", CareType: "dentiste"},
			},
			selected:         1,
			expectedNames:    []string{"A", "C"},
			expectedSelected: "A",
		},
		{
			name: "Every entry inactive",
			simulations: []config.SimulationConfig{
				{Name: "A", CareType: "generaliste", Active: inactive()},
				{Name: "B", CareType: "generaliste", Active: inactive()},
			},
			selected:         1,
			expectedNames:    []string{"A"},
			expectedSelected: "A",
		},
		{
			name: "Unnamed entries keep their configured number",
			simulations: []config.SimulationConfig{
				{CareType: "generaliste"},
				{CareType: "generaliste", Active: inactive()},
				{CareType: "dentiste"},
			},
			selected:         2,
			expectedNames:    []string{"Simulation 1", "Simulation 3"},
			expectedSelected: "Simulation 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := config.Configuration{
				Simulations: tt.simulations,
				Selected:    config.Selection{Simulation: tt.selected},
			}
			rep, err := BuildWithFixedTime(zap.NewNop(), conf, fixedNow)
			if err != nil {
				t.Fatalf("BuildWithFixedTime() error = %v", err)
			}

			var names []string
			for _, s := range rep.Simulations {
				names = append(names, s.Name)
			}
			if len(names) != len(tt.expectedNames) {
				t.Fatalf("simulations = %v, expected %v", names, tt.expectedNames)
			}
			for i := range names {
				if names[i] != tt.expectedNames[i] {
					t.Errorf("simulations = %v, expected %v", names, tt.expectedNames)
					break
				}
			}
			if got := rep.SelectedSimulation().Name; got != tt.expectedSelected {
				t.Errorf("selected = %q, expected %q", got, tt.expectedSelected)
			}
		})
	}
}

func TestBuildSkipsInactiveProducts(t *testing.T) {
	conf := config.Configuration{
		Products: []config.ProductConfig{
			{Name: "Brouillon", Price: 10, Active: inactive()},
			{Name: "Produit 2", Price: 49, Cost: 20},
		},
		Selected: config.Selection{Product: 1},
	}
	rep, err := BuildWithFixedTime(zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("BuildWithFixedTime() error = %v", err)
	}
	if len(rep.Products) != 1 || rep.Products[0].Name != "Produit 2" || !rep.Products[0].Selected {
		t.Errorf("unexpected products %+v", rep.Products)
	}
	if rep.MarginSweep[0].NetMargin != 10 {
		t.Errorf("sweep should follow Produit 2, got %+v", rep.MarginSweep[0])
	}
}

func TestBuildKeepsUniversalCoverageOverPartialAid(t *testing.T) {
	conf := config.Configuration{
		Simulations: []config.SimulationConfig{
			{Name: "Double", CareType: "generaliste", BilledAmount: "26.50", UniversalCoverage: true, PartialAidCoverage: true},
		},
	}
	rep, err := BuildWithFixedTime(zap.NewNop(), conf, fixedNow)
	if err != nil {
		t.Fatalf("BuildWithFixedTime() error = %v", err)
	}
	sim := rep.Simulations[0]
	if sim.Simulation.PartialAidCoverage || !sim.Simulation.UniversalCoverage {
		t.Errorf("expected only universal coverage, got %+v", sim.Simulation)
	}
	if sim.Result == nil || !sim.Result.OutOfPocket.IsZero() || !sim.Result.Exempt {
		t.Errorf("unexpected result %+v", sim.Result)
	}
}
