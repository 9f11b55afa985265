package main

import (
	"testing"
	"time"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/config"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/report"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/testutil"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const exampleConfig = "../../config.yaml.example"

// TestMainIntegrationBaseline runs the example configuration through the CLI
// exactly as a user would and checks the figures shown on the web pages.
func TestMainIntegrationBaseline(t *testing.T) {
	out, err := execute(t, "run", "--config", exampleConfig, "--log-level", "error", "--output-format", "json")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	var rep struct {
		NIRs []struct {
			Input  string `json:"input"`
			Result struct {
				Valid bool `json:"valid"`
			} `json:"result"`
		} `json:"nirs"`
		Simulations []struct {
			Name     string `json:"name"`
			Selected bool   `json:"selected"`
			Result   *struct {
				StatutoryReimbursement    decimal.Decimal `json:"statutoryReimbursement"`
				SupplementalReimbursement decimal.Decimal `json:"supplementalReimbursement"`
				OutOfPocket               decimal.Decimal `json:"outOfPocket"`
			} `json:"result"`
		} `json:"simulations"`
		Products []struct {
			Name    string `json:"name"`
			Margins struct {
				NetMargin float64 `json:"netMargin"`
			} `json:"margins"`
		} `json:"products"`
		ReimbursementSweep []json.RawMessage `json:"reimbursementSweep"`
		MarginSweep        []json.RawMessage `json:"marginSweep"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("run JSON output invalid: %v", err)
	}

	validateBaselineValues(t, rep.NIRs[0].Result.Valid, rep.NIRs[2].Result.Valid)

	if len(rep.Simulations) != 3 {
		t.Fatalf("Expected 3 active simulations, got %d", len(rep.Simulations))
	}
	consultation := rep.Simulations[0].Result
	if consultation == nil {
		t.Fatal("consultation was refused")
	}
	expectEqual(t, "consultation statutory", consultation.StatutoryReimbursement, "17.55")
	expectEqual(t, "consultation supplemental", consultation.SupplementalReimbursement, "7.95")
	expectEqual(t, "consultation out of pocket", consultation.OutOfPocket, "0")

	if !rep.Simulations[1].Selected {
		t.Errorf("Expected the second simulation to be selected")
	}
	for _, s := range rep.Simulations[1:] {
		if s.Result == nil {
			t.Fatalf("simulation %s was refused", s.Name)
		}
		expectEqual(t, s.Name+" out of pocket", s.Result.OutOfPocket, "0")
	}

	if len(rep.Products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(rep.Products))
	}
	if rep.Products[0].Margins.NetMargin < 11.48 || rep.Products[0].Margins.NetMargin > 11.50 {
		t.Errorf("Produit 1 net margin = %v, expected 11.49", rep.Products[0].Margins.NetMargin)
	}
	if rep.Products[1].Margins.NetMargin >= 0 {
		t.Errorf("%s should lose money, got %v", rep.Products[1].Name, rep.Products[1].Margins.NetMargin)
	}

	if len(rep.ReimbursementSweep) != 20 || len(rep.MarginSweep) != 21 {
		t.Errorf("unexpected sweep sizes %d and %d", len(rep.ReimbursementSweep), len(rep.MarginSweep))
	}
}

func validateBaselineValues(t *testing.T, firstValid, zerosValid bool) {
	t.Helper()
	if !firstValid {
		t.Errorf("Expected the first example NIR to be valid")
	}
	if zerosValid {
		t.Errorf("Expected the all-zero NIR to be invalid")
	}
}

func expectEqual(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, expected %s", label, got, want)
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	now := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

	var first []byte
	for run := 0; run < 3; run++ {
		conf, err := config.LoadConfiguration(exampleConfig)
		if err != nil {
			t.Fatalf("LoadConfiguration failed on run %d: %v", run, err)
		}
		rep, err := report.BuildWithFixedTime(zap.NewNop(), *conf, now)
		if err != nil {
			t.Fatalf("BuildWithFixedTime failed on run %d: %v", run, err)
		}
		data, err := json.Marshal(rep)
		if err != nil {
			t.Fatalf("Marshal failed on run %d: %v", run, err)
		}

		if run == 0 {
			first = data
			continue
		}
		if string(data) != string(first) {
			t.Errorf("Run %d produced a different report", run)
		}
	}
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	if !testing.Verbose() {
		t.Skip("Skipping performance test. Run with -v to enable.")
	}

	start := time.Now()
	conf, err := config.LoadConfiguration(exampleConfig)
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	for i := 0; i < 1000; i++ {
		if _, err := report.Build(zap.NewNop(), *conf); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
	}
	buildTime := time.Since(start)

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  1000 reports: %v", buildTime)

	if buildTime > 10*time.Second {
		t.Errorf("Building 1000 reports took %v, exceeds 10 second threshold", buildTime)
	}
}

// TestConfigurationVariations tests different configuration variations
func TestConfigurationVariations(t *testing.T) {
	variations := []struct {
		name              string
		modifyConfig      func(*config.Configuration)
		expectError       bool
		expectSimulations int
		expectWarnings    int
		check             func(*testing.T, *report.Report)
	}{
		{
			name:              "Baseline config",
			modifyConfig:      func(c *config.Configuration) {},
			expectSimulations: 3,
		},
		{
			name: "No simulations falls back to the default one",
			modifyConfig: func(c *config.Configuration) {
				c.Simulations = nil
				c.Selected.Simulation = 0
			},
			expectSimulations: 1,
		},
		{
			name: "Draft simulation reactivated",
			modifyConfig: func(c *config.Configuration) {
				c.Simulations[3].Active = nil
			},
			expectSimulations: 4,
			check: func(t *testing.T, rep *report.Report) {
				if testutil.FindSimulation(rep, "Hospitalisation (brouillon)") == nil {
					t.Errorf("reactivated draft missing from %+v", rep.Simulations)
				}
			},
		},
		{
			name: "Selection out of range",
			modifyConfig: func(c *config.Configuration) {
				c.Selected.Product = 5
			},
			expectError:    true,
			expectWarnings: 1,
		},
		{
			name: "Both exemptions",
			modifyConfig: func(c *config.Configuration) {
				c.Simulations[0].PartialAidCoverage = true
				c.Simulations[0].UniversalCoverage = true
			},
			expectSimulations: 3,
			expectWarnings:    1,
			check: func(t *testing.T, rep *report.Report) {
				entry := testutil.FindSimulation(rep, "Consultation type")
				if entry == nil || entry.Result == nil {
					t.Fatalf("Consultation type missing from %+v", rep.Simulations)
				}
				if !entry.Result.OutOfPocket.IsZero() || !entry.Result.SupplementalReimbursement.IsZero() {
					t.Errorf("universal coverage should take precedence, got %+v", entry.Result)
				}
			},
		},
	}

	for _, variation := range variations {
		t.Run(variation.name, func(t *testing.T) {
			conf, err := config.LoadConfiguration(exampleConfig)
			if err != nil {
				t.Fatalf("LoadConfiguration failed: %v", err)
			}

			variation.modifyConfig(conf)

			if warnings := conf.ValidateConfiguration(); len(warnings) != variation.expectWarnings {
				t.Errorf("Expected %d warnings, got %v", variation.expectWarnings, warnings)
			}

			rep, err := report.Build(zap.NewNop(), *conf)
			if variation.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			if len(rep.Simulations) != variation.expectSimulations {
				t.Errorf("Expected %d simulations, got %d", variation.expectSimulations, len(rep.Simulations))
			}
			if variation.check != nil {
				variation.check(t, rep)
			}
		})
	}
}
