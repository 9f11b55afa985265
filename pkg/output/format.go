// Package output provides utilities for formatting and displaying calculator results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/margin"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/nir"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/report"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/format"
	json "github.com/goccy/go-json"
)

// Render writes rep in the requested format (pretty or json).
func Render(w io.Writer, outputFormat string, rep *report.Report) error {
	switch outputFormat {
	case constants.OutputFormatJSON:
		return JSON(w, rep)
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, rep)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, rep *report.Report) error {
	pw := &prettyWriter{w: w}

	if len(rep.NIRs) > 0 {
		pw.printf("--- Numéros de sécurité sociale ---\n")
		for _, entry := range rep.NIRs {
			writeNIR(pw, entry.Input, entry.Result)
		}
		pw.printf("\n")
	}

	pw.printf("--- Simulations de remboursement ---\n")
	for _, entry := range rep.Simulations {
		marker := " "
		if entry.Selected {
			marker = "*"
		}
		pw.printf("%s %s\n", marker, entry.Name)
		if entry.Result == nil {
			pw.printf("    refusée: %s\n", entry.Error)
			continue
		}
		writeReimbursement(pw, entry.Simulation, entry.Result)
	}
	if len(rep.ReimbursementSweep) > 0 {
		pw.printf("\n")
		writeReimbursementSweep(pw, rep.ReimbursementSweep)
	}

	pw.printf("\n--- Marges produits ---\n")
	for _, entry := range rep.Products {
		marker := " "
		if entry.Selected {
			marker = "*"
		}
		pw.printf("%s %s\n", marker, entry.Name)
		writeMargins(pw, entry.Params, entry.Margins)
	}
	if len(rep.MarginSweep) > 0 {
		pw.printf("\n")
		writeMarginSweep(pw, rep.MarginSweep)
	}

	return pw.err
}

// PrettyNIR writes one NIR validation result.
func PrettyNIR(w io.Writer, input string, result nir.Result) error {
	pw := &prettyWriter{w: w}
	writeNIR(pw, input, result)
	return pw.err
}

// PrettyReimbursement writes one reimbursement result.
func PrettyReimbursement(w io.Writer, sim reimbursement.Simulation, result *reimbursement.Result) error {
	pw := &prettyWriter{w: w}
	writeReimbursement(pw, sim, result)
	return pw.err
}

// PrettyReimbursementSweep writes a reimbursement sweep as a table.
func PrettyReimbursementSweep(w io.Writer, points []reimbursement.Point) error {
	pw := &prettyWriter{w: w}
	writeReimbursementSweep(pw, points)
	return pw.err
}

// PrettyMargins writes one product's margins.
func PrettyMargins(w io.Writer, params margin.Params, m margin.Margins) error {
	pw := &prettyWriter{w: w}
	writeMargins(pw, params, m)
	return pw.err
}

// PrettyMarginSweep writes a price sweep as a table.
func PrettyMarginSweep(w io.Writer, points []margin.Point) error {
	pw := &prettyWriter{w: w}
	writeMarginSweep(pw, points)
	return pw.err
}

// prettyWriter remembers the first write error so the renderers can stay linear.
type prettyWriter struct {
	w   io.Writer
	err error
}

func (pw *prettyWriter) printf(format string, args ...interface{}) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}

func writeNIR(pw *prettyWriter, input string, result nir.Result) {
	status := "✗"
	if result.Valid {
		status = "✓"
	}
	pw.printf("%s %s  %s\n", status, nir.Format(input), result.Message)

	if rec := result.Record; rec != nil {
		pw.printf("    Sexe        | %s\n", rec.Gender)
		pw.printf("    Naissance   | %s %d\n", rec.MonthName(), rec.FullBirthYear)
		pw.printf("    Département | %s (%s)\n", rec.DepartmentName(), rec.Department)
		pw.printf("    Commune     | %s\n", rec.Commune)
		pw.printf("    Ordre       | %s\n", rec.Sequence)
		pw.printf("    Clé         | %02d (%s)\n", rec.ControlKey, rec.FullNumber())
	}
	for _, d := range result.Details {
		prefix := "!"
		if d.Kind.Notice() {
			prefix = "i"
		}
		pw.printf("    %s %s\n", prefix, d.Text)
	}
}

func writeReimbursement(pw *prettyWriter, sim reimbursement.Simulation, result *reimbursement.Result) {
	care, _ := reimbursement.LookupCareType(sim.CareType)
	r := result.Rounded()

	pw.printf("    %s, %s, %s\n", care.Label, sim.Sector.Label(), sim.SupplementalTier.Label())
	pw.printf("    Montant facturé         | %s\n", format.Euro(sim.BilledAmount.InexactFloat64()))
	pw.printf("    Base de remboursement   | %s\n", format.Euro(r.StatutoryBase))
	pw.printf("    Dépassement             | %s\n", format.Euro(r.Overage))
	pw.printf("    Remboursement Sécu      | %s (%s)\n", format.Euro(r.StatutoryReimbursement), format.Percent(r.StatutoryReimbursementRate))
	pw.printf("    Remboursement mutuelle  | %s\n", format.Euro(r.SupplementalReimbursement))
	pw.printf("    Ticket modérateur       | %s\n", format.Euro(r.Copay))
	if r.FlatFee > 0 {
		pw.printf("    Participation forfait.  | %s\n", format.Euro(r.FlatFee))
	}
	if r.Deductible > 0 {
		pw.printf("    Franchise médicale      | %s\n", format.Euro(r.Deductible))
	}
	if r.Exempt {
		pw.printf("    Exonération             | oui\n")
	}
	pw.printf("    Reste à charge          | %s\n", format.Euro(r.OutOfPocket))
	pw.printf("    Taux de remboursement   | %s\n", format.Percent(r.TotalReimbursementRate))
}

func writeReimbursementSweep(pw *prettyWriter, points []reimbursement.Point) {
	pw.printf("Montant      | Sécu         | Mutuelle     | Reste à charge\n")
	pw.printf("%s\n", strings.Repeat("_", 58))
	for _, p := range points {
		if p.Refused {
			pw.printf("%-12s | refusé\n", format.Euro(p.BilledAmount.InexactFloat64()))
			continue
		}
		pw.printf("%-12s | %-12s | %-12s | %s\n",
			format.Euro(p.BilledAmount.InexactFloat64()),
			format.Euro(p.StatutoryReimbursement.InexactFloat64()),
			format.Euro(p.SupplementalReimbursement.InexactFloat64()),
			format.Euro(p.OutOfPocket.InexactFloat64()),
		)
	}
}

func writeMargins(pw *prettyWriter, params margin.Params, m margin.Margins) {
	pw.printf("    Prix de vente           | %s\n", format.Euro(params.Price))
	pw.printf("    Coût de revient (COGS)  | %s\n", format.Euro(m.COGS))
	pw.printf("    Frais plateforme        | %s\n", format.Euro(m.PlatformFee))
	pw.printf("    Frais de paiement       | %s\n", format.Euro(m.PaymentFee))
	pw.printf("    Coût publicitaire (CPA) | %s\n", format.Euro(params.AdCost))
	pw.printf("    Coût total              | %s\n", format.Euro(m.TotalCost))
	pw.printf("    Marge nette             | %s (%s)\n", format.Euro(m.NetMargin), format.Percent(m.NetMarginPct))
	pw.printf("    ROAS cible              | %s\n", format.Ratio(m.TargetROAS))
	pw.printf("    ROAS actuel             | %s\n", format.Ratio(m.ROAS))
	pw.printf("    Seuil de rentabilité    | %s\n", format.Euro(m.BreakEvenPrice))
}

func writeMarginSweep(pw *prettyWriter, points []margin.Point) {
	pw.printf("Prix         | Marge nette  | Marge %%\n")
	pw.printf("%s\n", strings.Repeat("_", 40))
	for _, p := range points {
		pw.printf("%-12s | %-12s | %s\n", format.Euro(p.Price), format.Euro(p.NetMargin), format.Percent(p.NetMarginPct))
	}
}
