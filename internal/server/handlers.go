package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/config"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/margin"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/metrics"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/nir"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/internal/reimbursement"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/constants"
	"github.com/Aymnotime/Calculateur--micro-saas-b2b/pkg/validation"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// flexString accepts either a JSON string or a JSON number and keeps the
// text, so malformed numerics reach the calculators' own coercion.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type nirRequest struct {
	Number string `json:"number"`
}

type nirResponse struct {
	nir.Result
	Formatted  string `json:"formatted"`
	FullNumber string `json:"fullNumber,omitempty"`
}

type simulationRequest struct {
	CareType           string     `json:"careType"`
	Sector             flexString `json:"sector"`
	BilledAmount       flexString `json:"billedAmount"`
	SupplementalTier   flexString `json:"supplementalTier"`
	UniversalCoverage  bool       `json:"universalCoverage"`
	PartialAidCoverage bool       `json:"partialAidCoverage"`
	ApplyFlatFee       *bool      `json:"applyFlatFee"`
	ApplyDeductible    *bool      `json:"applyDeductible"`
}

func (s simulationRequest) toSimulation() reimbursement.Simulation {
	return config.SimulationConfig{
		CareType:           s.CareType,
		Sector:             string(s.Sector),
		BilledAmount:       string(s.BilledAmount),
		SupplementalTier:   int(reimbursement.ParseTier(string(s.SupplementalTier))),
		UniversalCoverage:  s.UniversalCoverage,
		PartialAidCoverage: s.PartialAidCoverage,
		ApplyFlatFee:       s.ApplyFlatFee,
		ApplyDeductible:    s.ApplyDeductible,
	}.ToSimulation()
}

type sweepWindow struct {
	From  flexString `json:"from"`
	Step  flexString `json:"step"`
	Count int        `json:"count"`
}

type reimbursementSweepRequest struct {
	simulationRequest
	sweepWindow
}

type reimbursementResponse struct {
	CareLabel   string                `json:"careLabel"`
	SectorLabel string                `json:"sectorLabel"`
	TierLabel   string                `json:"tierLabel"`
	Result      reimbursement.Summary `json:"result"`
	Exact       *reimbursement.Result `json:"exact"`
}

type reimbursementSweepResponse struct {
	Points []reimbursement.Point `json:"points"`
}

type productRequest struct {
	Price            flexString `json:"price"`
	Cost             flexString `json:"cost"`
	Shipping         flexString `json:"shipping"`
	PlatformFeePct   flexString `json:"platformFeePct"`
	PlatformFeeFixed flexString `json:"platformFeeFixed"`
	PaymentFeePct    flexString `json:"paymentFeePct"`
	PaymentFeeFixed  flexString `json:"paymentFeeFixed"`
	AdCost           flexString `json:"adCost"`
}

func (p productRequest) toParams() margin.Params {
	return margin.Params{
		Price:            margin.ParseNumber(string(p.Price)),
		Cost:             margin.ParseNumber(string(p.Cost)),
		Shipping:         margin.ParseNumber(string(p.Shipping)),
		PlatformFeePct:   margin.ParseNumber(string(p.PlatformFeePct)),
		PlatformFeeFixed: margin.ParseNumber(string(p.PlatformFeeFixed)),
		PaymentFeePct:    margin.ParseNumber(string(p.PaymentFeePct)),
		PaymentFeeFixed:  margin.ParseNumber(string(p.PaymentFeeFixed)),
		AdCost:           margin.ParseNumber(string(p.AdCost)),
	}
}

type marginSweepRequest struct {
	productRequest
	sweepWindow
}

type marginResponse struct {
	Margins    margin.Margins `json:"margins"`
	Profitable bool           `json:"profitable"`
}

type marginSweepResponse struct {
	Points []margin.Point `json:"points"`
}

type careOption struct {
	ID                string  `json:"id" yaml:"id"`
	Label             string  `json:"label" yaml:"label"`
	Tariff            float64 `json:"tariff" yaml:"tariff"`
	Rate              float64 `json:"rate" yaml:"rate"`
	Sector2Multiplier float64 `json:"sector2Multiplier" yaml:"sector2Multiplier"`
}

type sectorOption struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

type tierOption struct {
	Tier        int    `json:"tier" yaml:"tier"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description" yaml:"description"`
}

type optionsResponse struct {
	CareTypes []careOption   `json:"careTypes" yaml:"careTypes"`
	Sectors   []sectorOption `json:"sectors" yaml:"sectors"`
	Tiers     []tierOption   `json:"tiers" yaml:"tiers"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleNIRValidate(w http.ResponseWriter, r *http.Request) {
	var req nirRequest
	if !h.decodeJSON(w, r, &req, "server.handleNIRValidate") {
		return
	}

	result := nir.Validate(req.Number)
	resp := nirResponse{Result: result, Formatted: nir.Format(req.Number)}
	if result.Valid && result.Record != nil {
		resp.FullNumber = result.Record.FullNumber()
	}

	outcome := metrics.OutcomeOK
	if !result.Valid {
		outcome = metrics.OutcomeInvalid
	}
	h.metrics.ObserveCalculation(metrics.CalculatorNIR, outcome)

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleNIRFormat(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"formatted": nir.Format(value),
		"digits":    len(nir.Clean(value)),
		"complete":  len(nir.Clean(value)) == nir.Length,
	})
}

func (h *handler) handleReimbursement(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReimbursement"

	var req simulationRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	sim := req.toSimulation()
	result, err := reimbursement.Compute(sim)
	if err != nil {
		h.metrics.ObserveCalculation(metrics.CalculatorReimbursement, metrics.OutcomeRejected)
		if errors.Is(err, reimbursement.ErrAmountOutOfRange) {
			h.respondCodedError(w, http.StatusUnprocessableEntity, err.Error(), "amount_out_of_range", op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.metrics.ObserveCalculation(metrics.CalculatorReimbursement, metrics.OutcomeOK)

	care, _ := reimbursement.LookupCareType(sim.CareType)
	h.logger.Debug("reimbursement computed",
		zap.String("op", op),
		zap.String("careType", string(care.ID)),
		zap.String("billedAmount", sim.BilledAmount.String()),
		zap.String("outOfPocket", result.OutOfPocket.StringFixed(constants.DecimalPlaces)),
	)

	h.writeJSON(w, http.StatusOK, reimbursementResponse{
		CareLabel:   care.Label,
		SectorLabel: sim.Sector.Label(),
		TierLabel:   sim.SupplementalTier.Label(),
		Result:      result.Rounded(),
		Exact:       result,
	})
}

func (h *handler) handleReimbursementSweep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleReimbursementSweep"

	var req reimbursementSweepRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	from := decimal.NewFromFloat(constants.ReimbursementSweepFrom)
	if req.From != "" {
		from = reimbursement.ParseAmount(string(req.From))
	}
	step := decimal.NewFromFloat(constants.ReimbursementSweepStep)
	if req.Step != "" {
		step = reimbursement.ParseAmount(string(req.Step))
	}
	count := req.Count
	if count == 0 {
		count = constants.ReimbursementSweepPoints
	}

	if err := validation.ValidateSweep(step.InexactFloat64(), count, constants.MaxSweepPoints); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	points := reimbursement.Sweep(req.simulationRequest.toSimulation(), from, step, count)
	h.metrics.ObserveCalculation(metrics.CalculatorReimbursement, metrics.OutcomeOK)
	h.writeJSON(w, http.StatusOK, reimbursementSweepResponse{Points: points})
}

func (h *handler) handleReimbursementOptions(w http.ResponseWriter, r *http.Request) {
	resp := optionsResponse{
		Sectors: []sectorOption{
			{ID: string(reimbursement.SectorRegulated), Label: reimbursement.SectorRegulated.Label()},
			{ID: string(reimbursement.SectorFree), Label: reimbursement.SectorFree.Label()},
		},
	}
	for _, c := range reimbursement.CareTypes() {
		resp.CareTypes = append(resp.CareTypes, careOption{
			ID:                string(c.ID),
			Label:             c.Label,
			Tariff:            c.Tariff.InexactFloat64(),
			Rate:              c.Rate.InexactFloat64(),
			Sector2Multiplier: c.Sector2Multiplier.InexactFloat64(),
		})
	}
	for _, t := range reimbursement.Tiers() {
		resp.Tiers = append(resp.Tiers, tierOption{Tier: int(t.Tier), Label: t.Label, Description: t.Description})
	}

	if r.URL.Query().Get("format") == "yaml" {
		out, err := yaml.Marshal(resp)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleReimbursementOptions")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(out); err != nil {
			h.logger.Error("failed to write YAML response", zap.Error(err))
		}
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleMargin(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !h.decodeJSON(w, r, &req, "server.handleMargin") {
		return
	}

	m := margin.Compute(req.toParams())
	h.metrics.ObserveCalculation(metrics.CalculatorMargin, metrics.OutcomeOK)
	h.writeJSON(w, http.StatusOK, marginResponse{Margins: m, Profitable: m.Profitable()})
}

func (h *handler) handleMarginSweep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleMarginSweep"

	var req marginSweepRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	from := constants.MarginSweepFrom
	if req.From != "" {
		from = margin.ParseNumber(string(req.From))
	}
	step := constants.MarginSweepStep
	if req.Step != "" {
		step = margin.ParseNumber(string(req.Step))
	}
	count := req.Count
	if count == 0 {
		count = constants.MarginSweepPoints
	}

	if err := validation.ValidateSweep(step, count, constants.MaxSweepPoints); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	points := margin.Sweep(req.productRequest.toParams(), from, step, count)
	h.metrics.ObserveCalculation(metrics.CalculatorMargin, metrics.OutcomeOK)
	h.writeJSON(w, http.StatusOK, marginSweepResponse{Points: points})
}
