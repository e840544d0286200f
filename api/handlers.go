/*
handlers.go - HTTP API handlers for the fund engine

PURPOSE:
  Exposes the unitisation engine and the NAV aggregator via REST. Handles
  HTTP request/response and JSON parsing, delegates all fund arithmetic to
  the fund and nav packages, and archives completed runs.

ENDPOINTS:
  Runs:
    POST   /api/runs               Process a batch and archive the run
    GET    /api/runs               List archived runs (newest first)
    GET    /api/runs/{id}          Full run: totals, ledger, summary
    GET    /api/runs/{id}/ledger   Audit ledger only
    GET    /api/runs/{id}/summary  Investor balances only

  Valuation:
    POST   /api/nav                Ad-hoc NAV calculation (not archived)

  Health:
    GET    /api/health

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Data-quality failures (schema, kind, quote, insufficient units)
  - 404: Unknown run ID
  - 409: Duplicate run ID
  - 500: Internal errors

  A 400 carries the engine's own message, which names the offending date,
  investor or value so the operator can correct the source data and
  re-submit. A failed POST /api/runs archives nothing.

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
	"github.com/warp/fund-engine/pkg/id"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store fund.RunStore
}

// NewHandler creates a new handler with the given run store.
func NewHandler(store fund.RunStore) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// CreateRun processes a transaction batch and archives the result.
// POST /api/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	opening, transactions, quotes, err := parseRunRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid run request", err)
		return
	}

	result, err := fund.Process(opening, transactions, quotes)
	if err != nil {
		if fund.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Unitisation failed", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Unitisation failed", err)
		}
		return
	}

	run := fund.Run{
		ID:        id.New(),
		CreatedAt: time.Now().UTC(),
		Opening:   opening,
		Result:    *result,
	}
	if err := h.Store.Save(r.Context(), run); err != nil {
		if errors.Is(err, fund.ErrDuplicateRun) {
			writeError(w, http.StatusConflict, "Run already archived", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to archive run", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toRunDetailDTO(&run))
}

// ListRuns returns metadata for all archived runs.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	metas, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(metas))
	for i, m := range metas {
		dtos[i] = toRunDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns a full archived run.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toRunDetailDTO(run))
}

// GetRunLedger returns the audit ledger of a run.
// GET /api/runs/{id}/ledger
func (h *Handler) GetRunLedger(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toLedgerDTOs(run.Result.Ledger))
}

// GetRunSummary returns the final investor balances of a run.
// GET /api/runs/{id}/summary
func (h *Handler) GetRunSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTOs(run.Result.Summary))
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*fund.Run, bool) {
	runID := chi.URLParam(r, "id")
	run, err := h.Store.Run(r.Context(), runID)
	if err != nil {
		if fund.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Run not found", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to load run", err)
		}
		return nil, false
	}
	return run, true
}

// =============================================================================
// VALUATION HANDLER
// =============================================================================

// CalculateNAV runs an ad-hoc valuation. Nothing is archived; the caller
// feeds the resulting NAV-per-unit into a later run's quote table.
// POST /api/nav
func (h *Handler) CalculateNAV(w http.ResponseWriter, r *http.Request) {
	var req ValuationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	positions, liabilities, units, err := parseValuationRequest(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid valuation request", err)
		return
	}

	baseCCY := req.BaseCurrency
	if baseCCY == "" {
		baseCCY = "USD"
	}

	valuation, err := nav.Calculate(positions, liabilities, units, baseCCY)
	if err != nil {
		if fund.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Valuation failed", err)
		} else {
			writeError(w, http.StatusInternalServerError, "Valuation failed", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toValuationDTO(valuation))
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// REQUEST PARSING
// =============================================================================

func parseRunRequest(req *CreateRunRequest) (fund.Opening, []fund.Transaction, fund.NAVTable, error) {
	var opening fund.Opening
	var err error

	if opening.Units, err = parseDecimal(req.OpeningUnits, "opening_units"); err != nil {
		return fund.Opening{}, nil, nil, err
	}
	if opening.Units.Sign() < 0 {
		return fund.Opening{}, nil, nil, &fund.ArgumentError{
			Name: "opening_units", Value: req.OpeningUnits, Reason: "must not be negative",
		}
	}
	if opening.NAVPerUnit, err = parseDecimal(req.OpeningNAVPerUnit, "opening_nav_per_unit"); err != nil {
		return fund.Opening{}, nil, nil, err
	}

	transactions := make([]fund.Transaction, len(req.Transactions))
	for i, dto := range req.Transactions {
		date, err := fund.ParseDate(dto.Date)
		if err != nil {
			return fund.Opening{}, nil, nil, fmt.Errorf("transactions[%d]: %w", i, err)
		}
		amount, err := parseDecimal(dto.Amount, fmt.Sprintf("transactions[%d].amount", i))
		if err != nil {
			return fund.Opening{}, nil, nil, err
		}
		transactions[i] = fund.Transaction{
			Date:     date,
			Investor: dto.Investor,
			Kind:     fund.Kind(dto.Kind),
			Amount:   amount,
		}
	}

	quotes := make(fund.NAVTable, len(req.Quotes))
	for dateStr, navStr := range req.Quotes {
		date, err := fund.ParseDate(dateStr)
		if err != nil {
			return fund.Opening{}, nil, nil, fmt.Errorf("quotes: %w", err)
		}
		navpu, err := parseDecimal(navStr, "quotes["+dateStr+"]")
		if err != nil {
			return fund.Opening{}, nil, nil, err
		}
		quotes[date] = navpu
	}

	return opening, transactions, quotes, nil
}

func parseValuationRequest(req *ValuationRequest) ([]nav.Position, []nav.Liability, decimal.Decimal, error) {
	units, err := parseDecimal(req.UnitsOutstanding, "units_outstanding")
	if err != nil {
		return nil, nil, decimal.Decimal{}, err
	}

	positions := make([]nav.Position, len(req.Positions))
	for i, dto := range req.Positions {
		p := nav.Position{Instrument: dto.Instrument}
		if p.Quantity, err = parseDecimal(dto.Quantity, fmt.Sprintf("positions[%d].quantity", i)); err != nil {
			return nil, nil, decimal.Decimal{}, err
		}
		if p.Price, err = parseDecimal(dto.Price, fmt.Sprintf("positions[%d].price", i)); err != nil {
			return nil, nil, decimal.Decimal{}, err
		}
		if p.FXToBase, err = parseDecimal(dto.FXToBase, fmt.Sprintf("positions[%d].fx_to_base", i)); err != nil {
			return nil, nil, decimal.Decimal{}, err
		}
		positions[i] = p
	}

	liabilities := make([]nav.Liability, len(req.Liabilities))
	for i, dto := range req.Liabilities {
		l := nav.Liability{Name: dto.Name}
		if l.Amount, err = parseDecimal(dto.Amount, fmt.Sprintf("liabilities[%d].amount", i)); err != nil {
			return nil, nil, decimal.Decimal{}, err
		}
		liabilities[i] = l
	}

	return positions, liabilities, units, nil
}

func parseDecimal(value, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, &fund.ArgumentError{Name: name, Value: value, Reason: "not a decimal"}
	}
	return d, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
