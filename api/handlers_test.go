/*
handlers_test.go - Unit tests for API handlers

Tests cover:
- Run creation, archival and retrieval
- Error status mapping for data-quality failures
- Ad-hoc NAV valuation
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/fund-engine/fund/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(store.NewMemory())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func validRunRequest() CreateRunRequest {
	return CreateRunRequest{
		OpeningUnits:      "100000",
		OpeningNAVPerUnit: "1.000000",
		Transactions: []TransactionDTO{
			{Date: "2026-01-02", Investor: "INV-001", Kind: "Subscription", Amount: "10125.00"},
		},
		Quotes: map[string]string{"2026-01-02": "1.0125"},
	}
}

// =============================================================================
// RUN ENDPOINTS
// =============================================================================

func TestCreateRun_Success(t *testing.T) {
	// GIVEN: A valid one-subscription batch
	// WHEN: POSTed to /api/runs
	// THEN: 201 with the archived run, display-rounded values

	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/runs", validRunRequest())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	run := decodeJSON[RunDetailDTO](t, resp)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "110000.000000", run.Totals.ClosingUnits)

	require.Len(t, run.Ledger, 1)
	entry := run.Ledger[0]
	assert.Equal(t, "2026-01-02", entry.Date)
	assert.Equal(t, "subscription", entry.Kind)
	assert.Equal(t, "10125.00", entry.Amount)
	assert.Equal(t, "1.012500", entry.NAVPerUnit)
	assert.Equal(t, "10000.000000", entry.UnitsChange)
	assert.Equal(t, "110000.000000", entry.TotalUnitsAfter)

	require.Len(t, run.Summary, 1)
	assert.Equal(t, "INV-001", run.Summary[0].Investor)
	assert.Equal(t, "10000.000000", run.Summary[0].Units)
}

func TestCreateRun_ArchivedAndRetrievable(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[RunDetailDTO](t, postJSON(t, srv.URL+"/api/runs", validRunRequest()))

	resp, err := http.Get(srv.URL + "/api/runs/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeJSON[RunDetailDTO](t, resp)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Totals, got.Totals)

	resp, err = http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	list := decodeJSON[[]RunDTO](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 1, list[0].Entries)
}

func TestCreateRun_LedgerAndSummarySubresources(t *testing.T) {
	srv := newTestServer(t)
	created := decodeJSON[RunDetailDTO](t, postJSON(t, srv.URL+"/api/runs", validRunRequest()))

	resp, err := http.Get(srv.URL + "/api/runs/" + created.ID + "/ledger")
	require.NoError(t, err)
	ledger := decodeJSON[[]LedgerEntryDTO](t, resp)
	require.Len(t, ledger, 1)
	assert.Equal(t, "INV-001", ledger[0].Investor)

	resp, err = http.Get(srv.URL + "/api/runs/" + created.ID + "/summary")
	require.NoError(t, err)
	summary := decodeJSON[[]InvestorUnitsDTO](t, resp)
	require.Len(t, summary, 1)
	assert.Equal(t, "10000.000000", summary[0].Units)
}

func TestCreateRun_InvalidKind_Returns400(t *testing.T) {
	srv := newTestServer(t)

	req := validRunRequest()
	req.Transactions[0].Kind = "Purchase"

	resp := postJSON(t, srv.URL+"/api/runs", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeJSON[ErrorResponse](t, resp)
	assert.Contains(t, errResp.Details, "Purchase")

	// Failed batches archive nothing.
	listResp, err := http.Get(srv.URL + "/api/runs")
	require.NoError(t, err)
	assert.Empty(t, decodeJSON[[]RunDTO](t, listResp))
}

func TestCreateRun_MissingQuote_Returns400(t *testing.T) {
	srv := newTestServer(t)

	req := validRunRequest()
	req.Quotes = map[string]string{"2026-01-09": "1.0"}

	resp := postJSON(t, srv.URL+"/api/runs", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeJSON[ErrorResponse](t, resp)
	assert.Contains(t, errResp.Details, "2026-01-02")
}

func TestCreateRun_InsufficientUnits_Returns400(t *testing.T) {
	srv := newTestServer(t)

	req := CreateRunRequest{
		OpeningUnits:      "100000",
		OpeningNAVPerUnit: "1.0",
		Transactions: []TransactionDTO{
			{Date: "2026-01-02", Investor: "INV-001", Kind: "redemption", Amount: "100.00"},
		},
		Quotes: map[string]string{"2026-01-02": "1.0"},
	}

	resp := postJSON(t, srv.URL+"/api/runs", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errResp := decodeJSON[ErrorResponse](t, resp)
	assert.Contains(t, errResp.Details, "INV-001")
}

func TestCreateRun_BadDecimal_Returns400(t *testing.T) {
	srv := newTestServer(t)

	req := validRunRequest()
	req.Transactions[0].Amount = "lots"

	resp := postJSON(t, srv.URL+"/api/runs", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/runs/does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// VALUATION ENDPOINT
// =============================================================================

func TestCalculateNAV_Success(t *testing.T) {
	srv := newTestServer(t)

	req := ValuationRequest{
		BaseCurrency:     "USD",
		UnitsOutstanding: "100000",
		Positions: []PositionDTO{
			{Instrument: "GOVT-BOND-2030", Quantity: "1000", Price: "101.25", FXToBase: "1"},
		},
		Liabilities: []LiabilityDTO{{Name: "Fees", Amount: "1250"}},
	}

	resp := postJSON(t, srv.URL+"/api/nav", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	v := decodeJSON[ValuationDTO](t, resp)
	assert.Equal(t, "101250.00", v.TotalAssets)
	assert.Equal(t, "1250.00", v.TotalLiabilities)
	assert.Equal(t, "100000.00", v.NetAssets)
	assert.Equal(t, "1.000000", v.NAVPerUnit)
	require.Len(t, v.Positions, 1)
	assert.Equal(t, "101250.00", v.Positions[0].MarketValue)
}

func TestCalculateNAV_ZeroUnits_Returns400(t *testing.T) {
	srv := newTestServer(t)

	req := ValuationRequest{UnitsOutstanding: "0"}
	resp := postJSON(t, srv.URL+"/api/nav", req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}
