/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

DECIMAL ENCODING:
  All decimal values cross the wire as strings ("10125.00", "1.012500"),
  never as JSON numbers: a JSON number round-trips through float64 in most
  clients, which is exactly the precision loss the engine avoids.

DISPLAY ROUNDING:
  Ledger and summary DTOs carry display-rounded values (2dp currency,
  6dp units/NAV), matching the CSV reports. Internal precision stays
  server-side.

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Parses requests and builds responses
*/
package api

import (
	"time"

	"github.com/warp/fund-engine/fund"
	"github.com/warp/fund-engine/nav"
)

const (
	amountPlaces = 2
	unitPlaces   = 6
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// TransactionDTO is one dealing instruction in a run request.
type TransactionDTO struct {
	Date     string `json:"date"`     // YYYY-MM-DD
	Investor string `json:"investor"`
	Kind     string `json:"kind"`     // subscription | redemption (case/space tolerant)
	Amount   string `json:"amount"`   // currency amount, decimal string
}

// CreateRunRequest submits a batch for unitisation.
type CreateRunRequest struct {
	OpeningUnits      string            `json:"opening_units"`
	OpeningNAVPerUnit string            `json:"opening_nav_per_unit"`
	Transactions      []TransactionDTO  `json:"transactions"`
	Quotes            map[string]string `json:"quotes"` // date -> NAV-per-unit
}

// PositionDTO is one holding row in a valuation request.
type PositionDTO struct {
	Instrument string `json:"instrument"`
	Quantity   string `json:"quantity"`
	Price      string `json:"price"`
	FXToBase   string `json:"fx_to_base"`
}

// LiabilityDTO is one liability row in a valuation request.
type LiabilityDTO struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// ValuationRequest submits holdings and liabilities for NAV calculation.
type ValuationRequest struct {
	BaseCurrency     string         `json:"base_currency"`
	UnitsOutstanding string         `json:"units_outstanding"`
	Positions        []PositionDTO  `json:"positions"`
	Liabilities      []LiabilityDTO `json:"liabilities"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// LedgerEntryDTO is one audit-trail row, display-rounded.
type LedgerEntryDTO struct {
	Date               string `json:"date"`
	Investor           string `json:"investor"`
	Kind               string `json:"kind"`
	Amount             string `json:"amount"`
	NAVPerUnit         string `json:"nav_per_unit"`
	UnitsChange        string `json:"units_change"`
	InvestorUnitsAfter string `json:"investor_units_after"`
	TotalUnitsAfter    string `json:"total_units_after"`
}

// InvestorUnitsDTO is one investor's final balance.
type InvestorUnitsDTO struct {
	Investor string `json:"investor"`
	Units    string `json:"units"`
}

// TotalsDTO carries the fund-level unit counts.
type TotalsDTO struct {
	OpeningUnits      string `json:"opening_units"`
	OpeningNAVPerUnit string `json:"opening_nav_per_unit"`
	ClosingUnits      string `json:"closing_units"`
}

// RunDTO is the listing view of an archived run.
type RunDTO struct {
	ID        string    `json:"id"`
	CreatedAt string    `json:"created_at"`
	Totals    TotalsDTO `json:"totals"`
	Entries   int       `json:"entries"`
	Investors int       `json:"investors"`
}

// RunDetailDTO is the full view of an archived run.
type RunDetailDTO struct {
	RunDTO
	Ledger  []LedgerEntryDTO   `json:"ledger"`
	Summary []InvestorUnitsDTO `json:"summary"`
}

// ValuedPositionDTO is one holding with its computed market value.
type ValuedPositionDTO struct {
	Instrument  string `json:"instrument"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	FXToBase    string `json:"fx_to_base"`
	MarketValue string `json:"market_value"`
}

// ValuationDTO is the NAV breakdown response.
type ValuationDTO struct {
	BaseCurrency     string              `json:"base_currency"`
	TotalAssets      string              `json:"total_assets"`
	TotalLiabilities string              `json:"total_liabilities"`
	NetAssets        string              `json:"net_assets"`
	UnitsOutstanding string              `json:"units_outstanding"`
	NAVPerUnit       string              `json:"nav_per_unit"`
	Positions        []ValuedPositionDTO `json:"positions"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toLedgerDTOs(entries []fund.LedgerEntry) []LedgerEntryDTO {
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LedgerEntryDTO{
			Date:               e.Date.String(),
			Investor:           e.Investor,
			Kind:               string(e.Kind),
			Amount:             e.Amount.StringFixed(amountPlaces),
			NAVPerUnit:         e.NAVPerUnit.StringFixed(unitPlaces),
			UnitsChange:        e.UnitsChange.StringFixed(unitPlaces),
			InvestorUnitsAfter: e.InvestorUnitsAfter.StringFixed(unitPlaces),
			TotalUnitsAfter:    e.TotalUnitsAfter.StringFixed(unitPlaces),
		}
	}
	return dtos
}

func toSummaryDTOs(summary []fund.InvestorUnits) []InvestorUnitsDTO {
	dtos := make([]InvestorUnitsDTO, len(summary))
	for i, s := range summary {
		dtos[i] = InvestorUnitsDTO{Investor: s.Investor, Units: s.Units.StringFixed(unitPlaces)}
	}
	return dtos
}

func toTotalsDTO(t fund.Totals) TotalsDTO {
	return TotalsDTO{
		OpeningUnits:      t.OpeningUnits.StringFixed(unitPlaces),
		OpeningNAVPerUnit: t.OpeningNAVPerUnit.StringFixed(unitPlaces),
		ClosingUnits:      t.ClosingUnits.StringFixed(unitPlaces),
	}
}

func toRunDTO(m fund.RunMeta) RunDTO {
	return RunDTO{
		ID:        m.ID,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
		Totals:    toTotalsDTO(m.Totals),
		Entries:   m.Entries,
		Investors: m.Investors,
	}
}

func toRunDetailDTO(run *fund.Run) RunDetailDTO {
	return RunDetailDTO{
		RunDTO:  toRunDTO(run.Meta()),
		Ledger:  toLedgerDTOs(run.Result.Ledger),
		Summary: toSummaryDTOs(run.Result.Summary),
	}
}

func toValuationDTO(v *nav.Valuation) ValuationDTO {
	positions := make([]ValuedPositionDTO, len(v.Positions))
	for i, p := range v.Positions {
		positions[i] = ValuedPositionDTO{
			Instrument:  p.Instrument,
			Quantity:    p.Quantity.String(),
			Price:       p.Price.String(),
			FXToBase:    p.FXToBase.String(),
			MarketValue: p.MarketValue.StringFixed(amountPlaces),
		}
	}
	return ValuationDTO{
		BaseCurrency:     v.BaseCurrency,
		TotalAssets:      v.TotalAssets.StringFixed(amountPlaces),
		TotalLiabilities: v.TotalLiabilities.StringFixed(amountPlaces),
		NetAssets:        v.NetAssets.StringFixed(amountPlaces),
		UnitsOutstanding: v.UnitsOutstanding.String(),
		NAVPerUnit:       v.NAVPerUnit.StringFixed(unitPlaces),
		Positions:        positions,
	}
}
