package api

import (
	"context"
)

// Analytics payloads are computed entirely by the backend; the types below
// only describe what is displayed.

// ParetoItem is one category's contribution to total spend.
type ParetoItem struct {
	Category          string  `json:"category"`
	Spend             float64 `json:"spend"`
	CumulativePercent float64 `json:"cumulative_percent"`
}

// ParetoAnalysis is the 80/20 spend breakdown by category.
type ParetoAnalysis struct {
	Items      []ParetoItem `json:"items"`
	TotalSpend float64      `json:"total_spend"`
}

// SupplierSummary is one supplier's aggregated spend position.
type SupplierSummary struct {
	Supplier     string  `json:"supplier"`
	Spend        float64 `json:"spend"`
	SharePercent float64 `json:"share_percent"`
	OrderCount   int     `json:"order_count"`
}

// SupplierAnalysis reports concentration across the supplier base. HHI is
// the Herfindahl-Hirschman concentration index.
type SupplierAnalysis struct {
	Suppliers []SupplierSummary `json:"suppliers"`
	HHI       float64           `json:"hhi"`
}

// ContractSummary is the aggregate view of active contracts.
type ContractSummary struct {
	ActiveContracts   int     `json:"active_contracts"`
	ExpiringIn90Days  int     `json:"expiring_in_90_days"`
	OnContractPercent float64 `json:"on_contract_percent"`
	MaverickSpend     float64 `json:"maverick_spend"`
}

// P2PCycleMetrics reports procure-to-pay cycle durations in days.
type P2PCycleMetrics struct {
	AvgCycleDays       float64 `json:"avg_cycle_days"`
	AvgApprovalDays    float64 `json:"avg_approval_days"`
	AvgFulfillmentDays float64 `json:"avg_fulfillment_days"`
	AvgPaymentDays     float64 `json:"avg_payment_days"`
}

// ForecastPoint is one predicted spend interval.
type ForecastPoint struct {
	Period     string  `json:"period"`
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Forecast is the backend's spend prediction along with its accuracy
// statistics (MAPE and R squared).
type Forecast struct {
	Points   []ForecastPoint `json:"points"`
	MAPE     float64         `json:"mape"`
	RSquared float64         `json:"r_squared"`
}

// Pareto fetches the Pareto spend analysis under the current filters.
func (c *Client) Pareto(ctx context.Context) (ParetoAnalysis, error) {
	var out ParetoAnalysis
	if err := c.get(ctx, "/api/analytics/pareto/", &out); err != nil {
		return ParetoAnalysis{}, err
	}
	return out, nil
}

// Suppliers fetches the supplier concentration analysis.
func (c *Client) Suppliers(ctx context.Context) (SupplierAnalysis, error) {
	var out SupplierAnalysis
	if err := c.get(ctx, "/api/analytics/suppliers/", &out); err != nil {
		return SupplierAnalysis{}, err
	}
	return out, nil
}

// Contracts fetches the contract coverage summary.
func (c *Client) Contracts(ctx context.Context) (ContractSummary, error) {
	var out ContractSummary
	if err := c.get(ctx, "/api/analytics/contracts/", &out); err != nil {
		return ContractSummary{}, err
	}
	return out, nil
}

// P2PCycle fetches procure-to-pay cycle metrics.
func (c *Client) P2PCycle(ctx context.Context) (P2PCycleMetrics, error) {
	var out P2PCycleMetrics
	if err := c.get(ctx, "/api/analytics/p2p-cycle/", &out); err != nil {
		return P2PCycleMetrics{}, err
	}
	return out, nil
}

// SpendForecast fetches the predictive spend forecast.
func (c *Client) SpendForecast(ctx context.Context) (Forecast, error) {
	var out Forecast
	if err := c.get(ctx, "/api/analytics/forecast/", &out); err != nil {
		return Forecast{}, err
	}
	return out, nil
}
