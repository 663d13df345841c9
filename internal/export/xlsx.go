// Package export produces XLSX workbooks from backend analytics payloads.
package export

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/DefoxxAnalytics/versatex-analytics/internal/api"
)

// AnalyticsBundle collects the dashboard payloads written to one workbook.
type AnalyticsBundle struct {
	Pareto    api.ParetoAnalysis
	Suppliers api.SupplierAnalysis
	Contracts api.ContractSummary
	P2P       api.P2PCycleMetrics
	Forecast  api.Forecast
}

// AnalyticsXLSX renders the bundle as XLSX bytes, one sheet per dashboard.
func AnalyticsXLSX(bundle AnalyticsBundle) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := writeParetoSheet(f, bundle.Pareto); err != nil {
		return nil, err
	}
	if err := writeSupplierSheet(f, bundle.Suppliers); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, bundle.Contracts, bundle.P2P); err != nil {
		return nil, err
	}
	if err := writeForecastSheet(f, bundle.Forecast); err != nil {
		return nil, err
	}

	// The default sheet is replaced by the Pareto sheet.
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}

	slog.Debug("exported analytics workbook",
		"bytes", buf.Len(),
		"duration", time.Since(start))

	return buf.Bytes(), nil
}

func writeParetoSheet(f *excelize.File, pareto api.ParetoAnalysis) error {
	const sheet = "Pareto"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeRow(f, sheet, 1, []any{"Category", "Spend", "Cumulative %"})
	row := 2
	for _, item := range pareto.Items {
		writeRow(f, sheet, row, []any{item.Category, item.Spend, item.CumulativePercent})
		row++
	}
	writeRow(f, sheet, row+1, []any{"Total Spend", pareto.TotalSpend})
	return nil
}

func writeSupplierSheet(f *excelize.File, analysis api.SupplierAnalysis) error {
	const sheet = "Suppliers"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeRow(f, sheet, 1, []any{"Supplier", "Spend", "Share %", "Orders"})
	row := 2
	for _, s := range analysis.Suppliers {
		writeRow(f, sheet, row, []any{s.Supplier, s.Spend, s.SharePercent, s.OrderCount})
		row++
	}
	writeRow(f, sheet, row+1, []any{"HHI", analysis.HHI})
	return nil
}

func writeSummarySheet(f *excelize.File, contracts api.ContractSummary, p2p api.P2PCycleMetrics) error {
	const sheet = "Contracts & P2P"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := [][]any{
		{"Active Contracts", contracts.ActiveContracts},
		{"Expiring in 90 Days", contracts.ExpiringIn90Days},
		{"On-Contract %", contracts.OnContractPercent},
		{"Maverick Spend", contracts.MaverickSpend},
		{},
		{"Avg P2P Cycle (days)", p2p.AvgCycleDays},
		{"Avg Approval (days)", p2p.AvgApprovalDays},
		{"Avg Fulfillment (days)", p2p.AvgFulfillmentDays},
		{"Avg Payment (days)", p2p.AvgPaymentDays},
	}
	for i, cells := range rows {
		writeRow(f, sheet, i+1, cells)
	}
	return nil
}

func writeForecastSheet(f *excelize.File, forecast api.Forecast) error {
	const sheet = "Forecast"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	writeRow(f, sheet, 1, []any{"Period", "Predicted", "Lower", "Upper"})
	row := 2
	for _, p := range forecast.Points {
		writeRow(f, sheet, row, []any{p.Period, p.Predicted, p.LowerBound, p.UpperBound})
		row++
	}
	writeRow(f, sheet, row+1, []any{"MAPE", forecast.MAPE})
	writeRow(f, sheet, row+2, []any{"R²", forecast.RSquared})
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}
