package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"mktintel/pkg/contracts/domain"
)

// Workbook builds a three-sheet xlsx file: Summary, Combined and Marketing.
// The caller owns the returned file and must Close it.
func Workbook(combined []domain.CombinedRow, marketing []domain.AggregatedMarketingRow, stats domain.SummaryStats) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeSummarySheet(f, stats, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeCombinedSheet(f, combined, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMarketingSheet(f, marketing, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

func writeSummarySheet(f *excelize.File, stats domain.SummaryStats, headerStyle int) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Days", stats.Days},
		{"Total Spend", stats.TotalSpend},
		{"Total Attributed Revenue", stats.TotalAttributedRevenue},
		{"Total Business Revenue", stats.TotalBusinessRevenue},
		{"Total Orders", stats.TotalOrders},
		{"Total New Customers", stats.TotalNewCustomers},
		{"Overall ROAS", stats.OverallROAS},
		{"Overall CTR", stats.OverallCTR},
		{"Average AOV", stats.AverageAOV},
		{"Attribution Gap", stats.AttributionGap},
		{"Attribution Gap %", stats.AttributionGapPct},
		{"Best Platform", string(stats.BestPlatform)},
		{"Worst Platform", string(stats.WorstPlatform)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", "A", 26)
}

func writeCombinedSheet(f *excelize.File, rows []domain.CombinedRow, headerStyle int) error {
	const sheet = "Combined"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(combinedHeaders))
	for i, h := range combinedHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write combined header: %w", err)
	}

	for i, row := range rows {
		values := []interface{}{
			row.Date.Format(dateLayout),
			row.Orders, row.NewOrders, row.NewCustomers,
			row.TotalRevenue, row.GrossProfit, row.COGS,
			row.Impressions, row.Clicks, row.Spend, row.AttributedRevenue,
			row.CTR, row.CPC, row.CPM, row.ROAS,
			row.AOV, row.ProfitMargin, row.NewCustomerRate,
			row.AttributionGap, row.AttributionGapPct,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write combined row %d: %w", i, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(combinedHeaders), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}

func writeMarketingSheet(f *excelize.File, rows []domain.AggregatedMarketingRow, headerStyle int) error {
	const sheet = "Marketing"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	header := make([]interface{}, len(marketingHeaders))
	for i, h := range marketingHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write marketing header: %w", err)
	}

	for i, row := range rows {
		date := ""
		if !row.Date.IsZero() {
			date = row.Date.Format(dateLayout)
		}
		values := []interface{}{
			date, string(row.Platform), row.Tactic, row.State, row.Campaign,
			row.Impressions, row.Clicks, row.Spend, row.AttributedRevenue,
			row.CTR, row.CPC, row.CPM, row.ROAS,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write marketing row %d: %w", i, err)
		}
	}

	last, err := excelize.CoordinatesToCellName(len(marketingHeaders), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
