package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"mktintel/pkg/contracts/domain"
)

const dateLayout = "2006-01-02"

// utf8BOM helps Excel recognize the encoding of downloaded CSVs.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var combinedHeaders = []string{
	"date", "orders", "new_orders", "new_customers",
	"total_revenue", "gross_profit", "cogs",
	"impressions", "clicks", "spend", "attributed_revenue",
	"ctr", "cpc", "cpm", "roas",
	"aov", "profit_margin", "new_customer_rate",
	"attribution_gap", "attribution_gap_pct",
}

var marketingHeaders = []string{
	"date", "platform", "tactic", "state", "campaign",
	"impressions", "clicks", "spend", "attributed_revenue",
	"ctr", "cpc", "cpm", "roas",
}

// WriteCombinedCSV writes the combined per-date table to w.
func WriteCombinedCSV(w io.Writer, rows []domain.CombinedRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(combinedHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range rows {
		record := []string{
			row.Date.Format(dateLayout),
			formatInt(row.Orders),
			formatInt(row.NewOrders),
			formatInt(row.NewCustomers),
			formatFloat(row.TotalRevenue),
			formatFloat(row.GrossProfit),
			formatFloat(row.COGS),
			formatInt(row.Impressions),
			formatInt(row.Clicks),
			formatFloat(row.Spend),
			formatFloat(row.AttributedRevenue),
			formatRatio(row.CTR),
			formatFloat(row.CPC),
			formatFloat(row.CPM),
			formatFloat(row.ROAS),
			formatFloat(row.AOV),
			formatRatio(row.ProfitMargin),
			formatRatio(row.NewCustomerRate),
			formatFloat(row.AttributionGap),
			formatRatio(row.AttributionGapPct),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMarketingCSV writes the aggregated marketing rows to w.
func WriteMarketingCSV(w io.Writer, rows []domain.AggregatedMarketingRow) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(marketingHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, row := range rows {
		date := ""
		if !row.Date.IsZero() {
			date = row.Date.Format(dateLayout)
		}
		record := []string{
			date,
			string(row.Platform),
			row.Tactic,
			row.State,
			row.Campaign,
			formatInt(row.Impressions),
			formatInt(row.Clicks),
			formatFloat(row.Spend),
			formatFloat(row.AttributedRevenue),
			formatRatio(row.CTR),
			formatFloat(row.CPC),
			formatFloat(row.CPM),
			formatFloat(row.ROAS),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
