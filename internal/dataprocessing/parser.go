package dataprocessing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"mktintel/pkg/contracts/domain"
)

// dateFormats covers ISO-8601 plus the locale variants seen in real platform
// exports. Order matters: the first successful parse wins.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// maxWarnings caps the per-source warning list so a fully broken file does
// not balloon the response payload.
const maxWarnings = 25

// ParserConfig controls row-level cleaning behavior.
type ParserConfig struct {
	// CoerceMissingNumeric treats empty or malformed numeric fields as zero
	// instead of rejecting the row. The boundary between "bad data" and
	// "legitimately zero" is a product call, so this is configurable.
	CoerceMissingNumeric bool
}

// DefaultParserConfig matches upstream exports with known sparse gaps:
// coerce to zero, never drop a date from coverage over a blank cell.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{CoerceMissingNumeric: true}
}

// LoadStats tallies what happened to the rows of one source.
type LoadStats struct {
	Rows     int      `json:"rows"`
	Loaded   int      `json:"loaded"`
	Rejected int      `json:"rejected"`
	Coerced  int      `json:"coerced"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *LoadStats) warnf(format string, args ...interface{}) {
	if len(s.Warnings) < maxWarnings {
		s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
	}
}

// MarketingLoad is the cleaned output of one platform source.
type MarketingLoad struct {
	Records []domain.MarketingRecord
	Stats   LoadStats
}

// BusinessLoad is the cleaned output of the business source.
type BusinessLoad struct {
	Records []domain.BusinessRecord
	Stats   LoadStats
}

// Parser reads delimited UTF-8 exports with a header row and produces clean
// record sets plus a rejected-row tally. Rows with unparseable dates are
// excluded and counted; missing numeric fields follow the coercion policy.
type Parser struct {
	logger *slog.Logger
	cfg    ParserConfig
}

// NewParser creates a parser with the given config.
func NewParser(logger *slog.Logger, cfg ParserConfig) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger: logger.With(slog.String("component", "parser")),
		cfg:    cfg,
	}
}

// LoadMarketingFile opens and parses one platform export. A missing or
// unreadable file is fatal and reported as SourceMissingError.
func (p *Parser) LoadMarketingFile(path string, platform domain.Platform) (*MarketingLoad, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceMissingError{Source: string(platform), Err: err}
	}
	defer f.Close()

	load, err := p.ParseMarketing(f, platform)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return load, nil
}

// LoadBusinessFile opens and parses the business export.
func (p *Parser) LoadBusinessFile(path string) (*BusinessLoad, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceMissingError{Source: "business", Err: err}
	}
	defer f.Close()

	load, err := p.ParseBusiness(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return load, nil
}

// ParseMarketing reads one platform source. Required columns: date,
// impressions, clicks, spend, attributed_revenue. Tactic, state and campaign
// are optional drill-down dimensions.
func (p *Parser) ParseMarketing(r io.Reader, platform domain.Platform) (*MarketingLoad, error) {
	rows, header, badLines, err := readCSV(r)
	if err != nil {
		return nil, &SourceMissingError{Source: string(platform), Err: err}
	}

	cols, err := mapColumns(header, map[string][]string{
		"date":               {"date", "day"},
		"impressions":        {"impressions", "impression"},
		"clicks":             {"clicks", "link clicks"},
		"spend":              {"spend", "cost", "amount spent"},
		"attributed_revenue": {"attributed_revenue", "attributed revenue", "revenue"},
	}, []string{"date", "impressions", "clicks", "spend", "attributed_revenue"})
	if err != nil {
		return nil, fmt.Errorf("%s source: %w", platform, err)
	}
	optional := mapOptionalColumns(header, map[string][]string{
		"tactic":   {"tactic"},
		"state":    {"state"},
		"campaign": {"campaign", "campaign name", "campaign id"},
	})

	load := &MarketingLoad{}
	for _, line := range badLines {
		load.Stats.Rows++
		load.Stats.Rejected++
		load.Stats.warnf("line %d: malformed csv row skipped", line)
	}
	for i, row := range rows {
		load.Stats.Rows++
		rec := domain.MarketingRecord{Platform: platform}

		date, ok := parseDate(cell(row, cols["date"]))
		if !ok {
			load.Stats.Rejected++
			load.Stats.warnf("row %d: unparseable date %q", i+2, cell(row, cols["date"]))
			continue
		}
		rec.Date = date
		rec.Tactic = cell(row, optional["tactic"])
		rec.State = cell(row, optional["state"])
		rec.Campaign = cell(row, optional["campaign"])

		ints := map[string]*int64{"impressions": &rec.Impressions, "clicks": &rec.Clicks}
		floats := map[string]*float64{"spend": &rec.Spend, "attributed_revenue": &rec.AttributedRevenue}
		if !p.parseNumerics(row, cols, ints, floats, &load.Stats, i) {
			continue
		}

		load.Stats.Loaded++
		load.Records = append(load.Records, rec)
	}

	p.logger.Info("marketing source parsed",
		slog.String("platform", string(platform)),
		slog.Int("rows", load.Stats.Rows),
		slog.Int("loaded", load.Stats.Loaded),
		slog.Int("rejected", load.Stats.Rejected),
		slog.Int("coerced", load.Stats.Coerced))
	return load, nil
}

// ParseBusiness reads the business source. Column aliases follow the export
// headers ("# of orders", "gross profit") as well as snake_case variants.
func (p *Parser) ParseBusiness(r io.Reader) (*BusinessLoad, error) {
	rows, header, badLines, err := readCSV(r)
	if err != nil {
		return nil, &SourceMissingError{Source: "business", Err: err}
	}

	cols, err := mapColumns(header, map[string][]string{
		"date":          {"date", "day"},
		"orders":        {"orders", "# of orders", "of orders"},
		"new_orders":    {"new_orders", "# of new orders", "of new orders", "new orders"},
		"new_customers": {"new_customers", "new customers"},
		"total_revenue": {"total_revenue", "total revenue"},
		"gross_profit":  {"gross_profit", "gross profit"},
		"cogs":          {"cogs", "cost of goods sold"},
	}, []string{"date", "orders", "total_revenue"})
	if err != nil {
		return nil, fmt.Errorf("business source: %w", err)
	}

	load := &BusinessLoad{}
	for _, line := range badLines {
		load.Stats.Rows++
		load.Stats.Rejected++
		load.Stats.warnf("line %d: malformed csv row skipped", line)
	}
	seen := make(map[string]int)
	for i, row := range rows {
		load.Stats.Rows++
		rec := domain.BusinessRecord{}

		date, ok := parseDate(cell(row, cols["date"]))
		if !ok {
			load.Stats.Rejected++
			load.Stats.warnf("row %d: unparseable date %q", i+2, cell(row, cols["date"]))
			continue
		}
		rec.Date = date

		ints := map[string]*int64{
			"orders":        &rec.Orders,
			"new_orders":    &rec.NewOrders,
			"new_customers": &rec.NewCustomers,
		}
		floats := map[string]*float64{
			"total_revenue": &rec.TotalRevenue,
			"gross_profit":  &rec.GrossProfit,
			"cogs":          &rec.COGS,
		}
		if !p.parseNumerics(row, cols, ints, floats, &load.Stats, i) {
			continue
		}

		// Date is the unique key of the business table. Later duplicates win
		// so a corrected re-export row supersedes the original.
		if idx, dup := seen[dateKey(rec.Date)]; dup {
			load.Records[idx] = rec
			load.Stats.warnf("row %d: duplicate business date %s replaces earlier row", i+2, dateKey(rec.Date))
			continue
		}
		seen[dateKey(rec.Date)] = len(load.Records)
		load.Stats.Loaded++
		load.Records = append(load.Records, rec)
	}

	p.logger.Info("business source parsed",
		slog.Int("rows", load.Stats.Rows),
		slog.Int("loaded", load.Stats.Loaded),
		slog.Int("rejected", load.Stats.Rejected),
		slog.Int("coerced", load.Stats.Coerced))
	return load, nil
}

// parseNumerics fills the numeric targets from the mapped columns under the
// configured coercion policy. It returns false when the row must be rejected.
func (p *Parser) parseNumerics(row []string, cols map[string]int, ints map[string]*int64, floats map[string]*float64, stats *LoadStats, rowIdx int) bool {
	coerced := false
	for name, target := range ints {
		col, mapped := cols[name]
		raw := ""
		if mapped {
			raw = cell(row, col)
		}
		v, ok := parseInt(raw)
		if !ok {
			if !p.cfg.CoerceMissingNumeric && raw != "" {
				stats.Rejected++
				stats.warnf("row %d: non-numeric %s %q", rowIdx+2, name, raw)
				return false
			}
			v = 0
			if raw != "" || mapped {
				coerced = true
			}
		}
		*target = v
	}
	for name, target := range floats {
		col, mapped := cols[name]
		raw := ""
		if mapped {
			raw = cell(row, col)
		}
		v, ok := parseFloat(raw)
		if !ok {
			if !p.cfg.CoerceMissingNumeric && raw != "" {
				stats.Rejected++
				stats.warnf("row %d: non-numeric %s %q", rowIdx+2, name, raw)
				return false
			}
			v = 0
			if raw != "" || mapped {
				coerced = true
			}
		}
		*target = v
	}
	if coerced {
		stats.Coerced++
	}
	return true
}

// readCSV reads all rows, tolerating ragged lines, and splits off the header.
// Rows that fail CSV parsing (an unterminated or stray quote) are skipped and
// their line numbers returned so callers tally them as rejected instead of
// failing the whole source.
func readCSV(r io.Reader) (rows [][]string, header []string, badLines []int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for {
		rec, rerr := cr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			var pe *csv.ParseError
			if errors.As(rerr, &pe) {
				badLines = append(badLines, pe.Line)
				continue
			}
			return nil, nil, nil, fmt.Errorf("read csv: %w", rerr)
		}
		if header == nil {
			header = rec
			continue
		}
		rows = append(rows, rec)
	}
	if header == nil {
		return nil, nil, nil, fmt.Errorf("empty file, header row required")
	}
	return rows, header, badLines, nil
}

// normalizeHeader lowercases, trims and collapses separators so that
// "Attributed Revenue", "attributed_revenue" and "# of orders " all map.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "# ")
	h = strings.TrimPrefix(h, "#")
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

func mapColumns(header []string, aliases map[string][]string, required []string) (map[string]int, error) {
	cols := make(map[string]int)
	for idx, h := range header {
		norm := normalizeHeader(h)
		for name, names := range aliases {
			if _, done := cols[name]; done {
				continue
			}
			for _, alias := range names {
				if norm == normalizeHeader(alias) {
					cols[name] = idx
					break
				}
			}
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns missing: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// mapOptionalColumns maps every key in aliases, using -1 for columns absent
// from the header so a lookup never aliases column 0.
func mapOptionalColumns(header []string, aliases map[string][]string) map[string]int {
	cols, _ := mapColumns(header, aliases, nil)
	for name := range aliases {
		if _, ok := cols[name]; !ok {
			cols[name] = -1
		}
	}
	return cols
}

// cell returns the trimmed value at col, or "" when the row is short or the
// column is unmapped (col < 0).
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseInt(s string) (int64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	// Some exports serialize counts as decimals ("1200.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// dateKey formats a date as the canonical join key.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
