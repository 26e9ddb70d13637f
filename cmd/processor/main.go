// Command processor runs the aggregation pipeline once and writes the
// resulting views to files, without starting the web server. It is meant
// for cron jobs and ad-hoc exports.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mktintel/internal/config"
	"mktintel/internal/dataprocessing"
	"mktintel/internal/exporter"
	"mktintel/internal/infrastructure"
	"mktintel/pkg/contracts/domain"
)

func main() {
	datasetDir := flag.String("dataset", "", "dataset directory (overrides configuration)")
	outDir := flag.String("out", "", "output directory for exported files (overrides configuration)")
	format := flag.String("format", "csv", "export format: csv or xlsx")
	from := flag.String("from", "", "inclusive start date, YYYY-MM-DD")
	to := flag.String("to", "", "inclusive end date, YYYY-MM-DD")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *datasetDir != "" {
		cfg.Dataset.Dir = *datasetDir
	}
	if *outDir != "" {
		cfg.Export.Dir = *outDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	fromDate, toDate, err := parseWindow(*from, *to)
	if err != nil {
		logger.Error("invalid date window", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger, *format, fromDate, toDate); err != nil {
		logger.Error("processing failed", "error", err)
		os.Exit(1)
	}
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	var fromDate, toDate time.Time
	var err error
	if from != "" {
		if fromDate, err = time.Parse("2006-01-02", from); err != nil {
			return fromDate, toDate, fmt.Errorf("parse -from: %w", err)
		}
	}
	if to != "" {
		if toDate, err = time.Parse("2006-01-02", to); err != nil {
			return fromDate, toDate, fmt.Errorf("parse -to: %w", err)
		}
	}
	if !fromDate.IsZero() && !toDate.IsZero() && toDate.Before(fromDate) {
		return fromDate, toDate, fmt.Errorf("-to precedes -from")
	}
	return fromDate, toDate, nil
}

func run(cfg *config.Config, logger *slog.Logger, format string, from, to time.Time) error {
	start := time.Now()

	pipeline := dataprocessing.NewPipeline(logger, dataprocessing.ParserConfig{
		CoerceMissingNumeric: cfg.Dataset.CoerceMissingNumeric,
	})
	result, err := pipeline.Run(dataprocessing.Sources{
		BusinessFile:   cfg.BusinessPath(),
		MarketingFiles: cfg.MarketingPaths(),
	})
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	combined := dataprocessing.FilterCombined(result.Combined, from, to)
	records := dataprocessing.FilterRecords(result.Marketing, from, to, nil)
	marketing := dataprocessing.Aggregate(records, dataprocessing.DefaultGroupKeys)
	stats := dataprocessing.NewSummarizer(logger).Summarize(combined, marketing, nil)

	logger.Info("pipeline complete",
		"combined_rows", len(combined),
		"marketing_rows", len(marketing),
		"rows_rejected", result.Quality.RowsRejected,
		"duration", time.Since(start).String())
	for _, warning := range result.Quality.Warnings {
		logger.Warn("data quality", "warning", warning)
	}

	if err := os.MkdirAll(cfg.Export.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	stamp := time.Now().Format("2006-01-02")

	switch strings.ToLower(format) {
	case "csv":
		combinedPath := filepath.Join(cfg.Export.Dir, "combined_"+stamp+".csv")
		if err := writeCSV(combinedPath, func(f *os.File) error {
			return exporter.WriteCombinedCSV(f, combined)
		}); err != nil {
			return err
		}
		marketingPath := filepath.Join(cfg.Export.Dir, "marketing_"+stamp+".csv")
		if err := writeCSV(marketingPath, func(f *os.File) error {
			return exporter.WriteMarketingCSV(f, marketing)
		}); err != nil {
			return err
		}
		logger.Info("exported CSV files",
			"combined", combinedPath,
			"marketing", marketingPath)

	case "xlsx":
		book, err := exporter.Workbook(combined, marketing, stats)
		if err != nil {
			return fmt.Errorf("build workbook: %w", err)
		}
		defer book.Close()
		path := filepath.Join(cfg.Export.Dir, "dashboard_"+stamp+".xlsx")
		if err := book.SaveAs(path); err != nil {
			return fmt.Errorf("save workbook: %w", err)
		}
		logger.Info("exported workbook", "path", path)

	default:
		return fmt.Errorf("unknown format %q, want csv or xlsx", format)
	}

	printSummary(stats)
	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func printSummary(stats domain.SummaryStats) {
	fmt.Printf("Days:              %d\n", stats.Days)
	fmt.Printf("Total spend:       %.2f\n", stats.TotalSpend)
	fmt.Printf("Attributed rev:    %.2f\n", stats.TotalAttributedRevenue)
	fmt.Printf("Business rev:      %.2f\n", stats.TotalBusinessRevenue)
	fmt.Printf("Overall ROAS:      %.2f\n", stats.OverallROAS)
	fmt.Printf("Attribution gap:   %.2f (%.1f%%)\n", stats.AttributionGap, stats.AttributionGapPct*100)
	if stats.BestPlatform != "" {
		fmt.Printf("Best platform:     %s\n", stats.BestPlatform)
	}
}
