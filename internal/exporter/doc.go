// Package exporter renders dashboard views as downloadable files.
//
// It writes the combined per-date table and the marketing aggregates as
// CSV (with a UTF-8 BOM for Excel compatibility), and builds a multi-sheet
// xlsx workbook carrying both views plus the summary snapshot.
package exporter
