// Package services wires the KPI pipeline, result cache, summarizer and
// insight engine behind the interfaces the HTTP transport consumes.
package services
