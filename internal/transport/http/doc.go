// Package http implements the HTTP handlers of the marketing intelligence
// dashboard. Handlers stay thin: parse the shared query filters, delegate
// to the service layer and render JSON, with errors mapped to RFC 7807
// Problem Details by the shared error handler.
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Pipeline/Cache
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// All endpoints under /api/dashboard and /api/insights accept the same
// filter parameters: from, to (YYYY-MM-DD), platforms (comma-separated)
// and group_by (date, platform, tactic, state, campaign).
package http
