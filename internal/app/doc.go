// Package app wires the dashboard together: configuration, logging,
// services, HTTP routes and the websocket hub, plus graceful shutdown.
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging
//	3. Initialize services with their dependencies
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Set up graceful shutdown handlers
//
// All initialization errors are returned to the caller. The app never
// calls os.Exit() directly, so main controls the exit process.
package app
