// Package app wires the demand forecast service together: configuration,
// the slog logger, OpenTelemetry providers, the forecast and health services,
// HTTP handlers and the chi router.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML file, DEMAND_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create business metrics and services
//	4. Build the router and middleware chain
//	5. Start the HTTP server and wait for a shutdown signal
//
// # Usage
//
//	application, err := app.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
