// Package services implements the business logic layer of the demand
// forecast application. It sits between the HTTP handlers or the CLI and the
// pure core packages (dataimport, timeseries, forecast), adding tracing,
// metrics and logging around every pipeline stage.
//
// # Services
//
//	- ForecastService: import, normalize, forecast, back-test and full runs
//	- HealthService: liveness, readiness and version information
//
// # Concurrency
//
// ForecastService is safe for concurrent use. Every call draws fresh random
// sources from its RandomFactory, so concurrent requests never share a
// generator. Multi-category forecasts run one goroutine per category through
// an errgroup bounded by the configured MaxConcurrency:
//
//	svc := services.NewForecastService(cfg.Forecast, logger,
//	    services.WithTelemetry(providers.Tracer, metrics))
//	run, err := svc.Run(ctx, services.RunOptions{CSV: text, Horizon: 12})
//
// # Errors
//
// Input problems are returned as *errors.AppError values (FORMAT,
// MISSING_COLUMN, EMPTY_RESULT, VALIDATION) so handlers can map them onto
// problem details without inspecting messages.
package services
