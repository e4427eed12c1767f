// Package shared holds helpers used by more than one package that belong to
// no single layer.
//
// The testutil subpackage provides BufferedSlogHandler, an slog.Handler that
// records log output so tests can assert on messages and attributes:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewForecastService(cfg, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelInfo, "forecast generated")
package shared
