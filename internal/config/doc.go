// Package config loads the demand forecasting service configuration.
//
// # Configuration Sources
//
// Values are resolved in three layers, later layers winning:
//
//  1. Default()
//  2. A YAML file: $DEMAND_CONFIG, else config.yaml or configs/config.yaml
//  3. Environment variables prefixed with DEMAND_
//
// # Environment Variables
//
// Nested sections join their names with underscores:
//
//	DEMAND_SERVER_PORT=8080
//	DEMAND_LOGGING_LEVEL=debug
//	DEMAND_FORECAST_DEFAULT_HORIZON=18
//	DEMAND_FORECAST_FACTORS_SEASONALITY=0.3
//	DEMAND_FORECAST_SEED=42
//	DEMAND_TELEMETRY_TRACE_EXPORTER=stdout
//
// # YAML
//
//	server:
//	  port: 9090
//	forecast:
//	  default_horizon: 12
//	  factors:
//	    seasonality: 0.2
//	    trend: 0.05
//	    noise: 0.1
//	  test_periods: 6
//
// Load validates the merged result and returns an error describing the first
// invalid value.
package config
