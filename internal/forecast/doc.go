// Package forecast implements the seasonal-trend projection and its back-test.
//
// # Model
//
// A forecast is a heuristic, not a trained model. From a monthly history the
// generator derives:
//
//  1. A seasonal index: twelve multipliers averaging 1.0, taken from per-month
//     means when at least 12 points exist, otherwise a fixed shape peaking in
//     November and December.
//  2. An amplified index: each deviation from 1.0 is scaled by 1+3*seasonality.
//  3. A base: the mean of the last three actuals (1000 when that is zero).
//  4. A growth rate: 1+trend/100 per month, clamped to [0.9, 1.1].
//
// Step i of the horizon is round(base * index * growth^i * jitter), with jitter
// drawn uniformly from [1-noise, 1+noise).
//
// # Back-test
//
// Evaluator manufactures "actuals" by perturbing the earliest forecast points
// with percentage factors and reports MAPE, RMSE and accuracy = max(0, 100-MAPE).
//
// # Randomness
//
// All draws go through RandomSource. Production code builds one source per
// invocation from a RandomFactory; tests use FixedSource or SequenceSource:
//
//	gen := forecast.NewGenerator(forecast.FixedSource(0.5), logger)
//	points := gen.Generate(ctx, history, 12, nil)
//
// With FixedSource(0.5) the jitter is exactly 1 and projections are
// reproducible to the unit.
package forecast
