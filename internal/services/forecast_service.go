package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"demandcast/internal/config"
	"demandcast/internal/dataimport"
	apperrors "demandcast/internal/errors"
	"demandcast/internal/forecast"
	"demandcast/internal/infrastructure"
	"demandcast/internal/timeseries"
	"demandcast/pkg/contracts/domain"
)

// Pipeline stage names used for spans, timings and metrics
const (
	StageImport    = "import"
	StageNormalize = "normalize"
	StageForecast  = "forecast"
	StageEvaluate  = "evaluate"
)

// ForecastService wires importer, normalizer, generator and back-test
// together for the HTTP handlers and the CLI
type ForecastService struct {
	cfg      config.ForecastConfig
	importer *dataimport.Importer
	random   forecast.RandomFactory
	tracer   trace.Tracer
	metrics  *infrastructure.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
}

// ForecastServiceOption customizes a ForecastService
type ForecastServiceOption func(*ForecastService)

// WithRandomFactory replaces the configured random source factory
func WithRandomFactory(f forecast.RandomFactory) ForecastServiceOption {
	return func(s *ForecastService) {
		s.random = f
	}
}

// WithTelemetry attaches a tracer and the business metrics
func WithTelemetry(tracer trace.Tracer, metrics *infrastructure.BusinessMetrics) ForecastServiceOption {
	return func(s *ForecastService) {
		if tracer != nil {
			s.tracer = tracer
		}
		s.metrics = metrics
	}
}

// WithClock replaces time.Now for sample generation
func WithClock(now func() time.Time) ForecastServiceOption {
	return func(s *ForecastService) {
		s.now = now
	}
}

// NewForecastService creates the pipeline service
func NewForecastService(cfg config.ForecastConfig, logger *slog.Logger, opts ...ForecastServiceOption) *ForecastService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "forecast"))

	s := &ForecastService{
		cfg:      cfg,
		importer: dataimport.NewImporter(logger, nil),
		random:   forecast.SeededFactory(cfg.Seed),
		tracer:   otel.Tracer(infrastructure.MeterName),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	logger.Info("ForecastService initialized",
		slog.Int("default_horizon", cfg.DefaultHorizon),
		slog.Int("max_horizon", cfg.MaxHorizon),
		slog.Int("max_concurrency", cfg.MaxConcurrency),
		slog.Bool("seeded", cfg.Seed != 0))

	return s
}

// Import parses CSV text. Document-level failures are returned as the
// error and are also present on the result.
func (s *ForecastService) Import(ctx context.Context, text string, previewOnly bool) (dataimport.ParseResult, error) {
	ctx, span := s.startSpan(ctx, "import.csv",
		attribute.Int("import.bytes", len(text)),
		attribute.Bool("import.preview", previewOnly))
	defer span.End()

	start := time.Now()
	result := s.importer.Parse(ctx, text, previewOnly)
	s.finishImport(ctx, "csv", result, start)
	return result, result.Err
}

// ImportWorkbook parses the first sheet of an XLSX workbook
func (s *ForecastService) ImportWorkbook(ctx context.Context, r io.Reader, previewOnly bool) (dataimport.ParseResult, error) {
	ctx, span := s.startSpan(ctx, "import.xlsx", attribute.Bool("import.preview", previewOnly))
	defer span.End()

	start := time.Now()
	result := s.importer.ParseWorkbook(ctx, r, previewOnly)
	s.finishImport(ctx, "xlsx", result, start)
	return result, result.Err
}

func (s *ForecastService) finishImport(ctx context.Context, source string, result dataimport.ParseResult, start time.Time) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("import.points", len(result.Data)),
		attribute.Int("import.skipped", len(result.Skipped)),
	)
	infrastructure.RecordError(ctx, result.Err)
	infrastructure.RecordImportMetrics(ctx, s.metrics, source, len(result.Data), len(result.Skipped))
	infrastructure.RecordStageMetrics(ctx, s.metrics, StageImport, time.Since(start), result.Err)

	if result.Err != nil {
		s.logger.WarnContext(ctx, "import failed",
			slog.String("source", source),
			slog.String("error", result.Err.Error()))
		return
	}
	s.logger.InfoContext(ctx, "import completed",
		slog.String("source", source),
		slog.Int("points", len(result.Data)),
		slog.Int("skipped", len(result.Skipped)))
}

// Normalize puts points on a monthly cadence as one series
func (s *ForecastService) Normalize(ctx context.Context, points []domain.DataPoint) []domain.DataPoint {
	ctx, span := s.startSpan(ctx, StageNormalize, attribute.Int("normalize.input", len(points)))
	defer span.End()

	start := time.Now()
	series := timeseries.Normalize(points)
	span.SetAttributes(attribute.Int("normalize.output", len(series)))
	infrastructure.RecordStageMetrics(ctx, s.metrics, StageNormalize, time.Since(start), nil)
	return series
}

// NormalizeByCategory normalizes every category on its own and returns the
// series concatenated in category-name order
func (s *ForecastService) NormalizeByCategory(ctx context.Context, points []domain.DataPoint) []domain.DataPoint {
	ctx, span := s.startSpan(ctx, StageNormalize,
		attribute.Int("normalize.input", len(points)),
		attribute.Bool("normalize.by_category", true))
	defer span.End()

	start := time.Now()
	groups := timeseries.NormalizeByCategory(points)
	var series []domain.DataPoint
	for _, name := range timeseries.Categories(groups) {
		series = append(series, groups[name]...)
	}
	if series == nil {
		series = []domain.DataPoint{}
	}

	span.SetAttributes(
		attribute.Int("normalize.output", len(series)),
		attribute.Int("normalize.categories", len(groups)))
	infrastructure.RecordStageMetrics(ctx, s.metrics, StageNormalize, time.Since(start), nil)
	return series
}

// ResolveHorizon applies the configured default to 0 and rejects values
// outside 1..MaxHorizon
func (s *ForecastService) ResolveHorizon(horizon int) (int, error) {
	if horizon == 0 {
		horizon = s.cfg.DefaultHorizon
	}
	if horizon < 1 || (s.cfg.MaxHorizon > 0 && horizon > s.cfg.MaxHorizon) {
		return 0, apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("horizon must be between 1 and %d", s.cfg.MaxHorizon), ErrHorizonOutOfRange).
			WithContext("horizon", horizon)
	}
	return horizon, nil
}

// Forecast projects every category of history horizon months ahead.
// Each category is normalized and projected independently, at most
// MaxConcurrency at a time; points without a category form one group.
// The result is ordered by category name, then date.
func (s *ForecastService) Forecast(ctx context.Context, history []domain.DataPoint, horizon int, overrides *domain.FactorOverrides) ([]domain.DataPoint, error) {
	ctx, span := s.startSpan(ctx, StageForecast,
		attribute.Int("forecast.history", len(history)),
		attribute.Int("forecast.horizon", horizon))
	defer span.End()

	start := time.Now()
	points, err := s.forecast(ctx, history, horizon, overrides)
	infrastructure.RecordError(ctx, err)
	infrastructure.RecordStageMetrics(ctx, s.metrics, StageForecast, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("forecast.points", len(points)))
	return points, nil
}

func (s *ForecastService) forecast(ctx context.Context, history []domain.DataPoint, horizon int, overrides *domain.FactorOverrides) ([]domain.DataPoint, error) {
	horizon, err := s.ResolveHorizon(horizon)
	if err != nil {
		return nil, err
	}
	factors := overrides.WithDefaults(s.cfg.Factors)

	groups := timeseries.NormalizeByCategory(history)
	names := timeseries.Categories(groups)
	results := make([][]domain.DataPoint, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.cfg.MaxConcurrency))
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			gen := forecast.NewGenerator(s.random(), s.logger)
			results[i] = gen.Generate(gctx, groups[name], horizon, &factors)
			infrastructure.RecordForecastMetrics(gctx, s.metrics, name, len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("forecast cancelled: %w", err)
	}

	out := make([]domain.DataPoint, 0, len(names)*horizon)
	for _, r := range results {
		out = append(out, r...)
	}

	s.logger.InfoContext(ctx, "forecast generated",
		slog.Int("categories", len(names)),
		slog.Int("horizon", horizon),
		slog.Int("points", len(out)))
	return out, nil
}

// Evaluate back-tests forecast against synthetic actuals. A zero periods
// selects the configured test window; factors are percentages.
func (s *ForecastService) Evaluate(ctx context.Context, history, forecastPoints []domain.DataPoint, periods int, overrides *domain.FactorOverrides) (domain.AccuracyResult, forecast.BacktestReport) {
	if periods == 0 {
		periods = s.cfg.TestPeriods
	}
	ctx, span := s.startSpan(ctx, StageEvaluate,
		attribute.Int("backtest.forecast", len(forecastPoints)),
		attribute.Int("backtest.periods", periods))
	defer span.End()

	start := time.Now()
	factors := overrides.WithDefaults(s.cfg.TestFactors)
	result, report := forecast.NewEvaluator(s.random(), s.logger).
		Evaluate(ctx, history, forecastPoints, periods, factors)

	span.SetAttributes(
		attribute.Float64("backtest.mape", result.MAPE),
		attribute.Float64("backtest.rmse", result.RMSE),
		attribute.Bool("backtest.degenerate", report.Degenerate))
	infrastructure.RecordBacktestMetrics(ctx, s.metrics, result.MAPE, report.Degenerate)
	infrastructure.RecordStageMetrics(ctx, s.metrics, StageEvaluate, time.Since(start), nil)
	return result, report
}

// Sample returns synthetic per-category demand histories. Zero months
// selects the configured sample length.
func (s *ForecastService) Sample(ctx context.Context, months int) []domain.CategoryData {
	if months == 0 {
		months = s.cfg.SampleMonths
	}
	ctx, span := s.startSpan(ctx, "sample", attribute.Int("sample.months", months))
	defer span.End()

	return forecast.NewSampleGenerator(s.random(), s.logger).Categories(ctx, months, s.now())
}

// RunOptions configures a full pipeline run. CSV takes precedence over Data.
// Skipped reports rows a caller dropped while parsing Data itself.
type RunOptions struct {
	CSV         string
	Data        []domain.DataPoint
	Skipped     []dataimport.RowIssue
	Horizon     int
	Factors     *domain.FactorOverrides
	TestPeriods int
	TestFactors *domain.FactorOverrides
}

// StageTiming is the wall time one pipeline stage took
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration_ns"`
}

// RunResult is everything a pipeline run produced
type RunResult struct {
	RunID     string                  `json:"run_id"`
	StartedAt time.Time               `json:"started_at"`
	Skipped   []dataimport.RowIssue   `json:"skipped,omitempty"`
	History   []domain.DataPoint      `json:"history"`
	Forecast  []domain.DataPoint      `json:"forecast"`
	Accuracy  domain.AccuracyResult   `json:"accuracy"`
	Backtest  forecast.BacktestReport `json:"backtest"`
	Timings   []StageTiming           `json:"timings"`
}

// Run imports, normalizes, forecasts and back-tests in one call
func (s *ForecastService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	run := &RunResult{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}

	ctx, span := s.startSpan(ctx, "run", attribute.String("run.id", run.RunID))
	defer span.End()

	infrastructure.RecordActiveRunChange(ctx, s.metrics, 1)
	defer infrastructure.RecordActiveRunChange(ctx, s.metrics, -1)

	logger := s.logger.With(slog.String("run_id", run.RunID))
	logger.InfoContext(ctx, "pipeline run started")

	data := opts.Data
	run.Skipped = opts.Skipped
	if opts.CSV != "" {
		var result dataimport.ParseResult
		err := run.timed(StageImport, func() error {
			var err error
			result, err = s.Import(ctx, opts.CSV, false)
			return err
		})
		if err != nil {
			infrastructure.RecordError(ctx, err)
			return nil, err
		}
		data = result.Data
		run.Skipped = result.Skipped
	}
	if len(data) == 0 {
		err := apperrors.NewAppError(apperrors.ErrTypeValidation, "run needs csv text or data points", ErrNoInput)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	run.timed(StageNormalize, func() error {
		run.History = s.NormalizeByCategory(ctx, data)
		return nil
	})
	if len(run.History) == 0 {
		err := apperrors.NewAppError(apperrors.ErrTypeValidation, "no point carries a valid date", ErrNoHistory)
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	err := run.timed(StageForecast, func() error {
		var err error
		run.Forecast, err = s.Forecast(ctx, run.History, opts.Horizon, opts.Factors)
		return err
	})
	if err != nil {
		return nil, err
	}

	run.timed(StageEvaluate, func() error {
		run.Accuracy, run.Backtest = s.Evaluate(ctx, run.History, run.Forecast, opts.TestPeriods, opts.TestFactors)
		return nil
	})

	logger.InfoContext(ctx, "pipeline run completed",
		slog.Int("history", len(run.History)),
		slog.Int("forecast", len(run.Forecast)),
		slog.Float64("mape", run.Accuracy.MAPE),
		slog.Duration("elapsed", time.Since(run.StartedAt)))
	return run, nil
}

func (r *RunResult) timed(stage string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Timings = append(r.Timings, StageTiming{Stage: stage, Duration: time.Since(start)})
	return err
}

func (s *ForecastService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "forecast_service."+name, trace.WithAttributes(attrs...))
}
