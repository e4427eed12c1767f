// Command forecast runs the import, normalize, forecast and back-test
// pipeline over a CSV or XLSX file and prints the projected months.
//
//	forecast -in sales.csv -horizon 6 -seed 42 -out forecast.csv -xlsx report.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"demandcast/internal/config"
	"demandcast/internal/exporter"
	"demandcast/internal/infrastructure"
	"demandcast/internal/services"
	"demandcast/internal/validation"
	"demandcast/pkg/contracts/domain"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("forecast failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type options struct {
	configPath  string
	in          string
	sample      int
	horizon     int
	testPeriods int
	seed        uint64
	out         string
	xlsx        string
	verbose     bool
	overrides   *domain.FactorOverrides
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "config file (defaults to $DEMAND_CONFIG or ./config.yaml)")
	fs.StringVar(&opts.in, "in", "", "input .csv or .xlsx file")
	fs.IntVar(&opts.sample, "sample", 0, "generate this many months of sample data instead of reading -in")
	fs.IntVar(&opts.horizon, "horizon", 0, "months to project (0 uses the configured default)")
	fs.IntVar(&opts.testPeriods, "test-periods", 0, "back-test periods (0 uses the configured default)")
	fs.Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible output (0 seeds from the clock)")
	fs.StringVar(&opts.out, "out", "", "write the merged history and forecast CSV here")
	fs.StringVar(&opts.xlsx, "xlsx", "", "write an XLSX report here")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging on stderr")
	seasonality := fs.Float64("seasonality", 0, "seasonality factor override (0-100)")
	trend := fs.Float64("trend", 0, "trend factor override (-100-100)")
	noise := fs.Float64("noise", 0, "noise factor override (0-100)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Only flags given on the command line override the configured factors
	fs.Visit(func(f *flag.Flag) {
		if opts.overrides == nil && (f.Name == "seasonality" || f.Name == "trend" || f.Name == "noise") {
			opts.overrides = &domain.FactorOverrides{}
		}
		switch f.Name {
		case "seasonality":
			opts.overrides.Seasonality = seasonality
		case "trend":
			opts.overrides.Trend = trend
		case "noise":
			opts.overrides.Noise = noise
		}
	})

	if opts.in == "" && opts.sample <= 0 {
		return nil, fmt.Errorf("one of -in or -sample is required")
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.configPath == "" {
		opts.configPath = os.Getenv(config.ConfigFileEnv)
	}
	cfg, err := config.LoadFile(opts.configPath)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Forecast.Seed = opts.seed
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := infrastructure.NewJSONLogger(stderr, &slog.HandlerOptions{Level: level})

	files := validation.NewFileValidator(cfg.Server.MaxUploadBytes, logger)
	for _, path := range []string{opts.out, opts.xlsx} {
		if path == "" {
			continue
		}
		if err := files.ValidateOutputFile(path); err != nil {
			return err
		}
	}

	service := services.NewForecastService(cfg.Forecast, logger)

	runOpts := services.RunOptions{
		Horizon:     opts.horizon,
		Factors:     opts.overrides,
		TestPeriods: opts.testPeriods,
	}
	if err := loadInput(ctx, service, files, opts, &runOpts); err != nil {
		return err
	}

	result, err := service.Run(ctx, runOpts)
	if err != nil {
		return err
	}

	if err := printReport(stdout, result); err != nil {
		return err
	}

	if opts.out != "" {
		if err := exporter.WriteFile(opts.out, func(w io.Writer) error {
			return exporter.WriteForecastCSV(w, result.History, result.Forecast)
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.out, err)
		}
		fmt.Fprintf(stdout, "\nwrote %s\n", opts.out)
	}

	if opts.xlsx != "" {
		if err := exporter.WriteFile(opts.xlsx, func(w io.Writer) error {
			return exporter.WriteWorkbook(w, exporter.WorkbookReport{
				History:  result.History,
				Forecast: result.Forecast,
				Accuracy: &result.Accuracy,
				Backtest: result.Backtest.Points,
			})
		}); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.xlsx, err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.xlsx)
	}

	return nil
}

// loadInput fills runOpts from -sample, an XLSX workbook or CSV text
func loadInput(ctx context.Context, service *services.ForecastService, files *validation.FileValidator, opts *options, runOpts *services.RunOptions) error {
	if opts.in == "" {
		for _, category := range service.Sample(ctx, opts.sample) {
			runOpts.Data = append(runOpts.Data, category.Data...)
		}
		return nil
	}

	kind, err := files.ValidateInputFile(opts.in)
	if err != nil {
		return err
	}

	switch kind {
	case validation.InputWorkbook:
		f, err := os.Open(opts.in)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()

		parsed, err := service.ImportWorkbook(ctx, f, false)
		if err != nil {
			return err
		}
		runOpts.Data = parsed.Data
		runOpts.Skipped = parsed.Skipped
	default:
		data, err := os.ReadFile(opts.in)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		runOpts.CSV = string(data)
	}
	return nil
}

// printReport writes the projected months per category and the accuracy summary
func printReport(w io.Writer, result *services.RunResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Month\tCategory\tForecast\t\n")
	for _, p := range result.Forecast {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", exporter.FormatMonth(p.Date), p.Category, exporter.FormatNumber(p.Forecast))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nhistory points: %d, skipped rows: %d\n", len(result.History), len(result.Skipped))
	if result.Backtest.Degenerate {
		fmt.Fprintln(w, "accuracy: not enough usable back-test points")
		return nil
	}
	_, err := fmt.Fprintf(w, "accuracy: %.2f%% (MAPE %.2f%%, RMSE %.2f)\n",
		result.Accuracy.Accuracy, result.Accuracy.MAPE, result.Accuracy.RMSE)
	return err
}
