package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// InputKind is the importer an input file is routed to
type InputKind string

const (
	InputCSV      InputKind = "csv"
	InputWorkbook InputKind = "xlsx"
)

var inputKinds = map[string]InputKind{
	".csv":  InputCSV,
	".txt":  InputCSV,
	".tsv":  InputCSV,
	".xlsx": InputWorkbook,
	".xlsm": InputWorkbook,
}

// FileValidator checks the files the forecast CLI reads and writes
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a validator rejecting inputs larger than maxBytes.
// maxBytes <= 0 disables the size check.
func NewFileValidator(maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ValidateInputFile checks that path is a readable regular file of a supported
// type and size, and reports which importer it belongs to
func (v *FileValidator) ValidateInputFile(path string) (InputKind, error) {
	kind, ok := inputKinds[strings.ToLower(filepath.Ext(path))]
	if !ok {
		v.logger.Error("Unsupported input file type", slog.String("file", path))
		return "", fmt.Errorf("unsupported input file %s: expected .csv or .xlsx", path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return "", fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file", slog.String("path", path))
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Error("Input file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_bytes", v.maxBytes))
		return "", fmt.Errorf("file %s is %d bytes, limit is %d", path, info.Size(), v.maxBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.String("kind", string(kind)),
		slog.Int64("size", info.Size()))
	return kind, nil
}

// ValidateOutputFile ensures the directory of path exists and is writable,
// and that path itself is not a directory
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return nil
}
