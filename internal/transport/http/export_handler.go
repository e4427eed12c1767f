package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "demandcast/internal/errors"
	"demandcast/internal/exporter"
	"demandcast/internal/middleware"
	api "demandcast/pkg/contracts/api/v1"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler turns series posted by the client into downloadable files
type ExportHandler struct {
	validation   *middleware.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		validation:   validation,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/csv", h.ExportCSV)
	r.Post("/xlsx", h.ExportWorkbook)
	return r
}

// ExportCSV handles POST /api/export/csv. Kind "dataset" writes the
// training dataset of history, "forecast" the merged history and forecast
// table. Without a kind, a request carrying forecast points gets the merged table.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = "dataset"
		if len(req.Forecast) > 0 {
			kind = "forecast"
		}
	}

	h.send(w, r, contentTypeCSV, kind+".csv", func(out io.Writer) error {
		if kind == "dataset" {
			return exporter.WriteDatasetCSV(out, req.History)
		}
		return exporter.WriteForecastCSV(out, req.History, req.Forecast)
	})
}

// ExportWorkbook handles POST /api/export/xlsx
func (h *ExportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.send(w, r, contentTypeXLSX, "forecast.xlsx", func(out io.Writer) error {
		return exporter.WriteWorkbook(out, exporter.WorkbookReport{
			History:  req.History,
			Forecast: req.Forecast,
			Accuracy: req.Accuracy,
		})
	})
}

// send renders into memory first so a failed export still gets a problem
// response instead of a truncated file
func (h *ExportHandler) send(w http.ResponseWriter, r *http.Request, contentType, filename string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.NewAppError(apierrors.ErrTypeInternal, "export failed", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write interrupted",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}
