package http

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "demandcast/internal/errors"
	"demandcast/internal/middleware"
	"demandcast/internal/services"
	api "demandcast/pkg/contracts/api/v1"
)

// maxSampleMonths bounds GET /api/sample
const maxSampleMonths = 120

// ForecastHandler exposes the forecasting pipeline over HTTP
type ForecastHandler struct {
	service      ForecastServiceInterface
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(service ForecastServiceInterface, validation *middleware.ValidationMiddleware, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ForecastHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ForecastHandler{
		service:      service,
		validation:   validation,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "forecast_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the pipeline routes
func (h *ForecastHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/import", h.Import)
	r.Post("/import/xlsx", h.ImportWorkbook)
	r.Post("/normalize", h.Normalize)
	r.Post("/forecast", h.Forecast)
	r.Post("/accuracy", h.Accuracy)
	r.Post("/run", h.Run)
	r.Get("/sample", h.Sample)

	return r
}

// Import handles POST /api/import?preview=true|false.
// The body is CSV text, a JSON {"csv": "..."} document or a multipart upload
// with a "file" field.
func (h *ForecastHandler) Import(w http.ResponseWriter, r *http.Request) {
	preview, ok := h.query.ValidateBool(w, r, "preview", false)
	if !ok {
		return
	}

	text, err := h.readCSV(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Import(r.Context(), text, preview)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, newImportResponse(result, preview))
}

// ImportWorkbook handles POST /api/import/xlsx with a raw XLSX body or a
// multipart upload
func (h *ForecastHandler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	preview, ok := h.query.ValidateBool(w, r, "preview", false)
	if !ok {
		return
	}

	body, closeBody, err := h.upload(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer closeBody()

	result, err := h.service.ImportWorkbook(r.Context(), body, preview)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, newImportResponse(result, preview))
}

// Normalize handles POST /api/normalize
func (h *ForecastHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req api.NormalizeRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	normalize := h.service.Normalize
	if req.ByCategory {
		normalize = h.service.NormalizeByCategory
	}
	points := normalize(r.Context(), req.Points)

	render.JSON(w, r, SeriesResponse{Points: points})
}

// Forecast handles POST /api/forecast
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	var req api.ForecastRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	points, err := h.service.Forecast(r.Context(), req.History, req.Horizon, req.Factors)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, ForecastResponse{Forecast: points})
}

// Accuracy handles POST /api/accuracy
func (h *ForecastHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	var req api.AccuracyRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, report := h.service.Evaluate(r.Context(), req.History, req.Forecast, req.Periods, req.Factors)
	render.JSON(w, r, AccuracyResponse{Accuracy: result, Backtest: report})
}

// Run handles POST /api/run
func (h *ForecastHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req api.RunRequest
	if err := h.validation.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	run, err := h.service.Run(r.Context(), services.RunOptions{
		CSV:         req.CSV,
		Horizon:     req.Horizon,
		Factors:     req.Factors,
		TestPeriods: req.TestPeriods,
		TestFactors: req.TestFactors,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "run served",
		slog.String("run_id", run.RunID),
		slog.Int("forecast", len(run.Forecast)))
	render.JSON(w, r, run)
}

// Sample handles GET /api/sample?months=24
func (h *ForecastHandler) Sample(w http.ResponseWriter, r *http.Request) {
	months, ok := h.query.ValidateInt(w, r, "months", 1, maxSampleMonths, 0)
	if !ok {
		return
	}

	render.JSON(w, r, SampleResponse{Categories: h.service.Sample(r.Context(), months)})
}

// readCSV extracts CSV text from any of the accepted body encodings
func (h *ForecastHandler) readCSV(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req api.ImportRequest
		if err := h.validation.DecodeJSON(r, &req); err != nil {
			return "", err
		}
		return req.CSV, nil
	}

	body, closeBody, err := h.upload(r)
	if err != nil {
		return "", err
	}
	defer closeBody()

	text, err := io.ReadAll(body)
	if err != nil {
		return "", apierrors.InvalidRequestWithError(err)
	}
	return string(text), nil
}

// upload returns the uploaded file of a multipart request, or the raw body
func (h *ForecastHandler) upload(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apierrors.ErrValidation("file", "multipart upload must carry a file field")
	}

	h.logger.DebugContext(r.Context(), "multipart upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))
	return file, func() { file.Close() }, nil
}
