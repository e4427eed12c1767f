// Package http implements the HTTP handlers of the demand forecast service.
// Handlers stay thin: they decode and validate the request, call the service
// layer and render the result, leaving every business rule to
// internal/services.
//
// # Routes
//
//	POST /api/import?preview=    CSV text, {"csv": ...} or multipart "file"
//	POST /api/import/xlsx        XLSX body or multipart "file"
//	POST /api/normalize          {points, by_category}
//	POST /api/forecast           {history, horizon, factors}
//	POST /api/accuracy           {history, forecast, periods, factors}
//	POST /api/run                {csv, horizon, factors, test_periods, test_factors}
//	GET  /api/sample?months=     synthetic category histories
//	POST /api/export/csv         dataset or merged forecast CSV
//	POST /api/export/xlsx        History, Forecast and Accuracy sheets
//	POST /api/logs               browser log forwarding
//	GET  /api/health[/ready|/live], /api/version, /metrics
//
// # Handler Structure
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    var req api.SomethingRequest
//	    if err := h.validation.DecodeJSON(r, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    result, err := h.service.DoSomething(r.Context(), req)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//	    render.JSON(w, r, result)
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/dataset/missing-column",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "missing required 'value' column",
//	    "instance": "/api/import",
//	    "trace_id": "5b1c..."
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// ForecastServiceInterface, or the real service where the full pipeline matters.
package http
