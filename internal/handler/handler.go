package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code.
func writeError(w http.ResponseWriter, r *http.Request, status int, resp model.ErrorResponse, logger zerolog.Logger) {
	resp.CorrelationID = middleware.RequestIDFromContext(r.Context())
	if resp.Error == "" {
		resp.Error = http.StatusText(status)
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", resp.Code).
		Str("message", resp.Message).
		Int("status", status).
		Str("request_id", resp.CorrelationID).
		Msg("handler error")

	writeJSON(w, status, resp)
}

// domainStatus maps domain error codes to HTTP statuses.
var domainStatus = map[string]int{
	model.ErrCodeInvalidStatus:      http.StatusBadRequest,
	model.ErrCodeTerminalStatus:     http.StatusConflict,
	model.ErrCodeVoucherCodeTaken:   http.StatusConflict,
	model.ErrCodeVoucherInUse:       http.StatusConflict,
	model.ErrCodeVoucherExhausted:   http.StatusUnprocessableEntity,
	model.ErrCodeVoucherAlreadyUsed: http.StatusUnprocessableEntity,
	model.ErrCodeVoucherInvalid:     http.StatusUnprocessableEntity,
	model.ErrCodeInsufficientStock:  http.StatusUnprocessableEntity,
	model.ErrCodeAddressInUse:       http.StatusConflict,
	model.ErrCodeUnauthorised:       http.StatusUnauthorized,
	model.ErrCodeForbidden:          http.StatusForbidden,
}

// writeServiceError maps a service error onto an HTTP response. Errors of
// unknown kind become a generic 500 and are logged with their cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var (
		verr *model.ValidationError
		nf   *model.NotFoundError
		derr *model.DomainError
	)
	switch {
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Code:    verr.Code,
			Message: verr.Message,
			Fields:  verr.Fields,
			IDs:     verr.IDs,
		}, logger)
	case errors.As(err, &nf):
		writeError(w, r, http.StatusNotFound, model.ErrorResponse{
			Code:    model.ErrCodeNotFound,
			Message: nf.Error(),
		}, logger)
	case errors.As(err, &derr):
		status, ok := domainStatus[derr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeError(w, r, status, model.ErrorResponse{Code: derr.Code, Message: derr.Message}, logger)
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, model.ErrorResponse{
			Code:    model.ErrCodeInternalError,
			Message: "internal server error",
		}, logger)
	}
}

// decodeJSON decodes the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Code:    model.ErrCodeInvalidJSON,
			Message: "invalid request body",
		}, logger)
		return false
	}
	return true
}

// requireUser returns the authenticated user id or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrorResponse{
			Code:    model.ErrCodeUnauthorised,
			Message: "user id is required",
		}, logger)
	}
	return id, ok
}

// pathID parses a positive integer path parameter or answers 400.
func pathID(w http.ResponseWriter, r *http.Request, name string, logger zerolog.Logger) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrorResponse{
			Code:    model.ErrCodeValidation,
			Message: "invalid " + name,
			Fields:  []string{name},
		}, logger)
		return 0, false
	}
	return id, true
}
