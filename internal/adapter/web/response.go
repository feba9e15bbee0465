// Package web holds the HTTP plumbing shared by the menu, order and payment
// handlers: JSON bodies, the error envelope, request logging and health checks.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"restaurant-ordering/internal/logger"
	"restaurant-ordering/internal/models"
)

// ErrorResponse is the body written for every failed request
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// errUnsupportedMediaType is returned by DecodeJSON for a missing or foreign content type
var errUnsupportedMediaType = errors.New("Content-Type must be application/json")

// StatusFor maps an error from the service layer to an HTTP status code
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType
	case models.IsNotFound(err):
		return http.StatusNotFound
	case models.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as a JSON body with the given status
func WriteJSON(w http.ResponseWriter, log *logger.Logger, requestID string, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// WriteError writes the error envelope. Internal errors are logged and hidden from the client.
func WriteError(w http.ResponseWriter, log *logger.Logger, requestID string, err error) {
	statusCode := StatusFor(err)

	resp := ErrorResponse{
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}

	var ve models.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}

	if statusCode == http.StatusInternalServerError {
		log.Error("request_failed", "Internal server error", requestID, err, nil)
		resp.Error = "Internal server error"
	}

	WriteJSON(w, log, requestID, statusCode, resp)
}
