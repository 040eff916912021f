package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
)

const (
	genericErrorMsg    = "An unexpected error occurred."
	productionErrorMsg = "An unexpected server error occurred."
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// RespondJSON writes payload as JSON with the given status.
func RespondJSON(w http.ResponseWriter, logger *slog.Logger, status int, payload any) {
	// Handle nil payload
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondText writes a plain text body with the given status.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// ErrorResponder turns any failure into an HTTP response.
type ErrorResponder struct {
	logger     *slog.Logger
	production bool
}

// NewErrorResponder creates an ErrorResponder. In production mode the message of
// a 500 response is replaced with a fixed generic string.
func NewErrorResponder(logger *slog.Logger, production bool) *ErrorResponder {
	return &ErrorResponder{
		logger:     logger.With("component", "error_responder"),
		production: production,
	}
}

// Respond writes the error response for err. Typed failures keep their status,
// message and details; anything else is a 500.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	body := ErrorBody{Status: "error", Message: genericErrorMsg}
	status := http.StatusInternalServerError

	if appErr, ok := apperr.As(err); ok {
		status = appErr.Status()
		body.Message = appErr.Message()
		body.Details = appErr.Details()
	} else if err != nil && err.Error() != "" {
		body.Message = err.Error()
	}

	logger := e.logger.With(
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
	)
	if status >= http.StatusInternalServerError {
		attrs := []any{"error", err}
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			attrs = append(attrs, "stack", string(panicErr.Stack))
		}
		logger.ErrorContext(r.Context(), "Request failed with server error", attrs...)
		if e.production {
			body.Message = productionErrorMsg
		}
	} else {
		logger.WarnContext(r.Context(), "Request failed", "error", err)
	}

	RespondJSON(w, logger, status, body)
}
