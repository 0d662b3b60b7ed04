package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or WriteError, so every error
// response has the same shape:
//
//	{"error": "token invalid"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/bloglist/internal/apperror"
)

// maxBodyBytes caps request bodies. Blog and credential payloads are tiny.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends data as JSON with the given status.
// Headers must be set before WriteHeader; anything set after is dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// statusFor maps a domain error to an HTTP status. errors.Is walks the
// Unwrap chain, so wrapped AppErrors map the same as bare ones.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// WriteError maps err to a status and writes {"error": message}.
//
// Errors that carry no *apperror.AppError are answered with a generic 500.
// Their detail goes to the log only: it may contain SQL or file paths.
// It has the auth.ErrorWriter signature so the auth middleware can use it.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := statusFor(err)
		if status != http.StatusInternalServerError {
			writeJSON(w, status, ErrorResponse{Error: appErr.Message})
			return
		}
	}

	slog.ErrorContext(r.Context(), "unhandled error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// decodeJSON reads a single JSON value from the request body into dst.
// The returned error is the decoder's; callers log it and answer with
// writeMalformedBody.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second value means the body was not one JSON document.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

var errTrailingData = errors.New("trailing data after JSON value")

// writeMalformedBody logs the decoder error and answers 400.
func writeMalformedBody(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Warn("invalid JSON body",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	WriteError(w, r, apperror.ValidationFailed("body", "malformed JSON body"))
}

// HandleUnknownEndpoint answers requests no route matched.
func HandleUnknownEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown endpoint"})
}
