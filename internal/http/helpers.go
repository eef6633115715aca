package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"studiodesk/internal/core"
	"studiodesk/internal/log"
)

// errorBody is the wire shape of every error this API returns.
type errorBody struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

// respondServiceError maps a service error onto the wire. Validation and
// confirmation failures carry their message to the caller; anything else is
// an opaque 500 with the detail kept server-side.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsValidationError(err) || errors.Is(err, core.ErrBadConfirmation) {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path,
		log.FieldError, err)
	respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func respondMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	respondJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
}

// decodeJSON reads a request body into dst. The body is closed by the
// server; a 1 MiB cap keeps unbounded payloads out.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(dst)
}
