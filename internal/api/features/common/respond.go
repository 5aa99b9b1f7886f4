// Package common holds JSON helpers shared by the API feature packages.
package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// maxBodyBytes caps request bodies to keep malformed clients cheap.
const maxBodyBytes = 1 << 20

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w: %w", core.ErrInvalidInput, err)
	}
	return nil
}

// Error maps an error to its HTTP status and writes the JSON envelope.
// Internal errors are logged and masked.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		JSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrNotFound):
		JSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrOverAllocated):
		JSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		logger.Error("request failed", "error", err)
		JSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
