package common

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kolmo-labs/buildledger/pkg/core"
)

// Int64Param parses a chi URL parameter as an int64 identifier.
func Int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, core.ErrInvalidInput)
	}
	return id, nil
}

// Int64Query parses an optional int64 query parameter. Absent or empty
// yields nil.
func Int64Query(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, raw, core.ErrInvalidInput)
	}
	return &id, nil
}
