package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tally/internal/core"
	"tally/internal/log"
)

const maxBodyBytes = 64 << 10

var (
	errInvalidJSON  = errors.New("invalid JSON")
	errBodyTooLarge = errors.New("request body too large")
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError maps domain errors to status codes. Unknown errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed"})
	case errors.Is(err, errInvalidJSON):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid JSON"})
	case errors.Is(err, errBodyTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Request body too large"})
	case errors.Is(err, core.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, core.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Forbidden"})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// decodeJSON reads a single JSON document of at most maxBodyBytes into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("%w: %v", errInvalidJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errInvalidJSON
	}
	return nil
}

// queryInt reads an optional integer query parameter; ok is false when it is absent.
func queryInt(r *http.Request, name string, verr *core.ValidationError) (value int, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(name, "must be an integer")
		return 0, false
	}
	return v, true
}

// requiredYearMonth reads the year and month query parameters, both mandatory.
func requiredYearMonth(r *http.Request) (year, month int, err error) {
	verr := &core.ValidationError{}
	year, hasYear := queryInt(r, "year", verr)
	month, hasMonth := queryInt(r, "month", verr)
	if !hasYear {
		verr.Add("year", "is required")
	}
	if !hasMonth {
		verr.Add("month", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}
