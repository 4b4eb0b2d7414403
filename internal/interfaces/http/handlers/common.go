// Package handlers contains the HTTP handlers for the API surface. Handlers
// stay thin: decode, delegate to an application service, encode.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/wealthdesk/wealthdesk/pkg/errors"
	"github.com/wealthdesk/wealthdesk/pkg/types/common"
)

// ErrorResponse is the error body: {code, message}.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps an application error to its HTTP status. Internal
// errors are masked; the original stays in the server log.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		code = errors.ErrCodeInternal
		message = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{Code: string(code), Message: message})
}

// decodeBody decodes a JSON request body into dest, rejecting unknown fields.
func decodeBody(r *http.Request, dest any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return errors.InvalidParam("malformed request body: " + err.Error())
	}
	return nil
}

// parsePagination reads page and page_size query parameters; zero means the
// service default applies.
func parsePagination(r *http.Request) (int, int) {
	page, pageSize := 0, 0
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			pageSize = ps
		}
	}
	return page, pageSize
}

// parseDateRange reads optional from/to query parameters in YYYY-MM-DD form.
// The to bound is inclusive of the named day.
func parseDateRange(r *http.Request) (common.DateRange, error) {
	var rng common.DateRange
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return rng, errors.InvalidParam("from must be in YYYY-MM-DD form")
		}
		rng.From = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return rng, errors.InvalidParam("to must be in YYYY-MM-DD form")
		}
		rng.To = t
	}
	return rng, nil
}
