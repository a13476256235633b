package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/analytics"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/inventory"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/report"
	"github.com/rogerio-castellano/pharmacy-dashboard/internal/repo"
	"go.uber.org/zap"
)

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// writeError maps domain errors to status codes. Validation errors are sent
// as a JSON list of field errors.
func writeError(w http.ResponseWriter, err error, action string) {
	var verr inventory.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusBadRequest, verr)
	case errors.Is(err, analytics.ErrInvalidRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, repo.ErrProductNotFound), errors.Is(err, report.ErrUnknownEntity):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, inventory.ErrInsufficientStock), errors.Is(err, repo.ErrDuplicatedValueUnique):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logger.Error("could not "+action, zap.Error(err))
		http.Error(w, "could not "+action, http.StatusInternalServerError)
	}
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid product ID")
	}
	return id, nil
}

// parseDate accepts YYYY-MM-DD or RFC3339. A date-only value is the start
// of that day, or its last instant when endOfDay is set.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, nil
}

// parseDateRange reads start and end from the query string. Both are
// required when either is given; a nil range means the default window.
func parseDateRange(r *http.Request) (*analytics.DateRange, error) {
	q := r.URL.Query()
	startStr, endStr := q.Get("start"), q.Get("end")
	if startStr == "" && endStr == "" {
		return nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, errors.New("start and end must be given together")
	}

	start, err := parseDate(startStr, false)
	if err != nil {
		return nil, err
	}
	end, err := parseDate(endStr, true)
	if err != nil {
		return nil, err
	}
	dr := analytics.DateRange{Start: start, End: end}
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	return &dr, nil
}
