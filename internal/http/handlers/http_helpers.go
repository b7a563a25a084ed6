package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rogerio-castellano/inventory-app/internal/db"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
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
		return fmt.Errorf("failed to marshal JSON: %w", err)
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

func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		h.log.WithError(err).WithField("path", r.URL.Path).Warn("failed to write response")
	}
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid product ID")
	}
	return id, nil
}

// writeRepoError maps repository and storage errors onto HTTP statuses.
// Validation failures are the caller's fault and are not logged.
func (h *Handlers) writeRepoError(w http.ResponseWriter, r *http.Request, err error, action string) {
	if ve, ok := repo.AsValidationErrors(err); ok {
		h.respond(w, r, http.StatusBadRequest, ve)
		return
	}

	switch {
	case errors.Is(err, repo.ErrProductNotFound):
		http.Error(w, "product not found", http.StatusNotFound)
	case errors.Is(err, repo.ErrQuantityBelowZero):
		http.Error(w, "quantity cannot be negative", http.StatusConflict)
	case errors.Is(err, repo.ErrQuantityOverflow):
		http.Error(w, "quantity would overflow", http.StatusConflict)
	case errors.Is(err, repo.ErrNoSelection):
		http.Error(w, "no products selected: pass a filter or all=true", http.StatusBadRequest)
	case errors.Is(err, db.ErrStorageUnavailable):
		h.log.WithError(err).WithField("path", r.URL.Path).Error("storage unavailable")
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Errorf("could not %s", action)
		http.Error(w, "could not "+action, http.StatusInternalServerError)
	}
}
