package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/storage"
)

var tracer = otel.Tracer("mediashare-handlers")

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondStoreError maps an internal store error onto the user-facing
// taxonomy. Raw provider detail is logged for operators, never sent to the
// client.
func respondStoreError(w http.ResponseWriter, err error, subject string) {
	log.Printf("Store error for %s: %v", subject, err)

	var validation *gallery.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, storage.ErrPermission):
		respondError(w, http.StatusForbidden, "Permission denied. Please check your storage permissions.")
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, subject+" not found. It may have been deleted already.")
	default:
		respondError(w, http.StatusInternalServerError, "Something went wrong with "+subject+". Please try again later.")
	}
}

// NotConfigured returns the handler mounted over the API when required
// credentials or endpoints are missing: every operation short-circuits with
// the same persistent condition and nothing is retried.
func NotConfigured(reason error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusServiceUnavailable, reason.Error())
	})
}
