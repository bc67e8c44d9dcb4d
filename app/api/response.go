package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/slicehouse/catalog-service/models"
)

// OKResponse writes data as JSON with the given status.
func OKResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse writes {"error": message}.
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	OKResponse(w, status, map[string]string{"error": message})
}

// StatusFor maps domain errors to HTTP status codes. Anything unrecognised,
// storage failures included, is an internal error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrOutOfStock), errors.Is(err, models.ErrDuplicateSku):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes err with the status from StatusFor. Internal errors are
// replaced by fallback so driver details do not leak to clients.
func DomainError(w http.ResponseWriter, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		ErrorResponse(w, status, fallback)
		return
	}
	ErrorResponse(w, status, err.Error())
}
