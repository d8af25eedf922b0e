package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"vitrine/models"
)

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, map[string]string{"error": msg})
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// SendEnvelope writes the standard {data, message} success envelope.
func SendEnvelope(w http.ResponseWriter, statusCode int, data any, message string) {
	RespondWithJSON(w, statusCode, map[string]any{
		"data":    data,
		"message": message,
	})
}

// SendList writes a list response with the pagination envelope.
func SendList(w http.ResponseWriter, data any, p Pagination) {
	RespondWithJSON(w, http.StatusOK, map[string]any{
		"data":       data,
		"pagination": p,
	})
}

// StatusForError maps the shared error kinds onto HTTP statuses.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrOutOfStock),
		errors.Is(err, models.ErrEmptyCart),
		errors.Is(err, models.ErrCouponInactive),
		errors.Is(err, models.ErrCouponExpired),
		errors.Is(err, models.ErrCouponExhausted),
		errors.Is(err, models.ErrBadSignature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps a service error onto the wire format.
func RespondError(w http.ResponseWriter, err error) {
	RespondWithError(w, StatusForError(err), err.Error())
}

type M map[string]interface{}
