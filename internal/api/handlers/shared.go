package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/avdberg/fundledger/internal/apperrors"
	"github.com/avdberg/fundledger/internal/validation"
)

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON: %v", err)
		}
	}
}

// respondServiceError maps a service-layer error onto an HTTP status code and
// writes the error payload.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.Error

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrFundNotFound),
		errors.Is(err, apperrors.ErrPositionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicateFund):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInsufficientCash),
		errors.Is(err, apperrors.ErrInsufficientShares):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrPriceUnavailable):
		status = http.StatusBadGateway
	}

	respondJSON(w, status, map[string]string{"error": err.Error()})
}
