// Package api wires SafeMail's HTTP+JSON transport on top of chi, using a
// handler-factory-per-endpoint style with a shared JSON response envelope.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"safemail/internal/domain"
	"safemail/internal/logging"
	"safemail/internal/models"
)

var validate = validator.New()

func respondJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.ErrorLog("JSON encoding failed: %v", err)
	}
}

// statusFor maps a domain.Category to its HTTP status.
func statusFor(cat domain.Category) int {
	switch cat {
	case domain.CategoryDatabase:
		return http.StatusInternalServerError
	case domain.CategoryUser:
		return http.StatusBadRequest
	case domain.CategorySession:
		return http.StatusUnauthorized
	case domain.CategoryCryptography:
		return http.StatusBadRequest
	case domain.CategoryStamp:
		return http.StatusUnauthorized
	case domain.CategoryValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a known error taxonomy onto the wire error
// envelope, special-casing the UserNotFound/UserAlreadyExists/
// InvalidCredentials codes to their own status. Stamp errors, including a
// missing or expired stamp request, stay on the Stamp category's default
// (401) — there is no 404 carve-out for them.
func respondError(w http.ResponseWriter, err error) {
	de, ok := err.(*domain.Error)
	if !ok {
		logging.ErrorLog("unrecognized error type reached the HTTP layer: %v", err)
		respondJSON(w, http.StatusInternalServerError, models.ErrorResponse{Category: "database", Code: "database", Error: "Database error"})
		return
	}

	status := statusFor(de.Category)
	switch de.Code {
	case "user_not_found":
		status = http.StatusNotFound
	case "user_already_exists":
		status = http.StatusConflict
	case "invalid_credentials":
		status = http.StatusUnauthorized
	}
	respondJSON(w, status, models.NewErrorResponse(de))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Category: "validation", Code: "validation", Error: "Invalid JSON"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, models.ErrorResponse{Category: "validation", Code: "validation", Error: err.Error()})
		return false
	}
	return true
}
