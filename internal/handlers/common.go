package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"board-backend/internal/repository"
	"board-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondServiceError maps service errors onto HTTP statuses. Everything
// unclassified collapses into one generic failure, mirroring the
// single-alert policy of the client.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNicknameTaken):
		respondError(w, "Nickname is already taken", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidNickname):
		respondError(w, "Nickname must be 1-5 characters", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, "Invalid email or password", http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, "Not allowed", http.StatusForbidden)
	case errors.Is(err, services.ErrEmptyComment):
		respondError(w, "Comment text is required", http.StatusBadRequest)
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	default:
		respondError(w, "Request failed", http.StatusInternalServerError)
	}
}
