package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"board-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles signup, login and nickname checks
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// SignupRequest is the request body for POST /api/v1/auth/signup
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"nickname" validate:"required"`
}

// LoginRequest is the request body for POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles POST /api/v1/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.authService.Signup(r.Context(), req.Email, req.Password, req.Nickname); err != nil {
		log.Error().Err(err).Msg("Signup failed")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Account registered, please sign in",
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		// A malformed email is a credential error, same as a wrong one.
		respondError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// NicknameResponse is the response for GET /api/v1/nicknames/{nickname}
type NicknameResponse struct {
	Nickname string `json:"nickname"`
	Status   string `json:"status"` // available | taken | unknown
	Valid    bool   `json:"valid"`
}

// CheckNickname handles GET /api/v1/nicknames/{nickname}
func (h *AuthHandler) CheckNickname(w http.ResponseWriter, r *http.Request) {
	nickname := chi.URLParam(r, "nickname")

	availability := h.authService.CheckNickname(r.Context(), nickname)
	respondJSON(w, http.StatusOK, NicknameResponse{
		Nickname: services.NormalizeNickname(nickname),
		Status:   availability.String(),
		Valid:    services.NicknameValid(nickname),
	})
}

// respondValidationError reports per-field validation failures.
func respondValidationError(w http.ResponseWriter, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		respondError(w, "Validation failed", http.StatusBadRequest)
		return
	}

	fields := make(map[string]string)
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":  "Validation failed",
		"fields": fields,
	})
}
