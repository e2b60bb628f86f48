package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
	"github.com/go-playground/validator/v10"
)

var credentialsValidator = validator.New()

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	UserRepo *repo.UserRepo
	Secret   []byte
	TokenTTL time.Duration
}

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanumunicode"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// ==========================
// Register (the first account becomes admin, later ones are viewers)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input credentials
	if !decodeBody(w, r, &input) {
		return
	}
	if err := credentialsValidator.Struct(input); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Username":
					fields["username"] = "3 to 64 letters or digits"
				case "Password":
					fields["password"] = "8 to 72 characters"
				}
			}
		}
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	role := models.RoleViewer
	n, err := h.UserRepo.Count(r.Context())
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	if n == 0 {
		role = models.RoleAdmin
	}

	user, err := h.UserRepo.Create(r.Context(), input.Username, input.Password, role)
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// Login (returns a signed JWT carrying the user's role)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}

	user, err := h.UserRepo.Authenticate(r.Context(), input.Username, input.Password)
	if errors.Is(err, repo.ErrInvalidCredentials) {
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		writeError(w, r, "user", err)
		return
	}

	ttl := h.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	signed, err := middleware.IssueToken(h.Secret, user, ttl)
	if err != nil {
		JSONError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}
