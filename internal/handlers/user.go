package handlers

import (
	"net/http"

	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/models"
	"github.com/crucial707/scantron/internal/repo"
)

// ==========================
// UserHandler (admin only)
// ==========================
type UserHandler struct {
	Repo      *repo.UserRepo
	AuditRepo *repo.AuditRepo
}

func validRole(role string) bool {
	return role == models.RoleViewer || role == models.RoleAdmin
}

// ==========================
// Create User (role defaults to viewer)
// ==========================
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Role == "" {
		input.Role = models.RoleViewer
	}
	fields := make(map[string]string)
	if err := credentialsValidator.Struct(credentials{Username: input.Username, Password: input.Password}); err != nil {
		fields["username"] = "3 to 64 letters or digits"
		fields["password"] = "8 to 72 characters"
	}
	if !validRole(input.Role) {
		fields["role"] = "must be viewer or admin"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Repo.Create(r.Context(), input.Username, input.Password, input.Role)
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "create", "user", user.ID, user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	users, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	total, err := h.Repo.Count(r.Context())
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: users, Total: total, Limit: limit, Offset: offset})
}

// ==========================
// Get User
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "user")
	if !ok {
		return
	}
	user, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	if user == nil {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Update User (role, optional new password)
// ==========================
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "user")
	if !ok {
		return
	}
	var input struct {
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	fields := make(map[string]string)
	if !validRole(input.Role) {
		fields["role"] = "must be viewer or admin"
	}
	if input.Password != "" && (len(input.Password) < 8 || len(input.Password) > 72) {
		fields["password"] = "8 to 72 characters"
	}
	if len(fields) > 0 {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	user, err := h.Repo.Update(r.Context(), id, input.Role, input.Password)
	if err != nil {
		writeError(w, r, "user", err)
		return
	}
	if user == nil {
		JSONError(w, "user not found", http.StatusNotFound)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "update", "user", id, user.Role)
	writeJSON(w, http.StatusOK, user)
}

// ==========================
// Delete User (admins cannot delete themselves)
// ==========================
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "user")
	if !ok {
		return
	}
	if self, ok := middleware.GetUserID(r.Context()); ok && self == id {
		JSONError(w, "cannot delete your own account", http.StatusBadRequest)
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		writeError(w, r, "user", err)
		return
	}
	recordAudit(r.Context(), h.AuditRepo, "delete", "user", id, "")
	w.WriteHeader(http.StatusNoContent)
}
