package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/scantron/internal/middleware"
	"github.com/crucial707/scantron/internal/repo"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "username", "password_hash", "role", "created_at"}

func TestAuthHandler_Register_FirstUserIsAdmin(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("alice", sqlmock.AnyArg(), "admin").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "$2a$x", "admin", time.Now()))

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("test-secret")}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "correct-horse"})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Register status: got %d, want 201 (%s)", rr.Code, rr.Body.String())
	}
	var out map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out["role"] != "admin" {
		t.Errorf("role: got %v, want admin", out["role"])
	}
	if _, leaked := out["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("test-secret")}

	body, _ := json.Marshal(map[string]string{"username": "al", "password": "short"})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest("POST", "/auth/register", bytes.NewReader(body)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
	var out struct {
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rr.Body).Decode(&out)
	if out.Fields["username"] == "" || out.Fields["password"] == "" {
		t.Errorf("expected username and password field errors, got %v", out.Fields)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", string(hash), "admin", time.Now()))

	secret := []byte("test-secret")
	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: secret}

	body, _ := json.Marshal(map[string]string{"username": "alice", "password": "correct-horse"})
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("Login status: got %d, want 200", rr.Code)
	}
	var out struct {
		Token string `json:"token"`
		User  struct {
			ID   int    `json:"id"`
			Role string `json:"role"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := middleware.ParseToken(secret, out.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != 1 || claims.Role != "admin" || out.User.Role != "admin" {
		t.Errorf("unexpected claims %+v / user %+v", claims, out.User)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(userColumns))

	h := &AuthHandler{UserRepo: repo.NewUserRepo(db), Secret: []byte("test-secret")}

	body, _ := json.Marshal(map[string]string{"username": "nobody", "password": "whatever1"})
	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest("POST", "/auth/login", bytes.NewReader(body)))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Login status: got %d, want 401", rr.Code)
	}
}
