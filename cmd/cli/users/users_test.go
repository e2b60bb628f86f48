package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/scantron/internal/models"
)

// useServer points the CLI at srv with a stored token.
func useServer(t *testing.T, srv *httptest.Server, format string) {
	t.Helper()
	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte("jwt"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	t.Setenv("SCANTRON_TOKEN_FILE", tokenFile)
	t.Setenv("SCANTRON_API_URL", srv.URL)
	t.Setenv("SCANTRON_OUTPUT", format)
}

func usersServer(t *testing.T, users []models.User) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/users" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": users, "total": len(users), "limit": 50, "offset": 0})
	}))
}

func TestListUsers_TableOutput(t *testing.T) {
	srv := usersServer(t, []models.User{
		{ID: 1, Username: "alice", Role: models.RoleAdmin},
		{ID: 2, Username: "bob", Role: models.RoleViewer},
	})
	defer srv.Close()
	useServer(t, srv, "table")

	cmd := listUsersCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("list users: %v", err)
	}

	s := out.String()
	if !strings.Contains(s, "alice") || !strings.Contains(s, "bob") {
		t.Fatalf("expected usernames in output, got: %s", s)
	}
	if !strings.Contains(s, "admin") {
		t.Fatalf("expected roles in output, got: %s", s)
	}
}

func TestListUsers_JSONOutput(t *testing.T) {
	srv := usersServer(t, []models.User{{ID: 1, Username: "alice", Role: models.RoleAdmin}})
	defer srv.Close()
	useServer(t, srv, "json")

	cmd := listUsersCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("list users: %v", err)
	}

	var page struct {
		Items []models.User `json:"items"`
		Total int           `json:"total"`
	}
	if err := json.Unmarshal(out.Bytes(), &page); err != nil {
		t.Fatalf("failed to parse JSON output: %v\noutput: %s", err, out.String())
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].Username != "alice" {
		t.Fatalf("unexpected JSON output: %+v", page)
	}
}

func TestCreateUser_DefaultsToViewer(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/users" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.User{ID: 3, Username: body["username"], Role: body["role"]})
	}))
	defer srv.Close()
	useServer(t, srv, "table")

	cmd := createUserCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--username", "carol", "--password", "s3cretpass"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if body["role"] != models.RoleViewer {
		t.Fatalf("expected role %q, got %q", models.RoleViewer, body["role"])
	}
	if !strings.Contains(out.String(), "carol") {
		t.Fatalf("expected new user in output, got: %s", out.String())
	}
}

func TestSetRole_Forbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"admin role required"}`))
	}))
	defer srv.Close()
	useServer(t, srv, "table")

	cmd := setRoleCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"2", "admin"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "admin role required") {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestDeleteUser_NotLoggedIn(t *testing.T) {
	t.Setenv("SCANTRON_TOKEN_FILE", filepath.Join(t.TempDir(), "missing"))

	cmd := deleteUserCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"2"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error without a stored token")
	}
}
