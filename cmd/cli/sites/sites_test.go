package sites

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crucial707/scantron/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup points the CLI at srv with a stored token.
func setup(t *testing.T, srv *httptest.Server, format string) {
	t.Helper()
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte("jwt"), 0o600))
	t.Setenv("SCANTRON_TOKEN_FILE", tokenFile)
	t.Setenv("SCANTRON_API_URL", srv.URL)
	t.Setenv("SCANTRON_OUTPUT", format)
}

func intPtr(id int) *int { return &id }

func sitesServer(t *testing.T) *httptest.Server {
	t.Helper()
	sites := []models.Site{
		{ID: 1, SiteName: "dmz", Targets: "10.0.0.0/24", ScanCommand: 2, ScanEngine: intPtr(3)},
		{ID: 2, SiteName: "lab", Targets: "lab.example.com", ScanCommand: 2, ScanEnginePool: intPtr(1)},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer jwt" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/v1/sites" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"items": sites, "total": 2, "limit": 50, "offset": 0})
	}))
}

func TestListSites_TableOutput(t *testing.T) {
	srv := sitesServer(t)
	defer srv.Close()
	setup(t, srv, "table")

	cmd := listSitesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "dmz")
	assert.Contains(t, out.String(), "engine 3")
	assert.Contains(t, out.String(), "pool 1")
}

func TestListSites_JSONOutput(t *testing.T) {
	srv := sitesServer(t)
	defer srv.Close()
	setup(t, srv, "json")

	cmd := listSitesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"site_name": "dmz"`)
	assert.Contains(t, out.String(), `"total": 2`)
}

func TestListSites_YAMLOutput(t *testing.T) {
	srv := sitesServer(t)
	defer srv.Close()
	setup(t, srv, "yaml")

	cmd := listSitesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "site_name: lab")
}

func TestCreateSite_ValidationError(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid targets provided: bogus","fields":{"targets":"Invalid targets provided: bogus"}}`))
	}))
	defer srv.Close()
	setup(t, srv, "table")

	cmd := createSiteCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--name", "dmz", "--targets", "bogus", "--command", "2", "--engine", "3"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Invalid targets provided: bogus"), err.Error())
	assert.Equal(t, float64(3), got["scan_engine"])
	_, hasPool := got["scan_engine_pool"]
	assert.False(t, hasPool, "unset --pool must not be sent")
}

func TestListSites_NotLoggedIn(t *testing.T) {
	t.Setenv("SCANTRON_TOKEN_FILE", filepath.Join(t.TempDir(), "missing"))

	cmd := listSitesCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}
