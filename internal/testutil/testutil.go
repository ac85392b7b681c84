// Package testutil spins up a full server against a throwaway sqlite
// database for handler-level tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"versehub/internal/config"
	"versehub/internal/server"
	"versehub/internal/store/sqlite"
)

// TestConfig returns the configuration used by handler tests: no SFTP host,
// so publishing skips the remote transfer step.
func TestConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "0",
		JWTSecret:       []byte("test-secret"),
		AdminUsername:   "admin",
		AdminPassword:   "123456",
		UploadDir:       t.TempDir(),
		DownloadBaseURL: "http://dl.example.com",
	}
}

// NewStore opens a fresh sqlite store in a per-test temp dir.
func NewStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// NewServer builds a router over a fresh store, with the admin seeded.
func NewServer(t *testing.T) (*gin.Engine, *sqlite.Store, config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := TestConfig(t)
	st := NewStore(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, server.EnsureDefaultAdmin(context.Background(), st, cfg, log))

	return server.New(cfg, st, log).Router(), st, cfg
}

// DoJSON performs a request with an optional bearer token and JSON body.
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorded JSON response body.
func Decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// RegisterUser registers a fresh user and returns its token and id.
func RegisterUser(t *testing.T, router *gin.Engine, username, password string) (token, id string) {
	t.Helper()

	w := DoJSON(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	Decode(t, w, &resp)
	return resp.Token, resp.User.ID
}

// AdminToken logs in as the seeded administrator.
func AdminToken(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := DoJSON(t, router, http.MethodPost, "/api/admin/login", "",
		map[string]string{"username": "admin", "password": "123456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	Decode(t, w, &resp)
	return resp.Token
}
