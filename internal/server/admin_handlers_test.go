package server_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/testutil"
	"versehub/pkg/models"
)

func TestAdminEndpointsRejectUserToken(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	userToken, _ := testutil.RegisterUser(t, router, "alice", "pw")

	// valid token without the privilege flag is 403, not 401
	w := testutil.DoJSON(t, router, http.MethodGet, "/api/admin/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminListUsers(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	testutil.RegisterUser(t, router, "alice", "pw")
	testutil.RegisterUser(t, router, "bob", "pw")
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var users []models.User
	testutil.Decode(t, w, &users)
	require.Len(t, users, 2)
	assert.NotEmpty(t, users[0].ID)
	assert.NotEmpty(t, users[0].Username)
}

func TestAdminUserContent(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	token, id := testutil.RegisterUser(t, router, "alice", "pw")
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/user/note/save", token,
		models.Note{ID: "n1", Text: "hello"})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/api/admin/users/"+id+"/content", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.Profile
	testutil.Decode(t, w, &profile)
	require.Len(t, profile.Notes, 1)
	assert.Equal(t, "hello", profile.Notes[0].Text)
}

func TestAdminDeleteUserRemovesContent(t *testing.T) {
	router, st, _ := testutil.NewServer(t)
	token, id := testutil.RegisterUser(t, router, "alice", "pw")
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/user/bookmark/add", token,
		models.Bookmark{ID: "b1", BookID: "gen"})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, router, http.MethodDelete, "/api/admin/users/"+id, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)

	bookmarks, err := st.Bookmarks(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
}

func TestAdminResetPassword(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	_, id := testutil.RegisterUser(t, router, "alice", "old-pw")
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/users/"+id+"/password", adminToken,
		map[string]string{"newPassword": "new-pw"})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "old-pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoJSON(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "alice", "password": "new-pw"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminResetPasswordRequiresBody(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	_, id := testutil.RegisterUser(t, router, "alice", "pw")
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/users/"+id+"/password", adminToken,
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminParseVersionRequiresFile(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/versions/parse", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminPublishRequiresStagedFile(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/versions/publish", adminToken,
		map[string]any{"tempPath": "/nonexistent/file", "meta": map[string]any{"platform": "android"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminPublishAndListVersions(t *testing.T) {
	router, _, cfg := testutil.NewServer(t)
	adminToken := testutil.AdminToken(t, router)

	staged := filepath.Join(cfg.UploadDir, "staged.apk")
	require.NoError(t, os.WriteFile(staged, []byte("binary"), 0o644))

	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/versions/publish", adminToken,
		map[string]any{
			"tempPath": staged,
			"meta": map[string]any{
				"platform":     "android",
				"versionName":  "1.2.3",
				"versionCode":  5,
				"originalName": "app.apk",
			},
			"updateInfo":    "bug fixes",
			"isForceUpdate": true,
		})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the staged file is cleaned up after publishing
	_, err := os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	w = testutil.DoJSON(t, router, http.MethodGet, "/api/admin/versions", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var versions []models.AppVersion
	testutil.Decode(t, w, &versions)
	require.Len(t, versions, 1)
	assert.Equal(t, "android", versions[0].Platform)
	assert.Equal(t, 5, versions[0].VersionCode)
	assert.True(t, versions[0].IsForceUpdate)
	assert.NotEmpty(t, versions[0].SignatureHash)
	assert.Contains(t, versions[0].FileURL, "http://dl.example.com/downloads/android/")
}

func TestAdminDeleteVersion(t *testing.T) {
	router, _, cfg := testutil.NewServer(t)
	adminToken := testutil.AdminToken(t, router)

	staged := filepath.Join(cfg.UploadDir, "staged.apk")
	require.NoError(t, os.WriteFile(staged, []byte("binary"), 0o644))
	w := testutil.DoJSON(t, router, http.MethodPost, "/api/admin/versions/publish", adminToken,
		map[string]any{
			"tempPath": staged,
			"meta":     map[string]any{"platform": "android", "versionCode": 1, "originalName": "app.apk"},
		})
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/api/admin/versions", adminToken, nil)
	var versions []models.AppVersion
	testutil.Decode(t, w, &versions)
	require.Len(t, versions, 1)

	w = testutil.DoJSON(t, router, http.MethodDelete,
		"/api/admin/versions/"+itoa(versions[0].ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, router, http.MethodGet, "/api/admin/versions", adminToken, nil)
	testutil.Decode(t, w, &versions)
	assert.Empty(t, versions)
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestAdminDeleteVersionBadID(t *testing.T) {
	router, _, _ := testutil.NewServer(t)
	adminToken := testutil.AdminToken(t, router)

	w := testutil.DoJSON(t, router, http.MethodDelete, "/api/admin/versions/abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
