package server_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/testutil"
	"versehub/pkg/models"
)

func TestUpdateCheckRequiresPlatform(t *testing.T) {
	router, _, _ := testutil.NewServer(t)

	w := testutil.DoJSON(t, router, http.MethodGet, "/api/update/check", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCheckNoVersions(t *testing.T) {
	router, _, _ := testutil.NewServer(t)

	w := testutil.DoJSON(t, router, http.MethodGet, "/api/update/check?platform=android", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"update":false}`, w.Body.String())
}

func TestUpdateCheckVersionComparison(t *testing.T) {
	router, st, _ := testutil.NewServer(t)
	require.NoError(t, st.InsertAppVersion(context.Background(), &models.AppVersion{
		Platform: "android", VersionCode: 5, VersionName: "1.2.0", UpdateInfo: "fixes",
		FileURL: "http://dl.example.com/downloads/android/app.apk",
	}))

	cases := map[string]bool{"3": true, "4": true, "5": false}
	for current, want := range cases {
		w := testutil.DoJSON(t, router, http.MethodGet,
			"/api/update/check?platform=android&currentVersionCode="+current, "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Update      bool   `json:"update"`
			VersionCode int    `json:"versionCode"`
			VersionName string `json:"versionName"`
		}
		testutil.Decode(t, w, &resp)
		assert.Equal(t, want, resp.Update, "current=%s", current)
		assert.Equal(t, 5, resp.VersionCode)
		assert.Equal(t, "1.2.0", resp.VersionName)
	}
}

func TestUpdateCheckUnparseableCurrentCodeTreatedAsZero(t *testing.T) {
	router, st, _ := testutil.NewServer(t)
	require.NoError(t, st.InsertAppVersion(context.Background(), &models.AppVersion{
		Platform: "android", VersionCode: 1,
	}))

	w := testutil.DoJSON(t, router, http.MethodGet,
		"/api/update/check?platform=android&currentVersionCode=banana", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Update bool `json:"update"`
	}
	testutil.Decode(t, w, &resp)
	assert.True(t, resp.Update)
}

func TestUpdateCheckNeedsNoAuth(t *testing.T) {
	router, _, _ := testutil.NewServer(t)

	// no Authorization header at all
	w := testutil.DoJSON(t, router, http.MethodGet, "/api/update/check?platform=ios", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
