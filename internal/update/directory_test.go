package update

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/publish"
	"versehub/internal/store/sqlite"
	"versehub/pkg/models"
)

type recordingUploader struct {
	remotePath string
	fail       bool
}

func (u *recordingUploader) Upload(localPath, remotePath string) error {
	if u.fail {
		return errors.New("connection refused")
	}
	u.remotePath = remotePath
	return nil
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func stageFile(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "staged.apk")
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestCheckNoPublishedVersions(t *testing.T) {
	d := New(newTestStore(t), nil, "/srv/apps", "http://dl.example.com")

	res, err := d.Check(context.Background(), "android", 3)
	require.NoError(t, err)
	assert.False(t, res.Update)
	assert.Empty(t, res.VersionName)
	assert.Nil(t, res.ReleaseDate)
}

func TestCheckComparesVersionCodes(t *testing.T) {
	st := newTestStore(t)
	d := New(st, nil, "/srv/apps", "http://dl.example.com")
	ctx := context.Background()

	require.NoError(t, st.InsertAppVersion(ctx, &models.AppVersion{
		Platform: "android", VersionCode: 5, VersionName: "1.2.0", UpdateInfo: "fixes",
	}))

	for current, want := range map[int]bool{3: true, 4: true, 5: false, 6: false} {
		res, err := d.Check(ctx, "android", current)
		require.NoError(t, err)
		assert.Equal(t, want, res.Update, "current=%d", current)
		assert.Equal(t, 5, res.VersionCode)
	}
}

func TestCheckIsPerPlatform(t *testing.T) {
	st := newTestStore(t)
	d := New(st, nil, "/srv/apps", "http://dl.example.com")
	ctx := context.Background()

	require.NoError(t, st.InsertAppVersion(ctx, &models.AppVersion{Platform: "ios", VersionCode: 9}))

	res, err := d.Check(ctx, "android", 0)
	require.NoError(t, err)
	assert.False(t, res.Update)
	assert.Zero(t, res.VersionCode)
}

func TestPublishRecordsVersion(t *testing.T) {
	st := newTestStore(t)
	up := &recordingUploader{}
	d := New(st, up, "/srv/apps", "http://dl.example.com")
	ctx := context.Background()

	staged := stageFile(t, "binary-bytes")
	v, err := d.Publish(ctx, publish.Metadata{
		Platform:     "android",
		VersionName:  "1.2.3",
		VersionCode:  7,
		TempPath:     staged,
		OriginalName: "app.apk",
	}, "new features", true)
	require.NoError(t, err)

	assert.NotZero(t, v.ID)
	assert.Equal(t, "android", v.Platform)
	assert.Equal(t, 7, v.VersionCode)
	assert.True(t, v.IsForceUpdate)
	assert.NotEmpty(t, v.SignatureHash)
	assert.Equal(t, up.remotePath, v.FilePath)
	assert.Contains(t, v.FilePath, "/srv/apps/android/1.2.3_")
	assert.Contains(t, v.FileURL, "http://dl.example.com/downloads/android/")

	res, err := d.Check(ctx, "android", 6)
	require.NoError(t, err)
	assert.True(t, res.Update)
}

func TestPublishFailedTransferLeavesNoRow(t *testing.T) {
	st := newTestStore(t)
	d := New(st, &recordingUploader{fail: true}, "/srv/apps", "http://dl.example.com")
	ctx := context.Background()

	staged := stageFile(t, "binary-bytes")
	_, err := d.Publish(ctx, publish.Metadata{
		Platform: "android", VersionName: "1.0", TempPath: staged, OriginalName: "app.apk",
	}, "", false)
	require.Error(t, err)

	list, err := st.ListAppVersions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPublishWithoutUploaderSkipsTransfer(t *testing.T) {
	st := newTestStore(t)
	d := New(st, nil, "/srv/apps", "http://dl.example.com")

	staged := stageFile(t, "binary-bytes")
	v, err := d.Publish(context.Background(), publish.Metadata{
		Platform: "android", VersionCode: 1, TempPath: staged, OriginalName: "app.apk",
	}, "", false)
	require.NoError(t, err)
	// empty version name falls back to a placeholder
	assert.Equal(t, "1.0.0", v.VersionName)
}
