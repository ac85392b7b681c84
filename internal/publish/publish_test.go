package publish

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSignature(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	sig, err := FileSignature(p)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sig)
}

func TestFileSignatureMissingFile(t *testing.T) {
	_, err := FileSignature(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestParseFileDesktopPlaceholders(t *testing.T) {
	p := filepath.Join(t.TempDir(), "setup")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	for name, platform := range map[string]string{
		"setup.exe": "windows",
		"setup.msi": "windows",
		"app.dmg":   "macos",
		"app.pkg":   "macos",
	} {
		meta, err := ParseFile(p, name)
		require.NoError(t, err, name)
		assert.Equal(t, platform, meta.Platform, name)
		assert.Equal(t, "1.0.0", meta.VersionName, name)
		assert.Equal(t, 1, meta.VersionCode, name)
	}
}

func TestParseFileUnsupportedExtension(t *testing.T) {
	_, err := ParseFile("/tmp/whatever", "app.tar.gz")
	assert.Error(t, err)
}

func TestParseIPAReadsBundlePlist(t *testing.T) {
	const infoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleShortVersionString</key><string>2.1.0</string>
	<key>CFBundleVersion</key><string>42</string>
	<key>CFBundleIdentifier</key><string>com.example.reader</string>
	<key>CFBundleDisplayName</key><string>Reader</string>
</dict>
</plist>`

	ipaPath := filepath.Join(t.TempDir(), "app.ipa")
	f, err := os.Create(ipaPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("Payload/Reader.app/Info.plist")
	require.NoError(t, err)
	_, err = w.Write([]byte(infoPlist))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	meta, err := ParseFile(ipaPath, "app.ipa")
	require.NoError(t, err)
	assert.Equal(t, "ios", meta.Platform)
	assert.Equal(t, "2.1.0", meta.VersionName)
	assert.Equal(t, 42, meta.VersionCode)
	assert.Equal(t, "com.example.reader", meta.PackageName)
	assert.Equal(t, "Reader", meta.Label)
}

func TestParseIPAWithoutPlistFails(t *testing.T) {
	ipaPath := filepath.Join(t.TempDir(), "app.ipa")
	f, err := os.Create(ipaPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	_, err = zw.Create("Payload/Reader.app/README")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = ParseFile(ipaPath, "app.ipa")
	assert.Error(t, err)
}

func TestIsBundlePlist(t *testing.T) {
	assert.True(t, isBundlePlist("Payload/Reader.app/Info.plist"))
	assert.False(t, isBundlePlist("Payload/Reader.app/Watch/Sub.app/Info.plist"))
	assert.False(t, isBundlePlist("Reader.app/Info.plist"))
	assert.False(t, isBundlePlist("Payload/Info.plist"))
}
