// Package publish is the pipeline behind version publishing: extract version
// metadata from an uploaded binary, compute its content signature, and copy
// it to the distribution host.
package publish

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/shogo82148/androidbinary/apk"
	"howett.net/plist"
)

// Metadata describes an uploaded client binary. TempPath and OriginalName
// round-trip through the client between the parse and publish steps.
type Metadata struct {
	Platform     string `json:"platform"`
	VersionName  string `json:"versionName"`
	VersionCode  int    `json:"versionCode"`
	PackageName  string `json:"packageName,omitempty"`
	Label        string `json:"label,omitempty"`
	TempPath     string `json:"tempPath,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
}

// ParseFile inspects the uploaded file and extracts platform and version
// metadata. APK and IPA packages are introspected; desktop installers carry
// no standard embedded version, so they get placeholder values the admin can
// correct before publishing.
func ParseFile(filePath, originalName string) (Metadata, error) {
	ext := strings.ToLower(path.Ext(originalName))
	if ext == "" {
		ext = strings.ToLower(path.Ext(filePath))
	}

	switch ext {
	case ".apk":
		return parseAPK(filePath)
	case ".ipa":
		return parseIPA(filePath)
	case ".exe", ".msi":
		return Metadata{Platform: "windows", VersionName: "1.0.0", VersionCode: 1}, nil
	case ".dmg", ".pkg":
		return Metadata{Platform: "macos", VersionName: "1.0.0", VersionCode: 1}, nil
	default:
		return Metadata{}, fmt.Errorf("unsupported file type %q", ext)
	}
}

func parseAPK(filePath string) (Metadata, error) {
	pkg, err := apk.OpenFile(filePath)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse apk: %w", err)
	}
	defer pkg.Close()

	manifest := pkg.Manifest()
	versionName, _ := manifest.VersionName.String()
	versionCode, _ := manifest.VersionCode.Int32()
	label, _ := pkg.Label(nil)

	return Metadata{
		Platform:    "android",
		VersionName: versionName,
		VersionCode: int(versionCode),
		PackageName: pkg.PackageName(),
		Label:       label,
	}, nil
}

type bundleInfo struct {
	ShortVersion string `plist:"CFBundleShortVersionString"`
	Version      string `plist:"CFBundleVersion"`
	Identifier   string `plist:"CFBundleIdentifier"`
	DisplayName  string `plist:"CFBundleDisplayName"`
}

func parseIPA(filePath string) (Metadata, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return Metadata{}, fmt.Errorf("parse ipa: %w", err)
	}
	defer r.Close()

	var info bundleInfo
	found := false
	for _, f := range r.File {
		if !isBundlePlist(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Metadata{}, fmt.Errorf("parse ipa: %w", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return Metadata{}, fmt.Errorf("parse ipa: %w", err)
		}
		if _, err := plist.Unmarshal(data, &info); err != nil {
			return Metadata{}, fmt.Errorf("parse ipa plist: %w", err)
		}
		found = true
		break
	}
	if !found {
		return Metadata{}, fmt.Errorf("parse ipa: no Info.plist in bundle")
	}

	code, _ := strconv.Atoi(info.Version)
	return Metadata{
		Platform:    "ios",
		VersionName: info.ShortVersion,
		VersionCode: code,
		PackageName: info.Identifier,
		Label:       info.DisplayName,
	}, nil
}

// isBundlePlist matches Payload/<App>.app/Info.plist, nothing deeper.
func isBundlePlist(name string) bool {
	if !strings.HasPrefix(name, "Payload/") || !strings.HasSuffix(name, ".app/Info.plist") {
		return false
	}
	return strings.Count(name, "/") == 2
}
