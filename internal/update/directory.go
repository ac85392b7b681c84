// Package update is the app-version directory: it answers "is there a newer
// build for this platform" and records newly published versions.
package update

import (
	"context"
	"fmt"
	"path"
	"time"

	"versehub/internal/publish"
	"versehub/internal/store"
	"versehub/pkg/models"
)

type Directory struct {
	store           store.Store
	uploader        publish.Uploader // nil disables the remote transfer step
	remoteBaseDir   string
	downloadBaseURL string
}

func New(st store.Store, uploader publish.Uploader, remoteBaseDir, downloadBaseURL string) *Directory {
	return &Directory{
		store:           st,
		uploader:        uploader,
		remoteBaseDir:   remoteBaseDir,
		downloadBaseURL: downloadBaseURL,
	}
}

// CheckResult is the wire shape of an update check. When no version has ever
// been published for the platform only Update=false is sent.
type CheckResult struct {
	Update        bool       `json:"update"`
	VersionName   string     `json:"versionName,omitempty"`
	VersionCode   int        `json:"versionCode,omitempty"`
	UpdateInfo    string     `json:"updateInfo,omitempty"`
	FileURL       string     `json:"fileUrl,omitempty"`
	IsForceUpdate bool       `json:"isForceUpdate,omitempty"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`
}

// Check reports whether the latest published version code for the platform
// strictly exceeds the caller's. Latest means highest version code, ties
// broken by most recent creation. No published version is not an error.
func (d *Directory) Check(ctx context.Context, platform string, currentVersionCode int) (CheckResult, error) {
	latest, err := d.store.LatestAppVersion(ctx, platform)
	if err != nil {
		return CheckResult{}, err
	}
	if latest == nil {
		return CheckResult{Update: false}, nil
	}
	release := latest.ReleaseDate
	return CheckResult{
		Update:        latest.VersionCode > currentVersionCode,
		VersionName:   latest.VersionName,
		VersionCode:   latest.VersionCode,
		UpdateInfo:    latest.UpdateInfo,
		FileURL:       latest.FileURL,
		IsForceUpdate: latest.IsForceUpdate,
		ReleaseDate:   &release,
	}, nil
}

// Publish signs the staged binary, transfers it to the distribution host and
// records the version. The row is only inserted after a successful transfer,
// so a failed transfer leaves no partial record. The staged file itself is
// the caller's to clean up.
func (d *Directory) Publish(ctx context.Context, meta publish.Metadata, updateInfo string, force bool) (*models.AppVersion, error) {
	signature, err := publish.FileSignature(meta.TempPath)
	if err != nil {
		return nil, err
	}

	versionName := meta.VersionName
	if versionName == "" {
		versionName = "1.0.0"
	}
	remoteName := fmt.Sprintf("%s_%s_%s", versionName, time.Now().Format("20060102"), meta.OriginalName)
	remotePath := path.Join(d.remoteBaseDir, meta.Platform, remoteName)

	if d.uploader != nil {
		if err := d.uploader.Upload(meta.TempPath, remotePath); err != nil {
			return nil, fmt.Errorf("transfer: %w", err)
		}
	}

	v := &models.AppVersion{
		Platform:      meta.Platform,
		VersionCode:   meta.VersionCode,
		VersionName:   versionName,
		UpdateInfo:    updateInfo,
		FileURL:       fmt.Sprintf("%s/downloads/%s/%s", d.downloadBaseURL, meta.Platform, remoteName),
		FilePath:      remotePath,
		SignatureHash: signature,
		IsForceUpdate: force,
	}
	if err := d.store.InsertAppVersion(ctx, v); err != nil {
		return nil, fmt.Errorf("record version: %w", err)
	}
	return v, nil
}

// List returns the publish history, newest first.
func (d *Directory) List(ctx context.Context) ([]models.AppVersion, error) {
	return d.store.ListAppVersions(ctx)
}

// Delete removes a version from the history.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	return d.store.DeleteAppVersion(ctx, id)
}
