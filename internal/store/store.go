// Package store defines the persistence contract shared by both deployment
// targets. The sqlite driver backs the stateful server process, the postgres
// driver backs the stateless edge deployment; the sync engine and handlers
// only ever see this interface.
package store

import (
	"context"
	"errors"
	"time"

	"versehub/pkg/models"
)

var (
	// ErrDuplicateUsername is returned by CreateUser on a username collision.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrNotFound is returned by single-row lookups with no matching row.
	ErrNotFound = errors.New("not found")
)

// UserRecord is a user row including the password hash. It stays inside the
// server; the wire type is models.User.
type UserRecord struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminRecord is an administrator row including the password hash.
type AdminRecord struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Store interface {
	// Users
	CreateUser(ctx context.Context, u UserRecord) error
	UserByUsername(ctx context.Context, username string) (UserRecord, error)
	UserByID(ctx context.Context, id string) (UserRecord, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	ResetUserPassword(ctx context.Context, id, passwordHash string) error

	// Admins
	AdminByUsername(ctx context.Context, username string) (AdminRecord, error)
	// EnsureAdmin inserts the record unless an admin with the same username
	// already exists. Reports whether a row was created.
	EnsureAdmin(ctx context.Context, a AdminRecord) (bool, error)

	// Singleton per-user records
	Settings(ctx context.Context, userID string) (*models.Settings, error)
	UpsertSettings(ctx context.Context, userID string, s models.Settings) error
	Progress(ctx context.Context, userID string) (*models.Progress, error)
	UpsertProgress(ctx context.Context, userID string, p models.Progress) error

	// Client-keyed per-user rows. Put is insert-or-replace by (id, user);
	// Delete is a no-op when the row is absent.
	Bookmarks(ctx context.Context, userID string) ([]models.Bookmark, error)
	PutBookmark(ctx context.Context, userID string, b models.Bookmark) error
	DeleteBookmark(ctx context.Context, userID, id string) error
	Highlights(ctx context.Context, userID string) ([]models.Highlight, error)
	PutHighlight(ctx context.Context, userID string, h models.Highlight) error
	DeleteHighlight(ctx context.Context, userID, id string) error
	Notes(ctx context.Context, userID string) ([]models.Note, error)
	PutNote(ctx context.Context, userID string, n models.Note) error
	DeleteNote(ctx context.Context, userID, id string) error

	// ReplaceSnapshot applies a full sync in a single transaction: upsert
	// settings/progress when present, then delete-and-reinsert each of the
	// three collections. Any failure rolls the whole thing back.
	ReplaceSnapshot(ctx context.Context, userID string, snap models.Snapshot) error

	// App versions
	InsertAppVersion(ctx context.Context, v *models.AppVersion) error
	// LatestAppVersion returns nil with no error when the platform has no
	// published versions.
	LatestAppVersion(ctx context.Context, platform string) (*models.AppVersion, error)
	ListAppVersions(ctx context.Context) ([]models.AppVersion, error)
	DeleteAppVersion(ctx context.Context, id int64) error

	Close() error
}
