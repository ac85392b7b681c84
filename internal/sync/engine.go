// Package sync implements the state synchronization contract between the
// reading client and the server. Array-valued collections (bookmarks,
// highlights, notes) are client-authoritative: a full sync replaces them
// wholesale, so rows omitted by the client are deleted. Settings and progress
// are singletons and always upserted. There is no per-row merge; concurrent
// syncs for the same user resolve as last-commit-wins.
package sync

import (
	"context"
	"strings"

	"versehub/internal/store"
	"versehub/pkg/models"
)

type Engine struct {
	store store.Store
}

func New(st store.Store) *Engine {
	return &Engine{store: st}
}

// Profile assembles the user's full stored state. Settings and progress are
// nil until first synced; the collections are always non-nil.
func (e *Engine) Profile(ctx context.Context, userID string) (models.Profile, error) {
	settings, err := e.store.Settings(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	progress, err := e.store.Progress(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	bookmarks, err := e.store.Bookmarks(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	highlights, err := e.store.Highlights(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	notes, err := e.store.Notes(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return models.Profile{
		Settings:   settings,
		Progress:   progress,
		Bookmarks:  bookmarks,
		Highlights: highlights,
		Notes:      notes,
	}, nil
}

// SyncSettings upserts the user's settings record. A nil payload is a no-op.
func (e *Engine) SyncSettings(ctx context.Context, userID string, s *models.Settings) error {
	if s == nil {
		return nil
	}
	return e.store.UpsertSettings(ctx, userID, *s)
}

// SyncProgress upserts the user's reading position. A nil payload is a no-op.
func (e *Engine) SyncProgress(ctx context.Context, userID string, p *models.Progress) error {
	if p == nil {
		return nil
	}
	return e.store.UpsertProgress(ctx, userID, *p)
}

// FullSync applies a complete client snapshot atomically: either every
// deletion and insertion lands, or none do.
func (e *Engine) FullSync(ctx context.Context, userID string, snap models.Snapshot) error {
	return e.store.ReplaceSnapshot(ctx, userID, snap)
}

// AddBookmark is insert-or-replace by the client-supplied id.
func (e *Engine) AddBookmark(ctx context.Context, userID string, b models.Bookmark) error {
	return e.store.PutBookmark(ctx, userID, b)
}

// RemoveBookmark deletes by (id, user). A missing row is a no-op, not an
// error, so removal is idempotent.
func (e *Engine) RemoveBookmark(ctx context.Context, userID, id string) error {
	return e.store.DeleteBookmark(ctx, userID, id)
}

func (e *Engine) SetHighlight(ctx context.Context, userID string, h models.Highlight) error {
	return e.store.PutHighlight(ctx, userID, h)
}

func (e *Engine) RemoveHighlight(ctx context.Context, userID, id string) error {
	return e.store.DeleteHighlight(ctx, userID, id)
}

// SaveNote stores the note, except that empty or whitespace-only text means
// "delete this note" rather than storing an empty record.
func (e *Engine) SaveNote(ctx context.Context, userID string, n models.Note) error {
	if strings.TrimSpace(n.Text) == "" {
		return e.store.DeleteNote(ctx, userID, n.ID)
	}
	return e.store.PutNote(ctx, userID, n)
}

func (e *Engine) RemoveNote(ctx context.Context, userID, id string) error {
	return e.store.DeleteNote(ctx, userID, id)
}
