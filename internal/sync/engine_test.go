package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"versehub/internal/store"
	"versehub/internal/store/sqlite"
	"versehub/pkg/models"
)

func newEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.CreateUser(context.Background(), store.UserRecord{
		ID: "u1", Username: "alice", PasswordHash: "x",
	}))
	return New(st), "u1"
}

func TestProfileEmptyUser(t *testing.T) {
	e, userID := newEngine(t)

	p, err := e.Profile(context.Background(), userID)
	require.NoError(t, err)

	assert.Nil(t, p.Settings)
	assert.Nil(t, p.Progress)
	assert.NotNil(t, p.Bookmarks)
	assert.NotNil(t, p.Highlights)
	assert.NotNil(t, p.Notes)
	assert.Empty(t, p.Bookmarks)
}

func TestSyncSettingsRoundTrip(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	want := models.Settings{Theme: "dark", FontSize: 16, PlaybackRate: 1.5}
	require.NoError(t, e.SyncSettings(ctx, userID, &want))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, p.Settings)
	assert.Equal(t, want, *p.Settings)
}

func TestSyncNilPayloadsAreNoOps(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.SyncSettings(ctx, userID, nil))
	require.NoError(t, e.SyncProgress(ctx, userID, nil))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, p.Settings)
	assert.Nil(t, p.Progress)
}

func TestSaveNoteBlankTextDeletes(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.SaveNote(ctx, userID, models.Note{ID: "n1", Text: "hello"}))
	require.NoError(t, e.SaveNote(ctx, userID, models.Note{ID: "n1", Text: ""}))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, p.Notes)
}

func TestSaveNoteWhitespaceOnlyDeletes(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.SaveNote(ctx, userID, models.Note{ID: "n1", Text: "hello"}))
	require.NoError(t, e.SaveNote(ctx, userID, models.Note{ID: "n1", Text: "  \n\t "}))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, p.Notes)
}

func TestSaveNoteBlankOnAbsentIDIsNoOp(t *testing.T) {
	e, userID := newEngine(t)

	assert.NoError(t, e.SaveNote(context.Background(), userID, models.Note{ID: "ghost", Text: " "}))
}

func TestFullSyncReplacesCollections(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.FullSync(ctx, userID, models.Snapshot{
		Bookmarks:  []models.Bookmark{{ID: "a", BookID: "gen", Chapter: 1}},
		Highlights: []models.Highlight{{ID: "h1", Color: "yellow"}},
	}))
	require.NoError(t, e.FullSync(ctx, userID, models.Snapshot{
		Bookmarks: []models.Bookmark{{ID: "b", BookID: "exo", Chapter: 2}},
	}))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Bookmarks, 1)
	assert.Equal(t, "b", p.Bookmarks[0].ID)
	assert.Empty(t, p.Highlights)
}

func TestAddBookmarkResubmitOverwrites(t *testing.T) {
	e, userID := newEngine(t)
	ctx := context.Background()

	require.NoError(t, e.AddBookmark(ctx, userID, models.Bookmark{ID: "b1", StartVerse: 1, EndVerse: 3}))
	require.NoError(t, e.AddBookmark(ctx, userID, models.Bookmark{ID: "b1", StartVerse: 4, EndVerse: 9}))

	p, err := e.Profile(ctx, userID)
	require.NoError(t, err)
	require.Len(t, p.Bookmarks, 1)
	assert.Equal(t, 4, p.Bookmarks[0].StartVerse)
}
