// Package sqlite implements store.Store on mattn/go-sqlite3. This is the
// driver used by the stateful server deployment.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"versehub/internal/store"
	"versehub/pkg/models"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and applies the schema.
// Foreign keys are enforced so deleting a user cascades to all owned rows.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// one writer connection keeps sqlite simple under concurrent requests
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying handle for tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS settings (
			user_id TEXT PRIMARY KEY,
			theme TEXT,
			language TEXT,
			font_size INTEGER,
			line_height REAL,
			font_family TEXT,
			custom_theme TEXT,
			accent_color TEXT,
			page_turn_effect TEXT,
			continuous_reading BOOLEAN,
			playback_rate REAL,
			pause_on_manual_switch BOOLEAN,
			loop_count INTEGER,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS progress (
			user_id TEXT PRIMARY KEY,
			book_index INTEGER,
			chapter_index INTEGER,
			verse_num INTEGER,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS highlights (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER,
			color TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER,
			text TEXT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS app_versions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			platform TEXT NOT NULL,
			version_code INTEGER,
			version_name TEXT,
			update_info TEXT,
			file_url TEXT,
			file_path TEXT,
			signature_hash TEXT,
			is_force_update BOOLEAN DEFAULT 0,
			release_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for i, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u store.UserRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES (?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash)
	if isUniqueViolation(err) {
		return store.ErrDuplicateUsername
	}
	return err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (store.UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (s *Store) UserByID(ctx context.Context, id string) (store.UserRecord, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (store.UserRecord, error) {
	var u store.UserRecord
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

func (s *Store) ResetUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// ---- admins ----

func (s *Store) AdminByUsername(ctx context.Context, username string) (store.AdminRecord, error) {
	var a store.AdminRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.AdminRecord{}, store.ErrNotFound
	}
	return a, err
}

func (s *Store) EnsureAdmin(ctx context.Context, a store.AdminRecord) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO admins (id, username, password_hash) VALUES (?, ?, ?)`,
		a.ID, a.Username, a.PasswordHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ---- settings / progress ----

const upsertSettingsSQL = `
	INSERT INTO settings (user_id, theme, language, font_size, line_height, font_family,
		custom_theme, accent_color, page_turn_effect, continuous_reading, playback_rate,
		pause_on_manual_switch, loop_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		theme=excluded.theme, language=excluded.language, font_size=excluded.font_size,
		line_height=excluded.line_height, font_family=excluded.font_family,
		custom_theme=excluded.custom_theme, accent_color=excluded.accent_color,
		page_turn_effect=excluded.page_turn_effect, continuous_reading=excluded.continuous_reading,
		playback_rate=excluded.playback_rate, pause_on_manual_switch=excluded.pause_on_manual_switch,
		loop_count=excluded.loop_count`

const upsertProgressSQL = `
	INSERT INTO progress (user_id, book_index, chapter_index, verse_num)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		book_index=excluded.book_index, chapter_index=excluded.chapter_index,
		verse_num=excluded.verse_num`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSettings(ctx context.Context, e execer, userID string, st models.Settings) error {
	_, err := e.ExecContext(ctx, upsertSettingsSQL,
		userID, st.Theme, st.Language, st.FontSize, st.LineHeight, st.FontFamily,
		st.CustomTheme, st.AccentColor, st.PageTurnEffect, st.ContinuousReading,
		st.PlaybackRate, st.PauseOnManualSwitch, st.LoopCount)
	return err
}

func upsertProgress(ctx context.Context, e execer, userID string, p models.Progress) error {
	_, err := e.ExecContext(ctx, upsertProgressSQL,
		userID, p.BookIndex, p.ChapterIndex, p.VerseNum)
	return err
}

func (s *Store) Settings(ctx context.Context, userID string) (*models.Settings, error) {
	var st models.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT theme, language, font_size, line_height, font_family, custom_theme,
			accent_color, page_turn_effect, continuous_reading, playback_rate,
			pause_on_manual_switch, loop_count
		 FROM settings WHERE user_id = ?`, userID).
		Scan(&st.Theme, &st.Language, &st.FontSize, &st.LineHeight, &st.FontFamily,
			&st.CustomTheme, &st.AccentColor, &st.PageTurnEffect, &st.ContinuousReading,
			&st.PlaybackRate, &st.PauseOnManualSwitch, &st.LoopCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) UpsertSettings(ctx context.Context, userID string, st models.Settings) error {
	return upsertSettings(ctx, s.db, userID, st)
}

func (s *Store) Progress(ctx context.Context, userID string) (*models.Progress, error) {
	var p models.Progress
	err := s.db.QueryRowContext(ctx,
		`SELECT book_index, chapter_index, verse_num FROM progress WHERE user_id = ?`, userID).
		Scan(&p.BookIndex, &p.ChapterIndex, &p.VerseNum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertProgress(ctx context.Context, userID string, p models.Progress) error {
	return upsertProgress(ctx, s.db, userID, p)
}

// ---- bookmarks / highlights / notes ----

func (s *Store) Bookmarks(ctx context.Context, userID string) ([]models.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse FROM bookmarks WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Bookmark{}
	for rows.Next() {
		var b models.Bookmark
		if err := rows.Scan(&b.ID, &b.BookID, &b.Chapter, &b.StartVerse, &b.EndVerse); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (s *Store) PutBookmark(ctx context.Context, userID string, b models.Bookmark) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bookmarks (id, user_id, book_id, chapter, start_verse, end_verse)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, userID, b.BookID, b.Chapter, b.StartVerse, b.EndVerse)
	return err
}

func (s *Store) DeleteBookmark(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (s *Store) Highlights(ctx context.Context, userID string) ([]models.Highlight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse, color FROM highlights WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Highlight{}
	for rows.Next() {
		var h models.Highlight
		if err := rows.Scan(&h.ID, &h.BookID, &h.Chapter, &h.StartVerse, &h.EndVerse, &h.Color); err != nil {
			return nil, err
		}
		list = append(list, h)
	}
	return list, rows.Err()
}

func (s *Store) PutHighlight(ctx context.Context, userID string, h models.Highlight) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO highlights (id, user_id, book_id, chapter, start_verse, end_verse, color)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		h.ID, userID, h.BookID, h.Chapter, h.StartVerse, h.EndVerse, h.Color)
	return err
}

func (s *Store) DeleteHighlight(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM highlights WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

func (s *Store) Notes(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse, text FROM notes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.Note{}
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.BookID, &n.Chapter, &n.StartVerse, &n.EndVerse, &n.Text); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (s *Store) PutNote(ctx context.Context, userID string, n models.Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO notes (id, user_id, book_id, chapter, start_verse, end_verse, text)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, userID, n.BookID, n.Chapter, n.StartVerse, n.EndVerse, n.Text)
	return err
}

func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	return err
}

// ---- full sync ----

func (s *Store) ReplaceSnapshot(ctx context.Context, userID string, snap models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if snap.Settings != nil {
		if err := upsertSettings(ctx, tx, userID, *snap.Settings); err != nil {
			return fmt.Errorf("sync settings: %w", err)
		}
	}
	if snap.Progress != nil {
		if err := upsertProgress(ctx, tx, userID, *snap.Progress); err != nil {
			return fmt.Errorf("sync progress: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	for _, b := range snap.Bookmarks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO bookmarks (id, user_id, book_id, chapter, start_verse, end_verse)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, userID, b.BookID, b.Chapter, b.StartVerse, b.EndVerse); err != nil {
			return fmt.Errorf("insert bookmark %s: %w", b.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM highlights WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear highlights: %w", err)
	}
	for _, h := range snap.Highlights {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO highlights (id, user_id, book_id, chapter, start_verse, end_verse, color)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			h.ID, userID, h.BookID, h.Chapter, h.StartVerse, h.EndVerse, h.Color); err != nil {
			return fmt.Errorf("insert highlight %s: %w", h.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	for _, n := range snap.Notes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO notes (id, user_id, book_id, chapter, start_verse, end_verse, text)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, userID, n.BookID, n.Chapter, n.StartVerse, n.EndVerse, n.Text); err != nil {
			return fmt.Errorf("insert note %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ---- app versions ----

func (s *Store) InsertAppVersion(ctx context.Context, v *models.AppVersion) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO app_versions (platform, version_code, version_name, update_info,
			file_url, file_path, signature_hash, is_force_update)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Platform, v.VersionCode, v.VersionName, v.UpdateInfo,
		v.FileURL, v.FilePath, v.SignatureHash, v.IsForceUpdate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = id
	return s.db.QueryRowContext(ctx,
		`SELECT release_date, created_at FROM app_versions WHERE id = ?`, id).
		Scan(&v.ReleaseDate, &v.CreatedAt)
}

func (s *Store) LatestAppVersion(ctx context.Context, platform string) (*models.AppVersion, error) {
	v, err := scanAppVersion(s.db.QueryRowContext(ctx,
		`SELECT id, platform, version_code, version_name, update_info, file_url,
			file_path, signature_hash, is_force_update, release_date, created_at
		 FROM app_versions WHERE platform = ?
		 ORDER BY version_code DESC, created_at DESC, id DESC LIMIT 1`, platform))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListAppVersions(ctx context.Context) ([]models.AppVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, platform, version_code, version_name, update_info, file_url,
			file_path, signature_hash, is_force_update, release_date, created_at
		 FROM app_versions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.AppVersion{}
	for rows.Next() {
		var v models.AppVersion
		if err := rows.Scan(&v.ID, &v.Platform, &v.VersionCode, &v.VersionName, &v.UpdateInfo,
			&v.FileURL, &v.FilePath, &v.SignatureHash, &v.IsForceUpdate, &v.ReleaseDate, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func scanAppVersion(row *sql.Row) (models.AppVersion, error) {
	var v models.AppVersion
	err := row.Scan(&v.ID, &v.Platform, &v.VersionCode, &v.VersionName, &v.UpdateInfo,
		&v.FileURL, &v.FilePath, &v.SignatureHash, &v.IsForceUpdate, &v.ReleaseDate, &v.CreatedAt)
	return v, err
}

func (s *Store) DeleteAppVersion(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_versions WHERE id = ?`, id)
	return err
}
