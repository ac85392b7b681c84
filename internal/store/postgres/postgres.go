// Package postgres implements store.Store on a pgx connection pool. This is
// the driver used by the stateless edge deployment, where every instance
// shares one managed database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"versehub/internal/store"
	"versehub/pkg/models"
)

type Store struct {
	pool *pgxpool.Pool
}

// Open connects to the database and applies the schema.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool) *Store { return &Store{pool: pool} }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			theme TEXT,
			language TEXT,
			font_size INTEGER,
			line_height DOUBLE PRECISION,
			font_family TEXT,
			custom_theme TEXT,
			accent_color TEXT,
			page_turn_effect TEXT,
			continuous_reading BOOLEAN,
			playback_rate DOUBLE PRECISION,
			pause_on_manual_switch BOOLEAN,
			loop_count INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS progress (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			book_index INTEGER,
			chapter_index INTEGER,
			verse_num INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY,
			user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS highlights (
			id TEXT PRIMARY KEY,
			user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER,
			color TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			user_id TEXT REFERENCES users(id) ON DELETE CASCADE,
			book_id TEXT,
			chapter INTEGER,
			start_verse INTEGER,
			end_verse INTEGER,
			text TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS app_versions (
			id BIGSERIAL PRIMARY KEY,
			platform TEXT NOT NULL,
			version_code INTEGER,
			version_name TEXT,
			update_info TEXT,
			file_url TEXT,
			file_path TEXT,
			signature_hash TEXT,
			is_force_update BOOLEAN DEFAULT FALSE,
			release_date TIMESTAMPTZ NOT NULL DEFAULT now(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for i, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate stmt %d: %w", i, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ---- users ----

func (s *Store) CreateUser(ctx context.Context, u store.UserRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Username, u.PasswordHash)
	if isUniqueViolation(err) {
		return store.ErrDuplicateUsername
	}
	return err
}

func (s *Store) UserByUsername(ctx context.Context, username string) (store.UserRecord, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`, username))
}

func (s *Store) UserByID(ctx context.Context, id string) (store.UserRecord, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`, id))
}

func (s *Store) scanUser(row pgx.Row) (store.UserRecord, error) {
	var u store.UserRecord
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.UserRecord{}, store.ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
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
	_, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (s *Store) ResetUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

// ---- admins ----

func (s *Store) AdminByUsername(ctx context.Context, username string) (store.AdminRecord, error) {
	var a store.AdminRecord
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`, username).
		Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.AdminRecord{}, store.ErrNotFound
	}
	return a, err
}

func (s *Store) EnsureAdmin(ctx context.Context, a store.AdminRecord) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO admins (id, username, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (username) DO NOTHING`,
		a.ID, a.Username, a.PasswordHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ---- settings / progress ----

const upsertSettingsSQL = `
	INSERT INTO settings (user_id, theme, language, font_size, line_height, font_family,
		custom_theme, accent_color, page_turn_effect, continuous_reading, playback_rate,
		pause_on_manual_switch, loop_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (user_id) DO UPDATE SET
		theme=excluded.theme, language=excluded.language, font_size=excluded.font_size,
		line_height=excluded.line_height, font_family=excluded.font_family,
		custom_theme=excluded.custom_theme, accent_color=excluded.accent_color,
		page_turn_effect=excluded.page_turn_effect, continuous_reading=excluded.continuous_reading,
		playback_rate=excluded.playback_rate, pause_on_manual_switch=excluded.pause_on_manual_switch,
		loop_count=excluded.loop_count`

const upsertProgressSQL = `
	INSERT INTO progress (user_id, book_index, chapter_index, verse_num)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE SET
		book_index=excluded.book_index, chapter_index=excluded.chapter_index,
		verse_num=excluded.verse_num`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func upsertSettings(ctx context.Context, e execer, userID string, st models.Settings) error {
	_, err := e.Exec(ctx, upsertSettingsSQL,
		userID, st.Theme, st.Language, st.FontSize, st.LineHeight, st.FontFamily,
		st.CustomTheme, st.AccentColor, st.PageTurnEffect, st.ContinuousReading,
		st.PlaybackRate, st.PauseOnManualSwitch, st.LoopCount)
	return err
}

func upsertProgress(ctx context.Context, e execer, userID string, p models.Progress) error {
	_, err := e.Exec(ctx, upsertProgressSQL,
		userID, p.BookIndex, p.ChapterIndex, p.VerseNum)
	return err
}

func (s *Store) Settings(ctx context.Context, userID string) (*models.Settings, error) {
	var st models.Settings
	err := s.pool.QueryRow(ctx,
		`SELECT theme, language, font_size, line_height, font_family, custom_theme,
			accent_color, page_turn_effect, continuous_reading, playback_rate,
			pause_on_manual_switch, loop_count
		 FROM settings WHERE user_id = $1`, userID).
		Scan(&st.Theme, &st.Language, &st.FontSize, &st.LineHeight, &st.FontFamily,
			&st.CustomTheme, &st.AccentColor, &st.PageTurnEffect, &st.ContinuousReading,
			&st.PlaybackRate, &st.PauseOnManualSwitch, &st.LoopCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) UpsertSettings(ctx context.Context, userID string, st models.Settings) error {
	return upsertSettings(ctx, s.pool, userID, st)
}

func (s *Store) Progress(ctx context.Context, userID string) (*models.Progress, error) {
	var p models.Progress
	err := s.pool.QueryRow(ctx,
		`SELECT book_index, chapter_index, verse_num FROM progress WHERE user_id = $1`, userID).
		Scan(&p.BookIndex, &p.ChapterIndex, &p.VerseNum)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) UpsertProgress(ctx context.Context, userID string, p models.Progress) error {
	return upsertProgress(ctx, s.pool, userID, p)
}

// ---- bookmarks / highlights / notes ----

func (s *Store) Bookmarks(ctx context.Context, userID string) ([]models.Bookmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse FROM bookmarks WHERE user_id = $1`, userID)
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bookmarks (id, user_id, book_id, chapter, start_verse, end_verse)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			user_id=excluded.user_id, book_id=excluded.book_id, chapter=excluded.chapter,
			start_verse=excluded.start_verse, end_verse=excluded.end_verse`,
		b.ID, userID, b.BookID, b.Chapter, b.StartVerse, b.EndVerse)
	return err
}

func (s *Store) DeleteBookmark(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM bookmarks WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (s *Store) Highlights(ctx context.Context, userID string) ([]models.Highlight, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse, color FROM highlights WHERE user_id = $1`, userID)
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO highlights (id, user_id, book_id, chapter, start_verse, end_verse, color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			user_id=excluded.user_id, book_id=excluded.book_id, chapter=excluded.chapter,
			start_verse=excluded.start_verse, end_verse=excluded.end_verse, color=excluded.color`,
		h.ID, userID, h.BookID, h.Chapter, h.StartVerse, h.EndVerse, h.Color)
	return err
}

func (s *Store) DeleteHighlight(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM highlights WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (s *Store) Notes(ctx context.Context, userID string) ([]models.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, book_id, chapter, start_verse, end_verse, text FROM notes WHERE user_id = $1`, userID)
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
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notes (id, user_id, book_id, chapter, start_verse, end_verse, text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
			user_id=excluded.user_id, book_id=excluded.book_id, chapter=excluded.chapter,
			start_verse=excluded.start_verse, end_verse=excluded.end_verse, text=excluded.text`,
		n.ID, userID, n.BookID, n.Chapter, n.StartVerse, n.EndVerse, n.Text)
	return err
}

func (s *Store) DeleteNote(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// ---- full sync ----

func (s *Store) ReplaceSnapshot(ctx context.Context, userID string, snap models.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

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

	if _, err := tx.Exec(ctx, `DELETE FROM bookmarks WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}
	for _, b := range snap.Bookmarks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO bookmarks (id, user_id, book_id, chapter, start_verse, end_verse)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			b.ID, userID, b.BookID, b.Chapter, b.StartVerse, b.EndVerse); err != nil {
			return fmt.Errorf("insert bookmark %s: %w", b.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM highlights WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear highlights: %w", err)
	}
	for _, h := range snap.Highlights {
		if _, err := tx.Exec(ctx,
			`INSERT INTO highlights (id, user_id, book_id, chapter, start_verse, end_verse, color)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			h.ID, userID, h.BookID, h.Chapter, h.StartVerse, h.EndVerse, h.Color); err != nil {
			return fmt.Errorf("insert highlight %s: %w", h.ID, err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM notes WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	for _, n := range snap.Notes {
		if _, err := tx.Exec(ctx,
			`INSERT INTO notes (id, user_id, book_id, chapter, start_verse, end_verse, text)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			n.ID, userID, n.BookID, n.Chapter, n.StartVerse, n.EndVerse, n.Text); err != nil {
			return fmt.Errorf("insert note %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ---- app versions ----

func (s *Store) InsertAppVersion(ctx context.Context, v *models.AppVersion) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO app_versions (platform, version_code, version_name, update_info,
			file_url, file_path, signature_hash, is_force_update)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, release_date, created_at`,
		v.Platform, v.VersionCode, v.VersionName, v.UpdateInfo,
		v.FileURL, v.FilePath, v.SignatureHash, v.IsForceUpdate).
		Scan(&v.ID, &v.ReleaseDate, &v.CreatedAt)
}

func (s *Store) LatestAppVersion(ctx context.Context, platform string) (*models.AppVersion, error) {
	var v models.AppVersion
	err := s.pool.QueryRow(ctx,
		`SELECT id, platform, version_code, version_name, update_info, file_url,
			file_path, signature_hash, is_force_update, release_date, created_at
		 FROM app_versions WHERE platform = $1
		 ORDER BY version_code DESC, created_at DESC, id DESC LIMIT 1`, platform).
		Scan(&v.ID, &v.Platform, &v.VersionCode, &v.VersionName, &v.UpdateInfo,
			&v.FileURL, &v.FilePath, &v.SignatureHash, &v.IsForceUpdate, &v.ReleaseDate, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Store) ListAppVersions(ctx context.Context) ([]models.AppVersion, error) {
	rows, err := s.pool.Query(ctx,
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

func (s *Store) DeleteAppVersion(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM app_versions WHERE id = $1`, id)
	return err
}
