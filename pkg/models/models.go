package models

import "time"

// users table (password hash lives in the store layer, never on the wire)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// settings table, one row per user
type Settings struct {
	Theme               string  `json:"theme"`
	Language            string  `json:"language"`
	FontSize            int     `json:"fontSize"`
	LineHeight          float64 `json:"lineHeight"`
	FontFamily          string  `json:"fontFamily"`
	CustomTheme         string  `json:"customTheme"`
	AccentColor         string  `json:"accentColor"`
	PageTurnEffect      string  `json:"pageTurnEffect"`
	ContinuousReading   bool    `json:"continuousReading"`
	PlaybackRate        float64 `json:"playbackRate"`
	PauseOnManualSwitch bool    `json:"pauseOnManualSwitch"`
	LoopCount           int     `json:"loopCount"`
}

// progress table, one row per user
type Progress struct {
	BookIndex    int `json:"bookIndex"`
	ChapterIndex int `json:"chapterIndex"`
	VerseNum     int `json:"verseNum"`
}

// Bookmark/Highlight/Note ids are generated client-side and are opaque here.
type Bookmark struct {
	ID         string `json:"id"`
	BookID     string `json:"bookId"`
	Chapter    int    `json:"chapter"`
	StartVerse int    `json:"startVerse"`
	EndVerse   int    `json:"endVerse"`
}

type Highlight struct {
	ID         string `json:"id"`
	BookID     string `json:"bookId"`
	Chapter    int    `json:"chapter"`
	StartVerse int    `json:"startVerse"`
	EndVerse   int    `json:"endVerse"`
	Color      string `json:"color"`
}

type Note struct {
	ID         string `json:"id"`
	BookID     string `json:"bookId"`
	Chapter    int    `json:"chapter"`
	StartVerse int    `json:"startVerse"`
	EndVerse   int    `json:"endVerse"`
	Text       string `json:"text"`
}

// Snapshot is the client-authoritative payload of a full sync. Nil
// settings/progress mean "not included", nil slices mean "empty".
type Snapshot struct {
	Settings   *Settings   `json:"settings"`
	Progress   *Progress   `json:"progress"`
	Bookmarks  []Bookmark  `json:"bookmarks"`
	Highlights []Highlight `json:"highlights"`
	Notes      []Note      `json:"notes"`
}

// Profile is the server's full view of a user's stored state. Settings and
// Progress are null until first synced; the slices are always present.
type Profile struct {
	Settings   *Settings   `json:"settings"`
	Progress   *Progress   `json:"progress"`
	Bookmarks  []Bookmark  `json:"bookmarks"`
	Highlights []Highlight `json:"highlights"`
	Notes      []Note      `json:"notes"`
}

// app_versions table, append-only
type AppVersion struct {
	ID            int64     `json:"id"`
	Platform      string    `json:"platform"`
	VersionCode   int       `json:"versionCode"`
	VersionName   string    `json:"versionName"`
	UpdateInfo    string    `json:"updateInfo"`
	FileURL       string    `json:"fileUrl"`
	FilePath      string    `json:"filePath"`
	SignatureHash string    `json:"signatureHash"`
	IsForceUpdate bool      `json:"isForceUpdate"`
	ReleaseDate   time.Time `json:"releaseDate"`
	CreatedAt     time.Time `json:"createdAt"`
}
