// Package library stores the scanned track collection in a local SQLite
// database, keyed by file path with incremental rescans by modification
// time.
package library

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/undertow/internal/db"
	"github.com/llehouerou/undertow/internal/track"
)

const (
	appName    = "undertow"
	dbFileName = "undertow.db"
)

const listSep = "\x1f"

type Library struct {
	db *sql.DB
}

// Open opens the library database in the XDG data directory, creating it
// and its schema when missing.
func Open() (*Library, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens a library database at an explicit path. Tests use
// ":memory:".
func OpenPath(path string) (*Library, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return &Library{db: sqlDB}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

func initSchema(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec(`
		CREATE TABLE IF NOT EXISTS library_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL,
			album_artist TEXT,
			track_number INTEGER,
			track_total INTEGER,
			disc_number INTEGER,
			disc_total INTEGER,
			genres TEXT,
			year INTEGER,
			bpm REAL,
			key TEXT,
			compilation INTEGER NOT NULL DEFAULT 0,
			comments TEXT,
			length REAL,
			size INTEGER,
			rating REAL,
			date_added INTEGER,
			last_played INTEGER,
			play_count INTEGER NOT NULL DEFAULT 0,
			uri TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_album ON library_tracks(album);
		CREATE INDEX IF NOT EXISTS idx_tracks_uri ON library_tracks(uri);
	`)
	return err
}

// All returns every track in the library.
func (l *Library) All() ([]*track.Track, error) {
	rows, err := l.db.Query(`
		SELECT path, title, artist, album, album_artist,
		       track_number, track_total, disc_number, disc_total,
		       genres, year, bpm, key, compilation, comments,
		       length, size, rating, date_added, last_played, play_count, uri
		FROM library_tracks
		ORDER BY path COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*track.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Unmatched returns the tracks with no catalog URI assigned.
func (l *Library) Unmatched() ([]*track.Track, error) {
	rows, err := l.db.Query(`
		SELECT path, title, artist, album, album_artist,
		       track_number, track_total, disc_number, disc_total,
		       genres, year, bpm, key, compilation, comments,
		       length, size, rating, date_added, last_played, play_count, uri
		FROM library_tracks
		WHERE uri IS NULL OR uri = ''
		ORDER BY album COLLATE NOCASE, disc_number, track_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []*track.Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func scanTrack(rows *sql.Rows) (*track.Track, error) {
	var t track.Track
	var albumArtist, genres, key, comments, uri sql.NullString
	var trackNum, trackTotal, discNum, discTotal, year, size, playCount sql.NullInt64
	var dateAdded, lastPlayed sql.NullInt64
	var bpm, length, rating sql.NullFloat64
	var compilation int
	var artist string

	err := rows.Scan(&t.Path, &t.Title, &artist, &t.Album, &albumArtist,
		&trackNum, &trackTotal, &discNum, &discTotal,
		&genres, &year, &bpm, &key, &compilation, &comments,
		&length, &size, &rating, &dateAdded, &lastPlayed, &playCount, &uri)
	if err != nil {
		return nil, err
	}

	t.Artists = splitStored(artist)
	t.AlbumArtist = db.NullStringValue(albumArtist)
	t.TrackNumber = int(db.NullInt64Value(trackNum))
	t.TrackTotal = int(db.NullInt64Value(trackTotal))
	t.DiscNumber = int(db.NullInt64Value(discNum))
	t.DiscTotal = int(db.NullInt64Value(discTotal))
	t.Genres = splitStored(db.NullStringValue(genres))
	t.Year = int(db.NullInt64Value(year))
	t.BPM = db.NullFloat64Value(bpm)
	t.Key = db.NullStringValue(key)
	t.Compilation = compilation != 0
	t.Comments = splitStored(db.NullStringValue(comments))
	t.Length = db.NullFloat64Value(length)
	t.Size = db.NullInt64Value(size)
	t.Rating = db.NullFloat64Value(rating)
	if dateAdded.Valid && dateAdded.Int64 > 0 {
		t.DateAdded = time.Unix(dateAdded.Int64, 0)
	}
	if lastPlayed.Valid && lastPlayed.Int64 > 0 {
		t.LastPlayed = time.Unix(lastPlayed.Int64, 0)
	}
	t.PlayCount = int(db.NullInt64Value(playCount))
	t.URI = db.NullStringValue(uri)
	return &t, nil
}

// upsert inserts or replaces a track record keyed by path.
func upsert(tx *sql.Tx, t *track.Track, mtime int64) error {
	_, err := tx.Exec(`
		INSERT INTO library_tracks (
			path, mtime, title, artist, album, album_artist,
			track_number, track_total, disc_number, disc_total,
			genres, year, bpm, key, compilation, comments,
			length, size, rating, date_added, last_played, play_count, uri
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			album_artist = excluded.album_artist,
			track_number = excluded.track_number,
			track_total = excluded.track_total,
			disc_number = excluded.disc_number,
			disc_total = excluded.disc_total,
			genres = excluded.genres,
			year = excluded.year,
			bpm = excluded.bpm,
			key = excluded.key,
			compilation = excluded.compilation,
			comments = excluded.comments,
			length = excluded.length,
			size = excluded.size,
			rating = excluded.rating,
			date_added = excluded.date_added,
			uri = CASE WHEN excluded.uri != '' THEN excluded.uri ELSE library_tracks.uri END
	`,
		t.Path, mtime, t.Title, joinStored(t.Artists), t.Album, t.AlbumArtist,
		t.TrackNumber, t.TrackTotal, t.DiscNumber, t.DiscTotal,
		joinStored(t.Genres), t.Year, t.BPM, t.Key, boolToInt(t.Compilation), joinStored(t.Comments),
		t.Length, t.Size, t.Rating, unixOrZero(t.DateAdded), unixOrZero(t.LastPlayed), t.PlayCount, t.URI)
	return err
}

// SetURI records the resolved catalog URI for a track.
func (l *Library) SetURI(path, uri string) error {
	_, err := l.db.Exec(`UPDATE library_tracks SET uri = ? WHERE path = ?`, uri, path)
	return err
}

// TouchPlayed bumps the play counter and last played time for a track.
func (l *Library) TouchPlayed(path string, at time.Time) error {
	_, err := l.db.Exec(`
		UPDATE library_tracks SET play_count = play_count + 1, last_played = ? WHERE path = ?
	`, at.Unix(), path)
	return err
}

func (l *Library) TrackCount() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&count)
	return count, err
}

// existingMtimes returns the stored mtime for every track under the given
// source directories.
func (l *Library) existingMtimes(sources []string) (map[string]int64, error) {
	existing := make(map[string]int64)
	for _, src := range sources {
		rows, err := l.db.Query(`
			SELECT path, mtime FROM library_tracks WHERE path LIKE ? || '%'
		`, src)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var path string
			var mtime int64
			if err := rows.Scan(&path, &mtime); err != nil {
				rows.Close()
				return nil, err
			}
			existing[path] = mtime
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return existing, nil
}

func (l *Library) deleteTrackByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE path = ?`, path)
	return err
}

func joinStored(values []string) string {
	return strings.Join(values, listSep)
}

func splitStored(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSep)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
