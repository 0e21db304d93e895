// Package store persists confirmed tracks to SQLite, keyed by the capture
// timestamp of the frame they were emitted for. Tentative tracks are never
// written.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	api "github.com/etesami/iou-tracking-system/api"
)

// Record is one persisted confirmed track observation.
type Record struct {
	SourceID string
	Time     time.Time
	Track    api.Track
}

// Filter narrows ListTracks. Zero values match everything.
type Filter struct {
	SourceID string
	Label    string
	TrackID  uint64
	Start    time.Time
	End      time.Time
	Limit    int
}

// Store manages the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open track db: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS confirmed_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id TEXT NOT NULL,
			track_id INTEGER NOT NULL,
			label TEXT,
			score REAL,
			x1 REAL NOT NULL,
			y1 REAL NOT NULL,
			x2 REAL NOT NULL,
			y2 REAL NOT NULL,
			hits INTEGER NOT NULL,
			ts_unix_nanos INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS confirmed_tracks_source_ts_idx ON confirmed_tracks (source_id, ts_unix_nanos);
	`)
	return err
}

// Close terminates the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveConfirmed writes the confirmed tracks of one frame in a single
// transaction and returns how many rows were written.
func (s *Store) SaveConfirmed(ctx context.Context, sourceID string, ts time.Time, tracks []api.Track) (int, error) {
	var n int
	for _, t := range tracks {
		if t.Confirmed {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO confirmed_tracks (source_id, track_id, label, score, x1, y1, x2, y2, hits, ts_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range tracks {
		if !t.Confirmed {
			continue
		}
		b := t.Bbox
		if _, err := stmt.ExecContext(ctx, sourceID, int64(t.Id), b.Label, b.Score, b.X1, b.Y1, b.X2, b.Y2, t.Hits, ts.UnixNano()); err != nil {
			return 0, fmt.Errorf("insert track %d: %w", t.Id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ListTracks returns persisted records ordered by time then track id.
func (s *Store) ListTracks(ctx context.Context, f Filter) ([]Record, error) {
	query := `SELECT source_id, track_id, label, score, x1, y1, x2, y2, hits, ts_unix_nanos
		FROM confirmed_tracks WHERE 1=1`
	var args []any
	if f.SourceID != "" {
		query += " AND source_id = ?"
		args = append(args, f.SourceID)
	}
	if f.Label != "" {
		query += " AND label = ?"
		args = append(args, f.Label)
	}
	if f.TrackID != 0 {
		query += " AND track_id = ?"
		args = append(args, int64(f.TrackID))
	}
	if !f.Start.IsZero() {
		query += " AND ts_unix_nanos >= ?"
		args = append(args, f.Start.UnixNano())
	}
	if !f.End.IsZero() {
		query += " AND ts_unix_nanos < ?"
		args = append(args, f.End.UnixNano())
	}
	query += " ORDER BY ts_unix_nanos, track_id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r       Record
			trackID int64
			label   sql.NullString
			score   sql.NullFloat64
			nanos   int64
		)
		if err := rows.Scan(&r.SourceID, &trackID, &label, &score,
			&r.Track.Bbox.X1, &r.Track.Bbox.Y1, &r.Track.Bbox.X2, &r.Track.Bbox.Y2,
			&r.Track.Hits, &nanos); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		r.Track.Id = uint64(trackID)
		r.Track.Bbox.Label = label.String
		r.Track.Bbox.Score = score.Float64
		r.Track.Confirmed = true
		r.Time = time.Unix(0, nanos)
		out = append(out, r)
	}
	return out, rows.Err()
}
