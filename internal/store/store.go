package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSongNotFound signals a song id with no catalog row.
	ErrSongNotFound = errors.New("song not found")
	// ErrInvalidAlbum indicates validation failure for album data.
	ErrInvalidAlbum = errors.New("invalid album")
	// ErrAlbumNotFound signals an album id with no row.
	ErrAlbumNotFound = errors.New("album not found")
	// ErrPlaylistNotFound signals that no playlist matched the filter.
	ErrPlaylistNotFound = errors.New("playlist not found")
	// ErrShareCodeTaken signals a write that would duplicate another
	// playlist's share code.
	ErrShareCodeTaken = errors.New("share code already in use")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func isShareCodeViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "playlists_share_code_key"
	}
	return false
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
