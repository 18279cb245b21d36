package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"musicapp/internal/models"
)

const songColumns = `id, name, description, album_name, image_url, audio_url, duration,
		COALESCE(artist, ''), COALESCE(genre, ''), release_year,
		bpm, energy, danceability, valence, acousticness, instrumentalness, liveness, speechiness,
		created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (models.Song, error) {
	var (
		song models.Song
		year sql.NullInt32
		f    [8]sql.NullFloat64
	)
	err := row.Scan(&song.ID, &song.Name, &song.Description, &song.AlbumName, &song.ImageURL, &song.AudioURL,
		&song.DurationDisplay, &song.Artist, &song.Genre, &year,
		&f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &song.CreatedAt)
	if err != nil {
		return models.Song{}, err
	}
	if year.Valid {
		y := int(year.Int32)
		song.ReleaseYear = &y
	}
	targets := []**float64{
		&song.BPM, &song.Energy, &song.Danceability, &song.Valence,
		&song.Acousticness, &song.Instrumentalness, &song.Liveness, &song.Speechiness,
	}
	for i, v := range f {
		if v.Valid {
			val := v.Float64
			*targets[i] = &val
		}
	}
	return song, nil
}

// CreateSong inserts a catalog entry and fills in its id and creation time.
func (s *Store) CreateSong(ctx context.Context, song *models.Song) (*models.Song, error) {
	if song == nil {
		return nil, errors.New("song is required")
	}
	if song.ID == "" {
		song.ID = s.newID()
	}
	song.CreatedAt = s.now()

	var year any
	if song.ReleaseYear != nil {
		year = *song.ReleaseYear
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (id, name, description, album_name, image_url, audio_url, duration,
			artist, genre, release_year,
			bpm, energy, danceability, valence, acousticness, instrumentalness, liveness, speechiness,
			created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		song.ID, song.Name, song.Description, song.AlbumName, song.ImageURL, song.AudioURL, song.DurationDisplay,
		nullIfEmpty(song.Artist), nullIfEmpty(song.Genre), year,
		song.BPM, song.Energy, song.Danceability, song.Valence,
		song.Acousticness, song.Instrumentalness, song.Liveness, song.Speechiness,
		song.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert song: %w", err)
	}
	return song, nil
}

// GetSong returns a single song by id.
func (s *Store) GetSong(ctx context.Context, id string) (*models.Song, error) {
	song, err := scanSong(s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSongNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return &song, nil
}

// SongExists reports whether id names a catalog song.
func (s *Store) SongExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM songs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check song: %w", err)
	}
	return exists, nil
}

// ListSongs returns the full catalog in insertion order.
func (s *Store) ListSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	songs := make([]models.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// SongsByIDs resolves ids to songs in the order given. Unknown ids are
// skipped.
func (s *Store) SongsByIDs(ctx context.Context, ids []string) ([]models.Song, error) {
	if len(ids) == 0 {
		return []models.Song{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolve songs: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]models.Song, len(ids))
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		byID[song.ID] = song
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return orderSongs(ids, byID), nil
}

// DeleteSong removes a song. Playlist and favorite references are left in
// place and drop out when resolved.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}

func orderSongs(ids []string, byID map[string]models.Song) []models.Song {
	songs := make([]models.Song, 0, len(ids))
	for _, id := range ids {
		if song, ok := byID[id]; ok {
			songs = append(songs, song)
		}
	}
	return songs
}
