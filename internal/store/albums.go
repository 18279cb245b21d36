package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"musicapp/internal/models"
)

func validateAlbum(album models.Album) error {
	if strings.TrimSpace(album.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAlbum)
	}
	return nil
}

// CreateAlbum persists a new album.
func (s *Store) CreateAlbum(ctx context.Context, album models.Album) (models.Album, error) {
	album.Name = strings.TrimSpace(album.Name)
	album.Description = strings.TrimSpace(album.Description)
	if err := validateAlbum(album); err != nil {
		return models.Album{}, err
	}
	if album.ID == "" {
		album.ID = s.newID()
	}
	album.CreatedAt = s.now()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO albums (id, name, description, background_color, image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, album.ID, album.Name, album.Description, album.BackgroundColor, album.ImageURL, album.CreatedAt); err != nil {
		return models.Album{}, fmt.Errorf("insert album: %w", err)
	}
	return album, nil
}

// ListAlbums returns every album, oldest first.
func (s *Store) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, background_color, image_url, created_at
		FROM albums
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	albums := make([]models.Album, 0)
	for rows.Next() {
		var album models.Album
		if err := rows.Scan(&album.ID, &album.Name, &album.Description, &album.BackgroundColor,
			&album.ImageURL, &album.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// DeleteAlbum removes an album and blanks the album name on every song that
// referenced it. Songs themselves are kept.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var name string
	err = tx.QueryRowContext(ctx, `
		SELECT name
		FROM albums
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAlbumNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup album: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE songs
		SET album_name = ''
		WHERE album_name = $1
	`, name); err != nil {
		return fmt.Errorf("clear album references: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete album: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}
