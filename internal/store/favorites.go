package store

import (
	"context"
	"fmt"

	"musicapp/internal/models"
)

// AddFavorite upserts the (user, song) pair. inserted reports whether the
// row is new.
func (s *Store) AddFavorite(ctx context.Context, userID, songID string) (favorite *models.Favorite, inserted bool, err error) {
	favorite = &models.Favorite{UserID: userID, SongID: songID}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO favorites (id, user_id, song_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, song_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at, (xmax = 0) AS inserted`,
		s.newID(), userID, songID, s.now(),
	).Scan(&favorite.ID, &favorite.CreatedAt, &inserted)
	if err != nil {
		return nil, false, fmt.Errorf("upsert favorite: %w", err)
	}
	return favorite, inserted, nil
}

// RemoveFavorite deletes the pair if present. Removing an absent pair is
// not an error.
func (s *Store) RemoveFavorite(ctx context.Context, userID, songID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND song_id = $2`, userID, songID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListFavoriteSongIDs returns the user's favorited song ids, newest first.
func (s *Store) ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT song_id
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return ids, nil
}
