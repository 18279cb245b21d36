package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"musicapp/internal/models"
)

const playlistColumns = `id, name, description, owner_id, is_public, song_ids, COALESCE(share_code, ''), created_at, updated_at`

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := row.Scan(&playlist.ID, &playlist.Name, &playlist.Description, &playlist.OwnerID, &playlist.IsPublic,
		pq.Array(&playlist.SongIDs), &playlist.ShareCode, &playlist.CreatedAt, &playlist.UpdatedAt); err != nil {
		return nil, err
	}
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}
	return &playlist, nil
}

// playlistWhere renders the filter as a WHERE clause whose placeholders
// continue after the args already collected.
func playlistWhere(filter models.PlaylistFilter, args []any) (string, []any) {
	var conds []string
	add := func(cond string, value any) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.ID != "" {
		add("id = $%d", filter.ID)
	}
	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.ShareCode != "" {
		add("share_code = $%d", filter.ShareCode)
	}
	if filter.ExcludeOwnerID != "" {
		add("owner_id <> $%d", filter.ExcludeOwnerID)
	}
	if filter.PublicOnly {
		conds = append(conds, "is_public = TRUE")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CreatePlaylist persists a new playlist.
func (s *Store) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, errors.New("playlist is required")
	}
	created := playlist.Clone()
	if created.ID == "" {
		created.ID = s.newID()
	}
	created.SongIDs = models.DedupeIDs(created.SongIDs)
	now := s.now()

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO playlists (id, name, description, owner_id, is_public, song_ids, share_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+playlistColumns,
		created.ID, created.Name, created.Description, created.OwnerID, created.IsPublic,
		pq.Array(created.SongIDs), nullIfEmpty(created.ShareCode), now)
	result, err := scanPlaylist(row)
	if err != nil {
		if isShareCodeViolation(err) {
			return nil, ErrShareCodeTaken
		}
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return result, nil
}

// FindPlaylist returns the first playlist matching filter.
func (s *Store) FindPlaylist(ctx context.Context, filter models.PlaylistFilter) (*models.Playlist, error) {
	where, args := playlistWhere(filter, nil)
	playlist, err := scanPlaylist(s.db.QueryRowContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists`+where+`
		LIMIT 1`, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get playlist: %w", err)
	}
	return playlist, nil
}

// ListPlaylists returns every playlist matching filter, most recently
// updated first.
func (s *Store) ListPlaylists(ctx context.Context, filter models.PlaylistFilter) ([]*models.Playlist, error) {
	where, args := playlistWhere(filter, nil)
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists`+where+`
		ORDER BY updated_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	playlists := make([]*models.Playlist, 0)
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// UpdatePlaylist applies update to the playlist matching filter in a single
// statement, so the filter is re-checked at write time.
func (s *Store) UpdatePlaylist(ctx context.Context, filter models.PlaylistFilter, update models.PlaylistUpdate) (*models.Playlist, error) {
	args := []any{s.now()}
	sets := []string{"updated_at = $1"}
	set := func(expr string, value any) {
		args = append(args, value)
		n := len(args)
		sets = append(sets, strings.ReplaceAll(expr, "$?", fmt.Sprintf("$%d", n)))
	}

	switch {
	case update.AddSongID != "":
		set("song_ids = CASE WHEN $? = ANY(song_ids) THEN song_ids ELSE array_append(song_ids, $?) END", update.AddSongID)
	case update.RemoveSongID != "":
		set("song_ids = array_remove(song_ids, $?)", update.RemoveSongID)
	}
	if update.IsPublic != nil {
		set("is_public = $?", *update.IsPublic)
	}
	if update.ShareCode != "" {
		set("share_code = $?", update.ShareCode)
	}

	where, args := playlistWhere(filter, args)
	if where == "" {
		return nil, errors.New("update requires a filter")
	}

	playlist, err := scanPlaylist(s.db.QueryRowContext(ctx, `
		UPDATE playlists
		SET `+strings.Join(sets, ", ")+where+`
		RETURNING `+playlistColumns, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlaylistNotFound
	}
	if err != nil {
		if isShareCodeViolation(err) {
			return nil, ErrShareCodeTaken
		}
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return playlist, nil
}

// DeletePlaylist removes the playlist matching filter.
func (s *Store) DeletePlaylist(ctx context.Context, filter models.PlaylistFilter) error {
	where, args := playlistWhere(filter, nil)
	if where == "" {
		return errors.New("delete requires a filter")
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists`+where, args...)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// ShareCodeExists reports whether any playlist already carries code.
func (s *Store) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM playlists WHERE share_code = $1)`, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check share code: %w", err)
	}
	return exists, nil
}
