package store

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"musicapp/internal/models"
)

var playlistRowColumns = []string{"id", "name", "description", "owner_id", "is_public", "song_ids", "share_code", "created_at", "updated_at"}

func TestPlaylistWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   models.PlaylistFilter
		prior    []any
		wantSQL  string
		wantArgs []any
	}{
		{name: "empty", filter: models.PlaylistFilter{}, wantSQL: ""},
		{
			name:     "owner guard",
			filter:   models.PlaylistFilter{ID: "p1", OwnerID: "u1"},
			wantSQL:  " WHERE id = $1 AND owner_id = $2",
			wantArgs: []any{"p1", "u1"},
		},
		{
			name:     "discover",
			filter:   models.PlaylistFilter{ExcludeOwnerID: "u1", PublicOnly: true},
			wantSQL:  " WHERE owner_id <> $1 AND is_public = TRUE",
			wantArgs: []any{"u1"},
		},
		{
			name:     "continues placeholders",
			filter:   models.PlaylistFilter{ID: "p1"},
			prior:    []any{"x", "y"},
			wantSQL:  " WHERE id = $3",
			wantArgs: []any{"x", "y", "p1"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			gotSQL, gotArgs := playlistWhere(tc.filter, tc.prior)
			if gotSQL != tc.wantSQL {
				t.Fatalf("sql = %q, want %q", gotSQL, tc.wantSQL)
			}
			if len(tc.wantArgs) == 0 && len(gotArgs) == 0 {
				return
			}
			if !reflect.DeepEqual(gotArgs, tc.wantArgs) {
				t.Fatalf("args = %v, want %v", gotArgs, tc.wantArgs)
			}
		})
	}
}

func TestFindPlaylistNotFound(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectQuery(`SELECT .* FROM playlists WHERE id = \$1 AND is_public = TRUE`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(playlistRowColumns))

	_, err := s.FindPlaylist(context.Background(), models.PlaylistFilter{ID: "p1", PublicOnly: true})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePlaylistAddSongIsGuardedByOwner(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE playlists\s+SET updated_at = \$1, song_ids = CASE WHEN \$2 = ANY\(song_ids\).*WHERE id = \$3 AND owner_id = \$4\s+RETURNING`).
		WithArgs(sqlmock.AnyArg(), "s2", "p1", "u1").
		WillReturnRows(sqlmock.NewRows(playlistRowColumns).
			AddRow("p1", "Mix", "", "u1", false, "{s1,s2}", "", now, now))

	playlist, err := s.UpdatePlaylist(context.Background(),
		models.PlaylistFilter{ID: "p1", OwnerID: "u1"},
		models.PlaylistUpdate{AddSongID: "s2"})
	if err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	if !reflect.DeepEqual(playlist.SongIDs, []string{"s1", "s2"}) {
		t.Fatalf("unexpected song ids: %v", playlist.SongIDs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePlaylistNoMatch(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectQuery(`UPDATE playlists`).
		WithArgs(sqlmock.AnyArg(), "s9", "p1", "intruder").
		WillReturnRows(sqlmock.NewRows(playlistRowColumns))

	_, err := s.UpdatePlaylist(context.Background(),
		models.PlaylistFilter{ID: "p1", OwnerID: "intruder"},
		models.PlaylistUpdate{RemoveSongID: "s9"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestUpdatePlaylistShareCodeConflict(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectQuery(`UPDATE playlists`).
		WithArgs(sqlmock.AnyArg(), "abcdef0123456789", "p1", "u1").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "playlists_share_code_key"})

	_, err := s.UpdatePlaylist(context.Background(),
		models.PlaylistFilter{ID: "p1", OwnerID: "u1"},
		models.PlaylistUpdate{ShareCode: "abcdef0123456789"})
	if !errors.Is(err, ErrShareCodeTaken) {
		t.Fatalf("expected ErrShareCodeTaken, got %v", err)
	}
}

func TestUpdatePlaylistRequiresFilter(t *testing.T) {
	s, _, done := fixedStore(t)
	defer done()

	if _, err := s.UpdatePlaylist(context.Background(), models.PlaylistFilter{}, models.PlaylistUpdate{AddSongID: "s1"}); err == nil {
		t.Fatal("expected error for unfiltered update")
	}
}

func TestDeletePlaylistNotOwned(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM playlists WHERE id = $1 AND owner_id = $2`)).
		WithArgs("p1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeletePlaylist(context.Background(), models.PlaylistFilter{ID: "p1", OwnerID: "u2"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestListPlaylistsOrdersByUpdatedAt(t *testing.T) {
	s, mock, done := fixedStore(t)
	defer done()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT .* FROM playlists WHERE owner_id = \$1\s+ORDER BY updated_at DESC, id DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(playlistRowColumns).
			AddRow("p2", "B", "", "u1", true, "{}", "c0de", now, now).
			AddRow("p1", "A", "", "u1", false, "{s1}", "", now.Add(-time.Hour), now.Add(-time.Hour)))

	playlists, err := s.ListPlaylists(context.Background(), models.PlaylistFilter{OwnerID: "u1"})
	if err != nil {
		t.Fatalf("ListPlaylists returned error: %v", err)
	}
	if len(playlists) != 2 || playlists[0].ID != "p2" || playlists[0].ShareCode != "c0de" {
		t.Fatalf("unexpected playlists: %+v", playlists)
	}
	if len(playlists[0].SongIDs) != 0 {
		t.Fatalf("expected empty song ids, got %v", playlists[0].SongIDs)
	}
}
