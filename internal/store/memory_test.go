package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"musicapp/internal/models"
)

func steppingMemory() *Memory {
	m := NewMemory()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return m
}

func TestMemoryPlaylistOwnerGuard(t *testing.T) {
	ctx := context.Background()
	m := steppingMemory()

	p, err := m.CreatePlaylist(ctx, &models.Playlist{Name: "Mix", OwnerID: "u1", SongIDs: []string{"s1", "s1", ""}})
	if err != nil {
		t.Fatalf("CreatePlaylist returned error: %v", err)
	}
	if !reflect.DeepEqual(p.SongIDs, []string{"s1"}) {
		t.Fatalf("expected deduped ids, got %v", p.SongIDs)
	}

	_, err = m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: p.ID, OwnerID: "u2"}, models.PlaylistUpdate{AddSongID: "s2"})
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound for non-owner, got %v", err)
	}

	updated, err := m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: p.ID, OwnerID: "u1"}, models.PlaylistUpdate{AddSongID: "s2"})
	if err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	again, err := m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: p.ID, OwnerID: "u1"}, models.PlaylistUpdate{AddSongID: "s2"})
	if err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	if !reflect.DeepEqual(updated.SongIDs, again.SongIDs) || len(again.SongIDs) != 2 {
		t.Fatalf("adding twice should be a no-op, got %v then %v", updated.SongIDs, again.SongIDs)
	}
	if !again.UpdatedAt.After(p.UpdatedAt) {
		t.Fatal("expected updated_at to advance")
	}

	if err := m.DeletePlaylist(ctx, models.PlaylistFilter{ID: p.ID, OwnerID: "u2"}); !errors.Is(err, ErrPlaylistNotFound) {
		t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
	}
	if err := m.DeletePlaylist(ctx, models.PlaylistFilter{ID: p.ID, OwnerID: "u1"}); err != nil {
		t.Fatalf("DeletePlaylist returned error: %v", err)
	}
}

func TestMemoryShareCodeUnique(t *testing.T) {
	ctx := context.Background()
	m := steppingMemory()

	a, _ := m.CreatePlaylist(ctx, &models.Playlist{Name: "A", OwnerID: "u1"})
	b, _ := m.CreatePlaylist(ctx, &models.Playlist{Name: "B", OwnerID: "u1"})

	if _, err := m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: a.ID}, models.PlaylistUpdate{ShareCode: "c0ffee"}); err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	if _, err := m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: b.ID}, models.PlaylistUpdate{ShareCode: "c0ffee"}); !errors.Is(err, ErrShareCodeTaken) {
		t.Fatalf("expected ErrShareCodeTaken, got %v", err)
	}
	exists, _ := m.ShareCodeExists(ctx, "c0ffee")
	if !exists {
		t.Fatal("expected share code to exist")
	}
	found, err := m.FindPlaylist(ctx, models.PlaylistFilter{ShareCode: "c0ffee"})
	if err != nil || found.ID != a.ID {
		t.Fatalf("FindPlaylist by code = %v, %v", found, err)
	}
}

func TestMemoryListPlaylistsNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := steppingMemory()

	first, _ := m.CreatePlaylist(ctx, &models.Playlist{Name: "first", OwnerID: "u1", IsPublic: true})
	second, _ := m.CreatePlaylist(ctx, &models.Playlist{Name: "second", OwnerID: "u2", IsPublic: true})
	_, _ = m.CreatePlaylist(ctx, &models.Playlist{Name: "hidden", OwnerID: "u2"})

	list, _ := m.ListPlaylists(ctx, models.PlaylistFilter{PublicOnly: true})
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	// touching the older one moves it to the front
	if _, err := m.UpdatePlaylist(ctx, models.PlaylistFilter{ID: first.ID}, models.PlaylistUpdate{AddSongID: "s1"}); err != nil {
		t.Fatalf("UpdatePlaylist returned error: %v", err)
	}
	list, _ = m.ListPlaylists(ctx, models.PlaylistFilter{PublicOnly: true, ExcludeOwnerID: "u2"})
	if len(list) != 1 || list[0].ID != first.ID {
		t.Fatalf("unexpected discover result: %+v", list)
	}
}

func TestMemoryDeleteAlbumClearsSongs(t *testing.T) {
	ctx := context.Background()
	m := steppingMemory()

	album, err := m.CreateAlbum(ctx, models.Album{Name: "Orbitals"})
	if err != nil {
		t.Fatalf("CreateAlbum returned error: %v", err)
	}
	song, _ := m.CreateSong(ctx, &models.Song{Name: "Starfield", AlbumName: "Orbitals"})
	other, _ := m.CreateSong(ctx, &models.Song{Name: "Elsewhere", AlbumName: "Skyline"})

	if err := m.DeleteAlbum(ctx, album.ID); err != nil {
		t.Fatalf("DeleteAlbum returned error: %v", err)
	}
	got, _ := m.GetSong(ctx, song.ID)
	if got.AlbumName != "" {
		t.Fatalf("expected album name cleared, got %q", got.AlbumName)
	}
	kept, _ := m.GetSong(ctx, other.ID)
	if kept.AlbumName != "Skyline" {
		t.Fatalf("unrelated song changed: %q", kept.AlbumName)
	}
	if err := m.DeleteAlbum(ctx, album.ID); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestMemoryFavoritesAndActivity(t *testing.T) {
	ctx := context.Background()
	m := steppingMemory()

	_, inserted, _ := m.AddFavorite(ctx, "u1", "s1")
	_, again, _ := m.AddFavorite(ctx, "u1", "s1")
	_, _, _ = m.AddFavorite(ctx, "u1", "s2")
	if !inserted || again {
		t.Fatalf("inserted=%v again=%v", inserted, again)
	}
	ids, _ := m.ListFavoriteSongIDs(ctx, "u1")
	if !reflect.DeepEqual(ids, []string{"s2", "s1"}) {
		t.Fatalf("unexpected favorites %v", ids)
	}
	removed, _ := m.RemoveFavorite(ctx, "u1", "missing")
	if removed {
		t.Fatal("removing an absent favorite should report false")
	}

	for i := 0; i < 25; i++ {
		_, _ = m.AppendActivity(ctx, models.Activity{UserID: "u1", Type: models.ActivityPlay, Metadata: map[string]any{"n": i}})
	}
	_, _ = m.AppendActivity(ctx, models.Activity{UserID: "u2", Type: models.ActivityVisit})
	recent, _ := m.RecentActivity(ctx, "u1", 0)
	if len(recent) != models.RecentActivityLimit {
		t.Fatalf("expected %d entries, got %d", models.RecentActivityLimit, len(recent))
	}
	if recent[0].Metadata["n"] != 24 {
		t.Fatalf("expected newest first, got %v", recent[0].Metadata)
	}
}
