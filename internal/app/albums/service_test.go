package albums

import (
	"context"
	"errors"
	"testing"

	"musicapp/internal/app"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

func TestDeleteClearsSongReferences(t *testing.T) {
	mem := store.NewMemory()
	svc := New(mem)
	ctx := context.Background()

	album, err := svc.Create(ctx, models.Album{Name: "Night Drive"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	song, err := mem.CreateSong(ctx, &models.Song{Name: "Neon", AlbumName: "Night Drive"})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}

	if err := svc.Delete(ctx, album.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := mem.GetSong(ctx, song.ID)
	if err != nil {
		t.Fatalf("song should survive album deletion: %v", err)
	}
	if got.AlbumName != "" {
		t.Fatalf("expected album reference cleared, got %q", got.AlbumName)
	}

	albums, _ := svc.List(ctx)
	if len(albums) != 0 {
		t.Fatalf("expected no albums, got %d", len(albums))
	}
}

func TestErrorsAreClassified(t *testing.T) {
	svc := New(store.NewMemory())
	if _, err := svc.Create(context.Background(), models.Album{Name: "  "}); !errors.Is(err, app.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.Delete(context.Background(), "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
