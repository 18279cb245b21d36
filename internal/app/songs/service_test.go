package songs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"musicapp/internal/app"
	"musicapp/internal/events"
	"musicapp/internal/media"
	"musicapp/internal/store"
)

type stubUploader struct {
	kinds []media.Kind
	err   error
}

func (u *stubUploader) Upload(_ context.Context, kind media.Kind, file media.File) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.kinds = append(u.kinds, kind)
	return "https://cdn.example.com/" + string(kind) + "/" + file.Name, nil
}

type stubPublisher struct {
	events []events.SongCreated
	err    error
}

func (p *stubPublisher) PublishSongCreated(_ context.Context, evt events.SongCreated) error {
	p.events = append(p.events, evt)
	return p.err
}

func TestCreateUploadsAndPublishes(t *testing.T) {
	mem := store.NewMemory()
	up := &stubUploader{}
	pub := &stubPublisher{}
	svc := New(mem, up, pub)

	seconds := 212.7
	song, err := svc.Create(context.Background(), CreateInput{
		Name:            " Sunrise Echoes ",
		AlbumName:       "First Light",
		DurationSeconds: &seconds,
		Audio:           &media.File{Name: "sunrise.mp3", Body: strings.NewReader("id3")},
		Image:           &media.File{Name: "cover.png", Body: strings.NewReader("png")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if song.Name != "Sunrise Echoes" || song.DurationDisplay != "3:32" {
		t.Fatalf("unexpected song %+v", song)
	}
	if song.AudioURL != "https://cdn.example.com/audio/sunrise.mp3" || song.ImageURL != "https://cdn.example.com/images/cover.png" {
		t.Fatalf("unexpected urls %q %q", song.AudioURL, song.ImageURL)
	}
	if len(pub.events) != 1 || pub.events[0].SongID != song.ID || pub.events[0].AudioURL != song.AudioURL {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestCreateSurvivesPublishFailure(t *testing.T) {
	mem := store.NewMemory()
	svc := New(mem, nil, &stubPublisher{err: errors.New("bus closed")})

	song, err := svc.Create(context.Background(), CreateInput{Name: "Track", AudioURL: "https://cdn/t.mp3"})
	if err != nil {
		t.Fatalf("publish failure must not fail create: %v", err)
	}
	if ok, _ := mem.SongExists(context.Background(), song.ID); !ok {
		t.Fatal("song not persisted")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(store.NewMemory(), nil, nil)
	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "missing name", in: CreateInput{AudioURL: "u"}},
		{name: "missing audio", in: CreateInput{Name: "x"}},
		{name: "upload without storage", in: CreateInput{Name: "x", Audio: &media.File{Name: "a.mp3", Body: strings.NewReader("")}}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, app.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	svc := New(store.NewMemory(), nil, nil)
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(context.Background(), "nope"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
