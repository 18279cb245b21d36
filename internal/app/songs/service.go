package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"musicapp/internal/app"
	"musicapp/internal/events"
	"musicapp/internal/logging"
	"musicapp/internal/media"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the catalog persistence used by song workflows.
type Store interface {
	CreateSong(ctx context.Context, song *models.Song) (*models.Song, error)
	GetSong(ctx context.Context, id string) (*models.Song, error)
	ListSongs(ctx context.Context) ([]models.Song, error)
	DeleteSong(ctx context.Context, id string) error
}

// Uploader stores media and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, kind media.Kind, file media.File) (string, error)
}

// Publisher announces committed songs.
type Publisher interface {
	PublishSongCreated(ctx context.Context, evt events.SongCreated) error
}

// CreateInput carries a new song. Either Audio or AudioURL must be present;
// uploads take precedence over URLs.
type CreateInput struct {
	Name            string
	Description     string
	AlbumName       string
	Artist          string
	Genre           string
	ReleaseYear     *int
	DurationSeconds *float64
	Duration        string
	AudioURL        string
	ImageURL        string
	Audio           *media.File
	Image           *media.File
	Features        models.AudioFeatures
}

// Service exposes song catalog operations.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.Song, error)
	Get(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store     Store
	uploader  Uploader
	publisher Publisher
}

// New constructs a song Service. uploader and publisher may be nil.
func New(st Store, uploader Uploader, publisher Publisher) Service {
	return &service{store: st, uploader: uploader, publisher: publisher}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, app.Validation("name is required")
	}
	if in.Audio == nil && strings.TrimSpace(in.AudioURL) == "" {
		return nil, app.Validation("audio file or audioUrl is required")
	}

	audioURL, err := s.upload(ctx, media.KindAudio, in.Audio, in.AudioURL)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.upload(ctx, media.KindImage, in.Image, in.ImageURL)
	if err != nil {
		return nil, err
	}

	duration := strings.TrimSpace(in.Duration)
	if in.DurationSeconds != nil {
		duration = models.FormatDuration(*in.DurationSeconds)
	}

	song, err := s.store.CreateSong(ctx, &models.Song{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		AlbumName:       strings.TrimSpace(in.AlbumName),
		ImageURL:        imageURL,
		AudioURL:        audioURL,
		DurationDisplay: duration,
		Artist:          strings.TrimSpace(in.Artist),
		Genre:           strings.TrimSpace(in.Genre),
		ReleaseYear:     in.ReleaseYear,
		AudioFeatures:   in.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("create song: %w", err)
	}

	if s.publisher != nil {
		evt := events.SongCreated{
			SongID:    song.ID,
			Name:      song.Name,
			AlbumName: song.AlbumName,
			AudioURL:  song.AudioURL,
			CreatedAt: song.CreatedAt,
		}
		if err := s.publisher.PublishSongCreated(ctx, evt); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("song_id", song.ID).Msg("publish song.created failed")
		}
	}
	return song, nil
}

func (s *service) upload(ctx context.Context, kind media.Kind, file *media.File, fallback string) (string, error) {
	if file == nil {
		return strings.TrimSpace(fallback), nil
	}
	if s.uploader == nil {
		return "", app.Validation("file uploads are not enabled")
	}
	url, err := s.uploader.Upload(ctx, kind, *file)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", kind, err)
	}
	return url, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	song, err := s.store.GetSong(ctx, id)
	if errors.Is(err, store.ErrSongNotFound) {
		return nil, app.NotFound("Song not found")
	}
	return song, err
}

func (s *service) List(ctx context.Context) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

// Delete removes the song only; playlists and favorites keep the dangling id.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.store.DeleteSong(ctx, id)
	if errors.Is(err, store.ErrSongNotFound) {
		return app.NotFound("Song not found")
	}
	return err
}
