package albums

import (
	"context"
	"errors"

	"musicapp/internal/app"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, album models.Album) (models.Album, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	DeleteAlbum(ctx context.Context, id string) error
}

// Service coordinates album-related operations.
type Service interface {
	Create(ctx context.Context, album models.Album) (models.Album, error)
	List(ctx context.Context) ([]models.Album, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, album models.Album) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	created, err := s.store.CreateAlbum(ctx, album)
	if errors.Is(err, store.ErrInvalidAlbum) {
		return models.Album{}, app.Validation("name is required")
	}
	return created, err
}

func (s *service) List(ctx context.Context) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAlbums(ctx)
}

// Delete removes the album and clears albumName on songs that referenced it.
func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.store.DeleteAlbum(ctx, id)
	if errors.Is(err, store.ErrAlbumNotFound) {
		return app.NotFound("Album not found")
	}
	return err
}
