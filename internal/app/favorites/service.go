package favorites

import (
	"context"
	"strings"

	"musicapp/internal/app"
	"musicapp/internal/models"
)

// Store defines persistence operations required for favorites workflows.
type Store interface {
	AddFavorite(ctx context.Context, userID, songID string) (*models.Favorite, bool, error)
	RemoveFavorite(ctx context.Context, userID, songID string) (bool, error)
	ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error)
}

// Catalog resolves favorited song ids.
type Catalog interface {
	SongExists(ctx context.Context, id string) (bool, error)
	SongsByIDs(ctx context.Context, ids []string) ([]models.Song, error)
}

// ActivitySink receives best-effort activity entries.
type ActivitySink interface {
	Record(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any)
}

// Service describes high level favorites operations used by HTTP handlers.
type Service interface {
	Add(ctx context.Context, userID, songID string) (*models.Favorite, bool, error)
	Remove(ctx context.Context, userID, songID string) error
	List(ctx context.Context, userID string) ([]models.Song, error)
}

type service struct {
	store    Store
	catalog  Catalog
	activity ActivitySink
}

// New constructs a favorites Service. activity may be nil.
func New(st Store, catalog Catalog, activity ActivitySink) Service {
	if activity == nil {
		activity = nopSink{}
	}
	return &service{store: st, catalog: catalog, activity: activity}
}

// Add is an idempotent upsert. The bool reports whether a new row was created;
// activity is only logged for new favorites.
func (s *service) Add(ctx context.Context, userID, songID string) (*models.Favorite, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	userID, songID = strings.TrimSpace(userID), strings.TrimSpace(songID)
	if userID == "" || songID == "" {
		return nil, false, app.Validation("userId and songId are required")
	}
	exists, err := s.catalog.SongExists(ctx, songID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, app.NotFound("Song not found")
	}

	fav, inserted, err := s.store.AddFavorite(ctx, userID, songID)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		s.activity.Record(ctx, userID, models.ActivityFavorite, map[string]any{"songId": songID})
	}
	return fav, inserted, nil
}

// Remove succeeds whether or not the pair existed.
func (s *service) Remove(ctx context.Context, userID, songID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID, songID = strings.TrimSpace(userID), strings.TrimSpace(songID)
	if userID == "" || songID == "" {
		return app.Validation("userId and songId are required")
	}
	removed, err := s.store.RemoveFavorite(ctx, userID, songID)
	if err != nil {
		return err
	}
	if removed {
		s.activity.Record(ctx, userID, models.ActivityUnfavorite, map[string]any{"songId": songID})
	}
	return nil
}

// List returns the user's favorited songs, newest favorite first. Songs that
// no longer exist are skipped.
func (s *service) List(ctx context.Context, userID string) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, app.Validation("userId is required")
	}
	ids, err := s.store.ListFavoriteSongIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Song{}, nil
	}
	return s.catalog.SongsByIDs(ctx, ids)
}

type nopSink struct{}

func (nopSink) Record(context.Context, string, models.ActivityType, map[string]any) {}
