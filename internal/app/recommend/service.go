package recommend

import (
	"context"
	"fmt"
	"time"

	"musicapp/internal/app"
	"musicapp/internal/metrics"
	"musicapp/internal/models"
)

// Catalog supplies the songs to score, in catalog order.
type Catalog interface {
	ListSongs(ctx context.Context) ([]models.Song, error)
}

// Favorites supplies a user's favorited song ids.
type Favorites interface {
	ListFavoriteSongIDs(ctx context.Context, userID string) ([]string, error)
}

// Service resolves the catalog and seeds, then runs the engine.
type Service interface {
	Recommend(ctx context.Context, req Request) (*Result, error)
}

type service struct {
	catalog      Catalog
	favorites    Favorites
	defaultLimit int
}

// New constructs a recommendation Service. favorites may be nil, in which
// case user ids never contribute seeds. defaultLimit <= 0 means DefaultLimit.
func New(catalog Catalog, favorites Favorites, defaultLimit int) Service {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	return &service{catalog: catalog, favorites: favorites, defaultLimit: defaultLimit}
}

func (s *service) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Mood.Valid() {
		return nil, app.Validation("mood must be one of happy, energetic, chill, dark")
	}
	if req.Limit != nil && *req.Limit < 0 {
		return nil, app.Validation("limit must not be negative")
	}
	if req.Limit == nil {
		limit := s.defaultLimit
		req.Limit = &limit
	}

	source := "explicit"
	if len(req.SeedIDs) == 0 {
		source = "fallback"
		if req.UserID != "" && s.favorites != nil {
			ids, err := s.favorites.ListFavoriteSongIDs(ctx, req.UserID)
			if err != nil {
				return nil, fmt.Errorf("load favorites: %w", err)
			}
			if len(ids) > 0 {
				req.SeedIDs = ids
				source = "favorites"
			}
		}
	}

	catalog, err := s.catalog.ListSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	start := time.Now()
	result := Recommend(req, catalog)
	metrics.RecordRecommendation(source, time.Since(start))
	return &result, nil
}
