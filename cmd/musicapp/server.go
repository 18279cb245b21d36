package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"musicapp/internal/app/activity"
	"musicapp/internal/app/albums"
	"musicapp/internal/app/favorites"
	"musicapp/internal/app/playlists"
	"musicapp/internal/app/recommend"
	"musicapp/internal/app/songs"
	"musicapp/internal/auth"
	"musicapp/internal/config"
	"musicapp/internal/events"
	"musicapp/internal/http/middleware"
	"musicapp/internal/httpapi"
	"musicapp/internal/media"
	"musicapp/internal/models"
	"musicapp/internal/recsvc"
	"musicapp/internal/store"
	"musicapp/internal/store/mongostore"
)

// dataStore is the catalog side of persistence. *store.Store and
// *store.Memory both satisfy it.
type dataStore interface {
	songs.Store
	albums.Store
	favorites.Store
	activity.Store
	SongExists(ctx context.Context, id string) (bool, error)
	SongsByIDs(ctx context.Context, ids []string) ([]models.Song, error)
}

var (
	_ dataStore       = (*store.Store)(nil)
	_ dataStore       = (*store.Memory)(nil)
	_ playlists.Store = (*store.Store)(nil)
	_ playlists.Store = (*store.Memory)(nil)
	_ playlists.Store = (*mongostore.Playlists)(nil)
)

type backends struct {
	catalog   dataStore
	playlists playlists.Store
	closers   []func(context.Context) error
}

func (b *backends) close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close backend")
		}
	}
}

func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}

	var (
		pg  *store.Store
		mem *store.Memory
	)
	if cfg.NeedsPostgres() {
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		pg = store.New(db)
	}
	if cfg.Storage.Driver == config.DriverMemory || cfg.Storage.PlaylistBackend == config.DriverMemory {
		mem = store.NewMemory()
	}

	if cfg.Storage.Driver == config.DriverPostgres {
		b.catalog = pg
	} else {
		b.catalog = mem
	}

	switch cfg.Storage.PlaylistBackend {
	case config.DriverPostgres:
		b.playlists = pg
	case config.DriverMemory:
		b.playlists = mem
	case config.DriverMongo:
		client, err := mongostore.Connect(ctx, cfg.Storage.MongoURI)
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.closers = append(b.closers, client.Disconnect)
		coll, err := mongostore.NewPlaylists(ctx, client.Database(cfg.Storage.MongoDatabase))
		if err != nil {
			b.close(ctx)
			return nil, err
		}
		b.playlists = coll
	}

	log.Info().
		Str("catalog", cfg.Storage.Driver).
		Str("playlists", cfg.Storage.PlaylistBackend).
		Msg("storage ready")
	return b, nil
}

// application holds everything the HTTP server needs plus what must be
// stopped on shutdown.
type application struct {
	handler http.Handler
	bus     *events.Bus
}

func newApplication(ctx context.Context, cfg *config.Config, logger zerolog.Logger, b *backends) (*application, error) {
	verifier, err := auth.NewVerifier(cfg.Security.JWTSecret)
	if err != nil {
		return nil, err
	}

	client := recsvc.New(
		cfg.Recommendation.ServiceURL,
		&http.Client{Timeout: cfg.Recommendation.Timeout},
		recsvc.DefaultBreakerConfig(),
	)

	var uploader songs.Uploader
	if cfg.MediaEnabled() {
		storage, err := media.NewMinioStorage(ctx, media.Config{
			Endpoint:  cfg.Media.Endpoint,
			AccessKey: cfg.Media.AccessKey,
			SecretKey: cfg.Media.SecretKey,
			Bucket:    cfg.Media.Bucket,
			UseSSL:    cfg.Media.UseSSL,
			PublicURL: cfg.Media.PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("media storage: %w", err)
		}
		uploader = storage
	} else {
		log.Info().Msg("MINIO_ENDPOINT not set, song uploads disabled")
	}

	app := &application{}
	var publisher songs.Publisher
	if client.Configured() {
		bus, err := events.NewBus(events.DefaultConfig(), events.NewLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("event bus: %w", err)
		}
		bus.OnSongCreated("feature-extraction", events.FeatureExtraction(client))
		app.bus = bus
		publisher = bus
	} else {
		log.Info().Msg("RECOMMENDATION_SERVICE_URL not set, feature extraction disabled")
	}

	activitySvc := activity.New(b.catalog)
	sink := activity.NewSink(activitySvc)

	srv := httpapi.New(httpapi.Services{
		Songs:     songs.New(b.catalog, uploader, publisher),
		Albums:    albums.New(b.catalog),
		Favorites: favorites.New(b.catalog, b.catalog, sink),
		Activity:  activitySvc,
		Playlists: playlists.New(b.playlists, b.catalog,
			playlists.WithActivity(sink),
			playlists.WithMaxShareAttempts(cfg.Sharing.MaxAttempts),
		),
		Recommend: recommend.New(b.catalog, b.catalog, cfg.Recommendation.DefaultLimit),
		External:  client,
		Verifier:  verifier,
	})

	router := srv.Routes()
	router.Use(middleware.RequestLogging())
	app.handler = middleware.Recovery()(middleware.CORS(cfg.CORS.AllowedOrigins)(router))
	return app, nil
}
