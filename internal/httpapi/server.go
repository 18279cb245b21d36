package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"musicapp/internal/app"
	"musicapp/internal/app/playlists"
	"musicapp/internal/app/recommend"
	"musicapp/internal/app/songs"
	"musicapp/internal/auth"
	"musicapp/internal/logging"
	"musicapp/internal/models"
	"musicapp/internal/recsvc"
)

// SongService coordinates catalog operations.
type SongService interface {
	Create(ctx context.Context, in songs.CreateInput) (*models.Song, error)
	Get(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	Delete(ctx context.Context, id string) error
}

// AlbumService exposes album-specific workflows.
type AlbumService interface {
	Create(ctx context.Context, album models.Album) (models.Album, error)
	List(ctx context.Context) ([]models.Album, error)
	Delete(ctx context.Context, id string) error
}

// FavoritesService coordinates favoriting workflows.
type FavoritesService interface {
	Add(ctx context.Context, userID, songID string) (*models.Favorite, bool, error)
	Remove(ctx context.Context, userID, songID string) error
	List(ctx context.Context, userID string) ([]models.Song, error)
}

// ActivityService records and reads the activity log.
type ActivityService interface {
	Log(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any) (*models.Activity, error)
	Recent(ctx context.Context, userID string) ([]models.Activity, error)
}

// PlaylistService is the playlist access and sharing manager.
type PlaylistService = playlists.Service

// RecommendService ranks catalog songs by content similarity.
type RecommendService interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error)
}

// ExternalRecommender proxies the standalone recommendation service.
type ExternalRecommender interface {
	Configured() bool
	BreakerState() string
	Health(ctx context.Context) error
	ForSong(ctx context.Context, songID string, limit int) (*recsvc.Recommendations, error)
	ForUser(ctx context.Context, userID string, limit int) (*recsvc.Recommendations, error)
}

// Services groups the collaborators handlers depend on. Verifier and
// External may be nil.
type Services struct {
	Songs     SongService
	Albums    AlbumService
	Favorites FavoritesService
	Activity  ActivityService
	Playlists PlaylistService
	Recommend RecommendService
	External  ExternalRecommender
	Verifier  *auth.Verifier
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	songs     SongService
	albums    AlbumService
	favorites FavoritesService
	activity  ActivityService
	playlists PlaylistService
	recommend RecommendService
	external  ExternalRecommender
	verifier  *auth.Verifier
}

// New configures a Server.
func New(svc Services) *Server {
	return &Server{
		songs:     svc.Songs,
		albums:    svc.Albums,
		favorites: svc.Favorites,
		activity:  svc.Activity,
		playlists: svc.Playlists,
		recommend: svc.Recommend,
		external:  svc.External,
		verifier:  svc.Verifier,
	}
}

// Routes exposes the HTTP handlers. Middleware that needs the matched
// route, such as request metrics, can be added with router.Use.
func (s *Server) Routes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if s.verifier != nil {
		api.Use(auth.Middleware(s.verifier))
	}

	api.HandleFunc("/songs", s.handleListSongs).Methods(http.MethodGet)
	api.HandleFunc("/songs", s.handleCreateSong).Methods(http.MethodPost)
	api.HandleFunc("/songs/{id}", s.handleGetSong).Methods(http.MethodGet)
	api.HandleFunc("/songs/{id}", s.handleDeleteSong).Methods(http.MethodDelete)

	api.HandleFunc("/albums", s.handleListAlbums).Methods(http.MethodGet)
	api.HandleFunc("/albums", s.handleCreateAlbum).Methods(http.MethodPost)
	api.HandleFunc("/albums/{id}", s.handleDeleteAlbum).Methods(http.MethodDelete)

	api.HandleFunc("/favorites/add", s.handleAddFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/remove", s.handleRemoveFavorite).Methods(http.MethodPost)
	api.HandleFunc("/favorites/list/{userId}", s.handleListFavorites).Methods(http.MethodGet)

	api.HandleFunc("/activity/log", s.handleLogActivity).Methods(http.MethodPost)
	api.HandleFunc("/activity/user/{userId}", s.handleRecentActivity).Methods(http.MethodGet)

	s.registerPlaylists(api)

	api.HandleFunc("/recommendations", s.handleRecommend).Methods(http.MethodPost)
	api.HandleFunc("/recommendations/status", s.handleRecommendationStatus).Methods(http.MethodGet)
	api.HandleFunc("/recommendations/song/{songId}", s.handleExternalForSong).Methods(http.MethodGet)
	api.HandleFunc("/recommendations/user/{userId}", s.handleExternalForUser).Methods(http.MethodGet)

	return router
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// requesterID prefers the authenticated principal over an id supplied in
// the request.
func requesterID(r *http.Request, claimed string) string {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return strings.TrimSpace(claimed)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return app.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return app.Validation("invalid JSON payload")
	}
	return nil
}

// writeError maps classified errors onto status codes. Unclassified errors
// are logged and reported with fallback as the message.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var appErr *app.Error
	switch {
	case errors.Is(err, app.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, app.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, app.ErrIntegrity):
		status = http.StatusConflict
	}
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
	}
	writeJSON(w, status, messageResponse{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
