package playlists

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"musicapp/internal/app"
	"musicapp/internal/logging"
	"musicapp/internal/metrics"
	"musicapp/internal/models"
	"musicapp/internal/store"
)

// DefaultMaxShareAttempts bounds share code generation when no option
// overrides it.
const DefaultMaxShareAttempts = 8

// SharePathFormat renders the relative path a share code resolves under.
const SharePathFormat = "/playlists/shared/%s"

// Store captures the persistence needs for playlist workflows. Updates and
// deletes apply only while the filter still matches at write time.
type Store interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error)
	FindPlaylist(ctx context.Context, filter models.PlaylistFilter) (*models.Playlist, error)
	ListPlaylists(ctx context.Context, filter models.PlaylistFilter) ([]*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, filter models.PlaylistFilter, update models.PlaylistUpdate) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, filter models.PlaylistFilter) error
	ShareCodeExists(ctx context.Context, code string) (bool, error)
}

// Catalog resolves song ids.
type Catalog interface {
	SongExists(ctx context.Context, id string) (bool, error)
	SongsByIDs(ctx context.Context, ids []string) ([]models.Song, error)
}

// ActivitySink receives best-effort activity entries.
type ActivitySink interface {
	Record(ctx context.Context, userID string, kind models.ActivityType, metadata map[string]any)
}

// CreateInput carries the fields accepted when creating a playlist.
type CreateInput struct {
	OwnerID     string
	Name        string
	Description string
	IsPublic    bool
	SongIDs     []string
}

// ShareResult is returned by Share.
type ShareResult struct {
	ShareCode string `json:"shareCode"`
	SharePath string `json:"sharePath"`
}

// Service coordinates playlist ownership, visibility and sharing.
type Service interface {
	Create(ctx context.Context, in CreateInput) (*models.Playlist, error)
	Delete(ctx context.Context, playlistID, requesterID string) error
	AddSong(ctx context.Context, playlistID, requesterID, songID string) (*models.Playlist, error)
	RemoveSong(ctx context.Context, playlistID, requesterID, songID string) (*models.Playlist, error)
	SetVisibility(ctx context.Context, playlistID, requesterID string, isPublic bool) (*models.Playlist, error)
	Share(ctx context.Context, playlistID, requesterID string, regenerate bool) (*ShareResult, error)
	GetBySharedCode(ctx context.Context, code string) (*models.Playlist, error)
	ListPublic(ctx context.Context, excludeOwnerID string) ([]*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID, requesterID string) ([]*models.Playlist, error)
	ListAll(ctx context.Context) ([]*models.Playlist, error)
	GetByID(ctx context.Context, playlistID, requesterID string) (*models.Playlist, error)
	GetPublicByID(ctx context.Context, playlistID string) (*models.Playlist, error)
}

// Option customises a Service.
type Option func(*service)

// WithActivity routes create and share events to sink.
func WithActivity(sink ActivitySink) Option {
	return func(s *service) { s.activity = sink }
}

// WithMaxShareAttempts caps share code generation attempts. Values below 1
// are ignored.
func WithMaxShareAttempts(n int) Option {
	return func(s *service) {
		if n > 0 {
			s.maxShareAttempts = n
		}
	}
}

// WithCodeGenerator replaces the random share code source.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *service) { s.newCode = gen }
}

type service struct {
	store            Store
	catalog          Catalog
	activity         ActivitySink
	maxShareAttempts int
	newCode          func() (string, error)
}

// New constructs a Service backed by the provided Store and Catalog.
func New(st Store, catalog Catalog, opts ...Option) Service {
	s := &service{
		store:            st,
		catalog:          catalog,
		activity:         nopSink{},
		maxShareAttempts: DefaultMaxShareAttempts,
		newCode:          randomShareCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// randomShareCode returns 16 lowercase hex characters from 8 random bytes.
func randomShareCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func errPlaylistNotFound() error {
	return app.NotFound("Playlist not found")
}

// owned scopes a filter to the requester so that foreign playlists are
// indistinguishable from missing ones.
func owned(playlistID, requesterID string) models.PlaylistFilter {
	return models.PlaylistFilter{ID: playlistID, OwnerID: requesterID}
}

func requireIDs(playlistID, requesterID string) error {
	if strings.TrimSpace(playlistID) == "" || strings.TrimSpace(requesterID) == "" {
		return app.Validation("playlistId and userId are required")
	}
	return nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.OwnerID) == "" {
		return nil, app.Validation("name and userId are required")
	}

	playlist, err := s.store.CreatePlaylist(ctx, &models.Playlist{
		Name:        name,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		IsPublic:    in.IsPublic,
		SongIDs:     models.DedupeIDs(in.SongIDs),
	})
	if err != nil {
		return nil, fmt.Errorf("create playlist: %w", err)
	}

	s.activity.Record(ctx, in.OwnerID, models.ActivityPlaylistCreate, map[string]any{
		"playlistId": playlist.ID,
		"name":       playlist.Name,
	})
	return s.withSongs(ctx, playlist)
}

func (s *service) Delete(ctx context.Context, playlistID, requesterID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireIDs(playlistID, requesterID); err != nil {
		return err
	}
	err := s.store.DeletePlaylist(ctx, owned(playlistID, requesterID))
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return errPlaylistNotFound()
	}
	return err
}

func (s *service) AddSong(ctx context.Context, playlistID, requesterID, songID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireIDs(playlistID, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(songID) == "" {
		return nil, app.Validation("playlistId, songId and userId are required")
	}

	exists, err := s.catalog.SongExists(ctx, songID)
	if err != nil {
		return nil, fmt.Errorf("check song: %w", err)
	}
	if !exists {
		return nil, app.NotFound("Song not found")
	}
	return s.update(ctx, owned(playlistID, requesterID), models.PlaylistUpdate{AddSongID: songID})
}

func (s *service) RemoveSong(ctx context.Context, playlistID, requesterID, songID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireIDs(playlistID, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(songID) == "" {
		return nil, app.Validation("playlistId, songId and userId are required")
	}
	return s.update(ctx, owned(playlistID, requesterID), models.PlaylistUpdate{RemoveSongID: songID})
}

func (s *service) SetVisibility(ctx context.Context, playlistID, requesterID string, isPublic bool) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireIDs(playlistID, requesterID); err != nil {
		return nil, err
	}
	return s.update(ctx, owned(playlistID, requesterID), models.PlaylistUpdate{IsPublic: &isPublic})
}

func (s *service) update(ctx context.Context, filter models.PlaylistFilter, update models.PlaylistUpdate) (*models.Playlist, error) {
	playlist, err := s.store.UpdatePlaylist(ctx, filter, update)
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, errPlaylistNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return s.withSongs(ctx, playlist)
}

func (s *service) Share(ctx context.Context, playlistID, requesterID string, regenerate bool) (*ShareResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := requireIDs(playlistID, requesterID); err != nil {
		return nil, err
	}

	filter := owned(playlistID, requesterID)
	playlist, err := s.store.FindPlaylist(ctx, filter)
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, errPlaylistNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}
	if playlist.ShareCode != "" && !regenerate {
		return shareResult(playlist.ShareCode), nil
	}

	for attempt := 1; attempt <= s.maxShareAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, err
		}
		// The current code also counts as taken, so regeneration always
		// yields a different one.
		taken, err := s.store.ShareCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			metrics.RecordShareCollision()
			logging.FromContext(ctx).Debug().Int("attempt", attempt).Msg("share code collision")
			continue
		}

		updated, err := s.store.UpdatePlaylist(ctx, filter, models.PlaylistUpdate{ShareCode: code})
		switch {
		case errors.Is(err, store.ErrShareCodeTaken):
			metrics.RecordShareCollision()
			logging.FromContext(ctx).Debug().Int("attempt", attempt).Msg("share code claimed concurrently")
			continue
		case errors.Is(err, store.ErrPlaylistNotFound):
			return nil, errPlaylistNotFound()
		case err != nil:
			return nil, fmt.Errorf("store share code: %w", err)
		}

		s.activity.Record(ctx, requesterID, models.ActivityPlaylistShare, map[string]any{
			"playlistId": updated.ID,
			"shareCode":  updated.ShareCode,
		})
		return shareResult(updated.ShareCode), nil
	}

	metrics.RecordShareExhausted()
	logging.FromContext(ctx).Error().
		Str("playlist_id", playlistID).
		Int("attempts", s.maxShareAttempts).
		Msg("share code space exhausted")
	return nil, app.Integrity("could not allocate a unique share code after %d attempts", s.maxShareAttempts)
}

func shareResult(code string) *ShareResult {
	return &ShareResult{ShareCode: code, SharePath: fmt.Sprintf(SharePathFormat, code)}
}

// GetBySharedCode resolves a share code regardless of the public flag; the
// code itself grants read access.
func (s *service) GetBySharedCode(ctx context.Context, code string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, app.Validation("shareCode is required")
	}
	return s.find(ctx, models.PlaylistFilter{ShareCode: code})
}

func (s *service) ListPublic(ctx context.Context, excludeOwnerID string) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.list(ctx, models.PlaylistFilter{PublicOnly: true, ExcludeOwnerID: excludeOwnerID})
}

// ListByOwner returns all of the owner's playlists to the owner and only the
// public ones to anyone else, anonymous callers included.
func (s *service) ListByOwner(ctx context.Context, ownerID, requesterID string) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, app.Validation("userId is required")
	}
	filter := models.PlaylistFilter{OwnerID: ownerID}
	if requesterID != ownerID {
		filter.PublicOnly = true
	}
	return s.list(ctx, filter)
}

func (s *service) ListAll(ctx context.Context) ([]*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.list(ctx, models.PlaylistFilter{})
}

// GetByID reveals that a private playlist exists to non-owners by returning
// a forbidden error instead of not found.
func (s *service) GetByID(ctx context.Context, playlistID, requesterID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(playlistID) == "" {
		return nil, app.Validation("playlistId is required")
	}
	playlist, err := s.store.FindPlaylist(ctx, models.PlaylistFilter{ID: playlistID})
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, errPlaylistNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}
	if !playlist.IsPublic && (requesterID == "" || playlist.OwnerID != requesterID) {
		return nil, app.Forbidden("Playlist is private")
	}
	return s.withSongs(ctx, playlist)
}

func (s *service) GetPublicByID(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(playlistID) == "" {
		return nil, app.Validation("playlistId is required")
	}
	playlist, err := s.store.FindPlaylist(ctx, models.PlaylistFilter{ID: playlistID, PublicOnly: true})
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, app.NotFound("Playlist not found or private")
	}
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}
	return s.withSongs(ctx, playlist)
}

func (s *service) find(ctx context.Context, filter models.PlaylistFilter) (*models.Playlist, error) {
	playlist, err := s.store.FindPlaylist(ctx, filter)
	if errors.Is(err, store.ErrPlaylistNotFound) {
		return nil, errPlaylistNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load playlist: %w", err)
	}
	return s.withSongs(ctx, playlist)
}

func (s *service) list(ctx context.Context, filter models.PlaylistFilter) ([]*models.Playlist, error) {
	playlists, err := s.store.ListPlaylists(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	for i, p := range playlists {
		resolved, err := s.withSongs(ctx, p)
		if err != nil {
			return nil, err
		}
		playlists[i] = resolved
	}
	return playlists, nil
}

// withSongs attaches the resolved songs. Ids whose songs were deleted are
// skipped but kept in SongIDs.
func (s *service) withSongs(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	songs, err := s.catalog.SongsByIDs(ctx, playlist.SongIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve playlist songs: %w", err)
	}
	playlist.Songs = songs
	return playlist, nil
}

type nopSink struct{}

func (nopSink) Record(context.Context, string, models.ActivityType, map[string]any) {}
