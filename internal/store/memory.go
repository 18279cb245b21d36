package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"musicapp/internal/models"
)

// Memory is an in-process store with the same semantics as Store. It backs
// STORE_DRIVER=memory and the service tests.
type Memory struct {
	mu         sync.RWMutex
	songs      map[string]models.Song
	songOrder  []string
	albums     map[string]models.Album
	albumOrder []string
	playlists  map[string]*models.Playlist
	touched    map[string]uint64
	favorites  map[string]map[string]models.Favorite
	activities []models.Activity
	seq        uint64

	now   func() time.Time
	newID func() string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		songs:     make(map[string]models.Song),
		albums:    make(map[string]models.Album),
		playlists: make(map[string]*models.Playlist),
		touched:   make(map[string]uint64),
		favorites: make(map[string]map[string]models.Favorite),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// CreateSong stores a copy of song.
func (m *Memory) CreateSong(_ context.Context, song *models.Song) (*models.Song, error) {
	if song == nil {
		return nil, errors.New("song is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if song.ID == "" {
		song.ID = m.newID()
	}
	song.CreatedAt = m.now()
	if _, ok := m.songs[song.ID]; !ok {
		m.songOrder = append(m.songOrder, song.ID)
	}
	m.songs[song.ID] = *song
	return song, nil
}

// GetSong returns a song by id.
func (m *Memory) GetSong(_ context.Context, id string) (*models.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	song, ok := m.songs[id]
	if !ok {
		return nil, ErrSongNotFound
	}
	return &song, nil
}

// SongExists reports whether id names a stored song.
func (m *Memory) SongExists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.songs[id]
	return ok, nil
}

// ListSongs returns songs in insertion order.
func (m *Memory) ListSongs(_ context.Context) ([]models.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	songs := make([]models.Song, 0, len(m.songOrder))
	for _, id := range m.songOrder {
		songs = append(songs, m.songs[id])
	}
	return songs, nil
}

// SongsByIDs resolves ids in order, skipping unknown ones.
func (m *Memory) SongsByIDs(_ context.Context, ids []string) ([]models.Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return orderSongs(ids, m.songs), nil
}

// DeleteSong removes a song. References elsewhere are left in place.
func (m *Memory) DeleteSong(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.songs[id]; !ok {
		return ErrSongNotFound
	}
	delete(m.songs, id)
	m.songOrder = removeID(m.songOrder, id)
	return nil
}

// CreateAlbum stores a new album.
func (m *Memory) CreateAlbum(_ context.Context, album models.Album) (models.Album, error) {
	album.Name = strings.TrimSpace(album.Name)
	album.Description = strings.TrimSpace(album.Description)
	if err := validateAlbum(album); err != nil {
		return models.Album{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if album.ID == "" {
		album.ID = m.newID()
	}
	album.CreatedAt = m.now()
	m.albums[album.ID] = album
	m.albumOrder = append(m.albumOrder, album.ID)
	return album, nil
}

// ListAlbums returns albums in insertion order.
func (m *Memory) ListAlbums(_ context.Context) ([]models.Album, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	albums := make([]models.Album, 0, len(m.albumOrder))
	for _, id := range m.albumOrder {
		albums = append(albums, m.albums[id])
	}
	return albums, nil
}

// DeleteAlbum removes the album and blanks matching song album names.
func (m *Memory) DeleteAlbum(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	album, ok := m.albums[id]
	if !ok {
		return ErrAlbumNotFound
	}
	for songID, song := range m.songs {
		if song.AlbumName == album.Name {
			song.AlbumName = ""
			m.songs[songID] = song
		}
	}
	delete(m.albums, id)
	m.albumOrder = removeID(m.albumOrder, id)
	return nil
}

func matchesPlaylist(p *models.Playlist, filter models.PlaylistFilter) bool {
	switch {
	case filter.ID != "" && p.ID != filter.ID:
		return false
	case filter.OwnerID != "" && p.OwnerID != filter.OwnerID:
		return false
	case filter.ShareCode != "" && p.ShareCode != filter.ShareCode:
		return false
	case filter.ExcludeOwnerID != "" && p.OwnerID == filter.ExcludeOwnerID:
		return false
	case filter.PublicOnly && !p.IsPublic:
		return false
	}
	return true
}

func (m *Memory) shareCodeInUseLocked(code, exceptID string) bool {
	for id, p := range m.playlists {
		if id != exceptID && p.ShareCode == code {
			return true
		}
	}
	return false
}

func (m *Memory) touchLocked(id string) {
	m.seq++
	m.touched[id] = m.seq
}

// CreatePlaylist stores a new playlist.
func (m *Memory) CreatePlaylist(_ context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, errors.New("playlist is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	created := playlist.Clone()
	if created.ID == "" {
		created.ID = m.newID()
	}
	if created.ShareCode != "" && m.shareCodeInUseLocked(created.ShareCode, created.ID) {
		return nil, ErrShareCodeTaken
	}
	created.SongIDs = models.DedupeIDs(created.SongIDs)
	now := m.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	m.playlists[created.ID] = created
	m.touchLocked(created.ID)
	return created.Clone(), nil
}

// FindPlaylist returns the first playlist matching filter.
func (m *Memory) FindPlaylist(_ context.Context, filter models.PlaylistFilter) (*models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if filter.ID != "" {
		p, ok := m.playlists[filter.ID]
		if !ok || !matchesPlaylist(p, filter) {
			return nil, ErrPlaylistNotFound
		}
		return p.Clone(), nil
	}
	for _, p := range m.sortedLocked() {
		if matchesPlaylist(p, filter) {
			return p.Clone(), nil
		}
	}
	return nil, ErrPlaylistNotFound
}

// ListPlaylists returns matching playlists, most recently updated first.
func (m *Memory) ListPlaylists(_ context.Context, filter models.PlaylistFilter) ([]*models.Playlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.Playlist, 0)
	for _, p := range m.sortedLocked() {
		if matchesPlaylist(p, filter) {
			result = append(result, p.Clone())
		}
	}
	return result, nil
}

func (m *Memory) sortedLocked() []*models.Playlist {
	all := make([]*models.Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].UpdatedAt.Equal(all[j].UpdatedAt) {
			return all[i].UpdatedAt.After(all[j].UpdatedAt)
		}
		return m.touched[all[i].ID] > m.touched[all[j].ID]
	})
	return all
}

// UpdatePlaylist applies update to the playlist matching filter while
// holding the write lock.
func (m *Memory) UpdatePlaylist(_ context.Context, filter models.PlaylistFilter, update models.PlaylistUpdate) (*models.Playlist, error) {
	if filter.ID == "" {
		return nil, errors.New("update requires an id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[filter.ID]
	if !ok || !matchesPlaylist(p, filter) {
		return nil, ErrPlaylistNotFound
	}
	if update.ShareCode != "" && m.shareCodeInUseLocked(update.ShareCode, p.ID) {
		return nil, ErrShareCodeTaken
	}

	switch {
	case update.AddSongID != "":
		p.SongIDs = models.DedupeIDs(append(p.SongIDs, update.AddSongID))
	case update.RemoveSongID != "":
		p.SongIDs = removeID(p.SongIDs, update.RemoveSongID)
	}
	if update.IsPublic != nil {
		p.IsPublic = *update.IsPublic
	}
	if update.ShareCode != "" {
		p.ShareCode = update.ShareCode
	}
	p.UpdatedAt = m.now()
	m.touchLocked(p.ID)
	return p.Clone(), nil
}

// DeletePlaylist removes the playlist matching filter.
func (m *Memory) DeletePlaylist(_ context.Context, filter models.PlaylistFilter) error {
	if filter.ID == "" {
		return errors.New("delete requires an id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.playlists[filter.ID]
	if !ok || !matchesPlaylist(p, filter) {
		return ErrPlaylistNotFound
	}
	delete(m.playlists, p.ID)
	delete(m.touched, p.ID)
	return nil
}

// ShareCodeExists reports whether code is assigned to any playlist.
func (m *Memory) ShareCodeExists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.shareCodeInUseLocked(code, ""), nil
}

// AddFavorite upserts the (user, song) pair.
func (m *Memory) AddFavorite(_ context.Context, userID, songID string) (*models.Favorite, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byUser, ok := m.favorites[userID]
	if !ok {
		byUser = make(map[string]models.Favorite)
		m.favorites[userID] = byUser
	}
	if existing, ok := byUser[songID]; ok {
		return &existing, false, nil
	}
	favorite := models.Favorite{ID: m.newID(), UserID: userID, SongID: songID, CreatedAt: m.now()}
	byUser[songID] = favorite
	return &favorite, true, nil
}

// RemoveFavorite deletes the pair if present.
func (m *Memory) RemoveFavorite(_ context.Context, userID, songID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byUser := m.favorites[userID]
	if _, ok := byUser[songID]; !ok {
		return false, nil
	}
	delete(byUser, songID)
	return true, nil
}

// ListFavoriteSongIDs returns favorited song ids, newest first.
func (m *Memory) ListFavoriteSongIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	favorites := make([]models.Favorite, 0, len(m.favorites[userID]))
	for _, f := range m.favorites[userID] {
		favorites = append(favorites, f)
	}
	sort.Slice(favorites, func(i, j int) bool {
		if !favorites[i].CreatedAt.Equal(favorites[j].CreatedAt) {
			return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
		}
		return favorites[i].ID > favorites[j].ID
	})
	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.SongID)
	}
	return ids, nil
}

// AppendActivity records an activity entry.
func (m *Memory) AppendActivity(_ context.Context, activity models.Activity) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if activity.ID == "" {
		activity.ID = m.newID()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = m.now()
	}
	m.activities = append(m.activities, activity)
	return &activity, nil
}

// RecentActivity returns up to limit entries for the user, newest first.
func (m *Memory) RecentActivity(_ context.Context, userID string, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = models.RecentActivityLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Activity, 0, limit)
	for i := len(m.activities) - 1; i >= 0 && len(result) < limit; i-- {
		if m.activities[i].UserID == userID {
			result = append(result, m.activities[i])
		}
	}
	return result, nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
