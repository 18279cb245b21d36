package models

import "time"

// Playlist captures a user-curated, ordered set of songs.
type Playlist struct {
	ID          string    `json:"id" bson:"_id" db:"id"`
	Name        string    `json:"name" bson:"name" db:"name"`
	Description string    `json:"description" bson:"description" db:"description"`
	OwnerID     string    `json:"ownerId" bson:"ownerId" db:"owner_id"`
	IsPublic    bool      `json:"isPublic" bson:"isPublic" db:"is_public"`
	SongIDs     []string  `json:"songIds" bson:"songs" db:"song_ids"`
	ShareCode   string    `json:"shareCode,omitempty" bson:"shareCode,omitempty" db:"share_code"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt" db:"updated_at"`

	// Songs holds the resolved song records in SongIDs order. Ids that no
	// longer resolve are left out.
	Songs []Song `json:"songs" bson:"-" db:"-"`
}

// PlaylistFilter narrows playlist lookups. Empty fields do not constrain.
type PlaylistFilter struct {
	ID             string
	OwnerID        string
	ShareCode      string
	PublicOnly     bool
	ExcludeOwnerID string
}

// PlaylistUpdate describes a single atomic mutation. Only non-zero fields
// are applied.
type PlaylistUpdate struct {
	AddSongID    string
	RemoveSongID string
	IsPublic     *bool
	ShareCode    string
}

// Visibility reports the playlist's state on the public/private axis and
// whether a share code has been issued.
func (p *Playlist) Visibility() string {
	state := "Private"
	if p.IsPublic {
		state = "Public"
	}
	if p.ShareCode == "" {
		return state + "-NoCode"
	}
	return state + "-HasCode"
}

// Clone returns a deep copy without the resolved songs.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	clone := *p
	clone.SongIDs = append([]string(nil), p.SongIDs...)
	clone.Songs = nil
	return &clone
}

// DedupeIDs returns ids with empty entries and repeats removed, keeping the
// first occurrence of each.
func DedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
