package models

import "time"

// ActivityType enumerates the kinds of activity a user can log.
type ActivityType string

const (
	ActivityPlay           ActivityType = "play"
	ActivityFavorite       ActivityType = "favorite"
	ActivityUnfavorite     ActivityType = "unfavorite"
	ActivityPlaylistCreate ActivityType = "playlist_create"
	ActivityPlaylistShare  ActivityType = "playlist_share"
	ActivityQueueSaved     ActivityType = "queue_saved"
	ActivityVisit          ActivityType = "visit"
	ActivityOther          ActivityType = "other"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityPlay, ActivityFavorite, ActivityUnfavorite, ActivityPlaylistCreate,
		ActivityPlaylistShare, ActivityQueueSaved, ActivityVisit, ActivityOther:
		return true
	}
	return false
}

// Activity is an append-only log entry.
type Activity struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"userId" db:"user_id"`
	Type      ActivityType   `json:"type" db:"type"`
	Metadata  map[string]any `json:"metadata" db:"metadata"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// RecentActivityLimit caps how many entries a recent-activity read returns.
const RecentActivityLimit = 20
