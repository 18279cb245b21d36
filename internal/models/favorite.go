package models

import "time"

// Favorite relates a user to a song they hearted. The (UserID, SongID) pair
// is unique.
type Favorite struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"userId" db:"user_id"`
	SongID    string    `json:"songId" db:"song_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
