package models

import (
	"fmt"
	"time"
)

// Song is a catalog entry. Feature attributes are optional; nil means the
// value was never extracted.
type Song struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	AlbumName       string    `json:"albumName" db:"album_name"`
	ImageURL        string    `json:"imageUrl" db:"image_url"`
	AudioURL        string    `json:"audioUrl" db:"audio_url"`
	DurationDisplay string    `json:"duration" db:"duration"`
	Artist          string    `json:"artist,omitempty" db:"artist"`
	Genre           string    `json:"genre,omitempty" db:"genre"`
	ReleaseYear     *int      `json:"releaseYear,omitempty" db:"release_year"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`

	AudioFeatures
}

// AudioFeatures are the numeric descriptors used for similarity scoring.
type AudioFeatures struct {
	BPM              *float64 `json:"bpm,omitempty" db:"bpm"`
	Energy           *float64 `json:"energy,omitempty" db:"energy"`
	Danceability     *float64 `json:"danceability,omitempty" db:"danceability"`
	Valence          *float64 `json:"valence,omitempty" db:"valence"`
	Acousticness     *float64 `json:"acousticness,omitempty" db:"acousticness"`
	Instrumentalness *float64 `json:"instrumentalness,omitempty" db:"instrumentalness"`
	Liveness         *float64 `json:"liveness,omitempty" db:"liveness"`
	Speechiness      *float64 `json:"speechiness,omitempty" db:"speechiness"`
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
