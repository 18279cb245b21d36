package models

import "time"

// Album groups songs by name. Songs reference albums through AlbumName.
type Album struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Description     string    `json:"description" db:"description"`
	BackgroundColor string    `json:"backgroundColor" db:"background_color"`
	ImageURL        string    `json:"imageUrl" db:"image_url"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}
