package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"musicapp/internal/models"
)

type catalogSeeder interface {
	ListSongs(ctx context.Context) ([]models.Song, error)
	CreateSong(ctx context.Context, song *models.Song) (*models.Song, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	CreateAlbum(ctx context.Context, album models.Album) (models.Album, error)
}

type demoSong struct {
	name, album, artist, genre string
	seconds                    float64
	bpm, energy, dance, val    float64
	acoustic, instr, live, sp  float64
}

var demoAlbums = []models.Album{
	{Name: "Neon Nights", Description: "Late drives and synth lines", BackgroundColor: "#2a1b3d"},
	{Name: "Morning Porch", Description: "Slow coffee acoustics", BackgroundColor: "#c9a66b"},
}

var demoSongs = []demoSong{
	{"Midnight Circuit", "Neon Nights", "Vela", "synthwave", 214, 118, 0.78, 0.71, 0.55, 0.05, 0.40, 0.10, 0.04},
	{"Glass Highway", "Neon Nights", "Vela", "synthwave", 241, 124, 0.82, 0.68, 0.48, 0.03, 0.55, 0.12, 0.03},
	{"Afterglow", "Neon Nights", "Kiro", "electronic", 198, 128, 0.88, 0.80, 0.62, 0.02, 0.20, 0.18, 0.06},
	{"Porch Light", "Morning Porch", "June Alder", "folk", 187, 84, 0.28, 0.45, 0.70, 0.88, 0.05, 0.14, 0.04},
	{"Cedar Smoke", "Morning Porch", "June Alder", "folk", 226, 76, 0.22, 0.38, 0.41, 0.92, 0.12, 0.09, 0.03},
	{"Paper Boats", "Morning Porch", "Reed & Rye", "acoustic", 172, 96, 0.35, 0.52, 0.77, 0.81, 0.02, 0.22, 0.05},
}

func ptr(v float64) *float64 { return &v }

// seedDemoCatalog fills an empty catalog with a handful of songs carrying
// audio features so recommendations work out of the box.
func seedDemoCatalog(ctx context.Context, st catalogSeeder) error {
	existing, err := st.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("check catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	albums, err := st.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("check albums: %w", err)
	}
	if len(albums) == 0 {
		for _, album := range demoAlbums {
			if _, err := st.CreateAlbum(ctx, album); err != nil {
				return fmt.Errorf("seed album %q: %w", album.Name, err)
			}
		}
	}

	for _, d := range demoSongs {
		year := 2023
		song := &models.Song{
			Name:            d.name,
			AlbumName:       d.album,
			Artist:          d.artist,
			Genre:           d.genre,
			ReleaseYear:     &year,
			DurationDisplay: models.FormatDuration(d.seconds),
			AudioFeatures: models.AudioFeatures{
				BPM:              ptr(d.bpm),
				Energy:           ptr(d.energy),
				Danceability:     ptr(d.dance),
				Valence:          ptr(d.val),
				Acousticness:     ptr(d.acoustic),
				Instrumentalness: ptr(d.instr),
				Liveness:         ptr(d.live),
				Speechiness:      ptr(d.sp),
			},
		}
		if _, err := st.CreateSong(ctx, song); err != nil {
			return fmt.Errorf("seed song %q: %w", d.name, err)
		}
	}
	log.Info().Int("songs", len(demoSongs)).Msg("seeded demo catalog")
	return nil
}
