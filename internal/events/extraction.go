package events

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"musicapp/internal/recsvc"
)

// Extractor schedules feature extraction for a song.
type Extractor interface {
	Extract(ctx context.Context, req recsvc.ExtractRequest) error
}

// FeatureExtraction forwards new songs to the recommendation service.
// Client-side rejections and an unconfigured service are logged and
// swallowed; everything else is returned so the router retries.
func FeatureExtraction(client Extractor) func(ctx context.Context, evt SongCreated) error {
	return func(ctx context.Context, evt SongCreated) error {
		if evt.AudioURL == "" {
			return nil
		}
		err := client.Extract(ctx, recsvc.ExtractRequest{
			SongID: evt.SongID,
			File:   evt.AudioURL,
			Name:   evt.Name,
			Album:  evt.AlbumName,
		})
		if err == nil {
			log.Debug().Str("song_id", evt.SongID).Msg("feature extraction scheduled")
			return nil
		}

		var statusErr *recsvc.StatusError
		switch {
		case errors.Is(err, recsvc.ErrNotConfigured):
			return nil
		case errors.As(err, &statusErr) && statusErr.StatusCode < 500:
			log.Warn().Err(err).Str("song_id", evt.SongID).Msg("feature extraction rejected")
			return nil
		}
		return err
	}
}
