// Package events carries domain events between the request path and
// background workers over an in-process watermill bus.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"musicapp/internal/metrics"
)

// TopicSongCreated is published after a song row has been committed.
const TopicSongCreated = "song.created"

// SongCreated announces a new catalog entry.
type SongCreated struct {
	SongID    string    `json:"songId"`
	Name      string    `json:"name"`
	AlbumName string    `json:"album"`
	AudioURL  string    `json:"file"`
	CreatedAt time.Time `json:"createdAt"`
}

// Config tunes the router.
type Config struct {
	BufferSize           int64
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		BufferSize:           256,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Bus publishes domain events and routes them to registered consumers.
type Bus struct {
	pubsub *gochannel.GoChannel
	router *message.Router
	logger watermill.LoggerAdapter
}

// NewBus wires a gochannel pub/sub to a router with recovery and retry.
func NewBus(cfg Config, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.BufferSize,
	}, logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	return &Bus{pubsub: pubsub, router: router, logger: logger}, nil
}

// PublishSongCreated publishes evt on TopicSongCreated.
func (b *Bus) PublishSongCreated(_ context.Context, evt SongCreated) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s: %w", TopicSongCreated, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("song_id", evt.SongID)

	err = b.pubsub.Publish(TopicSongCreated, msg)
	metrics.RecordEventPublish(TopicSongCreated, err)
	return err
}

// OnSongCreated registers fn as a consumer of TopicSongCreated. A returned
// error triggers the retry middleware.
func (b *Bus) OnSongCreated(name string, fn func(ctx context.Context, evt SongCreated) error) {
	b.router.AddNoPublisherHandler(name, TopicSongCreated, b.pubsub, func(msg *message.Message) error {
		var evt SongCreated
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			// Malformed payloads will never decode; drop them.
			b.logger.Error("dropping undecodable event", err, watermill.LogFields{"message_uuid": msg.UUID})
			return nil
		}
		return fn(msg.Context(), evt)
	})
}

// Run starts routing and blocks until ctx is cancelled or Close is called.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// Close stops the router and the underlying pub/sub.
func (b *Bus) Close() error {
	if err := b.router.Close(); err != nil {
		return err
	}
	return b.pubsub.Close()
}
