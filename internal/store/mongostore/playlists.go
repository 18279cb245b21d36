// Package mongostore keeps playlists in a MongoDB collection. It satisfies
// the same playlist contract as the Postgres store.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"musicapp/internal/models"
	"musicapp/internal/store"
)

const (
	collectionName = "playlists"
	shareCodeIndex = "share_code_unique"
)

// isShareCodeConflict reports a duplicate key on the share code index only.
// Other duplicates, such as a clashing _id, are ordinary write failures.
func isShareCodeConflict(err error) bool {
	if !mongo.IsDuplicateKeyError(err) {
		return false
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if strings.Contains(we.Message, shareCodeIndex) {
				return true
			}
		}
		return false
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return strings.Contains(cmdErr.Message, shareCodeIndex)
	}
	return strings.Contains(err.Error(), shareCodeIndex)
}

// Connect dials uri and verifies the deployment answers a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(15*time.Second).
		SetConnectTimeout(15*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Playlists is a playlist store backed by one Mongo collection.
type Playlists struct {
	coll  *mongo.Collection
	now   func() time.Time
	newID func() string
}

// NewPlaylists binds the playlists collection of db and ensures its indexes.
func NewPlaylists(ctx context.Context, db *mongo.Database) (*Playlists, error) {
	coll := db.Collection(collectionName)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shareCode", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName(shareCodeIndex),
		},
		{
			Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ensure playlist indexes: %w", err)
	}
	return &Playlists{
		coll:  coll,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}, nil
}

func filterDoc(filter models.PlaylistFilter) bson.M {
	doc := bson.M{}
	if filter.ID != "" {
		doc["_id"] = filter.ID
	}
	owner := bson.M{}
	if filter.OwnerID != "" {
		owner["$eq"] = filter.OwnerID
	}
	if filter.ExcludeOwnerID != "" {
		owner["$ne"] = filter.ExcludeOwnerID
	}
	if len(owner) > 0 {
		doc["ownerId"] = owner
	}
	if filter.ShareCode != "" {
		doc["shareCode"] = filter.ShareCode
	}
	if filter.PublicOnly {
		doc["isPublic"] = true
	}
	return doc
}

func updateDoc(update models.PlaylistUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if update.IsPublic != nil {
		set["isPublic"] = *update.IsPublic
	}
	if update.ShareCode != "" {
		set["shareCode"] = update.ShareCode
	}
	doc := bson.M{"$set": set}
	switch {
	case update.AddSongID != "":
		doc["$addToSet"] = bson.M{"songs": update.AddSongID}
	case update.RemoveSongID != "":
		doc["$pull"] = bson.M{"songs": update.RemoveSongID}
	}
	return doc
}

// CreatePlaylist inserts a new document.
func (p *Playlists) CreatePlaylist(ctx context.Context, playlist *models.Playlist) (*models.Playlist, error) {
	if playlist == nil {
		return nil, errors.New("playlist is required")
	}
	created := playlist.Clone()
	if created.ID == "" {
		created.ID = p.newID()
	}
	created.SongIDs = models.DedupeIDs(created.SongIDs)
	now := p.now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := p.coll.InsertOne(ctx, created); err != nil {
		if isShareCodeConflict(err) {
			return nil, store.ErrShareCodeTaken
		}
		return nil, fmt.Errorf("insert playlist: %w", err)
	}
	return created, nil
}

// FindPlaylist returns the first document matching filter.
func (p *Playlists) FindPlaylist(ctx context.Context, filter models.PlaylistFilter) (*models.Playlist, error) {
	var playlist models.Playlist
	err := p.coll.FindOne(ctx, filterDoc(filter)).Decode(&playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find playlist: %w", err)
	}
	return normalize(&playlist), nil
}

// ListPlaylists returns matching documents, most recently updated first.
func (p *Playlists) ListPlaylists(ctx context.Context, filter models.PlaylistFilter) ([]*models.Playlist, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := p.coll.Find(ctx, filterDoc(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Playlist
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode playlists: %w", err)
	}
	playlists := make([]*models.Playlist, 0, len(docs))
	for i := range docs {
		playlists = append(playlists, normalize(&docs[i]))
	}
	return playlists, nil
}

// UpdatePlaylist applies update with a single findOneAndUpdate so the filter
// is evaluated atomically with the write.
func (p *Playlists) UpdatePlaylist(ctx context.Context, filter models.PlaylistFilter, update models.PlaylistUpdate) (*models.Playlist, error) {
	doc := filterDoc(filter)
	if len(doc) == 0 {
		return nil, errors.New("update requires a filter")
	}
	var playlist models.Playlist
	err := p.coll.FindOneAndUpdate(ctx, doc, updateDoc(update, p.now()),
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrPlaylistNotFound
	}
	if err != nil {
		if isShareCodeConflict(err) {
			return nil, store.ErrShareCodeTaken
		}
		return nil, fmt.Errorf("update playlist: %w", err)
	}
	return normalize(&playlist), nil
}

// DeletePlaylist removes the document matching filter.
func (p *Playlists) DeletePlaylist(ctx context.Context, filter models.PlaylistFilter) error {
	doc := filterDoc(filter)
	if len(doc) == 0 {
		return errors.New("delete requires a filter")
	}
	res, err := p.coll.DeleteOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrPlaylistNotFound
	}
	return nil
}

// ShareCodeExists reports whether code is already assigned.
func (p *Playlists) ShareCodeExists(ctx context.Context, code string) (bool, error) {
	n, err := p.coll.CountDocuments(ctx, bson.M{"shareCode": code}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check share code: %w", err)
	}
	return n > 0, nil
}

func normalize(p *models.Playlist) *models.Playlist {
	if p.SongIDs == nil {
		p.SongIDs = []string{}
	}
	return p
}
