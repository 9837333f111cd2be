// Package postdao provides data access for social media posts in MongoDB.
// Reddit and Twitter collectors share one collection; duplicate detection
// rides on a unique compound index over (source, source_specific_id).
package postdao

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/web3data/pipeline/internal/models"
)

const (
	databaseName   = "web3_data"
	collectionName = "social_media_posts"
)

// DAO provides data access operations for the social_media_posts collection.
type DAO struct {
	posts *mongo.Collection
}

// New creates a new DAO instance from a connected Mongo client.
func New(client *mongo.Client) *DAO {
	return &DAO{
		posts: client.Database(databaseName).Collection(collectionName),
	}
}

// EnsureIndexes creates the unique compound index used for cross-platform
// dedup plus a plain index on source for per-source queries.
func (d *DAO) EnsureIndexes(ctx context.Context) error {
	_, err := d.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "source_specific_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "source", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to ensure post indexes: %w", err)
	}
	return nil
}

// InsertMany writes a batch of posts unordered, so duplicate-key failures
// skip the offending document without aborting the batch. It returns the
// inserted and skipped counts.
func (d *DAO) InsertMany(ctx context.Context, posts []models.SocialPost) (inserted, skipped int, err error) {
	if len(posts) == 0 {
		return 0, 0, nil
	}

	docs := make([]any, 0, len(posts))
	for _, p := range posts {
		docs = append(docs, p)
	}

	result, err := d.posts.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if result != nil {
		inserted = len(result.InsertedIDs)
	}
	skipped = len(posts) - inserted

	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return inserted, skipped, nil
		}
		return inserted, skipped, fmt.Errorf("failed to bulk insert posts: %w", err)
	}
	return inserted, skipped, nil
}

// Exists reports whether a post with the given source and platform-native ID
// is already stored.
func (d *DAO) Exists(ctx context.Context, source, sourceSpecificID string) (bool, error) {
	err := d.posts.FindOne(ctx, bson.M{
		"source":             source,
		"source_specific_id": sourceSpecificID,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check for existing post: %w", err)
	}
	return true, nil
}

// UnanalyzedPost is a post awaiting sentiment scoring.
type UnanalyzedPost struct {
	ID   primitive.ObjectID `bson:"_id"`
	Text string             `bson:"text"`
}

// FindUnanalyzed returns up to limit posts that have no sentiment field yet.
func (d *DAO) FindUnanalyzed(ctx context.Context, limit int) ([]UnanalyzedPost, error) {
	cursor, err := d.posts.Find(ctx,
		bson.M{"sentiment": bson.M{"$exists": false}},
		options.Find().SetLimit(int64(limit)).SetProjection(bson.M{"text": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query unanalyzed posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []UnanalyzedPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode unanalyzed posts: %w", err)
	}
	return posts, nil
}

// SetSentiment stores polarity scores on a post.
func (d *DAO) SetSentiment(ctx context.Context, id primitive.ObjectID, sentiment models.Sentiment) error {
	result, err := d.posts.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"sentiment":             sentiment,
			"sentiment_analyzed_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update sentiment for %s: %w", id.Hex(), err)
	}
	if result.ModifiedCount == 0 {
		return fmt.Errorf("sentiment update matched no document: %s", id.Hex())
	}
	return nil
}
