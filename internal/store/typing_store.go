package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

const collTyping = "typing_indicators"

// MongoTypingStore implements TypingStore on MongoDB. Expiry is enforced in
// queries rather than relying on a TTL index: mongod sweeps TTL indexes on a
// coarse timer, far too slow for a three-second marker.
type MongoTypingStore struct {
	coll *mongo.Collection
}

// NewMongoTypingStore creates a new typing store.
func NewMongoTypingStore(db *mongo.Database) *MongoTypingStore {
	return &MongoTypingStore{coll: db.Collection(collTyping)}
}

func typingKey(userID, communityID, channelID string) bson.M {
	return bson.M{
		"user_id":      userID,
		"community_id": communityID,
		"channel_id":   channelID,
	}
}

func (s *MongoTypingStore) Upsert(ctx context.Context, rec *domain.TypingRecord) error {
	opts := options.Replace().SetUpsert(true)
	filter := typingKey(rec.UserID, rec.CommunityID, rec.ChannelID)
	if _, err := s.coll.ReplaceOne(ctx, filter, rec, opts); err != nil {
		return fmt.Errorf("failed to upsert typing indicator: %w", err)
	}
	return nil
}

func (s *MongoTypingStore) Delete(ctx context.Context, userID, communityID, channelID string) error {
	if _, err := s.coll.DeleteOne(ctx, typingKey(userID, communityID, channelID)); err != nil {
		return fmt.Errorf("failed to delete typing indicator: %w", err)
	}
	return nil
}

func (s *MongoTypingStore) PurgeExpired(ctx context.Context, now time.Time) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}}); err != nil {
		return fmt.Errorf("failed to purge expired typing indicators: %w", err)
	}
	return nil
}

func (s *MongoTypingStore) ListActive(ctx context.Context, communityID, channelID string, now time.Time, excludeUserID string) ([]domain.TypingRecord, error) {
	filter := bson.M{
		"community_id": communityID,
		"channel_id":   channelID,
		"expires_at":   bson.M{"$gt": now},
	}
	if excludeUserID != "" {
		filter["user_id"] = bson.M{"$ne": excludeUserID}
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list typing indicators: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.TypingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode typing indicators: %w", err)
	}

	return records, nil
}
