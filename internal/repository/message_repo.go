package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// MongoMessageRepository implements MessageRepository on MongoDB. Channel
// messages live in the posts collection alongside other post types; every
// query here filters to the message-like types.
type MongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository creates a new message repository.
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{coll: db.Collection(collPosts)}
}

var messageTypes = bson.M{"$in": bson.A{
	domain.MessageTypeMessage,
	domain.MessageTypeAnnouncement,
	domain.MessageTypeSystem,
}}

func (r *MongoMessageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *MongoMessageRepository) GetByID(ctx context.Context, messageID string) (*domain.Message, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, ErrNotFound
	}

	var msg domain.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "type": messageTypes}).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}

	return &msg, nil
}

func (r *MongoMessageRepository) SetContent(ctx context.Context, messageID, content string, editedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"content":    content,
			"is_edited":  true,
			"edited_at":  editedAt,
			"updated_at": editedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoMessageRepository) List(ctx context.Context, communityID, channelID, before, after string, limit int) ([]domain.Message, error) {
	filter := bson.M{
		"community_id": communityID,
		"channel_id":   channelID,
		"type":         messageTypes,
	}

	if oid, err := primitive.ObjectIDFromHex(before); before != "" && err == nil {
		filter["_id"] = bson.M{"$lt": oid}
	} else if oid, err := primitive.ObjectIDFromHex(after); after != "" && err == nil {
		filter["_id"] = bson.M{"$gt": oid}
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}

func (r *MongoMessageRepository) ListSince(ctx context.Context, communityID, channelID string, since time.Time, afterID string, limit int) ([]domain.Message, error) {
	filter := bson.M{
		"community_id": communityID,
		"type":         messageTypes,
	}
	if channelID != "" {
		filter["channel_id"] = channelID
	}

	// The id cursor guarantees no re-delivery across cycles; object ids are
	// time-ordered, so ordering stays monotonic either way.
	if oid, err := primitive.ObjectIDFromHex(afterID); afterID != "" && err == nil {
		filter["_id"] = bson.M{"$gt": oid}
	} else {
		filter["created_at"] = bson.M{"$gt": since}
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages since checkpoint: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	return messages, nil
}
