package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// MongoChannelRepository implements ChannelRepository on MongoDB.
type MongoChannelRepository struct {
	coll *mongo.Collection
}

// NewMongoChannelRepository creates a new channel repository.
func NewMongoChannelRepository(db *mongo.Database) *MongoChannelRepository {
	return &MongoChannelRepository{coll: db.Collection(collChannels)}
}

func (r *MongoChannelRepository) GetByID(ctx context.Context, communityID, channelID string) (*domain.Channel, error) {
	// Clients may address a channel by object id or by name.
	var filter bson.M
	if oid, err := primitive.ObjectIDFromHex(channelID); err == nil {
		filter = bson.M{"_id": oid, "community_id": communityID}
	} else {
		filter = bson.M{"community_id": communityID, "name": channelID}
	}

	var channel domain.Channel
	if err := r.coll.FindOne(ctx, filter).Decode(&channel); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return &channel, nil
}

func (r *MongoChannelRepository) ListByCommunity(ctx context.Context, communityID string) ([]domain.Channel, error) {
	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"community_id": communityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer cursor.Close(ctx)

	var channels []domain.Channel
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("failed to decode channels: %w", err)
	}

	return channels, nil
}
