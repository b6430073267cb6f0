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

// MongoCommunityRepository implements CommunityRepository on MongoDB.
type MongoCommunityRepository struct {
	coll *mongo.Collection
}

// NewMongoCommunityRepository creates a new community repository.
func NewMongoCommunityRepository(db *mongo.Database) *MongoCommunityRepository {
	return &MongoCommunityRepository{coll: db.Collection(collCommunities)}
}

func (r *MongoCommunityRepository) GetByID(ctx context.Context, communityID string) (*domain.Community, error) {
	oid, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return nil, ErrNotFound
	}

	var community domain.Community
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&community); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get community: %w", err)
	}

	return &community, nil
}

func (r *MongoCommunityRepository) MemberIDs(ctx context.Context, communityID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc struct {
		Members []string `bson:"members"`
	}
	opts := options.FindOne().SetProjection(bson.M{"members": 1})
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get community members: %w", err)
	}

	return doc.Members, nil
}

func (r *MongoCommunityRepository) AddMember(ctx context.Context, communityID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return ErrNotFound
	}

	// $addToSet and $inc must travel in one update so member_count can
	// never drift from the members array under concurrent joins. The
	// members guard makes the whole update a no-op for existing members.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "members": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"members": userID},
			"$inc":      bson.M{"member_count": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either deleted or the user raced another join; the caller has
		// already confirmed existence, so treat as an idempotent success.
		return nil
	}
	return nil
}

func (r *MongoCommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(communityID)
	if err != nil {
		return ErrNotFound
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "members": userID},
		bson.M{
			"$pull": bson.M{"members": userID},
			"$inc":  bson.M{"member_count": -1},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}
