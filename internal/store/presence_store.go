package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
)

const collPresence = "presence"

// MongoPresenceStore implements PresenceStore on MongoDB. Documents are keyed
// by user id so presence writes are single-document upserts.
type MongoPresenceStore struct {
	coll *mongo.Collection
}

// NewMongoPresenceStore creates a new presence store.
func NewMongoPresenceStore(db *mongo.Database) *MongoPresenceStore {
	return &MongoPresenceStore{coll: db.Collection(collPresence)}
}

func (s *MongoPresenceStore) Get(ctx context.Context, userID string) (*domain.PresenceRecord, error) {
	var rec domain.PresenceRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	return &rec, nil
}

func (s *MongoPresenceStore) Upsert(ctx context.Context, rec *domain.PresenceRecord) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.UserID}, rec, opts); err != nil {
		return fmt.Errorf("failed to upsert presence: %w", err)
	}
	return nil
}

func (s *MongoPresenceStore) GetMany(ctx context.Context, userIDs []string) ([]domain.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.PresenceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode presence records: %w", err)
	}

	return records, nil
}

func (s *MongoPresenceStore) UpdatedSince(ctx context.Context, userIDs []string, since time.Time) ([]domain.PresenceRecord, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"_id":        bson.M{"$in": userIDs},
		"updated_at": bson.M{"$gt": since},
	}
	opts := options.Find().SetSort(bson.M{"updated_at": 1})

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence changes: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.PresenceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode presence records: %w", err)
	}

	return records, nil
}
