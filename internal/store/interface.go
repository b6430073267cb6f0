package store

import (
	"context"
	"time"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// PresenceStore provides access to per-user presence records.
type PresenceStore interface {
	// Get returns the presence record for a user. repository.ErrNotFound
	// when the user has never set presence.
	Get(ctx context.Context, userID string) (*domain.PresenceRecord, error)

	// Upsert writes the full presence record, creating it when absent.
	Upsert(ctx context.Context, rec *domain.PresenceRecord) error

	// GetMany returns the records that exist for the given users. Users
	// without a record are simply missing from the result.
	GetMany(ctx context.Context, userIDs []string) ([]domain.PresenceRecord, error)

	// UpdatedSince returns records for the given users changed strictly
	// after the instant.
	UpdatedSince(ctx context.Context, userIDs []string, since time.Time) ([]domain.PresenceRecord, error)
}

// TypingStore provides access to ephemeral typing markers.
type TypingStore interface {
	// Upsert writes the typing record keyed by (user, community, channel),
	// refreshing its expiry when one already exists.
	Upsert(ctx context.Context, rec *domain.TypingRecord) error

	// Delete removes the typing record for the composite key. A no-op when
	// the record does not exist.
	Delete(ctx context.Context, userID, communityID, channelID string) error

	// PurgeExpired deletes every record past its expiry, across all
	// communities.
	PurgeExpired(ctx context.Context, now time.Time) error

	// ListActive returns unexpired typists for a channel, excluding
	// excludeUserID when non-empty.
	ListActive(ctx context.Context, communityID, channelID string, now time.Time, excludeUserID string) ([]domain.TypingRecord, error)
}
