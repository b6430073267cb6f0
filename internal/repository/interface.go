package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// CommunityRepository provides access to community documents. The members
// array is the authoritative membership set; AddMember and RemoveMember
// mutate it and member_count in a single atomic update.
type CommunityRepository interface {
	GetByID(ctx context.Context, communityID string) (*domain.Community, error)

	// MemberIDs returns the current member-id set. ErrNotFound when the
	// community has been deleted.
	MemberIDs(ctx context.Context, communityID string) ([]string, error)

	// AddMember atomically adds userID to members and increments
	// member_count. A no-op when the user is already a member.
	AddMember(ctx context.Context, communityID, userID string) error

	// RemoveMember atomically removes userID from members and decrements
	// member_count. A no-op when the user is not a member.
	RemoveMember(ctx context.Context, communityID, userID string) error
}

// ChannelRepository provides access to channel documents.
type ChannelRepository interface {
	// GetByID resolves a channel within a community by id, falling back to
	// the channel name when the id is not a valid object id.
	GetByID(ctx context.Context, communityID, channelID string) (*domain.Channel, error)

	ListByCommunity(ctx context.Context, communityID string) ([]domain.Channel, error)
}

// MessageRepository provides access to channel messages.
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.Message) error

	GetByID(ctx context.Context, messageID string) (*domain.Message, error)

	// SetContent updates content and marks the message edited.
	SetContent(ctx context.Context, messageID, content string, editedAt time.Time) error

	// List returns up to limit messages for a channel, newest first,
	// optionally before/after a message-id cursor.
	List(ctx context.Context, communityID, channelID, before, after string, limit int) ([]domain.Message, error)

	// ListSince returns up to limit messages created strictly after the
	// checkpoint, oldest first. When afterID is non-empty the id cursor
	// takes precedence over the timestamp.
	ListSince(ctx context.Context, communityID, channelID string, since time.Time, afterID string, limit int) ([]domain.Message, error)
}

// UserRepository provides read access to user documents.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}
