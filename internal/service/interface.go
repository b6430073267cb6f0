package service

import (
	"context"
	"errors"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
)

// Sentinel errors mapped to HTTP statuses at the handler layer.
var (
	ErrInvalidID          = errors.New("invalid id")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotMember          = errors.New("not a member of this community")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyMember      = errors.New("already a member of this community")
	ErrCreatorCannotLeave = errors.New("community creator cannot leave")
)

// AuthorResolver resolves a user id to an author summary. Resolution never
// fails: a missing user yields the unknown-user placeholder.
type AuthorResolver interface {
	Author(ctx context.Context, userID string) domain.AuthorSummary
}

// CommunityService covers community reads and membership changes.
type CommunityService interface {
	Get(ctx context.Context, communityID, callerID string) (*domain.CommunityResponse, error)

	// Join adds the caller to the community. ErrAlreadyMember when they
	// already belong.
	Join(ctx context.Context, communityID, userID string) error

	// Leave removes the caller. The creator can never leave.
	Leave(ctx context.Context, communityID, userID string) error

	// ListChannels returns the community's channels visible to the caller.
	ListChannels(ctx context.Context, communityID, callerID string) ([]domain.ChannelResponse, error)
}

// MessageService covers sending, listing and editing channel messages.
type MessageService interface {
	Send(ctx context.Context, communityID, channelID, authorID string, req domain.SendMessageRequest) (*domain.MessageResponse, error)

	List(ctx context.Context, communityID, channelID, callerID, before, after string, limit int) (*domain.MessageListResponse, error)

	// Edit changes message content. Only the original author may edit.
	Edit(ctx context.Context, messageID, callerID string, req domain.EditMessageRequest) (*domain.MessageResponse, error)
}

// PresenceService covers presence status and typing indicators.
type PresenceService interface {
	// SetPresence writes the caller's own status. Writing another user's
	// presence is ErrForbidden.
	SetPresence(ctx context.Context, callerID, userID string, req domain.PresenceUpdateRequest) (*domain.PresenceResponse, error)

	// GetPresence reads a user's status; users without a record read as
	// offline.
	GetPresence(ctx context.Context, userID string) (*domain.PresenceResponse, error)

	// CommunityPresence returns a status for every member, defaulting
	// absent records to offline.
	CommunityPresence(ctx context.Context, communityID, callerID string) (*domain.CommunityPresenceResponse, error)

	// SetTyping starts or stops the caller's typing marker in a channel.
	SetTyping(ctx context.Context, communityID, channelID, userID string, typing bool) error

	// ListTyping returns active typists in a channel, excluding the caller.
	ListTyping(ctx context.Context, communityID, channelID, callerID string) (*domain.TypingResponse, error)
}
