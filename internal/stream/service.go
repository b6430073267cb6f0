package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/config"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/service"
)

// Service opens live stream sessions after authorizing the caller.
type Service struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	detector    Detector
	encoder     *Encoder
	cfg         config.StreamConfig
}

// NewService creates the stream service.
func NewService(
	communities repository.CommunityRepository,
	channels repository.ChannelRepository,
	detector Detector,
	encoder *Encoder,
	cfg config.StreamConfig,
) *Service {
	return &Service{
		communities: communities,
		channels:    channels,
		detector:    detector,
		encoder:     encoder,
		cfg:         cfg,
	}
}

// Open validates the scope and the caller's membership, then returns a ready
// session. All failures happen here, before any response bytes are written.
func (s *Service) Open(ctx context.Context, communityID, channelID, callerID string, cp Checkpoint) (*Session, error) {
	if _, err := primitive.ObjectIDFromHex(communityID); err != nil {
		return nil, service.ErrInvalidID
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, service.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load community: %w", err)
	}
	if !community.IsMember(callerID) {
		return nil, service.ErrNotMember
	}

	// Scope to the canonical channel id so detection queries match stored
	// messages even when the client addressed the channel by name.
	if channelID != "" {
		channel, err := s.channels.GetByID(ctx, communityID, channelID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, service.ErrNotFound
			}
			return nil, fmt.Errorf("failed to load channel: %w", err)
		}
		channelID = channel.ID.Hex()
	}

	return &Session{
		communityID: communityID,
		channelID:   channelID,
		callerID:    callerID,
		detector:    s.detector,
		encoder:     s.encoder,
		interval:    s.cfg.PollInterval,
		timeout:     s.cfg.QueryTimeout,
		checkpoint:  cp,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}
