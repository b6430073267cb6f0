package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/events"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

type communityService struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	users       repository.UserRepository
	publisher   events.Publisher
}

// NewCommunityService creates the community service.
func NewCommunityService(
	communities repository.CommunityRepository,
	channels repository.ChannelRepository,
	users repository.UserRepository,
	publisher events.Publisher,
) CommunityService {
	return &communityService{
		communities: communities,
		channels:    channels,
		users:       users,
		publisher:   publisher,
	}
}

func (s *communityService) getCommunity(ctx context.Context, communityID string) (*domain.Community, error) {
	if _, err := primitive.ObjectIDFromHex(communityID); err != nil {
		return nil, ErrInvalidID
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load community: %w", err)
	}

	return community, nil
}

func (s *communityService) Get(ctx context.Context, communityID, callerID string) (*domain.CommunityResponse, error) {
	community, err := s.getCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	resp := community.ToResponse(callerID)
	return &resp, nil
}

func (s *communityService) Join(ctx context.Context, communityID, userID string) error {
	community, err := s.getCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if community.IsMember(userID) {
		return ErrAlreadyMember
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := s.communities.AddMember(ctx, communityID, userID); err != nil {
		return fmt.Errorf("failed to join community: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.EventMemberJoined, communityID, domain.MembershipChange{UserID: userID}); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str(log.FieldCommunityID, communityID).
			Msg("failed to publish member join")
	}

	log.Ctx(ctx).Info().
		Str(log.FieldCommunityID, communityID).
		Str(log.FieldUserID, userID).
		Msg("user joined community")
	return nil
}

func (s *communityService) Leave(ctx context.Context, communityID, userID string) error {
	community, err := s.getCommunity(ctx, communityID)
	if err != nil {
		return err
	}
	if community.CreatorID == userID {
		return ErrCreatorCannotLeave
	}
	if !community.IsMember(userID) {
		return ErrNotMember
	}

	if err := s.communities.RemoveMember(ctx, communityID, userID); err != nil {
		return fmt.Errorf("failed to leave community: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.EventMemberLeft, communityID, domain.MembershipChange{UserID: userID}); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str(log.FieldCommunityID, communityID).
			Msg("failed to publish member leave")
	}

	log.Ctx(ctx).Info().
		Str(log.FieldCommunityID, communityID).
		Str(log.FieldUserID, userID).
		Msg("user left community")
	return nil
}

func (s *communityService) ListChannels(ctx context.Context, communityID, callerID string) ([]domain.ChannelResponse, error) {
	community, err := s.getCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if !community.IsMember(callerID) {
		return nil, ErrNotMember
	}

	channels, err := s.channels.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	resp := make([]domain.ChannelResponse, 0, len(channels))
	for i := range channels {
		ch := &channels[i]
		if ch.IsPrivate && !channelVisible(ch, community, callerID) {
			continue
		}
		resp = append(resp, ch.ToResponse())
	}

	return resp, nil
}

func channelVisible(ch *domain.Channel, community *domain.Community, callerID string) bool {
	if callerID == "" {
		return false
	}
	if callerID == community.CreatorID || callerID == ch.CreatedBy {
		return true
	}
	for _, id := range ch.AllowedUsers {
		if id == callerID {
			return true
		}
	}
	return false
}
