package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/events"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

type messageService struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	messages    repository.MessageRepository
	authors     AuthorResolver
	publisher   events.Publisher
	pageSize    int
}

// NewMessageService creates the message service.
func NewMessageService(
	communities repository.CommunityRepository,
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	authors AuthorResolver,
	publisher events.Publisher,
	pageSize int,
) MessageService {
	return &messageService{
		communities: communities,
		channels:    channels,
		messages:    messages,
		authors:     authors,
		publisher:   publisher,
		pageSize:    pageSize,
	}
}

// resolveChannel checks the caller's membership and resolves the channel,
// returning the community and the channel's canonical id.
func (s *messageService) resolveChannel(ctx context.Context, communityID, channelID, callerID string) (*domain.Community, *domain.Channel, error) {
	if _, err := primitive.ObjectIDFromHex(communityID); err != nil {
		return nil, nil, ErrInvalidID
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load community: %w", err)
	}
	if !community.IsMember(callerID) {
		return nil, nil, ErrNotMember
	}

	channel, err := s.channels.GetByID(ctx, communityID, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load channel: %w", err)
	}

	return community, channel, nil
}

func (s *messageService) Send(ctx context.Context, communityID, channelID, authorID string, req domain.SendMessageRequest) (*domain.MessageResponse, error) {
	community, channel, err := s.resolveChannel(ctx, communityID, channelID, authorID)
	if err != nil {
		return nil, err
	}

	// Announcement channels are write-restricted to the community creator.
	if channel.Type == domain.ChannelTypeAnnouncement && authorID != community.CreatorID {
		return nil, ErrForbidden
	}

	msgType := req.Type
	if msgType == "" {
		msgType = domain.MessageTypeMessage
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		CommunityID: communityID,
		ChannelID:   channel.ID.Hex(),
		AuthorID:    authorID,
		Content:     req.Content,
		Type:        msgType,
		ReplyTo:     req.ReplyTo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	resp := msg.ToResponse(s.authors.Author(ctx, authorID))

	if err := s.publisher.Publish(ctx, events.EventMessageCreated, communityID, resp); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str(log.FieldCommunityID, communityID).
			Str(log.FieldChannelID, resp.ChannelID).
			Msg("failed to publish message event")
	}

	return &resp, nil
}

func (s *messageService) List(ctx context.Context, communityID, channelID, callerID, before, after string, limit int) (*domain.MessageListResponse, error) {
	_, channel, err := s.resolveChannel(ctx, communityID, channelID, callerID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}

	// Fetch one past the page to learn whether more exist.
	messages, err := s.messages.List(ctx, communityID, channel.ID.Hex(), before, after, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	resp := &domain.MessageListResponse{
		Messages: make([]domain.MessageResponse, 0, len(messages)),
		HasMore:  hasMore,
	}
	for i := range messages {
		resp.Messages = append(resp.Messages, messages[i].ToResponse(s.authors.Author(ctx, messages[i].AuthorID)))
	}
	if hasMore && len(messages) > 0 {
		resp.NextCursor = messages[len(messages)-1].ID.Hex()
	}

	return resp, nil
}

func (s *messageService) Edit(ctx context.Context, messageID, callerID string, req domain.EditMessageRequest) (*domain.MessageResponse, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if msg.AuthorID != callerID {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.messages.SetContent(ctx, messageID, req.Content, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}

	msg.Content = req.Content
	msg.IsEdited = true
	msg.EditedAt = &now
	msg.UpdatedAt = now

	resp := msg.ToResponse(s.authors.Author(ctx, msg.AuthorID))
	return &resp, nil
}
