package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/store"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

type presenceService struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	presence    store.PresenceStore
	typing      store.TypingStore
	authors     AuthorResolver
	typingTTL   time.Duration
	now         func() time.Time
}

// NewPresenceService creates the presence service.
func NewPresenceService(
	communities repository.CommunityRepository,
	channels repository.ChannelRepository,
	presence store.PresenceStore,
	typing store.TypingStore,
	authors AuthorResolver,
	typingTTL time.Duration,
) PresenceService {
	return &presenceService{
		communities: communities,
		channels:    channels,
		presence:    presence,
		typing:      typing,
		authors:     authors,
		typingTTL:   typingTTL,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *presenceService) SetPresence(ctx context.Context, callerID, userID string, req domain.PresenceUpdateRequest) (*domain.PresenceResponse, error) {
	if callerID != userID {
		return nil, ErrForbidden
	}

	now := s.now()
	rec, err := s.presence.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load presence: %w", err)
		}
		def := domain.DefaultPresence(userID, now)
		rec = &def
	}

	rec.Status = req.Status
	rec.CustomMessage = req.CustomMessage
	rec.UpdatedAt = now
	if req.Status == domain.StatusOnline {
		rec.LastSeen = now
	}

	if err := s.presence.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to set presence: %w", err)
	}

	log.Ctx(ctx).Debug().
		Str(log.FieldUserID, userID).
		Str("status", string(req.Status)).
		Msg("presence updated")

	resp := rec.ToResponse()
	return &resp, nil
}

func (s *presenceService) GetPresence(ctx context.Context, userID string) (*domain.PresenceResponse, error) {
	rec, err := s.presence.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			def := domain.DefaultPresence(userID, s.now())
			resp := def.ToResponse()
			return &resp, nil
		}
		return nil, fmt.Errorf("failed to get presence: %w", err)
	}

	resp := rec.ToResponse()
	return &resp, nil
}

func (s *presenceService) CommunityPresence(ctx context.Context, communityID, callerID string) (*domain.CommunityPresenceResponse, error) {
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
	if !community.IsMember(callerID) {
		return nil, ErrNotMember
	}

	records, err := s.presence.GetMany(ctx, community.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to load member presence: %w", err)
	}

	now := s.now()
	resp := &domain.CommunityPresenceResponse{
		CommunityID: communityID,
		Presences:   make(map[string]domain.PresenceResponse, len(community.Members)),
		TotalCount:  len(community.Members),
	}
	for i := range records {
		resp.Presences[records[i].UserID] = records[i].ToResponse()
		if records[i].Status == domain.StatusOnline {
			resp.OnlineCount++
		}
	}
	// Members without a record read as offline.
	for _, id := range community.Members {
		if _, ok := resp.Presences[id]; !ok {
			def := domain.DefaultPresence(id, now)
			resp.Presences[id] = def.ToResponse()
		}
	}

	return resp, nil
}

// resolveChannel checks membership and resolves the channel's canonical id.
func (s *presenceService) resolveChannel(ctx context.Context, communityID, channelID, callerID string) (string, error) {
	if _, err := primitive.ObjectIDFromHex(communityID); err != nil {
		return "", ErrInvalidID
	}

	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load community: %w", err)
	}
	if !community.IsMember(callerID) {
		return "", ErrNotMember
	}

	channel, err := s.channels.GetByID(ctx, communityID, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load channel: %w", err)
	}

	return channel.ID.Hex(), nil
}

func (s *presenceService) SetTyping(ctx context.Context, communityID, channelID, userID string, typing bool) error {
	canonicalID, err := s.resolveChannel(ctx, communityID, channelID, userID)
	if err != nil {
		return err
	}

	if !typing {
		return s.typing.Delete(ctx, userID, communityID, canonicalID)
	}

	// The author shape is captured at typing-start so readers never need a
	// user lookup on the hot path.
	author := s.authors.Author(ctx, userID)
	now := s.now()
	rec := &domain.TypingRecord{
		UserID:      userID,
		CommunityID: communityID,
		ChannelID:   canonicalID,
		Username:    author.Username,
		Avatar:      author.Avatar,
		StartedAt:   now,
		ExpiresAt:   now.Add(s.typingTTL),
	}

	if err := s.typing.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("failed to set typing indicator: %w", err)
	}
	return nil
}

func (s *presenceService) ListTyping(ctx context.Context, communityID, channelID, callerID string) (*domain.TypingResponse, error) {
	canonicalID, err := s.resolveChannel(ctx, communityID, channelID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	// Lazy cleanup keeps the collection from accumulating stale markers;
	// ListActive filters on expiry regardless.
	if err := s.typing.PurgeExpired(ctx, now); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to purge expired typing indicators")
	}

	records, err := s.typing.ListActive(ctx, communityID, canonicalID, now, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list typing indicators: %w", err)
	}

	resp := &domain.TypingResponse{
		TypingUsers: make([]domain.TypingIndicator, 0, len(records)),
		CommunityID: communityID,
		ChannelID:   canonicalID,
	}
	for i := range records {
		resp.TypingUsers = append(resp.TypingUsers, domain.TypingIndicator{
			UserID:    records[i].UserID,
			Username:  records[i].Username,
			Avatar:    records[i].Avatar,
			StartedAt: records[i].StartedAt,
		})
	}

	return resp, nil
}
