package stream

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/cache"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

// Encoder turns a ChangeSet into wire events and resolves author summaries.
// Resolution goes cache first, then the user store behind singleflight so
// concurrent streams share one lookup per author.
type Encoder struct {
	users   repository.UserRepository
	authors cache.AuthorCache
	group   singleflight.Group
}

// NewEncoder creates an event encoder.
func NewEncoder(users repository.UserRepository, authors cache.AuthorCache) *Encoder {
	return &Encoder{users: users, authors: authors}
}

// Author resolves a user id to an author summary. It never fails: missing
// users and lookup errors yield the unknown-user placeholder.
func (e *Encoder) Author(ctx context.Context, userID string) domain.AuthorSummary {
	if author, err := e.authors.Get(ctx, userID); err == nil {
		return *author
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		log.Ctx(ctx).Debug().Err(err).Str(log.FieldUserID, userID).Msg("author cache read failed")
	}

	v, err, _ := e.group.Do(userID, func() (interface{}, error) {
		user, err := e.users.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return user.Summary(), nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str(log.FieldUserID, userID).Msg("author lookup failed")
		}
		return domain.UnknownAuthor(userID)
	}

	author := v.(domain.AuthorSummary)
	if err := e.authors.Set(ctx, &author); err != nil {
		log.Ctx(ctx).Debug().Err(err).Str(log.FieldUserID, userID).Msg("author cache write failed")
	}
	return author
}

// Encode flattens a ChangeSet into the cycle's events: messages first, then
// presence, joins, leaves, typing, and the channel update. The heartbeat is
// appended by the session.
func (e *Encoder) Encode(ctx context.Context, communityID string, changes *ChangeSet) []domain.StreamEvent {
	events := make([]domain.StreamEvent, 0,
		len(changes.Messages)+len(changes.Presence)+len(changes.Joined)+len(changes.Left)+len(changes.Typing)+1)

	for i := range changes.Messages {
		msg := &changes.Messages[i]
		events = append(events, domain.NewMessageEvent(msg.ToResponse(e.Author(ctx, msg.AuthorID))))
	}
	for i := range changes.Presence {
		events = append(events, domain.NewPresenceEvent(communityID, changes.Presence[i].ToResponse()))
	}
	for _, id := range changes.Joined {
		events = append(events, domain.NewUserJoinEvent(communityID, id))
	}
	for _, id := range changes.Left {
		events = append(events, domain.NewUserLeaveEvent(communityID, id))
	}
	for i := range changes.Typing {
		t := &changes.Typing[i]
		events = append(events, domain.NewTypingEvent(communityID, t.ChannelID, domain.TypingIndicator{
			UserID:    t.UserID,
			Username:  t.Username,
			Avatar:    t.Avatar,
			StartedAt: t.StartedAt,
		}))
	}
	if changes.Channel != nil {
		events = append(events, domain.NewChannelUpdateEvent(communityID, changes.Channel.ToResponse()))
	}

	return events
}
