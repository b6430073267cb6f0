// Package testutil provides in-memory implementations of the repository and
// store interfaces for tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/cache"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
)

// MemCommunities is an in-memory CommunityRepository.
type MemCommunities struct {
	mu          sync.Mutex
	Communities map[string]*domain.Community
}

func NewMemCommunities() *MemCommunities {
	return &MemCommunities{Communities: make(map[string]*domain.Community)}
}

// Put stores a community keyed by its hex id and returns that id.
func (m *MemCommunities) Put(c *domain.Community) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	m.Communities[c.ID.Hex()] = c
	return c.ID.Hex()
}

func (m *MemCommunities) Delete(communityID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Communities, communityID)
}

func (m *MemCommunities) GetByID(_ context.Context, communityID string) (*domain.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Communities[communityID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *c
	copied.Members = append([]string(nil), c.Members...)
	return &copied, nil
}

func (m *MemCommunities) MemberIDs(_ context.Context, communityID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Communities[communityID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return append([]string(nil), c.Members...), nil
}

func (m *MemCommunities) AddMember(_ context.Context, communityID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Communities[communityID]
	if !ok {
		return nil
	}
	for _, id := range c.Members {
		if id == userID {
			return nil
		}
	}
	c.Members = append(c.Members, userID)
	c.MemberCount++
	return nil
}

func (m *MemCommunities) RemoveMember(_ context.Context, communityID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Communities[communityID]
	if !ok {
		return nil
	}
	for i, id := range c.Members {
		if id == userID {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			c.MemberCount--
			return nil
		}
	}
	return nil
}

// MemChannels is an in-memory ChannelRepository.
type MemChannels struct {
	mu       sync.Mutex
	Channels []*domain.Channel
}

func NewMemChannels() *MemChannels {
	return &MemChannels{}
}

// Put stores a channel and returns its hex id.
func (m *MemChannels) Put(ch *domain.Channel) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	m.Channels = append(m.Channels, ch)
	return ch.ID.Hex()
}

func (m *MemChannels) Remove(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, ch := range m.Channels {
		if ch.ID.Hex() == channelID {
			m.Channels = append(m.Channels[:i], m.Channels[i+1:]...)
			return
		}
	}
}

func (m *MemChannels) GetByID(_ context.Context, communityID, channelID string) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.Channels {
		if ch.CommunityID != communityID {
			continue
		}
		if ch.ID.Hex() == channelID || ch.Name == channelID {
			copied := *ch
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemChannels) ListByCommunity(_ context.Context, communityID string) ([]domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Channel
	for _, ch := range m.Channels {
		if ch.CommunityID == communityID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

// MemMessages is an in-memory MessageRepository.
type MemMessages struct {
	mu       sync.Mutex
	Messages []domain.Message
}

func NewMemMessages() *MemMessages {
	return &MemMessages{}
}

func (m *MemMessages) Insert(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectIDFromTimestamp(msg.CreatedAt)
	}
	m.Messages = append(m.Messages, *msg)
	return nil
}

func (m *MemMessages) GetByID(_ context.Context, messageID string) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Messages {
		if m.Messages[i].ID.Hex() == messageID {
			copied := m.Messages[i]
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MemMessages) SetContent(_ context.Context, messageID, content string, editedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Messages {
		if m.Messages[i].ID.Hex() == messageID {
			m.Messages[i].Content = content
			m.Messages[i].IsEdited = true
			m.Messages[i].EditedAt = &editedAt
			m.Messages[i].UpdatedAt = editedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MemMessages) List(_ context.Context, communityID, channelID, before, after string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for i := range m.Messages {
		msg := m.Messages[i]
		if msg.CommunityID != communityID || msg.ChannelID != channelID {
			continue
		}
		if before != "" && msg.ID.Hex() >= before {
			continue
		}
		if before == "" && after != "" && msg.ID.Hex() <= after {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemMessages) ListSince(_ context.Context, communityID, channelID string, since time.Time, afterID string, limit int) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for i := range m.Messages {
		msg := m.Messages[i]
		if msg.CommunityID != communityID {
			continue
		}
		if channelID != "" && msg.ChannelID != channelID {
			continue
		}
		if afterID != "" {
			if msg.ID.Hex() <= afterID {
				continue
			}
		} else if !msg.CreatedAt.After(since) {
			continue
		}
		out = append(out, msg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MemUsers is an in-memory UserRepository. Lookups counts reads so tests can
// assert cache behavior.
type MemUsers struct {
	mu      sync.Mutex
	Users   map[string]*domain.User
	Lookups int
}

func NewMemUsers(users ...*domain.User) *MemUsers {
	m := &MemUsers{Users: make(map[string]*domain.User)}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

func (m *MemUsers) GetByID(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	u, ok := m.Users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

// MemAuthorCache is an in-memory cache.AuthorCache.
type MemAuthorCache struct {
	mu      sync.Mutex
	authors map[string]domain.AuthorSummary
}

func NewMemAuthorCache() *MemAuthorCache {
	return &MemAuthorCache{authors: make(map[string]domain.AuthorSummary)}
}

func (m *MemAuthorCache) Get(_ context.Context, userID string) (*domain.AuthorSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.authors[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &a, nil
}

func (m *MemAuthorCache) Set(_ context.Context, author *domain.AuthorSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authors[author.ID] = *author
	return nil
}

// RecordingPublisher is an events.Publisher that records what it was asked
// to publish.
type RecordingPublisher struct {
	mu        sync.Mutex
	Published []PublishedEvent
}

type PublishedEvent struct {
	Event       string
	CommunityID string
	Payload     interface{}
}

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Publish(_ context.Context, event, communityID string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, PublishedEvent{Event: event, CommunityID: communityID, Payload: payload})
	return nil
}

func (p *RecordingPublisher) Close() error { return nil }

func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.Published...)
}
