package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
)

// MemPresence is an in-memory store.PresenceStore.
type MemPresence struct {
	mu      sync.Mutex
	Records map[string]domain.PresenceRecord
}

func NewMemPresence() *MemPresence {
	return &MemPresence{Records: make(map[string]domain.PresenceRecord)}
}

func (m *MemPresence) Get(_ context.Context, userID string) (*domain.PresenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.Records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (m *MemPresence) Upsert(_ context.Context, rec *domain.PresenceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records[rec.UserID] = *rec
	return nil
}

func (m *MemPresence) GetMany(_ context.Context, userIDs []string) ([]domain.PresenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PresenceRecord
	for _, id := range userIDs {
		if rec, ok := m.Records[id]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemPresence) UpdatedSince(_ context.Context, userIDs []string, since time.Time) ([]domain.PresenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.PresenceRecord
	for _, id := range userIDs {
		if rec, ok := m.Records[id]; ok && rec.UpdatedAt.After(since) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

// MemTyping is an in-memory store.TypingStore.
type MemTyping struct {
	mu      sync.Mutex
	Records []domain.TypingRecord
}

func NewMemTyping() *MemTyping {
	return &MemTyping{}
}

func (m *MemTyping) key(rec *domain.TypingRecord) [3]string {
	return [3]string{rec.UserID, rec.CommunityID, rec.ChannelID}
}

func (m *MemTyping) Upsert(_ context.Context, rec *domain.TypingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Records {
		if m.key(&m.Records[i]) == m.key(rec) {
			m.Records[i] = *rec
			return nil
		}
	}
	m.Records = append(m.Records, *rec)
	return nil
}

func (m *MemTyping) Delete(_ context.Context, userID, communityID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.Records {
		r := &m.Records[i]
		if r.UserID == userID && r.CommunityID == communityID && r.ChannelID == channelID {
			m.Records = append(m.Records[:i], m.Records[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemTyping) PurgeExpired(_ context.Context, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.Records[:0]
	for i := range m.Records {
		if m.Records[i].ExpiresAt.After(now) {
			kept = append(kept, m.Records[i])
		}
	}
	m.Records = kept
	return nil
}

func (m *MemTyping) ListActive(_ context.Context, communityID, channelID string, now time.Time, excludeUserID string) ([]domain.TypingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TypingRecord
	for i := range m.Records {
		r := m.Records[i]
		if r.CommunityID != communityID || r.ChannelID != channelID {
			continue
		}
		if !r.ExpiresAt.After(now) {
			continue
		}
		if excludeUserID != "" && r.UserID == excludeUserID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Len reports the number of stored records, expired included.
func (m *MemTyping) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Records)
}
