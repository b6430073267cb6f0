package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/testutil"
)

func TestEncoderAuthorFallback(t *testing.T) {
	enc := NewEncoder(testutil.NewMemUsers(), testutil.NewMemAuthorCache())

	author := enc.Author(context.Background(), "ghost")

	assert.Equal(t, "ghost", author.ID)
	assert.Equal(t, "Unknown User", author.Name)
	assert.Equal(t, "unknown", author.Username)
}

func TestEncoderAuthorCached(t *testing.T) {
	users := testutil.NewMemUsers(&domain.User{ID: "u1", Name: "Ada", Username: "ada"})
	enc := NewEncoder(users, testutil.NewMemAuthorCache())

	first := enc.Author(context.Background(), "u1")
	second := enc.Author(context.Background(), "u1")

	assert.Equal(t, "Ada", first.Name)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, users.Lookups)
}

func TestEncodeOrder(t *testing.T) {
	enc := NewEncoder(testutil.NewMemUsers(), testutil.NewMemAuthorCache())

	now := time.Now().UTC()
	changes := &ChangeSet{
		Messages: []domain.Message{
			{ID: primitive.NewObjectID(), CommunityID: "c1", ChannelID: "ch1", AuthorID: "u1", Content: "a", CreatedAt: now},
			{ID: primitive.NewObjectID(), CommunityID: "c1", ChannelID: "ch1", AuthorID: "u1", Content: "b", CreatedAt: now},
		},
		Presence: []domain.PresenceRecord{{UserID: "u2", Status: domain.StatusOnline}},
		Joined:   []string{"u3"},
		Left:     []string{"u4"},
		Typing:   []domain.TypingRecord{{UserID: "u5", ChannelID: "ch1"}},
		Channel:  &domain.Channel{ID: primitive.NewObjectID(), CommunityID: "c1", Name: "general"},
	}

	events := enc.Encode(context.Background(), "c1", changes)

	require.Len(t, events, 7)
	want := []domain.EventType{
		domain.EventMessage, domain.EventMessage,
		domain.EventPresence,
		domain.EventUserJoin, domain.EventUserLeave,
		domain.EventTyping,
		domain.EventChannelUpdate,
	}
	for i, typ := range want {
		assert.Equal(t, typ, events[i].Type, "event %d", i)
	}
}

func TestEncodeMessageEnvelope(t *testing.T) {
	users := testutil.NewMemUsers(&domain.User{ID: "u1", Name: "Ada", Username: "ada"})
	enc := NewEncoder(users, testutil.NewMemAuthorCache())

	now := time.Now().UTC()
	msg := domain.Message{
		ID: primitive.NewObjectID(), CommunityID: "c1", ChannelID: "ch1",
		AuthorID: "u1", Content: "hello", Type: domain.MessageTypeMessage, CreatedAt: now,
	}

	events := enc.Encode(context.Background(), "c1", &ChangeSet{Messages: []domain.Message{msg}})

	require.Len(t, events, 1)
	assert.Equal(t, "c1", events[0].CommunityID)
	assert.Equal(t, "ch1", events[0].ChannelID)
	payload, ok := events[0].Data.(domain.MessageResponse)
	require.True(t, ok)
	assert.Equal(t, "hello", payload.Content)
	assert.Equal(t, "Ada", payload.Author.Name)
}
