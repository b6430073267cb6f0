package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/events"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/testutil"
)

// lookupResolver resolves through MemUsers with the unknown-user fallback.
type lookupResolver struct {
	users *testutil.MemUsers
}

func (r lookupResolver) Author(ctx context.Context, userID string) domain.AuthorSummary {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UnknownAuthor(userID)
	}
	return user.Summary()
}

type messageFixture struct {
	communities *testutil.MemCommunities
	channels    *testutil.MemChannels
	messages    *testutil.MemMessages
	users       *testutil.MemUsers
	publisher   *testutil.RecordingPublisher
	svc         MessageService

	communityID string
	channelID   string
}

func newMessageFixture(users ...*domain.User) *messageFixture {
	f := &messageFixture{
		communities: testutil.NewMemCommunities(),
		channels:    testutil.NewMemChannels(),
		messages:    testutil.NewMemMessages(),
		users:       testutil.NewMemUsers(users...),
		publisher:   testutil.NewRecordingPublisher(),
	}
	f.svc = NewMessageService(f.communities, f.channels, f.messages, lookupResolver{f.users}, f.publisher, 50)
	f.communityID = f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1", "u2"}})
	f.channelID = f.channels.Put(&domain.Channel{CommunityID: f.communityID, Name: "general", Type: domain.ChannelTypeText})
	return f
}

func TestMessageSend(t *testing.T) {
	f := newMessageFixture(&domain.User{ID: "u2", Name: "Bea", Username: "bea"})

	msg, err := f.svc.Send(context.Background(), f.communityID, f.channelID, "u2",
		domain.SendMessageRequest{Content: "hi there"})
	require.NoError(t, err)

	assert.Equal(t, "hi there", msg.Content)
	assert.Equal(t, domain.MessageTypeMessage, msg.Type)
	assert.Equal(t, "Bea", msg.Author.Name)
	assert.False(t, msg.CreatedAt.IsZero())

	published := f.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventMessageCreated, published[0].Event)
}

func TestMessageSendByChannelName(t *testing.T) {
	f := newMessageFixture()

	msg, err := f.svc.Send(context.Background(), f.communityID, "general", "u2",
		domain.SendMessageRequest{Content: "by name"})
	require.NoError(t, err)

	// Stored under the canonical channel id, not the name.
	assert.Equal(t, f.channelID, msg.ChannelID)
}

func TestMessageSendNonMemberRejected(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), f.communityID, f.channelID, "outsider",
		domain.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestMessageSendAnnouncementRestricted(t *testing.T) {
	f := newMessageFixture()
	annID := f.channels.Put(&domain.Channel{
		CommunityID: f.communityID, Name: "news", Type: domain.ChannelTypeAnnouncement,
	})

	_, err := f.svc.Send(context.Background(), f.communityID, annID, "u2",
		domain.SendMessageRequest{Content: "not allowed"})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Send(context.Background(), f.communityID, annID, "u1",
		domain.SendMessageRequest{Content: "creator speaking"})
	assert.NoError(t, err)
}

func TestMessageSendUnknownChannel(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Send(context.Background(), f.communityID, "no-such-channel", "u2",
		domain.SendMessageRequest{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageListPagination(t *testing.T) {
	f := newMessageFixture()
	base := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	for i, content := range []string{"one", "two", "three"} {
		_, err := f.svc.Send(context.Background(), f.communityID, f.channelID, "u2",
			domain.SendMessageRequest{Content: content})
		require.NoError(t, err)
		// Space creation times so ordering is stable.
		f.messages.Messages[i].CreatedAt = base.Add(time.Duration(i) * time.Second)
	}

	page, err := f.svc.List(context.Background(), f.communityID, f.channelID, "u1", "", "", 2)
	require.NoError(t, err)

	require.Len(t, page.Messages, 2)
	assert.True(t, page.HasMore)
	assert.NotEmpty(t, page.NextCursor)
	// Newest first.
	assert.Equal(t, "three", page.Messages[0].Content)
	assert.Equal(t, "two", page.Messages[1].Content)
}

func TestMessageListAuthorFallback(t *testing.T) {
	f := newMessageFixture()
	_, err := f.svc.Send(context.Background(), f.communityID, f.channelID, "u2",
		domain.SendMessageRequest{Content: "orphaned"})
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), f.communityID, f.channelID, "u1", "", "", 10)
	require.NoError(t, err)

	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Unknown User", page.Messages[0].Author.Name)
	assert.Equal(t, "u2", page.Messages[0].Author.ID)
}

func TestMessageEditAuthorOnly(t *testing.T) {
	f := newMessageFixture()
	msg, err := f.svc.Send(context.Background(), f.communityID, f.channelID, "u2",
		domain.SendMessageRequest{Content: "original"})
	require.NoError(t, err)

	_, err = f.svc.Edit(context.Background(), msg.ID, "u1", domain.EditMessageRequest{Content: "hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	edited, err := f.svc.Edit(context.Background(), msg.ID, "u2", domain.EditMessageRequest{Content: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", edited.Content)
	assert.True(t, edited.IsEdited)
	require.NotNil(t, edited.EditedAt)
}

func TestMessageEditUnknownMessage(t *testing.T) {
	f := newMessageFixture()

	_, err := f.svc.Edit(context.Background(), "ffffffffffffffffffffffff", "u2",
		domain.EditMessageRequest{Content: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}
