package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/events"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/testutil"
)

type communityFixture struct {
	communities *testutil.MemCommunities
	channels    *testutil.MemChannels
	users       *testutil.MemUsers
	publisher   *testutil.RecordingPublisher
	svc         CommunityService
}

func newCommunityFixture(users ...*domain.User) *communityFixture {
	f := &communityFixture{
		communities: testutil.NewMemCommunities(),
		channels:    testutil.NewMemChannels(),
		users:       testutil.NewMemUsers(users...),
		publisher:   testutil.NewRecordingPublisher(),
	}
	f.svc = NewCommunityService(f.communities, f.channels, f.users, f.publisher)
	return f
}

func TestCommunityJoin(t *testing.T) {
	f := newCommunityFixture(&domain.User{ID: "u2"})
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1"}, MemberCount: 1})

	require.NoError(t, f.svc.Join(context.Background(), id, "u2"))

	community, err := f.communities.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, community.IsMember("u2"))
	assert.Equal(t, 2, community.MemberCount)

	published := f.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventMemberJoined, published[0].Event)
}

func TestCommunityJoinDuplicateRejected(t *testing.T) {
	f := newCommunityFixture(&domain.User{ID: "u1"})
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1"}, MemberCount: 1})

	err := f.svc.Join(context.Background(), id, "u1")
	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.Empty(t, f.publisher.Events())
}

func TestCommunityJoinUnknownUser(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1"}})

	err := f.svc.Join(context.Background(), id, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCommunityLeave(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1", "u2"}, MemberCount: 2})

	require.NoError(t, f.svc.Leave(context.Background(), id, "u2"))

	community, err := f.communities.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, community.IsMember("u2"))

	published := f.publisher.Events()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventMemberLeft, published[0].Event)
}

func TestCommunityLeaveCreatorRejected(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1", "u2"}})

	err := f.svc.Leave(context.Background(), id, "u1")
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)
}

func TestCommunityLeaveNonMemberRejected(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1"}})

	err := f.svc.Leave(context.Background(), id, "u9")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestCommunityGetErrors(t *testing.T) {
	f := newCommunityFixture()

	_, err := f.svc.Get(context.Background(), "not-a-hex-id", "u1")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = f.svc.Get(context.Background(), "64b0c0ffee0c0ffee0c0ffee", "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommunityListChannelsHidesPrivate(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1", "u2"}})
	f.channels.Put(&domain.Channel{CommunityID: id, Name: "general"})
	f.channels.Put(&domain.Channel{CommunityID: id, Name: "secret", IsPrivate: true, AllowedUsers: []string{"u1"}})

	visible, err := f.svc.ListChannels(context.Background(), id, "u2")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "general", visible[0].Name)

	all, err := f.svc.ListChannels(context.Background(), id, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCommunityListChannelsNonMemberRejected(t *testing.T) {
	f := newCommunityFixture()
	id := f.communities.Put(&domain.Community{CreatorID: "u1", Members: []string{"u1"}})
	f.channels.Put(&domain.Channel{CommunityID: id, Name: "general"})

	_, err := f.svc.ListChannels(context.Background(), id, "outsider")
	assert.ErrorIs(t, err, ErrNotMember)
}
