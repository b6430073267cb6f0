package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/config"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/testutil"
)

// scriptedDetector replays canned change sets, one per cycle, and records
// every request it saw.
type scriptedDetector struct {
	mu       sync.Mutex
	snapshot Snapshot
	results  []*ChangeSet
	errs     []error
	calls    []DetectRequest
}

func (d *scriptedDetector) Snapshot(context.Context, string) (Snapshot, error) {
	return d.snapshot, nil
}

func (d *scriptedDetector) Detect(_ context.Context, req DetectRequest) (*ChangeSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := len(d.calls)
	d.calls = append(d.calls, req)
	if i < len(d.errs) && d.errs[i] != nil {
		return nil, d.errs[i]
	}
	if i < len(d.results) {
		return d.results[i], nil
	}
	return &ChangeSet{Members: req.Previous.Members}, nil
}

func (d *scriptedDetector) requests() []DetectRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DetectRequest(nil), d.calls...)
}

// collectSink gathers events and signals each delivery.
type collectSink struct {
	mu     sync.Mutex
	events []domain.StreamEvent
	ch     chan domain.StreamEvent
}

func newCollectSink() *collectSink {
	return &collectSink{ch: make(chan domain.StreamEvent, 256)}
}

func (s *collectSink) Send(event domain.StreamEvent) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	s.ch <- event
	return nil
}

func (s *collectSink) all() []domain.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StreamEvent(nil), s.events...)
}

// wait blocks until n events arrived.
func (s *collectSink) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
}

type failingSink struct{}

func (failingSink) Send(domain.StreamEvent) error { return errors.New("write: broken pipe") }

func newTestSession(d Detector, cp Checkpoint, snap Snapshot) *Session {
	return &Session{
		communityID: "c1",
		detector:    d,
		encoder:     NewEncoder(testutil.NewMemUsers(), testutil.NewMemAuthorCache()),
		interval:    5 * time.Millisecond,
		timeout:     time.Second,
		checkpoint:  cp,
		snapshot:    snap,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func TestSessionCycleOrder(t *testing.T) {
	now := time.Now().UTC()
	det := &scriptedDetector{
		results: []*ChangeSet{{
			Messages: []domain.Message{
				{ID: primitive.NewObjectID(), CommunityID: "c1", AuthorID: "u1", Content: "a", CreatedAt: now},
			},
			Presence: []domain.PresenceRecord{{UserID: "u2", Status: domain.StatusOnline}},
			Joined:   []string{"u3"},
			Left:     []string{"u4"},
			Members:  []string{"u1", "u2", "u3"},
		}},
	}
	s := newTestSession(det, Checkpoint{LastChecked: now}, Snapshot{Members: []string{"u1", "u2", "u4"}})
	sink := newCollectSink()

	require.NoError(t, s.cycle(context.Background(), sink))

	events := sink.all()
	require.Len(t, events, 5)
	want := []domain.EventType{
		domain.EventMessage,
		domain.EventPresence,
		domain.EventUserJoin,
		domain.EventUserLeave,
		domain.EventHeartbeat,
	}
	for i, typ := range want {
		assert.Equal(t, typ, events[i].Type, "event %d", i)
	}
}

func TestSessionCheckpointAdvances(t *testing.T) {
	now := time.Now().UTC()
	msg := domain.Message{ID: primitive.NewObjectID(), CommunityID: "c1", AuthorID: "u1", CreatedAt: now}
	det := &scriptedDetector{results: []*ChangeSet{{Messages: []domain.Message{msg}}}}
	start := Checkpoint{LastChecked: now.Add(-time.Minute)}
	s := newTestSession(det, start, Snapshot{})
	sink := newCollectSink()

	require.NoError(t, s.cycle(context.Background(), sink))
	first := s.Checkpoint()
	require.NoError(t, s.cycle(context.Background(), sink))
	second := s.Checkpoint()

	assert.True(t, first.LastChecked.After(start.LastChecked))
	assert.False(t, second.LastChecked.Before(first.LastChecked))
	// The id cursor sticks to the last emitted message across empty cycles.
	assert.Equal(t, msg.ID.Hex(), first.LastMessageID)
	assert.Equal(t, msg.ID.Hex(), second.LastMessageID)
}

func TestSessionSnapshotValueSemantics(t *testing.T) {
	members := []string{"u1", "u2"}
	det := &scriptedDetector{results: []*ChangeSet{{Members: members}}}
	s := newTestSession(det, Checkpoint{LastChecked: time.Now().UTC()}, Snapshot{Members: []string{"u1", "u2"}})
	sink := newCollectSink()

	require.NoError(t, s.cycle(context.Background(), sink))

	// Mutating the slice the detector handed back must not alter the
	// stored snapshot.
	members[0] = "mutated"
	require.NoError(t, s.cycle(context.Background(), sink))

	reqs := det.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"u1", "u2"}, reqs[1].Previous.Members)
}

func TestSessionJoinBetweenCycles(t *testing.T) {
	det := &scriptedDetector{
		results: []*ChangeSet{
			{Members: []string{"u1", "u2"}},
			{Members: []string{"u1", "u2", "u3"}, Joined: []string{"u3"}},
		},
	}
	s := newTestSession(det, Checkpoint{LastChecked: time.Now().UTC()}, Snapshot{Members: []string{"u1", "u2"}})
	sink := newCollectSink()

	require.NoError(t, s.cycle(context.Background(), sink))
	require.NoError(t, s.cycle(context.Background(), sink))

	var joins int
	for _, ev := range sink.all() {
		if ev.Type == domain.EventUserJoin {
			joins++
			assert.Equal(t, domain.MembershipChange{UserID: "u3"}, ev.Data)
		}
	}
	assert.Equal(t, 1, joins)

	reqs := det.requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, []string{"u1", "u2"}, reqs[1].Previous.Members)
}

func TestSessionRunEmitsConnectedFirst(t *testing.T) {
	det := &scriptedDetector{snapshot: Snapshot{Members: []string{"u1"}}}
	s := newTestSession(det, Checkpoint{}, Snapshot{})
	sink := newCollectSink()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, sink)
	}()

	// connected plus at least one heartbeat cycle.
	sink.wait(t, 2)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}

	events := sink.all()
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventConnected, events[0].Type)
	assert.Equal(t, domain.EventHeartbeat, events[1].Type)
}

func TestSessionRunErrorEventTerminates(t *testing.T) {
	det := &scriptedDetector{errs: []error{ErrStreamScopeGone}}
	s := newTestSession(det, Checkpoint{}, Snapshot{})
	sink := newCollectSink()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), sink)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not terminate on cycle error")
	}

	events := sink.all()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventConnected, events[0].Type)
	assert.Equal(t, domain.EventError, events[1].Type)
	assert.Equal(t, domain.ErrorPayload{Message: "community or channel no longer exists"}, events[1].Data)
}

func TestSessionRunStopsWhenSinkFails(t *testing.T) {
	det := &scriptedDetector{}
	s := newTestSession(det, Checkpoint{}, Snapshot{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(context.Background(), failingSink{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop on sink failure")
	}
}

// blockingDetector parks in Detect until its context ends, the way a store
// read behaves when the client hangs up mid-cycle.
type blockingDetector struct {
	started   chan struct{}
	startOnce sync.Once
}

func (d *blockingDetector) Snapshot(context.Context, string) (Snapshot, error) {
	return Snapshot{}, nil
}

func (d *blockingDetector) Detect(ctx context.Context, _ DetectRequest) (*ChangeSet, error) {
	d.startOnce.Do(func() { close(d.started) })
	<-ctx.Done()
	return nil, fmt.Errorf("failed to detect messages: %w", ctx.Err())
}

func TestSessionRunDisconnectDuringCycleIsQuiet(t *testing.T) {
	det := &blockingDetector{started: make(chan struct{})}
	s := newTestSession(det, Checkpoint{}, Snapshot{})
	sink := newCollectSink()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, sink)
	}()

	select {
	case <-det.started:
	case <-time.After(2 * time.Second):
		t.Fatal("detector was never invoked")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after disconnect")
	}

	for _, ev := range sink.all() {
		assert.NotEqual(t, domain.EventError, ev.Type)
	}
}

func TestSessionRunCancellationDuringSleep(t *testing.T) {
	det := &scriptedDetector{}
	s := newTestSession(det, Checkpoint{}, Snapshot{})
	s.interval = time.Hour
	sink := newCollectSink()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, sink)
	}()

	// connected + first cycle's heartbeat, then the session sleeps.
	sink.wait(t, 2)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cancellation was not observed during the interval sleep")
	}
}

// End-to-end over the real detector: a message sent just before the
// checkpoint window opens must arrive in the first cycle, with no membership
// noise.
func TestStreamFirstCycleScenario(t *testing.T) {
	communities := testutil.NewMemCommunities()
	channels := testutil.NewMemChannels()
	messages := testutil.NewMemMessages()
	users := testutil.NewMemUsers(&domain.User{ID: "U1", Name: "User One", Username: "u.one"})

	communityID := communities.Put(&domain.Community{Members: []string{"U1", "U2"}})

	t0 := time.Now().UTC().Truncate(time.Second)
	_ = messages.Insert(context.Background(), &domain.Message{
		ID: primitive.NewObjectIDFromTimestamp(t0), CommunityID: communityID,
		ChannelID: "ch1", AuthorID: "U1", Content: "hello",
		Type: domain.MessageTypeMessage, CreatedAt: t0,
	})

	detector := NewDetector(communities, channels, messages, testutil.NewMemPresence(), testutil.NewMemTyping(), 50)
	encoder := NewEncoder(users, testutil.NewMemAuthorCache())
	svc := NewService(communities, channels, detector, encoder, config.StreamConfig{
		PollInterval: 5 * time.Millisecond,
		QueryTimeout: time.Second,
	})

	session, err := svc.Open(context.Background(), communityID, "", "U2", Checkpoint{})
	require.NoError(t, err)
	session.checkpoint.LastChecked = t0.Add(-time.Second)

	sink := newCollectSink()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(ctx, sink)
	}()

	// connected, message, heartbeat.
	sink.wait(t, 3)
	cancel()
	<-done

	events := sink.all()[:3]
	assert.Equal(t, domain.EventConnected, events[0].Type)
	require.Equal(t, domain.EventMessage, events[1].Type)
	assert.Equal(t, domain.EventHeartbeat, events[2].Type)

	payload, ok := events[1].Data.(domain.MessageResponse)
	require.True(t, ok)
	assert.Equal(t, "hello", payload.Content)
	assert.Equal(t, "User One", payload.Author.Name)

	for _, ev := range sink.all() {
		assert.NotEqual(t, domain.EventUserJoin, ev.Type)
		assert.NotEqual(t, domain.EventUserLeave, ev.Type)
	}
}
