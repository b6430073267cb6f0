package stream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/repository"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/store"
)

// ErrStreamScopeGone is returned when the community or scoped channel no
// longer exists mid-stream.
var ErrStreamScopeGone = errors.New("stream scope no longer exists")

// DetectRequest scopes one detection cycle.
type DetectRequest struct {
	CommunityID string
	ChannelID   string // canonical channel id; empty for community-wide streams
	CallerID    string
	Checkpoint  Checkpoint
	Previous    Snapshot
}

// ChangeSet is everything that changed since the checkpoint, read in a fixed
// order: messages, then presence against the previous member snapshot, then
// the current membership.
type ChangeSet struct {
	Messages []domain.Message
	Presence []domain.PresenceRecord
	Joined   []string
	Left     []string
	Typing   []domain.TypingRecord
	Channel  *domain.Channel // scoped channel when its metadata changed
	Members  []string        // current member set, becomes the next snapshot
}

// Detector finds changes since a checkpoint.
type Detector interface {
	// Snapshot reads the current member set, used to seed a new stream.
	Snapshot(ctx context.Context, communityID string) (Snapshot, error)

	Detect(ctx context.Context, req DetectRequest) (*ChangeSet, error)
}

type pollingDetector struct {
	communities repository.CommunityRepository
	channels    repository.ChannelRepository
	messages    repository.MessageRepository
	presence    store.PresenceStore
	typing      store.TypingStore
	maxEvents   int
	now         func() time.Time
}

// NewDetector creates the store-polling detector. maxEvents caps messages
// per cycle; the remainder surfaces next cycle via the id cursor.
func NewDetector(
	communities repository.CommunityRepository,
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	presence store.PresenceStore,
	typing store.TypingStore,
	maxEvents int,
) Detector {
	return &pollingDetector{
		communities: communities,
		channels:    channels,
		messages:    messages,
		presence:    presence,
		typing:      typing,
		maxEvents:   maxEvents,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (d *pollingDetector) Snapshot(ctx context.Context, communityID string) (Snapshot, error) {
	members, err := d.communities.MemberIDs(ctx, communityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Snapshot{}, ErrStreamScopeGone
		}
		return Snapshot{}, fmt.Errorf("failed to read member snapshot: %w", err)
	}
	return newSnapshot(members), nil
}

func (d *pollingDetector) Detect(ctx context.Context, req DetectRequest) (*ChangeSet, error) {
	changes := &ChangeSet{}

	if req.ChannelID != "" {
		channel, err := d.channels.GetByID(ctx, req.CommunityID, req.ChannelID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrStreamScopeGone
			}
			return nil, fmt.Errorf("failed to check channel: %w", err)
		}
		if channel.UpdatedAt.After(req.Checkpoint.LastChecked) {
			changes.Channel = channel
		}
	}

	messages, err := d.messages.ListSince(ctx, req.CommunityID, req.ChannelID,
		req.Checkpoint.LastChecked, req.Checkpoint.LastMessageID, d.maxEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to detect messages: %w", err)
	}
	changes.Messages = messages

	// Presence is diffed against the previous snapshot: membership is read
	// last, so the current set may include members whose presence history
	// predates their join.
	presence, err := d.presence.UpdatedSince(ctx, req.Previous.Members, req.Checkpoint.LastChecked)
	if err != nil {
		return nil, fmt.Errorf("failed to detect presence changes: %w", err)
	}
	changes.Presence = presence

	if req.ChannelID != "" {
		typing, err := d.typing.ListActive(ctx, req.CommunityID, req.ChannelID, d.now(), req.CallerID)
		if err != nil {
			return nil, fmt.Errorf("failed to detect typing: %w", err)
		}
		// Only typists who started since the checkpoint; re-announcing the
		// same typist every cycle would flood the stream.
		for i := range typing {
			if typing[i].StartedAt.After(req.Checkpoint.LastChecked) {
				changes.Typing = append(changes.Typing, typing[i])
			}
		}
	}

	members, err := d.communities.MemberIDs(ctx, req.CommunityID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStreamScopeGone
		}
		return nil, fmt.Errorf("failed to detect membership changes: %w", err)
	}
	changes.Members = members
	changes.Joined, changes.Left = diffMembers(req.Previous.Members, members)

	return changes, nil
}

// diffMembers returns ids present only in cur (joined) and only in prev
// (left), both sorted for deterministic emission order. A join and leave
// inside one interval cancels out and is not reported.
func diffMembers(prev, cur []string) (joined, left []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, id := range prev {
		prevSet[id] = struct{}{}
	}
	curSet := make(map[string]struct{}, len(cur))
	for _, id := range cur {
		curSet[id] = struct{}{}
	}

	for _, id := range cur {
		if _, ok := prevSet[id]; !ok {
			joined = append(joined, id)
		}
	}
	for _, id := range prev {
		if _, ok := curSet[id]; !ok {
			left = append(left, id)
		}
	}

	sort.Strings(joined)
	sort.Strings(left)
	return joined, left
}
