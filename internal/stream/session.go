package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramakrishna2121/glass-scribe-verse-backend/internal/domain"
	"github.com/ramakrishna2121/glass-scribe-verse-backend/pkg/log"
)

// errSinkClosed marks a delivery failure: the client is gone, so no error
// event is attempted.
var errSinkClosed = errors.New("sink closed")

// Sink delivers one event to the connected client.
type Sink interface {
	Send(event domain.StreamEvent) error
}

// Session is one client's polling loop over a community stream. A session is
// single-use: Open creates it, Run drives it until error or disconnect.
type Session struct {
	communityID string
	channelID   string
	callerID    string

	detector Detector
	encoder  *Encoder

	interval time.Duration
	timeout  time.Duration

	checkpoint Checkpoint
	snapshot   Snapshot

	now func() time.Time
}

// Run emits the connected event, then cycles until the context is cancelled
// or a cycle fails. A failed cycle emits one error event and terminates.
func (s *Session) Run(ctx context.Context, sink Sink) {
	logger := log.Ctx(ctx).With().
		Str(log.FieldCommunityID, s.communityID).
		Str(log.FieldUserID, s.callerID).
		Logger()
	ctx = log.WithLogger(ctx, logger)

	if s.checkpoint.LastChecked.IsZero() {
		s.checkpoint.LastChecked = s.now()
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	snapshot, err := s.detector.Snapshot(sctx, s.communityID)
	cancel()
	if err != nil {
		logger.Error().Err(err).Msg("stream failed to start")
		_ = sink.Send(domain.NewErrorEvent(s.communityID, streamErrorMessage(err)))
		return
	}
	s.snapshot = snapshot

	if err := sink.Send(domain.NewConnectedEvent(s.communityID, s.channelID)); err != nil {
		return
	}
	logger.Info().Msg("stream opened")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.cycle(ctx, sink); err != nil {
			// A disconnect mid-cycle surfaces as a cancelled read or a
			// failed write; neither warrants an error event.
			if errors.Is(err, errSinkClosed) || ctx.Err() != nil {
				logger.Debug().Msg("stream client gone")
				return
			}
			logger.Error().Err(err).Msg("stream cycle failed")
			_ = sink.Send(domain.NewErrorEvent(s.communityID, streamErrorMessage(err)))
			return
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("stream closed")
			return
		case <-ticker.C:
		}
	}
}

// cycle runs one detect-and-emit pass. The checkpoint and snapshot advance
// only after every event of the cycle was delivered.
func (s *Session) cycle(ctx context.Context, sink Sink) error {
	cycleStart := s.now()

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	changes, err := s.detector.Detect(cctx, DetectRequest{
		CommunityID: s.communityID,
		ChannelID:   s.channelID,
		CallerID:    s.callerID,
		Checkpoint:  s.checkpoint,
		Previous:    s.snapshot,
	})
	if err != nil {
		return err
	}

	events := s.encoder.Encode(cctx, s.communityID, changes)
	events = append(events, domain.NewHeartbeatEvent(s.communityID))
	for _, event := range events {
		if err := sink.Send(event); err != nil {
			return fmt.Errorf("%w: %v", errSinkClosed, err)
		}
	}

	s.checkpoint.LastChecked = cycleStart
	if n := len(changes.Messages); n > 0 {
		s.checkpoint.LastMessageID = changes.Messages[n-1].ID.Hex()
	}
	s.snapshot = newSnapshot(changes.Members)
	return nil
}

// Checkpoint returns the session's current read position.
func (s *Session) Checkpoint() Checkpoint {
	return s.checkpoint
}

func streamErrorMessage(err error) string {
	if errors.Is(err, ErrStreamScopeGone) {
		return "community or channel no longer exists"
	}
	return "stream terminated due to an internal error"
}
