package domain

import "time"

// EventType discriminates stream event envelopes. The set is closed: every
// event on the wire is built through one of the constructors below.
type EventType string

const (
	EventConnected     EventType = "connected"
	EventMessage       EventType = "message"
	EventPresence      EventType = "presence"
	EventUserJoin      EventType = "user_join"
	EventUserLeave     EventType = "user_leave"
	EventTyping        EventType = "typing"
	EventChannelUpdate EventType = "channel_update"
	EventHeartbeat     EventType = "heartbeat"
	EventError         EventType = "error"
)

// StreamEvent is the uniform transport envelope for the live update feed.
type StreamEvent struct {
	Type        EventType   `json:"type"`
	Data        interface{} `json:"data,omitempty"`
	CommunityID string      `json:"community_id"`
	ChannelID   string      `json:"channel_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// MembershipChange is the payload of user_join and user_leave events.
type MembershipChange struct {
	UserID string `json:"user_id"`
}

// ErrorPayload is the payload of error events.
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewConnectedEvent signals that the stream is live, before any real event.
func NewConnectedEvent(communityID, channelID string) StreamEvent {
	return StreamEvent{
		Type:        EventConnected,
		CommunityID: communityID,
		ChannelID:   channelID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewMessageEvent wraps a resolved channel message.
func NewMessageEvent(msg MessageResponse) StreamEvent {
	return StreamEvent{
		Type:        EventMessage,
		Data:        msg,
		CommunityID: msg.CommunityID,
		ChannelID:   msg.ChannelID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewPresenceEvent wraps a presence change for a community member.
func NewPresenceEvent(communityID string, p PresenceResponse) StreamEvent {
	return StreamEvent{
		Type:        EventPresence,
		Data:        p,
		CommunityID: communityID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewUserJoinEvent reports a member observed in the current snapshot but not
// the previous one.
func NewUserJoinEvent(communityID, userID string) StreamEvent {
	return StreamEvent{
		Type:        EventUserJoin,
		Data:        MembershipChange{UserID: userID},
		CommunityID: communityID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewUserLeaveEvent reports a member observed in the previous snapshot but
// not the current one.
func NewUserLeaveEvent(communityID, userID string) StreamEvent {
	return StreamEvent{
		Type:        EventUserLeave,
		Data:        MembershipChange{UserID: userID},
		CommunityID: communityID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewTypingEvent wraps an active typing indicator.
func NewTypingEvent(communityID, channelID string, t TypingIndicator) StreamEvent {
	return StreamEvent{
		Type:        EventTyping,
		Data:        t,
		CommunityID: communityID,
		ChannelID:   channelID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewChannelUpdateEvent wraps a channel metadata change.
func NewChannelUpdateEvent(communityID string, ch ChannelResponse) StreamEvent {
	return StreamEvent{
		Type:        EventChannelUpdate,
		Data:        ch,
		CommunityID: communityID,
		ChannelID:   ch.ID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewHeartbeatEvent is emitted unconditionally at the end of every cycle.
func NewHeartbeatEvent(communityID string) StreamEvent {
	return StreamEvent{
		Type:        EventHeartbeat,
		CommunityID: communityID,
		Timestamp:   time.Now().UTC(),
	}
}

// NewErrorEvent carries a human-readable message; it is always the last
// event on a stream.
func NewErrorEvent(communityID, message string) StreamEvent {
	return StreamEvent{
		Type:        EventError,
		Data:        ErrorPayload{Message: message},
		CommunityID: communityID,
		Timestamp:   time.Now().UTC(),
	}
}
