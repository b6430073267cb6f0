package domain

import "time"

// PresenceStatus represents a user's live status.
type PresenceStatus string

const (
	StatusOnline       PresenceStatus = "online"
	StatusOffline      PresenceStatus = "offline"
	StatusAway         PresenceStatus = "away"
	StatusDoNotDisturb PresenceStatus = "dnd"
)

// PresenceRecord is the durable per-user status document. Records are created
// lazily: a user with no record is implicitly offline.
type PresenceRecord struct {
	UserID        string         `bson:"_id" json:"user_id"`
	Status        PresenceStatus `bson:"status" json:"status"`
	CustomMessage *string        `bson:"custom_message,omitempty" json:"custom_message,omitempty"`
	LastSeen      time.Time      `bson:"last_seen" json:"last_seen"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updated_at"`
}

// DefaultPresence returns the implicit offline record for a user without one.
func DefaultPresence(userID string, now time.Time) PresenceRecord {
	return PresenceRecord{
		UserID:    userID,
		Status:    StatusOffline,
		LastSeen:  now,
		UpdatedAt: now,
	}
}

// PresenceUpdateRequest represents a set-presence request.
type PresenceUpdateRequest struct {
	Status        PresenceStatus `json:"status" binding:"required,oneof=online offline away dnd"`
	CustomMessage *string        `json:"custom_message" binding:"omitempty,max=100"`
}

// PresenceResponse represents a presence record in API responses and events.
type PresenceResponse struct {
	UserID        string         `json:"user_id"`
	Status        PresenceStatus `json:"status"`
	CustomMessage *string        `json:"custom_message,omitempty"`
	LastSeen      time.Time      `json:"last_seen"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ToResponse converts PresenceRecord to PresenceResponse.
func (p *PresenceRecord) ToResponse() PresenceResponse {
	return PresenceResponse{
		UserID:        p.UserID,
		Status:        p.Status,
		CustomMessage: p.CustomMessage,
		LastSeen:      p.LastSeen,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CommunityPresenceResponse maps every member to a presence envelope.
type CommunityPresenceResponse struct {
	CommunityID string                      `json:"community_id"`
	Presences   map[string]PresenceResponse `json:"presences"`
	OnlineCount int                         `json:"online_count"`
	TotalCount  int                         `json:"total_count"`
}

// TypingRecord is the ephemeral "user is typing" marker, keyed by the
// composite (user, community, channel). A record past ExpiresAt is absent
// regardless of physical deletion timing.
type TypingRecord struct {
	UserID      string    `bson:"user_id" json:"user_id"`
	CommunityID string    `bson:"community_id" json:"community_id"`
	ChannelID   string    `bson:"channel_id" json:"channel_id"`
	Username    string    `bson:"username" json:"username"`
	Avatar      string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	StartedAt   time.Time `bson:"started_at" json:"started_at"`
	ExpiresAt   time.Time `bson:"expires_at" json:"-"`
}

// Expired reports whether the record is past its TTL at the given instant.
func (t *TypingRecord) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TypingUpdateRequest represents a typing start/stop request.
type TypingUpdateRequest struct {
	Typing *bool `json:"typing" binding:"required"`
}

// TypingIndicator represents one active typist in API responses.
type TypingIndicator struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// TypingResponse lists active typists for a channel.
type TypingResponse struct {
	TypingUsers []TypingIndicator `json:"typing_users"`
	CommunityID string            `json:"community_id"`
	ChannelID   string            `json:"channel_id"`
}
