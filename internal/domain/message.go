package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageType represents the kind of channel message.
type MessageType string

const (
	MessageTypeMessage      MessageType = "message"
	MessageTypeAnnouncement MessageType = "announcement"
	MessageTypeSystem       MessageType = "system"
)

// Message is a single line in a channel. Content and the edited flag are the
// only fields that change after creation.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommunityID string             `bson:"community_id" json:"community_id"`
	ChannelID   string             `bson:"channel_id" json:"channel_id"`
	AuthorID    string             `bson:"author_id" json:"author_id"`
	Content     string             `bson:"content" json:"content"`
	Type        MessageType        `bson:"type" json:"type"`
	ReplyTo     *string            `bson:"reply_to,omitempty" json:"reply_to,omitempty"`
	IsEdited    bool               `bson:"is_edited" json:"is_edited"`
	EditedAt    *time.Time         `bson:"edited_at,omitempty" json:"edited_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// AuthorSummary is the resolved author shape attached to outgoing messages.
type AuthorSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// UnknownAuthor returns the placeholder summary used when the referenced user
// no longer exists. Resolution failure never fails the surrounding operation.
func UnknownAuthor(userID string) AuthorSummary {
	return AuthorSummary{
		ID:       userID,
		Name:     "Unknown User",
		Username: "unknown",
		Avatar:   "",
	}
}

// SendMessageRequest represents a send message request.
type SendMessageRequest struct {
	Content string      `json:"content" binding:"required,min=1"`
	Type    MessageType `json:"type"`
	ReplyTo *string     `json:"reply_to"`
}

// EditMessageRequest represents a message edit request.
type EditMessageRequest struct {
	Content string `json:"content" binding:"required,min=1"`
}

// MessageResponse represents a message in API responses and stream events.
type MessageResponse struct {
	ID          string        `json:"id"`
	CommunityID string        `json:"community_id"`
	ChannelID   string        `json:"channel_id"`
	Author      AuthorSummary `json:"author"`
	Content     string        `json:"content"`
	Type        MessageType   `json:"type"`
	ReplyTo     *string       `json:"reply_to,omitempty"`
	IsEdited    bool          `json:"is_edited"`
	EditedAt    *time.Time    `json:"edited_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ToResponse converts Message to MessageResponse with a resolved author.
func (m *Message) ToResponse(author AuthorSummary) MessageResponse {
	return MessageResponse{
		ID:          m.ID.Hex(),
		CommunityID: m.CommunityID,
		ChannelID:   m.ChannelID,
		Author:      author,
		Content:     m.Content,
		Type:        m.Type,
		ReplyTo:     m.ReplyTo,
		IsEdited:    m.IsEdited,
		EditedAt:    m.EditedAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// MessageListResponse is a cursor-paged message list.
type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}
