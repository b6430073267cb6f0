package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChannelType represents the kind of channel.
type ChannelType string

const (
	ChannelTypeText         ChannelType = "text"
	ChannelTypeAnnouncement ChannelType = "announcement"
	ChannelTypeGeneral      ChannelType = "general"
)

// Channel represents a channel inside a community.
type Channel struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommunityID  string             `bson:"community_id" json:"community_id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Type         ChannelType        `bson:"type" json:"type"`
	IsPrivate    bool               `bson:"is_private" json:"is_private"`
	AllowedUsers []string           `bson:"allowed_users,omitempty" json:"-"`
	CreatedBy    string             `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	ID          string      `json:"id"`
	CommunityID string      `json:"community_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        ChannelType `json:"type"`
	IsPrivate   bool        `json:"is_private"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// ToResponse converts Channel to ChannelResponse.
func (ch *Channel) ToResponse() ChannelResponse {
	return ChannelResponse{
		ID:          ch.ID.Hex(),
		CommunityID: ch.CommunityID,
		Name:        ch.Name,
		Description: ch.Description,
		Type:        ch.Type,
		IsPrivate:   ch.IsPrivate,
		CreatedBy:   ch.CreatedBy,
		CreatedAt:   ch.CreatedAt,
		UpdatedAt:   ch.UpdatedAt,
	}
}
