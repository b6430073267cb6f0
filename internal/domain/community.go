package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Community is the authoritative membership document. The members array and
// member_count are always mutated together in a single atomic update.
type Community struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	AccessType  string             `bson:"access_type" json:"access_type"`
	CreatorID   string             `bson:"creator_id" json:"creator_id"`
	MemberCount int                `bson:"member_count" json:"member_count"`
	Members     []string           `bson:"members" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// IsMember reports whether userID is in the members array.
func (c *Community) IsMember(userID string) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CommunityResponse represents a community in API responses.
type CommunityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	AccessType  string    `json:"access_type"`
	CreatorID   string    `json:"creator_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	IsJoined    bool      `json:"is_joined"`
}

// ToResponse converts Community to CommunityResponse.
func (c *Community) ToResponse(callerID string) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID.Hex(),
		Name:        c.Name,
		Description: c.Description,
		AccessType:  c.AccessType,
		CreatorID:   c.CreatorID,
		MemberCount: c.MemberCount,
		CreatedAt:   c.CreatedAt,
		IsJoined:    callerID != "" && c.IsMember(callerID),
	}
}
