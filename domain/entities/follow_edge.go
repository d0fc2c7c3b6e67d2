package entities

import "time"

// FollowEdge is a directed follow relationship. The (follower, followed)
// pair is unique and a user never follows themselves; edges are created and
// destroyed, never updated.
type FollowEdge struct {
	FollowerID string    `json:"follower_id"`
	FollowedID string    `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewFollowEdge creates a follow edge
func NewFollowEdge(followerID, followedID string, now time.Time) *FollowEdge {
	return &FollowEdge{
		FollowerID: followerID,
		FollowedID: followedID,
		CreatedAt:  now,
	}
}
