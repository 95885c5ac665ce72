package models

import "time"

const (
	FriendshipPending = "pending"
	FriendshipFriend  = "friend"
	FriendshipBlocked = "blocked"
)

// Relationship status as seen from one side of the pair.
const (
	RelationNone            = "none"
	RelationPendingSent     = "pending_sent"
	RelationPendingReceived = "pending_received"
	RelationFriend          = "friend"
	RelationBlocked         = "blocked"
)

// Friendship is the single row per unordered user pair. SenderID and
// ReceiverID keep the invite direction; the store enforces pair
// uniqueness over the canonically ordered pair.
type Friendship struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Status     string    `json:"status"` // pending, friend, blocked
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Other returns the pair member that is not uid.
func (f *Friendship) Other(uid string) string {
	if f.SenderID == uid {
		return f.ReceiverID
	}
	return f.SenderID
}

// RelationFor maps the row status plus direction to the relationship
// status seen by uid.
func (f *Friendship) RelationFor(uid string) string {
	switch f.Status {
	case FriendshipFriend:
		return RelationFriend
	case FriendshipBlocked:
		return RelationBlocked
	case FriendshipPending:
		if f.SenderID == uid {
			return RelationPendingSent
		}
		return RelationPendingReceived
	}
	return RelationNone
}

type FriendEntry struct {
	UserID              string    `json:"user_id"`
	Nickname            string    `json:"nickname"`
	AvatarURL           string    `json:"avatar_url"`
	FriendshipCreatedAt time.Time `json:"friendship_created_at"`
	FriendshipUpdatedAt time.Time `json:"friendship_updated_at"`
}

type InvitationEntry struct {
	RequestID string    `json:"request_id"`
	UserID    string    `json:"user_id"`
	Nickname  string    `json:"nickname"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
