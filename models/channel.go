package models

import "time"

const (
	ChannelDirect = "direct"
	ChannelGroup  = "group"
)

type Channel struct {
	ID          string    `json:"id"`
	ChannelType string    `json:"channel_type"` // direct, group
	CreatedAt   time.Time `json:"created_at"`
}

type ChannelMember struct {
	ChannelID string    `json:"channel_id"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

// LastMessage is the per-channel tail snapshot used in channel lists
// and inbox broadcasts.
type LastMessage struct {
	ID             int64     `json:"id"`
	UID            string    `json:"uid"`
	MessageContent string    `json:"message_content"`
	CreatedAt      time.Time `json:"created_at"`
}

type ChannelEntry struct {
	ID          string        `json:"id"`
	ChannelType string        `json:"channel_type"`
	Users       []ChannelUser `json:"users"`
	LastMessage *LastMessage  `json:"last_message"`
}

type ChannelUser struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	ImageURL string `json:"image_url"`
}

// RoomEntry is the session-bootstrap variant of ChannelEntry.
type RoomEntry struct {
	ID          string        `json:"id"`
	ChannelType string        `json:"channel_type"`
	Users       []UserSummary `json:"users"`
	LastMessage *LastMessage  `json:"last_message"`
	UnreadCount int           `json:"unread_count"`
}
