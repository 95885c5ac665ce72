package models

import "time"

const PendingWaitingCommit = "waiting_commit"

// PendingMessage is a message held back until the sender completes the
// commit step. Consumed (read once, then deleted) by the commit phase.
type PendingMessage struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channel_id"`
	SenderID   string    `json:"sender_id"`
	Content    string    `json:"content"`
	Status     string    `json:"status"`
	QuestionID int64     `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ChatMessage is the durable message record. Created only by commit.
type ChatMessage struct {
	ID        int64     `json:"id"`
	ChannelID string    `json:"channel_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageRead struct {
	MessageID int64     `json:"message_id"`
	UID       string    `json:"uid"`
	ReadAt    time.Time `json:"read_at"`
}

// MessageEntry is a page row of the message list, enriched with the
// sender snapshot and the read counter.
type MessageEntry struct {
	ID        int64       `json:"id"`
	Sender    UserSummary `json:"sender"`
	Content   string      `json:"content"`
	MsgType   string      `json:"msg_type"`
	ReadCount int         `json:"read_count"`
	CreatedAt time.Time   `json:"created_at"`
}

// MessageRecord is the commit response payload.
type MessageRecord struct {
	ID        int64     `json:"id"`
	ChannelID string    `json:"channel_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
