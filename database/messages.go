package database

import (
	"context"
	"database/sql"

	"betweenchat/models"
)

type MessageStore struct {
	db *sql.DB
}

func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) CreatePending(ctx context.Context, p *models.PendingMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_messages (id, channel_id, sender_id, content, status, question_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, 'waiting_commit', ?, ?, ?)
	`, p.ID, p.ChannelID, p.SenderID, p.Content, p.QuestionID, p.CreatedAt, p.ExpiresAt)
	return err
}

func (s *MessageStore) GetPending(ctx context.Context, id string) (*models.PendingMessage, error) {
	var p models.PendingMessage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, channel_id, sender_id, content, status, question_id, created_at, expires_at
		FROM pending_messages WHERE id = ?
	`, id).Scan(&p.ID, &p.ChannelID, &p.SenderID, &p.Content, &p.Status, &p.QuestionID, &p.CreatedAt, &p.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MessageStore) DeletePending(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM pending_messages WHERE id = ?", id)
	return err
}

// Insert writes the durable message and returns its generated id.
func (s *MessageStore) Insert(ctx context.Context, m *models.ChatMessage) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_messages (channel_id, sender_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`, m.ChannelID, m.SenderID, m.Content, m.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListPage returns up to limit messages newest first. beforeID > 0
// restricts results to ids strictly smaller (keyset pagination).
func (s *MessageStore) ListPage(ctx context.Context, channelID string, beforeID int64, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, channel_id, sender_id, content, created_at
		FROM chat_messages
		WHERE channel_id = ?`
	args := []any{channelID}
	if beforeID > 0 {
		query += " AND id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.ChannelID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// LastByChannels returns the newest message of each listed channel.
func (s *MessageStore) LastByChannels(ctx context.Context, channelIDs []string) (map[string]models.LastMessage, error) {
	if len(channelIDs) == 0 {
		return map[string]models.LastMessage{}, nil
	}
	args := make([]any, len(channelIDs))
	for i, id := range channelIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.channel_id, m.sender_id, m.content, m.created_at
		FROM chat_messages m
		JOIN (
			SELECT channel_id, MAX(id) AS id
			FROM chat_messages
			WHERE channel_id IN (`+placeholders(len(channelIDs))+`)
			GROUP BY channel_id
		) latest ON latest.id = m.id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]models.LastMessage)
	for rows.Next() {
		var channelID string
		var lm models.LastMessage
		if err := rows.Scan(&lm.ID, &channelID, &lm.UID, &lm.MessageContent, &lm.CreatedAt); err != nil {
			continue
		}
		out[channelID] = lm
	}
	return out, rows.Err()
}

// IDsExcludingSender lists every message id in the channel not authored
// by uid, for the catch-up read-mark mode.
func (s *MessageStore) IDsExcludingSender(ctx context.Context, channelID, uid string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id FROM chat_messages WHERE channel_id = ? AND sender_id != ?",
		channelID, uid,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, rows.Err()
}
