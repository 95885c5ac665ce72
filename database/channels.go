package database

import (
	"context"
	"database/sql"
	"time"

	"betweenchat/models"
)

type ChannelStore struct {
	db *sql.DB
}

func NewChannelStore(db *sql.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

// CreateDirect creates a direct channel and its two memberships in one
// transaction.
func (s *ChannelStore) CreateDirect(ctx context.Context, channelID string, memberIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	now := time.Now()
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO chat_channels (id, channel_type, created_at) VALUES (?, 'direct', ?)",
		channelID, now,
	); err != nil {
		tx.Rollback()
		return err
	}

	for _, uid := range memberIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO channel_users (channel_id, uid, created_at) VALUES (?, ?, ?)",
			channelID, uid, now,
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (s *ChannelStore) GetByID(ctx context.Context, channelID string) (*models.Channel, error) {
	var ch models.Channel
	err := s.db.QueryRowContext(ctx,
		"SELECT id, channel_type, created_at FROM chat_channels WHERE id = ?",
		channelID,
	).Scan(&ch.ID, &ch.ChannelType, &ch.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *ChannelStore) IsMember(ctx context.Context, channelID, uid string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM channel_users WHERE channel_id = ? AND uid = ?)",
		channelID, uid,
	).Scan(&exists)
	return exists, err
}

func (s *ChannelStore) MemberIDs(ctx context.Context, channelID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT uid FROM channel_users WHERE channel_id = ?",
		channelID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err == nil {
			members = append(members, uid)
		}
	}
	return members, rows.Err()
}

func (s *ChannelStore) ListForUser(ctx context.Context, uid string) ([]models.Channel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.channel_type, c.created_at
		FROM chat_channels c
		JOIN channel_users cu ON cu.channel_id = c.id
		WHERE cu.uid = ?
		ORDER BY c.created_at DESC
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.ChannelType, &ch.CreatedAt); err != nil {
			continue
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}
