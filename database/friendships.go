package database

import (
	"context"
	"database/sql"

	"betweenchat/models"
)

type FriendshipStore struct {
	db *sql.DB
}

func NewFriendshipStore(db *sql.DB) *FriendshipStore {
	return &FriendshipStore{db: db}
}

func (s *FriendshipStore) GetByID(ctx context.Context, id string) (*models.Friendship, error) {
	var f models.Friendship
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friendships WHERE id = ?
	`, id).Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByPair returns the single row for the unordered pair {a, b}.
func (s *FriendshipStore) GetByPair(ctx context.Context, a, b string) (*models.Friendship, error) {
	var f models.Friendship
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	`, a, b, b, a).Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// UpsertPending inserts a pending invite, or refreshes the existing row
// for the pair if a concurrent invite won the insert. The unique key on
// the canonically ordered pair guarantees at most one row either way.
func (s *FriendshipStore) UpsertPending(ctx context.Context, f *models.Friendship) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friendships (id, sender_id, receiver_id, status, created_at, updated_at)
		VALUES (?, ?, ?, 'pending', ?, ?)
		ON DUPLICATE KEY UPDATE
			sender_id = VALUES(sender_id),
			receiver_id = VALUES(receiver_id),
			status = 'pending',
			updated_at = VALUES(updated_at)
	`, f.ID, f.SenderID, f.ReceiverID, f.CreatedAt, f.UpdatedAt)
	return err
}

// AcceptPending performs the single conditional pending -> friend
// transition. Returns false when the row was already accepted, declined
// or otherwise no longer pending.
func (s *FriendshipStore) AcceptPending(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE friendships SET status = 'friend' WHERE id = ? AND status = 'pending'",
		id,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the row, freeing the pair for a future invite.
func (s *FriendshipStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM friendships WHERE id = ?", id)
	return err
}

func (s *FriendshipStore) ListFriends(ctx context.Context, uid string) ([]models.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE status = 'friend' AND (sender_id = ? OR receiver_id = ?)
		ORDER BY updated_at DESC
	`, uid, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFriendships(rows)
}

func (s *FriendshipStore) ListPendingReceived(ctx context.Context, uid string) ([]models.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, status, created_at, updated_at
		FROM friendships
		WHERE receiver_id = ? AND status = 'pending'
		ORDER BY created_at DESC
	`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFriendships(rows)
}

func scanFriendships(rows *sql.Rows) ([]models.Friendship, error) {
	var out []models.Friendship
	for rows.Next() {
		var f models.Friendship
		if err := rows.Scan(&f.ID, &f.SenderID, &f.ReceiverID, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
			continue
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
