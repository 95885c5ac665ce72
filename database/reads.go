package database

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type ReadStore struct {
	db *sql.DB
}

func NewReadStore(db *sql.DB) *ReadStore {
	return &ReadStore{db: db}
}

// InsertMarks inserts one read mark per message id and returns how many
// were actually new. INSERT IGNORE makes duplicate (message_id, uid)
// pairs a no-op, so re-marking already-read messages is safe.
func (s *ReadStore) InsertMarks(ctx context.Context, uid string, messageIDs []int64, readAt time.Time) (int, error) {
	if len(messageIDs) == 0 {
		return 0, nil
	}
	var b strings.Builder
	b.WriteString("INSERT IGNORE INTO message_reads (message_id, uid, read_at) VALUES ")
	args := make([]any, 0, len(messageIDs)*3)
	for i, id := range messageIDs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?)")
		args = append(args, id, uid, readAt)
	}
	res, err := s.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ExistingIDs returns the subset of messageIDs the user already read.
func (s *ReadStore) ExistingIDs(ctx context.Context, uid string, messageIDs []int64) ([]int64, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(messageIDs)+1)
	args = append(args, uid)
	for _, id := range messageIDs {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id FROM message_reads
		WHERE uid = ? AND message_id IN (`+placeholders(len(messageIDs))+`)
	`, args...)
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

// CountByMessage returns the distinct-reader count per message id.
func (s *ReadStore) CountByMessage(ctx context.Context, messageIDs []int64) (map[int64]int, error) {
	if len(messageIDs) == 0 {
		return map[int64]int{}, nil
	}
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT message_id, COUNT(DISTINCT uid)
		FROM message_reads
		WHERE message_id IN (`+placeholders(len(messageIDs))+`)
		GROUP BY message_id
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err == nil {
			counts[id] = n
		}
	}
	return counts, rows.Err()
}
