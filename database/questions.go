package database

import (
	"context"
	"database/sql"

	"betweenchat/models"
)

type QuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// ListCandidates returns up to limit catalog rows. The caller picks one
// uniformly at random; the store does no sampling of its own.
func (s *QuestionStore) ListCandidates(ctx context.Context, limit int) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, category, title, content, options FROM chat_questions LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var options sql.NullString
		if err := rows.Scan(&q.ID, &q.Category, &q.Title, &q.Content, &options); err != nil {
			continue
		}
		if options.Valid {
			q.Options = []byte(options.String)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
