package database

import (
	"context"
	"database/sql"

	"betweenchat/models"
)

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetByID(ctx context.Context, uid string) (*models.Profile, error) {
	var p models.Profile
	var nickname, imageURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, username, nickname, image_url, password, created_at, updated_at
		FROM user_profiles WHERE uid = ?
	`, uid).Scan(&p.UID, &p.Username, &nickname, &imageURL, &p.Password, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Nickname = nickname.String
	p.ImageURL = imageURL.String
	return &p, nil
}

func (s *ProfileStore) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var p models.Profile
	var nickname, imageURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, username, nickname, image_url, password, created_at, updated_at
		FROM user_profiles WHERE username = ?
	`, username).Scan(&p.UID, &p.Username, &nickname, &imageURL, &p.Password, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Nickname = nickname.String
	p.ImageURL = imageURL.String
	return &p, nil
}

// SearchOne returns the first profile whose nickname or username
// matches the query as a substring.
func (s *ProfileStore) SearchOne(ctx context.Context, query string) (*models.Profile, error) {
	pattern := "%" + query + "%"
	var p models.Profile
	var nickname, imageURL sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT uid, username, nickname, image_url, password, created_at, updated_at
		FROM user_profiles
		WHERE nickname LIKE ? OR username LIKE ?
		LIMIT 1
	`, pattern, pattern).Scan(&p.UID, &p.Username, &nickname, &imageURL, &p.Password, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Nickname = nickname.String
	p.ImageURL = imageURL.String
	return &p, nil
}

func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (uid, username, nickname, image_url, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.UID, p.Username, p.Nickname, p.ImageURL, p.Password, p.CreatedAt, p.UpdatedAt)
	return err
}

func (s *ProfileStore) UpdateNickname(ctx context.Context, uid, nickname string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE user_profiles SET nickname = ? WHERE uid = ?",
		nickname, uid,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProfileStore) ListByIDs(ctx context.Context, uids []string) ([]models.Profile, error) {
	if len(uids) == 0 {
		return nil, nil
	}
	args := make([]any, len(uids))
	for i, id := range uids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT uid, username, nickname, image_url, password, created_at, updated_at
		FROM user_profiles WHERE uid IN (`+placeholders(len(uids))+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		var nickname, imageURL sql.NullString
		if err := rows.Scan(&p.UID, &p.Username, &nickname, &imageURL, &p.Password, &p.CreatedAt, &p.UpdatedAt); err != nil {
			continue
		}
		p.Nickname = nickname.String
		p.ImageURL = imageURL.String
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
