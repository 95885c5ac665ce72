package database

import (
	"database/sql"
	"errors"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned by stores when a point lookup matches no row.
var ErrNotFound = errors.New("not found")

func Connect(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Database connected successfully")
	return db, nil
}

func CreateTables(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			uid         VARCHAR(36) PRIMARY KEY,
			username    VARCHAR(50) NOT NULL,
			nickname    VARCHAR(100),
			image_url   VARCHAR(255),
			password    VARCHAR(255) NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uk_username (username)
		)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			id           VARCHAR(36) PRIMARY KEY,
			sender_id    VARCHAR(36) NOT NULL,
			receiver_id  VARCHAR(36) NOT NULL,
			status       ENUM('pending', 'friend', 'blocked') DEFAULT 'pending',
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			low_user_id  VARCHAR(36) AS (LEAST(sender_id, receiver_id)) STORED,
			high_user_id VARCHAR(36) AS (GREATEST(sender_id, receiver_id)) STORED,
			UNIQUE KEY uk_pair (low_user_id, high_user_id),
			INDEX idx_receiver (receiver_id)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_channels (
			id           VARCHAR(36) PRIMARY KEY,
			channel_type ENUM('direct', 'group') NOT NULL,
			created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS channel_users (
			channel_id  VARCHAR(36) NOT NULL,
			uid         VARCHAR(36) NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uk_channel_user (channel_id, uid),
			INDEX idx_uid (uid)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			channel_id  VARCHAR(36) NOT NULL,
			sender_id   VARCHAR(36) NOT NULL,
			content     TEXT NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_channel_id (channel_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS pending_messages (
			id          VARCHAR(36) PRIMARY KEY,
			channel_id  VARCHAR(36) NOT NULL,
			sender_id   VARCHAR(36) NOT NULL,
			content     TEXT NOT NULL,
			status      ENUM('waiting_commit') DEFAULT 'waiting_commit',
			question_id BIGINT NOT NULL,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
			expires_at  DATETIME NOT NULL,
			INDEX idx_expires (expires_at)
		)`,
		`CREATE TABLE IF NOT EXISTS message_reads (
			message_id  BIGINT NOT NULL,
			uid         VARCHAR(36) NOT NULL,
			read_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uk_message_reader (message_id, uid),
			INDEX idx_uid (uid)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_questions (
			id          BIGINT AUTO_INCREMENT PRIMARY KEY,
			category    VARCHAR(50) NOT NULL,
			title       VARCHAR(255) NOT NULL,
			content     TEXT NOT NULL,
			options     JSON,
			created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return err
		}
	}

	log.Println("Database tables created successfully")
	return nil
}
