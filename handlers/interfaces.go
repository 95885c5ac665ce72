package handlers

import (
	"context"
	"time"

	"betweenchat/models"
)

// ProfileStore captures the persistence operations required by the
// auth, profile and enrichment paths.
type ProfileStore interface {
	GetByID(ctx context.Context, uid string) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	SearchOne(ctx context.Context, query string) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	UpdateNickname(ctx context.Context, uid, nickname string) error
	ListByIDs(ctx context.Context, uids []string) ([]models.Profile, error)
}

// FriendshipStore captures the relationship state machine operations.
// AcceptPending must be a conditional transition: it reports false when
// the row was no longer pending.
type FriendshipStore interface {
	GetByID(ctx context.Context, id string) (*models.Friendship, error)
	GetByPair(ctx context.Context, a, b string) (*models.Friendship, error)
	UpsertPending(ctx context.Context, f *models.Friendship) error
	AcceptPending(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	ListFriends(ctx context.Context, uid string) ([]models.Friendship, error)
	ListPendingReceived(ctx context.Context, uid string) ([]models.Friendship, error)
}

// ChannelStore captures channel and membership persistence.
type ChannelStore interface {
	CreateDirect(ctx context.Context, channelID string, memberIDs []string) error
	GetByID(ctx context.Context, channelID string) (*models.Channel, error)
	IsMember(ctx context.Context, channelID, uid string) (bool, error)
	MemberIDs(ctx context.Context, channelID string) ([]string, error)
	ListForUser(ctx context.Context, uid string) ([]models.Channel, error)
}

// MessageStore captures the pending/commit pipeline and message reads.
type MessageStore interface {
	CreatePending(ctx context.Context, p *models.PendingMessage) error
	GetPending(ctx context.Context, id string) (*models.PendingMessage, error)
	DeletePending(ctx context.Context, id string) error
	Insert(ctx context.Context, m *models.ChatMessage) (int64, error)
	ListPage(ctx context.Context, channelID string, beforeID int64, limit int) ([]models.ChatMessage, error)
	LastByChannels(ctx context.Context, channelIDs []string) (map[string]models.LastMessage, error)
	IDsExcludingSender(ctx context.Context, channelID, uid string) ([]int64, error)
}

// ReadStore captures read-mark accounting. InsertMarks is idempotent
// per (message, reader) and returns only the newly created count.
type ReadStore interface {
	InsertMarks(ctx context.Context, uid string, messageIDs []int64, readAt time.Time) (int, error)
	ExistingIDs(ctx context.Context, uid string, messageIDs []int64) ([]int64, error)
	CountByMessage(ctx context.Context, messageIDs []int64) (map[int64]int, error)
}

// QuestionStore serves the prompt catalog.
type QuestionStore interface {
	ListCandidates(ctx context.Context, limit int) ([]models.Question, error)
}
