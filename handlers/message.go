package handlers

import (
	"encoding/json"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"betweenchat/database"
	"betweenchat/middleware"
	"betweenchat/models"
	"betweenchat/realtime"
	"betweenchat/utils"
)

const (
	pendingTTL        = 10 * time.Minute
	messagePageSize   = 10
	questionPoolLimit = 1000
)

type MessageHandler struct {
	Messages  MessageStore
	Channels  ChannelStore
	Profiles  ProfileStore
	Questions QuestionStore
	Reads     ReadStore
	Events    realtime.Publisher
	NowFunc   func() time.Time
	// RandFunc picks an index in [0, n); overridable in tests.
	RandFunc func(n int) int
}

func NewMessageHandler(messages MessageStore, channels ChannelStore, profiles ProfileStore, questions QuestionStore, reads ReadStore, events realtime.Publisher) *MessageHandler {
	return &MessageHandler{
		Messages:  messages,
		Channels:  channels,
		Profiles:  profiles,
		Questions: questions,
		Reads:     reads,
		Events:    events,
	}
}

func (h *MessageHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

func (h *MessageHandler) pick(n int) int {
	if h.RandFunc != nil {
		return h.RandFunc(n)
	}
	return rand.Intn(n)
}

type createPendingRequest struct {
	ChannelID string `json:"room_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

// CreatePending stages a message and hands the sender a random quiz
// question. The message becomes visible only after Commit.
func (h *MessageHandler) CreatePending(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req createPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "room_id and content are required")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		utils.BadRequest(c, "content must not be blank")
		return
	}

	member, err := h.Channels.IsMember(c.Request.Context(), req.ChannelID, userID)
	if err != nil {
		utils.InternalError(c, "failed to check channel membership")
		return
	}
	if !member {
		utils.Forbidden(c, "not a member of this channel")
		return
	}

	questions, err := h.Questions.ListCandidates(c.Request.Context(), questionPoolLimit)
	if err != nil {
		utils.InternalError(c, "failed to load questions")
		return
	}
	if len(questions) == 0 {
		utils.Fail(c, 500, utils.CodeUnavailable, "no questions available")
		return
	}
	question := questions[h.pick(len(questions))]

	now := h.now()
	pending := &models.PendingMessage{
		ID:         utils.GenerateUUID(),
		ChannelID:  req.ChannelID,
		SenderID:   userID,
		Content:    content,
		Status:     models.PendingWaitingCommit,
		QuestionID: question.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(pendingTTL),
	}
	if err := h.Messages.CreatePending(c.Request.Context(), pending); err != nil {
		utils.InternalError(c, "failed to create pending message")
		return
	}

	utils.Success(c, gin.H{
		"pending_id": pending.ID,
		"question":   question,
	})
}

type commitRequest struct {
	PendingID string `json:"pending_id" binding:"required"`
	Category  string `json:"category" binding:"required"`
	AudioPath string `json:"audio_path"`
}

// Commit turns a pending message into a durable one and fans the
// last-message update out to every channel member.
func (h *MessageHandler) Commit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "pending_id and category are required")
		return
	}

	pending, err := h.Messages.GetPending(c.Request.Context(), req.PendingID)
	if err == database.ErrNotFound {
		utils.NotFound(c, "pending message not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to load pending message")
		return
	}
	if pending.SenderID != userID {
		utils.Forbidden(c, "only the sender can commit this message")
		return
	}

	now := h.now()
	msg := &models.ChatMessage{
		ChannelID: pending.ChannelID,
		SenderID:  pending.SenderID,
		Content:   pending.Content,
		CreatedAt: now,
	}
	msgID, err := h.Messages.Insert(c.Request.Context(), msg)
	if err != nil {
		utils.InternalError(c, "failed to commit message")
		return
	}

	// Cleanup is best-effort: a leftover pending row is harmless, the
	// durable message already exists.
	if err := h.Messages.DeletePending(c.Request.Context(), pending.ID); err != nil {
		log.Printf("failed to delete pending message %s: %v", pending.ID, err)
	}

	h.broadcastLastMessage(c, pending.ChannelID, pending.Content, now)

	resp := gin.H{
		"status":     "success",
		"is_correct": true,
		"message_record": models.MessageRecord{
			ID:        msgID,
			ChannelID: pending.ChannelID,
			Content:   pending.Content,
			CreatedAt: now,
		},
	}
	if req.AudioPath != "" {
		resp["audio_path"] = req.AudioPath
	}
	utils.Success(c, resp)
}

func (h *MessageHandler) broadcastLastMessage(c *gin.Context, channelID, content string, sentAt time.Time) {
	if h.Events == nil {
		return
	}
	memberIDs, err := h.Channels.MemberIDs(c.Request.Context(), channelID)
	if err != nil {
		log.Printf("failed to load members of %s for broadcast: %v", channelID, err)
		return
	}
	event := realtime.Event{
		Event: realtime.EventLastMsgUpdate,
		Payload: gin.H{
			"room_id": channelID,
			"last_message": gin.H{
				"text":       content,
				"created_at": sentAt.UnixMilli(),
			},
			"unread_total": 0,
		},
	}
	for _, uid := range memberIDs {
		if err := h.Events.Publish(c.Request.Context(), realtime.InboxTopic(uid), event); err != nil {
			log.Printf("broadcast %s to %s failed: %v", event.Event, uid, err)
		}
	}
}

type listRequest struct {
	ChannelID string      `json:"room_id" binding:"required"`
	Cursor    json.Number `json:"cursor"`
}

// List returns one keyset page of a channel's history, newest first.
// The cursor is the last message id of the previous page.
func (h *MessageHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "room_id is required")
		return
	}

	var beforeID int64
	if req.Cursor != "" {
		id, err := req.Cursor.Int64()
		if err != nil {
			utils.BadRequest(c, "cursor must be a number (message id)")
			return
		}
		beforeID = id
	}

	member, err := h.Channels.IsMember(c.Request.Context(), req.ChannelID, userID)
	if err != nil {
		utils.InternalError(c, "failed to check channel membership")
		return
	}
	if !member {
		utils.Forbidden(c, "not a member of this channel")
		return
	}

	channel, err := h.Channels.GetByID(c.Request.Context(), req.ChannelID)
	if err != nil {
		utils.InternalError(c, "failed to load channel")
		return
	}

	messages, err := h.Messages.ListPage(c.Request.Context(), req.ChannelID, beforeID, messagePageSize)
	if err != nil {
		utils.InternalError(c, "failed to list messages")
		return
	}

	senderIDs := make([]string, 0, len(messages))
	seen := make(map[string]bool, len(messages))
	messageIDs := make([]int64, 0, len(messages))
	for i := range messages {
		messageIDs = append(messageIDs, messages[i].ID)
		if !seen[messages[i].SenderID] {
			seen[messages[i].SenderID] = true
			senderIDs = append(senderIDs, messages[i].SenderID)
		}
	}

	profiles, err := h.Profiles.ListByIDs(c.Request.Context(), senderIDs)
	if err != nil {
		utils.InternalError(c, "failed to list messages")
		return
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UID] = &profiles[i]
	}

	readCounts := map[int64]int{}
	if len(messageIDs) > 0 {
		readCounts, err = h.Reads.CountByMessage(c.Request.Context(), messageIDs)
		if err != nil {
			utils.InternalError(c, "failed to list messages")
			return
		}
	}

	entries := make([]models.MessageEntry, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		entry := models.MessageEntry{
			ID:        m.ID,
			Content:   m.Content,
			MsgType:   "text",
			CreatedAt: m.CreatedAt,
		}
		if p := byID[m.SenderID]; p != nil {
			entry.Sender = p.ToSummary()
		} else {
			entry.Sender = models.UserSummary{ID: m.SenderID, Nickname: "Unknown"}
		}
		count := readCounts[m.ID]
		if channel.ChannelType == models.ChannelDirect && count > 1 {
			// Direct channels expose a binary read indicator.
			count = 1
		}
		entry.ReadCount = count
		entries = append(entries, entry)
	}

	var nextCursor *int64
	if len(messages) == messagePageSize {
		last := messages[len(messages)-1].ID
		nextCursor = &last
	}

	utils.Success(c, gin.H{
		"messages": entries,
		"cursor":   nextCursor,
	})
}
