package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"betweenchat/database"
	"betweenchat/middleware"
	"betweenchat/models"
	"betweenchat/realtime"
	"betweenchat/utils"
)

type FriendHandler struct {
	Friendships FriendshipStore
	Profiles    ProfileStore
	Channels    ChannelStore
	Events      realtime.Publisher
	NowFunc     func() time.Time
}

func NewFriendHandler(friendships FriendshipStore, profiles ProfileStore, channels ChannelStore, events realtime.Publisher) *FriendHandler {
	return &FriendHandler{
		Friendships: friendships,
		Profiles:    profiles,
		Channels:    channels,
		Events:      events,
	}
}

func (h *FriendHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Search resolves a single user by exact uid or a nickname/username
// fragment, annotated with the relationship seen from the caller.
func (h *FriendHandler) Search(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "query is required")
		return
	}

	var (
		profile *models.Profile
		err     error
	)
	if _, parseErr := uuid.Parse(req.Query); parseErr == nil {
		profile, err = h.Profiles.GetByID(c.Request.Context(), req.Query)
	} else {
		profile, err = h.Profiles.SearchOne(c.Request.Context(), req.Query)
	}
	if err == database.ErrNotFound {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "search failed")
		return
	}

	if profile.UID == userID {
		utils.Fail(c, 400, utils.CodeSelfReference, "cannot search for yourself")
		return
	}

	relation := models.RelationNone
	friendship, err := h.Friendships.GetByPair(c.Request.Context(), userID, profile.UID)
	if err != nil && err != database.ErrNotFound {
		utils.InternalError(c, "search failed")
		return
	}
	if friendship != nil {
		relation = friendship.RelationFor(userID)
	}

	utils.Success(c, gin.H{
		"user":                profile.ToSummary(),
		"relationship_status": relation,
	})
}

type inviteRequest struct {
	TargetID string `json:"target_user_id" binding:"required"`
}

func (h *FriendHandler) SendInvitation(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "target_user_id is required")
		return
	}

	if req.TargetID == userID {
		utils.Fail(c, 400, utils.CodeSelfReference, "cannot invite yourself")
		return
	}

	target, err := h.Profiles.GetByID(c.Request.Context(), req.TargetID)
	if err == database.ErrNotFound {
		utils.NotFound(c, "user not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to send invitation")
		return
	}

	existing, err := h.Friendships.GetByPair(c.Request.Context(), userID, req.TargetID)
	if err != nil && err != database.ErrNotFound {
		utils.InternalError(c, "failed to send invitation")
		return
	}
	if existing != nil {
		switch existing.Status {
		case models.FriendshipFriend:
			utils.Fail(c, 400, utils.CodeAlreadyFriends, "already friends")
			return
		case models.FriendshipBlocked:
			utils.Fail(c, 400, utils.CodeBlocked, "cannot invite this user")
			return
		case models.FriendshipPending:
			if existing.SenderID == userID {
				utils.Fail(c, 400, utils.CodeDuplicateInvite, "invitation already sent")
			} else {
				utils.Fail(c, 400, utils.CodeDuplicateInvite, "you have a pending invitation from this user")
			}
			return
		}
	}

	now := h.now()
	friendship := &models.Friendship{
		ID:         utils.GenerateUUID(),
		SenderID:   userID,
		ReceiverID: req.TargetID,
		Status:     models.FriendshipPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.Friendships.UpsertPending(c.Request.Context(), friendship); err != nil {
		utils.InternalError(c, "failed to send invitation")
		return
	}

	// Re-read for the canonical row id: the upsert may have reused an
	// existing row for the pair.
	stored, err := h.Friendships.GetByPair(c.Request.Context(), userID, req.TargetID)
	if err != nil {
		utils.InternalError(c, "failed to send invitation")
		return
	}

	sender := models.UserSummary{ID: userID, Nickname: "Unknown"}
	if p, err := h.Profiles.GetByID(c.Request.Context(), userID); err == nil {
		sender = p.ToSummary()
	} else {
		log.Printf("failed to load sender profile %s: %v", userID, err)
	}
	h.publish(c, realtime.InboxTopic(target.UID), realtime.Event{
		Event: realtime.EventFriendInvitation,
		Payload: gin.H{
			"request_id": stored.ID,
			"sender":     sender,
			"sent_at":    now.UnixMilli(),
		},
	})

	utils.Success(c, gin.H{
		"status":     "success",
		"request_id": stored.ID,
	})
}

type respondRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required,oneof=accept decline"`
}

func (h *FriendHandler) Respond(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req respondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "request_id and action (accept|decline) are required")
		return
	}

	friendship, err := h.Friendships.GetByID(c.Request.Context(), req.RequestID)
	if err == database.ErrNotFound {
		utils.NotFound(c, "invitation not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to respond to invitation")
		return
	}

	if friendship.Status != models.FriendshipPending {
		utils.Fail(c, 400, utils.CodeInvalidState, "invitation is not pending")
		return
	}
	if friendship.ReceiverID != userID {
		utils.Forbidden(c, "only the invited user can respond")
		return
	}

	now := h.now()

	responder := models.UserSummary{ID: userID, Nickname: "Unknown"}
	if p, err := h.Profiles.GetByID(c.Request.Context(), userID); err == nil {
		responder = p.ToSummary()
	}

	if req.Action == "accept" {
		ok, err := h.Friendships.AcceptPending(c.Request.Context(), friendship.ID)
		if err != nil {
			utils.InternalError(c, "failed to accept invitation")
			return
		}
		if !ok {
			utils.Fail(c, 400, utils.CodeInvalidState, "invitation not found or already processed")
			return
		}

		channelID := utils.GenerateUUID()
		members := []string{friendship.SenderID, friendship.ReceiverID}
		if err := h.Channels.CreateDirect(c.Request.Context(), channelID, members); err != nil {
			// The friendship is already committed; report success and
			// leave channel creation to a later retry path.
			log.Printf("failed to create direct channel for %s: %v", friendship.ID, err)
			utils.Success(c, gin.H{"status": "success"})
			return
		}

		h.publish(c, realtime.UserTopic(friendship.SenderID), realtime.Event{
			Event: realtime.EventRequestAccepted,
			Payload: gin.H{
				"request_id": friendship.ID,
				"responder":  responder,
				"channel_id": channelID,
				"sent_at":    now.UnixMilli(),
			},
		})

		utils.Success(c, gin.H{
			"status":     "success",
			"channel_id": channelID,
		})
		return
	}

	// Decline removes the row entirely so the pair returns to "none"
	// and either side can invite again.
	if err := h.Friendships.Delete(c.Request.Context(), friendship.ID); err != nil {
		utils.InternalError(c, "failed to decline invitation")
		return
	}

	h.publish(c, realtime.UserTopic(friendship.SenderID), realtime.Event{
		Event: realtime.EventRequestDeclined,
		Payload: gin.H{
			"request_id": friendship.ID,
			"responder":  responder,
			"sent_at":    now.UnixMilli(),
		},
	})

	utils.Success(c, gin.H{"status": "success"})
}

func (h *FriendHandler) ListFriends(c *gin.Context) {
	userID := middleware.GetUserID(c)

	friendships, err := h.Friendships.ListFriends(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "failed to list friends")
		return
	}

	otherIDs := make([]string, 0, len(friendships))
	for i := range friendships {
		otherIDs = append(otherIDs, friendships[i].Other(userID))
	}

	profiles, err := h.Profiles.ListByIDs(c.Request.Context(), otherIDs)
	if err != nil {
		utils.InternalError(c, "failed to list friends")
		return
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UID] = &profiles[i]
	}

	entries := make([]models.FriendEntry, 0, len(friendships))
	for i := range friendships {
		f := &friendships[i]
		entry := models.FriendEntry{
			UserID:              f.Other(userID),
			Nickname:            "Unknown",
			FriendshipCreatedAt: f.CreatedAt,
			FriendshipUpdatedAt: f.UpdatedAt,
		}
		if p := byID[entry.UserID]; p != nil {
			entry.Nickname = p.DisplayName()
			entry.AvatarURL = p.ImageURL
		}
		entries = append(entries, entry)
	}

	utils.Success(c, gin.H{"friends": entries})
}

func (h *FriendHandler) ListInvitations(c *gin.Context) {
	userID := middleware.GetUserID(c)

	pending, err := h.Friendships.ListPendingReceived(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "failed to list invitations")
		return
	}

	senderIDs := make([]string, 0, len(pending))
	for i := range pending {
		senderIDs = append(senderIDs, pending[i].SenderID)
	}

	profiles, err := h.Profiles.ListByIDs(c.Request.Context(), senderIDs)
	if err != nil {
		utils.InternalError(c, "failed to list invitations")
		return
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UID] = &profiles[i]
	}

	entries := make([]models.InvitationEntry, 0, len(pending))
	for i := range pending {
		f := &pending[i]
		entry := models.InvitationEntry{
			RequestID: f.ID,
			UserID:    f.SenderID,
			Nickname:  "Unknown",
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		}
		if p := byID[f.SenderID]; p != nil {
			entry.Nickname = p.DisplayName()
			entry.ImageURL = p.ImageURL
		}
		entries = append(entries, entry)
	}

	utils.Success(c, gin.H{"invitations": entries})
}

// publish is fire-and-forget; a broadcast failure never fails the
// request that triggered it.
func (h *FriendHandler) publish(c *gin.Context, topic string, event realtime.Event) {
	if h.Events == nil {
		return
	}
	if err := h.Events.Publish(c.Request.Context(), topic, event); err != nil {
		log.Printf("broadcast %s to %s failed: %v", event.Event, topic, err)
	}
}
