package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"betweenchat/middleware"
	"betweenchat/utils"
)

type ReadHandler struct {
	Channels ChannelStore
	Messages MessageStore
	Reads    ReadStore
	NowFunc  func() time.Time
}

func NewReadHandler(channels ChannelStore, messages MessageStore, reads ReadStore) *ReadHandler {
	return &ReadHandler{Channels: channels, Messages: messages, Reads: reads}
}

func (h *ReadHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

type markReadRequest struct {
	ChannelID  string  `json:"channel_id" binding:"required"`
	MessageIDs []int64 `json:"message_ids"`
}

// MarkRead records read marks for the caller. With message_ids it marks
// exactly those; without, it catches up on every message in the channel
// the caller did not send and has not marked yet. marked_count reports
// only newly created marks, so retries are idempotent.
func (h *ReadHandler) MarkRead(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "channel_id is required")
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

	var targetIDs []int64
	if req.MessageIDs != nil {
		for _, id := range req.MessageIDs {
			if id > 0 {
				targetIDs = append(targetIDs, id)
			}
		}
		if len(targetIDs) == 0 {
			utils.BadRequest(c, "message_ids must contain at least one valid id")
			return
		}
	} else {
		ids, err := h.Messages.IDsExcludingSender(c.Request.Context(), req.ChannelID, userID)
		if err != nil {
			utils.InternalError(c, "failed to load unread messages")
			return
		}
		if len(ids) > 0 {
			existing, err := h.Reads.ExistingIDs(c.Request.Context(), userID, ids)
			if err != nil {
				utils.InternalError(c, "failed to load unread messages")
				return
			}
			already := make(map[int64]bool, len(existing))
			for _, id := range existing {
				already[id] = true
			}
			for _, id := range ids {
				if !already[id] {
					targetIDs = append(targetIDs, id)
				}
			}
		}
	}

	if len(targetIDs) == 0 {
		utils.Success(c, gin.H{"marked_count": 0})
		return
	}

	marked, err := h.Reads.InsertMarks(c.Request.Context(), userID, targetIDs, h.now())
	if err != nil {
		utils.InternalError(c, "failed to mark messages read")
		return
	}

	utils.Success(c, gin.H{"marked_count": marked})
}
