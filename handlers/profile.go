package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"betweenchat/database"
	"betweenchat/middleware"
	"betweenchat/utils"
)

type ProfileHandler struct {
	Profiles ProfileStore
	NowFunc  func() time.Time
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

func (h *ProfileHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

// Get returns the caller's profile, or another user's when ?uid= is set
// (viewing someone else's avatar).
func (h *ProfileHandler) Get(c *gin.Context) {
	targetUID := c.Query("uid")
	if targetUID == "" {
		targetUID = middleware.GetUserID(c)
	}

	profile, err := h.Profiles.GetByID(c.Request.Context(), targetUID)
	if err == database.ErrNotFound {
		utils.NotFound(c, "profile not found")
		return
	}
	if err != nil {
		utils.InternalError(c, "failed to fetch profile")
		return
	}

	utils.Success(c, gin.H{
		"id":        profile.UID,
		"nickname":  profile.DisplayName(),
		"image_url": profile.ImageURL,
	})
}

type updateProfileRequest struct {
	Nickname string `json:"nickname"`
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		utils.BadRequest(c, "nickname is required (non-empty string)")
		return
	}

	if err := h.Profiles.UpdateNickname(c.Request.Context(), userID, nickname); err != nil {
		utils.InternalError(c, "failed to update profile")
		return
	}

	utils.Success(c, gin.H{
		"status":     "success",
		"updated_at": h.now().UnixMilli(),
	})
}
