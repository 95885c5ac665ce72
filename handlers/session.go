package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"betweenchat/database"
	"betweenchat/middleware"
	"betweenchat/models"
	"betweenchat/utils"
)

type SessionHandler struct {
	Profiles ProfileStore
	Channels ChannelStore
	Messages MessageStore
	NowFunc  func() time.Time
}

func NewSessionHandler(profiles ProfileStore, channels ChannelStore, messages MessageStore) *SessionHandler {
	return &SessionHandler{Profiles: profiles, Channels: channels, Messages: messages}
}

func (h *SessionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now()
}

// Init returns the app-start snapshot: the caller's profile plus every
// room with members and last message, in one round trip.
func (h *SessionHandler) Init(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var userProfile models.UserSummary
	profile, err := h.Profiles.GetByID(c.Request.Context(), userID)
	switch {
	case err == nil:
		userProfile = profile.ToSummary()
	case err == database.ErrNotFound:
		// A valid token without a profile row still gets a usable
		// bootstrap.
		userProfile = models.UserSummary{ID: userID, Nickname: "Unknown"}
	default:
		utils.InternalError(c, "failed to load session")
		return
	}

	channels, err := h.Channels.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "failed to load session")
		return
	}

	channelIDs := make([]string, 0, len(channels))
	memberIDs := make(map[string][]string, len(channels))
	allUserIDs := make([]string, 0)
	seen := make(map[string]bool)
	for i := range channels {
		id := channels[i].ID
		channelIDs = append(channelIDs, id)
		members, err := h.Channels.MemberIDs(c.Request.Context(), id)
		if err != nil {
			log.Printf("failed to load members of %s: %v", id, err)
			members = nil
		}
		memberIDs[id] = members
		for _, uid := range members {
			if !seen[uid] {
				seen[uid] = true
				allUserIDs = append(allUserIDs, uid)
			}
		}
	}

	profiles, err := h.Profiles.ListByIDs(c.Request.Context(), allUserIDs)
	if err != nil {
		utils.InternalError(c, "failed to load session")
		return
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UID] = &profiles[i]
	}

	lastByChannel := map[string]models.LastMessage{}
	if len(channelIDs) > 0 {
		lastByChannel, err = h.Messages.LastByChannels(c.Request.Context(), channelIDs)
		if err != nil {
			utils.InternalError(c, "failed to load session")
			return
		}
	}

	rooms := make([]models.RoomEntry, 0, len(channels))
	for i := range channels {
		ch := &channels[i]
		room := models.RoomEntry{
			ID:          ch.ID,
			ChannelType: ch.ChannelType,
			Users:       make([]models.UserSummary, 0, len(memberIDs[ch.ID])),
		}
		for _, uid := range memberIDs[ch.ID] {
			if p := byID[uid]; p != nil {
				room.Users = append(room.Users, p.ToSummary())
			} else {
				room.Users = append(room.Users, models.UserSummary{ID: uid, Nickname: "Unknown"})
			}
		}
		if last, ok := lastByChannel[ch.ID]; ok {
			lm := last
			room.LastMessage = &lm
		}
		rooms = append(rooms, room)
	}

	utils.Success(c, gin.H{
		"status":       "success",
		"timestamp":    h.now().UnixMilli(),
		"user_profile": userProfile,
		"rooms":        rooms,
	})
}
