package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"betweenchat/middleware"
	"betweenchat/models"
	"betweenchat/utils"
)

type ChannelHandler struct {
	Channels ChannelStore
	Profiles ProfileStore
	Messages MessageStore
}

func NewChannelHandler(channels ChannelStore, profiles ProfileStore, messages MessageStore) *ChannelHandler {
	return &ChannelHandler{Channels: channels, Profiles: profiles, Messages: messages}
}

// List returns the caller's channels with member snapshots and the last
// message per channel. Channels without messages carry a null
// last_message.
func (h *ChannelHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	channels, err := h.Channels.ListForUser(c.Request.Context(), userID)
	if err != nil {
		utils.InternalError(c, "failed to list channels")
		return
	}

	entries, err := h.buildEntries(c, channels)
	if err != nil {
		utils.InternalError(c, "failed to list channels")
		return
	}

	utils.Success(c, gin.H{"channels": entries})
}

func (h *ChannelHandler) buildEntries(c *gin.Context, channels []models.Channel) ([]models.ChannelEntry, error) {
	channelIDs := make([]string, 0, len(channels))
	memberIDs := make(map[string][]string, len(channels))
	allUserIDs := make([]string, 0)
	seen := make(map[string]bool)

	for i := range channels {
		id := channels[i].ID
		channelIDs = append(channelIDs, id)
		members, err := h.Channels.MemberIDs(c.Request.Context(), id)
		if err != nil {
			// Degrade to an empty member list rather than failing the
			// whole listing.
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
		return nil, err
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		byID[profiles[i].UID] = &profiles[i]
	}

	lastByChannel := map[string]models.LastMessage{}
	if len(channelIDs) > 0 {
		lastByChannel, err = h.Messages.LastByChannels(c.Request.Context(), channelIDs)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]models.ChannelEntry, 0, len(channels))
	for i := range channels {
		ch := &channels[i]
		entry := models.ChannelEntry{
			ID:          ch.ID,
			ChannelType: ch.ChannelType,
			Users:       make([]models.ChannelUser, 0, len(memberIDs[ch.ID])),
		}
		for _, uid := range memberIDs[ch.ID] {
			user := models.ChannelUser{ID: uid, Nickname: "Unknown"}
			if p := byID[uid]; p != nil {
				user.Nickname = p.DisplayName()
				user.ImageURL = p.ImageURL
			}
			entry.Users = append(entry.Users, user)
		}
		if last, ok := lastByChannel[ch.ID]; ok {
			lm := last
			entry.LastMessage = &lm
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
