package models

import "time"

type Profile struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	ImageURL  string    `json:"image_url"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSummary is the profile snapshot embedded in friend lists,
// channel members, message senders and broadcast payloads.
type UserSummary struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url"`
}

// DisplayName falls back to the username when no nickname is set.
func (p *Profile) DisplayName() string {
	if p.Nickname != "" {
		return p.Nickname
	}
	if p.Username != "" {
		return p.Username
	}
	return "Unknown"
}

func (p *Profile) ToSummary() UserSummary {
	return UserSummary{
		ID:        p.UID,
		Nickname:  p.DisplayName(),
		AvatarURL: p.ImageURL,
	}
}
