package models

type User struct {
	ID             string `json:"user_id"`
	Name           string `json:"name,omitempty"`
	Nickname       string `json:"nickname,omitempty"`
	Email          string `json:"email"`
	Password       string `json:"-"`
	Provider       string `json:"provider,omitempty"`
	ProviderID     string `json:"-"`
	PhotoURL       string `json:"photo_url,omitempty"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
}
