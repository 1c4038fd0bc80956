package models

import "time"

// FollowEdge : relation dirigée (follower → followee) avec snapshot
// dénormalisé du profil de l'autre utilisateur pour un listing sans jointure.
type FollowEdge struct {
	UserID     string    `json:"user_id" db:"user_id"`
	TargetID   string    `json:"target_id" db:"target_id"`
	Name       string    `json:"name" db:"name"`
	Nickname   string    `json:"nickname" db:"nickname"`
	PhotoURL   string    `json:"photo_url" db:"photo_url"`
	FollowedAt time.Time `json:"followed_at" db:"followed_at"`
}
