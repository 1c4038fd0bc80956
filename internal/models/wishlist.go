package models

import "time"

// WishlistItem référence un restaurant par sa clé d'identité (pas une review)
// avec un snapshot minimal du lieu — l'utilisateur ne l'a pas forcément visité.
type WishlistItem struct {
	UserID   string    `json:"user_id" db:"user_id"`
	PlaceKey string    `json:"place_key" db:"place_key"`
	Name     string    `json:"name" db:"name"`
	Category string    `json:"category" db:"category"`
	Address  string    `json:"address" db:"address"`
	Lat      float64   `json:"lat" db:"lat"`
	Lng      float64   `json:"lng" db:"lng"`
	AddedAt  time.Time `json:"added_at" db:"added_at"`
}
