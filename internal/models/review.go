package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Review : l'avis d'un utilisateur sur une visite de restaurant.
//
// RankIndex est la position 0-based dans le classement personnel de
// l'utilisateur au moment de la soumission (0 = meilleur) — il n'a aucun
// sens inter-utilisateurs. Les rangs stockés ne sont jamais réécrits en
// masse : doublons et trous sont admis, le tri de lecture les résorbe.
// GlobalScore est dérivé du rang une seule fois à l'écriture et n'est
// jamais recalculé (sémantique snapshot).
type Review struct {
	ID          gocql.UUID `json:"id" db:"review_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Category    string     `json:"category" db:"category"`
	Address     string     `json:"address" db:"address"`
	Lat         float64    `json:"lat" db:"lat"`
	Lng         float64    `json:"lng" db:"lng"`
	Comment     string     `json:"comment" db:"comment"` // max 30 caractères
	RankIndex   int        `json:"rank_index" db:"rank_index"`
	GlobalScore float64    `json:"global_score" db:"global_score"` // 1.0–10.0, une décimale
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
