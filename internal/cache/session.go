package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RankingSession : état d'une session d'insertion en cours, stocké dans Redis.
// Une seule session par utilisateur — une nouvelle soumission remplace la
// précédente sans confirmation.
type RankingSession struct {
	UserID       string          `json:"user_id"`
	Mode         string          `json:"mode"` // "insert" ou "rerank"
	EditReviewID string          `json:"edit_review_id,omitempty"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Address      string          `json:"address"`
	Lat          float64         `json:"lat"`
	Lng          float64         `json:"lng"`
	Comment      string          `json:"comment"`
	Phase        string          `json:"phase"` // "category" ou "global"
	MinPos       int             `json:"min_pos"`
	MaxPos       int             `json:"max_pos"`
	CategoryIDs  []string        `json:"category_ids"` // snapshot ordonné pris au démarrage
	GlobalIDs    []string        `json:"global_ids"`
	Selector     json.RawMessage `json:"selector"`
	CreatedAt    time.Time       `json:"created_at"`
}

func rankingSessionKey(userID string) string {
	return fmt.Sprintf("ranking_session:%s", userID)
}

// SaveRankingSession écrit (ou remplace) la session d'insertion d'un utilisateur
func SaveRankingSession(s *RankingSession, ttl time.Duration) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, rankingSessionKey(s.UserID), data, ttl).Err()
}

// GetRankingSession récupère la session en cours, nil si absente
func GetRankingSession(userID string) (*RankingSession, error) {
	data, err := RedisClient.Get(ctx, rankingSessionKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s RankingSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteRankingSession abandonne la session d'insertion
func DeleteRankingSession(userID string) error {
	return RedisClient.Del(ctx, rankingSessionKey(userID)).Err()
}
